// Package sampler turns raw host counters into MetricsSnapshots.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Dicklesworthstone/popdash/internal/model"
)

const (
	bytesPerMB  = 1024 * 1024
	bytesPerGiB = 1024 * 1024 * 1024
)

// ErrCountersUnavailable is returned by Tick when CPU or memory counters cannot
// be read. The sampler state is left untouched; callers may retry next tick.
var ErrCountersUnavailable = errors.New("basic cpu/memory counters unavailable")

// counterRef is the last reading of a pair of cumulative byte counters.
type counterRef struct {
	a, b uint64
	at   time.Time
	ok   bool
}

// advance stores the new reading and returns both rates in MB/s against the
// previous one. The first reading, a non-positive interval and a counter
// that went backwards all yield 0.
func (r *counterRef) advance(a, b uint64, now time.Time) (float64, float64) {
	prev := *r
	*r = counterRef{a: a, b: b, at: now, ok: true}
	if !prev.ok {
		return 0, 0
	}
	elapsed := now.Sub(prev.at).Seconds()
	return mbps(a, prev.a, elapsed), mbps(b, prev.b, elapsed)
}

func mbps(cur, prev uint64, elapsed float64) float64 {
	if elapsed <= 0 || cur < prev {
		return 0
	}
	return float64(cur-prev) / bytesPerMB / elapsed
}

// Sampler produces one MetricsSnapshot per Tick. It is owned by a single
// goroutine: Tick and History must not be called concurrently.
type Sampler struct {
	src      Source
	diskPath string
	now      func() time.Time
	logger   *slog.Logger

	disk counterRef
	net  counterRef

	cpuHist *model.History
	memHist *model.History
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(s *Sampler) { s.now = now } }

// WithDiskPath selects the filesystem whose usage is reported. Default "/".
func WithDiskPath(path string) Option {
	return func(s *Sampler) {
		if path != "" {
			s.diskPath = path
		}
	}
}

// WithHistorySize sets the capacity of the CPU and memory history windows.
func WithHistorySize(n int) Option {
	return func(s *Sampler) {
		s.cpuHist = model.NewHistory(n)
		s.memHist = model.NewHistory(n)
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Sampler) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(src Source, opts ...Option) *Sampler {
	s := &Sampler{
		src:      src,
		diskPath: "/",
		now:      time.Now,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		cpuHist:  model.NewHistory(model.DefaultHistorySize),
		memHist:  model.NewHistory(model.DefaultHistorySize),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tick reads the host counters and returns a new snapshot. Only a failure to
// read CPU or memory counters is returned as an error; every other source
// degrades its own fields to zero (or absent, for temperature).
func (s *Sampler) Tick(ctx context.Context) (model.MetricsSnapshot, error) {
	perCore, err := s.src.CPUPercent(ctx)
	if err == nil && len(perCore) == 0 {
		err = errors.New("no cores reported")
	}
	if err != nil {
		return model.MetricsSnapshot{}, fmt.Errorf("%w: cpu percent: %w", ErrCountersUnavailable, err)
	}
	vm, err := s.src.VirtualMemory(ctx)
	if err != nil {
		return model.MetricsSnapshot{}, fmt.Errorf("%w: virtual memory: %w", ErrCountersUnavailable, err)
	}

	now := s.now()
	snap := model.MetricsSnapshot{
		Timestamp:          now,
		CPUPercent:         mean(perCore),
		CPUPerCore:         perCore,
		MemoryPercent:      vm.UsedPercent,
		MemoryAvailableGiB: float64(vm.AvailableBytes) / bytesPerGiB,
		MemoryTotalGiB:     float64(vm.TotalBytes) / bytesPerGiB,
	}

	if mhz, err := s.src.CPUFrequency(ctx); err == nil {
		snap.CPUFrequencyMHz = mhz
	} else {
		s.degraded("cpu_frequency", err)
	}
	if n, err := s.src.CPUCores(ctx); err == nil {
		snap.CPUCoreCount = n
	} else {
		s.degraded("cpu_cores", err)
	}
	if avg, err := s.src.LoadAvg(ctx); err == nil {
		snap.Load1, snap.Load5, snap.Load15 = avg.Load1, avg.Load5, avg.Load15
	} else {
		s.degraded("load_avg", err)
	}
	if pct, err := s.src.SwapPercent(ctx); err == nil {
		snap.SwapPercent = pct
	} else {
		s.degraded("swap", err)
	}
	if pct, err := s.src.DiskUsage(ctx, s.diskPath); err == nil {
		snap.DiskUsagePercent = pct
	} else {
		s.degraded("disk_usage", err)
	}

	if dc, err := s.src.DiskIO(ctx); err == nil {
		snap.DiskReadMBps, snap.DiskWriteMBps = s.disk.advance(dc.ReadBytes, dc.WriteBytes, now)
	} else {
		s.disk = counterRef{}
		s.degraded("disk_io", err)
	}
	if nc, err := s.src.NetIO(ctx); err == nil {
		snap.NetSentMBps, snap.NetRecvMBps = s.net.advance(nc.BytesSent, nc.BytesRecv, now)
	} else {
		s.net = counterRef{}
		s.degraded("net_io", err)
	}

	if boot, err := s.src.BootTime(ctx); err == nil {
		if up := now.Sub(boot); up > 0 {
			snap.Uptime = up
		}
	} else {
		s.degraded("uptime", err)
	}
	if groups, err := s.src.Temperatures(ctx); err == nil {
		snap.TemperatureC = cpuTemperature(groups)
	} else {
		s.degraded("temperature", err)
	}

	s.cpuHist.Push(snap.CPUPercent)
	s.memHist.Push(snap.MemoryPercent)
	return snap, nil
}

// History returns copies of the CPU and memory windows, oldest first.
func (s *Sampler) History() model.HistorySnapshot {
	return model.HistorySnapshot{CPU: s.cpuHist.Values(), Memory: s.memHist.Values()}
}

func (s *Sampler) degraded(field string, err error) {
	s.logger.Debug("metric unavailable", "field", field, "error", err)
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
