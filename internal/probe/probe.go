// Package probe classifies whether performance-tuning changes are active on the
// host by querying sysfs, sysctl, systemd and desktop settings.
package probe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/popdash/internal/model"
)

// DefaultTimeout bounds every individual probe.
const DefaultTimeout = 30 * time.Second

// tunedSwappiness is the vm.swappiness value applied by the memory tuning.
const tunedSwappiness = 10

// Options names the probed surfaces.
type Options struct {
	Timeout time.Duration

	BoostPath         string
	GovernorPath      string
	SwappinessKey     string
	TrimUnit          string
	AnimationsSetting string // "<schema> <key>"

	Logger *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		Timeout:           DefaultTimeout,
		BoostPath:         "/sys/devices/system/cpu/cpufreq/boost",
		GovernorPath:      "/sys/devices/system/cpu/cpu0/cpufreq/scaling_governor",
		SwappinessKey:     "vm.swappiness",
		TrimUnit:          "fstrim.timer",
		AnimationsSetting: "org.gnome.desktop.interface enable-animations",
	}
}

// StatusProbe polls the host and builds OptimizationStatus records. Poll may
// be called from any goroutine.
type StatusProbe struct {
	runner Runner
	opts   Options
	logger *slog.Logger
	last   atomic.Pointer[model.OptimizationStatus]
}

// New returns a probe. Zero-valued options fall back to DefaultOptions.
func New(runner Runner, opts Options) *StatusProbe {
	def := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.BoostPath == "" {
		opts.BoostPath = def.BoostPath
	}
	if opts.GovernorPath == "" {
		opts.GovernorPath = def.GovernorPath
	}
	if opts.SwappinessKey == "" {
		opts.SwappinessKey = def.SwappinessKey
	}
	if opts.TrimUnit == "" {
		opts.TrimUnit = def.TrimUnit
	}
	if opts.AnimationsSetting == "" {
		opts.AnimationsSetting = def.AnimationsSetting
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &StatusProbe{runner: runner, opts: opts, logger: logger}
}

// Poll resolves every field independently and concurrently. It never fails:
// a field whose probe errors or times out keeps its default and is listed in
// the record's Unavailable set.
func (p *StatusProbe) Poll(ctx context.Context) model.OptimizationStatus {
	var (
		boost, memTuned, trim, animOff model.Field[bool]
		governor                       model.Field[string]
	)
	var g errgroup.Group
	g.Go(func() error { boost = p.cpuBoost(ctx); return nil })
	g.Go(func() error { governor = p.cpuGovernor(ctx); return nil })
	g.Go(func() error { memTuned = p.memoryTuned(ctx); return nil })
	g.Go(func() error { trim = p.ssdTrim(ctx); return nil })
	g.Go(func() error { animOff = p.animationsDisabled(ctx); return nil })
	_ = g.Wait()

	status := model.OptimizationStatus{
		CPUBoostEnabled:           boost.Or(false),
		CPUGovernor:               governor.Or(model.GovernorUnknown),
		MemoryTuned:               memTuned.Or(false),
		SSDTrimEnabled:            trim.Or(false),
		DesktopAnimationsDisabled: animOff.Or(false),
	}
	for f, ok := range map[model.StatusFields]bool{
		model.FieldCPUBoost:          boost.Available,
		model.FieldCPUGovernor:       governor.Available,
		model.FieldMemoryTuned:       memTuned.Available,
		model.FieldSSDTrim:           trim.Available,
		model.FieldDesktopAnimations: animOff.Available,
	} {
		if !ok {
			status.Unavailable |= f
		}
	}
	p.last.Store(&status)
	return status
}

// Last returns the most recent record and whether any poll has completed.
func (p *StatusProbe) Last() (model.OptimizationStatus, bool) {
	s := p.last.Load()
	if s == nil {
		return model.DefaultStatus(), false
	}
	return *s, true
}

func (p *StatusProbe) cpuBoost(ctx context.Context) model.Field[bool] {
	out, _, err := p.run(ctx, KindFile, p.opts.BoostPath)
	if err != nil {
		return model.None[bool]()
	}
	return model.Some(strings.TrimSpace(out) == "1")
}

func (p *StatusProbe) cpuGovernor(ctx context.Context) model.Field[string] {
	out, _, err := p.run(ctx, KindFile, p.opts.GovernorPath)
	if err != nil {
		return model.None[string]()
	}
	gov := strings.TrimSpace(out)
	if gov == "" {
		return model.None[string]()
	}
	return model.Some(gov)
}

func (p *StatusProbe) memoryTuned(ctx context.Context) model.Field[bool] {
	out, code, err := p.run(ctx, KindSysctl, p.opts.SwappinessKey)
	if err != nil || code != 0 {
		return model.None[bool]()
	}
	v, ok := parseSysctlInt(out)
	if !ok {
		p.logger.Debug("unparseable sysctl output", "key", p.opts.SwappinessKey, "output", out)
		return model.None[bool]()
	}
	return model.Some(v == tunedSwappiness)
}

func (p *StatusProbe) ssdTrim(ctx context.Context) model.Field[bool] {
	_, code, err := p.run(ctx, KindService, p.opts.TrimUnit)
	if err != nil {
		return model.None[bool]()
	}
	return model.Some(code == 0)
}

func (p *StatusProbe) animationsDisabled(ctx context.Context) model.Field[bool] {
	out, code, err := p.run(ctx, KindSetting, p.opts.AnimationsSetting)
	if err != nil || code != 0 {
		return model.None[bool]()
	}
	return model.Some(strings.Contains(strings.ToLower(out), "false"))
}

// run applies the per-probe timeout. A runner that ignores ctx is abandoned
// once the deadline passes; a panicking runner counts as unavailable.
func (p *StatusProbe) run(ctx context.Context, kind Kind, target string) (string, int, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	type result struct {
		out  string
		code int
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{code: -1, err: fmt.Errorf("probe panicked: %v", r)}
			}
		}()
		out, code, err := p.runner.Run(ctx, kind, target)
		ch <- result{out, code, err}
	}()

	var r result
	select {
	case r = <-ch:
	case <-ctx.Done():
		r = result{code: -1, err: ctx.Err()}
	}
	if r.err != nil {
		p.logger.Debug("probe unavailable", "kind", kind, "target", target, "error", r.err)
	}
	return r.out, r.code, r.err
}

// parseSysctlInt accepts both "vm.swappiness = 10" and bare "10" (sysctl -n).
func parseSysctlInt(out string) (int, bool) {
	s := strings.TrimSpace(out)
	if i := strings.LastIndex(s, "="); i >= 0 {
		s = strings.TrimSpace(s[i+1:])
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}
