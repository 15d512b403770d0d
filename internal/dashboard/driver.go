// Package dashboard drives the sampler and status probe on their own cadences
// and publishes the combined read model.
package dashboard

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/popdash/internal/model"
	"github.com/Dicklesworthstone/popdash/internal/sampler"
)

// MetricsSource produces metrics snapshots. Implemented by *sampler.Sampler.
type MetricsSource interface {
	Tick(ctx context.Context) (model.MetricsSnapshot, error)
	History() model.HistorySnapshot
}

// StatusSource produces optimization status records. Implemented by *probe.StatusProbe.
type StatusSource interface {
	Poll(ctx context.Context) model.OptimizationStatus
}

type Options struct {
	MetricsInterval time.Duration
	StatusInterval  time.Duration
	// TopN processes are listed per tick; 0 disables the listing.
	TopN int
	// Settle separates the two ticks Once takes so rates are populated.
	Settle time.Duration
	Logger *slog.Logger
}

// Driver owns the sampler: Tick is only ever called from the metrics loop
// or from Once, never both at the same time.
type Driver struct {
	metrics MetricsSource
	status  StatusSource
	procs   sampler.ProcessLister
	opts    Options
	logger  *slog.Logger

	mu     sync.RWMutex
	frame  model.Frame
	frames chan model.Frame
}

// New wires a driver. procs may be nil.
func New(metrics MetricsSource, status StatusSource, procs sampler.ProcessLister, opts Options) *Driver {
	if opts.MetricsInterval <= 0 {
		opts.MetricsInterval = 2 * time.Second
	}
	if opts.StatusInterval <= 0 {
		opts.StatusInterval = opts.MetricsInterval
	}
	if opts.Settle <= 0 {
		opts.Settle = time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Driver{
		metrics: metrics,
		status:  status,
		procs:   procs,
		opts:    opts,
		logger:  logger,
		frame:   model.Zero(),
		frames:  make(chan model.Frame, 1),
	}
}

// Frames delivers a frame after every update. A slow reader only ever sees the
// newest frame. The channel is closed when Run returns.
func (d *Driver) Frames() <-chan model.Frame { return d.frames }

// Latest returns the most recently published frame.
func (d *Driver) Latest() model.Frame {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.frame
}

// Run samples metrics and polls status on independent tickers until ctx is done.
func (d *Driver) Run(ctx context.Context) error {
	defer close(d.frames)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return d.loop(gctx, d.opts.MetricsInterval, d.collectMetrics) })
	g.Go(func() error { return d.loop(gctx, d.opts.StatusInterval, d.collectStatus) })
	return g.Wait()
}

// Once collects a single complete frame without starting the loops. It ticks
// twice, Settle apart, so that rate fields carry real values. Once must not
// be called after Run has returned.
func (d *Driver) Once(ctx context.Context) (model.Frame, error) {
	if _, err := d.metrics.Tick(ctx); err != nil {
		return model.Frame{}, err
	}
	select {
	case <-ctx.Done():
		return model.Frame{}, ctx.Err()
	case <-time.After(d.opts.Settle):
	}
	if err := d.collectMetrics(ctx); err != nil {
		return model.Frame{}, err
	}
	_ = d.collectStatus(ctx)
	return d.Latest(), nil
}

func (d *Driver) loop(ctx context.Context, every time.Duration, collect func(context.Context) error) error {
	_ = collect(ctx)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_ = collect(ctx)
		}
	}
}

func (d *Driver) collectMetrics(ctx context.Context) error {
	snap, err := d.metrics.Tick(ctx)
	if err != nil {
		d.logger.Warn("metrics tick failed", "error", err)
		return err
	}
	hist := d.metrics.History()

	var top []model.Process
	if d.procs != nil && d.opts.TopN > 0 {
		top, err = d.procs.TopProcesses(ctx, d.opts.TopN)
		if err != nil {
			d.logger.Debug("process listing failed", "error", err)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.frame.Metrics = snap
	d.frame.History = hist
	d.frame.Top = top
	d.publishLocked()
	return nil
}

func (d *Driver) collectStatus(ctx context.Context) error {
	status := d.status.Poll(ctx)
	if status.Unavailable != 0 {
		d.logger.Debug("status fields unavailable", "fields", status.Unavailable.String())
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.frame.Status = status
	d.frame.StatusKnown = true
	d.publishLocked()
	return nil
}

// publishLocked replaces any undelivered frame with the current one.
func (d *Driver) publishLocked() {
	f := d.frame
	select {
	case d.frames <- f:
		return
	default:
	}
	select {
	case <-d.frames:
	default:
	}
	select {
	case d.frames <- f:
	default:
	}
}
