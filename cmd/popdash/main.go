package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/Dicklesworthstone/popdash/internal/api"
	"github.com/Dicklesworthstone/popdash/internal/config"
	"github.com/Dicklesworthstone/popdash/internal/dashboard"
	"github.com/Dicklesworthstone/popdash/internal/logging"
	"github.com/Dicklesworthstone/popdash/internal/probe"
	"github.com/Dicklesworthstone/popdash/internal/sampler"
	"github.com/Dicklesworthstone/popdash/internal/ui"
)

func main() {
	cfg, err := config.FromFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	if cfg.Mode == config.ModeDashboard && !interactive && cfg.Listen == "" {
		cfg.Mode = config.ModeStatus
	}

	// The alternate screen owns the terminal, so the TUI only logs to a file.
	var logOut io.Writer = os.Stderr
	if cfg.Mode == config.ModeDashboard && interactive {
		logOut = io.Discard
	}
	logger, closer, err := logging.New(cfg, logOut)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, interactive, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("popdash failed", "error", err)
		fmt.Fprintln(os.Stderr, "popdash:", err)
		closer.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, interactive bool, logger *slog.Logger) error {
	host := sampler.NewHostSource()
	smp := sampler.New(host,
		sampler.WithDiskPath(cfg.DiskPath),
		sampler.WithHistorySize(cfg.HistorySize),
		sampler.WithLogger(logger.With("component", "sampler")))
	prb := probe.New(probe.ExecRunner{}, probe.Options{
		Timeout: cfg.ProbeTimeout,
		Logger:  logger.With("component", "probe"),
	})
	drv := dashboard.New(smp, prb, host, dashboard.Options{
		MetricsInterval: cfg.Interval,
		StatusInterval:  cfg.StatusInterval,
		TopN:            cfg.TopN,
		Logger:          logger.With("component", "driver"),
	})

	switch cfg.Mode {
	case config.ModeJSON:
		frame, err := drv.Once(ctx)
		if err != nil {
			return fmt.Errorf("collect frame: %w", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(frame)
	case config.ModeStatus:
		frame, err := drv.Once(ctx)
		if err != nil {
			return fmt.Errorf("collect frame: %w", err)
		}
		fmt.Println(ui.Render(frame, terminalWidth()))
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	if cfg.Listen != "" {
		router := api.NewRouter(drv, logger.With("component", "api"))
		g.Go(func() error { return api.Serve(gctx, cfg.Listen, router, logger) })
	}
	if interactive {
		g.Go(func() error {
			defer cancel()
			return ui.RunTUI(gctx, drv)
		})
	} else {
		logger.Info("running headless", "interval", cfg.Interval, "listen", cfg.Listen)
		g.Go(func() error { return drv.Run(gctx) })
	}
	return g.Wait()
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 120
}
