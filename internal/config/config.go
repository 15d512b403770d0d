package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Mode selects what popdash does after startup.
type Mode string

const (
	ModeDashboard Mode = "dashboard"
	ModeStatus    Mode = "status"
	ModeJSON      Mode = "json"
)

// Config carries runtime options for popdash.
type Config struct {
	Interval       time.Duration
	StatusInterval time.Duration
	ProbeTimeout   time.Duration
	HistorySize    int
	TopN           int
	DiskPath       string
	Mode           Mode
	Listen         string
	LogLevel       string
	LogFile        string
}

func Default() Config {
	return Config{
		Interval:       2 * time.Second,
		StatusInterval: 2 * time.Second,
		ProbeTimeout:   30 * time.Second,
		HistorySize:    60,
		TopN:           8,
		DiskPath:       "/",
		Mode:           ModeDashboard,
		LogLevel:       "info",
	}
}

// FromFlags parses flags and environment overrides. Environment variables win
// over defaults but lose to explicit flags.
func FromFlags(args []string) (Config, error) {
	cfg := Default()
	applyEnv(&cfg)

	var status, asJSON bool
	fs := flag.NewFlagSet("popdash", flag.ContinueOnError)
	fs.DurationVar(&cfg.Interval, "interval", cfg.Interval, "metrics refresh interval")
	fs.DurationVar(&cfg.StatusInterval, "status-interval", cfg.StatusInterval, "optimization status poll interval")
	fs.DurationVar(&cfg.ProbeTimeout, "probe-timeout", cfg.ProbeTimeout, "timeout for each status probe")
	fs.IntVar(&cfg.HistorySize, "history", cfg.HistorySize, "cpu/memory history window size")
	fs.IntVar(&cfg.TopN, "top", cfg.TopN, "number of top processes to show")
	fs.StringVar(&cfg.DiskPath, "disk-path", cfg.DiskPath, "filesystem whose usage is reported")
	fs.BoolVar(&status, "status", false, "print metrics and optimization status once and exit")
	fs.BoolVar(&asJSON, "json", false, "print one frame as JSON and exit")
	fs.Bool("dashboard", false, "start the live dashboard (default)")
	fs.StringVar(&cfg.Listen, "listen", cfg.Listen, "serve the JSON API on this address, e.g. 127.0.0.1:8080")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug|info|warn|error")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "append logs to this file")
	if err := fs.Parse(args); err != nil {
		return cfg, fmt.Errorf("parse flags: %w", err)
	}

	switch {
	case asJSON:
		cfg.Mode = ModeJSON
	case status:
		cfg.Mode = ModeStatus
	}
	cfg.normalize()
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("POPDASH_INTERVAL"); v != "" {
		if d, ok := parseDuration(v); ok {
			cfg.Interval = d
		}
	}
	if v := os.Getenv("POPDASH_STATUS_INTERVAL"); v != "" {
		if d, ok := parseDuration(v); ok {
			cfg.StatusInterval = d
		}
	}
	if v := os.Getenv("POPDASH_PROBE_TIMEOUT"); v != "" {
		if d, ok := parseDuration(v); ok {
			cfg.ProbeTimeout = d
		}
	}
	if v := os.Getenv("POPDASH_HISTORY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HistorySize = n
		}
	}
	if v := os.Getenv("POPDASH_DISK_PATH"); v != "" {
		cfg.DiskPath = v
	}
	if v := os.Getenv("POPDASH_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("POPDASH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("POPDASH_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
}

// parseDuration accepts Go durations and bare seconds ("2" == "2s").
func parseDuration(v string) (time.Duration, bool) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, true
	}
	if d, err := time.ParseDuration(v + "s"); err == nil {
		return d, true
	}
	return 0, false
}

func (c *Config) normalize() {
	def := Default()
	if c.Interval <= 0 {
		c.Interval = def.Interval
	}
	if c.StatusInterval <= 0 {
		c.StatusInterval = def.StatusInterval
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = def.ProbeTimeout
	}
	if c.HistorySize <= 0 {
		c.HistorySize = def.HistorySize
	}
	if c.TopN < 0 {
		c.TopN = 0
	}
	if c.DiskPath == "" {
		c.DiskPath = def.DiskPath
	}
}
