package sampler

import (
	"context"
	"time"

	"github.com/Dicklesworthstone/popdash/internal/model"
)

// LoadAvg holds the 1, 5 and 15 minute load averages.
type LoadAvg struct {
	Load1  float64
	Load5  float64
	Load15 float64
}

// VirtualMemory is the subset of RAM stats the sampler reports.
type VirtualMemory struct {
	TotalBytes     uint64
	AvailableBytes uint64
	UsedPercent    float64
}

// DiskCounters are cumulative block-device byte counters.
type DiskCounters struct {
	ReadBytes  uint64
	WriteBytes uint64
}

// NetCounters are cumulative interface byte counters.
type NetCounters struct {
	BytesSent uint64
	BytesRecv uint64
}

// Reading is a single sensor value in °C.
type Reading struct {
	Label   string
	Current float64
}

// SensorGroup is the ordered readings of one sensor chip, e.g. "coretemp".
type SensorGroup struct {
	Name     string
	Readings []Reading
}

// Source reads raw host counters. Each method may fail independently.
type Source interface {
	// CPUPercent returns per-core utilization averaged over a short interval.
	CPUPercent(ctx context.Context) ([]float64, error)
	CPUFrequency(ctx context.Context) (float64, error)
	CPUCores(ctx context.Context) (int, error)
	LoadAvg(ctx context.Context) (LoadAvg, error)
	VirtualMemory(ctx context.Context) (VirtualMemory, error)
	SwapPercent(ctx context.Context) (float64, error)
	DiskUsage(ctx context.Context, path string) (float64, error)
	DiskIO(ctx context.Context) (DiskCounters, error)
	NetIO(ctx context.Context) (NetCounters, error)
	BootTime(ctx context.Context) (time.Time, error)
	// Temperatures returns sensor groups in the order the host reports them.
	Temperatures(ctx context.Context) ([]SensorGroup, error)
}

// ProcessLister lists the busiest processes.
type ProcessLister interface {
	TopProcesses(ctx context.Context, n int) ([]model.Process, error)
}
