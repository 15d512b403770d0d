package model

import (
	"fmt"
	"time"
)

// MetricsSnapshot is one tick of host metrics. Rates are MB/s (bytes / 1024²).
type MetricsSnapshot struct {
	Timestamp time.Time `json:"timestamp"`

	CPUPercent      float64   `json:"cpu_percent"`
	CPUFrequencyMHz float64   `json:"cpu_frequency_mhz"`
	CPUCoreCount    int       `json:"cpu_core_count"`
	CPUPerCore      []float64 `json:"cpu_per_core,omitempty"`

	Load1  float64 `json:"load1"`
	Load5  float64 `json:"load5"`
	Load15 float64 `json:"load15"`

	MemoryPercent      float64 `json:"memory_percent"`
	MemoryAvailableGiB float64 `json:"memory_available_gib"`
	MemoryTotalGiB     float64 `json:"memory_total_gib"`
	SwapPercent        float64 `json:"swap_percent"`

	DiskUsagePercent float64 `json:"disk_usage_percent"`
	DiskReadMBps     float64 `json:"disk_read_mbps"`
	DiskWriteMBps    float64 `json:"disk_write_mbps"`

	NetSentMBps float64 `json:"net_sent_mbps"`
	NetRecvMBps float64 `json:"net_recv_mbps"`

	Uptime       time.Duration  `json:"uptime_ns"`
	TemperatureC Field[float64] `json:"temperature_c"`
}

// UptimeString renders the uptime as whole hours and the remaining whole minutes.
func (m MetricsSnapshot) UptimeString() string { return FormatUptime(m.Uptime) }

// FormatUptime renders d as "<H>h <M>m". Negative durations render as zero.
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := d / time.Hour
	minutes := (d % time.Hour) / time.Minute
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
