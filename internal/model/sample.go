package model

import "time"

// Process is a lightweight top entry.
type Process struct {
	PID           int32   `json:"pid"`
	Name          string  `json:"name"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	Status        string  `json:"status"`
}

// Frame is the read model exchanged between the driver, UI, and JSON exporters.
// Consumers must treat it as read-only.
type Frame struct {
	Metrics     MetricsSnapshot    `json:"metrics"`
	Status      OptimizationStatus `json:"status"`
	StatusKnown bool               `json:"status_known"`
	History     HistorySnapshot    `json:"history"`
	Top         []Process          `json:"top,omitempty"`
}

// Zero returns an empty frame for initialization.
func Zero() Frame {
	return Frame{
		Metrics: MetricsSnapshot{Timestamp: time.Now()},
		Status:  DefaultStatus(),
	}
}
