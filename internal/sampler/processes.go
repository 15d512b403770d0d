package sampler

import (
	"context"
	"sort"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/Dicklesworthstone/popdash/internal/model"
)

// TopProcesses returns up to n processes with non-zero CPU use, busiest first.
// CPU use is measured since the previous call, so a process seen for the
// first time reports zero and is left out until the next call.
// Processes that exit or deny access mid-scan are skipped.
func (h *HostSource) TopProcesses(ctx context.Context, n int) ([]model.Process, error) {
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return nil, err
	}
	procs := h.trackProcesses(pids)
	var top []model.Process
	for _, p := range procs {
		cpuPct, err := p.PercentWithContext(ctx, 0)
		if err != nil || cpuPct <= 0 {
			continue
		}
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		memPct, _ := p.MemoryPercentWithContext(ctx)
		status := "unknown"
		if st, err := p.StatusWithContext(ctx); err == nil && len(st) > 0 {
			status = st[0]
		}
		top = append(top, model.Process{
			PID:           p.Pid,
			Name:          name,
			CPUPercent:    cpuPct,
			MemoryPercent: float64(memPct),
			Status:        status,
		})
	}
	return rankProcesses(top, n), nil
}

// trackProcesses returns the cached handle for every pid, creating handles
// for new pids and forgetting those that are gone. A handle keeps the CPU
// times of its last measurement.
func (h *HostSource) trackProcesses(pids []int32) []*process.Process {
	h.mu.Lock()
	defer h.mu.Unlock()

	seen := make(map[int32]*process.Process, len(pids))
	out := make([]*process.Process, 0, len(pids))
	for _, pid := range pids {
		p, ok := h.procs[pid]
		if !ok {
			p = &process.Process{Pid: pid}
		}
		seen[pid] = p
		out = append(out, p)
	}
	h.procs = seen
	return out
}

func rankProcesses(procs []model.Process, n int) []model.Process {
	sort.SliceStable(procs, func(i, j int) bool { return procs[i].CPUPercent > procs[j].CPUPercent })
	if n > 0 && len(procs) > n {
		procs = procs[:n]
	}
	return procs
}
