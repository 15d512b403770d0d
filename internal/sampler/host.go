package sampler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

// cpuSampleWindow is how long CPUPercent measures utilization for.
const cpuSampleWindow = 100 * time.Millisecond

// HostSource reads counters from the local host through gopsutil.
type HostSource struct {
	// CPUWindow overrides cpuSampleWindow when positive.
	CPUWindow time.Duration

	mu    sync.Mutex
	procs map[int32]*process.Process
}

func NewHostSource() *HostSource { return &HostSource{} }

func (h *HostSource) CPUPercent(ctx context.Context) ([]float64, error) {
	window := h.CPUWindow
	if window <= 0 {
		window = cpuSampleWindow
	}
	return cpu.PercentWithContext(ctx, window, true)
}

// CPUFrequency reports the current clock in MHz. cpu.Info substitutes the
// maximum clock on Linux, so it is only the last fallback.
func (h *HostSource) CPUFrequency(ctx context.Context) (float64, error) {
	if mhz, ok := scalingFrequency(); ok {
		return mhz, nil
	}
	if mhz, ok := cpuinfoFrequency(); ok {
		return mhz, nil
	}
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return 0, err
	}
	if len(infos) == 0 {
		return 0, errors.New("no cpu info")
	}
	return infos[0].Mhz, nil
}

func (h *HostSource) CPUCores(ctx context.Context) (int, error) {
	return cpu.CountsWithContext(ctx, true)
}

func (h *HostSource) LoadAvg(ctx context.Context) (LoadAvg, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return LoadAvg{}, err
	}
	return LoadAvg{Load1: avg.Load1, Load5: avg.Load5, Load15: avg.Load15}, nil
}

func (h *HostSource) VirtualMemory(ctx context.Context) (VirtualMemory, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return VirtualMemory{}, err
	}
	return VirtualMemory{
		TotalBytes:     vm.Total,
		AvailableBytes: vm.Available,
		UsedPercent:    vm.UsedPercent,
	}, nil
}

func (h *HostSource) SwapPercent(ctx context.Context) (float64, error) {
	sw, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return sw.UsedPercent, nil
}

func (h *HostSource) DiskUsage(ctx context.Context, path string) (float64, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, err
	}
	return usage.UsedPercent, nil
}

// DiskIO totals whole block devices only. Partitions repeat the traffic
// of the disk they live on.
func (h *HostSource) DiskIO(ctx context.Context) (DiskCounters, error) {
	counters, err := disk.IOCountersWithContext(ctx)
	if err != nil {
		return DiskCounters{}, err
	}
	var out DiskCounters
	for name, st := range counters {
		if strings.HasPrefix(name, "loop") || strings.HasPrefix(name, "ram") {
			continue
		}
		if isPartition(name, counters) {
			continue
		}
		out.ReadBytes += st.ReadBytes
		out.WriteBytes += st.WriteBytes
	}
	return out, nil
}

func (h *HostSource) NetIO(ctx context.Context) (NetCounters, error) {
	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return NetCounters{}, err
	}
	if len(counters) == 0 {
		return NetCounters{}, errors.New("no network counters")
	}
	return NetCounters{BytesSent: counters[0].BytesSent, BytesRecv: counters[0].BytesRecv}, nil
}

func (h *HostSource) BootTime(ctx context.Context) (time.Time, error) {
	secs, err := host.BootTimeWithContext(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(secs), 0), nil
}

// Temperatures groups sensor readings by chip name, the part of the sensor
// key before the first underscore ("coretemp_core_0" -> "coretemp").
func (h *HostSource) Temperatures(ctx context.Context) ([]SensorGroup, error) {
	temps, err := host.SensorsTemperaturesWithContext(ctx)
	// gopsutil reports unreadable individual sensors as warnings next to the
	// readings it did get.
	if err != nil && len(temps) == 0 {
		return nil, err
	}
	return groupSensors(temps), nil
}

func groupSensors(temps []host.TemperatureStat) []SensorGroup {
	var groups []SensorGroup
	index := make(map[string]int)
	for _, t := range temps {
		chip, label, _ := strings.Cut(t.SensorKey, "_")
		i, ok := index[chip]
		if !ok {
			i = len(groups)
			index[chip] = i
			groups = append(groups, SensorGroup{Name: chip})
		}
		groups[i].Readings = append(groups[i].Readings, Reading{Label: label, Current: t.Temperature})
	}
	return groups
}
