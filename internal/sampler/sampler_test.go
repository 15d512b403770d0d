package sampler

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/Dicklesworthstone/popdash/internal/model"
)

var errUnsupported = errors.New("unsupported")

type fakeSource struct {
	cpu     []float64
	cpuErr  error
	vm      VirtualMemory
	vmErr   error
	disk    DiskCounters
	diskErr error
	net     NetCounters
	netErr  error
	boot    time.Time
	bootErr error
	temps   []SensorGroup
	loadErr error
}

func (f *fakeSource) CPUPercent(context.Context) ([]float64, error) { return f.cpu, f.cpuErr }
func (f *fakeSource) CPUFrequency(context.Context) (float64, error) { return 2400, nil }
func (f *fakeSource) CPUCores(context.Context) (int, error)         { return len(f.cpu), nil }
func (f *fakeSource) LoadAvg(context.Context) (LoadAvg, error) {
	if f.loadErr != nil {
		return LoadAvg{}, f.loadErr
	}
	return LoadAvg{Load1: 1, Load5: 0.5, Load15: 0.25}, nil
}
func (f *fakeSource) VirtualMemory(context.Context) (VirtualMemory, error) { return f.vm, f.vmErr }
func (f *fakeSource) SwapPercent(context.Context) (float64, error)         { return 3, nil }
func (f *fakeSource) DiskUsage(context.Context, string) (float64, error)   { return 42, nil }
func (f *fakeSource) DiskIO(context.Context) (DiskCounters, error)         { return f.disk, f.diskErr }
func (f *fakeSource) NetIO(context.Context) (NetCounters, error)           { return f.net, f.netErr }
func (f *fakeSource) BootTime(context.Context) (time.Time, error)          { return f.boot, f.bootErr }
func (f *fakeSource) Temperatures(context.Context) ([]SensorGroup, error) {
	if f.temps == nil {
		return nil, errUnsupported
	}
	return f.temps, nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestSampler() (*Sampler, *fakeSource, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	src := &fakeSource{
		cpu:  []float64{10, 30},
		vm:   VirtualMemory{TotalBytes: 16 * bytesPerGiB, AvailableBytes: 4 * bytesPerGiB, UsedPercent: 75},
		boot: clock.t.Add(-(3*time.Hour + 25*time.Minute)),
	}
	return New(src, WithClock(clock.now)), src, clock
}

func TestFirstTickHasZeroRates(t *testing.T) {
	s, src, _ := newTestSampler()
	src.disk = DiskCounters{ReadBytes: 1 << 40, WriteBytes: 1 << 40}
	src.net = NetCounters{BytesSent: 1 << 30, BytesRecv: 1 << 30}

	snap, err := s.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if snap.DiskReadMBps != 0 || snap.DiskWriteMBps != 0 || snap.NetSentMBps != 0 || snap.NetRecvMBps != 0 {
		t.Fatalf("expected zero rates on first tick, got %+v", snap)
	}
}

func TestDiskReadRate(t *testing.T) {
	s, src, clock := newTestSampler()
	if _, err := s.Tick(context.Background()); err != nil {
		t.Fatal(err)
	}
	clock.advance(2 * time.Second)
	src.disk.ReadBytes = 10_485_760
	src.net = NetCounters{BytesSent: 2 * bytesPerMB, BytesRecv: 4 * bytesPerMB}

	snap, err := s.Tick(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(snap.DiskReadMBps-5.0) > 1e-9 {
		t.Fatalf("expected 5.0 MB/s read, got %v", snap.DiskReadMBps)
	}
	if snap.NetSentMBps != 1 || snap.NetRecvMBps != 2 {
		t.Fatalf("expected 1/2 MB/s net, got %v/%v", snap.NetSentMBps, snap.NetRecvMBps)
	}
}

func TestCounterResetClampsToZero(t *testing.T) {
	s, src, clock := newTestSampler()
	src.disk = DiskCounters{ReadBytes: 500 * bytesPerMB, WriteBytes: 500 * bytesPerMB}
	src.net = NetCounters{BytesSent: 500 * bytesPerMB, BytesRecv: 500 * bytesPerMB}
	if _, err := s.Tick(context.Background()); err != nil {
		t.Fatal(err)
	}

	clock.advance(2 * time.Second)
	src.disk = DiskCounters{ReadBytes: 1, WriteBytes: 600 * bytesPerMB}
	src.net = NetCounters{BytesSent: 0, BytesRecv: 10}
	snap, err := s.Tick(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for name, v := range map[string]float64{
		"disk read": snap.DiskReadMBps,
		"net sent":  snap.NetSentMBps,
		"net recv":  snap.NetRecvMBps,
	} {
		if v != 0 {
			t.Fatalf("%s: expected 0 after counter reset, got %v", name, v)
		}
	}
	if snap.DiskWriteMBps != 50 {
		t.Fatalf("expected 50 MB/s write, got %v", snap.DiskWriteMBps)
	}
}

func TestNonPositiveElapsedYieldsZero(t *testing.T) {
	s, src, _ := newTestSampler()
	if _, err := s.Tick(context.Background()); err != nil {
		t.Fatal(err)
	}
	src.disk.ReadBytes = 10 * bytesPerMB
	snap, err := s.Tick(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap.DiskReadMBps != 0 {
		t.Fatalf("expected 0 with zero elapsed, got %v", snap.DiskReadMBps)
	}
}

func TestUnreadableCountersRestartReference(t *testing.T) {
	s, src, clock := newTestSampler()
	if _, err := s.Tick(context.Background()); err != nil {
		t.Fatal(err)
	}
	clock.advance(2 * time.Second)
	src.diskErr = errUnsupported
	snap, err := s.Tick(context.Background())
	if err != nil {
		t.Fatalf("disk failure must not fail the tick: %v", err)
	}
	if snap.DiskReadMBps != 0 {
		t.Fatalf("expected 0 while disk unreadable, got %v", snap.DiskReadMBps)
	}

	clock.advance(2 * time.Second)
	src.diskErr = nil
	src.disk.ReadBytes = 100 * bytesPerMB
	snap, _ = s.Tick(context.Background())
	if snap.DiskReadMBps != 0 {
		t.Fatalf("expected 0 on first readable tick after a gap, got %v", snap.DiskReadMBps)
	}
}

func TestHistoryBounded(t *testing.T) {
	s, src, clock := newTestSampler()
	for i := 0; i < 100; i++ {
		src.cpu = []float64{float64(i)}
		src.vm.UsedPercent = float64(i) / 2
		if _, err := s.Tick(context.Background()); err != nil {
			t.Fatal(err)
		}
		clock.advance(time.Second)
	}
	h := s.History()
	if len(h.CPU) != 60 || len(h.Memory) != 60 {
		t.Fatalf("expected 60 entries, got cpu=%d mem=%d", len(h.CPU), len(h.Memory))
	}
	for i := range h.CPU {
		if h.CPU[i] != float64(40+i) {
			t.Fatalf("cpu entry %d: expected %d, got %v", i, 40+i, h.CPU[i])
		}
		if h.Memory[i] != float64(40+i)/2 {
			t.Fatalf("memory entry %d: expected %v, got %v", i, float64(40+i)/2, h.Memory[i])
		}
	}
}

func TestSnapshotFields(t *testing.T) {
	s, _, _ := newTestSampler()
	snap, err := s.Tick(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap.CPUPercent != 20 || snap.CPUCoreCount != 2 || snap.CPUFrequencyMHz != 2400 {
		t.Fatalf("unexpected cpu fields %+v", snap)
	}
	if snap.MemoryTotalGiB != 16 || snap.MemoryAvailableGiB != 4 || snap.MemoryPercent != 75 {
		t.Fatalf("unexpected memory fields %+v", snap)
	}
	if snap.UptimeString() != "3h 25m" {
		t.Fatalf("expected uptime 3h 25m, got %q", snap.UptimeString())
	}
	if snap.Load1 != 1 || snap.DiskUsagePercent != 42 || snap.SwapPercent != 3 {
		t.Fatalf("unexpected load/disk/swap %+v", snap)
	}
}

func TestOptionalSourcesDegrade(t *testing.T) {
	s, src, _ := newTestSampler()
	src.loadErr = errUnsupported
	src.bootErr = errUnsupported
	src.netErr = errUnsupported
	snap, err := s.Tick(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if snap.Load1 != 0 || snap.Uptime != 0 || snap.TemperatureC.Available {
		t.Fatalf("expected degraded defaults, got %+v", snap)
	}
}

func TestCPUFailureIsTickFatal(t *testing.T) {
	s, src, _ := newTestSampler()
	src.cpuErr = errUnsupported
	_, err := s.Tick(context.Background())
	if !errors.Is(err, ErrCountersUnavailable) {
		t.Fatalf("expected ErrCountersUnavailable, got %v", err)
	}
	if !errors.Is(err, errUnsupported) {
		t.Fatalf("expected cause to be wrapped, got %v", err)
	}
	if len(s.History().CPU) != 0 {
		t.Fatal("failed tick must not record history")
	}

	src.cpuErr = nil
	src.vmErr = errUnsupported
	if _, err := s.Tick(context.Background()); !errors.Is(err, ErrCountersUnavailable) {
		t.Fatalf("expected memory failure to be tick-fatal, got %v", err)
	}

	src.vmErr = nil
	src.cpu = nil
	if _, err := s.Tick(context.Background()); !errors.Is(err, ErrCountersUnavailable) {
		t.Fatalf("expected empty cpu list to be tick-fatal, got %v", err)
	}
}

func TestTemperatureResolution(t *testing.T) {
	s, src, _ := newTestSampler()
	src.temps = []SensorGroup{
		{Name: "acpitz", Readings: []Reading{{Current: 40}}},
		{Name: "coretemp", Readings: []Reading{{Label: "package_id_0", Current: 55}, {Current: 60}}},
	}
	snap, _ := s.Tick(context.Background())
	if !snap.TemperatureC.Available || snap.TemperatureC.Value != 55 {
		t.Fatalf("expected 55°C, got %+v", snap.TemperatureC)
	}

	src.temps = []SensorGroup{{Name: "acpitz", Readings: []Reading{{Current: 40}}}, {Name: "nvme"}}
	snap, _ = s.Tick(context.Background())
	if snap.TemperatureC.Available {
		t.Fatalf("expected absent temperature, got %+v", snap.TemperatureC)
	}
}

func TestCPUTemperatureSkipsEmptyGroups(t *testing.T) {
	got := cpuTemperature([]SensorGroup{
		{Name: "cpu_thermal"},
		{Name: "K10TEMP", Readings: []Reading{{Current: 71.5}}},
	})
	if got != model.Some(71.5) {
		t.Fatalf("expected 71.5, got %+v", got)
	}
}

func TestGroupSensorsPreservesOrder(t *testing.T) {
	groups := groupSensors([]host.TemperatureStat{
		{SensorKey: "acpitz", Temperature: 30},
		{SensorKey: "coretemp_package_id_0", Temperature: 55},
		{SensorKey: "coretemp_core_0", Temperature: 53},
		{SensorKey: "acpitz", Temperature: 31},
	})
	if len(groups) != 2 || groups[0].Name != "acpitz" || groups[1].Name != "coretemp" {
		t.Fatalf("unexpected groups %+v", groups)
	}
	if len(groups[1].Readings) != 2 || groups[1].Readings[0].Current != 55 || groups[1].Readings[0].Label != "package_id_0" {
		t.Fatalf("unexpected coretemp readings %+v", groups[1].Readings)
	}
	if len(groups[0].Readings) != 2 {
		t.Fatalf("expected both acpitz readings, got %+v", groups[0].Readings)
	}
}

func TestRankProcesses(t *testing.T) {
	procs := []model.Process{
		{PID: 1, CPUPercent: 5},
		{PID: 2, CPUPercent: 50},
		{PID: 3, CPUPercent: 20},
	}
	got := rankProcesses(procs, 2)
	if len(got) != 2 || got[0].PID != 2 || got[1].PID != 3 {
		t.Fatalf("unexpected ranking %+v", got)
	}
}
