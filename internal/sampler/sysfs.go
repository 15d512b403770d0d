package sampler

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
)

// hostSys and hostProc honour the same HOST_SYS and HOST_PROC overrides
// gopsutil reads, so both see one host when popdash runs in a container.
func hostSys(parts ...string) string  { return hostPath("HOST_SYS", "/sys", parts...) }
func hostProc(parts ...string) string { return hostPath("HOST_PROC", "/proc", parts...) }

func hostPath(env, fallback string, parts ...string) string {
	root := os.Getenv(env)
	if root == "" {
		root = fallback
	}
	return filepath.Join(append([]string{root}, parts...)...)
}

// isPartition reports whether name is a partition of another device in
// counters. sysfs is authoritative; the name is only consulted when the
// device has no sysfs entry at all.
func isPartition(name string, counters map[string]disk.IOCountersStat) bool {
	if _, err := os.Stat(hostSys("class", "block", name, "partition")); err == nil {
		return true
	}
	if _, err := os.Stat(hostSys("class", "block", name)); err == nil {
		return false
	}
	parent := partitionParent(name)
	if parent == name {
		return false
	}
	_, ok := counters[parent]
	return ok
}

func partitionParent(name string) string {
	if strings.HasPrefix(name, "nvme") || strings.HasPrefix(name, "mmcblk") {
		if idx := strings.LastIndex(name, "p"); idx > 0 {
			return name[:idx]
		}
		return name
	}
	trimmed := strings.TrimRight(name, "0123456789")
	if trimmed != "" {
		return trimmed
	}
	return name
}

// scalingFrequency averages the current clock of every CPU with cpufreq.
func scalingFrequency() (float64, bool) {
	paths, err := filepath.Glob(hostSys("devices", "system", "cpu", "cpu[0-9]*", "cpufreq", "scaling_cur_freq"))
	if err != nil || len(paths) == 0 {
		return 0, false
	}
	var sum float64
	var n int
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		khz, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
		if err != nil || khz <= 0 {
			continue
		}
		sum += khz / 1000
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// cpuinfoFrequency averages the "cpu MHz" lines of /proc/cpuinfo.
func cpuinfoFrequency() (float64, bool) {
	f, err := os.Open(hostProc("cpuinfo"))
	if err != nil {
		return 0, false
	}
	defer f.Close()

	var sum float64
	var n int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok || strings.TrimSpace(key) != "cpu MHz" {
			continue
		}
		mhz, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || mhz <= 0 {
			continue
		}
		sum += mhz
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
