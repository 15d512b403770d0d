package model

// Level buckets a value for display coloring.
type Level int

const (
	LevelOK Level = iota
	LevelWarn
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warning"
	case LevelCritical:
		return "critical"
	default:
		return "ok"
	}
}

// Bucket returns LevelCritical above crit, LevelWarn above warn, LevelOK otherwise.
func Bucket(v, warn, crit float64) Level {
	switch {
	case v > crit:
		return LevelCritical
	case v > warn:
		return LevelWarn
	default:
		return LevelOK
	}
}

// Display thresholds.
func CPULevel(pct float64) Level    { return Bucket(pct, 60, 80) }
func MemoryLevel(pct float64) Level { return Bucket(pct, 60, 80) }
func DiskLevel(pct float64) Level   { return Bucket(pct, 75, 90) }
func TempLevel(c float64) Level     { return Bucket(c, 65, 80) }

// SwapLevel flags any swap use above 10%.
func SwapLevel(pct float64) Level {
	if pct > 10 {
		return LevelCritical
	}
	return LevelOK
}

// LoadLevel compares the 1-minute load against the core count.
func LoadLevel(load1 float64, cores int) Level {
	if cores <= 0 {
		return LevelOK
	}
	c := float64(cores)
	return Bucket(load1, 0.7*c, c)
}
