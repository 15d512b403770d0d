package sampler

import (
	"strings"

	"github.com/Dicklesworthstone/popdash/internal/model"
)

// cpuSensorMarkers identify sensor groups that report CPU temperature.
var cpuSensorMarkers = []string{"coretemp", "k10temp", "cpu"}

// cpuTemperature returns the first reading of the first non-empty CPU sensor group.
func cpuTemperature(groups []SensorGroup) model.Field[float64] {
	for _, g := range groups {
		if !isCPUSensor(g.Name) || len(g.Readings) == 0 {
			continue
		}
		return model.Some(g.Readings[0].Current)
	}
	return model.None[float64]()
}

func isCPUSensor(name string) bool {
	name = strings.ToLower(name)
	for _, m := range cpuSensorMarkers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}
