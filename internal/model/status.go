package model

import (
	"encoding/json"
	"strings"
)

// GovernorUnknown is reported when the scaling governor cannot be read.
const GovernorUnknown = "unknown"

// StatusFields is a set of OptimizationStatus fields.
type StatusFields uint8

const (
	FieldCPUBoost StatusFields = 1 << iota
	FieldCPUGovernor
	FieldMemoryTuned
	FieldSSDTrim
	FieldDesktopAnimations
)

var statusFieldNames = []struct {
	f    StatusFields
	name string
}{
	{FieldCPUBoost, "cpu_boost"},
	{FieldCPUGovernor, "cpu_governor"},
	{FieldMemoryTuned, "memory_tuned"},
	{FieldSSDTrim, "ssd_trim"},
	{FieldDesktopAnimations, "desktop_animations"},
}

// Has reports whether f is in the set.
func (s StatusFields) Has(f StatusFields) bool { return s&f != 0 }

// Names lists the fields in the set in declaration order.
func (s StatusFields) Names() []string {
	var out []string
	for _, n := range statusFieldNames {
		if s.Has(n.f) {
			out = append(out, n.name)
		}
	}
	return out
}

func (s StatusFields) String() string {
	if s == 0 {
		return "none"
	}
	return strings.Join(s.Names(), ",")
}

// OptimizationStatus records which tuning changes are active on the host.
// Fields whose probe failed hold their default and are listed in Unavailable.
type OptimizationStatus struct {
	CPUBoostEnabled           bool         `json:"cpu_boost_enabled"`
	CPUGovernor               string       `json:"cpu_governor"`
	MemoryTuned               bool         `json:"memory_tuned"`
	SSDTrimEnabled            bool         `json:"ssd_trim_enabled"`
	DesktopAnimationsDisabled bool         `json:"desktop_animations_disabled"`
	Unavailable               StatusFields `json:"-"`
}

// MarshalJSON adds the unavailable field names, so a field that could not be
// read is distinguishable from a genuine false.
func (s OptimizationStatus) MarshalJSON() ([]byte, error) {
	type plain OptimizationStatus
	names := s.Unavailable.Names()
	if names == nil {
		names = []string{}
	}
	return json.Marshal(struct {
		plain
		Unavailable []string `json:"unavailable"`
	}{plain(s), names})
}

// DefaultStatus is the record reported when nothing could be probed.
func DefaultStatus() OptimizationStatus {
	return OptimizationStatus{
		CPUGovernor: GovernorUnknown,
		Unavailable: FieldCPUBoost | FieldCPUGovernor | FieldMemoryTuned | FieldSSDTrim | FieldDesktopAnimations,
	}
}
