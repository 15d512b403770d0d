package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFormatUptime(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{3*time.Hour + 25*time.Minute, "3h 25m"},
		{3*time.Hour + 25*time.Minute + 59*time.Second, "3h 25m"},
		{59 * time.Second, "0h 0m"},
		{49*time.Hour + 1*time.Minute, "49h 1m"},
		{-time.Minute, "0h 0m"},
	}
	for _, tc := range cases {
		if got := FormatUptime(tc.d); got != tc.want {
			t.Fatalf("FormatUptime(%v): expected %q, got %q", tc.d, tc.want, got)
		}
	}
}

func TestFieldJSON(t *testing.T) {
	b, err := json.Marshal(MetricsSnapshot{}.TemperatureC)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "null" {
		t.Fatalf("expected null, got %s", b)
	}
	b, _ = json.Marshal(Some(55.5))
	if string(b) != "55.5" {
		t.Fatalf("expected 55.5, got %s", b)
	}
	if None[string]().Or("x") != "x" || Some("y").Or("x") != "y" {
		t.Fatal("Or returned the wrong value")
	}
}

func TestLevels(t *testing.T) {
	if CPULevel(85) != LevelCritical || CPULevel(70) != LevelWarn || CPULevel(60) != LevelOK {
		t.Fatal("cpu thresholds wrong")
	}
	if DiskLevel(80) != LevelWarn {
		t.Fatal("disk threshold wrong")
	}
	if SwapLevel(11) != LevelCritical || SwapLevel(10) != LevelOK {
		t.Fatal("swap threshold wrong")
	}
	if LoadLevel(7, 8) != LevelWarn || LoadLevel(9, 8) != LevelCritical || LoadLevel(9, 0) != LevelOK {
		t.Fatal("load threshold wrong")
	}
}

func TestStatusFields(t *testing.T) {
	d := DefaultStatus()
	if d.CPUGovernor != GovernorUnknown {
		t.Fatalf("expected %q governor, got %q", GovernorUnknown, d.CPUGovernor)
	}
	if len(d.Unavailable.Names()) != 5 {
		t.Fatalf("expected all fields unavailable, got %v", d.Unavailable)
	}
	s := FieldSSDTrim | FieldCPUBoost
	if s.String() != "cpu_boost,ssd_trim" {
		t.Fatalf("unexpected %q", s.String())
	}
	if StatusFields(0).String() != "none" {
		t.Fatal("empty set should print none")
	}
}

func TestStatusJSONListsUnavailable(t *testing.T) {
	frame := Frame{Status: OptimizationStatus{
		CPUGovernor: "performance",
		Unavailable: FieldMemoryTuned | FieldSSDTrim,
	}}
	raw, err := json.Marshal(frame)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		Status map[string]any `json:"status"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	names, ok := decoded.Status["unavailable"].([]any)
	if !ok || len(names) != 2 || names[0] != "memory_tuned" || names[1] != "ssd_trim" {
		t.Fatalf("expected unavailable [memory_tuned ssd_trim], got %s", raw)
	}
	if decoded.Status["memory_tuned"] != false || decoded.Status["cpu_governor"] != "performance" {
		t.Fatalf("unexpected status fields: %s", raw)
	}

	raw, err = json.Marshal(OptimizationStatus{CPUGovernor: "powersave"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var clean map[string]any
	if err := json.Unmarshal(raw, &clean); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if list, ok := clean["unavailable"].([]any); !ok || len(list) != 0 {
		t.Fatalf("expected empty unavailable list, got %s", raw)
	}
}
