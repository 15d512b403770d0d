package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/popdash/internal/model"
)

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	gaugeFill   = "█"
	gaugeEmpty  = "░"
	sparkRunes  = []rune("▁▂▃▄▅▆▇█")
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1).
			MarginRight(1)
	headerStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("45")).
			Padding(0, 2)

	levelStyles = map[model.Level]lipgloss.Style{
		model.LevelOK:       lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		model.LevelWarn:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		model.LevelCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
)

const (
	labelWidth  = 16
	valueWidth  = 18
	detailWidth = 24
	gaugeWidth  = 10
)

// Render draws a full dashboard frame at the given terminal width.
func Render(f model.Frame, width int) string {
	header := headerStyle.Render(
		titleStyle.Render("Pop!_OS Optimizer Dashboard") + "\n" +
			subtleStyle.Render(f.Metrics.Timestamp.Format("Mon Jan 2 15:04:05 MST 2006")))

	left := lipgloss.JoinVertical(lipgloss.Left, metricsCard(f), statusCard(f))
	var body string
	if procs := processCard(f.Top); width >= 110 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, procs)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, left, procs)
	}
	footer := subtleStyle.Render("q quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func metricsCard(f model.Frame) string {
	m := f.Metrics
	rows := []string{
		row("CPU Usage", leveled(model.CPULevel(m.CPUPercent), "%.1f%%", m.CPUPercent), gaugeBar(m.CPUPercent)),
		row("CPU Frequency", fmt.Sprintf("%.0f MHz", m.CPUFrequencyMHz), fmt.Sprintf("(%d cores)", m.CPUCoreCount)),
		row("Load Average", leveled(model.LoadLevel(m.Load1, m.CPUCoreCount), "%.2f", m.Load1),
			fmt.Sprintf("%.2f %.2f", m.Load5, m.Load15)),
	}
	if m.TemperatureC.Available {
		rows = append(rows, row("Temperature", leveled(model.TempLevel(m.TemperatureC.Value), "%.1f°C", m.TemperatureC.Value), ""))
	}
	rows = append(rows,
		"",
		row("Memory", leveled(model.MemoryLevel(m.MemoryPercent), "%.1f%%", m.MemoryPercent), gaugeBar(m.MemoryPercent)),
		row("Memory Size", fmt.Sprintf("%.1fGB free", m.MemoryAvailableGiB), fmt.Sprintf("/ %.1fGB total", m.MemoryTotalGiB)),
		row("Swap Usage", leveled(model.SwapLevel(m.SwapPercent), "%.1f%%", m.SwapPercent), gaugeBar(m.SwapPercent)),
		"",
		row("Disk Usage", leveled(model.DiskLevel(m.DiskUsagePercent), "%.1f%%", m.DiskUsagePercent), gaugeBar(m.DiskUsagePercent)),
		row("Disk I/O", fmt.Sprintf("R: %.1f MB/s", m.DiskReadMBps), fmt.Sprintf("W: %.1f MB/s", m.DiskWriteMBps)),
		row("Network I/O", fmt.Sprintf("↓ %.1f MB/s", m.NetRecvMBps), fmt.Sprintf("↑ %.1f MB/s", m.NetSentMBps)),
		row("Uptime", m.UptimeString(), ""),
	)
	if len(f.History.CPU) > 0 {
		rows = append(rows, row("CPU Trend", "", sparkline(f.History.CPU, detailWidth)))
	}
	return card("System Metrics", strings.Join(rows, "\n"))
}

func statusCard(f model.Frame) string {
	if !f.StatusKnown {
		return card("Optimization Status", subtleStyle.Render("probing..."))
	}
	s := f.Status
	gov := levelStyles[model.LevelWarn].Render(s.CPUGovernor)
	if s.CPUGovernor == "performance" {
		gov = levelStyles[model.LevelOK].Render(s.CPUGovernor)
	}
	if s.Unavailable.Has(model.FieldCPUGovernor) {
		gov = subtleStyle.Render(model.GovernorUnknown)
	}
	rows := []string{
		row("CPU Boost", toggle(s, model.FieldCPUBoost, s.CPUBoostEnabled, "Enabled", "Disabled", model.LevelCritical), subtleStyle.Render("Performance enhancement")),
		row("CPU Governor", gov, subtleStyle.Render("Frequency scaling")),
		row("Memory", toggle(s, model.FieldMemoryTuned, s.MemoryTuned, "Optimized", "Default", model.LevelCritical), subtleStyle.Render("Swappiness & caching")),
		row("SSD TRIM", toggle(s, model.FieldSSDTrim, s.SSDTrimEnabled, "Enabled", "Disabled", model.LevelCritical), subtleStyle.Render("Weekly maintenance")),
		row("Desktop", toggle(s, model.FieldDesktopAnimations, s.DesktopAnimationsDisabled, "Optimized", "Default", model.LevelWarn), subtleStyle.Render("Animations & effects")),
	}
	return card("Optimization Status", strings.Join(rows, "\n"))
}

func toggle(s model.OptimizationStatus, field model.StatusFields, on bool, yes, no string, offLevel model.Level) string {
	switch {
	case s.Unavailable.Has(field):
		return subtleStyle.Render("? unknown")
	case on:
		return levelStyles[model.LevelOK].Render("✔ " + yes)
	default:
		return levelStyles[offLevel].Render("✘ " + no)
	}
}

func processCard(procs []model.Process) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-8s %-21s %6s %6s  %s\n", "PID", "Process", "CPU%", "Mem%", "Status")
	for _, p := range procs {
		cpu := levelStyles[model.Bucket(p.CPUPercent, 20, 50)].Render(fmt.Sprintf("%6.1f", p.CPUPercent))
		mem := levelStyles[model.Bucket(p.MemoryPercent, 5, 10)].Render(fmt.Sprintf("%6.1f", p.MemoryPercent))
		fmt.Fprintf(&b, "%-8d %-21s %s %s  %s\n", p.PID, truncate(p.Name, 18), cpu, mem, p.Status)
	}
	if len(procs) == 0 {
		b.WriteString(subtleStyle.Render("no busy processes"))
	}
	return card("Top Processes", strings.TrimRight(b.String(), "\n"))
}

// Helpers
func row(label, value, detail string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		labelStyle.Width(labelWidth).Render(label),
		lipgloss.NewStyle().Width(valueWidth).Render(value),
		lipgloss.NewStyle().Width(detailWidth).Render(detail))
}

func leveled(l model.Level, format string, v float64) string {
	return levelStyles[l].Render(fmt.Sprintf(format, v))
}

func gaugeBar(pct float64) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int((pct / 100) * gaugeWidth)
	bar := strings.Repeat(gaugeFill, filled) + strings.Repeat(gaugeEmpty, gaugeWidth-filled)
	return levelStyles[model.Bucket(pct, 60, 80)].Render(bar)
}

// sparkline draws the last width percentages, one rune per sample.
func sparkline(vals []float64, width int) string {
	if len(vals) > width {
		vals = vals[len(vals)-width:]
	}
	out := make([]rune, len(vals))
	top := len(sparkRunes) - 1
	for i, v := range vals {
		idx := int(v / 100 * float64(top))
		if idx < 0 {
			idx = 0
		}
		if idx > top {
			idx = top
		}
		out[i] = sparkRunes[idx]
	}
	return string(out)
}

func card(title, body string) string {
	titleStr := labelStyle.Render(title)
	content := titleStr + "\n" + body
	return cardStyle.Render(content)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
