package ui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dicklesworthstone/popdash/internal/dashboard"
	"github.com/Dicklesworthstone/popdash/internal/model"
)

// Model renders live frames from the dashboard driver.
type Model struct {
	latest    model.Frame
	stream    <-chan model.Frame
	ctxCancel context.CancelFunc
	width     int
	height    int
}

// New starts the driver and returns a model that renders its frames.
func New(ctx context.Context, d *dashboard.Driver) *Model {
	ctx, cancel := context.WithCancel(ctx)
	go func() { _ = d.Run(ctx) }()
	return &Model{
		latest:    d.Latest(),
		stream:    d.Frames(),
		ctxCancel: cancel,
		width:     120,
		height:    40,
	}
}

// Messages
type tickMsg struct{}

func tickCmd() tea.Cmd { return tea.Tick(time.Second/5, func(time.Time) tea.Msg { return tickMsg{} }) }

func (m *Model) Init() tea.Cmd { return tickCmd() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.ctxCancel()
			return m, tea.Quit
		}
	case tickMsg:
		select {
		case f, ok := <-m.stream:
			if ok {
				m.latest = f
			}
		default:
		}
		return m, tickCmd()
	}
	return m, nil
}

func (m *Model) View() string { return Render(m.latest, m.width) }

// RunTUI starts the Bubble Tea program and blocks until the user quits.
func RunTUI(ctx context.Context, d *dashboard.Driver) error {
	m := New(ctx, d)
	defer m.ctxCancel()
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
