// ABOUTME: Bubbletea model for the soundscape TUI
// ABOUTME: Defines the trigger button, state label and key handling
package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/frostbloom/frostbloom-go/pkg/session"
)

const (
	labelIdle   = "Activate ASMR Soundscape"
	labelActive = "Soundscape Active"
)

// Controls is what the TUI drives
type Controls interface {
	Trigger(ctx context.Context) error
	Release()
	SetVolume(volume int)
	SetMuted(muted bool)
}

// Model represents the TUI state
type Model struct {
	controls Controls
	name     string

	// Session
	state     session.State
	sessionID string
	recipe    string
	events    int
	anchor    float64
	lastErr   string

	// Output
	volume int
	muted  bool

	// Remote control
	listen  string
	clients int

	quitting bool

	// Dimensions
	width  int
	height int
}

// StateMsg reports a session transition
type StateMsg struct {
	State     session.State
	SessionID string
	Recipe    string
	Events    int
	Anchor    float64
}

// ErrorMsg reports a failed trigger
type ErrorMsg struct {
	Err error
}

// StatusMsg updates remote control details
type StatusMsg struct {
	Listen  string
	Clients int
}

type triggerDoneMsg struct {
	err error
}

// NewModel creates a new TUI model
func NewModel(controls Controls, name string) Model {
	return Model{
		controls: controls,
		name:     name,
		volume:   100,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StateMsg:
		m.applyState(msg)
	case ErrorMsg:
		m.lastErr = msg.Err.Error()
	case triggerDoneMsg:
		if msg.err != nil {
			m.lastErr = msg.err.Error()
		}
	case StatusMsg:
		m.listen = msg.Listen
		m.clients = msg.Clients
	}

	return m, nil
}

// ButtonLabel is the trigger button text for the current state
func (m Model) ButtonLabel() string {
	if m.state == session.StateIdle {
		return labelIdle
	}
	return labelActive
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Releasing soundscape...\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("117")).
		MarginBottom(1)

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86"))

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250"))

	buttonStyle := lipgloss.NewStyle().
		Padding(0, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("117"))
	if m.state != session.StateIdle {
		buttonStyle = buttonStyle.
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("153"))
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(m.name))
	b.WriteString("\n\n")
	b.WriteString(buttonStyle.Render(m.ButtonLabel()))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("State: "))
	b.WriteString(valueStyle.Render(m.state.String()))
	b.WriteString("\n")

	if m.sessionID != "" {
		b.WriteString(headerStyle.Render("Scene: "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%s, %d events at %.2fs (%s)", m.recipe, m.events, m.anchor, shortID(m.sessionID))))
		b.WriteString("\n")
	}

	muteIcon := ""
	if m.muted {
		muteIcon = " (muted)"
	}
	b.WriteString(headerStyle.Render("Volume: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("[%s] %d%%%s", renderBar(m.volume, 100, 10), m.volume, muteIcon)))
	b.WriteString("\n")

	if m.listen != "" {
		b.WriteString(headerStyle.Render("Remote: "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%s (%d connected)", m.listen, m.clients)))
		b.WriteString("\n")
	}

	if m.lastErr != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render(m.lastErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Faint(true).Render("enter:Trigger  x:Release  ↑/↓:Volume  m:Mute  q:Quit"))

	return b.String()
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		if m.controls != nil {
			m.controls.Release()
		}
		return m, tea.Quit
	case "enter", " ":
		m.lastErr = ""
		return m, m.trigger()
	case "x":
		if m.controls != nil {
			m.controls.Release()
		}
	case "up":
		if m.volume < 100 {
			m.volume = min(m.volume+5, 100)
			m.pushVolume()
		}
	case "down":
		if m.volume > 0 {
			m.volume = max(m.volume-5, 0)
			m.pushVolume()
		}
	case "m":
		m.muted = !m.muted
		if m.controls != nil {
			m.controls.SetMuted(m.muted)
		}
	}

	return m, nil
}

func (m Model) trigger() tea.Cmd {
	controls := m.controls
	if controls == nil {
		return nil
	}
	return func() tea.Msg {
		return triggerDoneMsg{err: controls.Trigger(context.Background())}
	}
}

func (m Model) pushVolume() {
	if m.controls != nil {
		m.controls.SetVolume(m.volume)
	}
}

// applyState updates model from a state message
func (m *Model) applyState(msg StateMsg) {
	m.state = msg.State
	if msg.SessionID != "" {
		m.sessionID = msg.SessionID
		m.recipe = msg.Recipe
		m.events = msg.Events
		m.anchor = msg.Anchor
	}
	if msg.State != session.StateIdle {
		m.lastErr = ""
	}
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
