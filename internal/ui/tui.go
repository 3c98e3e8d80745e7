// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program and forwards session updates to it
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// TUI runs the soundscape UI
type TUI struct {
	program *tea.Program
	updates chan tea.Msg
	done    chan struct{}
}

// New creates a TUI bound to controls
func New(controls Controls, name string) *TUI {
	t := &TUI{
		updates: make(chan tea.Msg, 16),
		done:    make(chan struct{}),
	}
	t.program = tea.NewProgram(NewModel(controls, name), tea.WithAltScreen())
	return t
}

// Run blocks until the user quits
func (t *TUI) Run() error {
	go func() {
		for {
			select {
			case msg := <-t.updates:
				t.program.Send(msg)
			case <-t.done:
				return
			}
		}
	}()

	_, err := t.program.Run()
	close(t.done)
	return err
}

// Update queues a StateMsg, StatusMsg or ErrorMsg without blocking
func (t *TUI) Update(msg tea.Msg) {
	select {
	case t.updates <- msg:
	default:
		// Don't block if channel is full
	}
}

// Stop ends the program
func (t *TUI) Stop() {
	t.program.Quit()
}
