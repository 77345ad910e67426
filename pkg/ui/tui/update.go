package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"boardharvest/pkg/status"
)

// StatusMsg carries a status update from the run
type StatusMsg struct {
	Status status.Status
}

// LogMsg adds a line to the log panel
type LogMsg struct {
	Level   string
	Message string
}

// BoardMsg sets the board label once the title is known
type BoardMsg struct {
	Board string
}

// FinishedMsg ends the run. The program quits after it.
type FinishedMsg struct {
	Err error
}

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StatusMsg:
		m.status = msg.Status
		switch msg.Status.Phase {
		case status.Persisting:
			m.addLog("INFO", "Fetch finished, saving files")
		case status.Cancelled:
			m.addLog("WARN", "Run cancelled")
		case status.Done:
			m.addLog("SUCCESS", msg.Status.String())
		}
		return m, nil

	case BoardMsg:
		m.board = msg.Board
		return m, nil

	case LogMsg:
		m.addLog(msg.Level, msg.Message)
		return m, nil

	case FinishedMsg:
		m.finished = true
		m.err = msg.Err
		if msg.Err != nil {
			m.addLog("ERROR", msg.Err.Error())
		}
		return m, tea.Quit
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c", "esc":
		if m.finished {
			return m, tea.Quit
		}
		if !m.cancelled {
			m.cancelled = true
			m.addLog("WARN", "Interrupt requested, finishing current phase")
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	case "ctrl+l":
		m.logs = nil
		return m, nil
	}

	return m, nil
}
