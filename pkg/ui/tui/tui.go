package tui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"boardharvest/pkg/status"
)

// TUI runs the bubbletea program for one harvest run and is a status.Sink
type TUI struct {
	program *tea.Program
	model   *Model
}

var _ status.Sink = (*TUI)(nil)

// Option configures the program
type Option func(*[]tea.ProgramOption)

// WithIO replaces the terminal, used to run the program headless
func WithIO(in io.Reader, out io.Writer) Option {
	return func(opts *[]tea.ProgramOption) {
		*opts = append(*opts, tea.WithInput(in), tea.WithOutput(out))
	}
}

// NewTUI creates the program. cancel is called when the user interrupts.
func NewTUI(board string, cancel context.CancelFunc, opts ...Option) *TUI {
	model := NewModel(board, cancel)

	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	for _, opt := range opts {
		opt(&programOpts)
	}

	return &TUI{
		program: tea.NewProgram(model, programOpts...),
		model:   model,
	}
}

// Run blocks until the program exits and returns the run error, if any
func (t *TUI) Run() error {
	if _, err := t.program.Run(); err != nil {
		return fmt.Errorf("failed to run terminal UI: %w", err)
	}
	return nil
}

// Update forwards a status to the program
func (t *TUI) Update(s status.Status) {
	t.program.Send(StatusMsg{Status: s})
}

// SetBoard updates the board label
func (t *TUI) SetBoard(board string) {
	t.program.Send(BoardMsg{Board: board})
}

// Log adds a formatted line to the log panel
func (t *TUI) Log(level, format string, args ...interface{}) {
	t.program.Send(LogMsg{Level: level, Message: fmt.Sprintf(format, args...)})
}

// Finish ends the program
func (t *TUI) Finish(err error) {
	t.program.Send(FinishedMsg{Err: err})
}

// Model exposes the model so callers can read the final state after Run
func (t *TUI) Model() *Model {
	return t.model
}
