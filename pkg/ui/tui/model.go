// Package tui renders a harvest run as a full-screen bubbletea view: a
// spinner while the board scrolls, a progress bar while items are fetched
// and a short log of notable events.
package tui

import (
	"context"
	"time"

	"boardharvest/pkg/status"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const defaultMaxLogLines = 8

// LogLine is one entry of the log panel
type LogLine struct {
	Time    time.Time
	Level   string
	Message string
}

// Model is the bubbletea model of a run
type Model struct {
	spinner  spinner.Model
	progress progress.Model

	board     string
	status    status.Status
	started   time.Time
	finished  bool
	err       error
	cancel    context.CancelFunc
	cancelled bool

	logs        []LogLine
	maxLogLines int

	width  int
	height int
}

// NewModel creates a model for one board. cancel is invoked when the user
// interrupts the run and may be nil.
func NewModel(board string, cancel context.CancelFunc) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(pinRed)

	return &Model{
		spinner:     s,
		progress:    progress.New(progress.WithGradient("#E60023", "#3FB950")),
		board:       board,
		status:      status.ScrollingStatus(0),
		started:     time.Now(),
		cancel:      cancel,
		maxLogLines: defaultMaxLogLines,
	}
}

// Init starts the spinner
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Status returns the last status applied
func (m *Model) Status() status.Status {
	return m.status
}

// Finished reports whether the run has ended
func (m *Model) Finished() bool {
	return m.finished
}

// Err returns the error the run ended with
func (m *Model) Err() error {
	return m.err
}

func (m *Model) addLog(level, message string) {
	m.logs = append(m.logs, LogLine{Time: time.Now(), Level: level, Message: message})
	if len(m.logs) > m.maxLogLines {
		m.logs = m.logs[len(m.logs)-m.maxLogLines:]
	}
}

// fraction is the share of the fetch phase completed
func (m *Model) fraction() float64 {
	switch m.status.Phase {
	case status.Fetching:
		if m.status.Total == 0 {
			return 0
		}
		return float64(m.status.Count) / float64(m.status.Total)
	case status.Persisting, status.Done:
		return 1
	default:
		return 0
	}
}
