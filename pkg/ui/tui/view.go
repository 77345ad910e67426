package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"boardharvest/pkg/status"
)

// View renders the entire TUI
func (m *Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}
	width := m.width - 4

	sections := []string{
		titleStyle.Render(" boardharvest "),
		m.renderRunPanel(width),
		m.renderLogPanel(width),
		helpStyle.Render("q: interrupt  ctrl+l: clear log"),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderRunPanel(width int) string {
	board := m.board
	if board == "" {
		board = "(untitled board)"
	}

	lines := []string{
		fmt.Sprintf("%s %s", labelStyle.Render("Board:"), valueStyle.Render(board)),
		fmt.Sprintf("%s %s", labelStyle.Render("Elapsed:"), valueStyle.Render(formatDuration(time.Since(m.started)))),
		"",
		m.renderPhase(),
	}

	if m.status.Phase >= status.Fetching && m.status.Phase != status.Cancelled {
		m.progress.Width = width - 4
		if m.progress.Width < 10 {
			m.progress.Width = 10
		}
		lines = append(lines, m.progress.ViewAs(m.fraction()))
	}

	return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *Model) renderPhase() string {
	text := m.status.String()
	switch m.status.Phase {
	case status.Done:
		return successStyle.Render("✓ " + text)
	case status.Cancelled:
		return warningStyle.Render("✗ " + text)
	default:
		if m.finished {
			return text
		}
		return m.spinner.View() + " " + text
	}
}

func (m *Model) renderLogPanel(width int) string {
	if len(m.logs) == 0 {
		return panelStyle.Width(width).Render(logMessageStyle.Render("No events yet"))
	}

	lines := make([]string, 0, len(m.logs))
	for _, l := range m.logs {
		lines = append(lines, fmt.Sprintf("%s %s %s",
			logTimestampStyle.Render(l.Time.Format("15:04:05")),
			levelStyle(l.Level).Render(fmt.Sprintf("%-7s", l.Level)),
			logMessageStyle.Render(truncate(l.Message, width-20)),
		))
	}
	return panelStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func truncate(s string, max int) string {
	if max <= 3 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
