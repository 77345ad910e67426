package tui

import "github.com/charmbracelet/lipgloss"

var (
	pinRed      = lipgloss.Color("#E60023")
	softGreen   = lipgloss.Color("#3FB950")
	amber       = lipgloss.Color("#D29922")
	dimWhite    = lipgloss.Color("#B0B0B0")
	brightWhite = lipgloss.Color("#FFFFFF")
	faintGrey   = lipgloss.Color("#626262")

	titleStyle = lipgloss.NewStyle().
			Background(pinRed).
			Foreground(brightWhite).
			Bold(true).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(pinRed).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(pinRed).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	successStyle = lipgloss.NewStyle().
			Foreground(softGreen).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(amber).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4D4D")).
			Bold(true)

	logTimestampStyle = lipgloss.NewStyle().
				Foreground(faintGrey)

	logMessageStyle = lipgloss.NewStyle().
			Foreground(dimWhite)

	helpStyle = lipgloss.NewStyle().
			Foreground(faintGrey).
			PaddingTop(1)
)

// levelStyle returns the style used for a log level tag
func levelStyle(level string) lipgloss.Style {
	switch level {
	case "ERROR":
		return errorStyle
	case "WARN":
		return warningStyle
	case "SUCCESS":
		return successStyle
	default:
		return labelStyle
	}
}
