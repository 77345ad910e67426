package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"boardharvest/pkg/status"
)

const barWidth = 20

// StatusLine redraws a single terminal line for every status update.
// It implements status.Sink.
type StatusLine struct {
	mu        sync.Mutex
	out       io.Writer
	label     string
	startTime time.Time
	last      status.Status
	finished  bool
}

// NewStatusLine creates a status line labelled with the board name
func NewStatusLine(out io.Writer, label string) *StatusLine {
	return &StatusLine{out: out, label: label, startTime: time.Now()}
}

var _ status.Sink = (*StatusLine)(nil)

// Update redraws the line. Terminal phases end the line.
func (l *StatusLine) Update(s status.Status) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.finished {
		return
	}
	l.last = s

	line := l.render(s)
	fmt.Fprintf(l.out, "\r\033[K%s", line)

	if s.Phase == status.Done || s.Phase == status.Cancelled {
		l.finished = true
		fmt.Fprintf(l.out, " %s\n", Dim(formatDuration(time.Since(l.startTime))))
	}
}

// SetLabel changes the label once the board title is known
func (l *StatusLine) SetLabel(label string) {
	l.mu.Lock()
	l.label = label
	l.mu.Unlock()
}

// Last returns the most recent status shown
func (l *StatusLine) Last() status.Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

func (l *StatusLine) render(s status.Status) string {
	var b strings.Builder
	if l.label != "" {
		b.WriteString(Cyan(l.label))
		b.WriteString(" ")
	}

	switch s.Phase {
	case status.Fetching:
		b.WriteString(progressBar(s.Count, s.Total))
		b.WriteString(" ")
		b.WriteString(s.String())
	case status.Done:
		b.WriteString(progressBar(s.Count, s.Total))
		b.WriteString(" ")
		b.WriteString(Green(s.String()))
	case status.Cancelled:
		b.WriteString(Yellow(s.String()))
	default:
		b.WriteString(s.String())
	}
	return b.String()
}

func progressBar(done, total int) string {
	filled := 0
	if total > 0 {
		filled = done * barWidth / total
	}
	if filled > barWidth {
		filled = barWidth
	}
	return "[" + strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled) + "]"
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

// FormatBytes formats a byte count in binary units
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
