package tui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardharvest/pkg/status"
)

func sized(m *Model) *Model {
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func TestStatusMessagesUpdateModel(t *testing.T) {
	m := sized(NewModel("cats", nil))

	m.Update(StatusMsg{Status: status.ScrollingStatus(7)})
	assert.Equal(t, status.ScrollingStatus(7), m.Status())
	assert.Contains(t, m.View(), "Scrolling… 7 found")

	m.Update(StatusMsg{Status: status.FetchingStatus(3, 6)})
	assert.InDelta(t, 0.5, m.fraction(), 0.0001)
	assert.Contains(t, m.View(), "Fetching 3/6")

	m.Update(StatusMsg{Status: status.DoneStatus(6, 6)})
	assert.Equal(t, 1.0, m.fraction())
	view := m.View()
	assert.Contains(t, view, "Saved 6/6")
	assert.Contains(t, view, "cats")
}

func TestFinishedQuits(t *testing.T) {
	m := NewModel("cats", nil)

	_, cmd := m.Update(FinishedMsg{Err: errors.New("board is empty")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.Finished())
	assert.EqualError(t, m.Err(), "board is empty")
	require.Len(t, m.logs, 1)
	assert.Equal(t, "ERROR", m.logs[0].Level)
}

func TestInterruptCallsCancelOnce(t *testing.T) {
	calls := 0
	m := NewModel("cats", func() { calls++ })

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Nil(t, cmd)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.Equal(t, 1, calls)
	assert.False(t, m.Finished())

	m.Update(FinishedMsg{})
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestLogPanelIsBounded(t *testing.T) {
	m := sized(NewModel("cats", nil))
	for i := 0; i < defaultMaxLogLines+5; i++ {
		m.Update(LogMsg{Level: "INFO", Message: "event"})
	}
	assert.Len(t, m.logs, defaultMaxLogLines)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Empty(t, m.logs)
	assert.Contains(t, m.View(), "No events yet")
}

func TestBoardMessage(t *testing.T) {
	m := sized(NewModel("", nil))
	assert.Contains(t, m.View(), "(untitled board)")
	m.Update(BoardMsg{Board: "Dogs"})
	assert.Contains(t, m.View(), "Dogs")
}

func TestViewBeforeSize(t *testing.T) {
	assert.Equal(t, "Initializing...", NewModel("cats", nil).View())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate(strings.Repeat("abcdefghij", 3), 10))
}

func TestProgramRunsHeadless(t *testing.T) {
	var out bytes.Buffer
	ui := NewTUI("cats", nil, WithIO(strings.NewReader(""), &out))

	go func() {
		ui.Update(status.ScrollingStatus(2))
		ui.Update(status.FetchingStatus(1, 2))
		ui.Finish(nil)
	}()

	require.NoError(t, ui.Run())
	assert.True(t, ui.Model().Finished())
	assert.Equal(t, status.FetchingStatus(1, 2), ui.Model().Status())
}
