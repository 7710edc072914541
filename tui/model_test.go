package tui

import (
	"context"
	"errors"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinex/galactic/cli"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"GALACTIC_PROVIDER", "MEMORY_TYPE", "GALACTIC_DB", "LOG_FILE", "GALACTIC_PERSONALITY"} {
		t.Setenv(k, "")
	}
	app, err := cli.Setup(context.Background(), cli.Options{Offline: true, LogOutput: io.Discard})
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })

	ctrl, err := cli.NewController(context.Background(), app, "")
	require.NoError(t, err)

	m := New(context.Background(), ctrl, false)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model)
}

// submit types line, presses enter, and feeds the reply back.
func submit(t *testing.T, m Model, line string) Model {
	t.Helper()
	m.input.SetValue(line)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.True(t, m.busy)
	require.NotNil(t, cmd)

	reply := m.handle(line)()
	next, _ = m.Update(reply)
	return next.(Model)
}

func TestSubmitQuestion(t *testing.T) {
	m := newTestModel(t)
	m = submit(t, m, "what time is it?")

	assert.False(t, m.busy)
	require.GreaterOrEqual(t, len(m.entries), 3)
	user := m.entries[len(m.entries)-2]
	answer := m.entries[len(m.entries)-1]
	assert.Equal(t, entryUser, user.kind)
	assert.Equal(t, "what time is it?", user.text)
	assert.Equal(t, entryAssistant, answer.kind)
	assert.Contains(t, answer.text, "Current date and time")
	assert.Equal(t, answer.text, m.lastAnswer)
	assert.Contains(t, m.View(), "Galactic")
}

func TestSlashCommandShowsSystemEntry(t *testing.T) {
	m := newTestModel(t)
	before := len(m.entries)
	m = submit(t, m, "/tools")

	require.Len(t, m.entries, before+1)
	assert.Equal(t, entrySystem, m.entries[before].kind)
	assert.Contains(t, m.entries[before].text, "Available tools:")
}

func TestQuickPromptAddsQuestion(t *testing.T) {
	m := newTestModel(t)
	m = submit(t, m, "/quick 3")

	n := len(m.entries)
	require.GreaterOrEqual(t, n, 2)
	assert.Equal(t, cli.QuickPrompts[2], m.entries[n-2].text)
	assert.Equal(t, entryAssistant, m.entries[n-1].kind)
}

func TestEmptyEnterIsIgnored(t *testing.T) {
	m := newTestModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, next.(Model).busy)
}

func TestExitQuits(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("/exit")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	_, cmd := m.Update(m.handle("/exit")())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestCopyLastAnswer(t *testing.T) {
	m := newTestModel(t)
	var copied string
	m.copy = func(s string) error { copied = s; return nil }

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "Nothing to copy yet.", next.(Model).status)

	m = submit(t, m, "hi")
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "Answer copied to clipboard.", next.(Model).status)
	assert.Equal(t, m.lastAnswer, copied)

	m.copy = func(string) error { return errors.New("no clipboard") }
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "Copy failed: no clipboard", next.(Model).status)
}

func TestSuggestions(t *testing.T) {
	assert.Contains(t, suggestions("/pur"), "/purge")
	assert.Nil(t, suggestions("hello"))
	assert.Nil(t, suggestions("/personality friendly"))
}

func TestRenderMarkdownMinimumWidth(t *testing.T) {
	out := renderMarkdown("**bold** text", 1)
	assert.Contains(t, out, "bold")
}
