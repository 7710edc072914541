package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinex/galactic/config"
	"github.com/richinex/galactic/session"
)

// isolate keeps the host's config files and credentials out of a test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{
		"GALACTIC_PROVIDER", "GEMINI_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY",
		"MEMORY_TYPE", "AGENT_MAX_ITERATIONS", "GALACTIC_DB", "LOG_FILE", "LOG_LEVEL",
		"GALACTIC_PERSONALITY", "GALACTIC_DISABLED_TOOLS",
	} {
		t.Setenv(k, "")
	}
}

func offlineApp(t *testing.T, opts Options) *App {
	t.Helper()
	isolate(t)
	opts.Offline = true
	opts.LogOutput = io.Discard
	app, err := Setup(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

func TestSetupMissingCredential(t *testing.T) {
	isolate(t)
	_, err := Setup(context.Background(), Options{LogOutput: io.Discard})
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrMissingAPIKey))
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestSetupInvalidOverride(t *testing.T) {
	isolate(t)
	_, err := Setup(context.Background(), Options{Offline: true, Memory: "forever", LogOutput: io.Discard})
	require.Error(t, err)

	_, err = Setup(context.Background(), Options{Offline: true, Personality: "Grumpy", LogOutput: io.Discard})
	require.Error(t, err)
}

func TestSetupAppliesOptions(t *testing.T) {
	app := offlineApp(t, Options{MaxIter: 3, Memory: "window", Personality: "friendly"})
	assert.Equal(t, 3, app.Factory.MaxIterations)
	assert.Equal(t, session.Friendly, app.Factory.Personality)
	assert.Equal(t, "window", string(app.Factory.Memory.Policy))
	assert.True(t, app.Tools.Has("calculator"))
	assert.Nil(t, app.Store)
}

func TestOfflineTurnUsesClockTool(t *testing.T) {
	app := offlineApp(t, Options{})
	c, err := NewController(context.Background(), app, "")
	require.NoError(t, err)

	reply, err := c.Handle(context.Background(), "hello?")
	require.NoError(t, err)
	require.NotNil(t, reply.Turn)
	assert.True(t, reply.Turn.Success())
	require.Len(t, reply.Turn.Result.Scratchpad, 1)
	assert.Equal(t, "current_time", reply.Turn.Result.Scratchpad[0].Tool)
	assert.Contains(t, reply.Text, "Current date and time (UTC)")
	assert.Len(t, c.Session().Messages(), 2)
}

func TestControllerCommands(t *testing.T) {
	app := offlineApp(t, Options{})
	ctx := context.Background()
	c, err := NewController(ctx, app, "")
	require.NoError(t, err)
	first := c.Session().ID

	_, err = c.Handle(ctx, "what time is it")
	require.NoError(t, err)

	reply, err := c.Handle(ctx, "/stats")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Messages:       2 (1 exchanges)")
	assert.Contains(t, reply.Text, "current_time")

	reply, err = c.Handle(ctx, "/personality scientific")
	require.NoError(t, err)
	assert.Equal(t, "Personality set to Scientific.", reply.Text)
	reply, _ = c.Handle(ctx, "again")
	assert.True(t, strings.HasPrefix(reply.Text, "🔬 Based on my analysis: "))

	reply, _ = c.Handle(ctx, "/purge")
	assert.Contains(t, reply.Text, "purged")
	assert.Empty(t, c.Session().Messages())
	assert.Equal(t, first, c.Session().ID)

	reply, _ = c.Handle(ctx, "/reset")
	assert.NotEqual(t, first, c.Session().ID)
	assert.Contains(t, reply.Text, c.Session().ID)
	assert.Equal(t, session.Scientific, c.Session().Personality())

	reply, _ = c.Handle(ctx, "/quick 3")
	assert.Equal(t, QuickPrompts[2], reply.Question)
	require.NotNil(t, reply.Turn)

	reply, _ = c.Handle(ctx, "/quick")
	assert.Contains(t, reply.Text, "/quick 4")

	reply, _ = c.Handle(ctx, "/bogus")
	assert.Contains(t, reply.Text, "Unknown command")

	reply, _ = c.Handle(ctx, "/tools")
	assert.Contains(t, reply.Text, "calculator")

	reply, _ = c.Handle(ctx, "exit")
	assert.True(t, reply.Quit)

	_, err = c.Handle(ctx, "  ")
	assert.ErrorIs(t, err, session.ErrEmptyInput)
}

func TestSessionResumeFromDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "galactic.db")
	app := offlineApp(t, Options{DBPath: db})
	require.NotNil(t, app.Store)
	ctx := context.Background()

	c, err := NewController(ctx, app, "")
	require.NoError(t, err)
	_, err = c.Handle(ctx, "remember me")
	require.NoError(t, err)
	id := c.Session().ID

	resumed, err := NewController(ctx, app, id)
	require.NoError(t, err)
	msgs := resumed.Session().Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "remember me", msgs[0].Text)
}

func TestAskWritesAnswer(t *testing.T) {
	app := offlineApp(t, Options{})
	c, err := NewController(context.Background(), app, "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Ask(context.Background(), c, "time?", &buf, true))
	assert.Contains(t, buf.String(), "--- Steps ---")
	assert.Contains(t, buf.String(), "offline")
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "héllo", truncateString("héllo", 5))
	assert.Equal(t, "hé...", truncateString("héllo", 2))
}

func TestResolveCommand(t *testing.T) {
	tests := map[string]string{
		"pur":   "purge",
		"st":    "stats",
		"p":     "p",
		"q":     "q",
		"quick": "quick",
		"zzz":   "zzz",
		"":      "",
	}
	for in, want := range tests {
		assert.Equal(t, want, resolveCommand(in), in)
	}
}

func TestCommandAbbreviation(t *testing.T) {
	app := offlineApp(t, Options{})
	c, err := NewController(context.Background(), app, "")
	require.NoError(t, err)

	reply, err := c.Handle(context.Background(), "/too")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Available tools:")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "one two", Preview("one\n  two", 20))
	assert.Equal(t, "one t...", Preview("one\ntwo", 5))
}
