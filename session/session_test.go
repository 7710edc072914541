package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinex/galactic/agent"
	"github.com/richinex/galactic/llm"
	"github.com/richinex/galactic/memory"
	"github.com/richinex/galactic/model"
	"github.com/richinex/galactic/storage"
	"github.com/richinex/galactic/tools"
)

func calculator(t *testing.T) *tools.Registry {
	t.Helper()
	r := tools.NewRegistry()
	require.NoError(t, r.RegisterFunc("calculator", "Evaluate arithmetic.", func(context.Context, string) (string, error) {
		return "4", nil
	}))
	return r
}

func newFactory(t *testing.T, m llm.Completer) *Factory {
	t.Helper()
	return &Factory{
		Model:  m,
		Tools:  calculator(t),
		Memory: memory.Config{Policy: memory.PolicyBuffer},
	}
}

func TestHandleTurnAppendsPair(t *testing.T) {
	m := llm.NewScripted(
		"Action: calculator\nAction Input: 2+2",
		"Final Answer: It is 4.",
		"Final Answer: You're welcome.",
	)
	s, err := newFactory(t, m).New()
	require.NoError(t, err)

	turn, err := s.HandleTurn(context.Background(), "What is 2+2?")
	require.NoError(t, err)
	assert.True(t, turn.Success())
	assert.Equal(t, "It is 4.", turn.Answer)
	assert.Len(t, turn.Result.Scratchpad, 1)

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, "What is 2+2?", msgs[0].Text)
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "It is 4.", msgs[1].Text)

	_, err = s.HandleTurn(context.Background(), "thanks")
	require.NoError(t, err)
	assert.Len(t, s.Messages(), 4)
	assert.Len(t, s.Memory().Messages(), 4)

	// second turn saw the first exchange as history
	prompts := m.Prompts()
	assert.Contains(t, prompts[len(prompts)-1], "Human: What is 2+2?\nAI: It is 4.")
}

func TestHandleTurnEvenCountOnAbort(t *testing.T) {
	m := llm.NewScripted(errors.New("quota exceeded"), "gibberish").Loop()
	s, err := newFactory(t, m).New()
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		turn, err := s.HandleTurn(context.Background(), "hello")
		require.NoError(t, err)
		assert.False(t, turn.Success())
		assert.Zero(t, len(s.Messages())%2)
	}
	msgs := s.Messages()
	require.Len(t, msgs, 6)
	assert.True(t, strings.HasPrefix(msgs[1].Text, "🚨 **System Alert**"))
}

func TestHandleTurnRejectsEmptyInput(t *testing.T) {
	m := llm.NewScripted()
	s, err := newFactory(t, m).New()
	require.NoError(t, err)

	_, err = s.HandleTurn(context.Background(), "   \n\t")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Empty(t, s.Messages())
	assert.Zero(t, m.Calls())
}

func TestPersonalityAppliedToSuccessOnly(t *testing.T) {
	m := llm.NewScripted("Final Answer: Hi", errors.New("down"))
	f := newFactory(t, m)
	f.Personality = Friendly
	s, err := f.New()
	require.NoError(t, err)

	turn, _ := s.HandleTurn(context.Background(), "hello")
	assert.Equal(t, "😊 Hi", turn.Answer)
	assert.Equal(t, "😊 Hi", s.Messages()[1].Text)

	turn, _ = s.HandleTurn(context.Background(), "again")
	assert.True(t, strings.HasPrefix(turn.Answer, "🚨"))
}

func TestMetricsFromScratchpad(t *testing.T) {
	m := llm.NewScripted(
		"Action: calculator\nAction Input: 2+2",
		"Final Answer: 4",
		errors.New("boom"),
	)
	s, err := newFactory(t, m).New()
	require.NoError(t, err)

	_, _ = s.HandleTurn(context.Background(), "calc")
	_, _ = s.HandleTurn(context.Background(), "again")

	stats := s.Stats()
	assert.Equal(t, 4, stats.Messages)
	assert.Equal(t, 2, stats.Turns)
	assert.Equal(t, memory.PolicyBuffer, stats.Policy)
	assert.Equal(t, 1, stats.Metrics.SuccessfulResponses)
	assert.Equal(t, 1, stats.Metrics.ErrorCount)
	assert.Equal(t, map[string]int{"calculator": 1}, stats.Metrics.ToolUsage)
	assert.InDelta(t, 50.0, stats.Metrics.SuccessRate, 0.001)
	assert.Len(t, stats.Metrics.ResponseTimes, 1)
}

func TestPurgeClearsHistoryAndMemory(t *testing.T) {
	store := storage.NewInMemoryStorage()
	f := newFactory(t, llm.NewScripted("Final Answer: ok").Loop())
	f.Store = store
	s, err := f.New()
	require.NoError(t, err)

	ctx := context.Background()
	_, _ = s.HandleTurn(ctx, "one")
	saved, _ := store.Load(ctx, s.ID)
	require.Len(t, saved, 2)

	s.Purge(ctx)
	assert.Empty(t, s.Messages())
	assert.Empty(t, s.Memory().Messages())
	saved, _ = store.Load(ctx, s.ID)
	assert.Empty(t, saved)
	assert.Equal(t, 1, s.Stats().Metrics.SuccessfulResponses)
}

func TestFactorySessionsAreIndependent(t *testing.T) {
	f := newFactory(t, llm.NewScripted("Final Answer: ok").Loop())
	a, err := f.New()
	require.NoError(t, err)
	b, err := f.New()
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, a.ID, 8)

	_, _ = a.HandleTurn(context.Background(), "only a")
	assert.Len(t, a.Messages(), 2)
	assert.Empty(t, b.Messages())
	assert.Empty(t, b.Memory().Messages())
}

func TestFactoryRebuild(t *testing.T) {
	f := newFactory(t, llm.NewScripted("Final Answer: ok").Loop())
	old, err := f.New()
	require.NoError(t, err)
	old.SetPersonality(Scientific)
	_, _ = old.HandleTurn(context.Background(), "hi")

	f.Memory = memory.Config{Policy: memory.PolicyWindow, WindowSize: 2}
	fresh, err := f.Rebuild(old)
	require.NoError(t, err)
	assert.NotEqual(t, old.ID, fresh.ID)
	assert.Empty(t, fresh.Messages())
	assert.Equal(t, memory.PolicyWindow, fresh.Memory().Policy())
	assert.Equal(t, Scientific, fresh.Personality())
}

func TestFactoryOpenReplaysTranscript(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInMemoryStorage()
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, store.Save(ctx, "deadbeef", []model.Message{
		{Role: model.RoleUser, Text: "my name is Ada", Timestamp: ts},
		{Role: model.RoleAssistant, Text: "Hello Ada", Timestamp: ts},
	}))

	m := llm.NewScripted("Final Answer: Ada")
	f := newFactory(t, m)
	f.Store = store
	s, err := f.Open(ctx, "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, ts, s.CreatedAt)
	assert.Len(t, s.Messages(), 2)

	_, err = s.HandleTurn(ctx, "what is my name?")
	require.NoError(t, err)
	assert.Contains(t, m.Prompts()[0], "Human: my name is Ada")
}

func TestFactoryRequiresModel(t *testing.T) {
	_, err := (&Factory{}).New()
	require.Error(t, err)

	_, err = (&Factory{Model: llm.NewScripted(), Memory: memory.Config{Policy: "nope"}}).New()
	require.Error(t, err)
}

func TestObserverSeesScratchpad(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	f := newFactory(t, llm.NewScripted("Action: calculator\nAction Input: 1+3", "Final Answer: 4"))
	f.Observer = func(_ int, e model.ScratchpadEntry) {
		mu.Lock()
		seen = append(seen, e.Tool)
		mu.Unlock()
	}
	s, err := f.New()
	require.NoError(t, err)
	_, _ = s.HandleTurn(context.Background(), "sum")
	assert.Equal(t, []string{"calculator"}, seen)
}

func TestConcurrentTurnsSerialize(t *testing.T) {
	f := newFactory(t, llm.NewScripted("Final Answer: ok").Loop())
	s, err := f.New()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.HandleTurn(context.Background(), "ping")
		}()
	}
	wg.Wait()

	msgs := s.Messages()
	require.Len(t, msgs, 16)
	for i, msg := range msgs {
		want := model.RoleUser
		if i%2 == 1 {
			want = model.RoleAssistant
		}
		assert.Equal(t, want, msg.Role, "message %d", i)
	}
}

func TestSummaryMemoryGetsModel(t *testing.T) {
	f := newFactory(t, llm.NewScripted("Final Answer: ok").Loop())
	f.Memory = memory.Config{Policy: memory.PolicySummary, TokenBudget: 50}
	s, err := f.New()
	require.NoError(t, err)
	sum, ok := s.Memory().(*memory.Summary)
	require.True(t, ok)
	assert.True(t, sum.HasModel())
}

func TestAgentAbortAnswerUnchangedByPersonality(t *testing.T) {
	f := newFactory(t, llm.NewScripted("Action: calculator\nAction Input: 1").Loop())
	f.MaxIterations = 2
	f.Personality = Enthusiastic
	s, err := f.New()
	require.NoError(t, err)

	turn, err := s.HandleTurn(context.Background(), "loop")
	require.NoError(t, err)
	assert.Equal(t, agent.BudgetExhaustedAnswer, turn.Answer)
}

func TestMetricsIgnoreUnknownTools(t *testing.T) {
	m := llm.NewScripted(
		"Action: Calculator\nAction Input: 2+2",
		"Final Answer: 4",
	)
	s, err := newFactory(t, m).New()
	require.NoError(t, err)

	turn, err := s.HandleTurn(context.Background(), "2+2?")
	require.NoError(t, err)
	require.True(t, turn.Success())
	require.Len(t, turn.Result.Scratchpad, 1)
	assert.Equal(t, "Calculator", turn.Result.Scratchpad[0].Tool)

	assert.Empty(t, s.Stats().Metrics.ToolUsage)
}

func TestReplayIsIdempotent(t *testing.T) {
	script := []any{
		"Thought: I should calculate.\nAction: calculator\nAction Input: 2+2",
		"Action: Calculator\nAction Input: 2+2",
		"Final Answer: It is 4.",
	}
	run := func() Turn {
		s, err := newFactory(t, llm.NewScripted(script...)).New()
		require.NoError(t, err)
		turn, err := s.HandleTurn(context.Background(), "What is 2+2?")
		require.NoError(t, err)
		return turn
	}

	first, second := run(), run()
	require.True(t, first.Success())
	assert.Equal(t, first.Answer, second.Answer)
	assert.Len(t, first.Result.Scratchpad, 2)
	assert.Equal(t, len(first.Result.Scratchpad), len(second.Result.Scratchpad))
	assert.Equal(t, first.Result.Scratchpad, second.Result.Scratchpad)
}
