package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinex/galactic/llm"
	"github.com/richinex/galactic/model"
)

func conversation(n int) []model.Message {
	msgs := make([]model.Message, n)
	for i := range msgs {
		if i%2 == 0 {
			msgs[i] = model.Message{Role: model.RoleUser, Text: fmt.Sprintf("question %d", i)}
		} else {
			msgs[i] = model.Message{Role: model.RoleAssistant, Text: fmt.Sprintf("answer %d", i)}
		}
	}
	return msgs
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{"": PolicyBuffer, "Buffer": PolicyBuffer, "window": PolicyWindow, " summary ": PolicySummary} {
		got, err := ParsePolicy(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParsePolicy("redis")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	s, err := New(Config{Policy: PolicyWindow, WindowSize: 3})
	require.NoError(t, err)
	assert.Equal(t, PolicyWindow, s.Policy())
	assert.Equal(t, 3, s.(*Window).Size())

	s, err = New(Config{Policy: PolicySummary})
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenBudget, s.(*Summary).Budget())

	_, err = New(Config{Policy: "vector"})
	assert.Error(t, err)
}

func TestBufferRendersEverything(t *testing.T) {
	b := NewBuffer()
	assert.Equal(t, "", b.Render())

	b.Append(context.Background(), conversation(4)...)
	assert.Equal(t, "Human: question 0\nAI: answer 1\nHuman: question 2\nAI: answer 3", b.Render())
	assert.Len(t, b.Messages(), 4)

	b.Clear()
	assert.Empty(t, b.Messages())
	assert.Equal(t, "", b.Render())
}

func TestWindowKeepsMostRecent(t *testing.T) {
	msgs := conversation(10)
	for _, k := range []int{1, 3, 6, 12} {
		for n := 0; n <= len(msgs); n++ {
			w := NewWindow(k)
			for _, m := range msgs[:n] {
				w.Append(context.Background(), m)
			}
			want := n
			if k < n {
				want = k
			}
			got := w.Messages()
			require.Len(t, got, want, "k=%d n=%d", k, n)
			assert.Equal(t, msgs[n-want:n], got)
			assert.Equal(t, RenderMessages(msgs[n-want:n]), w.Render())
		}
	}
}

func TestWindowDefaultSize(t *testing.T) {
	assert.Equal(t, DefaultWindowSize, NewWindow(0).Size())
}

func TestRenderIsDeterministic(t *testing.T) {
	a, b := NewWindow(4), NewWindow(4)
	a.Append(context.Background(), conversation(7)...)
	for _, m := range conversation(7) {
		b.Append(context.Background(), m)
	}
	assert.Equal(t, a.Render(), b.Render())
	assert.Equal(t, a.Render(), a.Render())
}

func TestSummaryWithoutModelActsAsBuffer(t *testing.T) {
	s := NewSummary(5)
	s.Append(context.Background(), conversation(6)...)
	assert.Len(t, s.Messages(), 6)
	assert.Equal(t, "", s.Summary())
	assert.Equal(t, RenderMessages(conversation(6)), s.Render())
}

func TestSummaryFoldsOldestIntoSummary(t *testing.T) {
	completer := llm.NewScripted("They discussed early questions.").Loop()
	budget := 12
	s := NewSummary(budget, WithModel(completer))

	msgs := conversation(6)
	s.Append(context.Background(), msgs...)

	require.Equal(t, 1, completer.Calls())
	prompt := completer.Prompts()[0]
	assert.True(t, strings.HasPrefix(prompt, "Progressively summarize the lines of conversation provided"))
	assert.Contains(t, prompt, "Human: question 0")

	assert.Equal(t, "They discussed early questions.", s.Summary())
	assert.LessOrEqual(t, s.TailTokens(), budget)

	rendered := s.Render()
	assert.True(t, strings.HasPrefix(rendered, summaryLabel+"They discussed early questions."))

	tail := s.Messages()
	require.NotEmpty(t, tail)
	assert.Equal(t, msgs[len(msgs)-len(tail):], tail)
	assert.True(t, strings.HasSuffix(rendered, RenderMessages(tail)))
}

func TestSummaryTailStaysWithinBudget(t *testing.T) {
	completer := llm.NewScripted("summary").Loop()
	s := NewSummary(20, WithModel(completer))
	for _, m := range conversation(30) {
		s.Append(context.Background(), m)
		assert.LessOrEqual(t, s.TailTokens(), 20)
	}
	assert.Greater(t, completer.Calls(), 1)
}

func TestSummaryProgressivePromptIncludesPreviousSummary(t *testing.T) {
	completer := llm.NewScripted("first summary", "second summary")
	s := NewSummary(8, WithModel(completer))
	s.Append(context.Background(), conversation(4)...)
	s.Append(context.Background(), conversation(4)...)

	prompts := completer.Prompts()
	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[1], "Current summary:\nfirst summary\n")
	assert.Equal(t, "second summary", s.Summary())
}

func TestSummaryModelAttachedLater(t *testing.T) {
	s := NewSummary(10)
	s.Append(context.Background(), conversation(6)...)
	assert.Equal(t, "", s.Summary())

	var store Store = s
	completer := llm.NewScripted("late summary")
	require.True(t, AttachModel(store, completer))
	assert.True(t, s.HasModel())

	s.Append(context.Background(), conversation(2)...)
	assert.Equal(t, "late summary", s.Summary())
	assert.LessOrEqual(t, s.TailTokens(), 10)
}

func TestSummaryFoldFailureKeepsTail(t *testing.T) {
	s := NewSummary(8, WithModel(llm.NewScripted(errors.New("quota exceeded"))))
	s.Append(context.Background(), conversation(4)...)

	assert.Equal(t, "", s.Summary())
	assert.Len(t, s.Messages(), 4)
	assert.Equal(t, RenderMessages(conversation(4)), s.Render())
}

func TestSummaryClear(t *testing.T) {
	s := NewSummary(8, WithModel(llm.NewScripted("sum").Loop()))
	s.Append(context.Background(), conversation(6)...)
	require.NotEqual(t, "", s.Summary())

	s.Clear()
	assert.Equal(t, "", s.Summary())
	assert.Empty(t, s.Messages())
	assert.Equal(t, "", s.Render())
}

func TestAttachModelIgnoredByPlainStores(t *testing.T) {
	assert.False(t, AttachModel(NewBuffer(), llm.NewScripted()))
	assert.False(t, AttachModel(NewWindow(2), llm.NewScripted()))
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 2, EstimateTokens("abcde"))
}
