package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/richinex/galactic/llm"
	"github.com/richinex/galactic/model"
)

// DefaultSummaryPrompt drives progressive summarization. It takes two
// fmt.Sprintf placeholders: the current summary and the new lines.
const DefaultSummaryPrompt = "Progressively summarize the lines of conversation provided, " +
	"adding onto the previous summary returning a new summary.\n\n" +
	"Current summary:\n%s\n\n" +
	"New lines of conversation:\n%s\n\n" +
	"New summary:"

// summaryLabel prefixes the summary line in rendered history.
const summaryLabel = "Summary of earlier conversation: "

// Summary keeps a running summary plus a verbatim tail of recent messages.
//
// When the tail's estimated token count exceeds the budget, the oldest
// tail messages are folded into the summary with one model call, until
// the tail fits again. Render returns the summary first, then the tail.
//
// The model is attached after construction with SetModel, because the
// store is usually created before the LLM client. Until a model is set
// the store keeps everything, like Buffer, and folds on the first Append
// after SetModel. A failed fold leaves the tail untouched and is retried
// on the next Append.
type Summary struct {
	mu      sync.RWMutex
	budget  int
	summary string
	tail    []model.Message
	model   llm.Completer
	prompt  string
	logger  *slog.Logger
}

// SummaryOption configures a Summary.
type SummaryOption func(*Summary)

// WithPrompt overrides DefaultSummaryPrompt.
func WithPrompt(prompt string) SummaryOption {
	return func(s *Summary) { s.prompt = prompt }
}

// WithLogger sets the logger used for fold failures.
func WithLogger(l *slog.Logger) SummaryOption {
	return func(s *Summary) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithModel attaches the summarizing model at construction.
func WithModel(m llm.Completer) SummaryOption {
	return func(s *Summary) { s.model = m }
}

// NewSummary creates a summarizing store with the given tail token budget.
func NewSummary(tokenBudget int, opts ...SummaryOption) *Summary {
	if tokenBudget < 1 {
		tokenBudget = DefaultTokenBudget
	}
	s := &Summary{
		budget: tokenBudget,
		prompt: DefaultSummaryPrompt,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetModel attaches the model used for folding.
func (s *Summary) SetModel(m llm.Completer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = m
}

// HasModel reports whether a model is attached.
func (s *Summary) HasModel() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model != nil
}

// Budget returns the tail token budget.
func (s *Summary) Budget() int {
	return s.budget
}

// Summary returns the current running summary.
func (s *Summary) Summary() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

// TailTokens returns the estimated token count of the verbatim tail.
func (s *Summary) TailTokens() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return tailTokens(s.tail)
}

// Append implements Store.
func (s *Summary) Append(ctx context.Context, msgs ...model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tail = append(s.tail, msgs...)
	if s.model == nil || tailTokens(s.tail) <= s.budget {
		return
	}

	cut := 0
	for cut < len(s.tail) && tailTokens(s.tail[cut:]) > s.budget {
		cut++
	}
	folded := s.tail[:cut]

	prompt := fmt.Sprintf(s.prompt, s.summary, RenderMessages(folded))
	next, err := s.model.Complete(ctx, prompt)
	if err != nil {
		s.logger.Warn("memory summary fold failed, keeping messages verbatim",
			"messages", len(folded), "error", err)
		return
	}

	s.summary = strings.TrimSpace(next)
	s.tail = copyMessages(s.tail[cut:])
	s.logger.Debug("memory folded into summary",
		"folded", len(folded), "tail", len(s.tail), "summary_tokens", EstimateTokens(s.summary))
}

// Render implements Store.
func (s *Summary) Render() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tail := RenderMessages(s.tail)
	if s.summary == "" {
		return tail
	}
	if tail == "" {
		return summaryLabel + s.summary
	}
	return summaryLabel + s.summary + "\n" + tail
}

// Messages implements Store. Only the verbatim tail is returned.
func (s *Summary) Messages() []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyMessages(s.tail)
}

// Clear implements Store. The summary is dropped too.
func (s *Summary) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = ""
	s.tail = nil
}

// Policy implements Store.
func (s *Summary) Policy() Policy {
	return PolicySummary
}

func tailTokens(msgs []model.Message) int {
	n := 0
	for _, m := range msgs {
		n += EstimateTokens(RenderMessage(m))
	}
	return n
}
