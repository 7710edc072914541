// Package session owns one conversation: its transcript, its memory and
// the post-processing applied to every answer.
//
// Information Hiding:
// - Turn serialization hidden behind HandleTurn
// - Transcript persistence hidden behind ConversationStorage
// - Post-processor ordering hidden

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/richinex/galactic/agent"
	"github.com/richinex/galactic/memory"
	"github.com/richinex/galactic/model"
	"github.com/richinex/galactic/storage"
)

var (
	// ErrEmptyInput is returned for blank user input. Nothing is appended.
	ErrEmptyInput = errors.New("empty input")
	// ErrNotFound is returned when a session ID is not known.
	ErrNotFound = errors.New("session not found")
)

// PostProcessor inspects or rewrites a turn after the agent loop finishes
// and before the assistant message is recorded.
type PostProcessor interface {
	Process(t *Turn)
}

// Turn is one completed exchange.
type Turn struct {
	Question string
	// Answer is the text recorded as the assistant message.
	Answer   string
	Result   agent.Response
	Duration time.Duration
}

// Success reports whether the agent reached a final answer.
func (t *Turn) Success() bool {
	return t.Result.IsSuccess()
}

// Stats describes a session for status displays.
type Stats struct {
	ID          string          `json:"id"`
	Policy      memory.Policy   `json:"memory_policy"`
	Personality Personality     `json:"personality"`
	CreatedAt   time.Time       `json:"created_at"`
	Uptime      time.Duration   `json:"uptime"`
	Messages    int             `json:"messages"`
	Turns       int             `json:"turns"`
	Metrics     MetricsSnapshot `json:"metrics"`
}

// Session is one conversation. Turns are serialized; reads may happen
// concurrently with a running turn.
type Session struct {
	ID        string
	CreatedAt time.Time

	turnMu sync.Mutex

	mu          sync.RWMutex
	messages    []model.Message
	personality Personality

	memory  memory.Store
	agent   *agent.Agent
	metrics *Metrics
	extra   []PostProcessor
	store   storage.ConversationStorage
	logger  *slog.Logger
}

// NewID returns a short random session ID.
func NewID() string {
	return uuid.NewString()[:8]
}

// HandleTurn runs one user turn. It appends exactly one user message and
// one assistant message, even when the agent aborts.
func (s *Session) HandleTurn(ctx context.Context, userText string) (Turn, error) {
	text := strings.TrimSpace(userText)
	if text == "" {
		return Turn{}, ErrEmptyInput
	}

	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	start := time.Now()
	history := s.memory.Render()
	user := model.UserMessage(text)
	s.mu.Lock()
	s.messages = append(s.messages, user)
	s.mu.Unlock()

	resp := s.agent.Run(ctx, history, text)
	turn := Turn{
		Question: text,
		Answer:   resp.Answer,
		Result:   resp,
		Duration: time.Since(start),
	}
	for _, p := range s.processors() {
		p.Process(&turn)
	}

	assistant := model.AssistantMessage(turn.Answer)
	s.mu.Lock()
	s.messages = append(s.messages, assistant)
	s.mu.Unlock()

	s.memory.Append(ctx, user, assistant)

	s.logger.Info("turn complete",
		"session", s.ID,
		"state", resp.State,
		"iterations", resp.Metadata.Iterations,
		"tools", len(resp.Metadata.ToolCalls),
		"duration", turn.Duration.Round(time.Millisecond))

	s.persist(ctx)
	return turn, nil
}

func (s *Session) processors() []PostProcessor {
	s.mu.RLock()
	p := s.personality
	s.mu.RUnlock()

	out := make([]PostProcessor, 0, len(s.extra)+2)
	out = append(out, p)
	out = append(out, s.extra...)
	return append(out, s.metrics)
}

// persist saves the transcript; failures are logged so a storage outage
// never loses the in-memory conversation.
func (s *Session) persist(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(context.WithoutCancel(ctx), s.ID, s.Messages()); err != nil {
		s.logger.Warn("transcript not saved", "session", s.ID, "error", err)
	}
}

// Purge clears the transcript and memory. Metrics are kept.
func (s *Session) Purge(ctx context.Context) {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	s.mu.Lock()
	s.messages = nil
	s.mu.Unlock()
	s.memory.Clear()

	s.logger.Info("session purged", "session", s.ID)
	s.persist(ctx)
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Memory exposes the session's memory store.
func (s *Session) Memory() memory.Store {
	return s.memory
}

// Metrics exposes the session's counters.
func (s *Session) Metrics() *Metrics {
	return s.metrics
}

// Personality returns the active personality.
func (s *Session) Personality() Personality {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.personality
}

// SetPersonality changes how later answers are restyled.
func (s *Session) SetPersonality(p Personality) {
	s.mu.Lock()
	s.personality = p
	s.mu.Unlock()
}

// Stats reports the current state of the session.
func (s *Session) Stats() Stats {
	s.mu.RLock()
	n := len(s.messages)
	p := s.personality
	s.mu.RUnlock()

	return Stats{
		ID:          s.ID,
		Policy:      s.memory.Policy(),
		Personality: p,
		CreatedAt:   s.CreatedAt,
		Uptime:      time.Since(s.CreatedAt),
		Messages:    n,
		Turns:       n / 2,
		Metrics:     s.metrics.Snapshot(),
	}
}

// String identifies the session in logs.
func (s *Session) String() string {
	return fmt.Sprintf("session %s (%s memory)", s.ID, s.memory.Policy())
}
