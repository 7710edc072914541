package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/richinex/galactic/agent"
	"github.com/richinex/galactic/llm"
	"github.com/richinex/galactic/memory"
	"github.com/richinex/galactic/storage"
	"github.com/richinex/galactic/tools"
)

// Factory builds independent sessions from shared read-only parts. Every
// session gets its own memory store and agent.
type Factory struct {
	Model         llm.Completer
	Tools         *tools.Registry
	Memory        memory.Config
	Instructions  string
	MaxIterations int
	Personality   Personality

	// Store persists transcripts when set.
	Store storage.ConversationStorage
	// Observer sees every scratchpad entry of every session.
	Observer agent.Observer
	// PostProcessors run after the personality and before metrics.
	PostProcessors []PostProcessor
	Logger         *slog.Logger
}

// New creates a session with a fresh ID.
func (f *Factory) New() (*Session, error) {
	return f.build(NewID())
}

// Open loads a persisted session, or starts an empty one with that ID.
// The stored transcript is replayed into the new memory store.
func (f *Factory) Open(ctx context.Context, id string) (*Session, error) {
	s, err := f.build(id)
	if err != nil {
		return nil, err
	}
	if f.Store == nil {
		return s, nil
	}
	msgs, err := f.Store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	if len(msgs) > 0 {
		s.messages = msgs
		s.CreatedAt = msgs[0].Timestamp
		s.memory.Append(ctx, msgs...)
	}
	return s, nil
}

// Rebuild discards old's memory and agent and returns a new, empty
// session with a new ID. The personality carries over. Used for resets
// and for settings changes, which must never leave a new agent paired
// with old memory.
func (f *Factory) Rebuild(old *Session) (*Session, error) {
	s, err := f.New()
	if err != nil {
		return nil, err
	}
	if old != nil {
		s.SetPersonality(old.Personality())
		f.logger().Info("session rebuilt", "old", old.ID, "new", s.ID)
	}
	return s, nil
}

func (f *Factory) build(id string) (*Session, error) {
	if f.Model == nil {
		return nil, fmt.Errorf("session: model is required")
	}
	logger := f.logger()

	store, err := memory.New(f.Memory, memory.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	memory.AttachModel(store, f.Model)

	a, err := agent.NewBuilder().
		Model(f.Model).
		Tools(f.Tools).
		Instructions(f.Instructions).
		MaxIterations(f.MaxIterations).
		Logger(logger.With("session", id)).
		Observe(f.Observer).
		Build()
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	personality := f.Personality
	if personality == "" {
		personality = Professional
	}
	return &Session{
		ID:          id,
		CreatedAt:   time.Now(),
		personality: personality,
		memory:      store,
		agent:       a,
		metrics:     NewMetrics(),
		extra:       f.PostProcessors,
		store:       f.Store,
		logger:      logger,
	}, nil
}

func (f *Factory) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}
