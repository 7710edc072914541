// Agent builder for fluent configuration.
//
// Information Hiding:
// - Builder state management hidden
// - Default value application hidden

package agent

import (
	"fmt"
	"log/slog"

	"github.com/richinex/galactic/llm"
	"github.com/richinex/galactic/tools"
)

// Builder provides fluent configuration for creating agents.
type Builder struct {
	config   Config
	model    llm.Completer
	registry *tools.Registry
	logger   *slog.Logger
	observer Observer
}

// NewBuilder creates a builder seeded with DefaultConfig.
func NewBuilder() *Builder {
	return &Builder{config: DefaultConfig()}
}

// Model sets the completion model.
func (b *Builder) Model(m llm.Completer) *Builder {
	b.model = m
	return b
}

// Tools sets the shared tool registry.
func (b *Builder) Tools(r *tools.Registry) *Builder {
	b.registry = r
	return b
}

// Instructions overrides the persona text.
func (b *Builder) Instructions(s string) *Builder {
	if s != "" {
		b.config.Instructions = s
	}
	return b
}

// MaxIterations overrides the iteration cap. Zero keeps the default.
func (b *Builder) MaxIterations(n int) *Builder {
	if n != 0 {
		b.config.MaxIterations = n
	}
	return b
}

// Logger sets the logger.
func (b *Builder) Logger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// Observe registers a callback for every scratchpad entry as it is made.
func (b *Builder) Observe(o Observer) *Builder {
	b.observer = o
	return b
}

// Config returns the configuration accumulated so far.
func (b *Builder) Config() Config {
	return b.config
}

// Build creates the agent.
func (b *Builder) Build() (*Agent, error) {
	if b.model == nil {
		return nil, fmt.Errorf("agent: model is required")
	}
	if err := b.config.Validate(); err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}
	registry := b.registry
	if registry == nil {
		registry = tools.NewRegistry()
	}
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		config:   b.config,
		model:    b.model,
		registry: registry,
		logger:   logger,
		observer: b.observer,
	}, nil
}
