// Package memory provides per-conversation history for prompt rendering.
//
// Information Hiding:
// - Retention policy (everything, last K, summary plus tail)
// - Token estimation and summary folding
// - Rendering format of past turns
//
// A Store belongs to exactly one conversation. Only Append and Clear
// mutate it; Render is a pure function of the retained state.
package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/richinex/galactic/llm"
	"github.com/richinex/galactic/model"
)

// Policy names a retention strategy.
type Policy string

const (
	PolicyBuffer  Policy = "buffer"
	PolicyWindow  Policy = "window"
	PolicySummary Policy = "summary"
)

// Defaults used when Config leaves a field zero.
const (
	DefaultWindowSize  = 6
	DefaultTokenBudget = 2000
)

// bytesPerToken approximates tokenization for budget checks.
const bytesPerToken = 4

// ParsePolicy converts a configuration string into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyBuffer, "":
		return PolicyBuffer, nil
	case PolicyWindow:
		return PolicyWindow, nil
	case PolicySummary:
		return PolicySummary, nil
	default:
		return "", fmt.Errorf("unknown memory policy %q (want buffer, window or summary)", s)
	}
}

// Store is conversation memory.
type Store interface {
	// Append records completed messages in order. Folding into a summary,
	// when the policy does that, happens here.
	Append(ctx context.Context, msgs ...model.Message)

	// Render returns the retained history as prompt text.
	Render() string

	// Messages returns the verbatim messages currently retained.
	Messages() []model.Message

	// Clear drops all retained state.
	Clear()

	// Policy reports which strategy this store uses.
	Policy() Policy
}

// ModelAttacher is implemented by stores that call a model themselves.
type ModelAttacher interface {
	SetModel(m llm.Completer)
}

// AttachModel gives m to store if the store wants one. It reports whether
// the model was attached.
func AttachModel(store Store, m llm.Completer) bool {
	a, ok := store.(ModelAttacher)
	if !ok {
		return false
	}
	a.SetModel(m)
	return true
}

// Config selects and parameterizes a Store.
type Config struct {
	Policy      Policy
	WindowSize  int
	TokenBudget int
}

// New builds a Store for cfg.
func New(cfg Config, opts ...SummaryOption) (Store, error) {
	switch cfg.Policy {
	case PolicyBuffer, "":
		return NewBuffer(), nil
	case PolicyWindow:
		return NewWindow(cfg.WindowSize), nil
	case PolicySummary:
		return NewSummary(cfg.TokenBudget, opts...), nil
	default:
		return nil, fmt.Errorf("unknown memory policy %q", cfg.Policy)
	}
}

// EstimateTokens approximates the token count of s.
func EstimateTokens(s string) int {
	return (len(s) + bytesPerToken - 1) / bytesPerToken
}

// RenderMessage formats one message as a history line.
func RenderMessage(m model.Message) string {
	prefix := "Human"
	if m.Role == model.RoleAssistant {
		prefix = "AI"
	}
	return prefix + ": " + m.Text
}

// RenderMessages formats messages one per line, oldest first.
func RenderMessages(msgs []model.Message) string {
	lines := make([]string, len(msgs))
	for i, m := range msgs {
		lines[i] = RenderMessage(m)
	}
	return strings.Join(lines, "\n")
}

func copyMessages(msgs []model.Message) []model.Message {
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	return out
}
