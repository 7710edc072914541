// Package model provides domain types shared across packages.
package model

import (
	"fmt"
	"time"
)

// Role identifies who authored a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole converts a stored role string back into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAssistant:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// Message is one conversation entry. Messages are values and never
// mutated once appended to a history.
type Message struct {
	Role      Role      `json:"role"`
	Text      string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// UserMessage creates a user message stamped with the current time.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text, Timestamp: time.Now()}
}

// AssistantMessage creates an assistant message stamped with the current time.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Text: text, Timestamp: time.Now()}
}

// Action is a tool request parsed out of a completion.
type Action struct {
	Tool  string `json:"tool"`
	Input string `json:"input"`
}

// Step is one parsed model completion: a thought plus either an action
// or a final answer. A Step with neither is malformed.
type Step struct {
	Thought     string  `json:"thought"`
	Action      *Action `json:"action,omitempty"`
	FinalAnswer *string `json:"final_answer,omitempty"`
}

// ScratchpadEntry records a step that was acted on together with the
// observation it produced. The scratchpad is the ordered list of these
// for the current user turn.
type ScratchpadEntry struct {
	Thought     string `json:"thought"`
	Tool        string `json:"tool"`
	Input       string `json:"input"`
	Observation string `json:"observation"`
}

// ToolCall contains metrics about a tool invocation.
type ToolCall struct {
	Name       string `json:"name"`
	InputSize  int    `json:"input_size"`
	OutputSize int    `json:"output_size"`
	DurationMs uint64 `json:"duration_ms"`
	Success    bool   `json:"success"`
}
