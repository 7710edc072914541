// Package tools provides the tool system for the agent.
//
// Information Hiding:
// - Tool execution details hidden behind interface
// - Input formats documented in metadata, parsed inside implementations
// - Registry implementation details hidden from consumers
// - Error handling internalized per tool
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ToolMetadata describes what a tool does and how to call it.
type ToolMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// Usage documents the expected Action Input shape, e.g. "amount|FROM|TO".
	Usage string `json:"usage,omitempty"`
}

// String returns the "name: description" line used in prompts.
func (m ToolMetadata) String() string {
	if m.Usage == "" {
		return fmt.Sprintf("%s: %s", m.Name, m.Description)
	}
	return fmt.Sprintf("%s: %s Input: %s", m.Name, m.Description, m.Usage)
}

// ToolResult represents the result of a tool execution.
// Success is determined by whether Error is nil.
type ToolResult struct {
	Output string `json:"output"`
	Error  error  `json:"-"`
}

// MarshalJSON implements custom JSON marshaling for ToolResult.
func (t ToolResult) MarshalJSON() ([]byte, error) {
	if t.Error != nil {
		return json.Marshal(struct {
			Success bool   `json:"success"`
			Output  string `json:"output"`
			Error   string `json:"error"`
		}{
			Success: false,
			Output:  t.Output,
			Error:   t.Error.Error(),
		})
	}
	return json.Marshal(struct {
		Success bool   `json:"success"`
		Output  string `json:"output"`
	}{
		Success: true,
		Output:  t.Output,
	})
}

// Success returns true if the tool execution succeeded.
func (t ToolResult) Success() bool {
	return t.Error == nil
}

// SuccessResult creates a successful tool result.
func SuccessResult(output string) ToolResult {
	return ToolResult{Output: output}
}

// FailureResult creates a failed tool result.
func FailureResult(err error) ToolResult {
	return ToolResult{Error: err}
}

// FailureResultf creates a failed tool result with a formatted error message.
func FailureResultf(format string, args ...interface{}) ToolResult {
	return ToolResult{Error: fmt.Errorf(format, args...)}
}

// Tool is the interface that all tools must implement.
//
// Information Hiding: Tool implementations hide their internal execution logic,
// data structures, and error handling strategies behind this interface.
// Input is the raw Action Input text; multi-argument tools split it with SplitArgs.
type Tool interface {
	// Metadata returns tool metadata (name, description, input format).
	Metadata() ToolMetadata

	// Execute runs the tool with the given input.
	Execute(ctx context.Context, input string) (ToolResult, error)
}

// Validator is implemented by tools that can reject input before running.
type Validator interface {
	Validate(input string) error
}

// BaseTool provides a default implementation for Validate.
type BaseTool struct{}

// Validate rejects blank input.
func (BaseTool) Validate(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input cannot be empty")
	}
	return nil
}

// ToolConfig holds tool execution configuration.
// The zero value is safe: timeout defaults to 10s and retries to 2.
type ToolConfig struct {
	Timeout    time.Duration
	MaxRetries uint32
}

// TimeoutOrDefault returns the configured per-call timeout.
func (c *ToolConfig) TimeoutOrDefault() time.Duration {
	if c == nil || c.Timeout <= 0 {
		return DefaultToolTimeout
	}
	return c.Timeout
}

// Retries returns the configured max attempts, defaulting to 2 if zero.
func (c *ToolConfig) Retries() uint32 {
	if c == nil || c.MaxRetries == 0 {
		return 2
	}
	return c.MaxRetries
}

// DefaultToolConfig returns the default tool configuration.
func DefaultToolConfig() ToolConfig {
	return ToolConfig{
		Timeout:    DefaultToolTimeout,
		MaxRetries: 2,
	}
}

// pathAllowed checks if a path is within the allowed paths.
// If allowedPaths is empty, all paths are allowed.
func pathAllowed(path string, allowedPaths []string) bool {
	if len(allowedPaths) == 0 {
		return true
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, allowed := range allowedPaths {
		allowedAbs, err := filepath.Abs(allowed)
		if err != nil {
			continue
		}
		if absPath == allowedAbs || strings.HasPrefix(absPath, allowedAbs+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
