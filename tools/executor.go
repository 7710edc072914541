// Tool Executor with Timeout and Retry Logic.
//
// Information Hiding:
// - Per-call deadline handling hidden
// - Backoff algorithm hidden
// - Error classification logic hidden

package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultToolTimeout bounds a single tool invocation.
const DefaultToolTimeout = 10 * time.Second

// Executor provides tool execution with retry and timeout support.
type Executor struct {
	config ToolConfig
}

// NewExecutor creates a new tool executor with the given configuration.
func NewExecutor(config ToolConfig) *Executor {
	return &Executor{config: config}
}

// NewDefaultExecutor creates an executor with default configuration.
func NewDefaultExecutor() *Executor {
	return &Executor{config: DefaultToolConfig()}
}

// Timeout returns the per-call deadline applied by Execute.
func (e *Executor) Timeout() time.Duration {
	return e.config.TimeoutOrDefault()
}

// Execute validates input, then runs the tool under the configured timeout,
// retrying transient failures with exponential backoff.
func (e *Executor) Execute(ctx context.Context, tool Tool, input string) (ToolResult, error) {
	return e.ExecuteWithTimeout(ctx, tool, input, e.config.TimeoutOrDefault())
}

// ExecuteWithTimeout runs a tool with a specific overall timeout.
func (e *Executor) ExecuteWithTimeout(ctx context.Context, tool Tool, input string, timeout time.Duration) (ToolResult, error) {
	if v, ok := tool.(Validator); ok {
		if err := v.Validate(input); err != nil {
			return FailureResult(fmt.Errorf("validation failed: %w", err)), nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	toolName := tool.Metadata().Name
	maxRetries := e.config.Retries()

	for attempt := uint32(0); attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := e.calculateBackoff(attempt)
			select {
			case <-ctx.Done():
				return e.deadlineResult(ctx, toolName, timeout), nil
			case <-time.After(backoff):
			}
		}

		result, err := tool.Execute(ctx, input)
		if ctx.Err() != nil {
			return e.deadlineResult(ctx, toolName, timeout), nil
		}
		if err != nil {
			lastErr = err
			if !isRetryable(err) {
				break
			}
			continue
		}

		if result.Success() || !isRetryable(result.Error) {
			return result, nil
		}
		lastErr = result.Error
	}

	errMsg := "unknown error"
	if lastErr != nil {
		errMsg = lastErr.Error()
	}
	if maxRetries > 1 {
		return FailureResultf("tool '%s' failed after %d attempts: %s", toolName, maxRetries, errMsg), nil
	}
	return FailureResultf("tool '%s' failed: %s", toolName, errMsg), nil
}

func (e *Executor) deadlineResult(ctx context.Context, name string, timeout time.Duration) ToolResult {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return FailureResultf("tool '%s' timed out after %s", name, timeout)
	}
	return FailureResultf("tool '%s' cancelled: %v", name, ctx.Err())
}

// calculateBackoff returns the backoff duration for the given attempt.
func (e *Executor) calculateBackoff(attempt uint32) time.Duration {
	const (
		baseDelay = 100 * time.Millisecond
		maxDelay  = 5 * time.Second
	)

	delay := baseDelay * time.Duration(1<<attempt)
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

// isRetryable reports whether a failure looks transient. Tool failures are
// mostly deterministic (bad expression, unknown city), so the default is no.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	errLower := strings.ToLower(err.Error())

	nonRetryable := []string{"validation", "not allowed", "permission", "empty", "invalid"}
	for _, s := range nonRetryable {
		if strings.Contains(errLower, s) {
			return false
		}
	}

	retryable := []string{"timeout", "connection", "network", "temporar", "status 429", "status 5"}
	for _, s := range retryable {
		if strings.Contains(errLower, s) {
			return true
		}
	}
	return false
}
