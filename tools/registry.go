// Package tools provides tool management and registration.
//
// Information Hiding:
// - Tool storage and lookup implementation hidden
// - Failure-to-observation conversion hidden behind Invoke
// - Registration and discovery mechanisms abstracted

package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/richinex/galactic/model"
)

// FailurePrefix starts every observation produced by a failed invocation.
const FailurePrefix = "Error: "

// ErrUnknownTool is wrapped by lookups of unregistered tool names.
var ErrUnknownTool = errors.New("unknown tool")

// Registry manages available tools. It is populated at startup and then
// only read, so one registry is shared by every session.
type Registry struct {
	mu       sync.RWMutex
	tools    map[string]Tool
	order    []string
	executor *Executor
	logger   *slog.Logger
}

// NewRegistry creates a new empty tool registry using the default executor.
func NewRegistry() *Registry {
	return &Registry{
		tools:    make(map[string]Tool),
		executor: NewDefaultExecutor(),
		logger:   slog.Default(),
	}
}

// WithExecutor replaces the executor used by Invoke.
func (r *Registry) WithExecutor(e *Executor) *Registry {
	r.executor = e
	return r
}

// WithLogger sets the logger used for invocation records.
func (r *Registry) WithLogger(l *slog.Logger) *Registry {
	if l != nil {
		r.logger = l
	}
	return r
}

// Register adds a new tool to the registry.
// Returns error if a tool with the same name already exists.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Metadata().Name
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool '%s' already registered", name)
	}
	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

// RegisterFunc registers a plain function as a tool.
func (r *Registry) RegisterFunc(name, description string, fn func(ctx context.Context, input string) (string, error)) error {
	return r.Register(NewFunc(name, description, fn))
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	return tool, exists
}

// Has checks if a tool exists in the registry.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.tools[name]
	return exists
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Names returns all registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// List returns metadata for all registered tools in registration order.
func (r *Registry) List() []ToolMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metadata := make([]ToolMetadata, 0, len(r.order))
	for _, name := range r.order {
		metadata = append(metadata, r.tools[name].Metadata())
	}
	return metadata
}

// Description returns one "name: description" line per tool for prompts.
func (r *Registry) Description() string {
	var lines []string
	for _, meta := range r.List() {
		lines = append(lines, meta.String())
	}
	return strings.Join(lines, "\n")
}

// Suggest returns registered names that fuzzily match name, best first.
func (r *Registry) Suggest(name string) []string {
	names := r.Names()
	var out []string
	for _, m := range fuzzy.Find(strings.ToLower(name), names) {
		out = append(out, m.Str)
	}
	if len(out) == 0 {
		// fuzzy matches subsequences only; catch "Calculator" or "web search" too
		norm := normalizeName(name)
		for _, n := range names {
			if normalizeName(n) == norm {
				out = append(out, n)
			}
		}
	}
	return out
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

// Invoke runs the named tool and always returns text for the model.
// Unknown names, failures, timeouts and panics all become a string that
// starts with FailurePrefix.
func (r *Registry) Invoke(ctx context.Context, name, input string) string {
	out, _ := r.InvokeWithStats(ctx, name, input)
	return out
}

// InvokeWithStats is Invoke plus a record of the call for metrics.
func (r *Registry) InvokeWithStats(ctx context.Context, name, input string) (out string, call model.ToolCall) {
	start := time.Now()
	call = model.ToolCall{Name: name, InputSize: len(input)}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("tool panicked", "tool", name, "panic", p)
			out = FailurePrefix + fmt.Sprintf("tool '%s' crashed: %v", name, p)
			call.Success = false
		}
		call.OutputSize = len(out)
		call.DurationMs = uint64(time.Since(start).Milliseconds())
		r.logger.Info("tool invoked",
			"tool", name,
			"success", call.Success,
			"duration_ms", call.DurationMs,
			"output_bytes", call.OutputSize)
	}()

	tool, ok := r.Get(name)
	if !ok {
		return FailurePrefix + r.unknownToolMessage(name), call
	}

	result, err := r.executor.Execute(ctx, tool, input)
	if err != nil {
		return FailurePrefix + err.Error(), call
	}
	if !result.Success() {
		msg := result.Error.Error()
		if result.Output != "" {
			msg += "\n" + result.Output
		}
		return FailurePrefix + msg, call
	}

	call.Success = true
	return result.Output, call
}

func (r *Registry) unknownToolMessage(name string) string {
	msg := fmt.Sprintf("%v '%s'. Available tools: %s.", ErrUnknownTool, name, strings.Join(r.Names(), ", "))
	if s := r.Suggest(name); len(s) > 0 {
		msg += fmt.Sprintf(" Did you mean '%s'?", s[0])
	}
	return msg
}
