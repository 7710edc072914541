package tools

import (
	"context"
	"fmt"
)

// Func adapts a plain function into a Tool. A returned error becomes a
// failed ToolResult, so callables never need to build results themselves.
type Func struct {
	meta ToolMetadata
	fn   func(ctx context.Context, input string) (string, error)
}

// NewFunc wraps fn as a tool called name.
func NewFunc(name, description string, fn func(ctx context.Context, input string) (string, error)) *Func {
	return &Func{meta: ToolMetadata{Name: name, Description: description}, fn: fn}
}

// WithUsage documents the input format shown to the model.
func (f *Func) WithUsage(usage string) *Func {
	f.meta.Usage = usage
	return f
}

// Metadata returns the tool metadata.
func (f *Func) Metadata() ToolMetadata {
	return f.meta
}

// Execute calls the wrapped function.
func (f *Func) Execute(ctx context.Context, input string) (ToolResult, error) {
	if f.fn == nil {
		return FailureResultf("tool '%s' has no implementation", f.meta.Name), nil
	}
	out, err := f.fn(ctx, input)
	if err != nil {
		return FailureResult(fmt.Errorf("%s: %w", f.meta.Name, err)), nil
	}
	return SuccessResult(out), nil
}
