// Adapters for tools that ship with langchaingo.
//
// Information Hiding:
// - langchaingo tool construction (user agents, result counts)
// - Conversion of in-band error strings to failed results

package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/tools/calculator"
	"github.com/tmc/langchaingo/tools/duckduckgo"
	"github.com/tmc/langchaingo/tools/wikipedia"
)

// caller is the single method every langchaingo tool exposes.
type caller interface {
	Call(ctx context.Context, input string) (string, error)
}

// LangChainTool exposes a langchaingo tool under our own name and description.
type LangChainTool struct {
	BaseTool
	meta   ToolMetadata
	inner  caller
	errTag string // output prefix the inner tool uses to report failure in-band
}

// NewLangChainTool wraps inner.
func NewLangChainTool(meta ToolMetadata, inner caller) *LangChainTool {
	return &LangChainTool{meta: meta, inner: inner}
}

// Metadata returns the tool metadata.
func (t *LangChainTool) Metadata() ToolMetadata {
	return t.meta
}

// Execute forwards input to the wrapped tool.
func (t *LangChainTool) Execute(ctx context.Context, input string) (ToolResult, error) {
	out, err := t.inner.Call(ctx, strings.TrimSpace(input))
	if err != nil {
		return FailureResult(fmt.Errorf("%s failed: %w", t.meta.Name, err)), nil
	}
	if t.errTag != "" && strings.HasPrefix(out, t.errTag) {
		return FailureResultf("%s", out), nil
	}
	if strings.TrimSpace(out) == "" {
		return SuccessResult("No results found."), nil
	}
	return SuccessResult(out), nil
}

// NewWebSearchTool searches the web through DuckDuckGo.
func NewWebSearchTool(maxResults int, userAgent string) (*LangChainTool, error) {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	ddg, err := duckduckgo.New(maxResults, userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to create web search tool: %w", err)
	}
	return NewLangChainTool(ToolMetadata{
		Name:        "web_search",
		Description: "Search the web for current events, news and facts that may have changed recently.",
		Usage:       "a search query",
	}, ddg), nil
}

// NewWikipediaTool looks topics up on Wikipedia.
func NewWikipediaTool(userAgent string) *LangChainTool {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return NewLangChainTool(ToolMetadata{
		Name:        "wikipedia",
		Description: "Look up encyclopedic background on people, places, history and science.",
		Usage:       "a topic or title",
	}, wikipedia.New(userAgent))
}

// NewCalculatorTool evaluates arithmetic expressions, including math
// functions such as sqrt and pow.
func NewCalculatorTool() *LangChainTool {
	t := NewLangChainTool(ToolMetadata{
		Name:        "calculator",
		Description: "Evaluate a mathematical expression exactly. Use for any arithmetic.",
		Usage:       "an expression, e.g. (3 + 4) * 2 or sqrt(16)",
	}, calculatorCaller{})
	t.errTag = "error from evaluator"
	return t
}

// calculatorCaller normalizes expressions before handing them to the
// starlark-based langchaingo calculator.
type calculatorCaller struct {
	calc calculator.Calculator
}

func (c calculatorCaller) Call(ctx context.Context, input string) (string, error) {
	expr := strings.TrimSpace(input)
	expr = strings.TrimSuffix(expr, "=")
	expr = strings.NewReplacer("×", "*", "÷", "/").Replace(expr)
	return c.calc.Call(ctx, strings.TrimSpace(expr))
}
