// Code Execution Tool.
//
// Information Hiding:
// - Interpreter selection from fence tags
// - Process execution with deadline and output capture
// - Exit status interpretation

package tools

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	ijson "github.com/richinex/galactic/internal/json"
)

// maxCodeOutput caps captured stdout+stderr returned to the model.
const maxCodeOutput = 4000

// Interpreter describes how to feed a program to a language runtime on stdin.
type Interpreter struct {
	Command string
	Args    []string
}

// DefaultInterpreters maps fence language tags to interpreters.
func DefaultInterpreters() map[string]Interpreter {
	python := Interpreter{Command: "python3", Args: []string{"-"}}
	shell := Interpreter{Command: "sh", Args: []string{"-s"}}
	return map[string]Interpreter{
		"python": python,
		"py":     python,
		"sh":     shell,
		"bash":   {Command: "bash", Args: []string{"-s"}},
		"shell":  shell,
		"node":   {Command: "node", Args: []string{"-"}},
		"js":     {Command: "node", Args: []string{"-"}},
	}
}

// CodeTool runs a short program and returns what it printed.
type CodeTool struct {
	BaseTool
	timeout      time.Duration
	defaultLang  string
	interpreters map[string]Interpreter
}

// NewCodeTool creates a code tool with the given per-run timeout and
// default language (used when the input carries no fence tag).
func NewCodeTool(timeout time.Duration, defaultLang string) *CodeTool {
	if defaultLang == "" {
		defaultLang = "python"
	}
	return &CodeTool{
		timeout:      timeout,
		defaultLang:  strings.ToLower(defaultLang),
		interpreters: DefaultInterpreters(),
	}
}

// WithInterpreter registers or overrides the interpreter for lang.
func (t *CodeTool) WithInterpreter(lang string, in Interpreter) *CodeTool {
	t.interpreters[strings.ToLower(lang)] = in
	return t
}

// Metadata returns the tool metadata.
func (t *CodeTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "run_code",
		Description: fmt.Sprintf("Run a short %s program and return its printed output. Print the values you need.", t.defaultLang),
		Usage:       "source code, optionally in a fenced block tagged with the language",
	}
}

// Execute runs the program.
func (t *CodeTool) Execute(ctx context.Context, input string) (ToolResult, error) {
	lang := ijson.FenceLanguage(input)
	if lang == "" {
		lang = t.defaultLang
	}
	source := ijson.StripCodeFence(input)
	if source == "" {
		return FailureResultf("code cannot be empty"), nil
	}

	in, ok := t.interpreters[lang]
	if !ok {
		return FailureResultf("language '%s' is not allowed", lang), nil
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, in.Command, in.Args...)
	cmd.Stdin = strings.NewReader(source)
	// children of a killed interpreter may hold the output pipe open
	cmd.WaitDelay = time.Second
	output, err := cmd.CombinedOutput()
	out := truncate(string(output), maxCodeOutput)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return FailureResultf("code execution timed out after %s", t.timeout), nil
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return ToolResult{
				Output: out,
				Error:  fmt.Errorf("program exited with code %d", exitErr.ExitCode()),
			}, nil
		}
		return FailureResult(fmt.Errorf("failed to start %s: %w", in.Command, err)), nil
	}

	if strings.TrimSpace(out) == "" {
		return SuccessResult("(program produced no output)"), nil
	}
	return SuccessResult(out), nil
}
