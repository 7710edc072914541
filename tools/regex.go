// Regex Match Tool using Perl/Python compatible expressions.
//
// Information Hiding:
// - Argument splitting on RegexDelimiter
// - Match timeout and iteration limits

package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// RegexDelimiter separates pattern from text. A plain "|" would collide
// with regex alternation.
const RegexDelimiter = "|||"

const (
	maxRegexMatches  = 50
	regexMatchBudget = 2 * time.Second
)

// RegexTool finds all matches of a pattern in a text.
type RegexTool struct {
	BaseTool
}

// NewRegexTool creates a regex tool.
func NewRegexTool() *RegexTool {
	return &RegexTool{}
}

// Metadata returns the tool metadata.
func (t *RegexTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "regex_match",
		Description: "Find every match of a regular expression (Perl/Python syntax, lookarounds allowed) in a text, with capture groups.",
		Usage:       "pattern|||text, e.g. \\d{3}-\\d{4}|||call 555-1234",
	}
}

// Execute runs the pattern over the text.
func (t *RegexTool) Execute(ctx context.Context, input string) (ToolResult, error) {
	parts := strings.SplitN(input, RegexDelimiter, 2)
	if len(parts) != 2 {
		return FailureResultf("invalid input, want pattern%stext", RegexDelimiter), nil
	}
	pattern := strings.TrimSpace(parts[0])
	text := strings.TrimSpace(parts[1])
	if pattern == "" {
		return FailureResultf("pattern cannot be empty"), nil
	}

	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return FailureResult(fmt.Errorf("invalid pattern: %w", err)), nil
	}
	re.MatchTimeout = regexMatchBudget

	var lines []string
	m, err := re.FindStringMatch(text)
	for m != nil && err == nil && len(lines) < maxRegexMatches {
		if ctx.Err() != nil {
			return FailureResult(ctx.Err()), nil
		}
		lines = append(lines, describeMatch(len(lines)+1, m))
		m, err = re.FindNextMatch(m)
	}
	if err != nil {
		return FailureResult(fmt.Errorf("match failed: %w", err)), nil
	}

	if len(lines) == 0 {
		return SuccessResult("No matches."), nil
	}
	header := fmt.Sprintf("%d match(es):", len(lines))
	if len(lines) == maxRegexMatches {
		header = fmt.Sprintf("first %d matches:", maxRegexMatches)
	}
	return SuccessResult(header + "\n" + strings.Join(lines, "\n")), nil
}

func describeMatch(n int, m *regexp2.Match) string {
	line := fmt.Sprintf("%d. %q at %d", n, m.String(), m.Index)
	groups := m.Groups()
	var caps []string
	for _, g := range groups[1:] {
		name := g.Name
		caps = append(caps, fmt.Sprintf("%s=%q", name, g.String()))
	}
	if len(caps) > 0 {
		line += " [" + strings.Join(caps, ", ") + "]"
	}
	return line
}
