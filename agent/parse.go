// Completion parser for the text-marker ReAct format.
//
// Information Hiding:
// - Marker search (case-insensitive, first occurrence)
// - Tie-break between final answer and action
// - Cleanup of tool names and action inputs

package agent

import (
	"strings"

	ijson "github.com/richinex/galactic/internal/json"
	"github.com/richinex/galactic/model"
	"github.com/richinex/galactic/prompt"
)

// Outcome classifies a parsed completion.
type Outcome int

const (
	// OutcomeFinal means the completion carried a final answer.
	OutcomeFinal Outcome = iota
	// OutcomeAction means the completion requested a registered tool.
	OutcomeAction
	// OutcomeUnknownTool means the action named a tool that does not exist.
	OutcomeUnknownTool
	// OutcomeMalformed means neither a usable action nor a final answer was found.
	OutcomeMalformed
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeFinal:
		return "final"
	case OutcomeAction:
		return "action"
	case OutcomeUnknownTool:
		return "unknown_tool"
	case OutcomeMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// ParseResult is the parser's verdict on one completion.
type ParseResult struct {
	Outcome Outcome
	Step    model.Step
	// Problem explains a malformed completion; empty otherwise.
	Problem string
}

var (
	finalMarker  = strings.ToLower(prompt.MarkerFinalAnswer)
	actionMarker = strings.ToLower(prompt.MarkerAction)
	inputMarker  = strings.ToLower(prompt.MarkerActionInput)
	obsMarker    = strings.ToLower(prompt.MarkerObservation)
)

// Parse interprets a raw completion. The final-answer marker wins over an
// action when both are present. known reports whether a tool name exists.
//
// Action markers count only at the start of a line. "Final Answer:" counts
// at a line start in any case, or anywhere when spelled exactly.
func Parse(completion string, known func(string) bool) ParseResult {
	text := strings.TrimSpace(completion)

	finalIdx := lineIndexFold(text, finalMarker)
	if i := strings.Index(text, prompt.MarkerFinalAnswer); i >= 0 && (finalIdx < 0 || i < finalIdx) {
		finalIdx = i
	}
	actionIdx := lineIndexFold(text, actionMarker)
	inputIdx := -1
	if actionIdx >= 0 {
		if i := lineIndexFold(text[actionIdx:], inputMarker); i >= 0 {
			inputIdx = actionIdx + i
		}
	}

	thought := thoughtBefore(text, firstNonNegative(finalIdx, actionIdx, inputIdx))

	if finalIdx >= 0 {
		answer := strings.TrimSpace(text[finalIdx+len(finalMarker):])
		if answer == "" {
			return ParseResult{
				Outcome: OutcomeMalformed,
				Step:    model.Step{Thought: thought},
				Problem: "Invalid Format: '" + prompt.MarkerFinalAnswer + "' was empty",
			}
		}
		return ParseResult{
			Outcome: OutcomeFinal,
			Step:    model.Step{Thought: thought, FinalAnswer: &answer},
		}
	}

	if actionIdx < 0 {
		return ParseResult{
			Outcome: OutcomeMalformed,
			Step:    model.Step{Thought: thoughtBefore(text, -1)},
			Problem: "Invalid Format: Missing '" + prompt.MarkerAction + "' after '" + prompt.MarkerThought + "'",
		}
	}
	if inputIdx < 0 {
		return ParseResult{
			Outcome: OutcomeMalformed,
			Step:    model.Step{Thought: thought},
			Problem: "Invalid Format: Missing '" + prompt.MarkerActionInput + "' after '" + prompt.MarkerAction + "'",
		}
	}

	tool := cleanToolName(text[actionIdx+len(actionMarker) : inputIdx])
	input := text[inputIdx+len(inputMarker):]
	if i := lineIndexFold(input, obsMarker); i >= 0 {
		input = input[:i]
	}
	input = ijson.UnwrapInput(input)

	step := model.Step{Thought: thought, Action: &model.Action{Tool: tool, Input: input}}
	if tool == "" {
		return ParseResult{
			Outcome: OutcomeMalformed,
			Step:    step,
			Problem: "Invalid Format: '" + prompt.MarkerAction + "' did not name a tool",
		}
	}
	if known != nil && !known(tool) {
		return ParseResult{Outcome: OutcomeUnknownTool, Step: step}
	}
	return ParseResult{Outcome: OutcomeAction, Step: step}
}

// thoughtBefore returns the text ahead of the first marker with any
// leading "Thought:" removed. end < 0 means the whole text.
func thoughtBefore(text string, end int) string {
	if end >= 0 {
		text = text[:end]
	}
	text = strings.TrimSpace(text)
	if len(text) >= len(prompt.MarkerThought) && strings.EqualFold(text[:len(prompt.MarkerThought)], prompt.MarkerThought) {
		text = text[len(prompt.MarkerThought):]
	}
	return strings.TrimSpace(text)
}

// cleanToolName takes the first line after "Action:" and strips the
// decoration models like to add.
func cleanToolName(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "`'\"*[]"))
}

// indexFold is a case-insensitive strings.Index for ASCII markers. Byte
// offsets refer to s itself.
func indexFold(s, marker string) int {
	n := len(marker)
	for i := 0; i+n <= len(s); i++ {
		if strings.EqualFold(s[i:i+n], marker) {
			return i
		}
	}
	return -1
}

// lineIndexFold is indexFold restricted to markers that open a line,
// ignoring leading blanks and markdown emphasis. Prose such as
// "my next action: ..." inside a thought is skipped.
func lineIndexFold(s, marker string) int {
	for off := 0; off < len(s); {
		i := indexFold(s[off:], marker)
		if i < 0 {
			return -1
		}
		i += off
		if strings.TrimLeft(s[strings.LastIndexByte(s[:i], '\n')+1:i], " \t*#>") == "" {
			return i
		}
		off = i + 1
	}
	return -1
}

func firstNonNegative(idx ...int) int {
	best := -1
	for _, i := range idx {
		if i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	return best
}
