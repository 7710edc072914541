// Package prompt renders the ReAct prompt sent to the model each iteration.
//
// Information Hiding:
// - Template layout and marker wording
// - Scratchpad rendering in the model's own output shape
//
// Build is pure: identical inputs always produce identical text.
package prompt

import (
	"strings"

	"github.com/richinex/galactic/model"
	"github.com/richinex/galactic/tools"
)

// Markers shared by the prompt and the output parser.
const (
	MarkerThought     = "Thought:"
	MarkerAction      = "Action:"
	MarkerActionInput = "Action Input:"
	MarkerObservation = "Observation:"
	MarkerFinalAnswer = "Final Answer:"
)

// DefaultInstructions is the assistant persona placed above the tool list.
const DefaultInstructions = `You are a highly capable AI assistant named Galactic Agent.
You are designed to be helpful, friendly, and comprehensive.
You have access to various tools to gather information and complete tasks.
Always try to use your tools to get factual information when asked specific questions
or when external data might be needed.
If a question is a simple knowledge recall, you can answer directly.
Maintain a consistent friendly tone.`

// Input is everything one prompt is built from.
type Input struct {
	Instructions string
	Tools        []tools.ToolMetadata
	History      string
	Question     string
	Scratchpad   []model.ScratchpadEntry
}

// Build renders the full prompt.
func Build(in Input) string {
	instructions := strings.TrimSpace(in.Instructions)
	if instructions == "" {
		instructions = DefaultInstructions
	}

	names := make([]string, len(in.Tools))
	lines := make([]string, len(in.Tools))
	for i, t := range in.Tools {
		names[i] = t.Name
		lines[i] = t.String()
	}
	toolList := strings.Join(lines, "\n")
	if toolList == "" {
		toolList = "(no tools available)"
	}

	history := strings.TrimSpace(in.History)
	if history == "" {
		history = "(no previous conversation)"
	}

	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("\n\nAvailable Tools:\n")
	b.WriteString(toolList)
	b.WriteString("\n\nTo use a tool, use the following format:\n\n")
	b.WriteString(MarkerThought + " Do I need to use a tool? Yes\n")
	b.WriteString(MarkerAction + " the action to take, should be one of [" + strings.Join(names, ", ") + "]\n")
	b.WriteString(MarkerActionInput + " the input to the action\n\n")
	b.WriteString(MarkerObservation + " the result of the action\n\n")
	b.WriteString("When you have a response, use the following format:\n\n")
	b.WriteString(MarkerThought + " Do I need to use a tool? No\n")
	b.WriteString(MarkerFinalAnswer + " [your response here]\n\n")
	b.WriteString("Chat History:\n")
	b.WriteString(history)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(strings.TrimSpace(in.Question))
	b.WriteString("\n" + MarkerThought)
	b.WriteString(RenderScratchpad(in.Scratchpad))
	return b.String()
}

// RenderScratchpad renders prior steps of the current turn exactly as the
// model would have written them, each followed by its observation and a
// fresh "Thought:" so the model continues the pattern.
func RenderScratchpad(entries []model.ScratchpadEntry) string {
	var b strings.Builder
	for _, e := range entries {
		thought := strings.TrimSpace(e.Thought)
		if thought != "" {
			b.WriteString(" " + thought)
		}
		if e.Tool != "" {
			b.WriteString("\n" + MarkerAction + " " + e.Tool)
			b.WriteString("\n" + MarkerActionInput + " " + e.Input)
		}
		b.WriteString("\n" + MarkerObservation + " " + strings.TrimSpace(e.Observation))
		b.WriteString("\n" + MarkerThought)
	}
	return b.String()
}
