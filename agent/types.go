// Package agent provides the ReAct agent implementation.
//
// Contains the loop states and the response returned for one user turn.
package agent

import (
	"fmt"

	"github.com/richinex/galactic/model"
)

// State is where the control loop is within a turn.
type State int

const (
	StateReasoning State = iota
	StateToolDispatch
	StateFinished
	StateAborted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateReasoning:
		return "reasoning"
	case StateToolDispatch:
		return "tool_dispatch"
	case StateFinished:
		return "finished"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// AbortReason says why a turn ended without a final answer.
type AbortReason int

const (
	AbortNone AbortReason = iota
	AbortBudget
	AbortModel
)

// String returns the reason name.
func (r AbortReason) String() string {
	switch r {
	case AbortNone:
		return "none"
	case AbortBudget:
		return "iteration_budget"
	case AbortModel:
		return "model_failure"
	default:
		return "unknown"
	}
}

// BudgetExhaustedAnswer is returned when the iteration cap is reached.
const BudgetExhaustedAnswer = "Agent stopped due to iteration limit or time limit."

// ModelFailureAnswer renders the user-visible text for a failed model call.
func ModelFailureAnswer(err error) string {
	return fmt.Sprintf("🚨 **System Alert**: Neural network disruption detected.\n\n*Error Details*: %v", err)
}

// Metadata contains metadata about one turn's execution.
type Metadata struct {
	ExecutionTimeMs uint64
	Iterations      int
	LLMCalls        int
	ToolCalls       []model.ToolCall
}

// Response is the outcome of one user turn. Answer is always set: the
// final answer when Finished, a fixed or error text when Aborted.
type Response struct {
	State      State
	Answer     string
	Abort      AbortReason
	Err        error
	Scratchpad []model.ScratchpadEntry
	Steps      []model.Step
	Metadata   Metadata
}

// IsSuccess checks if the turn produced a final answer.
func (r Response) IsSuccess() bool {
	return r.State == StateFinished
}

// ToolsUsed returns the names of tools invoked during the turn, in order.
// Names the model made up are not included; they never reach the registry.
func (r Response) ToolsUsed() []string {
	var names []string
	for _, c := range r.Metadata.ToolCalls {
		names = append(names, c.Name)
	}
	return names
}
