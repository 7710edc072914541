// ReAct (Reason + Act) loop implementation.
//
// All agent execution goes through this module.
//
// Information Hiding:
// - ReAct loop internals hidden
// - LLM communication hidden
// - Tool dispatch and corrective observations hidden

package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/richinex/galactic/llm"
	"github.com/richinex/galactic/model"
	"github.com/richinex/galactic/prompt"
	"github.com/richinex/galactic/tools"
)

// Observer is called after each scratchpad entry is recorded.
type Observer func(iteration int, entry model.ScratchpadEntry)

// Agent executes one user turn at a time using the ReAct pattern. It holds
// no per-turn state, so one Agent may serve many sessions.
type Agent struct {
	config   Config
	model    llm.Completer
	registry *tools.Registry
	logger   *slog.Logger
	observer Observer
}

// New creates an agent with the default configuration.
func New(m llm.Completer, registry *tools.Registry) (*Agent, error) {
	return NewBuilder().Model(m).Tools(registry).Build()
}

// MaxIterations returns the iteration cap.
func (a *Agent) MaxIterations() int {
	return a.config.MaxIterations
}

// Tools returns the registry the agent dispatches to.
func (a *Agent) Tools() *tools.Registry {
	return a.registry
}

// Run answers question given the rendered conversation history.
// Each model call consumes one iteration. The returned Response always
// carries an Answer.
func (a *Agent) Run(ctx context.Context, history, question string) Response {
	start := time.Now()
	var resp Response
	var scratch []model.ScratchpadEntry
	state := StateReasoning

	finish := func(s State, answer string) Response {
		resp.State = s
		resp.Answer = answer
		resp.Scratchpad = scratch
		resp.Metadata.ExecutionTimeMs = uint64(time.Since(start).Milliseconds())
		a.logger.Debug("turn finished",
			"state", s,
			"iterations", resp.Metadata.Iterations,
			"tool_calls", len(resp.Metadata.ToolCalls),
			"duration_ms", resp.Metadata.ExecutionTimeMs)
		return resp
	}

	for iteration := 0; iteration < a.config.MaxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			resp.Abort = AbortModel
			resp.Err = err
			return finish(StateAborted, ModelFailureAnswer(err))
		}

		text := prompt.Build(prompt.Input{
			Instructions: a.config.Instructions,
			Tools:        a.registry.List(),
			History:      history,
			Question:     question,
			Scratchpad:   scratch,
		})

		resp.Metadata.Iterations++
		resp.Metadata.LLMCalls++
		completion, err := a.model.Complete(ctx, text)
		if err != nil {
			a.logger.Error("model call failed", "iteration", iteration, "error", err)
			resp.Abort = AbortModel
			resp.Err = fmt.Errorf("model call failed: %w", err)
			return finish(StateAborted, ModelFailureAnswer(err))
		}

		parsed := Parse(completion, a.registry.Has)
		resp.Steps = append(resp.Steps, parsed.Step)
		a.logger.Debug("completion parsed", "iteration", iteration, "outcome", parsed.Outcome, "state", state)

		var entry model.ScratchpadEntry
		switch parsed.Outcome {
		case OutcomeFinal:
			return finish(StateFinished, *parsed.Step.FinalAnswer)

		case OutcomeAction:
			state = StateToolDispatch
			action := parsed.Step.Action
			out, call := a.registry.InvokeWithStats(ctx, action.Tool, action.Input)
			resp.Metadata.ToolCalls = append(resp.Metadata.ToolCalls, call)
			entry = model.ScratchpadEntry{
				Thought:     parsed.Step.Thought,
				Tool:        action.Tool,
				Input:       action.Input,
				Observation: out,
			}

		case OutcomeUnknownTool:
			action := parsed.Step.Action
			entry = model.ScratchpadEntry{
				Thought:     parsed.Step.Thought,
				Tool:        action.Tool,
				Input:       action.Input,
				Observation: a.unknownToolObservation(action.Tool),
			}

		default:
			entry = model.ScratchpadEntry{
				Thought:     strings.TrimSpace(completion),
				Observation: parsed.Problem + ". " + formatReminder,
			}
		}

		scratch = append(scratch, entry)
		if a.observer != nil {
			a.observer(iteration, entry)
		}
		state = StateReasoning
	}

	a.logger.Warn("iteration budget exhausted", "max_iterations", a.config.MaxIterations)
	resp.Abort = AbortBudget
	return finish(StateAborted, BudgetExhaustedAnswer)
}

const formatReminder = "Respond with '" + prompt.MarkerAction + "' and '" + prompt.MarkerActionInput +
	"' to use a tool, or '" + prompt.MarkerFinalAnswer + "' to reply."

func (a *Agent) unknownToolObservation(name string) string {
	msg := fmt.Sprintf("'%s' is not a valid tool, try one of [%s].", name, strings.Join(a.registry.Names(), ", "))
	if s := a.registry.Suggest(name); len(s) > 0 {
		msg += fmt.Sprintf(" Did you mean '%s'?", s[0])
	}
	return msg
}
