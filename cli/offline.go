package cli

import (
	"context"
	"strings"

	"github.com/richinex/galactic/llm"
	"github.com/richinex/galactic/prompt"
	"github.com/richinex/galactic/tools"
)

// OfflineModel is a stand-in model for demos without network access or
// credentials. It consults the clock tool once per question, then answers
// with what it saw. Summarization requests get a fixed summary.
func OfflineModel() llm.Completer {
	return llm.CompleterFunc(func(ctx context.Context, p string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if strings.HasPrefix(p, "Progressively summarize") {
			return "The human chatted with the assistant while it was offline.", nil
		}

		turn := p
		if i := strings.LastIndex(p, "\nQuestion: "); i >= 0 {
			turn = p[i:]
		}
		obsAt := strings.LastIndex(turn, prompt.MarkerObservation+" ")
		if obsAt < 0 {
			return "Do I need to use a tool? Yes\n" +
				prompt.MarkerAction + " " + tools.NameTime + "\n" +
				prompt.MarkerActionInput + " UTC", nil
		}

		obs := turn[obsAt+len(prompt.MarkerObservation)+1:]
		if i := strings.Index(obs, "\n"+prompt.MarkerThought); i >= 0 {
			obs = obs[:i]
		}
		return "Do I need to use a tool? No\n" + prompt.MarkerFinalAnswer +
			" I'm running offline, so I can't reach a language model. " +
			"The one thing I can tell you: " + strings.TrimSpace(obs), nil
	})
}
