package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/richinex/galactic/session"
)

// ANSI color codes for the plain REPL.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
)

// REPL runs a line-oriented chat on the terminal.
func REPL(ctx context.Context, c *Controller, verbose bool) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          colorCyan + colorBold + "You: " + colorReset,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    commandCompleter(),
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	out := rl.Stdout()
	fmt.Fprintf(out, "%sGalactic Agent%s session %s. Type /help for commands, exit to quit.\n\n",
		colorBold, colorReset, c.Session().ID)

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				fmt.Fprintf(out, "\n%sEnding chat session. Goodbye!%s\n", colorGreen, colorReset)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		reply, err := c.Handle(ctx, line)
		if err != nil {
			if errors.Is(err, session.ErrEmptyInput) {
				continue
			}
			fmt.Fprintf(out, "%sError: %v%s\n\n", colorYellow, err, colorReset)
			continue
		}
		if reply.Quit {
			fmt.Fprintf(out, "%sEnding chat session. Goodbye!%s\n", colorGreen, colorReset)
			return nil
		}
		if reply.Turn != nil && verbose {
			if steps := FormatScratchpad(reply.Turn.Result.Scratchpad); steps != "" {
				fmt.Fprintf(out, "%s%s%s\n", colorDim, steps, colorReset)
			}
		}
		fmt.Fprintf(out, "\n%s\n\n", reply.Text)
	}
}

func commandCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("/help"),
		readline.PcItem("/purge"),
		readline.PcItem("/reset"),
		readline.PcItem("/stats"),
		readline.PcItem("/tools"),
		readline.PcItem("/personality",
			readline.PcItem("Professional"),
			readline.PcItem("Friendly"),
			readline.PcItem("Scientific"),
			readline.PcItem("Casual"),
			readline.PcItem("Enthusiastic"),
		),
		readline.PcItem("/quick",
			readline.PcItem("1"), readline.PcItem("2"), readline.PcItem("3"), readline.PcItem("4"),
		),
		readline.PcItem("/exit"),
	)
}

// Ask answers one question and prints the answer to w.
func Ask(ctx context.Context, c *Controller, question string, w io.Writer, verbose bool) error {
	turn, err := c.Session().HandleTurn(ctx, question)
	if err != nil {
		return err
	}
	if verbose {
		if steps := FormatScratchpad(turn.Result.Scratchpad); steps != "" {
			fmt.Fprintln(w, steps)
		}
	}
	fmt.Fprintln(w, turn.Answer)
	if !turn.Success() {
		return fmt.Errorf("turn %s", turn.Result.State)
	}
	return nil
}
