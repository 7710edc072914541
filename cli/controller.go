// Slash commands and turn dispatch shared by the line REPL and the TUI.

package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/richinex/galactic/session"
)

// QuickPrompts are canned questions reachable with /quick <n>.
var QuickPrompts = []string{
	"What are the latest important news and current events?",
	"I need help with some calculations",
	"What's the current time and date?",
	"Tell me an interesting random fact",
}

// Reply is what a front end shows for one line of input.
type Reply struct {
	// Text is the assistant answer or the command output.
	Text string
	// Turn is set when the line ran the agent.
	Turn *session.Turn
	// Question is the text sent to the agent, which differs from the
	// input line for /quick.
	Question string
	Quit     bool
}

// Controller owns the current session and interprets input lines.
type Controller struct {
	app *App

	mu      sync.Mutex
	current *session.Session
}

// NewController starts a session, or resumes id when it is non-empty.
func NewController(ctx context.Context, app *App, id string) (*Controller, error) {
	var (
		s   *session.Session
		err error
	)
	if id != "" {
		s, err = app.Factory.Open(ctx, id)
	} else {
		s, err = app.Factory.New()
	}
	if err != nil {
		return nil, err
	}
	return &Controller{app: app, current: s}, nil
}

// Session returns the active session.
func (c *Controller) Session() *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Handle runs a slash command or sends line to the agent.
func (c *Controller) Handle(ctx context.Context, line string) (Reply, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Reply{}, session.ErrEmptyInput
	}
	if !strings.HasPrefix(line, "/") {
		if line == "exit" || line == "quit" {
			return Reply{Quit: true}, nil
		}
		return c.ask(ctx, line)
	}

	name, arg, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	arg = strings.TrimSpace(arg)
	s := c.Session()

	switch resolveCommand(strings.ToLower(name)) {
	case "help", "?":
		return Reply{Text: HelpText}, nil
	case "exit", "quit":
		return Reply{Quit: true}, nil
	case "purge":
		s.Purge(ctx)
		return Reply{Text: "Memory purged. Conversation history cleared."}, nil
	case "reset":
		fresh, err := c.app.Factory.Rebuild(s)
		if err != nil {
			return Reply{}, err
		}
		c.mu.Lock()
		c.current = fresh
		c.mu.Unlock()
		return Reply{Text: fmt.Sprintf("New session %s initialized.", fresh.ID)}, nil
	case "stats":
		return Reply{Text: FormatStats(s.Stats())}, nil
	case "tools":
		return Reply{Text: FormatTools(c.app.Tools.List())}, nil
	case "personality":
		if arg == "" {
			return Reply{Text: fmt.Sprintf("Personality: %s (choose from %s)", s.Personality(), personalityNames())}, nil
		}
		p, err := session.ParsePersonality(arg)
		if err != nil {
			return Reply{Text: fmt.Sprintf("%v; choose from %s", err, personalityNames())}, nil
		}
		s.SetPersonality(p)
		return Reply{Text: fmt.Sprintf("Personality set to %s.", p)}, nil
	case "quick":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(QuickPrompts) {
			return Reply{Text: FormatQuickPrompts()}, nil
		}
		return c.ask(ctx, QuickPrompts[n-1])
	default:
		return Reply{Text: fmt.Sprintf("Unknown command /%s. Type /help for the list.", name)}, nil
	}
}

func (c *Controller) ask(ctx context.Context, question string) (Reply, error) {
	turn, err := c.Session().HandleTurn(ctx, question)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: turn.Answer, Turn: &turn, Question: question}, nil
}

func personalityNames() string {
	var names []string
	for _, p := range session.Personalities() {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}

// HelpText lists the slash commands.
const HelpText = `Commands:
  /purge              clear conversation history and memory
  /reset              start a new session with fresh memory
  /stats              show session statistics
  /tools              list available tools
  /personality [name] show or change the answer style
  /quick [n]          send a quick prompt (no number lists them)
  /help               show this help
  /exit               leave`
