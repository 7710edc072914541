// Package tui is the full-screen chat front end.
//
// Information Hiding:
// - Bubble Tea update loop hidden
// - Layout and markdown rendering hidden
// - Agent turns run off the UI goroutine

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/richinex/galactic/cli"
	"github.com/richinex/galactic/session"
)

type entryKind int

const (
	entryUser entryKind = iota
	entryAssistant
	entrySystem
	entryError
)

type entry struct {
	kind entryKind
	text string
	// steps is the rendered scratchpad, shown in verbose mode.
	steps string
}

// replyMsg carries the result of a Controller.Handle call.
type replyMsg struct {
	reply cli.Reply
	err   error
}

var commands = []string{"/help", "/purge", "/reset", "/stats", "/tools", "/personality", "/quick", "/exit"}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	ctx     context.Context
	ctrl    *cli.Controller
	verbose bool

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	entries    []entry
	lastAnswer string
	busy       bool
	status     string

	width, height int
	ready         bool

	// copy writes to the system clipboard; replaced in tests.
	copy func(string) error
}

// New creates the chat model.
func New(ctx context.Context, ctrl *cli.Controller, verbose bool) Model {
	in := textinput.New()
	in.Placeholder = "Ask anything, or /help"
	in.Prompt = "❯ "
	in.CharLimit = 4000
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = assistantStyle

	return Model{
		ctx:     ctx,
		ctrl:    ctrl,
		verbose: verbose,
		input:   in,
		spinner: sp,
		entries: []entry{{kind: entrySystem, text: "Welcome to Galactic Agent. Type /quick for ideas."}},
		copy:    clipboard.WriteAll,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		vpHeight := msg.Height - 5
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.input.Width = msg.Width - 4
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlY:
			m.status = m.copyLastAnswer()
			return m, nil
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				return m, nil
			}
			m.input.Reset()
			m.busy = true
			m.status = ""
			if !strings.HasPrefix(line, "/") {
				m.entries = append(m.entries, entry{kind: entryUser, text: line})
			}
			m.refresh()
			return m, tea.Batch(m.handle(line), m.spinner.Tick)
		}

	case replyMsg:
		m.busy = false
		m.apply(msg)
		m.refresh()
		if msg.reply.Quit {
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handle runs the line off the UI goroutine.
func (m Model) handle(line string) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		reply, err := ctrl.Handle(ctx, line)
		return replyMsg{reply: reply, err: err}
	}
}

func (m *Model) apply(msg replyMsg) {
	switch {
	case msg.err != nil:
		if !errors.Is(msg.err, session.ErrEmptyInput) {
			m.entries = append(m.entries, entry{kind: entryError, text: msg.err.Error()})
		}
	case msg.reply.Quit:
	case msg.reply.Turn != nil:
		t := msg.reply.Turn
		if msg.reply.Question != "" && (len(m.entries) == 0 || m.entries[len(m.entries)-1].text != msg.reply.Question) {
			m.entries = append(m.entries, entry{kind: entryUser, text: msg.reply.Question})
		}
		e := entry{kind: entryAssistant, text: msg.reply.Text}
		if m.verbose {
			e.steps = cli.FormatScratchpad(t.Result.Scratchpad)
		}
		if !t.Success() {
			e.kind = entryError
		}
		m.entries = append(m.entries, e)
		m.lastAnswer = msg.reply.Text
		m.status = fmt.Sprintf("%d steps, %s", len(t.Result.Scratchpad), t.Duration.Round(time.Millisecond))
	default:
		m.entries = append(m.entries, entry{kind: entrySystem, text: msg.reply.Text})
	}
}

func (m *Model) copyLastAnswer() string {
	if m.lastAnswer == "" {
		return "Nothing to copy yet."
	}
	if err := m.copy(m.lastAnswer); err != nil {
		return "Copy failed: " + err.Error()
	}
	return "Answer copied to clipboard."
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderEntries())
	m.viewport.GotoBottom()
}

func (m Model) renderEntries() string {
	width := m.width - 2
	var b strings.Builder
	for i, e := range m.entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch e.kind {
		case entryUser:
			b.WriteString(userStyle.Render("You") + "\n")
			b.WriteString(lipgloss.NewStyle().Width(width).Render(e.text))
		case entryAssistant:
			b.WriteString(assistantStyle.Render("Galactic") + "\n")
			if e.steps != "" {
				b.WriteString(dimStyle.Render(e.steps) + "\n")
			}
			b.WriteString(renderMarkdown(e.text, width))
		case entryError:
			b.WriteString(errorStyle.Render("Galactic") + "\n")
			b.WriteString(lipgloss.NewStyle().Width(width).Render(e.text))
		default:
			b.WriteString(systemStyle.Width(width).Render(e.text))
		}
	}
	return b.String()
}

// suggestions returns slash commands matching a partial command.
func suggestions(line string) []string {
	if !strings.HasPrefix(line, "/") || strings.Contains(line, " ") {
		return nil
	}
	var out []string
	for _, match := range fuzzy.Find(line, commands) {
		out = append(out, match.Str)
	}
	return out
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	s := m.ctrl.Session()
	header := titleStyle.Render("✨ Galactic Agent") +
		dimStyle.Render(fmt.Sprintf("  session %s · %s memory · %s", s.ID, s.Memory().Policy(), s.Personality()))

	status := m.status
	if m.busy {
		status = m.spinner.View() + " thinking..."
	} else if sugg := suggestions(m.input.Value()); len(sugg) > 0 {
		status = strings.Join(sugg, "  ")
	} else if status == "" {
		status = "enter send · ctrl+y copy answer · esc quit"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		statusStyle.Width(m.width).Render(status),
		m.input.View(),
	)
}

// Run starts the full-screen chat.
func Run(ctx context.Context, ctrl *cli.Controller, verbose bool) error {
	p := tea.NewProgram(New(ctx, ctrl, verbose), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
