package tui

import (
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
)

// renderMarkdown renders an answer for the terminal. Autolinking is off
// so the terminal can detect URLs itself.
func renderMarkdown(content string, width int) string {
	if width < 20 {
		width = 20
	}
	p := parser.NewWithExtensions(markdown.Extensions() &^ parser.Autolink)
	doc := p.Parse([]byte(content))
	out := gomarkdown.Render(doc, markdown.NewRenderer(width, 2))
	return strings.TrimRight(string(out), "\n")
}
