// Output formatting for terminal front ends.

package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/richinex/galactic/model"
	"github.com/richinex/galactic/session"
	"github.com/richinex/galactic/tools"
)

const maxObservationLen = 400

// FormatStats renders session statistics.
func FormatStats(st session.Stats) string {
	var b strings.Builder
	m := st.Metrics
	fmt.Fprintf(&b, "Session:        %s\n", st.ID)
	fmt.Fprintf(&b, "Memory:         %s\n", st.Policy)
	fmt.Fprintf(&b, "Personality:    %s\n", st.Personality)
	fmt.Fprintf(&b, "Uptime:         %s\n", st.Uptime.Round(time.Second))
	fmt.Fprintf(&b, "Messages:       %d (%d exchanges)\n", st.Messages, st.Turns)
	fmt.Fprintf(&b, "Avg response:   %.2fs\n", m.AverageResponseTime.Seconds())
	fmt.Fprintf(&b, "Success rate:   %.0f%%\n", m.SuccessRate)
	fmt.Fprintf(&b, "Errors:         %d\n", m.ErrorCount)
	if len(m.ToolUsage) > 0 {
		names := make([]string, 0, len(m.ToolUsage))
		for name := range m.ToolUsage {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("Tool usage:\n")
		for _, name := range names {
			fmt.Fprintf(&b, "  %-16s %d\n", name, m.ToolUsage[name])
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatTools renders the tool list.
func FormatTools(list []tools.ToolMetadata) string {
	var b strings.Builder
	b.WriteString("Available tools:\n")
	for _, meta := range list {
		fmt.Fprintf(&b, "\n  %s\n    %s\n", meta.Name, meta.Description)
		if meta.Usage != "" {
			fmt.Fprintf(&b, "    Input: %s\n", meta.Usage)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatQuickPrompts numbers the quick prompts.
func FormatQuickPrompts() string {
	var b strings.Builder
	b.WriteString("Quick prompts:")
	for i, q := range QuickPrompts {
		fmt.Fprintf(&b, "\n  /quick %d  %s", i+1, q)
	}
	return b.String()
}

// FormatScratchpad renders the reasoning steps of a turn.
func FormatScratchpad(entries []model.ScratchpadEntry) string {
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("--- Steps ---\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, truncateString(e.Thought, maxObservationLen))
		if e.Tool != "" {
			fmt.Fprintf(&b, "    Action: %s(%s)\n", e.Tool, truncateString(e.Input, 80))
		}
		fmt.Fprintf(&b, "    Observation: %s\n", truncateString(e.Observation, maxObservationLen))
	}
	b.WriteString("-------------")
	return b.String()
}

// truncateString truncates a string to maxLen runes, preserving UTF-8 boundaries.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

// Preview flattens s onto one line and truncates it to maxLen runes.
func Preview(s string, maxLen int) string {
	return truncateString(strings.Join(strings.Fields(s), " "), maxLen)
}
