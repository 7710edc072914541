// Current Time Tool.

package tools

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// TimeTool reports the current date and time in a requested timezone.
type TimeTool struct {
	now func() time.Time
}

// NewTimeTool creates a time tool reading the system clock.
func NewTimeTool() *TimeTool {
	return &TimeTool{now: time.Now}
}

// WithClock replaces the clock, for deterministic output.
func (t *TimeTool) WithClock(now func() time.Time) *TimeTool {
	t.now = now
	return t
}

// Metadata returns the tool metadata.
func (t *TimeTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "current_time",
		Description: "Get the current date and time. Optionally give an IANA timezone.",
		Usage:       "a timezone such as Europe/London, or empty for UTC",
	}
}

// Execute formats the current time. Blank input and "now"/"local" style
// answers fall back to UTC.
func (t *TimeTool) Execute(_ context.Context, input string) (ToolResult, error) {
	zone := strings.TrimSpace(input)
	switch strings.ToLower(zone) {
	case "", "none", "now", "utc", "current", "current time":
		zone = "UTC"
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		return FailureResultf("unknown timezone '%s', use an IANA name such as America/New_York", zone), nil
	}

	now := t.now().In(loc)
	return SuccessResult(fmt.Sprintf("Current date and time (%s): %s",
		loc.String(), now.Format("Monday, January 2, 2006 15:04:05 MST"))), nil
}
