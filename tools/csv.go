// CSV Analysis Tool.
//
// Information Hiding:
// - File versus inline data detection
// - Column type inference and summary statistics

package tools

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// DefaultMaxCSVBytes bounds how much CSV data is loaded.
const DefaultMaxCSVBytes = 5 << 20

// CSVTool summarizes tabular data given as a file path or inline text.
type CSVTool struct {
	BaseTool
	maxBytes     int64
	allowedPaths []string
}

// NewCSVTool creates a CSV tool reading at most maxBytes.
func NewCSVTool(maxBytes int64) *CSVTool {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxCSVBytes
	}
	return &CSVTool{maxBytes: maxBytes}
}

// WithAllowedPaths restricts which files may be read.
func (t *CSVTool) WithAllowedPaths(paths []string) *CSVTool {
	t.allowedPaths = paths
	return t
}

// Metadata returns the tool metadata.
func (t *CSVTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "csv_analyze",
		Description: "Summarize CSV data: row count, columns, and per-column statistics (mean/min/max for numbers, distinct values for text).",
		Usage:       "a path to a .csv file, or the CSV text itself with a header row",
	}
}

type columnStats struct {
	name     string
	numeric  int
	sum      float64
	min, max float64
	values   map[string]int
	blank    int
}

// Execute parses and summarizes the data.
func (t *CSVTool) Execute(_ context.Context, input string) (ToolResult, error) {
	data, source, err := t.load(strings.TrimSpace(input))
	if err != nil {
		return FailureResult(err), nil
	}

	r := csv.NewReader(strings.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return FailureResultf("CSV data is empty"), nil
	}
	if err != nil {
		return FailureResult(fmt.Errorf("invalid CSV: %w", err)), nil
	}

	cols := make([]*columnStats, len(header))
	for i, h := range header {
		cols[i] = &columnStats{name: strings.TrimSpace(h), min: math.Inf(1), max: math.Inf(-1), values: map[string]int{}}
	}

	rows := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return FailureResult(fmt.Errorf("invalid CSV at row %d: %w", rows+2, err)), nil
		}
		rows++
		for i, c := range cols {
			if i >= len(rec) {
				c.blank++
				continue
			}
			c.add(strings.TrimSpace(rec[i]))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Source: %s\nRows: %d\nColumns (%d): %s\n", source, rows, len(cols), strings.Join(header, ", "))
	for _, c := range cols {
		b.WriteString(c.summary(rows))
		b.WriteByte('\n')
	}
	return SuccessResult(strings.TrimRight(b.String(), "\n")), nil
}

// load returns the CSV text and a label for where it came from.
func (t *CSVTool) load(input string) (string, string, error) {
	if input == "" {
		return "", "", fmt.Errorf("input cannot be empty")
	}
	if !strings.ContainsAny(input, "\n,;") || strings.HasSuffix(strings.ToLower(input), ".csv") {
		if !pathAllowed(input, t.allowedPaths) {
			return "", "", fmt.Errorf("reading '%s' is not allowed", input)
		}
		info, err := os.Stat(input)
		if err != nil {
			return "", "", fmt.Errorf("cannot read CSV file '%s': %w", input, err)
		}
		if info.Size() > t.maxBytes {
			return "", "", fmt.Errorf("CSV file is too large (%d bytes, limit %d)", info.Size(), t.maxBytes)
		}
		raw, err := os.ReadFile(input)
		if err != nil {
			return "", "", fmt.Errorf("cannot read CSV file '%s': %w", input, err)
		}
		return string(raw), input, nil
	}
	if int64(len(input)) > t.maxBytes {
		return "", "", fmt.Errorf("CSV data is too large (%d bytes, limit %d)", len(input), t.maxBytes)
	}
	return input, "inline data", nil
}

func (c *columnStats) add(v string) {
	if v == "" {
		c.blank++
		return
	}
	c.values[v]++
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		c.numeric++
		c.sum += f
		c.min = math.Min(c.min, f)
		c.max = math.Max(c.max, f)
	}
}

func (c *columnStats) summary(rows int) string {
	filled := rows - c.blank
	if filled > 0 && c.numeric == filled {
		return fmt.Sprintf("- %s: numeric, count=%d, mean=%s, min=%s, max=%s",
			c.name, c.numeric, formatNum(c.sum/float64(c.numeric)), formatNum(c.min), formatNum(c.max))
	}

	type kv struct {
		v string
		n int
	}
	var top []kv
	for v, n := range c.values {
		top = append(top, kv{v, n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].n != top[j].n {
			return top[i].n > top[j].n
		}
		return top[i].v < top[j].v
	})
	line := fmt.Sprintf("- %s: text, distinct=%d, blank=%d", c.name, len(c.values), c.blank)
	if len(top) > 0 {
		line += fmt.Sprintf(", most common=%q (%d)", top[0].v, top[0].n)
	}
	return line
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
