package tools

import (
	"fmt"
	"strings"
)

// ArgDelimiter separates arguments of multi-argument tools inside a single
// Action Input string, e.g. "100|USD|EUR".
const ArgDelimiter = "|"

// SplitArgs splits input into exactly n trimmed, non-empty fields. The last
// field keeps any further delimiters so free text can follow fixed fields.
func SplitArgs(input string, n int) ([]string, error) {
	return SplitArgsSep(input, ArgDelimiter, n)
}

// SplitArgsSep is SplitArgs with a custom separator, for tools whose first
// argument may itself contain ArgDelimiter.
func SplitArgsSep(input, sep string, n int) ([]string, error) {
	parts := strings.SplitN(input, sep, n)
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d arguments separated by %q, got %d", n, sep, len(parts))
	}
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
		if parts[i] == "" {
			return nil, fmt.Errorf("argument %d is empty", i+1)
		}
	}
	return parts, nil
}

// JoinArgs is the inverse of SplitArgs.
func JoinArgs(args ...string) string {
	return strings.Join(args, ArgDelimiter)
}
