package cli

import (
	"github.com/armon/go-radix"
)

// commandNames are the slash commands, without the slash.
var commandNames = []string{"help", "exit", "quit", "purge", "reset", "stats", "tools", "personality", "quick"}

var commandTree = func() *radix.Tree {
	t := radix.New()
	for _, name := range commandNames {
		t.Insert(name, name)
	}
	return t
}()

// resolveCommand expands an unambiguous prefix such as "pur" to "purge".
// Exact names and unknown or ambiguous prefixes are returned unchanged.
func resolveCommand(name string) string {
	if name == "" {
		return name
	}
	if _, ok := commandTree.Get(name); ok {
		return name
	}
	var matches []string
	commandTree.WalkPrefix(name, func(k string, _ interface{}) bool {
		matches = append(matches, k)
		return len(matches) > 1
	})
	if len(matches) == 1 {
		return matches[0]
	}
	return name
}
