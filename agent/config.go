// Agent configuration types.
//
// Information Hiding:
// - Default values hidden

package agent

import (
	"fmt"

	"github.com/richinex/galactic/prompt"
)

// DefaultMaxIterations caps model calls per user turn.
const DefaultMaxIterations = 7

// Config holds agent configuration.
type Config struct {
	// Instructions guide the agent's behavior; placed above the tool list.
	Instructions string

	// MaxIterations bounds the model calls in one turn.
	MaxIterations int
}

// DefaultConfig returns the stock persona and iteration cap.
func DefaultConfig() Config {
	return Config{
		Instructions:  prompt.DefaultInstructions,
		MaxIterations: DefaultMaxIterations,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.MaxIterations < 1 {
		return fmt.Errorf("max iterations must be at least 1, got %d", c.MaxIterations)
	}
	return nil
}
