// Scripted completer - replays canned completions in order.
//
// Used by tests and by the offline demo mode so the agent loop can run
// without network access.

package llm

import (
	"context"
	"errors"
	"sync"
)

// ErrScriptExhausted is returned once every scripted completion was used.
var ErrScriptExhausted = errors.New("scripted completer: no completions left")

// Scripted returns its completions one per call and records every prompt
// it was given. An entry may be an error to simulate a failing model.
type Scripted struct {
	mu      sync.Mutex
	replies []any
	prompts []string
	loop    bool
	next    int
}

// NewScripted builds a completer from strings or errors.
func NewScripted(replies ...any) *Scripted {
	return &Scripted{replies: replies}
}

// Loop makes the script restart from the top once exhausted.
func (s *Scripted) Loop() *Scripted {
	s.loop = true
	return s
}

// Complete implements Completer.
func (s *Scripted) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompts = append(s.prompts, prompt)
	if s.next >= len(s.replies) {
		if !s.loop || len(s.replies) == 0 {
			return "", ErrScriptExhausted
		}
		s.next = 0
	}
	reply := s.replies[s.next]
	s.next++

	switch r := reply.(type) {
	case error:
		return "", r
	case string:
		return r, nil
	default:
		return "", errors.New("scripted completer: unsupported reply type")
	}
}

// Prompts returns a copy of every prompt received so far.
func (s *Scripted) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.prompts))
	copy(out, s.prompts)
	return out
}

// Calls returns how many completions were requested.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

var _ Completer = (*Scripted)(nil)
