package session

import (
	"fmt"
	"strings"
)

// Personality restyles successful answers.
type Personality string

const (
	Professional Personality = "Professional"
	Friendly     Personality = "Friendly"
	Scientific   Personality = "Scientific"
	Casual       Personality = "Casual"
	Enthusiastic Personality = "Enthusiastic"
)

// Personalities lists every personality in display order.
func Personalities() []Personality {
	return []Personality{Professional, Friendly, Scientific, Casual, Enthusiastic}
}

// ParsePersonality matches s case-insensitively. Empty means Professional.
func ParsePersonality(s string) (Personality, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Professional, nil
	}
	for _, p := range Personalities() {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown personality %q", s)
}

// Apply restyles answer.
func (p Personality) Apply(answer string) string {
	switch p {
	case Friendly:
		return "😊 " + answer
	case Scientific:
		return "🔬 Based on my analysis: " + answer
	case Casual:
		answer = strings.ReplaceAll(answer, "I", "I'd say I")
		return strings.ReplaceAll(answer, ".", " 😄")
	case Enthusiastic:
		return "🎉 " + answer + "! This is fascinating! ✨"
	default:
		return answer
	}
}

// Process restyles the answer of a successful turn. Aborted turns keep
// their system text untouched.
func (p Personality) Process(t *Turn) {
	if t.Success() {
		t.Answer = p.Apply(t.Answer)
	}
}
