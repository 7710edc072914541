// Package storage persists chat transcripts.
//
// Information Hiding:
// - Storage backend implementation details hidden behind interface
// - Allows swapping between memory and SQLite without API changes

package storage

import (
	"context"

	"github.com/richinex/galactic/model"
)

// ConversationStorage stores the ordered transcript of each session.
type ConversationStorage interface {
	// Save replaces the transcript for a session.
	Save(ctx context.Context, sessionID string, history []model.Message) error

	// Load returns the transcript for a session.
	// Returns an empty slice (not nil) if the session doesn't exist.
	// Returns error only for storage failures, not missing sessions.
	Load(ctx context.Context, sessionID string) ([]model.Message, error)

	// Delete removes a session and its transcript.
	Delete(ctx context.Context, sessionID string) error

	// ListSessions lists session IDs, most recently updated first.
	ListSessions(ctx context.Context) ([]string, error)

	// Exists checks if a session exists.
	Exists(ctx context.Context, sessionID string) (bool, error)
}
