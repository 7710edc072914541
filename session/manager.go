package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Manager tracks live sessions by ID for multi-client front ends.
type Manager struct {
	factory *Factory

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a manager that builds sessions with f.
func NewManager(f *Factory) *Manager {
	return &Manager{factory: f, sessions: make(map[string]*Session)}
}

// Create starts and tracks a new session.
func (m *Manager) Create() (*Session, error) {
	s, err := m.factory.New()
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns a live session. If it is not live but the factory has a
// store holding it, the session is loaded and tracked.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return s, nil
	}

	if m.factory.Store == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	exists, err := m.factory.Store.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	loaded, err := m.factory.Open(ctx, id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// another request may have loaded it meanwhile
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	m.sessions[id] = loaded
	return loaded, nil
}

// Remove stops tracking a session. The persisted transcript is kept.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	return ok
}

// IDs lists live session IDs in sorted order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
