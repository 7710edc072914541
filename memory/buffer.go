package memory

import (
	"context"
	"sync"

	"github.com/richinex/galactic/model"
)

// Buffer keeps every message.
type Buffer struct {
	mu   sync.RWMutex
	msgs []model.Message
}

// NewBuffer creates an empty full-history store.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append implements Store.
func (b *Buffer) Append(_ context.Context, msgs ...model.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, msgs...)
}

// Render implements Store.
func (b *Buffer) Render() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return RenderMessages(b.msgs)
}

// Messages implements Store.
func (b *Buffer) Messages() []model.Message {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return copyMessages(b.msgs)
}

// Clear implements Store.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = nil
}

// Policy implements Store.
func (b *Buffer) Policy() Policy {
	return PolicyBuffer
}
