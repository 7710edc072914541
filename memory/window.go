package memory

import (
	"context"
	"sync"

	"github.com/richinex/galactic/model"
)

// Window keeps only the most recent K messages.
type Window struct {
	mu   sync.RWMutex
	size int
	msgs []model.Message
}

// NewWindow creates a store retaining at most size messages. A size below
// one falls back to DefaultWindowSize.
func NewWindow(size int) *Window {
	if size < 1 {
		size = DefaultWindowSize
	}
	return &Window{size: size}
}

// Size returns K.
func (w *Window) Size() int {
	return w.size
}

// Append implements Store.
func (w *Window) Append(_ context.Context, msgs ...model.Message) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	if over := len(w.msgs) - w.size; over > 0 {
		w.msgs = copyMessages(w.msgs[over:])
	}
}

// Render implements Store.
func (w *Window) Render() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return RenderMessages(w.msgs)
}

// Messages implements Store.
func (w *Window) Messages() []model.Message {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return copyMessages(w.msgs)
}

// Clear implements Store.
func (w *Window) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = nil
}

// Policy implements Store.
func (w *Window) Policy() Policy {
	return PolicyWindow
}
