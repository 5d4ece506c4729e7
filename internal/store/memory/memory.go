// Package memory is an in-process store backend. It is the default for
// local development and the reference the other drivers are tested against.
package memory

import (
	"context"
	"sync"

	"github.com/Dias221467/Beer_Rating/internal/store"
)

// Backend keeps leaves in a map guarded by a single lock, which is what
// makes Apply atomic.
type Backend struct {
	mu     sync.RWMutex
	leaves map[string][]byte
	closed bool
	hub    *store.Hub
}

// New returns an empty backend.
func New() *Backend {
	return &Backend{
		leaves: make(map[string][]byte),
		hub:    store.NewHub(),
	}
}

// Scan implements store.Backend.
func (b *Backend) Scan(_ context.Context, prefix string) (map[string][]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, store.ErrClosed
	}

	out := make(map[string][]byte)
	for k, v := range b.leaves {
		if store.Under(k, prefix) {
			out[k] = append([]byte(nil), v...)
		}
	}
	return out, nil
}

// Apply implements store.Backend.
func (b *Backend) Apply(ctx context.Context, m store.Mutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return store.ErrClosed
	}
	for _, c := range m.Clear {
		for k := range b.leaves {
			if store.Under(k, c) {
				delete(b.leaves, k)
			}
		}
	}
	for k, v := range m.Put {
		b.leaves[k] = append([]byte(nil), v...)
	}
	b.mu.Unlock()

	b.hub.Notify(m.Paths()...)
	return nil
}

// Watch implements store.Backend.
func (b *Backend) Watch(ctx context.Context, prefix string) (<-chan string, error) {
	return b.hub.Watch(ctx, prefix)
}

// Close implements store.Backend.
func (b *Backend) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.hub.Close()
	return nil
}
