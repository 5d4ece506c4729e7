package store

import (
	"context"
	"sync"
)

// Hub fans change notifications out to path watchers inside one process.
// Backends feed it either from their own writes or from an external change
// feed (pub/sub, LISTEN/NOTIFY, change streams).
type Hub struct {
	mu       sync.Mutex
	watchers map[*hubWatcher]struct{}
	closed   bool
}

type hubWatcher struct {
	prefix string
	ch     chan string
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{watchers: make(map[*hubWatcher]struct{})}
}

// Watch registers a watcher for prefix that lives until ctx is done.
func (h *Hub) Watch(ctx context.Context, prefix string) (<-chan string, error) {
	w := &hubWatcher{prefix: prefix, ch: make(chan string, 1)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrClosed
	}
	h.watchers[w] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.remove(w)
	}()
	return w.ch, nil
}

func (h *Hub) remove(w *hubWatcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.watchers[w]; ok {
		delete(h.watchers, w)
		close(w.ch)
	}
}

// Notify signals every watcher whose prefix is related to one of paths.
// It never blocks: a watcher with a signal already queued keeps that one.
func (h *Hub) Notify(paths ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for w := range h.watchers {
		for _, p := range paths {
			if !Related(p, w.prefix) {
				continue
			}
			select {
			case w.ch <- p:
			default:
			}
			break
		}
	}
}

// Close closes every watcher channel and rejects new watchers.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for w := range h.watchers {
		delete(h.watchers, w)
		close(w.ch)
	}
}
