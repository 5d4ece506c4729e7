// Package store implements the hierarchical keyed record store the rest of
// the service is written against. Records are addressed by slash-separated
// paths; the Client offers point reads and writes, subtree deletion,
// store-assigned child keys, atomic multi-path updates and subscriptions.
// Persistence is delegated to a Backend driver.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Client is the store handle injected into repositories.
type Client struct {
	backend Backend
	closed  atomic.Bool
}

// New wraps a backend in a Client.
func New(backend Backend) *Client {
	return &Client{backend: backend}
}

// timeOrderedKey returns a UUIDv7 so pushed children sort by creation time.
func timeOrderedKey() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Get reads the value at path once.
func (c *Client) Get(ctx context.Context, path string) (Snapshot, error) {
	if c.closed.Load() {
		return Snapshot{}, ErrClosed
	}
	p, err := Normalize(path)
	if err != nil {
		return Snapshot{}, err
	}
	leaves, err := c.backend.Scan(ctx, p)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read %s: %w", p, err)
	}
	v, err := Build(p, leaves)
	if err != nil {
		return Snapshot{}, err
	}
	return NewSnapshot(p, v), nil
}

// Set replaces whatever is stored at path with value. A nil value deletes.
func (c *Client) Set(ctx context.Context, path string, value any) error {
	return c.Update(ctx, map[string]any{path: value})
}

// Push stores value under a new child key of parent and returns the key.
func (c *Client) Push(ctx context.Context, parent string, value any) (string, error) {
	key := timeOrderedKey()
	if err := c.Set(ctx, Join(parent, key), value); err != nil {
		return "", err
	}
	return key, nil
}

// Delete removes path and everything below it. Deleting a missing path
// is not an error.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Update(ctx, map[string]any{path: nil})
}

// Update applies several writes as one atomic change. Each entry replaces
// the subtree at its path; nil entries delete. No path may be an ancestor
// of another.
func (c *Client) Update(ctx context.Context, values map[string]any) error {
	if c.closed.Load() {
		return ErrClosed
	}
	m, err := buildMutation(values)
	if err != nil {
		return err
	}
	if m.Empty() {
		return nil
	}
	if err := c.backend.Apply(ctx, m); err != nil {
		logrus.WithFields(logrus.Fields{
			"paths": m.Paths(),
			"error": err,
		}).Warn("Store update failed")
		return fmt.Errorf("apply update: %w", err)
	}
	return nil
}

func buildMutation(values map[string]any) (Mutation, error) {
	paths := make([]string, 0, len(values))
	normalized := make(map[string]any, len(values))
	for raw, v := range values {
		p, err := Normalize(raw)
		if err != nil {
			return Mutation{}, err
		}
		if p == "" {
			return Mutation{}, fmt.Errorf("%w: cannot write the root", ErrInvalidPath)
		}
		if _, dup := normalized[p]; dup {
			return Mutation{}, fmt.Errorf("%w: %s given twice", ErrOverlappingPaths, p)
		}
		normalized[p] = v
		paths = append(paths, p)
	}

	sort.Strings(paths)
	for i := 1; i < len(paths); i++ {
		if Under(paths[i], paths[i-1]) {
			return Mutation{}, fmt.Errorf("%w: %s and %s", ErrOverlappingPaths, paths[i-1], paths[i])
		}
	}

	m := Mutation{Clear: paths, Put: make(map[string][]byte)}
	for _, p := range paths {
		v, err := normalizeValue(normalized[p])
		if err != nil {
			return Mutation{}, err
		}
		leaves, err := Flatten(p, v)
		if err != nil {
			return Mutation{}, err
		}
		for k, raw := range leaves {
			m.Put[k] = raw
		}
	}
	return m, nil
}

// Subscribe watches path. The returned subscription delivers the current
// value first and then a fresh snapshot after every change. Callers must
// Close it when done; it also ends when ctx is cancelled.
func (c *Client) Subscribe(ctx context.Context, path string) (*Subscription, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	p, err := Normalize(path)
	if err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	changes, err := c.backend.Watch(subCtx, p)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("watch %s: %w", p, err)
	}

	sub := &Subscription{
		path:    p,
		updates: make(chan Snapshot, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go sub.run(subCtx, c, changes)
	return sub, nil
}

// Close closes the backend. Outstanding subscriptions end.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.backend.Close()
}
