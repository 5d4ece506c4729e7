// Package firebasestore is a store backend on the Firebase Realtime Database.
//
// Reads fetch the JSON tree at a path and flatten it into leaves. A mutation
// becomes one multi-location update on the root reference, which the
// database applies atomically. The Admin SDK has no listener API, so
// watchers poll their path and signal when its JSON changes.
package firebasestore

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"firebase.google.com/go/v4/db"
	"github.com/Dias221467/Beer_Rating/internal/store"
	"github.com/sirupsen/logrus"
)

// DefaultPollInterval is how often a watcher re-reads its path.
const DefaultPollInterval = 2 * time.Second

// Backend implements store.Backend on the Realtime Database.
type Backend struct {
	client   *db.Client
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New wraps client. A non-positive interval uses DefaultPollInterval.
func New(client *db.Client, interval time.Duration) *Backend {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Backend{client: client, interval: interval, ctx: ctx, cancel: cancel}
}

func refPath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

func (b *Backend) raw(ctx context.Context, prefix string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := b.client.NewRef(refPath(prefix)).Get(ctx, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Scan implements store.Backend.
func (b *Backend) Scan(ctx context.Context, prefix string) (map[string][]byte, error) {
	raw, err := b.raw(ctx, prefix)
	if err != nil {
		return nil, err
	}
	var v any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
	}
	return store.Flatten(prefix, v)
}

// firebaseUpdates converts a mutation into the multi-location update the
// database accepts. A location may not appear together with its ancestor,
// so every cleared subtree is written whole, rebuilt from the puts below it.
func firebaseUpdates(m store.Mutation) (map[string]interface{}, error) {
	updates := make(map[string]interface{}, len(m.Clear)+len(m.Put))
	covered := make(map[string]bool, len(m.Put))
	for _, c := range m.Clear {
		below := make(map[string][]byte)
		for k, v := range m.Put {
			if store.Under(k, c) {
				below[k] = v
				covered[k] = true
			}
		}
		value, err := store.Build(c, below)
		if err != nil {
			return nil, err
		}
		updates[c] = value
	}
	for k, v := range m.Put {
		if covered[k] {
			continue
		}
		var value any
		if err := json.Unmarshal(v, &value); err != nil {
			return nil, err
		}
		updates[k] = value
	}
	return updates, nil
}

// Apply implements store.Backend.
func (b *Backend) Apply(ctx context.Context, m store.Mutation) error {
	if m.Empty() {
		return nil
	}
	updates, err := firebaseUpdates(m)
	if err != nil {
		return err
	}
	return b.client.NewRef("/").Update(ctx, updates)
}

// Watch implements store.Backend by polling prefix.
func (b *Backend) Watch(ctx context.Context, prefix string) (<-chan string, error) {
	if err := b.ctx.Err(); err != nil {
		return nil, store.ErrClosed
	}
	last, err := b.raw(ctx, prefix)
	if err != nil {
		return nil, err
	}

	ch := make(chan string, 1)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer close(ch)

		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-b.ctx.Done():
				return
			case <-ticker.C:
			}
			cur, err := b.raw(ctx, prefix)
			if err != nil {
				logrus.WithFields(logrus.Fields{"path": prefix, "error": err}).Warn("Failed to poll path")
				continue
			}
			if bytes.Equal(cur, last) {
				continue
			}
			last = cur
			select {
			case ch <- prefix:
			default:
			}
		}
	}()
	return ch, nil
}

// Close stops every watcher. The Firebase app stays usable.
func (b *Backend) Close() error {
	b.cancel()
	b.wg.Wait()
	return nil
}
