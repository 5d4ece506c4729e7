// Package redisstore is a store backend on Redis.
//
// All leaves live as fields of one hash. A mutation runs as an optimistic
// WATCH/MULTI/EXEC transaction on that hash, so either every field change
// lands or none does. Each transaction also publishes the touched paths on
// a channel; every process running this backend listens on it, so watchers
// see writes made by other instances too.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dias221467/Beer_Rating/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultNamespace prefixes the hash key and the change channel.
	DefaultNamespace = "beer_rating"

	maxTxRetries = 5
	scanCount    = 256
)

// Backend implements store.Backend on Redis.
type Backend struct {
	rdb     *redis.Client
	key     string
	channel string

	hub    *store.Hub
	pubsub *redis.PubSub
	cancel context.CancelFunc
	done   chan struct{}
}

// New connects the backend to rdb and starts listening for changes.
// The caller owns rdb; Close does not close it.
func New(ctx context.Context, rdb *redis.Client, namespace string) (*Backend, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	b := &Backend{
		rdb:     rdb,
		key:     namespace + ":records",
		channel: namespace + ":changes",
		hub:     store.NewHub(),
		done:    make(chan struct{}),
	}

	b.pubsub = rdb.Subscribe(ctx, b.channel)
	// Wait for the subscription to be confirmed so no change published
	// after New returns is missed.
	if _, err := b.pubsub.Receive(ctx); err != nil {
		b.pubsub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", b.channel, err)
	}

	listenCtx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	go b.listen(listenCtx)
	return b, nil
}

func (b *Backend) listen(ctx context.Context) {
	defer close(b.done)
	ch := b.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.hub.Notify(strings.Split(msg.Payload, "\n")...)
		}
	}
}

// escapeGlob escapes the characters Redis MATCH patterns treat specially.
func escapeGlob(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			sb.WriteRune('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// hashReader is the subset of commands shared by *redis.Client and *redis.Tx
// that reading a subtree needs.
type hashReader interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HScan(ctx context.Context, key string, cursor uint64, match string, count int64) *redis.ScanCmd
}

// fieldsUnder returns the fields at or below prefix with their values.
func (b *Backend) fieldsUnder(ctx context.Context, c hashReader, prefix string) (map[string][]byte, error) {
	out := make(map[string][]byte)
	if prefix == "" {
		all, err := c.HGetAll(ctx, b.key).Result()
		if err != nil {
			return nil, err
		}
		for k, v := range all {
			out[k] = []byte(v)
		}
		return out, nil
	}

	exact, err := c.HGet(ctx, b.key, prefix).Result()
	switch {
	case err == nil:
		out[prefix] = []byte(exact)
	case !errors.Is(err, redis.Nil):
		return nil, err
	}

	match := escapeGlob(prefix) + "/*"
	var cursor uint64
	for {
		kvs, next, err := c.HScan(ctx, b.key, cursor, match, scanCount).Result()
		if err != nil {
			return nil, err
		}
		for i := 0; i+1 < len(kvs); i += 2 {
			out[kvs[i]] = []byte(kvs[i+1])
		}
		if next == 0 {
			return out, nil
		}
		cursor = next
	}
}

// Scan implements store.Backend.
func (b *Backend) Scan(ctx context.Context, prefix string) (map[string][]byte, error) {
	return b.fieldsUnder(ctx, b.rdb, prefix)
}

// Apply implements store.Backend.
func (b *Backend) Apply(ctx context.Context, m store.Mutation) error {
	paths := m.Paths()
	txf := func(tx *redis.Tx) error {
		var dels []string
		for _, c := range m.Clear {
			existing, err := b.fieldsUnder(ctx, tx, c)
			if err != nil {
				return err
			}
			for k := range existing {
				if _, overwritten := m.Put[k]; !overwritten {
					dels = append(dels, k)
				}
			}
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(dels) > 0 {
				pipe.HDel(ctx, b.key, dels...)
			}
			if len(m.Put) > 0 {
				values := make([]interface{}, 0, 2*len(m.Put))
				for k, v := range m.Put {
					values = append(values, k, v)
				}
				pipe.HSet(ctx, b.key, values...)
			}
			pipe.Publish(ctx, b.channel, strings.Join(paths, "\n"))
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := b.rdb.Watch(ctx, txf, b.key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		logrus.WithField("attempt", attempt+1).Debug("Redis transaction lost a race, retrying")
	}
	return fmt.Errorf("redis transaction kept conflicting after %d attempts", maxTxRetries)
}

// Watch implements store.Backend.
func (b *Backend) Watch(ctx context.Context, prefix string) (<-chan string, error) {
	return b.hub.Watch(ctx, prefix)
}

// Close stops the change listener. The redis client stays open.
func (b *Backend) Close() error {
	b.cancel()
	err := b.pubsub.Close()
	<-b.done
	b.hub.Close()
	return err
}
