// Package badgerstore is a store backend on an embedded BadgerDB.
//
// Every leaf is one Badger key (its path) holding the JSON-encoded value.
// A mutation runs inside a single read-write transaction, which gives the
// multi-path update its all-or-nothing guarantee. Badger is embedded, so
// every write passes through this process and change notification is
// in-process.
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Dias221467/Beer_Rating/internal/store"
	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

// maxConflictRetries bounds how often Apply re-runs a transaction that lost
// an optimistic conflict against a concurrent writer.
const maxConflictRetries = 5

// Config holds configuration for the Badger backend.
type Config struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string

	// InMemory keeps everything in RAM. Used by tests.
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool

	// Logger receives Badger's internal logs. Nil disables them.
	Logger *logrus.Logger
}

// badgerLogger adapts logrus to Badger's Logger interface.
type badgerLogger struct {
	entry *logrus.Entry
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...interface{}) { l.entry.Warnf(format, args...) }
func (l *badgerLogger) Infof(format string, args ...interface{}) { l.entry.Infof(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }

// Backend implements store.Backend on BadgerDB.
type Backend struct {
	db  *badger.DB
	hub *store.Hub
}

// Open opens the database described by cfg.
func Open(cfg Config) (*Backend, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badger path is required for a persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{entry: cfg.Logger.WithField("component", "badger")})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Backend{db: db, hub: store.NewHub()}, nil
}

// OpenInMemory opens a throwaway in-memory database.
func OpenInMemory() (*Backend, error) {
	return Open(Config{InMemory: true})
}

// keysUnder collects the keys at or below prefix visible to txn.
func keysUnder(txn *badger.Txn, prefix string, withValues bool) (map[string][]byte, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = withValues
	opts.Prefix = []byte(prefix)

	it := txn.NewIterator(opts)
	defer it.Close()

	out := make(map[string][]byte)
	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		key := string(item.KeyCopy(nil))
		if !store.Under(key, prefix) {
			continue
		}
		var val []byte
		if withValues {
			v, err := item.ValueCopy(nil)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", key, err)
			}
			val = v
		}
		out[key] = val
	}
	return out, nil
}

// Scan implements store.Backend.
func (b *Backend) Scan(ctx context.Context, prefix string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out map[string][]byte
	err := b.db.View(func(txn *badger.Txn) error {
		leaves, err := keysUnder(txn, prefix, true)
		out = leaves
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Apply implements store.Backend.
func (b *Backend) Apply(ctx context.Context, m store.Mutation) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = b.db.Update(func(txn *badger.Txn) error {
			for _, c := range m.Clear {
				existing, err := keysUnder(txn, c, false)
				if err != nil {
					return err
				}
				for k := range existing {
					if err := txn.Delete([]byte(k)); err != nil {
						return fmt.Errorf("delete %s: %w", k, err)
					}
				}
			}
			for k, v := range m.Put {
				if err := txn.Set([]byte(k), v); err != nil {
					return fmt.Errorf("set %s: %w", k, err)
				}
			}
			return nil
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return err
	}
	b.hub.Notify(m.Paths()...)
	return nil
}

// Watch implements store.Backend.
func (b *Backend) Watch(ctx context.Context, prefix string) (<-chan string, error) {
	return b.hub.Watch(ctx, prefix)
}

// Close implements store.Backend.
func (b *Backend) Close() error {
	b.hub.Close()
	return b.db.Close()
}
