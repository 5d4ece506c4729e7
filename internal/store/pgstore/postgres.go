// Package pgstore is a store backend on PostgreSQL.
//
// Leaves are rows of a single table keyed by path. A mutation is one
// transaction that also issues pg_notify with the touched paths; a dedicated
// connection LISTENs on that channel so watchers see writes from every
// process sharing the database.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dias221467/Beer_Rating/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultTable holds the records.
	DefaultTable = "records"

	// NOTIFY payloads are capped at 8000 bytes.
	maxPayload = 7000
)

// Backend implements store.Backend on PostgreSQL.
type Backend struct {
	pool    *pgxpool.Pool
	table   string
	channel string

	hub    *store.Hub
	listen *pgx.Conn
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates the table if needed and starts listening for changes. The
// caller owns pool.
func New(ctx context.Context, pool *pgxpool.Pool, table string) (*Backend, error) {
	if table == "" {
		table = DefaultTable
	}
	b := &Backend{
		pool:    pool,
		table:   pgx.Identifier{table}.Sanitize(),
		channel: table + "_changes",
		hub:     store.NewHub(),
		done:    make(chan struct{}),
	}

	schema := []string{
		"CREATE TABLE IF NOT EXISTS " + b.table + " (path TEXT PRIMARY KEY, value TEXT NOT NULL)",
		"CREATE INDEX IF NOT EXISTS " + pgx.Identifier{table + "_path_prefix"}.Sanitize() +
			" ON " + b.table + " (path text_pattern_ops)",
	}
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return nil, fmt.Errorf("create table %s: %w", table, err)
		}
	}

	conn, err := pgx.ConnectConfig(ctx, pool.Config().ConnConfig)
	if err != nil {
		return nil, fmt.Errorf("open listen connection: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{b.channel}.Sanitize()); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("listen on %s: %w", b.channel, err)
	}
	b.listen = conn

	listenCtx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	go b.run(listenCtx)
	return b, nil
}

func (b *Backend) run(ctx context.Context) {
	defer close(b.done)
	for {
		n, err := b.listen.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logrus.WithError(err).Error("Postgres change listener stopped")
			}
			return
		}
		b.hub.Notify(strings.Split(n.Payload, "\n")...)
	}
}

// escapeLike escapes LIKE wildcards for use with ESCAPE '\'.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// chunkPaths joins paths into newline separated payloads that fit NOTIFY.
func chunkPaths(paths []string) []string {
	var (
		out []string
		sb  strings.Builder
	)
	for _, p := range paths {
		if sb.Len() > 0 && sb.Len()+1+len(p) > maxPayload {
			out = append(out, sb.String())
			sb.Reset()
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(p)
	}
	if sb.Len() > 0 {
		out = append(out, sb.String())
	}
	return out
}

// Scan implements store.Backend.
func (b *Backend) Scan(ctx context.Context, prefix string) (map[string][]byte, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if prefix == "" {
		rows, err = b.pool.Query(ctx, "SELECT path, value FROM "+b.table)
	} else {
		rows, err = b.pool.Query(ctx,
			"SELECT path, value FROM "+b.table+` WHERE path = $1 OR path LIKE $2 ESCAPE '\'`,
			prefix, escapeLike(prefix+"/")+"%")
	}
	if err != nil {
		return nil, fmt.Errorf("query records under %q: %w", prefix, err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var path, value string
		if err := rows.Scan(&path, &value); err != nil {
			return nil, err
		}
		out[path] = []byte(value)
	}
	return out, rows.Err()
}

// Apply implements store.Backend.
func (b *Backend) Apply(ctx context.Context, m store.Mutation) error {
	return pgx.BeginFunc(ctx, b.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, c := range m.Clear {
			batch.Queue("DELETE FROM "+b.table+` WHERE path = $1 OR path LIKE $2 ESCAPE '\'`,
				c, escapeLike(c+"/")+"%")
		}
		for k, v := range m.Put {
			batch.Queue("INSERT INTO "+b.table+` (path, value) VALUES ($1, $2)
				ON CONFLICT (path) DO UPDATE SET value = EXCLUDED.value`, k, string(v))
		}
		for _, payload := range chunkPaths(m.Paths()) {
			batch.Queue("SELECT pg_notify($1, $2)", b.channel, payload)
		}

		results := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return err
			}
		}
		return results.Close()
	})
}

// Watch implements store.Backend.
func (b *Backend) Watch(ctx context.Context, prefix string) (<-chan string, error) {
	return b.hub.Watch(ctx, prefix)
}

// Close stops the listener. The pool stays open.
func (b *Backend) Close() error {
	b.cancel()
	<-b.done
	b.hub.Close()
	err := b.listen.Close(context.Background())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
