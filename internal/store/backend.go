package store

import (
	"context"
	"errors"
)

var (
	// ErrInvalidPath is returned for malformed paths or keys.
	ErrInvalidPath = errors.New("invalid store path")
	// ErrOverlappingPaths is returned when one path of a multi-path update
	// is an ancestor of another.
	ErrOverlappingPaths = errors.New("overlapping paths in update")
	// ErrClosed is returned after the client or backend has been closed.
	ErrClosed = errors.New("store closed")
)

// Backend is the storage driver beneath a Client. It only deals in leaves:
// normalized paths mapped to JSON-encoded scalar values.
type Backend interface {
	// Scan returns every leaf stored at prefix or below it, keyed by full path.
	Scan(ctx context.Context, prefix string) (map[string][]byte, error)

	// Apply commits m atomically. Either every change in m becomes visible
	// or none does.
	Apply(ctx context.Context, m Mutation) error

	// Watch reports paths that changed at, above or below prefix. Signals may
	// be coalesced, so receivers must re-read rather than count them. The
	// channel is closed when ctx is done or the backend is closed.
	Watch(ctx context.Context, prefix string) (<-chan string, error)

	Close() error
}

// Mutation removes every leaf at or below each Clear path and then writes
// Put. Put keys may lie below Clear paths.
type Mutation struct {
	Clear []string
	Put   map[string][]byte
}

// Empty reports whether m changes nothing.
func (m Mutation) Empty() bool {
	return len(m.Clear) == 0 && len(m.Put) == 0
}

// Paths returns every path m touches, for change notification.
func (m Mutation) Paths() []string {
	out := make([]string, 0, len(m.Clear)+len(m.Put))
	out = append(out, m.Clear...)
	for p := range m.Put {
		covered := false
		for _, c := range m.Clear {
			if Under(p, c) {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, p)
		}
	}
	return out
}
