package store

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Snapshot is the value found at a path at one point in time.
type Snapshot struct {
	path  string
	value any
}

// NewSnapshot wraps a generic value read from path.
func NewSnapshot(path string, value any) Snapshot {
	return Snapshot{path: path, value: value}
}

// Path returns the location the snapshot was read from.
func (s Snapshot) Path() string { return s.path }

// Key returns the last segment of the snapshot's path.
func (s Snapshot) Key() string { return Base(s.path) }

// Exists reports whether anything is stored at the path.
func (s Snapshot) Exists() bool { return s.value != nil }

// Value returns the generic value: map[string]any, string, float64 or bool.
func (s Snapshot) Value() any { return s.value }

// Decode unmarshals the snapshot into v the way encoding/json would.
// Decoding a missing value leaves v untouched.
func (s Snapshot) Decode(v any) error {
	if s.value == nil {
		return nil
	}
	raw, err := json.Marshal(s.value)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", s.path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	return nil
}

// Child returns the snapshot of a direct child.
func (s Snapshot) Child(key string) Snapshot {
	p := Join(s.path, key)
	m, ok := s.value.(map[string]any)
	if !ok {
		return Snapshot{path: p}
	}
	return Snapshot{path: p, value: m[key]}
}

// Children returns the direct children ordered by key.
func (s Snapshot) Children() []Snapshot {
	m, ok := s.value.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Snapshot, 0, len(keys))
	for _, k := range keys {
		out = append(out, Snapshot{path: Join(s.path, k), value: m[k]})
	}
	return out
}

// Keys returns the keys of the direct children ordered.
func (s Snapshot) Keys() []string {
	children := s.Children()
	out := make([]string, 0, len(children))
	for _, c := range children {
		out = append(out, c.Key())
	}
	return out
}

// String returns the value as a string, or "" if it is not one.
func (s Snapshot) String() string {
	str, _ := s.value.(string)
	return str
}
