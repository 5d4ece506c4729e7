package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// forbiddenKeyChars are the characters a path segment may not contain.
// The set matches the Firebase Realtime Database key rules so any data
// written here can be mirrored there unchanged.
const forbiddenKeyChars = ".#$[]"

// Normalize trims surrounding slashes and validates every segment of p.
// The empty string denotes the root.
func Normalize(p string) (string, error) {
	p = strings.Trim(p, "/")
	if p == "" {
		return "", nil
	}
	for _, seg := range strings.Split(p, "/") {
		if err := ValidateKey(seg); err != nil {
			return "", fmt.Errorf("%w: %q: %v", ErrInvalidPath, p, err)
		}
	}
	return p, nil
}

// ValidateKey reports whether s can be used as a single path segment.
func ValidateKey(s string) error {
	if s == "" {
		return fmt.Errorf("empty segment")
	}
	if strings.Contains(s, "/") {
		return fmt.Errorf("segment %q contains a slash", s)
	}
	if strings.ContainsAny(s, forbiddenKeyChars) {
		return fmt.Errorf("segment %q contains one of %q", s, forbiddenKeyChars)
	}
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("segment %q contains a control character", s)
		}
	}
	return nil
}

// Join joins path segments with slashes, skipping empty ones.
func Join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "/")
}

// Under reports whether p is prefix itself or lies below it.
func Under(p, prefix string) bool {
	if prefix == "" {
		return true
	}
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

// Related reports whether a change at one path can affect a read of the other.
func Related(a, b string) bool {
	return Under(a, b) || Under(b, a)
}

// Base returns the last segment of p.
func Base(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}

// Flatten converts a generic JSON value into leaf entries below base.
// Maps become path segments, slices are keyed by index, nil produces nothing.
func Flatten(base string, v any) (map[string][]byte, error) {
	out := make(map[string][]byte)
	if err := flattenInto(out, base, v); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenInto(out map[string][]byte, p string, v any) error {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		for k, child := range t {
			if err := ValidateKey(k); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidPath, err)
			}
			if err := flattenInto(out, Join(p, k), child); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for i, child := range t {
			if err := flattenInto(out, Join(p, strconv.Itoa(i)), child); err != nil {
				return err
			}
		}
		return nil
	default:
		if p == "" {
			return fmt.Errorf("%w: scalar value at root", ErrInvalidPath)
		}
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encode %s: %w", p, err)
		}
		out[p] = raw
		return nil
	}
}

// Build reassembles the leaves stored at or below prefix into a generic value.
// It returns nil when there are none.
func Build(prefix string, leaves map[string][]byte) (any, error) {
	var root any
	keys := make([]string, 0, len(leaves))
	for k := range leaves {
		if Under(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		var val any
		if err := json.Unmarshal(leaves[k], &val); err != nil {
			return nil, fmt.Errorf("decode %s: %w", k, err)
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(k, prefix), "/")
		if rel == "" {
			// A leaf at the prefix itself shadows anything below it.
			return val, nil
		}
		m, ok := root.(map[string]any)
		if !ok {
			m = make(map[string]any)
			root = m
		}
		segs := strings.Split(rel, "/")
		for _, seg := range segs[:len(segs)-1] {
			next, ok := m[seg].(map[string]any)
			if !ok {
				next = make(map[string]any)
				m[seg] = next
			}
			m = next
		}
		m[segs[len(segs)-1]] = val
	}
	return root, nil
}

// normalizeValue round-trips v through JSON so structs, typed maps and
// pointers all become the generic form Flatten understands.
func normalizeValue(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return out, nil
}
