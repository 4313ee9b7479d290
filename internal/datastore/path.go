package datastore

import (
	"strconv"
	"strings"
)

// SplitPath breaks a slash-delimited path into segments. The leading slash is
// optional and empty segments are dropped, so "", "/" and "//" all address
// the root.
func SplitPath(path string) []string {
	raw := strings.Split(path, "/")
	segments := raw[:0]
	for _, seg := range raw {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

// JoinPath builds a canonical path with a leading slash.
func JoinPath(segments ...string) string {
	return "/" + strings.Join(segments, "/")
}

// GetByPath reads the value at path. Mappings are traversed by key and arrays
// by numeric index. The second result is false as soon as a segment is missing
// or the current value cannot be traversed.
func GetByPath(root any, path string) (any, bool) {
	current := root
	for _, seg := range SplitPath(path) {
		switch v := current.(type) {
		case map[string]any:
			val, ok := v[seg]
			if !ok {
				return nil, false
			}
			current = val
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, false
			}
			current = v[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// SetByPath writes value at path inside root. Intermediate segments that are
// missing or hold a non-mapping value are replaced with empty mappings, so
// numeric segments always become mapping keys. It returns false for the root
// path, which cannot be assigned through a parent.
func SetByPath(root map[string]any, path string, value any) bool {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return false
	}

	current := root
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[seg] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
	return true
}

// Data is a plain mapping that satisfies path lookups without a Store. It is
// handy for resolving against a snapshot.
type Data map[string]any

// Get reads the value at path.
func (d Data) Get(path string) (any, bool) {
	return GetByPath(map[string]any(d), path)
}
