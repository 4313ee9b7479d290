package schema

import (
	"encoding/json"
)

// PathKey is the reserved field that marks an object as a data reference.
const PathKey = "path"

// DynamicValue is either a literal value or a reference into the data store.
// The zero value is absent and resolves to nil.
type DynamicValue struct {
	literal any
	path    string
	ref     bool
}

// Literal wraps a literal value.
func Literal(v any) DynamicValue {
	return DynamicValue{literal: v}
}

// PathRef creates a reference to a store path.
func PathRef(path string) DynamicValue {
	return DynamicValue{path: path, ref: true}
}

// ParseDynamicValue classifies a decoded JSON value. Objects carrying a string
// "path" field are references; everything else is a literal.
func ParseDynamicValue(raw any) DynamicValue {
	if m, ok := raw.(map[string]any); ok {
		if p, ok := m[PathKey].(string); ok {
			return PathRef(p)
		}
	}
	return Literal(raw)
}

// IsPathRef reports whether the value references the store.
func (d DynamicValue) IsPathRef() bool { return d.ref }

// Path returns the referenced path, or "" for literals.
func (d DynamicValue) Path() string { return d.path }

// Value returns the literal value, or nil for references.
func (d DynamicValue) Value() any { return d.literal }

// IsZero reports whether the value is absent.
func (d DynamicValue) IsZero() bool { return !d.ref && d.literal == nil }

// MarshalJSON encodes references as {"path": ...} and literals as themselves.
func (d DynamicValue) MarshalJSON() ([]byte, error) {
	if d.ref {
		return json.Marshal(map[string]string{PathKey: d.path})
	}
	return json.Marshal(d.literal)
}

// UnmarshalJSON decodes any JSON value and classifies it structurally.
func (d *DynamicValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return NewError(ErrCodeDecode, "invalid dynamic value").WithCause(err)
	}
	*d = ParseDynamicValue(raw)
	return nil
}
