package schema

// UIElement is one node of a declarative UI tree. Props values may be
// literals or {"path": ...} references. Children lists element keys in
// render order.
type UIElement struct {
	Key      string         `json:"key" yaml:"key"`
	Type     string         `json:"type" yaml:"type"`
	Props    map[string]any `json:"props" yaml:"props"`
	Children []string       `json:"children,omitempty" yaml:"children,omitempty"`
}

// ElementTree is a flat keyed element map with a declared root.
type ElementTree struct {
	Root     string                `json:"root" yaml:"root"`
	Elements map[string]*UIElement `json:"elements" yaml:"elements"`
}

// Element looks up an element by key. Nil trees and nil entries miss.
func (t *ElementTree) Element(key string) (*UIElement, bool) {
	if t == nil || t.Elements == nil {
		return nil, false
	}
	el, ok := t.Elements[key]
	if !ok || el == nil {
		return nil, false
	}
	return el, true
}
