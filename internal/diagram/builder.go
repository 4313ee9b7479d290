package diagram

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rendis/jsonrender/pkg/schema"
)

// Build constructs a DiagramModel from an element tree. Elements are laid
// out breadth-first from the root in child order, followed by unreachable
// elements in key order. Every action-valued prop named in actionProps
// becomes an action node with edges to its continuation targets.
func Build(tree *schema.ElementTree, actionProps []string, overlay *Overlay) (*DiagramModel, error) {
	if tree == nil {
		return nil, schema.NewError(schema.ErrCodeValidation, "diagram: tree is nil")
	}
	if _, ok := tree.Element(tree.Root); !ok {
		return nil, schema.NewErrorf(schema.ErrCodeNotFound, "diagram: root %q not in tree", tree.Root)
	}
	if overlay == nil {
		overlay = &Overlay{}
	}

	b := &builder{tree: tree, actionProps: actionProps, overlay: overlay, seen: make(map[string]bool)}
	order := b.reachable()
	for _, key := range order {
		b.element(key, "")
	}
	for _, key := range sortedKeys(tree.Elements) {
		if !b.seen[elementID(key)] {
			b.element(key, "unreachable")
		}
	}

	return &DiagramModel{Title: "root: " + tree.Root, Nodes: b.nodes, Edges: b.edges}, nil
}

type builder struct {
	tree        *schema.ElementTree
	actionProps []string
	overlay     *Overlay
	nodes       []*Node
	edges       []Edge
	seen        map[string]bool
}

func (b *builder) reachable() []string {
	visited := map[string]bool{b.tree.Root: true}
	order := []string{b.tree.Root}
	for i := 0; i < len(order); i++ {
		el, _ := b.tree.Element(order[i])
		for _, child := range el.Children {
			if visited[child] {
				continue
			}
			if _, ok := b.tree.Element(child); !ok {
				continue
			}
			visited[child] = true
			order = append(order, child)
		}
	}
	return order
}

func (b *builder) add(n *Node) {
	if b.seen[n.ID] {
		return
	}
	b.seen[n.ID] = true
	b.nodes = append(b.nodes, n)
}

func (b *builder) element(key, status string) {
	el, _ := b.tree.Element(key)
	id := elementID(key)
	if b.overlay.Invalid[key] {
		status = "invalid"
	}
	b.add(&Node{ID: id, Label: fmt.Sprintf("%s: %s", key, el.Type), Kind: NodeKindElement, Status: status})

	for _, child := range el.Children {
		if _, ok := b.tree.Element(child); !ok {
			missing := "missing_" + key + "_" + child
			b.add(&Node{ID: missing, Label: child + " (missing)", Kind: NodeKindMissing})
			b.edges = append(b.edges, Edge{From: id, To: missing, Style: EdgeChild})
			continue
		}
		b.edges = append(b.edges, Edge{From: id, To: elementID(child), Style: EdgeChild})
	}

	for _, prop := range b.actionProps {
		raw, ok := el.Props[prop]
		if !ok {
			continue
		}
		action, err := schema.DecodeAction(raw)
		if err != nil {
			continue
		}
		b.action(id, key, prop, action)
	}
}

func (b *builder) action(from, key, prop string, action schema.Action) {
	id := "act_" + key + "_" + prop
	n := &Node{ID: id, Label: action.Name, Kind: NodeKindAction}
	if b.overlay.Pending[action.Name] {
		n.Status = "pending"
	}
	b.add(n)
	b.edges = append(b.edges, Edge{From: from, To: id, Label: prop, Style: EdgeAction})

	b.continuation(id, "onSuccess", action.OnSuccess)
	b.continuation(id, "onError", action.OnError)
}

func (b *builder) continuation(from, label string, c *schema.Continuation) {
	if c == nil {
		return
	}
	kind, err := c.Kind()
	if err != nil {
		return
	}
	var target *Node
	switch kind {
	case schema.ContinuationNavigate:
		target = &Node{ID: "nav_" + c.Navigate, Label: c.Navigate, Kind: NodeKindNavigate}
	case schema.ContinuationSet:
		target = &Node{ID: from + "_" + label + "_set", Label: "set " + strings.Join(sortedKeys(c.Set), ", "), Kind: NodeKindSet}
	case schema.ContinuationAction:
		target = &Node{ID: "act_" + c.Action, Label: c.Action, Kind: NodeKindAction}
		if b.overlay.Pending[c.Action] {
			target.Status = "pending"
		}
	}
	b.add(target)
	b.edges = append(b.edges, Edge{From: from, To: target.ID, Label: label, Style: EdgeAction})
}

func elementID(key string) string { return "el_" + key }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
