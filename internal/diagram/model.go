package diagram

// NodeKind classifies a diagram node.
type NodeKind string

const (
	NodeKindElement  NodeKind = "element"
	NodeKindAction   NodeKind = "action"
	NodeKindNavigate NodeKind = "navigate"
	NodeKindSet      NodeKind = "set"
	NodeKindMissing  NodeKind = "missing"
)

// DiagramModel is the intermediate representation the renderers consume.
type DiagramModel struct {
	Title string
	Nodes []*Node
	Edges []Edge
}

// Node is one element, action or continuation target.
type Node struct {
	ID    string
	Label string
	Kind  NodeKind
	// Status is empty or one of "invalid", "pending", "unreachable".
	Status string
}

// EdgeStyle distinguishes structural edges from action wiring.
type EdgeStyle string

const (
	EdgeChild  EdgeStyle = "child"
	EdgeAction EdgeStyle = "action"
)

// Edge connects two nodes.
type Edge struct {
	From  string
	To    string
	Label string
	Style EdgeStyle
}

// Overlay carries runtime state painted onto element and action nodes.
type Overlay struct {
	// Invalid holds element keys that failed catalog validation.
	Invalid map[string]bool
	// Pending holds names of in-flight actions.
	Pending map[string]bool
}
