package diagram

import (
	"fmt"
	"strings"
)

// RenderMermaid renders a DiagramModel as a Mermaid flowchart string.
func RenderMermaid(model *DiagramModel) string {
	var b strings.Builder

	b.WriteString("graph TD\n")
	if model.Title != "" {
		fmt.Fprintf(&b, "    %%%% %s\n", model.Title)
	}

	for _, node := range model.Nodes {
		fmt.Fprintf(&b, "    %s\n", mermaidNodeDef(node))
	}

	for _, edge := range model.Edges {
		arrow := "-->"
		if edge.Style == EdgeAction {
			arrow = "-.->"
		}
		label := ""
		if edge.Label != "" {
			label = fmt.Sprintf("|%s|", edge.Label)
		}
		fmt.Fprintf(&b, "    %s %s%s %s\n", mermaidSafeID(edge.From), arrow, label, mermaidSafeID(edge.To))
	}

	b.WriteString("\n")
	b.WriteString("    classDef invalid fill:#8b1a1a,stroke:#5c0e0e,color:#fff\n")
	b.WriteString("    classDef pending fill:#1a5276,stroke:#0e3a52,color:#fff\n")
	b.WriteString("    classDef unreachable fill:#4a4a4a,stroke:#333,color:#aaa,stroke-dasharray:5 5\n")

	for _, node := range model.Nodes {
		if node.Status != "" {
			fmt.Fprintf(&b, "    class %s %s\n", mermaidSafeID(node.ID), node.Status)
		}
	}

	return b.String()
}

// mermaidNodeDef returns a Mermaid node definition shaped by kind.
func mermaidNodeDef(node *Node) string {
	id := mermaidSafeID(node.ID)
	label := node.Label

	switch node.Kind {
	case NodeKindAction:
		return fmt.Sprintf("%s([%q])", id, label)
	case NodeKindNavigate:
		return fmt.Sprintf("%s[/%q/]", id, label)
	case NodeKindSet:
		return fmt.Sprintf("%s[[%q]]", id, label)
	case NodeKindMissing:
		return fmt.Sprintf("%s{{%q}}", id, label)
	default:
		return fmt.Sprintf("%s[%q]", id, label)
	}
}

// mermaidSafeID maps an ID onto the characters Mermaid accepts unquoted.
func mermaidSafeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
