package catalog

import (
	"fmt"

	"github.com/rendis/jsonrender/pkg/schema"
)

// validateStructure checks references between elements: the root exists,
// children exist, no child list re-enters an ancestor, and every element is
// reachable from the root. keys is the sorted element key list.
func validateStructure(tree *schema.ElementTree, keys []string) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	if _, ok := tree.Elements[tree.Root]; !ok {
		result.AddError("/root", schema.ErrCodeNotFound,
			fmt.Sprintf("root element %q does not exist", tree.Root))
	}

	for _, k := range keys {
		for i, child := range tree.Elements[k].Children {
			if _, ok := tree.Elements[child]; !ok {
				result.AddError(fmt.Sprintf("/elements/%s/children/%d", k, i), schema.ErrCodeNotFound,
					fmt.Sprintf("child element %q does not exist", child))
			}
		}
	}

	// Depth-first walk with an on-path set. Starting from every key in sorted
	// order covers cycles not reachable from the root.
	const (
		unvisited = iota
		onPath
		done
	)
	state := make(map[string]int, len(keys))
	var visit func(key string)
	visit = func(key string) {
		state[key] = onPath
		for i, child := range tree.Elements[key].Children {
			if _, ok := tree.Elements[child]; !ok {
				continue
			}
			switch state[child] {
			case onPath:
				result.AddError(fmt.Sprintf("/elements/%s/children/%d", key, i), schema.ErrCodeCycleDetected,
					fmt.Sprintf("child %q re-enters an ancestor of %q", child, key))
			case unvisited:
				visit(child)
			}
		}
		state[key] = done
	}
	for _, k := range keys {
		if state[k] == unvisited {
			visit(k)
		}
	}

	if _, ok := tree.Elements[tree.Root]; !ok {
		return result
	}

	// Reachability: BFS from the root through child lists.
	reachable := map[string]bool{tree.Root: true}
	queue := []string{tree.Root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, child := range tree.Elements[node].Children {
			if _, ok := tree.Elements[child]; ok && !reachable[child] {
				reachable[child] = true
				queue = append(queue, child)
			}
		}
	}
	for _, k := range keys {
		if !reachable[k] {
			result.AddWarning("/elements/"+k, schema.ErrCodeValidation,
				fmt.Sprintf("element %q is unreachable from the root", k))
		}
	}

	return result
}
