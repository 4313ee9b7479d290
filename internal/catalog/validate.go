package catalog

import (
	"fmt"
	"sort"

	"github.com/rendis/jsonrender/pkg/schema"
)

// ValidateElement checks one element: envelope shape, type membership,
// props schema, children permission and action-valued props.
// Paths in the result are relative to the element.
func (c *Catalog) ValidateElement(el *schema.UIElement) *schema.ValidationResult {
	result := &schema.ValidationResult{}
	if el == nil {
		result.AddError("", schema.ErrCodeValidation, "element is nil")
		return result
	}
	c.validateElement(el, "", result)
	return result
}

func (c *Catalog) validateElement(el *schema.UIElement, prefix string, result *schema.ValidationResult) {
	doc, err := toJSONValue(el)
	if err != nil {
		result.AddError(prefix, schema.ErrCodeValidation, fmt.Sprintf("element is not JSON-serializable: %s", err))
		return
	}
	if err := c.envelope.element.Validate(doc); err != nil {
		addViolations(result, prefix, err)
		return
	}

	comp, ok := c.components[el.Type]
	if !ok {
		result.AddError(prefix+"/type", schema.ErrCodeNotFound,
			fmt.Sprintf("component type %q not in catalog", el.Type))
		return
	}

	if comp.props != nil {
		props, err := toJSONValue(propsOrEmpty(el.Props))
		if err != nil {
			result.AddError(prefix+"/props", schema.ErrCodeValidation, fmt.Sprintf("props are not JSON-serializable: %s", err))
		} else if err := comp.props.Validate(props); err != nil {
			addViolations(result, prefix+"/props", err)
		}
	}

	if len(el.Children) > 0 && !comp.def.HasChildren {
		result.AddError(prefix+"/children", schema.ErrCodeValidation,
			fmt.Sprintf("component type %q does not accept children", el.Type))
	}

	for _, name := range comp.def.ActionProps {
		raw, ok := el.Props[name]
		if !ok || raw == nil {
			continue
		}
		path := prefix + "/props/" + name
		action, err := schema.DecodeAction(raw)
		if err != nil {
			result.AddError(path, schema.ErrCodeValidation, schema.MessageOf(err))
			continue
		}
		c.validateAction(action, path, result)
	}
}

// ValidateAction checks an action definition: the name and every chained
// action name are in the catalog, params satisfy the params schema and each
// continuation has exactly one form.
func (c *Catalog) ValidateAction(action schema.Action) *schema.ValidationResult {
	result := &schema.ValidationResult{}
	c.validateAction(action, "", result)
	return result
}

func (c *Catalog) validateAction(action schema.Action, prefix string, result *schema.ValidationResult) {
	if action.Name == "" {
		result.AddError(prefix+"/name", schema.ErrCodeValidation, "action name is empty")
		return
	}
	act, ok := c.actions[action.Name]
	if !ok {
		result.AddError(prefix+"/name", schema.ErrCodeActionUnavailable,
			fmt.Sprintf("action %q not in catalog", action.Name))
	} else if act.params != nil {
		params := action.Params
		if params == nil {
			params = map[string]schema.DynamicValue{}
		}
		doc, err := toJSONValue(params)
		if err != nil {
			result.AddError(prefix+"/params", schema.ErrCodeValidation, fmt.Sprintf("params are not JSON-serializable: %s", err))
		} else if err := act.params.Validate(doc); err != nil {
			addViolations(result, prefix+"/params", err)
		}
	}

	c.validateContinuation(action.OnSuccess, prefix+"/onSuccess", result)
	c.validateContinuation(action.OnError, prefix+"/onError", result)
}

func (c *Catalog) validateContinuation(cont *schema.Continuation, path string, result *schema.ValidationResult) {
	if cont == nil {
		return
	}
	kind, err := cont.Kind()
	if err != nil {
		result.AddError(path, schema.ErrCodeInvalidContinuation, schema.MessageOf(err))
		return
	}
	if kind == schema.ContinuationAction && !c.HasAction(cont.Action) {
		result.AddError(path+"/action", schema.ErrCodeActionUnavailable,
			fmt.Sprintf("action %q not in catalog", cont.Action))
	}
}

// ValidateTree checks the tree envelope, every element against the catalog,
// and the tree's structure: the root exists, every child key exists, each
// element's key matches its map key and no child list re-enters an
// ancestor. Elements unreachable from the root are reported as warnings.
func (c *Catalog) ValidateTree(tree *schema.ElementTree) *schema.ValidationResult {
	result := &schema.ValidationResult{}
	if tree == nil {
		result.AddError("", schema.ErrCodeValidation, "tree is nil")
		return result
	}

	doc, err := toJSONValue(tree)
	if err != nil {
		result.AddError("", schema.ErrCodeValidation, fmt.Sprintf("tree is not JSON-serializable: %s", err))
		return result
	}
	if err := c.envelope.tree.Validate(doc); err != nil {
		addViolations(result, "", err)
		return result
	}

	keys := make([]string, 0, len(tree.Elements))
	for k := range tree.Elements {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		el := tree.Elements[k]
		prefix := "/elements/" + k
		if el.Key != k {
			result.AddError(prefix+"/key", schema.ErrCodeValidation,
				fmt.Sprintf("element key %q does not match its map key %q", el.Key, k))
		}
		c.validateElement(el, prefix, result)
	}

	result.Merge(validateStructure(tree, keys))
	return result
}

func propsOrEmpty(props map[string]any) map[string]any {
	if props == nil {
		return map[string]any{}
	}
	return props
}
