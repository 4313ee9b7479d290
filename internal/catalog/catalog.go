// Package catalog is the closed registry of element types, action names and
// function names a tree may use, with JSON Schema validators for props and
// params.
package catalog

import (
	"fmt"
	"net/url"
	"sort"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/rendis/jsonrender/pkg/schema"
)

// ValidationMode controls what the renderer does with an element that fails
// catalog validation.
type ValidationMode string

const (
	// ValidationStrict renders the fallback in place of an invalid element.
	ValidationStrict ValidationMode = "strict"
	// ValidationWarn logs the failure and renders the element anyway.
	ValidationWarn ValidationMode = "warn"
)

// Definition is the catalog document, as loaded from JSON or YAML.
type Definition struct {
	Name       string                  `json:"name,omitempty" yaml:"name,omitempty"`
	Validation ValidationMode          `json:"validation,omitempty" yaml:"validation,omitempty"`
	Components map[string]ComponentDef `json:"components" yaml:"components"`
	Actions    map[string]ActionDef    `json:"actions,omitempty" yaml:"actions,omitempty"`
	Functions  map[string]FunctionDef  `json:"functions,omitempty" yaml:"functions,omitempty"`
}

// ComponentDef describes one element type.
type ComponentDef struct {
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Props is a JSON Schema for the element's props. Every declared
	// property also accepts a {"path": ...} reference.
	Props       map[string]any `json:"props,omitempty" yaml:"props,omitempty"`
	HasChildren bool           `json:"hasChildren,omitempty" yaml:"hasChildren,omitempty"`
	// ActionProps names props whose value is an action definition.
	ActionProps []string `json:"actionProps,omitempty" yaml:"actionProps,omitempty"`
}

// ActionDef describes one action name.
type ActionDef struct {
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Params is a JSON Schema for the action's params, with the same
	// path reference allowance as component props.
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// FunctionDef describes one host function name.
type FunctionDef struct {
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type component struct {
	def   ComponentDef
	props *jsonschema.Schema
}

type action struct {
	def    ActionDef
	params *jsonschema.Schema
}

// Catalog is an immutable, compiled Definition. It is safe for concurrent use.
type Catalog struct {
	name       string
	mode       ValidationMode
	components map[string]component
	actions    map[string]action
	functions  map[string]FunctionDef
	envelope   *envelopeSchemas
}

// New compiles def into a Catalog. It fails if def is malformed or any
// props or params schema does not compile.
func New(def Definition) (*Catalog, error) {
	if def.Validation == "" {
		def.Validation = ValidationStrict
	}
	if def.Validation != ValidationStrict && def.Validation != ValidationWarn {
		return nil, schema.NewErrorf(schema.ErrCodeValidation, "unknown validation mode %q", def.Validation)
	}
	if def.Components == nil {
		def.Components = map[string]ComponentDef{}
	}
	if err := validateDefinition(def); err != nil {
		return nil, err
	}

	envelope, err := compileEnvelope()
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		name:       def.Name,
		mode:       def.Validation,
		components: make(map[string]component, len(def.Components)),
		actions:    make(map[string]action, len(def.Actions)),
		functions:  make(map[string]FunctionDef, len(def.Functions)),
		envelope:   envelope,
	}

	compiler := newCompiler()
	for name, cd := range def.Components {
		comp := component{def: cd}
		if cd.Props != nil {
			comp.props, err = compileBound(compiler, "components/"+url.PathEscape(name), cd.Props)
			if err != nil {
				return nil, schema.NewErrorf(schema.ErrCodeValidation, "component %q: invalid props schema", name).WithCause(err)
			}
		}
		c.components[name] = comp
	}
	for name, ad := range def.Actions {
		act := action{def: ad}
		if ad.Params != nil {
			act.params, err = compileBound(compiler, "actions/"+url.PathEscape(name), ad.Params)
			if err != nil {
				return nil, schema.NewErrorf(schema.ErrCodeValidation, "action %q: invalid params schema", name).WithCause(err)
			}
		}
		c.actions[name] = act
	}
	for name, fd := range def.Functions {
		c.functions[name] = fd
	}
	return c, nil
}

// MustNew is New for static catalogs; it panics on error.
func MustNew(def Definition) *Catalog {
	c, err := New(def)
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return c
}

// Name returns the catalog name.
func (c *Catalog) Name() string { return c.name }

// Mode returns the validation mode.
func (c *Catalog) Mode() ValidationMode { return c.mode }

// HasComponent reports whether type t is permitted.
func (c *Catalog) HasComponent(t string) bool {
	_, ok := c.components[t]
	return ok
}

// HasAction reports whether the action name is permitted.
func (c *Catalog) HasAction(name string) bool {
	_, ok := c.actions[name]
	return ok
}

// HasFunction reports whether the function name is permitted.
func (c *Catalog) HasFunction(name string) bool {
	_, ok := c.functions[name]
	return ok
}

// Component returns the definition of element type t.
func (c *Catalog) Component(t string) (ComponentDef, bool) {
	comp, ok := c.components[t]
	return comp.def, ok
}

// ComponentNames returns the permitted element types, sorted.
func (c *Catalog) ComponentNames() []string { return sortedKeys(c.components) }

// ActionNames returns the permitted action names, sorted.
func (c *Catalog) ActionNames() []string { return sortedKeys(c.actions) }

// FunctionNames returns the permitted function names, sorted.
func (c *Catalog) FunctionNames() []string { return sortedKeys(c.functions) }

// ActionDescription returns the description of an action, or "".
func (c *Catalog) ActionDescription(name string) string {
	return c.actions[name].def.Description
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
