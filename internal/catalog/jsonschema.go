package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/rendis/jsonrender/pkg/schema"
)

const schemaBaseURL = "https://jsonrender.dev/schemas/"

// elementSchemaJSON is the structural schema every element must satisfy,
// independent of its type.
const elementSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://jsonrender.dev/schemas/element.json",
  "type": "object",
  "required": ["key", "type"],
  "properties": {
    "key": { "type": "string", "minLength": 1 },
    "type": { "type": "string", "minLength": 1 },
    "props": { "type": ["object", "null"] },
    "children": {
      "type": "array",
      "items": { "type": "string", "minLength": 1 }
    }
  }
}`

// treeSchemaJSON is the structural schema of a whole element tree.
const treeSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://jsonrender.dev/schemas/tree.json",
  "type": "object",
  "required": ["root", "elements"],
  "properties": {
    "root": { "type": "string", "minLength": 1 },
    "elements": {
      "type": "object",
      "additionalProperties": { "$ref": "https://jsonrender.dev/schemas/element.json" }
    }
  }
}`

// definitionSchemaJSON is the schema of a catalog document.
const definitionSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://jsonrender.dev/schemas/catalog.json",
  "type": "object",
  "required": ["components"],
  "properties": {
    "name": { "type": "string" },
    "validation": { "type": "string", "enum": ["strict", "warn"] },
    "components": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "description": { "type": "string" },
          "props": { "type": "object" },
          "hasChildren": { "type": "boolean" },
          "actionProps": { "type": "array", "items": { "type": "string" } }
        },
        "additionalProperties": false
      }
    },
    "actions": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "description": { "type": "string" },
          "params": { "type": "object" }
        },
        "additionalProperties": false
      }
    },
    "functions": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "description": { "type": "string" }
        },
        "additionalProperties": false
      }
    }
  },
  "additionalProperties": false
}`

// pathRefSchema accepts a {"path": "..."} data binding in place of any
// declared property.
var pathRefSchema = map[string]any{
	"type":                 "object",
	"required":             []any{schema.PathKey},
	"properties":           map[string]any{schema.PathKey: map[string]any{"type": "string"}},
	"additionalProperties": false,
}

type envelopeSchemas struct {
	element    *jsonschema.Schema
	tree       *jsonschema.Schema
	definition *jsonschema.Schema
}

// compileEnvelope compiles the built-in schemas once per process.
var compileEnvelope = sync.OnceValues(func() (*envelopeSchemas, error) {
	c := newCompiler()
	for _, res := range []struct{ name, doc string }{
		{"element.json", elementSchemaJSON},
		{"tree.json", treeSchemaJSON},
		{"catalog.json", definitionSchemaJSON},
	} {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(res.doc))
		if err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", res.name, err)
		}
		if err := c.AddResource(schemaBaseURL+res.name, doc); err != nil {
			return nil, fmt.Errorf("add %s resource: %w", res.name, err)
		}
	}

	var (
		env envelopeSchemas
		err error
	)
	if env.element, err = c.Compile(schemaBaseURL + "element.json"); err != nil {
		return nil, fmt.Errorf("compile element schema: %w", err)
	}
	if env.tree, err = c.Compile(schemaBaseURL + "tree.json"); err != nil {
		return nil, fmt.Errorf("compile tree schema: %w", err)
	}
	if env.definition, err = c.Compile(schemaBaseURL + "catalog.json"); err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}
	return &env, nil
})

func newCompiler() *jsonschema.Compiler {
	c := jsonschema.NewCompiler()
	c.AssertFormat()
	return c
}

// validateDefinition checks a catalog document against the catalog schema.
func validateDefinition(def Definition) error {
	env, err := compileEnvelope()
	if err != nil {
		return err
	}
	doc, err := toJSONValue(def)
	if err != nil {
		return schema.NewError(schema.ErrCodeValidation, "failed to serialize catalog definition").WithCause(err)
	}
	if err := env.definition.Validate(doc); err != nil {
		return toEngineError(err)
	}
	return nil
}

// compileBound compiles a props or params schema after letting every
// declared property also accept a path reference.
func compileBound(c *jsonschema.Compiler, id string, raw map[string]any) (*jsonschema.Schema, error) {
	doc, err := toJSONValue(bindPathRefs(raw))
	if err != nil {
		return nil, fmt.Errorf("serialize schema: %w", err)
	}
	loc := schemaBaseURL + id + ".json"
	if err := c.AddResource(loc, doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return c.Compile(loc)
}

// bindPathRefs returns a copy of s where each entry of "properties" is
// wrapped as anyOf[original, pathRef].
func bindPathRefs(s map[string]any) map[string]any {
	out := make(map[string]any, len(s))
	for k, v := range s {
		out[k] = v
	}
	props, ok := s["properties"].(map[string]any)
	if !ok {
		return out
	}
	bound := make(map[string]any, len(props))
	for name, prop := range props {
		bound[name] = map[string]any{"anyOf": []any{prop, pathRefSchema}}
	}
	out["properties"] = bound
	return out
}

// toJSONValue round-trips a Go value through JSON encoding/decoding so that
// numeric values become json.Number (required by the jsonschema library).
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(strings.NewReader(string(b)))
}

// violation is one leaf failure with its instance location.
type violation struct {
	path    string
	message string
}

// collectViolations walks a ValidationError tree and collects leaf errors
// with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []violation {
	if len(verr.Causes) == 0 {
		loc := ""
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []violation{{path: loc, message: verr.Error()}}
	}

	var out []violation
	for _, cause := range verr.Causes {
		out = append(out, collectViolations(cause)...)
	}
	return out
}

// addViolations records err on result, with every location prefixed.
func addViolations(result *schema.ValidationResult, prefix string, err error) {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		result.AddError(prefix, schema.ErrCodeValidation, err.Error())
		return
	}
	violations := collectViolations(verr)
	if len(violations) == 0 {
		result.AddError(prefix, schema.ErrCodeValidation, verr.Error())
		return
	}
	for _, v := range violations {
		result.AddError(prefix+v.path, schema.ErrCodeValidation, v.message)
	}
}

// toEngineError converts a jsonschema.ValidationError into an EngineError.
func toEngineError(err error) *schema.EngineError {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return schema.NewError(schema.ErrCodeValidation, err.Error())
	}

	violations := collectViolations(verr)
	msgs := make([]string, 0, len(violations))
	for _, v := range violations {
		loc := v.path
		if loc == "" {
			loc = "/"
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s", loc, v.message))
	}
	switch len(msgs) {
	case 0:
		return schema.NewError(schema.ErrCodeValidation, verr.Error())
	case 1:
		return schema.NewError(schema.ErrCodeValidation, msgs[0]).
			WithDetails(map[string]any{"violations": msgs})
	default:
		return schema.NewErrorf(schema.ErrCodeValidation, "validation failed with %d errors", len(msgs)).
			WithDetails(map[string]any{"violations": msgs})
	}
}
