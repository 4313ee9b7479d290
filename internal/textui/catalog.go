package textui

import (
	"log/slog"

	"github.com/rendis/jsonrender/internal/catalog"
	"github.com/rendis/jsonrender/internal/renderer"
)

func obj(required []string, props map[string]any) map[string]any {
	s := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

var (
	str     = map[string]any{"type": "string"}
	boolean = map[string]any{"type": "boolean"}
)

// Definition is the catalog of the text component set. Actions and
// functions are left empty for the host to fill in.
func Definition() catalog.Definition {
	return catalog.Definition{
		Name:       "textui",
		Validation: catalog.ValidationStrict,
		Components: map[string]catalog.ComponentDef{
			"Card": {
				Description: "Titled container",
				HasChildren: true,
				Props:       obj([]string{"title"}, map[string]any{"title": str, "subtitle": str}),
			},
			"Stack": {
				Description: "Lays out children vertically or horizontally",
				HasChildren: true,
				Props: obj(nil, map[string]any{
					"direction": map[string]any{"enum": []any{"vertical", "horizontal"}},
					"gap":       map[string]any{"type": "integer", "minimum": 0},
				}),
			},
			"Heading": {
				Description: "Section heading",
				Props: obj([]string{"text"}, map[string]any{
					"text":  str,
					"level": map[string]any{"type": "integer", "minimum": 1, "maximum": 6},
				}),
			},
			"Text": {
				Description: "Paragraph of text",
				Props:       obj([]string{"content"}, map[string]any{"content": map[string]any{}}),
			},
			"Button": {
				Description: "Triggers an action",
				ActionProps: []string{"action"},
				Props: obj([]string{"label", "action"}, map[string]any{
					"label":    str,
					"action":   map[string]any{"type": "object"},
					"disabled": boolean,
				}),
			},
			"Input": {
				Description: "Labelled text field",
				Props:       obj(nil, map[string]any{"label": str, "placeholder": str, "value": map[string]any{}}),
			},
			"Badge": {
				Description: "Short status label",
				Props:       obj([]string{"text"}, map[string]any{"text": str}),
			},
			"Alert": {
				Description: "Highlighted message",
				Props: obj([]string{"title"}, map[string]any{
					"variant": map[string]any{"enum": []any{"info", "success", "warning", "error"}},
					"title":   str,
					"message": str,
				}),
			},
			"Divider": {Description: "Horizontal rule"},
		},
	}
}

// NewRenderer returns a string renderer over Registry. cat may be nil.
func NewRenderer(cat *catalog.Catalog, logger *slog.Logger, observer renderer.Observer) *renderer.TreeRenderer[string] {
	return renderer.New(renderer.Config[string]{
		Registry:    Registry(),
		Catalog:     cat,
		Placeholder: Placeholder,
		Logger:      logger,
		Observer:    observer,
	})
}
