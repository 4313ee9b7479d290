// Package textui is a plain-text component set for the renderer, used by
// the CLI and by tests.
package textui

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/rendis/jsonrender/internal/renderer"
)

const (
	indent       = "  "
	dividerWidth = 40
)

type cardProps struct {
	Title    string `mapstructure:"title"`
	Subtitle string `mapstructure:"subtitle"`
}

type stackProps struct {
	Direction string `mapstructure:"direction"`
	Gap       int    `mapstructure:"gap"`
}

type headingProps struct {
	Text  string `mapstructure:"text"`
	Level int    `mapstructure:"level"`
}

type textProps struct {
	Content string `mapstructure:"content"`
}

type buttonProps struct {
	Label    string         `mapstructure:"label"`
	Action   map[string]any `mapstructure:"action"`
	Disabled bool           `mapstructure:"disabled"`
}

type inputProps struct {
	Label       string `mapstructure:"label"`
	Placeholder string `mapstructure:"placeholder"`
	Value       string `mapstructure:"value"`
}

type badgeProps struct {
	Text string `mapstructure:"text"`
}

type alertProps struct {
	Variant string `mapstructure:"variant"`
	Title   string `mapstructure:"title"`
	Message string `mapstructure:"message"`
}

// Registry returns render functions for every component of Definition.
func Registry() renderer.Registry[string] {
	return renderer.Registry[string]{
		"Card":    component(renderCard),
		"Stack":   component(renderStack),
		"Heading": component(renderHeading),
		"Text":    component(renderText),
		"Button":  component(renderButton),
		"Input":   component(renderInput),
		"Badge":   component(renderBadge),
		"Alert":   component(renderAlert),
		"Divider": component(func(_ struct{}, _ renderer.RenderProps[string]) string {
			return strings.Repeat("-", dividerWidth)
		}),
	}
}

// Placeholder renders an element type the registry does not know.
func Placeholder(elementType string) string {
	return "[" + elementType + "]"
}

// component adapts a typed render function: resolved props are decoded
// into P first. Undecodable props render a marker instead.
func component[P any](fn func(P, renderer.RenderProps[string]) string) renderer.RenderFunc[string] {
	return func(p renderer.RenderProps[string]) string {
		var props P
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &props,
		})
		if err == nil {
			err = dec.Decode(p.Element.Props)
		}
		if err != nil {
			return fmt.Sprintf("[%s: invalid props]", p.Element.Type)
		}
		return fn(props, p)
	}
}

func renderCard(props cardProps, p renderer.RenderProps[string]) string {
	var b strings.Builder
	b.WriteString("== " + props.Title + " ==")
	if props.Subtitle != "" {
		b.WriteString("\n" + props.Subtitle)
	}
	for _, child := range p.Children {
		b.WriteString("\n" + indentLines(child))
	}
	return b.String()
}

func renderStack(props stackProps, p renderer.RenderProps[string]) string {
	if props.Direction == "horizontal" {
		parts := make([]string, len(p.Children))
		for i, child := range p.Children {
			parts[i] = strings.ReplaceAll(child, "\n", " ")
		}
		return strings.Join(parts, strings.Repeat(" ", max(props.Gap, 1)))
	}
	return strings.Join(p.Children, strings.Repeat("\n", max(props.Gap, 0)+1))
}

func renderHeading(props headingProps, _ renderer.RenderProps[string]) string {
	level := min(max(props.Level, 1), 6)
	return strings.Repeat("#", level) + " " + props.Text
}

func renderText(props textProps, _ renderer.RenderProps[string]) string {
	return props.Content
}

func renderButton(props buttonProps, p renderer.RenderProps[string]) string {
	out := "[ " + props.Label + " ]"
	switch {
	case p.Loading:
		out += " (loading)"
	case props.Disabled:
		out += " (disabled)"
	}
	return out
}

func renderInput(props inputProps, _ renderer.RenderProps[string]) string {
	value := props.Value
	if value == "" {
		value = props.Placeholder
	}
	if props.Label == "" {
		return "[" + value + "]"
	}
	return props.Label + ": [" + value + "]"
}

func renderBadge(props badgeProps, _ renderer.RenderProps[string]) string {
	return "(" + props.Text + ")"
}

func renderAlert(props alertProps, _ renderer.RenderProps[string]) string {
	variant := props.Variant
	if variant == "" {
		variant = "info"
	}
	out := "[" + strings.ToUpper(variant) + "] " + props.Title
	if props.Message != "" {
		out += ": " + props.Message
	}
	return out
}

func indentLines(s string) string {
	return indent + strings.ReplaceAll(s, "\n", "\n"+indent)
}
