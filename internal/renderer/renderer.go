// Package renderer walks an element tree and turns it into renderable units
// through a registry of per-type render functions.
package renderer

import (
	"context"
	"log/slog"

	"github.com/rendis/jsonrender/internal/catalog"
	"github.com/rendis/jsonrender/internal/expressions"
	"github.com/rendis/jsonrender/internal/logging"
	"github.com/rendis/jsonrender/pkg/schema"
)

// RenderProps is what a render function receives.
type RenderProps[T any] struct {
	// Element carries resolved props. Key, Type and Children are unchanged.
	Element *schema.UIElement
	// Children are the already-rendered children, in declared order.
	Children []T
	// OnAction dispatches an action definition. Never nil.
	OnAction func(schema.Action)
	Loading  bool
}

// RenderFunc renders one element type.
type RenderFunc[T any] func(RenderProps[T]) T

// Registry maps element types to render functions.
type Registry[T any] map[string]RenderFunc[T]

// Observer counts render passes and fallbacks. *metrics.Collector satisfies it.
type Observer interface {
	ObserveRender()
	ObserveFallback(elementType string)
}

// Config holds configuration for a TreeRenderer. Registry is required.
type Config[T any] struct {
	Registry Registry[T]
	// Catalog, when set, gates every element before its render function runs.
	Catalog *catalog.Catalog
	// Placeholder builds the built-in fallback from the element type name.
	// Without it the built-in fallback is the zero T.
	Placeholder func(elementType string) T
	Logger      *slog.Logger
	Observer    Observer
}

// Options are per-render settings.
type Options[T any] struct {
	Loading bool
	// Fallback replaces the built-in placeholder for unknown or invalid elements.
	Fallback RenderFunc[T]
	// OnAction receives actions triggered by rendered elements.
	OnAction func(schema.Action)
}

// TreeRenderer renders element trees. It holds no per-render state and is
// safe for concurrent use.
type TreeRenderer[T any] struct {
	registry    Registry[T]
	catalog     *catalog.Catalog
	placeholder func(string) T
	logger      *slog.Logger
	observer    Observer
}

// New creates a TreeRenderer from cfg.
func New[T any](cfg Config[T]) *TreeRenderer[T] {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if cfg.Registry == nil {
		cfg.Registry = Registry[T]{}
	}
	return &TreeRenderer[T]{
		registry:    cfg.Registry,
		catalog:     cfg.Catalog,
		placeholder: cfg.Placeholder,
		logger:      cfg.Logger,
		observer:    cfg.Observer,
	}
}

// Render walks tree from its root, depth-first, children before parents.
// A nil tree, an empty root or a root missing from the element map renders
// the zero T. Dangling child keys and child lists that re-enter an ancestor
// render nothing for that child.
func (r *TreeRenderer[T]) Render(ctx context.Context, tree *schema.ElementTree, data expressions.Source, opts Options[T]) T {
	var zero T
	if tree == nil || tree.Root == "" {
		return zero
	}
	if r.observer != nil {
		r.observer.ObserveRender()
	}

	w := &walk[T]{
		r:        r,
		ctx:      ctx,
		tree:     tree,
		data:     data,
		opts:     opts,
		onAction: opts.OnAction,
		path:     make(map[string]bool),
	}
	if w.onAction == nil {
		w.onAction = func(schema.Action) {}
	}

	out, ok := w.element(tree.Root)
	if !ok {
		return zero
	}
	return out
}

type walk[T any] struct {
	r        *TreeRenderer[T]
	ctx      context.Context
	tree     *schema.ElementTree
	data     expressions.Source
	opts     Options[T]
	onAction func(schema.Action)
	// path holds the keys of the elements currently being rendered.
	path map[string]bool
}

func (w *walk[T]) element(key string) (T, bool) {
	var zero T
	el, ok := w.tree.Element(key)
	if !ok {
		w.r.logger.DebugContext(w.ctx, "skipping missing element", slog.String("element_key", key))
		return zero, false
	}
	if w.path[key] {
		w.r.logger.WarnContext(w.ctx, "skipping element that re-enters its ancestors", slog.String("element_key", key))
		return zero, false
	}

	w.path[key] = true
	children := make([]T, 0, len(el.Children))
	for _, child := range el.Children {
		if out, ok := w.element(child); ok {
			children = append(children, out)
		}
	}
	delete(w.path, key)

	props := RenderProps[T]{
		Element: &schema.UIElement{
			Key:      el.Key,
			Type:     el.Type,
			Props:    expressions.ResolveProps(el.Props, w.data),
			Children: el.Children,
		},
		Children: children,
		OnAction: w.onAction,
		Loading:  w.opts.Loading,
	}

	fn, registered := w.r.registry[el.Type]
	if !registered || !w.eligible(el) {
		return w.fallback(props), true
	}
	return w.invoke(fn, props), true
}

// invoke runs fn, turning a panic into the fallback for that element.
func (w *walk[T]) invoke(fn RenderFunc[T], props RenderProps[T]) (out T) {
	defer func() {
		if r := recover(); r != nil {
			w.r.logger.ErrorContext(logging.WithElementKey(w.ctx, props.Element.Key), "render function panicked",
				slog.String("type", props.Element.Type), slog.Any("panic", r))
			out = w.fallback(props)
		}
	}()
	return fn(props)
}

// eligible applies the catalog gate. In warn mode an invalid element is
// logged and still rendered.
func (w *walk[T]) eligible(el *schema.UIElement) bool {
	c := w.r.catalog
	if c == nil {
		return true
	}
	result := c.ValidateElement(el)
	if result.Success() {
		return true
	}
	ctx := logging.WithElementKey(w.ctx, el.Key)
	if c.Mode() == catalog.ValidationWarn {
		w.r.logger.WarnContext(ctx, "element failed catalog validation", slog.String("type", el.Type), slog.Any("error", result.ToError()))
		return true
	}
	w.r.logger.DebugContext(ctx, "element failed catalog validation, rendering fallback", slog.String("type", el.Type), slog.Any("error", result.ToError()))
	return false
}

func (w *walk[T]) fallback(props RenderProps[T]) T {
	if w.r.observer != nil {
		w.r.observer.ObserveFallback(props.Element.Type)
	}
	if w.opts.Fallback != nil {
		return w.opts.Fallback(props)
	}
	if w.r.placeholder != nil {
		return w.r.placeholder(props.Element.Type)
	}
	var zero T
	return zero
}
