package actions

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rendis/jsonrender/pkg/schema"
)

type entry struct {
	handler     Handler
	description string
}

// Registry is the concrete thread-safe HandlerRegistry implementation.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]entry
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]entry),
	}
}

// Register adds a handler under name. Returns error on duplicate name.
func (r *Registry) Register(name string, handler Handler, description string) error {
	if handler == nil {
		return schema.NewError(schema.ErrCodeValidation, "handler is nil")
	}
	if name == "" {
		return schema.NewError(schema.ErrCodeValidation, "handler name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; exists {
		return schema.NewErrorf(schema.ErrCodeConflict, "handler %q already registered", name)
	}

	r.handlers[name] = entry{handler: handler, description: description}
	return nil
}

// Get retrieves a handler by name.
func (r *Registry) Get(name string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.handlers[name]
	if !ok {
		return nil, schema.NewErrorf(schema.ErrCodeActionUnavailable, "action %q has no handler", name)
	}
	return e.handler, nil
}

// List returns info for all registered handlers, sorted by name.
func (r *Registry) List() []HandlerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]HandlerInfo, 0, len(r.handlers))
	for name, e := range r.handlers {
		infos = append(infos, HandlerInfo{Name: name, Description: e.description})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

// PluginHandler is one handler of a namespaced group.
type PluginHandler struct {
	Handler     Handler
	Description string
}

// RegisterPlugin registers a group of handlers as "prefix.name" (e.g.
// "assert.equals"). Names are registered in sorted order and the call stops
// at the first conflict or nil handler, returning how many were added.
func (r *Registry) RegisterPlugin(prefix string, handlers map[string]PluginHandler) (int, error) {
	if prefix == "" {
		return 0, schema.NewError(schema.ErrCodeValidation, "plugin prefix is empty")
	}

	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name)
	}
	sort.Strings(names)

	r.mu.Lock()
	defer r.mu.Unlock()

	registered := 0
	for _, name := range names {
		qualified := fmt.Sprintf("%s.%s", prefix, name)
		if _, exists := r.handlers[qualified]; exists {
			return registered, schema.NewErrorf(schema.ErrCodeConflict, "plugin handler %q already registered", qualified)
		}
		ph := handlers[name]
		if ph.Handler == nil {
			return registered, schema.NewErrorf(schema.ErrCodeValidation, "plugin handler %q is nil", qualified)
		}
		r.handlers[qualified] = entry{handler: ph.Handler, description: ph.Description}
		registered++
	}
	return registered, nil
}

// Has checks if a handler is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[name]
	return ok
}

// Count returns the number of registered handlers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

var _ HandlerRegistry = (*Registry)(nil)
