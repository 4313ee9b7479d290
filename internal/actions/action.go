package actions

import (
	"context"
)

// Handler performs the side effect behind a named action. It receives the
// resolved params and reports failure through its error.
type Handler func(ctx context.Context, params map[string]any) error

// HandlerRegistry manages the host handlers available to a session.
type HandlerRegistry interface {
	Register(name string, handler Handler, description string) error
	Get(name string) (Handler, error)
	Has(name string) bool
	List() []HandlerInfo
}

// HandlerInfo is a summary of a registered handler for listing.
type HandlerInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
