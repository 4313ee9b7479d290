package logging

import (
	"context"
	"log/slog"
)

type correlationKey struct{}

// Correlation identifies where a log line comes from: the UI session, the
// action invocation in progress and the element being rendered.
type Correlation struct {
	SessionID    string
	InvocationID string
	ElementKey   string
}

// Attrs returns the non-empty fields as log attributes.
func (c Correlation) Attrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, 3)
	if c.SessionID != "" {
		attrs = append(attrs, slog.String("session_id", c.SessionID))
	}
	if c.InvocationID != "" {
		attrs = append(attrs, slog.String("invocation_id", c.InvocationID))
	}
	if c.ElementKey != "" {
		attrs = append(attrs, slog.String("element_key", c.ElementKey))
	}
	return attrs
}

// FromContext returns the correlation carried by ctx. Missing fields are "".
func FromContext(ctx context.Context) Correlation {
	c, _ := ctx.Value(correlationKey{}).(Correlation)
	return c
}

func withCorrelation(ctx context.Context, edit func(*Correlation)) context.Context {
	c := FromContext(ctx)
	edit(&c)
	return context.WithValue(ctx, correlationKey{}, c)
}

// WithSessionID tags ctx with the session that dispatches or renders.
func WithSessionID(ctx context.Context, id string) context.Context {
	return withCorrelation(ctx, func(c *Correlation) { c.SessionID = id })
}

// WithInvocationID tags ctx with one run of an action.
func WithInvocationID(ctx context.Context, id string) context.Context {
	return withCorrelation(ctx, func(c *Correlation) { c.InvocationID = id })
}

// WithElementKey tags ctx with the element a message is about.
func WithElementKey(ctx context.Context, key string) context.Context {
	return withCorrelation(ctx, func(c *Correlation) { c.ElementKey = key })
}

// SessionID is FromContext(ctx).SessionID.
func SessionID(ctx context.Context) string { return FromContext(ctx).SessionID }

// InvocationID is FromContext(ctx).InvocationID.
func InvocationID(ctx context.Context) string { return FromContext(ctx).InvocationID }

// ElementKey is FromContext(ctx).ElementKey.
func ElementKey(ctx context.Context) string { return FromContext(ctx).ElementKey }

// CorrelationHandler adds the context's Correlation to every record, so
// engine code logs with the *Context methods and never threads IDs by hand.
type CorrelationHandler struct {
	inner slog.Handler
}

// NewCorrelationHandler wraps inner.
func NewCorrelationHandler(inner slog.Handler) *CorrelationHandler {
	return &CorrelationHandler{inner: inner}
}

func (h *CorrelationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *CorrelationHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(FromContext(ctx).Attrs()...)
	return h.inner.Handle(ctx, r)
}

func (h *CorrelationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *CorrelationHandler) WithGroup(name string) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithGroup(name)}
}
