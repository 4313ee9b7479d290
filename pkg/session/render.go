package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rendis/jsonrender/internal/logging"
	"github.com/rendis/jsonrender/internal/renderer"
	"github.com/rendis/jsonrender/internal/streaming"
	"github.com/rendis/jsonrender/internal/textui"
	"github.com/rendis/jsonrender/pkg/schema"
)

// renderObserver feeds render metrics and publishes fallback events.
type renderObserver struct{ s *Session }

func (o renderObserver) ObserveRender() { o.s.metrics.ObserveRender() }

func (o renderObserver) ObserveFallback(elementType string) {
	o.s.metrics.ObserveFallback(elementType)
	_ = o.s.hub.Publish(context.Background(), streaming.StreamEvent{
		SessionID: o.s.id,
		EventType: schema.EventElementFallback,
		Payload:   map[string]any{"type": elementType},
	})
}

// NewRenderer builds a renderer over reg that uses the session's catalog,
// logger, metrics and hub.
func NewRenderer[T any](s *Session, reg renderer.Registry[T], placeholder func(string) T) *renderer.TreeRenderer[T] {
	return renderer.New(renderer.Config[T]{
		Registry:    reg,
		Catalog:     s.catalog,
		Placeholder: placeholder,
		Logger:      s.logger,
		Observer:    renderObserver{s: s},
	})
}

// Render renders tree against the session's store. When opts.OnAction is
// nil, triggered actions are dispatched asynchronously and their failures
// logged.
func Render[T any](ctx context.Context, s *Session, r *renderer.TreeRenderer[T], tree *schema.ElementTree, opts renderer.Options[T]) T {
	ctx = logging.WithSessionID(ctx, s.id)
	if opts.OnAction == nil {
		opts.OnAction = func(a schema.Action) { s.trigger(ctx, a) }
	}
	return r.Render(ctx, tree, s.store, opts)
}

// RenderText renders tree with the plain-text component set.
func (s *Session) RenderText(ctx context.Context, tree *schema.ElementTree) string {
	return Render(ctx, s, NewRenderer(s, textui.Registry(), textui.Placeholder), tree, renderer.Options[string]{
		Loading: len(s.PendingActions()) > 0,
	})
}

func (s *Session) trigger(ctx context.Context, action schema.Action) {
	err := s.DispatchAsync(ctx, action, func(err error) {
		if err != nil && !errors.Is(err, ErrDeclined) {
			s.logger.WarnContext(ctx, "action failed", slog.String("action", action.Name), slog.Any("error", err))
		}
	})
	if err != nil {
		s.logger.WarnContext(ctx, "action not started", slog.String("action", action.Name), slog.Any("error", err))
	}
}

// Validate checks tree against the session catalog. Without a catalog the
// result carries a single VALIDATION_ERROR.
func (s *Session) Validate(tree *schema.ElementTree) *schema.ValidationResult {
	if s.catalog == nil {
		result := &schema.ValidationResult{}
		result.AddError("", schema.ErrCodeValidation, "session has no catalog")
		return result
	}
	result := s.catalog.ValidateTree(tree)
	if !result.Success() {
		s.metrics.ObserveValidationFailure("tree")
	}
	return result
}

// ValidateAction checks action against the session catalog.
func (s *Session) ValidateAction(action schema.Action) *schema.ValidationResult {
	if s.catalog == nil {
		result := &schema.ValidationResult{}
		result.AddError("", schema.ErrCodeValidation, "session has no catalog")
		return result
	}
	result := s.catalog.ValidateAction(action)
	if !result.Success() {
		s.metrics.ObserveValidationFailure("action")
	}
	return result
}
