package session

import (
	"log/slog"

	"github.com/rendis/jsonrender/internal/actions"
	"github.com/rendis/jsonrender/internal/catalog"
	"github.com/rendis/jsonrender/internal/metrics"
	"github.com/rendis/jsonrender/internal/streaming"
)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger. Correlation attributes are added when
// the logger's handler is a logging.CorrelationHandler.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithCatalog gates rendering and validation with cat.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(s *Session) { s.catalog = cat }
}

// WithRegistry supplies the handler registry. By default the session
// creates an empty one.
func WithRegistry(reg *actions.Registry) Option {
	return func(s *Session) { s.registry = reg }
}

// WithMetrics records renders, fallbacks, validation failures and action
// outcomes on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Session) { s.metrics = c }
}

// WithHub publishes data changes and lifecycle events on hub instead of a
// private in-memory hub.
func WithHub(hub streaming.EventHub) Option {
	return func(s *Session) { s.hub = hub }
}

// WithEventBuffer sets the per-subscriber buffer of the private hub.
// It has no effect together with WithHub.
func WithEventBuffer(n int) Option {
	return func(s *Session) { s.eventBuf = n }
}

// WithAuthState sets the sign-in state reported by Session.AuthState.
func WithAuthState(auth AuthState) Option {
	return func(s *Session) { s.auth = auth }
}

// WithConfirmer answers confirmation prompts. Without one, every action
// that requires confirmation is declined.
func WithConfirmer(c Confirmer) Option {
	return func(s *Session) { s.confirmer = c }
}

// WithNavigator receives navigate continuations.
func WithNavigator(n Navigator) Option {
	return func(s *Session) { s.navigator = n }
}

// WithPoolSize bounds the number of actions running through DispatchAsync.
func WithPoolSize(n int) Option {
	return func(s *Session) { s.poolSize = n }
}

// WithID overrides the random session ID.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}
