// Package session pairs a data store with the action machinery for one UI
// session: it resolves, confirms and executes actions, applies their
// continuations to the store, and renders element trees against it.
package session

import (
	"context"
	"errors"
	"log/slog"
	"maps"

	"github.com/google/uuid"

	"github.com/rendis/jsonrender/internal/actions"
	"github.com/rendis/jsonrender/internal/catalog"
	"github.com/rendis/jsonrender/internal/datastore"
	"github.com/rendis/jsonrender/internal/engine"
	"github.com/rendis/jsonrender/internal/logging"
	"github.com/rendis/jsonrender/internal/metrics"
	"github.com/rendis/jsonrender/internal/streaming"
	"github.com/rendis/jsonrender/pkg/schema"
)

const defaultPoolSize = 4

// ErrDeclined is returned by Dispatch when the confirmation prompt is
// declined. The handler is not called and no continuation runs.
var ErrDeclined = errors.New("action declined")

// Confirmer asks the user to confirm an action before it runs.
type Confirmer interface {
	Confirm(ctx context.Context, prompt schema.ConfirmSpec) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt schema.ConfirmSpec) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt schema.ConfirmSpec) (bool, error) {
	return f(ctx, prompt)
}

// Navigator receives navigate continuations.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// AuthState is the host's sign-in state, passed through for render
// functions and handlers that show or gate content on it.
type AuthState struct {
	SignedIn bool           `json:"isSignedIn"`
	User     map[string]any `json:"user,omitempty"`
}

// Session is safe for concurrent use.
type Session struct {
	id        string
	store     *datastore.Store
	catalog   *catalog.Catalog
	registry  *actions.Registry
	executor  *engine.Executor
	pool      *engine.ActionPool
	hub       streaming.EventHub
	metrics   *metrics.Collector
	logger    *slog.Logger
	confirmer Confirmer
	navigator Navigator
	poolSize  int
	eventBuf  int
	auth      AuthState

	unsubscribe func()
	untrack     func()
}

// New creates a session over a copy of initial.
func New(initial map[string]any, opts ...Option) *Session {
	s := &Session{poolSize: defaultPoolSize}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.registry == nil {
		s.registry = actions.NewRegistry()
	}
	if s.hub == nil {
		s.hub = streaming.NewMemoryHub(streaming.WithBuffer(s.eventBuf))
	}
	s.logger = s.logger.With(slog.String("session_id", s.id))

	s.store = datastore.New(initial)
	s.pool = engine.NewActionPool(s.poolSize)
	s.executor = engine.NewExecutor(engine.ExecutorConfig{
		Logger:    s.logger,
		Publisher: s.hub,
		Observer:  s.metrics,
	})
	s.unsubscribe = s.store.Subscribe(streaming.ChangePublisher(context.Background(), s.hub, s.id))
	s.untrack = s.metrics.Track(s.Stats)
	return s
}

// hubStats is implemented by hubs that count subscribers and dropped
// events, such as *streaming.MemoryHub.
type hubStats interface {
	Dropped() uint64
	Subscribers() int
}

// Stats reports the session's action pool counters and, when the hub
// counts them, its subscriber and dropped-event figures.
func (s *Session) Stats() metrics.Runtime {
	pm := s.pool.Metrics()
	rt := metrics.Runtime{
		ActiveActions:    pm.Active,
		CompletedActions: pm.Completed,
		FailedActions:    pm.Failed,
		PanickedActions:  pm.Panics,
	}
	if h, ok := s.hub.(hubStats); ok {
		rt.DroppedEvents = h.Dropped()
		rt.Subscribers = h.Subscribers()
	}
	return rt
}

// ID returns the session ID carried by every event the session publishes.
func (s *Session) ID() string { return s.id }

// AuthState returns the state set with WithAuthState. The user map is a
// copy.
func (s *Session) AuthState() AuthState {
	return AuthState{SignedIn: s.auth.SignedIn, User: maps.Clone(s.auth.User)}
}

// Store returns the session's data store.
func (s *Session) Store() *datastore.Store { return s.store }

// Catalog returns the session catalog, or nil.
func (s *Session) Catalog() *catalog.Catalog { return s.catalog }

// Registry returns the handler registry.
func (s *Session) Registry() *actions.Registry { return s.registry }

// Executor returns the executor, mainly so callers can hook its FSM.
func (s *Session) Executor() *engine.Executor { return s.executor }

// Subscribe streams the session's events matching filter. The session ID
// of filter is forced to this session.
func (s *Session) Subscribe(ctx context.Context, filter streaming.EventFilter) (<-chan streaming.StreamEvent, func(), error) {
	filter.SessionID = s.id
	return s.hub.Subscribe(ctx, filter)
}

// Pending reports whether an action with this name is in flight.
func (s *Session) Pending(name string) bool { return s.pool.Pending(name) }

// PendingActions lists the names of in-flight actions, sorted.
func (s *Session) PendingActions() []string { return s.pool.PendingNames() }

// Close waits for asynchronous actions and detaches the store from the hub.
func (s *Session) Close() {
	s.pool.Shutdown()
	s.unsubscribe()
	s.untrack()
}

// Dispatch resolves action against the store, asks for confirmation when
// the action carries a prompt, runs the registered handler and applies the
// matching continuation. Errors are those of engine.Executor.Execute, plus
// ErrDeclined and the confirmer's own errors.
func (s *Session) Dispatch(ctx context.Context, action schema.Action) error {
	ctx = logging.WithSessionID(ctx, s.id)
	resolved := actions.ResolveAction(action, s.store)

	if resolved.Confirm != nil {
		ok, err := s.confirm(ctx, *resolved.Confirm)
		if err != nil {
			return err
		}
		if !ok {
			s.decline(ctx, resolved.Name)
			return ErrDeclined
		}
	}

	release := s.pool.Track(resolved.Name)
	defer release()

	handler, _ := s.registry.Get(resolved.Name)
	return s.executor.Execute(ctx, engine.Request{
		Action:    action,
		Resolved:  &resolved,
		Data:      s.store,
		Handler:   handler,
		Callbacks: s.callbacks(),
	})
}

// DispatchAsync runs Dispatch on the session's action pool. onDone, if
// non-nil, receives Dispatch's result. The action is pending from the call
// until Dispatch returns.
func (s *Session) DispatchAsync(ctx context.Context, action schema.Action, onDone func(error)) error {
	return s.pool.Submit(ctx, action.Name, func(ctx context.Context) error {
		return s.Dispatch(ctx, action)
	}, onDone)
}

func (s *Session) confirm(ctx context.Context, prompt schema.ConfirmSpec) (bool, error) {
	if s.confirmer == nil {
		return false, nil
	}
	return s.confirmer.Confirm(ctx, prompt)
}

func (s *Session) decline(ctx context.Context, name string) {
	s.metrics.ObserveAction(name, metrics.OutcomeDeclined, 0)
	if err := s.hub.Publish(ctx, streaming.StreamEvent{
		SessionID: s.id,
		EventType: schema.EventActionDeclined,
		Action:    name,
	}); err != nil {
		s.logger.WarnContext(ctx, "publish failed", slog.String("event", schema.EventActionDeclined), slog.Any("error", err))
	}
	s.logger.DebugContext(ctx, "action declined", slog.String("action", name))
}

// callbacks wires continuations to the session. A chained action runs as
// a bare action: no params, no confirmation prompt, no continuations.
func (s *Session) callbacks() engine.Callbacks {
	cb := engine.Callbacks{
		SetData: func(key string, value any) {
			s.store.Set(datastore.JoinPath(key), value)
		},
		Dispatch: func(ctx context.Context, name string) error {
			return s.Dispatch(ctx, schema.SimpleAction(name, nil))
		},
	}
	if s.navigator != nil {
		cb.Navigate = s.navigator.Navigate
	}
	return cb
}
