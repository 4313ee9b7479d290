package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rendis/jsonrender/internal/actions"
	"github.com/rendis/jsonrender/internal/expressions"
	"github.com/rendis/jsonrender/internal/logging"
	"github.com/rendis/jsonrender/internal/metrics"
	"github.com/rendis/jsonrender/internal/streaming"
	"github.com/rendis/jsonrender/pkg/schema"
)

// Observer records invocation outcomes. *metrics.Collector satisfies it.
type Observer interface {
	ObserveAction(action, outcome string, d time.Duration)
}

// Request describes one action invocation.
type Request struct {
	// Action is the definition as written in the element tree.
	Action schema.Action
	// Resolved, when set, is used as is and Action is not resolved again.
	Resolved *schema.ResolvedAction
	// Data is the source params and confirmation text resolve against.
	Data expressions.Source
	// Handler performs the side effect.
	Handler actions.Handler
	Callbacks
}

// ExecutorConfig holds configuration for the executor. Every field is optional.
type ExecutorConfig struct {
	Logger    *slog.Logger
	Publisher EventPublisher
	Observer  Observer
	// NewID generates invocation IDs. Defaults to random UUIDs.
	NewID func() string
}

// Executor runs resolved actions and applies their continuations.
// It holds no per-invocation state and is safe for concurrent use.
type Executor struct {
	fsm       *InvocationFSM
	logger    *slog.Logger
	publisher EventPublisher
	observer  Observer
	newID     func() string
}

// NewExecutor creates an Executor from cfg.
func NewExecutor(cfg ExecutorConfig) *Executor {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &Executor{
		fsm:       NewInvocationFSM(cfg.Publisher, cfg.Logger),
		logger:    cfg.Logger,
		publisher: cfg.Publisher,
		observer:  cfg.Observer,
		newID:     cfg.NewID,
	}
}

// FSM exposes the invocation state machine so callers can register hooks.
func (e *Executor) FSM() *InvocationFSM {
	return e.fsm
}

// Execute resolves the action (unless req.Resolved is set), awaits the
// handler and applies onSuccess or onError. A handler failure without
// onError is returned unchanged. With onError, the failure is consumed and
// only a continuation error (for example from Dispatch) is returned.
func (e *Executor) Execute(ctx context.Context, req Request) error {
	inv := &Invocation{ID: e.newID(), Action: req.Action.Name, State: schema.InvocationIdle}
	ctx = logging.WithInvocationID(ctx, inv.ID)

	resolved := req.Resolved
	if resolved == nil {
		r := actions.ResolveAction(req.Action, req.Data)
		resolved = &r
	}
	inv.Action = resolved.Name
	if err := e.fsm.Transition(ctx, inv, schema.InvocationResolved); err != nil {
		return err
	}

	if req.Handler == nil {
		inv.Err = schema.NewErrorf(schema.ErrCodeActionUnavailable, "action %q has no handler", resolved.Name)
		if err := e.fsm.Transition(ctx, inv, schema.InvocationFailed); err != nil {
			return err
		}
		e.observe(resolved.Name, metrics.OutcomeFailed, 0)
		e.logger.WarnContext(ctx, "action has no handler", slog.String("action", resolved.Name))
		return inv.Err
	}

	if err := e.fsm.Transition(ctx, inv, schema.InvocationInvoking); err != nil {
		return err
	}
	start := time.Now()
	handlerErr := invoke(ctx, req.Handler, resolved.Params)
	elapsed := time.Since(start)

	if handlerErr == nil {
		if err := e.fsm.Transition(ctx, inv, schema.InvocationSucceeded); err != nil {
			return err
		}
		e.observe(resolved.Name, metrics.OutcomeSucceeded, elapsed)
		e.logger.DebugContext(ctx, "action succeeded", slog.String("action", resolved.Name), slog.Duration("elapsed", elapsed))
		return e.continueWith(ctx, inv, resolved.OnSuccess, req.Callbacks, nil)
	}

	inv.Err = handlerErr
	if err := e.fsm.Transition(ctx, inv, schema.InvocationFailed); err != nil {
		return err
	}
	if resolved.OnError == nil {
		e.observe(resolved.Name, metrics.OutcomeFailed, elapsed)
		e.logger.DebugContext(ctx, "action failed", slog.String("action", resolved.Name), slog.Any("error", handlerErr))
		return handlerErr
	}
	e.observe(resolved.Name, metrics.OutcomeHandled, elapsed)
	e.logger.DebugContext(ctx, "action failed, applying onError", slog.String("action", resolved.Name), slog.Any("error", handlerErr))
	return e.continueWith(ctx, inv, resolved.OnError, req.Callbacks, handlerErr)
}

func (e *Executor) continueWith(ctx context.Context, inv *Invocation, c *schema.Continuation, cb Callbacks, cause error) error {
	if c == nil {
		return nil
	}
	kind, err := ApplyContinuation(ctx, c, cb, cause)
	if err != nil {
		return err
	}
	if e.publisher != nil {
		_ = e.publisher.Publish(ctx, streaming.StreamEvent{
			SessionID:    logging.SessionID(ctx),
			InvocationID: inv.ID,
			EventType:    schema.EventContinuationApplied,
			Action:       inv.Action,
			Payload:      map[string]any{"kind": string(kind)},
		})
	}
	return nil
}

func (e *Executor) observe(action, outcome string, d time.Duration) {
	if e.observer != nil {
		e.observer.ObserveAction(action, outcome, d)
	}
}

// invoke calls h, converting a panic into an ACTION_FAILED error.
func invoke(ctx context.Context, h actions.Handler, params map[string]any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = schema.NewErrorf(schema.ErrCodeActionFailed, "handler panicked: %v", r)
		}
	}()
	return h(ctx, params)
}
