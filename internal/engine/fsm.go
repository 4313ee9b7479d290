package engine

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/rendis/jsonrender/internal/logging"
	"github.com/rendis/jsonrender/internal/streaming"
	"github.com/rendis/jsonrender/pkg/schema"
)

// TransitionHook is called before or after a state transition.
type TransitionHook func(inv *Invocation, from, to schema.InvocationState) error

// EventPublisher receives lifecycle events emitted on transitions.
// *streaming.MemoryHub satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, event streaming.StreamEvent) error
}

// Invocation is the state of one action execution.
type Invocation struct {
	ID     string
	Action string
	State  schema.InvocationState
	Err    error
}

type hookKey struct {
	from, to schema.InvocationState
}

// InvocationFSM manages invocation lifecycle state transitions.
type InvocationFSM struct {
	mu        sync.Mutex
	publisher EventPublisher
	logger    *slog.Logger
	before    map[hookKey][]TransitionHook
	after     map[hookKey][]TransitionHook
}

// NewInvocationFSM creates an FSM that emits events via publisher. Both
// arguments may be nil.
func NewInvocationFSM(publisher EventPublisher, logger *slog.Logger) *InvocationFSM {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &InvocationFSM{
		publisher: publisher,
		logger:    logger,
		before:    make(map[hookKey][]TransitionHook),
		after:     make(map[hookKey][]TransitionHook),
	}
}

// OnBefore registers a hook called before a transition.
func (f *InvocationFSM) OnBefore(from, to schema.InvocationState, hook TransitionHook) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := hookKey{from, to}
	f.before[key] = append(f.before[key], hook)
}

// OnAfter registers a hook called after a transition.
func (f *InvocationFSM) OnAfter(from, to schema.InvocationState, hook TransitionHook) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := hookKey{from, to}
	f.after[key] = append(f.after[key], hook)
}

// Transition validates and applies inv.State -> to, running hooks and
// publishing the matching event. A before hook error aborts the transition.
// Publish failures are logged and never fail the invocation.
func (f *InvocationFSM) Transition(ctx context.Context, inv *Invocation, to schema.InvocationState) error {
	from := inv.State
	if !isValidTransition(from, to) {
		return schema.NewErrorf(schema.ErrCodeInvalidTransition,
			"invalid invocation transition: %s -> %s", from, to).
			WithDetails(map[string]any{"invocation_id": inv.ID, "action": inv.Action, "from": string(from), "to": string(to)})
	}

	key := hookKey{from, to}
	f.mu.Lock()
	before := slices.Clone(f.before[key])
	after := slices.Clone(f.after[key])
	f.mu.Unlock()

	for _, hook := range before {
		if err := hook(inv, from, to); err != nil {
			return err
		}
	}

	inv.State = to
	f.emit(ctx, inv, to)

	for _, hook := range after {
		if err := hook(inv, from, to); err != nil {
			return err
		}
	}
	return nil
}

func (f *InvocationFSM) emit(ctx context.Context, inv *Invocation, to schema.InvocationState) {
	eventType := invocationEventType(to)
	if f.publisher == nil || eventType == "" {
		return
	}
	event := streaming.StreamEvent{
		SessionID:    logging.SessionID(ctx),
		InvocationID: inv.ID,
		EventType:    eventType,
		Action:       inv.Action,
	}
	if inv.Err != nil && to == schema.InvocationFailed {
		event.Payload = map[string]any{"error": inv.Err.Error()}
	}
	if err := f.publisher.Publish(ctx, event); err != nil {
		f.logger.WarnContext(ctx, "publish invocation event", slog.String("event", eventType), slog.Any("error", err))
	}
}

func isValidTransition(from, to schema.InvocationState) bool {
	return slices.Contains(ValidInvocationTransitions[from], to)
}

func invocationEventType(to schema.InvocationState) string {
	switch to {
	case schema.InvocationResolved:
		return schema.EventActionResolved
	case schema.InvocationInvoking:
		return schema.EventActionInvoking
	case schema.InvocationSucceeded:
		return schema.EventActionSucceeded
	case schema.InvocationFailed:
		return schema.EventActionFailed
	default:
		return ""
	}
}

// ValidInvocationTransitions defines the allowed state transitions for an invocation.
// Resolved -> Failed covers a missing handler, which never reaches Invoking.
var ValidInvocationTransitions = map[schema.InvocationState][]schema.InvocationState{
	schema.InvocationIdle:      {schema.InvocationResolved},
	schema.InvocationResolved:  {schema.InvocationInvoking, schema.InvocationFailed},
	schema.InvocationInvoking:  {schema.InvocationSucceeded, schema.InvocationFailed},
	schema.InvocationSucceeded: {},
	schema.InvocationFailed:    {},
}
