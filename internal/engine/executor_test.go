package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/jsonrender/internal/datastore"
	"github.com/rendis/jsonrender/internal/logging"
	"github.com/rendis/jsonrender/internal/metrics"
	"github.com/rendis/jsonrender/pkg/schema"
)

// recorder captures continuation callbacks.
type recorder struct {
	sets        []setCall
	navigated   []string
	dispatched  []string
	dispatchErr error
}

type setCall struct {
	key   string
	value any
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		SetData:  func(key string, value any) { r.sets = append(r.sets, setCall{key, value}) },
		Navigate: func(path string) { r.navigated = append(r.navigated, path) },
		Dispatch: func(_ context.Context, name string) error {
			r.dispatched = append(r.dispatched, name)
			return r.dispatchErr
		},
	}
}

// recordingObserver captures action outcomes.
type recordingObserver struct {
	outcomes []string
}

func (o *recordingObserver) ObserveAction(action, outcome string, _ time.Duration) {
	o.outcomes = append(o.outcomes, action+":"+outcome)
}

func okHandler(context.Context, map[string]any) error { return nil }

func failingHandler(err error) func(context.Context, map[string]any) error {
	return func(context.Context, map[string]any) error { return err }
}

func newTestExecutor(pub EventPublisher, obs Observer) *Executor {
	return NewExecutor(ExecutorConfig{
		Publisher: pub,
		Observer:  obs,
		NewID:     func() string { return "inv-test" },
	})
}

func TestExecutor_ResolvesParamsForHandler(t *testing.T) {
	exec := newTestExecutor(nil, nil)
	data := datastore.Data{"form": map[string]any{"email": "a@b.c"}}

	var got map[string]any
	err := exec.Execute(context.Background(), Request{
		Action: schema.Action{
			Name: "submit",
			Params: map[string]schema.DynamicValue{
				"email":  schema.PathRef("/form/email"),
				"source": schema.Literal("web"),
			},
		},
		Data: data,
		Handler: func(_ context.Context, params map[string]any) error {
			got = params
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"email": "a@b.c", "source": "web"}, got)
}

func TestExecutor_UsesPreResolvedAction(t *testing.T) {
	exec := newTestExecutor(nil, nil)

	var got map[string]any
	err := exec.Execute(context.Background(), Request{
		Action:   schema.Action{Name: "submit", Params: map[string]schema.DynamicValue{"x": schema.PathRef("/x")}},
		Resolved: &schema.ResolvedAction{Name: "submit", Params: map[string]any{"x": "frozen"}},
		Data:     datastore.Data{"x": "live"},
		Handler: func(_ context.Context, params map[string]any) error {
			got = params
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "frozen", got["x"])
}

func TestExecutor_OnSuccessSet(t *testing.T) {
	rec := &recorder{}
	exec := newTestExecutor(nil, nil)

	err := exec.Execute(context.Background(), Request{
		Action:    schema.WithSuccess("save", schema.SetValues(map[string]any{"saved": true}), nil),
		Handler:   okHandler,
		Callbacks: rec.callbacks(),
	})
	require.NoError(t, err)
	assert.Equal(t, []setCall{{"saved", true}}, rec.sets)
	assert.Empty(t, rec.navigated)
	assert.Empty(t, rec.dispatched)
}

func TestExecutor_OnSuccessSetMultipleKeysInOrder(t *testing.T) {
	rec := &recorder{}
	exec := newTestExecutor(nil, nil)

	err := exec.Execute(context.Background(), Request{
		Action:    schema.WithSuccess("save", schema.SetValues(map[string]any{"b": 2, "a": "$error.message"}), nil),
		Handler:   okHandler,
		Callbacks: rec.callbacks(),
	})
	require.NoError(t, err)
	assert.Equal(t, []setCall{{"a", "$error.message"}, {"b", 2}}, rec.sets, "no substitution on success")
}

func TestExecutor_OnSuccessNavigate(t *testing.T) {
	rec := &recorder{}
	exec := newTestExecutor(nil, nil)

	err := exec.Execute(context.Background(), Request{
		Action:    schema.WithSuccess("save", schema.NavigateTo("/dashboard"), nil),
		Handler:   okHandler,
		Callbacks: rec.callbacks(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/dashboard"}, rec.navigated)
}

func TestExecutor_OnSuccessNavigateWithoutCallback(t *testing.T) {
	exec := newTestExecutor(nil, nil)

	err := exec.Execute(context.Background(), Request{
		Action:  schema.WithSuccess("save", schema.NavigateTo("/dashboard"), nil),
		Handler: okHandler,
	})
	assert.NoError(t, err)
}

func TestExecutor_OnSuccessAction(t *testing.T) {
	rec := &recorder{}
	exec := newTestExecutor(nil, nil)

	err := exec.Execute(context.Background(), Request{
		Action:    schema.WithSuccess("save", schema.InvokeAction("refresh"), nil),
		Handler:   okHandler,
		Callbacks: rec.callbacks(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"refresh"}, rec.dispatched)
}

func TestExecutor_DispatchErrorPropagates(t *testing.T) {
	rec := &recorder{dispatchErr: errors.New("chained failed")}
	exec := newTestExecutor(nil, nil)

	err := exec.Execute(context.Background(), Request{
		Action:    schema.WithSuccess("save", schema.InvokeAction("refresh"), nil),
		Handler:   okHandler,
		Callbacks: rec.callbacks(),
	})
	assert.EqualError(t, err, "chained failed")
}

func TestExecutor_SuccessWithoutContinuationIsSilent(t *testing.T) {
	rec := &recorder{}
	exec := newTestExecutor(nil, nil)

	err := exec.Execute(context.Background(), Request{
		Action:    schema.SimpleAction("ping", nil),
		Handler:   okHandler,
		Callbacks: rec.callbacks(),
	})
	require.NoError(t, err)
	assert.Empty(t, rec.sets)
	assert.Empty(t, rec.navigated)
	assert.Empty(t, rec.dispatched)
}

func TestExecutor_FailureWithoutOnErrorRethrows(t *testing.T) {
	handlerErr := errors.New("Unhandled")
	exec := newTestExecutor(nil, nil)

	err := exec.Execute(context.Background(), Request{
		Action:  schema.SimpleAction("save", nil),
		Handler: failingHandler(handlerErr),
	})
	assert.Same(t, handlerErr, err)
}

func TestExecutor_OnErrorSetSubstitutesMessage(t *testing.T) {
	rec := &recorder{}
	exec := newTestExecutor(nil, nil)

	err := exec.Execute(context.Background(), Request{
		Action: schema.WithError("save", schema.SetValues(map[string]any{
			"error":  schema.ErrorMessagePlaceholder,
			"banner": "Save failed: $error.message",
			"retry":  true,
		}), nil),
		Handler:   failingHandler(errors.New("Something went wrong")),
		Callbacks: rec.callbacks(),
	})
	require.NoError(t, err)
	assert.Equal(t, []setCall{
		{"banner", "Save failed: Something went wrong"},
		{"error", "Something went wrong"},
		{"retry", true},
	}, rec.sets)
}

func TestExecutor_OnErrorUsesEngineErrorMessage(t *testing.T) {
	rec := &recorder{}
	exec := newTestExecutor(nil, nil)

	err := exec.Execute(context.Background(), Request{
		Action:    schema.WithError("save", schema.SetValues(map[string]any{"error": "$error.message"}), nil),
		Handler:   failingHandler(schema.NewError(schema.ErrCodeActionFailed, "quota exceeded")),
		Callbacks: rec.callbacks(),
	})
	require.NoError(t, err)
	assert.Equal(t, []setCall{{"error", "quota exceeded"}}, rec.sets)
}

func TestExecutor_OnErrorAction(t *testing.T) {
	rec := &recorder{}
	exec := newTestExecutor(nil, nil)

	err := exec.Execute(context.Background(), Request{
		Action:    schema.WithError("save", schema.InvokeAction("handleError"), nil),
		Handler:   failingHandler(errors.New("Failed")),
		Callbacks: rec.callbacks(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"handleError"}, rec.dispatched)
}

func TestExecutor_OnErrorNavigate(t *testing.T) {
	rec := &recorder{}
	exec := newTestExecutor(nil, nil)

	err := exec.Execute(context.Background(), Request{
		Action:    schema.WithError("save", schema.NavigateTo("/error"), nil),
		Handler:   failingHandler(errors.New("Failed")),
		Callbacks: rec.callbacks(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/error"}, rec.navigated)
}

func TestExecutor_HandlerPanicRecovered(t *testing.T) {
	rec := &recorder{}
	exec := newTestExecutor(nil, nil)

	err := exec.Execute(context.Background(), Request{
		Action: schema.WithError("save", schema.SetValues(map[string]any{"error": "$error.message"}), nil),
		Handler: func(context.Context, map[string]any) error {
			panic("nil map")
		},
		Callbacks: rec.callbacks(),
	})
	require.NoError(t, err)
	require.Len(t, rec.sets, 1)
	assert.Equal(t, "handler panicked: nil map", rec.sets[0].value)
}

func TestExecutor_HandlerPanicWithoutOnError(t *testing.T) {
	exec := newTestExecutor(nil, nil)

	err := exec.Execute(context.Background(), Request{
		Action:  schema.SimpleAction("save", nil),
		Handler: func(context.Context, map[string]any) error { panic("boom") },
	})
	var engErr *schema.EngineError
	require.True(t, errors.As(err, &engErr))
	assert.Equal(t, schema.ErrCodeActionFailed, engErr.Code)
}

func TestExecutor_MissingHandler(t *testing.T) {
	rec := &recorder{}
	pub := &mockPublisher{}
	obs := &recordingObserver{}
	exec := newTestExecutor(pub, obs)

	err := exec.Execute(context.Background(), Request{
		Action:    schema.WithError("save", schema.InvokeAction("handleError"), nil),
		Callbacks: rec.callbacks(),
	})
	var engErr *schema.EngineError
	require.True(t, errors.As(err, &engErr))
	assert.Equal(t, schema.ErrCodeActionUnavailable, engErr.Code)
	assert.Empty(t, rec.dispatched, "onError is for handler failures only")
	assert.Equal(t, []string{schema.EventActionResolved, schema.EventActionFailed}, pub.Types())
	assert.Equal(t, []string{"save:" + metrics.OutcomeFailed}, obs.outcomes)
}

func TestExecutor_InvalidContinuation(t *testing.T) {
	exec := newTestExecutor(nil, nil)

	err := exec.Execute(context.Background(), Request{
		Action: schema.Action{
			Name:      "save",
			OnSuccess: &schema.Continuation{Navigate: "/a", Action: "b"},
		},
		Handler: okHandler,
	})
	var engErr *schema.EngineError
	require.True(t, errors.As(err, &engErr))
	assert.Equal(t, schema.ErrCodeInvalidContinuation, engErr.Code)
}

func TestExecutor_InvalidOnErrorKeepsHandlerError(t *testing.T) {
	exec := newTestExecutor(nil, nil)
	handlerErr := errors.New("disk full")
	failing := func(context.Context, map[string]any) error { return handlerErr }

	err := exec.Execute(context.Background(), Request{
		Action:  schema.Action{Name: "save", OnError: &schema.Continuation{}},
		Handler: failing,
	})
	var engErr *schema.EngineError
	require.True(t, errors.As(err, &engErr))
	assert.Equal(t, schema.ErrCodeInvalidContinuation, engErr.Code)
	assert.ErrorIs(t, err, handlerErr)
}

func TestExecutor_EmitsLifecycleEvents(t *testing.T) {
	pub := &mockPublisher{}
	exec := newTestExecutor(pub, nil)

	err := exec.Execute(context.Background(), Request{
		Action:  schema.WithSuccess("save", schema.NavigateTo("/done"), nil),
		Handler: okHandler,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		schema.EventActionResolved,
		schema.EventActionInvoking,
		schema.EventActionSucceeded,
		schema.EventContinuationApplied,
	}, pub.Types())

	events := pub.Events()
	assert.Equal(t, "inv-test", events[0].InvocationID)
	assert.Equal(t, map[string]any{"kind": "navigate"}, events[3].Payload)
}

func TestExecutor_ObservesOutcomes(t *testing.T) {
	obs := &recordingObserver{}
	exec := newTestExecutor(nil, obs)
	ctx := context.Background()

	require.NoError(t, exec.Execute(ctx, Request{Action: schema.SimpleAction("a", nil), Handler: okHandler}))
	require.Error(t, exec.Execute(ctx, Request{Action: schema.SimpleAction("b", nil), Handler: failingHandler(errors.New("x"))}))
	require.NoError(t, exec.Execute(ctx, Request{
		Action:  schema.WithError("c", schema.NavigateTo("/"), nil),
		Handler: failingHandler(errors.New("x")),
	}))

	assert.Equal(t, []string{
		"a:" + metrics.OutcomeSucceeded,
		"b:" + metrics.OutcomeFailed,
		"c:" + metrics.OutcomeHandled,
	}, obs.outcomes)
}

func TestExecutor_InvocationIDInContext(t *testing.T) {
	exec := NewExecutor(ExecutorConfig{})

	var id string
	err := exec.Execute(context.Background(), Request{
		Action: schema.SimpleAction("a", nil),
		Handler: func(ctx context.Context, _ map[string]any) error {
			id = logging.InvocationID(ctx)
			return nil
		},
	})
	require.NoError(t, err)
	assert.Len(t, id, 36, "uuid string")
}

func TestExecutor_HookCanVetoInvocation(t *testing.T) {
	exec := newTestExecutor(nil, nil)
	veto := errors.New("read-only session")
	exec.FSM().OnBefore(schema.InvocationResolved, schema.InvocationInvoking, func(*Invocation, schema.InvocationState, schema.InvocationState) error {
		return veto
	})

	called := false
	err := exec.Execute(context.Background(), Request{
		Action: schema.SimpleAction("a", nil),
		Handler: func(context.Context, map[string]any) error {
			called = true
			return nil
		},
	})
	assert.ErrorIs(t, err, veto)
	assert.False(t, called)
}
