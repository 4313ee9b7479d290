package schema

import (
	"encoding/json"
	"fmt"
)

// ErrorMessagePlaceholder is replaced with the handler error message inside
// string values of an onError set continuation.
const ErrorMessagePlaceholder = "$error.message"

// Action is a named, data-bound side effect declared by a UI element.
type Action struct {
	Name      string                  `json:"name"`
	Params    map[string]DynamicValue `json:"params,omitempty"`
	Confirm   *ConfirmSpec            `json:"confirm,omitempty"`
	OnSuccess *Continuation           `json:"onSuccess,omitempty"`
	OnError   *Continuation           `json:"onError,omitempty"`
}

// ConfirmSpec is the prompt shown before an action runs. Both fields are
// ${path} templates. An empty Message means no message.
type ConfirmSpec struct {
	Title   string `json:"title"`
	Message string `json:"message,omitempty"`
}

// ResolvedAction is an Action with params resolved and confirmation text
// interpolated. Continuations are carried through untouched.
type ResolvedAction struct {
	Name      string         `json:"name"`
	Params    map[string]any `json:"params"`
	Confirm   *ConfirmSpec   `json:"confirm,omitempty"`
	OnSuccess *Continuation  `json:"onSuccess,omitempty"`
	OnError   *Continuation  `json:"onError,omitempty"`
}

// ContinuationKind discriminates the three continuation forms.
type ContinuationKind string

const (
	ContinuationNavigate ContinuationKind = "navigate"
	ContinuationSet      ContinuationKind = "set"
	ContinuationAction   ContinuationKind = "action"
)

// Continuation is applied after an action settles. Exactly one of Navigate,
// Set or Action is populated.
type Continuation struct {
	Navigate string         `json:"navigate,omitempty"`
	Set      map[string]any `json:"set,omitempty"`
	Action   string         `json:"action,omitempty"`
}

// NavigateTo builds a navigate continuation.
func NavigateTo(path string) *Continuation {
	return &Continuation{Navigate: path}
}

// SetValues builds a set continuation.
func SetValues(values map[string]any) *Continuation {
	if values == nil {
		values = map[string]any{}
	}
	return &Continuation{Set: values}
}

// InvokeAction builds a continuation that dispatches another named action.
func InvokeAction(name string) *Continuation {
	return &Continuation{Action: name}
}

// Kind returns the populated form, or an INVALID_CONTINUATION error when
// zero or several forms are set.
func (c *Continuation) Kind() (ContinuationKind, error) {
	var kinds []ContinuationKind
	if c.Navigate != "" {
		kinds = append(kinds, ContinuationNavigate)
	}
	if c.Set != nil {
		kinds = append(kinds, ContinuationSet)
	}
	if c.Action != "" {
		kinds = append(kinds, ContinuationAction)
	}
	switch len(kinds) {
	case 1:
		return kinds[0], nil
	case 0:
		return "", NewError(ErrCodeInvalidContinuation, "continuation has no navigate, set or action")
	default:
		return "", NewErrorf(ErrCodeInvalidContinuation, "continuation sets %d forms, expected exactly one", len(kinds)).
			WithDetails(map[string]any{"forms": kinds})
	}
}

// UnmarshalJSON rejects continuations that do not populate exactly one form.
func (c *Continuation) UnmarshalJSON(data []byte) error {
	type plain Continuation
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return NewError(ErrCodeDecode, "invalid continuation").WithCause(err)
	}
	cont := Continuation(p)
	if _, err := cont.Kind(); err != nil {
		return err
	}
	*c = cont
	return nil
}

// DecodeAction converts a decoded JSON object (e.g. a resolved element prop)
// into an Action.
func DecodeAction(v any) (Action, error) {
	var a Action
	if v == nil {
		return a, NewError(ErrCodeDecode, "action is nil")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return a, NewError(ErrCodeDecode, "action is not serializable").WithCause(err)
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return a, err
	}
	if a.Name == "" {
		return a, NewError(ErrCodeDecode, "action name is empty")
	}
	return a, nil
}

// SimpleAction builds an action with a name and optional literal params.
func SimpleAction(name string, params map[string]any) Action {
	return Action{Name: name, Params: literalParams(params)}
}

// WithConfirm builds an action that asks for confirmation first.
func WithConfirm(name string, confirm ConfirmSpec, params map[string]any) Action {
	a := SimpleAction(name, params)
	a.Confirm = &confirm
	return a
}

// WithSuccess builds an action with a success continuation.
func WithSuccess(name string, onSuccess *Continuation, params map[string]any) Action {
	a := SimpleAction(name, params)
	a.OnSuccess = onSuccess
	return a
}

// WithError builds an action with an error continuation.
func WithError(name string, onError *Continuation, params map[string]any) Action {
	a := SimpleAction(name, params)
	a.OnError = onError
	return a
}

func literalParams(params map[string]any) map[string]DynamicValue {
	if params == nil {
		return nil
	}
	out := make(map[string]DynamicValue, len(params))
	for k, v := range params {
		if dv, ok := v.(DynamicValue); ok {
			out[k] = dv
			continue
		}
		out[k] = ParseDynamicValue(v)
	}
	return out
}

func (a Action) String() string {
	return fmt.Sprintf("action(%s)", a.Name)
}
