package schema

// Event type constants published on the event hub.
const (
	EventDataChanged = "data_changed"

	EventActionResolved  = "action_resolved"
	EventActionInvoking  = "action_invoking"
	EventActionSucceeded = "action_succeeded"
	EventActionFailed    = "action_failed"
	EventActionDeclined  = "action_declined"

	EventContinuationApplied = "continuation_applied"

	EventElementFallback = "element_fallback"
)

// InvocationState is the lifecycle state of a single action invocation.
type InvocationState string

const (
	InvocationIdle      InvocationState = "idle"
	InvocationResolved  InvocationState = "resolved"
	InvocationInvoking  InvocationState = "invoking"
	InvocationSucceeded InvocationState = "succeeded"
	InvocationFailed    InvocationState = "failed"
)

// IsTerminal reports whether no further transitions are possible.
func (s InvocationState) IsTerminal() bool {
	return s == InvocationSucceeded || s == InvocationFailed
}
