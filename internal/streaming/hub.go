package streaming

import "context"

// StreamEvent is a data-change or action-lifecycle event delivered to async subscribers.
type StreamEvent struct {
	SessionID    string `json:"session_id,omitempty"`
	InvocationID string `json:"invocation_id,omitempty"`
	EventType    string `json:"event_type"`
	Action       string `json:"action,omitempty"`
	Path         string `json:"path,omitempty"`
	Payload      any    `json:"payload,omitempty"`
}

// EventFilter specifies which events a subscriber wants to receive.
type EventFilter struct {
	SessionID  string   `json:"session_id,omitempty"`
	Action     string   `json:"action,omitempty"`
	EventTypes []string `json:"event_types,omitempty"`
}

// EventHub provides pub/sub for session events.
type EventHub interface {
	Publish(ctx context.Context, event StreamEvent) error
	Subscribe(ctx context.Context, filter EventFilter) (<-chan StreamEvent, func(), error)
}
