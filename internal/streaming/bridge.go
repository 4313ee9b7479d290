package streaming

import (
	"context"

	"github.com/rendis/jsonrender/pkg/schema"
)

// ChangePublisher returns a store change callback that republishes every
// change as a data_changed event. Store notifications are synchronous; the
// hub never blocks, so the callback is safe to run inside a write.
func ChangePublisher(ctx context.Context, hub EventHub, sessionID string) func(path string, value any) {
	return func(path string, value any) {
		_ = hub.Publish(ctx, StreamEvent{
			SessionID: sessionID,
			EventType: schema.EventDataChanged,
			Path:      path,
			Payload:   value,
		})
	}
}
