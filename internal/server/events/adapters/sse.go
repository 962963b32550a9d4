package adapters

import (
	"strconv"

	"github.com/agentstation/placement/internal/server/events"
	"github.com/agentstation/placement/internal/server/sse"
)

// SSESubscriber forwards events to every SSE stream of a broadcaster.
type SSESubscriber struct {
	broadcaster *sse.Broadcaster
}

// NewSSESubscriber creates a new SSE subscriber.
func NewSSESubscriber(broadcaster *sse.Broadcaster) *SSESubscriber {
	return &SSESubscriber{broadcaster: broadcaster}
}

// Send broadcasts the event on the SSE streams. The event ID is the
// publish time in nanoseconds.
func (s *SSESubscriber) Send(event events.Event) error {
	s.broadcaster.Broadcast(sse.Event{
		Event: string(event.Type),
		ID:    strconv.FormatInt(event.Timestamp.UnixNano(), 10),
		Data:  event.Data,
	})
	return nil
}

// Close is a no-op; the broadcaster owns its streams.
func (s *SSESubscriber) Close() error {
	return nil
}
