// Package sse streams drive change events as Server-Sent Events.
package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/placement/pkg/constants"
)

// Broadcaster manages Server-Sent Events streams.
type Broadcaster struct {
	clients map[chan Event]struct{}
	events  chan Event
	stopped bool
	mu      sync.RWMutex
	logger  *zerolog.Logger
}

// NewBroadcaster creates a new SSE broadcaster.
func NewBroadcaster(logger *zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		clients: make(map[chan Event]struct{}),
		events:  make(chan Event, constants.ChannelBufferSize),
		logger:  logger,
	}
}

// Run fans events out to streams until ctx is done, then ends every stream.
func (b *Broadcaster) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			b.stopped = true
			for client := range b.clients {
				delete(b.clients, client)
				close(client)
			}
			b.mu.Unlock()
			b.logger.Debug().Msg("SSE broadcaster shut down")
			return

		case event := <-b.events:
			b.mu.RLock()
			for client := range b.clients {
				select {
				case client <- event:
				default:
					b.logger.Warn().Str("event", event.Event).Msg("SSE client buffer full, event skipped")
				}
			}
			b.mu.RUnlock()
		}
	}
}

// Broadcast queues an event for every stream.
func (b *Broadcaster) Broadcast(event Event) {
	select {
	case b.events <- event:
	default:
		b.logger.Warn().Msg("SSE broadcast channel full, event dropped")
	}
}

// ClientCount returns the number of open streams.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *Broadcaster) add() (chan Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return nil, false
	}
	client := make(chan Event, constants.ChannelBufferSize)
	b.clients[client] = struct{}{}
	return client, true
}

func (b *Broadcaster) remove(client chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[client]; ok {
		delete(b.clients, client)
		close(client)
	}
}

// ServeHTTP streams events until the request or the broadcaster ends.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	client, ok := b.add()
	if !ok {
		http.Error(w, "Event stream closed", http.StatusServiceUnavailable)
		return
	}
	defer b.remove(client)

	// Streams outlive the server's write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	b.writeEvent(w, flusher, Event{
		Event: "connected",
		Data: map[string]any{
			"message":   "Connected to placement updates",
			"timestamp": time.Now().UTC(),
		},
	})

	for {
		select {
		case event, open := <-client:
			if !open {
				return
			}
			b.writeEvent(w, flusher, event)
		case <-r.Context().Done():
			return
		}
	}
}

// writeEvent writes one event in text/event-stream framing.
func (b *Broadcaster) writeEvent(w http.ResponseWriter, flusher http.Flusher, event Event) {
	if event.Event != "" {
		_, _ = fmt.Fprintf(w, "event: %s\n", event.Event)
	}
	if event.ID != "" {
		_, _ = fmt.Fprintf(w, "id: %s\n", event.ID)
	}

	data, err := json.Marshal(event.Data)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to marshal SSE event data")
		return
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}

// Event is one SSE frame.
type Event struct {
	Event string `json:"event,omitempty"`
	ID    string `json:"id,omitempty"`
	Data  any    `json:"data"`
}
