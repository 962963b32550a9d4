// Package adapters connects the event broker to the realtime transports.
package adapters

import (
	"github.com/agentstation/placement/internal/server/events"
	ws "github.com/agentstation/placement/internal/server/websocket"
)

// WebSocketSubscriber forwards events to every WebSocket client of a hub.
type WebSocketSubscriber struct {
	hub *ws.Hub
}

// NewWebSocketSubscriber creates a new WebSocket subscriber.
func NewWebSocketSubscriber(hub *ws.Hub) *WebSocketSubscriber {
	return &WebSocketSubscriber{hub: hub}
}

// Send broadcasts the event as a WebSocket message.
func (w *WebSocketSubscriber) Send(event events.Event) error {
	w.hub.Broadcast(ws.Message{
		Type:      string(event.Type),
		Timestamp: event.Timestamp,
		Data:      event.Data,
	})
	return nil
}

// Close is a no-op; the hub owns its connections.
func (w *WebSocketSubscriber) Close() error {
	return nil
}
