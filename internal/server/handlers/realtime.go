package handlers

import (
	"net/http"

	"github.com/agentstation/placement/internal/server/events"
)

// HandleWebSocket handles GET /events/ws.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if err := h.wsHub.Serve(h.upgrader, w, r); err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	h.broker.Publish(events.ClientConnected, map[string]any{
		"transport": "websocket",
	})
}

// HandleSSE handles GET /events/stream.
func (h *Handlers) HandleSSE(w http.ResponseWriter, r *http.Request) {
	h.sseBroadcaster.ServeHTTP(w, r)
}
