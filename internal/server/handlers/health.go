package handlers

import (
	"net/http"

	"github.com/agentstation/placement/internal/server/response"
)

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":            "healthy",
		"service":           "placement-mock-backend",
		"websocket_clients": h.wsHub.ClientCount(),
		"sse_clients":       h.sseBroadcaster.ClientCount(),
		"subscribers":       h.broker.SubscriberCount(),
	})
}
