// Package handlers serves the PMS REST endpoints from a backend.API and
// announces every change on the event broker.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/placement/internal/server/events"
	"github.com/agentstation/placement/internal/server/response"
	"github.com/agentstation/placement/internal/server/sse"
	ws "github.com/agentstation/placement/internal/server/websocket"
	"github.com/agentstation/placement/pkg/backend"
	"github.com/agentstation/placement/pkg/constants"
	"github.com/agentstation/placement/pkg/errors"
	"github.com/agentstation/placement/pkg/logging"
)

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	api            backend.API
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       *websocket.Upgrader
	logger         *zerolog.Logger
}

// New creates a new Handlers instance.
func New(
	api backend.API,
	broker *events.Broker,
	wsHub *ws.Hub,
	sseBroadcaster *sse.Broadcaster,
	upgrader *websocket.Upgrader,
	logger *zerolog.Logger,
) *Handlers {
	return &Handlers{
		api:            api,
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader:       upgrader,
		logger:         logger,
	}
}

// decode reads a JSON body into v. On failure it writes a 422 response and
// returns false.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.Fail(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// fail logs err at the level its status deserves and writes the response.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	log := logging.FromContext(r.Context())
	if response.Status(err) >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("Backend operation failed")
	} else {
		log.Debug().Err(err).Msg("Request rejected")
	}
	response.Error(w, err)
}

// required returns the path value name, writing a 422 when it is blank.
func required(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := r.PathValue(name)
	if v == "" {
		response.Error(w, errors.NewValidationError(name, v, "is required"))
		return "", false
	}
	return v, true
}
