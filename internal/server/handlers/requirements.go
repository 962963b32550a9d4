package handlers

import (
	"net/http"

	"github.com/agentstation/placement/internal/server/events"
	"github.com/agentstation/placement/internal/server/response"
	"github.com/agentstation/placement/pkg/drives"
)

// HandleListRequirements handles GET /requirements/get/job/{jobId}.
func (h *Handlers) HandleListRequirements(w http.ResponseWriter, r *http.Request) {
	jobID, ok := required(w, r, "jobId")
	if !ok {
		return
	}
	reqs, err := h.api.ListRequirements(r.Context(), jobID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, nonNil(reqs))
}

// HandleCreateRequirement handles POST /requirements/add/{jobId}.
func (h *Handlers) HandleCreateRequirement(w http.ResponseWriter, r *http.Request) {
	jobID, ok := required(w, r, "jobId")
	if !ok {
		return
	}
	var req drives.Requirement
	if !decode(w, r, &req) {
		return
	}
	created, err := h.api.CreateRequirement(r.Context(), jobID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.broker.Publish(events.RequirementSaved, created)
	response.OK(w, created)
}

// HandleUpdateRequirement handles PATCH /requirements/update/{id}.
func (h *Handlers) HandleUpdateRequirement(w http.ResponseWriter, r *http.Request) {
	id, ok := required(w, r, "id")
	if !ok {
		return
	}
	var req drives.Requirement
	if !decode(w, r, &req) {
		return
	}
	updated, err := h.api.UpdateRequirement(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.broker.Publish(events.RequirementSaved, updated)
	response.OK(w, updated)
}
