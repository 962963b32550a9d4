package handlers

import (
	"net/http"

	"github.com/agentstation/placement/internal/server/events"
	"github.com/agentstation/placement/internal/server/response"
	"github.com/agentstation/placement/pkg/drives"
)

// HandleGetDrive handles GET /drive/get/{id}.
func (h *Handlers) HandleGetDrive(w http.ResponseWriter, r *http.Request) {
	id, ok := required(w, r, "id")
	if !ok {
		return
	}
	d, err := h.api.GetDrive(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, d)
}

// HandleCreateDrive handles POST /drive/add.
func (h *Handlers) HandleCreateDrive(w http.ResponseWriter, r *http.Request) {
	var d drives.Drive
	if !decode(w, r, &d) {
		return
	}
	created, err := h.api.CreateDrive(r.Context(), d)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.broker.Publish(events.DriveCreated, created)
	response.OK(w, created)
}

// HandleUpdateDrive handles PATCH /drive/update/{id}.
func (h *Handlers) HandleUpdateDrive(w http.ResponseWriter, r *http.Request) {
	id, ok := required(w, r, "id")
	if !ok {
		return
	}
	var d drives.Drive
	if !decode(w, r, &d) {
		return
	}
	updated, err := h.api.UpdateDrive(r.Context(), id, d)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.broker.Publish(events.DriveUpdated, updated)
	response.OK(w, updated)
}

// HandleDeleteDrive handles DELETE /drive/delete/{id}.
func (h *Handlers) HandleDeleteDrive(w http.ResponseWriter, r *http.Request) {
	id, ok := required(w, r, "id")
	if !ok {
		return
	}
	if err := h.api.DeleteDrive(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.broker.Publish(events.DriveDeleted, map[string]string{"drive_id": id})
	response.Message(w, "Drive deleted")
}

// HandlePublishDrive handles POST /drive/publish/{id}. The body maps job
// IDs to the student IDs the drive is sent to.
func (h *Handlers) HandlePublishDrive(w http.ResponseWriter, r *http.Request) {
	id, ok := required(w, r, "id")
	if !ok {
		return
	}
	var jobStudents map[string][]string
	if !decode(w, r, &jobStudents) {
		return
	}
	if err := h.api.PublishDrive(r.Context(), id, jobStudents); err != nil {
		h.fail(w, r, err)
		return
	}
	h.broker.Publish(events.DrivePublished, map[string]any{
		"drive_id": id,
		"jobs":     jobStudents,
	})
	response.Message(w, "Drive published")
}
