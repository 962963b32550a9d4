package handlers

import (
	"net/http"

	"github.com/agentstation/placement/internal/server/events"
	"github.com/agentstation/placement/internal/server/response"
	"github.com/agentstation/placement/pkg/drives"
)

// HandleListJobsByDrive handles GET /job/get/drive/{driveId}.
func (h *Handlers) HandleListJobsByDrive(w http.ResponseWriter, r *http.Request) {
	driveID, ok := required(w, r, "driveId")
	if !ok {
		return
	}
	jobs, err := h.api.ListJobsByDrive(r.Context(), driveID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, nonNil(jobs))
}

// HandleCreateJob handles POST /job/add/{driveId}/{companyId}.
func (h *Handlers) HandleCreateJob(w http.ResponseWriter, r *http.Request) {
	driveID, ok := required(w, r, "driveId")
	if !ok {
		return
	}
	companyID, ok := required(w, r, "companyId")
	if !ok {
		return
	}
	var j drives.Job
	if !decode(w, r, &j) {
		return
	}
	created, err := h.api.CreateJob(r.Context(), driveID, companyID, j)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.broker.Publish(events.JobCreated, created)
	response.OK(w, created)
}

// HandleUpdateJob handles PATCH /job/update/{id}.
func (h *Handlers) HandleUpdateJob(w http.ResponseWriter, r *http.Request) {
	id, ok := required(w, r, "id")
	if !ok {
		return
	}
	var j drives.Job
	if !decode(w, r, &j) {
		return
	}
	updated, err := h.api.UpdateJob(r.Context(), id, j)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.broker.Publish(events.JobUpdated, updated)
	response.OK(w, updated)
}

// HandleDeleteJob handles DELETE /job/delete/{id}.
func (h *Handlers) HandleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id, ok := required(w, r, "id")
	if !ok {
		return
	}
	if err := h.api.DeleteJob(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.broker.Publish(events.JobDeleted, map[string]string{"job_id": id})
	response.Message(w, "Job deleted")
}

// HandleDeleteJobsByDrive handles DELETE /job/delete/drive/{driveId}.
func (h *Handlers) HandleDeleteJobsByDrive(w http.ResponseWriter, r *http.Request) {
	driveID, ok := required(w, r, "driveId")
	if !ok {
		return
	}
	if err := h.api.DeleteJobsByDrive(r.Context(), driveID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.broker.Publish(events.JobDeleted, map[string]string{"drive_id": driveID})
	response.Message(w, "Jobs deleted")
}

// HandleDeleteJobsByDriveCompany handles
// DELETE /job/delete/drivecompany/{driveId}/{companyId}.
func (h *Handlers) HandleDeleteJobsByDriveCompany(w http.ResponseWriter, r *http.Request) {
	driveID, ok := required(w, r, "driveId")
	if !ok {
		return
	}
	companyID, ok := required(w, r, "companyId")
	if !ok {
		return
	}
	if err := h.api.DeleteJobsByDriveCompany(r.Context(), driveID, companyID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.broker.Publish(events.JobDeleted, map[string]string{"drive_id": driveID, "company_id": companyID})
	response.Message(w, "Jobs deleted")
}

// HandleEligibleStudents handles GET /job/{jobId}/eligible-students.
func (h *Handlers) HandleEligibleStudents(w http.ResponseWriter, r *http.Request) {
	jobID, ok := required(w, r, "jobId")
	if !ok {
		return
	}
	ids, err := h.api.EligibleStudentIDs(r.Context(), jobID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, nonNil(ids))
}
