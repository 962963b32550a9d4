package handlers

import (
	"net/http"

	"github.com/agentstation/placement/internal/server/events"
	"github.com/agentstation/placement/internal/server/response"
	"github.com/agentstation/placement/pkg/drives"
)

// HandleListCompanies handles GET /company/get.
func (h *Handlers) HandleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.api.ListCompanies(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, nonNil(companies))
}

// HandleCreateCompany handles POST /company/add.
func (h *Handlers) HandleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var c drives.Company
	if !decode(w, r, &c) {
		return
	}
	created, err := h.api.CreateCompany(r.Context(), c)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.broker.Publish(events.CompanyCreated, created)
	response.OK(w, created)
}

// HandleUpdateCompany handles PATCH /company/update/{id}.
func (h *Handlers) HandleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := required(w, r, "id")
	if !ok {
		return
	}
	var c drives.Company
	if !decode(w, r, &c) {
		return
	}
	updated, err := h.api.UpdateCompany(r.Context(), id, c)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.broker.Publish(events.CompanyUpdated, updated)
	response.OK(w, updated)
}

// HandleListDriveCompanies handles GET /drive_company/get/drive/{driveId}.
// It answers with the IDs of the attached companies.
func (h *Handlers) HandleListDriveCompanies(w http.ResponseWriter, r *http.Request) {
	driveID, ok := required(w, r, "driveId")
	if !ok {
		return
	}
	ids, err := h.api.ListDriveCompanyIDs(r.Context(), driveID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, nonNil(ids))
}

// HandleAddDriveCompany handles POST /drive_company/add.
func (h *Handlers) HandleAddDriveCompany(w http.ResponseWriter, r *http.Request) {
	var dc drives.DriveCompany
	if !decode(w, r, &dc) {
		return
	}
	created, err := h.api.AddDriveCompany(r.Context(), dc.Drive, dc.Company)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.broker.Publish(events.CompanyAttached, created)
	response.OK(w, created)
}

// HandleDeleteDriveCompaniesByDrive handles
// DELETE /drive_company/delete/drive/{id}.
func (h *Handlers) HandleDeleteDriveCompaniesByDrive(w http.ResponseWriter, r *http.Request) {
	id, ok := required(w, r, "id")
	if !ok {
		return
	}
	if err := h.api.DeleteDriveCompaniesByDrive(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.broker.Publish(events.CompanyDetached, map[string]string{"drive_id": id})
	response.Message(w, "Drive companies deleted")
}

// HandleDeleteDriveCompaniesByCompany handles
// DELETE /drive_company/delete/company/{id}.
func (h *Handlers) HandleDeleteDriveCompaniesByCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := required(w, r, "id")
	if !ok {
		return
	}
	if err := h.api.DeleteDriveCompaniesByCompany(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.broker.Publish(events.CompanyDetached, map[string]string{"company_id": id})
	response.Message(w, "Drive companies deleted")
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
