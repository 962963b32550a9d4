package handlers

import (
	"net/http"

	"github.com/agentstation/placement/internal/server/response"
)

// HandleListStudents handles GET /student/get.
func (h *Handlers) HandleListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.api.ListStudents(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, nonNil(students))
}

// HandleListPerformances handles GET /student-performance/get.
func (h *Handlers) HandleListPerformances(w http.ResponseWriter, r *http.Request) {
	perfs, err := h.api.ListPerformances(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, nonNil(perfs))
}
