package server

import (
	"net/http"

	"github.com/agentstation/placement/internal/server/handlers"
	"github.com/agentstation/placement/internal/server/middleware"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(
		s.api,
		s.broker,
		s.wsHub,
		s.sseBroadcaster,
		&s.upgrader,
		s.logger,
	)

	registerRoutes(mux, h)

	return s.applyMiddleware(mux)
}

// registerRoutes registers the PMS REST routes. Paths mirror the
// production backend so backend.Client works against either.
func registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	// Favicon handler (return 204 No Content to avoid 404 logs)
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /health", h.HandleHealth)

	// Drives
	mux.HandleFunc("GET /drive/get/{id}", h.HandleGetDrive)
	mux.HandleFunc("POST /drive/add", h.HandleCreateDrive)
	mux.HandleFunc("PATCH /drive/update/{id}", h.HandleUpdateDrive)
	mux.HandleFunc("DELETE /drive/delete/{id}", h.HandleDeleteDrive)
	mux.HandleFunc("POST /drive/publish/{id}", h.HandlePublishDrive)

	// Drive to company associations
	mux.HandleFunc("GET /drive_company/get/drive/{driveId}", h.HandleListDriveCompanies)
	mux.HandleFunc("POST /drive_company/add", h.HandleAddDriveCompany)
	mux.HandleFunc("DELETE /drive_company/delete/drive/{id}", h.HandleDeleteDriveCompaniesByDrive)
	mux.HandleFunc("DELETE /drive_company/delete/company/{id}", h.HandleDeleteDriveCompaniesByCompany)

	// Companies
	mux.HandleFunc("GET /company/get", h.HandleListCompanies)
	mux.HandleFunc("POST /company/add", h.HandleCreateCompany)
	mux.HandleFunc("PATCH /company/update/{id}", h.HandleUpdateCompany)

	// Jobs
	mux.HandleFunc("GET /job/get/drive/{driveId}", h.HandleListJobsByDrive)
	mux.HandleFunc("POST /job/add/{driveId}/{companyId}", h.HandleCreateJob)
	mux.HandleFunc("PATCH /job/update/{id}", h.HandleUpdateJob)
	mux.HandleFunc("DELETE /job/delete/{id}", h.HandleDeleteJob)
	mux.HandleFunc("DELETE /job/delete/drive/{driveId}", h.HandleDeleteJobsByDrive)
	mux.HandleFunc("DELETE /job/delete/drivecompany/{driveId}/{companyId}", h.HandleDeleteJobsByDriveCompany)
	mux.HandleFunc("GET /job/{jobId}/eligible-students", h.HandleEligibleStudents)

	// Requirements
	mux.HandleFunc("GET /requirements/get/job/{jobId}", h.HandleListRequirements)
	mux.HandleFunc("POST /requirements/add/{jobId}", h.HandleCreateRequirement)
	mux.HandleFunc("PATCH /requirements/update/{id}", h.HandleUpdateRequirement)

	// Students
	mux.HandleFunc("GET /student/get", h.HandleListStudents)
	mux.HandleFunc("GET /student-performance/get", h.HandleListPerformances)

	// Real-time endpoints
	mux.HandleFunc("GET /events/ws", h.HandleWebSocket)
	mux.HandleFunc("GET /events/stream", h.HandleSSE)
}

// applyMiddleware wraps handler with middleware chain. The outermost
// middleware runs first: recovery, logging, CORS, then auth.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config

	if cfg.AuthEnabled {
		authConfig := middleware.DefaultAuthConfig()
		authConfig.Enabled = true
		authConfig.APIKey = cfg.APIKey
		handler = middleware.Auth(authConfig, s.logger)(handler)
	}

	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
		} else {
			corsConfig.AllowAll = true
		}
		handler = middleware.CORS(corsConfig)(handler)
	}

	// Logging and recovery (always enabled)
	handler = middleware.Logger(s.logger)(handler)
	handler = middleware.Recovery(s.logger)(handler)
	handler = middleware.RequestID(handler)

	return handler
}
