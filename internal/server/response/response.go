// Package response writes mock backend responses the way the PMS backend
// does: resources as bare JSON bodies and failures as {"detail": "..."}.
package response

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/agentstation/placement/pkg/errors"
)

// Detail is the FastAPI error body.
type Detail struct {
	Detail string `json:"detail"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encoding errors are ignored as headers are already sent
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes v with 200 status.
func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

// Created writes v with 201 status.
func Created(w http.ResponseWriter, v any) {
	JSON(w, http.StatusCreated, v)
}

// Message writes {"message": msg} with 200 status, as the backend does for
// deletes and publishes.
func Message(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusOK, map[string]string{"message": msg})
}

// Fail writes a detail body.
func Fail(w http.ResponseWriter, status int, detail string) {
	JSON(w, status, Detail{Detail: detail})
}

// BadRequest writes a 400 detail body.
func BadRequest(w http.ResponseWriter, detail string) {
	Fail(w, http.StatusBadRequest, detail)
}

// Unauthorized writes a 401 detail body.
func Unauthorized(w http.ResponseWriter, detail string) {
	Fail(w, http.StatusUnauthorized, detail)
}

// NotFound writes a 404 detail body.
func NotFound(w http.ResponseWriter, detail string) {
	Fail(w, http.StatusNotFound, detail)
}

// InternalError writes a 500 detail body without exposing err.
func InternalError(w http.ResponseWriter, _ error) {
	Fail(w, http.StatusInternalServerError, "Internal server error")
}

// Status returns the HTTP status for a typed error.
func Status(err error) int {
	var apiErr *errors.APIError
	switch {
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsValidationError(err):
		return http.StatusUnprocessableEntity
	case errors.IsStaleState(err):
		return http.StatusConflict
	case stderrors.As(err, &apiErr) && apiErr.StatusCode != 0:
		return apiErr.StatusCode
	default:
		return http.StatusInternalServerError
	}
}

// Error writes the detail body matching a typed error. Untyped errors are
// reported as 500 without their text.
func Error(w http.ResponseWriter, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		var apiErr *errors.APIError
		if !stderrors.As(err, &apiErr) {
			InternalError(w, err)
			return
		}
	}
	Fail(w, status, detailOf(err))
}

func detailOf(err error) string {
	var (
		nf  *errors.NotFoundError
		ve  *errors.ValidationError
		se  *errors.StaleStateError
		api *errors.APIError
	)
	switch {
	case stderrors.As(err, &nf):
		return nf.Error()
	case stderrors.As(err, &ve):
		if ve.Field != "" {
			return ve.Field + " " + ve.Message
		}
		return ve.Message
	case stderrors.As(err, &se):
		return se.Message
	case stderrors.As(err, &api):
		return api.Message
	default:
		return errors.Message(err)
	}
}
