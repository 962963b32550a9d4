package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/placement/pkg/errors"
)

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body Detail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Detail
}

func TestOKAndCreated(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, []string{"a", "b"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `["a","b"]`, rec.Body.String())

	rec = httptest.NewRecorder()
	Created(rec, map[string]string{"_id": "d-1"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"_id":"d-1"}`, rec.Body.String())
}

func TestMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	Message(rec, "Drive deleted")
	assert.JSONEq(t, `{"message":"Drive deleted"}`, rec.Body.String())
}

func TestError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{
			name:   "not found",
			err:    pkgerrors.NewNotFoundError("drive", "d-1"),
			status: http.StatusNotFound,
			detail: "drive with ID d-1 not found",
		},
		{
			name:   "validation with field",
			err:    pkgerrors.NewValidationError("title", "", "is required"),
			status: http.StatusUnprocessableEntity,
			detail: "title is required",
		},
		{
			name:   "stale",
			err:    pkgerrors.NewStaleStateError("job", "j-1", "job belongs to another drive"),
			status: http.StatusConflict,
			detail: "job belongs to another drive",
		},
		{
			name:   "api error keeps status",
			err:    pkgerrors.NewAPIError("/drive/publish/d-1", http.StatusServiceUnavailable, "maintenance"),
			status: http.StatusServiceUnavailable,
			detail: "maintenance",
		},
		{
			name:   "untyped error is hidden",
			err:    errors.New("disk on fire"),
			status: http.StatusInternalServerError,
			detail: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(rec, tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.detail, decodeDetail(t, rec))
		})
	}
}
