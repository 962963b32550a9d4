package backend_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/placement/pkg/backend"
	"github.com/agentstation/placement/pkg/drives"
	"github.com/agentstation/placement/pkg/errors"
)

type recorded struct {
	Method string
	Path   string
	Body   string
}

// recorder answers every request with status and body and remembers what
// it was asked.
type recorder struct {
	mu     sync.Mutex
	reqs   []recorded
	status int
	body   string
}

func (rec *recorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	rec.mu.Lock()
	rec.reqs = append(rec.reqs, recorded{Method: r.Method, Path: r.URL.EscapedPath(), Body: string(b)})
	status, body := rec.status, rec.body
	rec.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (rec *recorder) last() recorded {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.reqs[len(rec.reqs)-1]
}

func newClient(t *testing.T, status int, body string) (*backend.Client, *recorder) {
	t.Helper()
	rec := &recorder{status: status, body: body}
	ts := httptest.NewServer(rec)
	t.Cleanup(ts.Close)
	return backend.NewClient(ts.URL), rec
}

func TestClientPaths(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		call   func(c *backend.Client) error
		method string
		path   string
		reply  string
	}{
		{"get drive", func(c *backend.Client) error { _, err := c.GetDrive(ctx, "d1"); return err }, http.MethodGet, "/drive/get/d1", "{}"},
		{"delete drive", func(c *backend.Client) error { return c.DeleteDrive(ctx, "d1") }, http.MethodDelete, "/drive/delete/d1", "{}"},
		{"drive companies", func(c *backend.Client) error { _, err := c.ListDriveCompanyIDs(ctx, "d1"); return err }, http.MethodGet, "/drive_company/get/drive/d1", "[]"},
		{"detach by company", func(c *backend.Client) error { return c.DeleteDriveCompaniesByCompany(ctx, "c1") }, http.MethodDelete, "/drive_company/delete/company/c1", "{}"},
		{"create job", func(c *backend.Client) error {
			_, err := c.CreateJob(ctx, "d1", "c1", drives.Job{Title: "SDE"})
			return err
		}, http.MethodPost, "/job/add/d1/c1", "{}"},
		{"update job", func(c *backend.Client) error { _, err := c.UpdateJob(ctx, "j1", drives.Job{}); return err }, http.MethodPatch, "/job/update/j1", "{}"},
		{"delete drive company jobs", func(c *backend.Client) error { return c.DeleteJobsByDriveCompany(ctx, "d1", "c1") }, http.MethodDelete, "/job/delete/drivecompany/d1/c1", "{}"},
		{"requirements", func(c *backend.Client) error { _, err := c.ListRequirements(ctx, "j1"); return err }, http.MethodGet, "/requirements/get/job/j1", "[]"},
		{"eligible", func(c *backend.Client) error { _, err := c.EligibleStudentIDs(ctx, "j1"); return err }, http.MethodGet, "/job/j1/eligible-students", "[]"},
		{"escaped id", func(c *backend.Client) error { _, err := c.GetDrive(ctx, "a/b"); return err }, http.MethodGet, "/drive/get/a%2Fb", "{}"},
		{"performances", func(c *backend.Client) error { _, err := c.ListPerformances(ctx); return err }, http.MethodGet, "/student-performance/get", "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newClient(t, http.StatusOK, tt.reply)
			require.NoError(t, tt.call(c))
			got := rec.last()
			assert.Equal(t, tt.method, got.Method)
			assert.Equal(t, tt.path, got.Path)
		})
	}
}

func TestClientCreateJobScopesBody(t *testing.T) {
	c, rec := newClient(t, http.StatusOK, `{"_id":"j1","drive":"d1","company":"c1","title":"SDE"}`)
	job, err := c.CreateJob(context.Background(), "d1", "c1", drives.Job{ID: "stale", Title: "SDE"})
	require.NoError(t, err)
	assert.Equal(t, "j1", job.ID)

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(rec.last().Body), &sent))
	assert.NotContains(t, sent, "_id")
	assert.Equal(t, "d1", sent["drive"])
	assert.Equal(t, "c1", sent["company"])
}

func TestClientUpdateDriveOmitsStudentLists(t *testing.T) {
	c, rec := newClient(t, http.StatusOK, `{"_id":"d1","title":"Campus","send_to":["s9"]}`)
	updated, err := c.UpdateDrive(context.Background(), "d1", drives.Drive{
		ID:               "d1",
		Title:            "Campus",
		AppliedStudents:  []string{"s1"},
		SelectedStudents: []string{"s1"},
		SendTo:           []string{"s1", "s2"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"s9"}, updated.SendTo)

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(rec.last().Body), &sent))
	assert.Equal(t, "Campus", sent["title"])
	assert.NotContains(t, sent, "_id")
	assert.NotContains(t, sent, "send_to")
	assert.NotContains(t, sent, "applied_students")
	assert.NotContains(t, sent, "selected_students")
}

func TestClientPublishSendsEmptyLists(t *testing.T) {
	c, rec := newClient(t, http.StatusOK, `{"message":"ok"}`)
	err := c.PublishDrive(context.Background(), "d1", map[string][]string{
		"j1": {"s1"},
		"j2": nil,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"j1":["s1"],"j2":[]}`, rec.last().Body)
}

func TestClientEligibleNullIsEmpty(t *testing.T) {
	c, _ := newClient(t, http.StatusOK, `null`)
	ids, err := c.EligibleStudentIDs(context.Background(), "j1")
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func TestClientStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "not found",
			status: http.StatusNotFound,
			body:   `{"detail":"Drive not found"}`,
			check: func(t *testing.T, err error) {
				var nf *errors.NotFoundError
				require.ErrorAs(t, err, &nf)
				assert.Equal(t, "drive", nf.Resource)
				assert.Equal(t, "d1", nf.ID)
			},
		},
		{
			name:   "validation",
			status: http.StatusUnprocessableEntity,
			body:   `{"detail":[{"loc":["body","title"],"msg":"field required"}]}`,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsValidationError(err))
				assert.Contains(t, err.Error(), "field required")
			},
		},
		{
			name:   "conflict",
			status: http.StatusConflict,
			body:   `{"detail":"drive changed"}`,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsStaleState(err))
			},
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `{"detail":"database locked"}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, errors.ErrBackendUnavailable)
				assert.Equal(t, "API error from /drive/get/d1 (status 500): database locked", errors.Message(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newClient(t, tt.status, tt.body)
			_, err := c.GetDrive(context.Background(), "d1")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestClientNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := backend.NewClient(url).ListStudents(context.Background())
	assert.True(t, errors.IsNetwork(err))
}
