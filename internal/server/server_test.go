package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/placement/internal/transport"
	"github.com/agentstation/placement/pkg/backend"
	"github.com/agentstation/placement/pkg/backend/memory"
	"github.com/agentstation/placement/pkg/drives"
	"github.com/agentstation/placement/pkg/errors"
	"github.com/agentstation/placement/pkg/logging"
)

func sequentialIDs() memory.Option {
	n := 0
	return memory.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
}

// startServer runs the server over mem and returns a client for it.
func startServer(t *testing.T, mem *memory.Backend, cfg Config) (*Server, *httptest.Server) {
	t.Helper()
	srv, err := New(mem, cfg, logging.NewNopLogger())
	require.NoError(t, err)
	srv.Start()

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, srv.Shutdown(ctx))
	})
	return srv, ts
}

func TestNew(t *testing.T) {
	_, err := New(nil, DefaultConfig(), nil)
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.AuthEnabled = true
	_, err = New(memory.New(), cfg, nil)
	assert.Error(t, err, "auth needs a key")

	srv, err := New(memory.New(), DefaultConfig(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, srv.Broker().SubscriberCount())
	assert.Equal(t, "localhost:8000", srv.HTTPServer().Addr)
	assert.NoError(t, srv.Shutdown(context.Background()), "shutdown without start")
}

func TestServerStartIsIdempotent(t *testing.T) {
	srv, err := New(memory.New(), DefaultConfig(), nil)
	require.NoError(t, err)
	srv.Start()
	srv.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, srv.Shutdown(ctx))
}

func TestServerRoundTrip(t *testing.T) {
	mem := memory.New(sequentialIDs())
	mem.SeedStudents(
		[]drives.Student{{ID: "s1", FirstName: "Asha"}, {ID: "s2", FirstName: "Ravi"}},
		[]drives.Performance{{StudentID: "s1", DegreeCGPA: 8.2}, {StudentID: "s2", DegreeCGPA: 6.1}},
	)
	_, ts := startServer(t, mem, DefaultConfig())
	api := backend.NewClient(ts.URL)
	ctx := context.Background()

	d, err := api.CreateDrive(ctx, drives.Drive{Title: "Campus 2026", Stages: []string{"Aptitude"}})
	require.NoError(t, err)
	assert.Equal(t, "id-1", d.ID)

	co, err := api.CreateCompany(ctx, drives.Company{Name: "Acme", Branch: "Kochi"})
	require.NoError(t, err)
	_, err = api.AddDriveCompany(ctx, d.ID, co.ID)
	require.NoError(t, err)

	ids, err := api.ListDriveCompanyIDs(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{co.ID}, ids)

	job, err := api.CreateJob(ctx, d.ID, co.ID, drives.Job{Title: "SDE", Experience: 1})
	require.NoError(t, err)
	assert.Equal(t, d.ID, job.Drive)
	assert.Equal(t, co.ID, job.Company)

	_, err = api.CreateRequirement(ctx, job.ID, drives.Requirement{DegreeCGPA: 7})
	require.NoError(t, err)

	eligible, err := api.EligibleStudentIDs(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, eligible)

	require.NoError(t, api.PublishDrive(ctx, d.ID, map[string][]string{job.ID: {"s1", "s2"}}))
	published, ok := mem.Published(d.ID)
	require.True(t, ok)
	assert.Equal(t, []string{"s1", "s2"}, published[job.ID])

	got, err := api.GetDrive(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, got.SendTo)

	students, err := api.ListStudents(ctx)
	require.NoError(t, err)
	assert.Len(t, students, 2)

	require.NoError(t, api.DeleteJobsByDriveCompany(ctx, d.ID, co.ID))
	jobs, err := api.ListJobsByDrive(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestServerErrorMapping(t *testing.T) {
	mem := memory.New(sequentialIDs())
	_, ts := startServer(t, mem, DefaultConfig())
	api := backend.NewClient(ts.URL)
	ctx := context.Background()

	_, err := api.GetDrive(ctx, "missing")
	assert.True(t, errors.IsNotFound(err))

	_, err = api.CreateDrive(ctx, drives.Drive{})
	assert.True(t, errors.IsValidationError(err))
	assert.Contains(t, err.Error(), "title is required")

	mem.FailOn("ListStudents", errors.NewAPIError("/student/get", http.StatusServiceUnavailable, "maintenance"))
	_, err = api.ListStudents(ctx)
	assert.ErrorIs(t, err, errors.ErrBackendUnavailable)
	assert.Contains(t, err.Error(), "maintenance")

	mem.FailOn("ListCompanies", fmt.Errorf("disk full"))
	resp, err := http.Get(ts.URL + "/company/get")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Internal server error", body["detail"])
}

func TestServerRejectsBadBodies(t *testing.T) {
	_, ts := startServer(t, memory.New(), DefaultConfig())

	resp, err := http.Post(ts.URL+"/drive/add", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPut, ts.URL+"/drive/add", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServerAuth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AuthEnabled = true
	cfg.APIKey = "secret"
	_, ts := startServer(t, memory.New(), cfg)
	ctx := context.Background()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	_, err = backend.NewClient(ts.URL).ListCompanies(ctx)
	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	authed := backend.NewClient(ts.URL, transport.WithAPIKey(&transport.BearerAuth{}, "secret"))
	companies, err := authed.ListCompanies(ctx)
	require.NoError(t, err)
	assert.Empty(t, companies)
}

func TestServerStreamsEventsOverWebSocket(t *testing.T) {
	srv, ts := startServer(t, memory.New(sequentialIDs()), DefaultConfig())

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/events/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	resp.Body.Close()
	defer conn.Close()
	require.Eventually(t, func() bool { return srv.WSHub().ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	_, err = backend.NewClient(ts.URL).CreateDrive(context.Background(), drives.Drive{Title: "Campus"})
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	// The connection announcement may arrive first.
	for msg.Type != "drive.created" {
		require.NoError(t, conn.ReadJSON(&msg))
	}
	var d drives.Drive
	require.NoError(t, json.Unmarshal(msg.Data, &d))
	assert.Equal(t, "Campus", d.Title)
}
