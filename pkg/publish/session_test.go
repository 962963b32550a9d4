package publish_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/placement/pkg/backend/memory"
	"github.com/agentstation/placement/pkg/drives"
	pkgerrors "github.com/agentstation/placement/pkg/errors"
	"github.com/agentstation/placement/pkg/logging"
	"github.com/agentstation/placement/pkg/publish"
)

type fixture struct {
	api     *memory.Backend
	driveID string
	jobs    []drives.Job // SDE requires degree CGPA 7, QA is open
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	api := memory.New(memory.WithIDGenerator(sequentialIDs()))

	d, err := api.CreateDrive(ctx, drives.Drive{Title: "Campus 2026"})
	require.NoError(t, err)
	c, err := api.CreateCompany(ctx, drives.Company{Name: "Acme", Branch: "Kochi"})
	require.NoError(t, err)
	_, err = api.AddDriveCompany(ctx, d.ID, c.ID)
	require.NoError(t, err)

	sde, err := api.CreateJob(ctx, d.ID, c.ID, drives.Job{Title: "SDE", Experience: 1})
	require.NoError(t, err)
	_, err = api.CreateRequirement(ctx, sde.ID, drives.Requirement{DegreeCGPA: 7})
	require.NoError(t, err)
	qa, err := api.CreateJob(ctx, d.ID, c.ID, drives.Job{Title: "QA"})
	require.NoError(t, err)

	api.SeedStudents(
		[]drives.Student{
			{ID: "s1", FirstName: "Asha"},
			{ID: "s2", FirstName: "Binu"},
			{ID: "s3", FirstName: "Chitra"},
		},
		[]drives.Performance{
			{StudentID: "s1", DegreeCGPA: 8.2},
			{StudentID: "s2", DegreeCGPA: 6.1},
		},
	)
	api.ResetCalls()

	return fixture{api: api, driveID: d.ID, jobs: []drives.Job{sde, qa}}
}

func open(t *testing.T, f fixture) *publish.Session {
	t.Helper()
	s := publish.Open(f.api, f.driveID, f.jobs, publish.WithLogger(logging.NewNopLogger()))
	t.Cleanup(s.Close)
	return s
}

func TestSessionEditAndCommit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := open(t, f)
	sde, qa := f.jobs[0].ID, f.jobs[1].ID

	assert.Equal(t, sde, s.Active())
	require.NoError(t, s.LoadRoster(ctx))
	require.NoError(t, s.Prefetch(ctx))

	shown := s.Students(sde)
	require.Len(t, shown, 1)
	assert.Equal(t, "s1", shown[0].ID)
	require.NotNil(t, shown[0].Performance)
	assert.Equal(t, 8.2, shown[0].Performance.DegreeCGPA)

	avail := s.AvailableToAdd(sde)
	require.Len(t, avail, 2)
	assert.Equal(t, "s2", avail[0].ID)
	assert.Nil(t, avail[1].Performance, "s3 has no performance record")

	require.NoError(t, s.Add(sde, "s3"))
	require.NoError(t, s.Remove(qa, "s2"))
	assert.ElementsMatch(t, []string{sde, qa}, s.Edited())

	want := map[string][]string{
		sde: {"s1", "s3"},
		qa:  {"s1", "s3"},
	}
	if diff := cmp.Diff(want, s.Finalize()); diff != "" {
		t.Errorf("Finalize() mismatch (-want +got):\n%s", diff)
	}

	var hooked map[string][]string
	s.OnPublished(func(driveID string, jobStudents map[string][]string) {
		assert.Equal(t, f.driveID, driveID)
		hooked = jobStudents
	})

	final, err := s.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, final)
	assert.Equal(t, want, hooked)

	published, ok := f.api.Published(f.driveID)
	require.True(t, ok)
	assert.Equal(t, want, published)

	d, err := f.api.GetDrive(ctx, f.driveID)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s3"}, d.SendTo)
}

func TestSessionCommitFailureKeepsOverlay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := open(t, f)
	sde := f.jobs[0].ID

	require.NoError(t, s.Prefetch(ctx))
	require.NoError(t, s.Add(sde, "s2"))

	f.api.FailOn("PublishDrive", pkgerrors.NewAPIError("/drive/publish/"+f.driveID, 500, "database locked"))
	_, err := s.Commit(ctx)
	require.Error(t, err)
	assert.Equal(t, "API error from /drive/publish/"+f.driveID+" (status 500): database locked", s.PublishErr())

	_, ok := f.api.Published(f.driveID)
	assert.False(t, ok)
	assert.Equal(t, []string{sde}, s.Edited())

	f.api.FailOn("PublishDrive", nil)
	final, err := s.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, final[sde])
	assert.Empty(t, s.PublishErr())
}

func TestSessionRosterFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := open(t, f)

	f.api.FailOn("ListPerformances", pkgerrors.NewNetworkError("GET", "/student-performance/get", context.DeadlineExceeded))
	err := s.LoadRoster(ctx)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNetwork(err))
	assert.Contains(t, s.InitErr(), "/student-performance/get")

	f.api.FailOn("ListPerformances", nil)
	require.NoError(t, s.LoadRoster(ctx))
	assert.Empty(t, s.InitErr())
}

func TestSessionJobErrorsStayOnTheirTab(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.api.FailOn("EligibleStudentIDs", pkgerrors.NewAPIError("/job/x/eligible-students", 502, "bad gateway"))
	s := open(t, f)
	sde, qa := f.jobs[0].ID, f.jobs[1].ID

	err := s.Prefetch(ctx)
	require.Error(t, err)
	assert.Error(t, s.Err(sde))
	assert.Error(t, s.Err(qa))
	assert.Empty(t, s.Students(sde))

	f.api.FailOn("EligibleStudentIDs", nil)
	require.NoError(t, s.Refetch(ctx, qa))
	assert.NoError(t, s.Err(qa))
	assert.Error(t, s.Err(sde), "refetching one job leaves the other's failure")
}

func TestSessionRejectsUnknownJobs(t *testing.T) {
	f := newFixture(t)
	s := open(t, f)

	assert.True(t, pkgerrors.IsStaleState(s.SetActive("nope")))
	assert.True(t, pkgerrors.IsStaleState(s.Add("nope", "s1")))
	assert.True(t, pkgerrors.IsStaleState(s.Remove("nope", "s1")))
	assert.Empty(t, s.Edited())

	require.NoError(t, s.SetActive(f.jobs[1].ID))
	assert.Equal(t, f.jobs[1].ID, s.Active())
}

func TestSessionFinalizeKeepsViewedBaseline(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := open(t, f)
	sde := f.jobs[0].ID
	require.NoError(t, s.Prefetch(ctx))

	// s2 becomes eligible on the backend after the baseline was fetched.
	f.api.SeedStudents(nil, []drives.Performance{{StudentID: "s2", DegreeCGPA: 9}})
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, []string{"s1"}, s.Finalize()[sde])
	assert.Empty(t, s.Edited())

	require.NoError(t, s.Refetch(ctx, sde))
	assert.Equal(t, []string{"s1", "s2"}, s.Finalize()[sde])
}
