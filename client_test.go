package placement_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/placement"
	"github.com/agentstation/placement/pkg/backend/memory"
	"github.com/agentstation/placement/pkg/drives"
	"github.com/agentstation/placement/pkg/errors"
	"github.com/agentstation/placement/pkg/logging"
)

func TestNew(t *testing.T) {
	t.Run("requires a backend", func(t *testing.T) {
		_, err := placement.New()
		var cfgErr *errors.ConfigError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("rejects a URL without scheme", func(t *testing.T) {
		_, err := placement.New(placement.WithBaseURL("localhost:8000"))
		assert.Error(t, err)
	})

	t.Run("rejects a negative timeout", func(t *testing.T) {
		_, err := placement.New(placement.WithBaseURL("http://localhost:8000"), placement.WithTimeout(-1))
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("http backend", func(t *testing.T) {
		pc, err := placement.New(
			placement.WithBaseURL("http://localhost:8000"),
			placement.WithAPIKey("secret"),
		)
		require.NoError(t, err)
		assert.NotNil(t, pc.API())
	})
}

func seed(t *testing.T) (*memory.Backend, string, string) {
	t.Helper()
	ctx := context.Background()
	api := memory.New()

	d, err := api.CreateDrive(ctx, drives.Drive{Title: "Campus 2026", Stages: []string{"Aptitude"}})
	require.NoError(t, err)
	c, err := api.CreateCompany(ctx, drives.Company{Name: "Acme", Branch: "Kochi"})
	require.NoError(t, err)
	_, err = api.AddDriveCompany(ctx, d.ID, c.ID)
	require.NoError(t, err)
	j, err := api.CreateJob(ctx, d.ID, c.ID, drives.Job{Title: "SDE", Experience: 1})
	require.NoError(t, err)

	api.SeedStudents(
		[]drives.Student{{ID: "s1", FirstName: "Asha"}, {ID: "s2", FirstName: "Binu"}},
		[]drives.Performance{{StudentID: "s1", DegreeCGPA: 8}},
	)
	return api, d.ID, j.ID
}

func TestClientSessionsAndHooks(t *testing.T) {
	ctx := context.Background()
	api, driveID, jobID := seed(t)

	pc, err := placement.New(placement.WithAPI(api), placement.WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)

	var published, deleted []string
	pc.OnDrivePublished(func(id string, jobStudents map[string][]string) {
		published = append(published, id)
		assert.Equal(t, []string{"s1"}, jobStudents[jobID])
	})
	pc.OnDriveDeleted(func(id string) {
		deleted = append(deleted, id)
	})

	drive, err := pc.Drive(ctx, driveID)
	require.NoError(t, err)
	st := drive.State()
	require.Len(t, st.Jobs, 1)
	assert.Equal(t, "Acme", st.Companies[0].Name)

	pub, err := pc.Publish(ctx, driveID)
	require.NoError(t, err)
	defer pub.Close()

	require.NoError(t, pub.Prefetch(ctx))
	require.NoError(t, pub.Remove(jobID, "s2"))
	_, err = pub.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{driveID}, published)

	require.NoError(t, drive.DeleteDrive(ctx))
	assert.Equal(t, []string{driveID}, deleted)

	_, err = pc.Drive(ctx, driveID)
	assert.True(t, errors.IsNotFound(err))
	_, err = pc.Publish(ctx, driveID)
	assert.True(t, errors.IsNotFound(err))
}

func TestClientStudents(t *testing.T) {
	ctx := context.Background()
	api, _, _ := seed(t)
	pc, err := placement.New(placement.WithAPI(api))
	require.NoError(t, err)

	students, err := pc.Students(ctx)
	require.NoError(t, err)
	require.Len(t, students, 2)
	require.NotNil(t, students[0].Performance)
	assert.Equal(t, 8.0, students[0].Performance.DegreeCGPA)
	assert.Nil(t, students[1].Performance)

	api.FailOn("ListStudents", errors.NewAPIError("/student/get", 500, "down"))
	_, err = pc.Students(ctx)
	assert.ErrorIs(t, err, errors.ErrBackendUnavailable)
}
