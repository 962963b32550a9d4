package memory_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/agentstation/placement/pkg/backend/memory"
	"github.com/agentstation/placement/pkg/drives"
	pkgerrors "github.com/agentstation/placement/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() memory.Option {
	n := 0
	return memory.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
}

func TestBackend_DriveLifecycle(t *testing.T) {
	ctx := context.Background()
	b := memory.New(sequentialIDs())

	d, err := b.CreateDrive(ctx, drives.Drive{Title: "Campus 2026"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", d.ID)
	assert.NotNil(t, d.CreatedAt)

	d.Location = "Main hall"
	_, err = b.UpdateDrive(ctx, d.ID, d)
	require.NoError(t, err)

	got, err := b.GetDrive(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Main hall", got.Location)

	require.NoError(t, b.DeleteDrive(ctx, d.ID))
	_, err = b.GetDrive(ctx, d.ID)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestBackend_Validation(t *testing.T) {
	ctx := context.Background()
	b := memory.New()

	_, err := b.CreateDrive(ctx, drives.Drive{})
	assert.True(t, pkgerrors.IsValidationError(err))

	_, err = b.CreateCompany(ctx, drives.Company{Name: "Acme"})
	assert.True(t, pkgerrors.IsValidationError(err))
}

func TestBackend_CascadeRelations(t *testing.T) {
	ctx := context.Background()
	b := memory.New()

	d, _ := b.CreateDrive(ctx, drives.Drive{Title: "Campus"})
	c1, _ := b.CreateCompany(ctx, drives.Company{Name: "Acme", Branch: "MCA"})
	c2, _ := b.CreateCompany(ctx, drives.Company{Name: "Globex", Branch: "MCA"})
	_, err := b.AddDriveCompany(ctx, d.ID, c1.ID)
	require.NoError(t, err)
	_, err = b.AddDriveCompany(ctx, d.ID, c2.ID)
	require.NoError(t, err)

	j1, _ := b.CreateJob(ctx, d.ID, c1.ID, drives.Job{Title: "SDE"})
	_, _ = b.CreateJob(ctx, d.ID, c2.ID, drives.Job{Title: "QA"})
	_, err = b.CreateRequirement(ctx, j1.ID, drives.Requirement{DegreeCGPA: 7})
	require.NoError(t, err)

	require.NoError(t, b.DeleteJobsByDriveCompany(ctx, d.ID, c1.ID))
	require.NoError(t, b.DeleteDriveCompaniesByCompany(ctx, c1.ID))

	jobs, _ := b.ListJobsByDrive(ctx, d.ID)
	require.Len(t, jobs, 1)
	assert.Equal(t, "QA", jobs[0].Title)

	ids, _ := b.ListDriveCompanyIDs(ctx, d.ID)
	assert.Equal(t, []string{c2.ID}, ids)

	reqs, _ := b.ListRequirements(ctx, j1.ID)
	assert.Empty(t, reqs)
}

func TestBackend_FailOnAndCalls(t *testing.T) {
	ctx := context.Background()
	b := memory.New()
	boom := errors.New("boom")

	b.FailOn("DeleteJobsByDrive", boom)
	err := b.DeleteJobsByDrive(ctx, "d1")
	assert.ErrorIs(t, err, boom)

	b.FailOn("DeleteJobsByDrive", nil)
	assert.NoError(t, b.DeleteJobsByDrive(ctx, "d1"))

	assert.Equal(t, []string{"DeleteJobsByDrive(d1)", "DeleteJobsByDrive(d1)"}, b.Calls())
	b.ResetCalls()
	assert.Empty(t, b.Calls())
}

func TestBackend_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := memory.New().ListCompanies(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackend_EligibilityAndPublish(t *testing.T) {
	ctx := context.Background()
	b := memory.New()
	b.SeedStudents(
		[]drives.Student{{ID: "s1", FirstName: "Anu"}, {ID: "s2", FirstName: "Binu"}, {ID: "s3", FirstName: "Cyril"}},
		[]drives.Performance{
			{StudentID: "s1", DegreeCGPA: 8.1, MCACGPA: []float64{8, 8}},
			{StudentID: "s2", DegreeCGPA: 6.2, MCACGPA: []float64{7, 7}},
		},
	)

	d, _ := b.CreateDrive(ctx, drives.Drive{Title: "Campus"})
	open, _ := b.CreateJob(ctx, d.ID, "c1", drives.Job{Title: "Open"})
	strict, _ := b.CreateJob(ctx, d.ID, "c1", drives.Job{Title: "Strict"})
	_, _ = b.CreateRequirement(ctx, strict.ID, drives.Requirement{DegreeCGPA: 7, MCACGPA: []float64{7.5}})

	ids, err := b.EligibleStudentIDs(ctx, open.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2", "s3"}, ids)

	ids, err = b.EligibleStudentIDs(ctx, strict.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)

	_, err = b.EligibleStudentIDs(ctx, "missing")
	assert.True(t, pkgerrors.IsNotFound(err))

	perfs, _ := b.ListPerformances(ctx)
	assert.Len(t, perfs, 2)

	require.NoError(t, b.PublishDrive(ctx, d.ID, map[string][]string{
		open.ID:   {"s3", "s1"},
		strict.ID: {},
	}))
	got, _ := b.GetDrive(ctx, d.ID)
	assert.Equal(t, []string{"s1", "s3"}, got.SendTo)

	published, ok := b.Published(d.ID)
	require.True(t, ok)
	assert.Empty(t, published[strict.ID])
	assert.Contains(t, published, strict.ID)
}

func TestEligible(t *testing.T) {
	req := drives.Requirement{SSLCCGPA: 7, MCACGPA: []float64{0, 6}}

	assert.True(t, memory.Eligible(req, drives.Performance{TenthCGPA: 7, MCACGPA: []float64{1, 6}}, true))
	assert.False(t, memory.Eligible(req, drives.Performance{TenthCGPA: 7, MCACGPA: []float64{9}}, true))
	assert.False(t, memory.Eligible(req, drives.Performance{}, false))
	assert.True(t, memory.Eligible(drives.Requirement{}, drives.Performance{}, false))
}
