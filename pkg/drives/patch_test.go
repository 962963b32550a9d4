package drives_test

import (
	"testing"
	"time"

	"github.com/agentstation/placement/internal/utils/ptr"
	"github.com/agentstation/placement/pkg/drives"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyJobPatch(t *testing.T) {
	current := drives.Job{
		ID: "j1", Company: "c1", Drive: "d1",
		Title: "SDE", Experience: 2, Loc: "Kochi", Salary: 500000,
	}

	t.Run("supplied fields replace", func(t *testing.T) {
		merged := drives.ApplyJobPatch(current, drives.JobPatch{
			Title:  ptr.String("Senior SDE"),
			Salary: ptr.Float64(900000),
		})
		assert.Equal(t, "Senior SDE", merged.Title)
		assert.Equal(t, 900000.0, merged.Salary)
		assert.Equal(t, "Kochi", merged.Loc)
		assert.Equal(t, "j1", merged.ID)
	})

	t.Run("empty and zero values keep current", func(t *testing.T) {
		merged := drives.ApplyJobPatch(current, drives.JobPatch{
			Title:      ptr.String("   "),
			Experience: ptr.Int(0),
			Loc:        ptr.String(""),
		})
		assert.Equal(t, current, merged)
	})

	t.Run("dates copy", func(t *testing.T) {
		join := ptr.Time(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
		merged := drives.ApplyJobPatch(current, drives.JobPatch{JoinDate: join})
		require.NotNil(t, merged.JoinDate)
		assert.True(t, merged.JoinDate.Equal(*join))
		assert.NotSame(t, join, merged.JoinDate)
	})
}

func TestApplyDrivePatch(t *testing.T) {
	current := drives.Drive{ID: "d1", Title: "Campus", Stages: []string{"Aptitude", "HR"}}

	t.Run("nil stages keep current", func(t *testing.T) {
		merged := drives.ApplyDrivePatch(current, drives.DrivePatch{Location: ptr.String("Hall B")})
		assert.Equal(t, []string{"Aptitude", "HR"}, merged.Stages)
		assert.Equal(t, "Hall B", merged.Location)
	})

	t.Run("supplied stages replace", func(t *testing.T) {
		merged := drives.ApplyDrivePatch(current, drives.DrivePatch{Stages: []string{"GD"}})
		assert.Equal(t, []string{"GD"}, merged.Stages)
	})

	t.Run("explicit empty stages clear", func(t *testing.T) {
		merged := drives.ApplyDrivePatch(current, drives.DrivePatch{Stages: []string{}})
		assert.Empty(t, merged.Stages)
		assert.NotNil(t, merged.Stages)
	})

	t.Run("patch does not alias current", func(t *testing.T) {
		stages := []string{"Coding"}
		merged := drives.ApplyDrivePatch(current, drives.DrivePatch{Stages: stages})
		stages[0] = "mutated"
		assert.Equal(t, "Coding", merged.Stages[0])
	})
}

func TestApplyCompanyPatch(t *testing.T) {
	current := drives.Company{ID: "c1", Name: "Acme", Branch: "MCA"}
	merged := drives.ApplyCompanyPatch(current, drives.CompanyPatch{
		Site:   ptr.String("acme.io"),
		Branch: ptr.String(""),
	})
	assert.Equal(t, "MCA", merged.Branch)
	assert.Equal(t, "acme.io", merged.Site)
}

func TestApplyRequirementPatch(t *testing.T) {
	current := drives.Requirement{ID: "r1", Job: "j1", DegreeCGPA: 6.5, SkillsRequired: []string{"go"}}

	merged := drives.ApplyRequirementPatch(current, drives.RequirementPatch{
		DegreeCGPA: ptr.Float64(7),
		MCACGPA:    []float64{6, 6.5},
	})
	assert.Equal(t, 7.0, merged.DegreeCGPA)
	assert.Equal(t, []float64{6, 6.5}, merged.MCACGPA)
	assert.Equal(t, []string{"go"}, merged.SkillsRequired)
	assert.Equal(t, "r1", merged.ID)

	fresh := drives.NewRequirement("j2", drives.RequirementPatch{SSLCCGPA: ptr.Float64(8)})
	assert.Equal(t, "j2", fresh.Job)
	assert.Empty(t, fresh.ID)
	assert.Equal(t, 8.0, fresh.SSLCCGPA)
}
