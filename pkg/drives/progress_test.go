package drives_test

import (
	"testing"
	"time"

	"github.com/agentstation/placement/internal/utils/ptr"
	"github.com/agentstation/placement/pkg/drives"
	"github.com/stretchr/testify/assert"
)

func TestCompanyProgress(t *testing.T) {
	tests := []struct {
		name    string
		company drives.Company
		want    int
	}{
		{"empty", drives.Company{}, 0},
		{"required only", drives.Company{Name: "Acme", Branch: "MCA"}, 50},
		{"required plus site", drives.Company{Name: "Acme", Branch: "MCA", Site: "acme.io"}, 63},
		{"blank strings do not count", drives.Company{Name: "  ", Branch: "MCA", Site: "\t"}, 25},
		{"complete", drives.Company{
			Name: "Acme", Branch: "MCA", Site: "acme.io", Desc: "widgets",
			Email: "hr@acme.io", PhNo: "9999999999",
		}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, drives.CompanyProgress(tt.company))
		})
	}
}

func TestJobProgress(t *testing.T) {
	t.Run("zero experience counts as unfilled", func(t *testing.T) {
		// title only: 2 of 12
		assert.Equal(t, 17, drives.JobProgress(drives.Job{Title: "SDE"}))
	})

	t.Run("required fields", func(t *testing.T) {
		assert.Equal(t, 33, drives.JobProgress(drives.Job{Title: "SDE", Experience: 1}))
	})

	t.Run("dates and numbers", func(t *testing.T) {
		j := drives.Job{
			Title:      "SDE",
			Experience: 2,
			Salary:     600000,
			JoinDate:   ptr.Time(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)),
		}
		assert.Equal(t, 50, drives.JobProgress(j))
	})

	t.Run("complete", func(t *testing.T) {
		now := time.Now()
		j := drives.Job{
			Title: "SDE", Experience: 2, Desc: "backend", Loc: "Kochi", Salary: 1,
			JoinDate: ptr.Time(now), LastDate: ptr.Time(now),
			ContactPerson: "Ravi", ContactEmail: "ravi@acme.io", FormLink: "https://forms/x",
		}
		assert.Equal(t, 100, drives.JobProgress(j))
	})
}

func TestDriveProgress(t *testing.T) {
	t.Run("title only", func(t *testing.T) {
		// 2 of 9
		assert.Equal(t, 22, drives.DriveProgress(drives.Drive{Title: "Campus 2026"}))
	})

	t.Run("stages need a non-blank entry", func(t *testing.T) {
		d := drives.Drive{Title: "Campus 2026", Stages: []string{"", "  "}}
		assert.Equal(t, 22, drives.DriveProgress(d))

		d.Stages = []string{"", "Aptitude"}
		assert.Equal(t, 33, drives.DriveProgress(d))
	})

	t.Run("stays within bounds", func(t *testing.T) {
		now := time.Now()
		d := drives.Drive{
			Title: "Campus 2026", Desc: "d", Location: "Hall A", DriveDate: ptr.Time(now),
			Stages: []string{"GD"}, ApplicationDeadline: ptr.Time(now),
			AdditionalInstructions: "bring CV", FormLink: "https://forms/y",
		}
		assert.Equal(t, 100, drives.DriveProgress(d))
	})
}

func TestJobsByCompany(t *testing.T) {
	jobs := []drives.Job{
		{ID: "j1", Company: "c1"},
		{ID: "j2", Company: "c2"},
		{ID: "j3", Company: "c1"},
	}
	grouped := drives.JobsByCompany(jobs)
	assert.Len(t, grouped, 2)
	assert.Equal(t, []string{"j1", "j3"}, []string{grouped["c1"][0].ID, grouped["c1"][1].ID})
}
