// Package backend is the client side of the PMS REST API. API describes
// every call the placement workflow makes; Client implements it over HTTP
// and the memory subpackage implements it in process for tests and the
// mock server.
package backend

import (
	"context"

	"github.com/agentstation/placement/pkg/drives"
)

// API is the full set of PMS backend operations.
type API interface {
	DriveAPI
	DriveCompanyAPI
	CompanyAPI
	JobAPI
	RequirementAPI
	StudentAPI

	// EligibleStudentIDs returns the IDs of students meeting the job's
	// requirement.
	EligibleStudentIDs(ctx context.Context, jobID string) ([]string, error)
}

// DriveAPI covers the /drive endpoints.
type DriveAPI interface {
	GetDrive(ctx context.Context, id string) (drives.Drive, error)
	CreateDrive(ctx context.Context, d drives.Drive) (drives.Drive, error)
	UpdateDrive(ctx context.Context, id string, d drives.Drive) (drives.Drive, error)
	DeleteDrive(ctx context.Context, id string) error

	// PublishDrive commits the job to student-ID map for the drive. Every
	// job in the map is published, including those with empty lists.
	PublishDrive(ctx context.Context, id string, jobStudents map[string][]string) error
}

// DriveCompanyAPI covers the /drive_company association endpoints.
type DriveCompanyAPI interface {
	// ListDriveCompanyIDs returns the IDs of the companies attached to a drive.
	ListDriveCompanyIDs(ctx context.Context, driveID string) ([]string, error)
	AddDriveCompany(ctx context.Context, driveID, companyID string) (drives.DriveCompany, error)
	DeleteDriveCompaniesByDrive(ctx context.Context, driveID string) error
	DeleteDriveCompaniesByCompany(ctx context.Context, companyID string) error
}

// CompanyAPI covers the /company endpoints.
type CompanyAPI interface {
	ListCompanies(ctx context.Context) ([]drives.Company, error)
	CreateCompany(ctx context.Context, c drives.Company) (drives.Company, error)
	UpdateCompany(ctx context.Context, id string, c drives.Company) (drives.Company, error)
}

// JobAPI covers the /job endpoints.
type JobAPI interface {
	ListJobsByDrive(ctx context.Context, driveID string) ([]drives.Job, error)
	CreateJob(ctx context.Context, driveID, companyID string, j drives.Job) (drives.Job, error)
	UpdateJob(ctx context.Context, id string, j drives.Job) (drives.Job, error)
	DeleteJob(ctx context.Context, id string) error
	DeleteJobsByDrive(ctx context.Context, driveID string) error
	DeleteJobsByDriveCompany(ctx context.Context, driveID, companyID string) error
}

// RequirementAPI covers the /requirements endpoints.
type RequirementAPI interface {
	ListRequirements(ctx context.Context, jobID string) ([]drives.Requirement, error)
	CreateRequirement(ctx context.Context, jobID string, r drives.Requirement) (drives.Requirement, error)
	UpdateRequirement(ctx context.Context, id string, r drives.Requirement) (drives.Requirement, error)
}

// StudentAPI covers the roster and performance endpoints.
type StudentAPI interface {
	ListStudents(ctx context.Context) ([]drives.Student, error)
	ListPerformances(ctx context.Context) ([]drives.Performance, error)
}
