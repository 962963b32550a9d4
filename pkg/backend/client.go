package backend

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/agentstation/placement/internal/transport"
	"github.com/agentstation/placement/pkg/drives"
	"github.com/agentstation/placement/pkg/errors"
)

// Client talks to the PMS backend over HTTP.
type Client struct {
	t *transport.Client
}

var _ API = (*Client)(nil)

// NewClient creates a backend client rooted at baseURL.
func NewClient(baseURL string, opts ...transport.Option) *Client {
	return &Client{t: transport.New(baseURL, opts...)}
}

// NewClientFromTransport wraps an existing transport client.
func NewClientFromTransport(t *transport.Client) *Client {
	return &Client{t: t}
}

// call performs one request and maps failures onto typed errors for the
// given operation and resource.
func (c *Client) call(ctx context.Context, op, resource, id, method, path string, body, out any) error {
	if err := c.t.Do(ctx, method, path, body, out); err != nil {
		return errors.WrapResource(op, resource, id, mapStatus(err, resource, id))
	}
	return nil
}

// mapStatus turns an HTTP status failure into the matching domain error.
// Transport and parse failures pass through unchanged.
func mapStatus(err error, resource, id string) error {
	var apiErr *errors.APIError
	if !stderrors.As(err, &apiErr) {
		return err
	}
	switch apiErr.StatusCode {
	case http.StatusNotFound:
		return errors.NewNotFoundError(resource, id)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &errors.ValidationError{Message: apiErr.Message}
	case http.StatusConflict:
		return errors.NewStaleStateError(resource, id, apiErr.Message)
	default:
		return apiErr
	}
}

// GetDrive fetches a drive by ID.
func (c *Client) GetDrive(ctx context.Context, id string) (drives.Drive, error) {
	var d drives.Drive
	err := c.call(ctx, "fetch", "drive", id, http.MethodGet, withID(pathDriveGet, id), nil, &d)
	return d, err
}

// CreateDrive creates a drive and returns it with its assigned ID.
func (c *Client) CreateDrive(ctx context.Context, d drives.Drive) (drives.Drive, error) {
	d.ID = ""
	var created drives.Drive
	err := c.call(ctx, "create", "drive", "", http.MethodPost, pathDriveAdd, d, &created)
	return created, err
}

// UpdateDrive replaces the editable fields of a drive. The student lists
// are owned by the backend and never sent.
func (c *Client) UpdateDrive(ctx context.Context, id string, d drives.Drive) (drives.Drive, error) {
	d.ID = ""
	d.AppliedStudents = nil
	d.SelectedStudents = nil
	d.SendTo = nil
	var updated drives.Drive
	err := c.call(ctx, "update", "drive", id, http.MethodPatch, withID(pathDriveUpdate, id), d, &updated)
	return updated, err
}

// DeleteDrive deletes a drive.
func (c *Client) DeleteDrive(ctx context.Context, id string) error {
	return c.call(ctx, "delete", "drive", id, http.MethodDelete, withID(pathDriveDelete, id), nil, nil)
}

// PublishDrive commits the job to student map for a drive. Nil lists are
// sent as empty arrays so the backend clears stale recipients.
func (c *Client) PublishDrive(ctx context.Context, id string, jobStudents map[string][]string) error {
	body := make(map[string][]string, len(jobStudents))
	for job, students := range jobStudents {
		if students == nil {
			students = []string{}
		}
		body[job] = students
	}
	return c.call(ctx, "publish", "drive", id, http.MethodPost, withID(pathDrivePublish, id), body, nil)
}

// ListDriveCompanyIDs returns the IDs of the companies attached to a drive.
func (c *Client) ListDriveCompanyIDs(ctx context.Context, driveID string) ([]string, error) {
	var ids []string
	err := c.call(ctx, "fetch", "drive companies", driveID, http.MethodGet, withID(pathDCGetByDrive, driveID), nil, &ids)
	return ids, err
}

// AddDriveCompany attaches a company to a drive.
func (c *Client) AddDriveCompany(ctx context.Context, driveID, companyID string) (drives.DriveCompany, error) {
	var dc drives.DriveCompany
	body := drives.DriveCompany{Drive: driveID, Company: companyID}
	err := c.call(ctx, "create", "drive company", companyID, http.MethodPost, pathDCAdd, body, &dc)
	return dc, err
}

// DeleteDriveCompaniesByDrive detaches every company from a drive.
func (c *Client) DeleteDriveCompaniesByDrive(ctx context.Context, driveID string) error {
	return c.call(ctx, "delete", "drive companies", driveID, http.MethodDelete, withID(pathDCDelByDrive, driveID), nil, nil)
}

// DeleteDriveCompaniesByCompany detaches a company from every drive.
func (c *Client) DeleteDriveCompaniesByCompany(ctx context.Context, companyID string) error {
	return c.call(ctx, "delete", "drive companies", companyID, http.MethodDelete, withID(pathDCDelByCompany, companyID), nil, nil)
}

// ListCompanies returns every company.
func (c *Client) ListCompanies(ctx context.Context) ([]drives.Company, error) {
	var companies []drives.Company
	err := c.call(ctx, "fetch", "companies", "", http.MethodGet, pathCompanyGet, nil, &companies)
	return companies, err
}

// CreateCompany creates a company.
func (c *Client) CreateCompany(ctx context.Context, co drives.Company) (drives.Company, error) {
	co.ID = ""
	var created drives.Company
	err := c.call(ctx, "create", "company", "", http.MethodPost, pathCompanyAdd, co, &created)
	return created, err
}

// UpdateCompany replaces the editable fields of a company.
func (c *Client) UpdateCompany(ctx context.Context, id string, co drives.Company) (drives.Company, error) {
	co.ID = ""
	var updated drives.Company
	err := c.call(ctx, "update", "company", id, http.MethodPatch, withID(pathCompanyUpdate, id), co, &updated)
	return updated, err
}

// ListJobsByDrive returns the jobs of a drive.
func (c *Client) ListJobsByDrive(ctx context.Context, driveID string) ([]drives.Job, error) {
	var jobs []drives.Job
	err := c.call(ctx, "fetch", "jobs", driveID, http.MethodGet, withID(pathJobGetByDrive, driveID), nil, &jobs)
	return jobs, err
}

// CreateJob creates a job scoped to a drive and company.
func (c *Client) CreateJob(ctx context.Context, driveID, companyID string, j drives.Job) (drives.Job, error) {
	j.ID = ""
	j.Drive = driveID
	j.Company = companyID
	var created drives.Job
	err := c.call(ctx, "create", "job", "", http.MethodPost, withID(pathJobAdd, driveID, companyID), j, &created)
	return created, err
}

// UpdateJob replaces the editable fields of a job.
func (c *Client) UpdateJob(ctx context.Context, id string, j drives.Job) (drives.Job, error) {
	j.ID = ""
	var updated drives.Job
	err := c.call(ctx, "update", "job", id, http.MethodPatch, withID(pathJobUpdate, id), j, &updated)
	return updated, err
}

// DeleteJob deletes a job.
func (c *Client) DeleteJob(ctx context.Context, id string) error {
	return c.call(ctx, "delete", "job", id, http.MethodDelete, withID(pathJobDelete, id), nil, nil)
}

// DeleteJobsByDrive deletes every job of a drive.
func (c *Client) DeleteJobsByDrive(ctx context.Context, driveID string) error {
	return c.call(ctx, "delete", "jobs", driveID, http.MethodDelete, withID(pathJobDelByDrive, driveID), nil, nil)
}

// DeleteJobsByDriveCompany deletes the jobs a company offers in a drive.
func (c *Client) DeleteJobsByDriveCompany(ctx context.Context, driveID, companyID string) error {
	return c.call(ctx, "delete", "jobs", companyID, http.MethodDelete, withID(pathJobDelByDC, driveID, companyID), nil, nil)
}

// ListRequirements returns the requirements recorded for a job.
func (c *Client) ListRequirements(ctx context.Context, jobID string) ([]drives.Requirement, error) {
	var reqs []drives.Requirement
	err := c.call(ctx, "fetch", "requirements", jobID, http.MethodGet, withID(pathReqGetByJob, jobID), nil, &reqs)
	return reqs, err
}

// CreateRequirement creates the requirement of a job.
func (c *Client) CreateRequirement(ctx context.Context, jobID string, r drives.Requirement) (drives.Requirement, error) {
	r.ID = ""
	r.Job = jobID
	var created drives.Requirement
	err := c.call(ctx, "create", "requirement", jobID, http.MethodPost, withID(pathReqAdd, jobID), r, &created)
	return created, err
}

// UpdateRequirement replaces the fields of a requirement.
func (c *Client) UpdateRequirement(ctx context.Context, id string, r drives.Requirement) (drives.Requirement, error) {
	r.ID = ""
	var updated drives.Requirement
	err := c.call(ctx, "update", "requirement", id, http.MethodPatch, withID(pathReqUpdate, id), r, &updated)
	return updated, err
}

// EligibleStudentIDs returns the students eligible for a job.
func (c *Client) EligibleStudentIDs(ctx context.Context, jobID string) ([]string, error) {
	var ids []string
	path := withID(pathJobPrefix, jobID) + pathEligibleSuffix
	err := c.call(ctx, "fetch", "eligible students", jobID, http.MethodGet, path, nil, &ids)
	if ids == nil && err == nil {
		ids = []string{}
	}
	return ids, err
}

// ListStudents returns the student roster.
func (c *Client) ListStudents(ctx context.Context) ([]drives.Student, error) {
	var students []drives.Student
	err := c.call(ctx, "fetch", "students", "", http.MethodGet, pathStudentGet, nil, &students)
	return students, err
}

// ListPerformances returns every student's academic record.
func (c *Client) ListPerformances(ctx context.Context) ([]drives.Performance, error) {
	var perfs []drives.Performance
	err := c.call(ctx, "fetch", "performances", "", http.MethodGet, pathPerformanceGet, nil, &perfs)
	return perfs, err
}
