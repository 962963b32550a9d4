// Package memory is an in-process implementation of backend.API. It keeps
// the same relations as the PMS database (drives, companies, drive-company
// links, jobs, requirements, students, performances), records every call in
// order, and can be told to fail specific operations. The mock server in
// internal/server serves it over HTTP.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/agentstation/utc"
	"github.com/google/uuid"

	"github.com/agentstation/placement/pkg/backend"
	"github.com/agentstation/placement/pkg/drives"
	"github.com/agentstation/placement/pkg/errors"
)

// Backend is an in-memory PMS backend. It is safe for concurrent use.
type Backend struct {
	mu sync.RWMutex

	drives       map[string]drives.Drive
	companies    map[string]drives.Company
	companyOrder []string
	driveCompany []drives.DriveCompany
	jobs         map[string]drives.Job
	jobOrder     []string
	requirements map[string]drives.Requirement
	students     []drives.Student
	performances map[string]drives.Performance
	published    map[string]map[string][]string
	calls        []string
	failures     map[string]error
	newID        func() string
}

var _ backend.API = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithIDGenerator replaces the uuid-based ID generator.
func WithIDGenerator(gen func() string) Option {
	return func(b *Backend) {
		if gen != nil {
			b.newID = gen
		}
	}
}

// New creates an empty backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		drives:       make(map[string]drives.Drive),
		companies:    make(map[string]drives.Company),
		jobs:         make(map[string]drives.Job),
		requirements: make(map[string]drives.Requirement),
		performances: make(map[string]drives.Performance),
		published:    make(map[string]map[string][]string),
		failures:     make(map[string]error),
		newID:        func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FailOn makes every later call to op return err. Passing a nil err clears
// the failure. op is the method name, e.g. "DeleteJobsByDrive".
func (b *Backend) FailOn(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.failures, op)
		return
	}
	b.failures[op] = err
}

// Calls returns the calls made so far, formatted as "Op(arg,...)".
func (b *Backend) Calls() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.calls)
}

// ResetCalls forgets the recorded calls.
func (b *Backend) ResetCalls() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
}

// Published returns the last job to students map committed for a drive.
func (b *Backend) Published(driveID string) (map[string][]string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	m, ok := b.published[driveID]
	if !ok {
		return nil, false
	}
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = slices.Clone(v)
	}
	return out, true
}

// SeedStudents adds students and their performance records to the roster.
func (b *Backend) SeedStudents(students []drives.Student, perfs []drives.Performance) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.students = append(b.students, students...)
	for _, p := range perfs {
		if p.ID == "" {
			p.ID = b.newID()
		}
		b.performances[p.StudentID] = p
	}
}

// record appends a call and returns the injected failure for op, if any.
// Callers hold the write lock.
func (b *Backend) record(ctx context.Context, op string, args ...string) error {
	b.calls = append(b.calls, fmt.Sprintf("%s(%s)", op, joinArgs(args)))
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.failures[op]
}

func joinArgs(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += ","
		}
		out += a
	}
	return out
}

// GetDrive implements backend.DriveAPI.
func (b *Backend) GetDrive(ctx context.Context, id string) (drives.Drive, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(ctx, "GetDrive", id); err != nil {
		return drives.Drive{}, err
	}
	d, ok := b.drives[id]
	if !ok {
		return drives.Drive{}, errors.NewNotFoundError("drive", id)
	}
	return d, nil
}

// CreateDrive implements backend.DriveAPI.
func (b *Backend) CreateDrive(ctx context.Context, d drives.Drive) (drives.Drive, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(ctx, "CreateDrive", d.Title); err != nil {
		return drives.Drive{}, err
	}
	if d.Title == "" {
		return drives.Drive{}, errors.NewValidationError("title", d.Title, "is required")
	}
	d.ID = b.newID()
	now := utc.Now()
	d.CreatedAt = &now
	b.drives[d.ID] = d
	return d, nil
}

// UpdateDrive implements backend.DriveAPI.
func (b *Backend) UpdateDrive(ctx context.Context, id string, d drives.Drive) (drives.Drive, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(ctx, "UpdateDrive", id); err != nil {
		return drives.Drive{}, err
	}
	current, ok := b.drives[id]
	if !ok {
		return drives.Drive{}, errors.NewNotFoundError("drive", id)
	}
	d.ID = id
	d.CreatedAt = current.CreatedAt
	d.AppliedStudents = current.AppliedStudents
	d.SelectedStudents = current.SelectedStudents
	d.SendTo = current.SendTo
	b.drives[id] = d
	return d, nil
}

// DeleteDrive implements backend.DriveAPI.
func (b *Backend) DeleteDrive(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(ctx, "DeleteDrive", id); err != nil {
		return err
	}
	if _, ok := b.drives[id]; !ok {
		return errors.NewNotFoundError("drive", id)
	}
	delete(b.drives, id)
	delete(b.published, id)
	return nil
}

// PublishDrive implements backend.DriveAPI. The drive's SendTo becomes the
// sorted union of every published list.
func (b *Backend) PublishDrive(ctx context.Context, id string, jobStudents map[string][]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(ctx, "PublishDrive", id); err != nil {
		return err
	}
	d, ok := b.drives[id]
	if !ok {
		return errors.NewNotFoundError("drive", id)
	}

	committed := make(map[string][]string, len(jobStudents))
	seen := make(map[string]struct{})
	for job, students := range jobStudents {
		committed[job] = slices.Clone(students)
		for _, s := range students {
			seen[s] = struct{}{}
		}
	}
	sendTo := make([]string, 0, len(seen))
	for s := range seen {
		sendTo = append(sendTo, s)
	}
	sort.Strings(sendTo)

	d.SendTo = sendTo
	b.drives[id] = d
	b.published[id] = committed
	return nil
}

// ListDriveCompanyIDs implements backend.DriveCompanyAPI.
func (b *Backend) ListDriveCompanyIDs(ctx context.Context, driveID string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(ctx, "ListDriveCompanyIDs", driveID); err != nil {
		return nil, err
	}
	ids := []string{}
	for _, dc := range b.driveCompany {
		if dc.Drive == driveID {
			ids = append(ids, dc.Company)
		}
	}
	return ids, nil
}

// AddDriveCompany implements backend.DriveCompanyAPI.
func (b *Backend) AddDriveCompany(ctx context.Context, driveID, companyID string) (drives.DriveCompany, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(ctx, "AddDriveCompany", driveID, companyID); err != nil {
		return drives.DriveCompany{}, err
	}
	if _, ok := b.drives[driveID]; !ok {
		return drives.DriveCompany{}, errors.NewNotFoundError("drive", driveID)
	}
	if _, ok := b.companies[companyID]; !ok {
		return drives.DriveCompany{}, errors.NewNotFoundError("company", companyID)
	}
	dc := drives.DriveCompany{ID: b.newID(), Drive: driveID, Company: companyID}
	b.driveCompany = append(b.driveCompany, dc)
	return dc, nil
}

// DeleteDriveCompaniesByDrive implements backend.DriveCompanyAPI.
func (b *Backend) DeleteDriveCompaniesByDrive(ctx context.Context, driveID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(ctx, "DeleteDriveCompaniesByDrive", driveID); err != nil {
		return err
	}
	b.driveCompany = slices.DeleteFunc(b.driveCompany, func(dc drives.DriveCompany) bool {
		return dc.Drive == driveID
	})
	return nil
}

// DeleteDriveCompaniesByCompany implements backend.DriveCompanyAPI.
func (b *Backend) DeleteDriveCompaniesByCompany(ctx context.Context, companyID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(ctx, "DeleteDriveCompaniesByCompany", companyID); err != nil {
		return err
	}
	b.driveCompany = slices.DeleteFunc(b.driveCompany, func(dc drives.DriveCompany) bool {
		return dc.Company == companyID
	})
	return nil
}

// ListCompanies implements backend.CompanyAPI.
func (b *Backend) ListCompanies(ctx context.Context) ([]drives.Company, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(ctx, "ListCompanies"); err != nil {
		return nil, err
	}
	out := make([]drives.Company, 0, len(b.companyOrder))
	for _, id := range b.companyOrder {
		out = append(out, b.companies[id])
	}
	return out, nil
}

// CreateCompany implements backend.CompanyAPI.
func (b *Backend) CreateCompany(ctx context.Context, c drives.Company) (drives.Company, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(ctx, "CreateCompany", c.Name); err != nil {
		return drives.Company{}, err
	}
	if c.Name == "" {
		return drives.Company{}, errors.NewValidationError("name", c.Name, "is required")
	}
	if c.Branch == "" {
		return drives.Company{}, errors.NewValidationError("branch", c.Branch, "is required")
	}
	c.ID = b.newID()
	b.companies[c.ID] = c
	b.companyOrder = append(b.companyOrder, c.ID)
	return c, nil
}

// UpdateCompany implements backend.CompanyAPI.
func (b *Backend) UpdateCompany(ctx context.Context, id string, c drives.Company) (drives.Company, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(ctx, "UpdateCompany", id); err != nil {
		return drives.Company{}, err
	}
	if _, ok := b.companies[id]; !ok {
		return drives.Company{}, errors.NewNotFoundError("company", id)
	}
	c.ID = id
	b.companies[id] = c
	return c, nil
}

// ListJobsByDrive implements backend.JobAPI.
func (b *Backend) ListJobsByDrive(ctx context.Context, driveID string) ([]drives.Job, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(ctx, "ListJobsByDrive", driveID); err != nil {
		return nil, err
	}
	out := []drives.Job{}
	for _, id := range b.jobOrder {
		if j := b.jobs[id]; j.Drive == driveID {
			out = append(out, j)
		}
	}
	return out, nil
}

// CreateJob implements backend.JobAPI.
func (b *Backend) CreateJob(ctx context.Context, driveID, companyID string, j drives.Job) (drives.Job, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(ctx, "CreateJob", driveID, companyID); err != nil {
		return drives.Job{}, err
	}
	if _, ok := b.drives[driveID]; !ok {
		return drives.Job{}, errors.NewNotFoundError("drive", driveID)
	}
	if j.Title == "" {
		return drives.Job{}, errors.NewValidationError("title", j.Title, "is required")
	}
	j.ID = b.newID()
	j.Drive = driveID
	j.Company = companyID
	b.jobs[j.ID] = j
	b.jobOrder = append(b.jobOrder, j.ID)
	return j, nil
}

// UpdateJob implements backend.JobAPI.
func (b *Backend) UpdateJob(ctx context.Context, id string, j drives.Job) (drives.Job, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(ctx, "UpdateJob", id); err != nil {
		return drives.Job{}, err
	}
	current, ok := b.jobs[id]
	if !ok {
		return drives.Job{}, errors.NewNotFoundError("job", id)
	}
	j.ID = id
	j.Drive = current.Drive
	j.Company = current.Company
	b.jobs[id] = j
	return j, nil
}

// DeleteJob implements backend.JobAPI.
func (b *Backend) DeleteJob(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(ctx, "DeleteJob", id); err != nil {
		return err
	}
	if _, ok := b.jobs[id]; !ok {
		return errors.NewNotFoundError("job", id)
	}
	b.removeJobsLocked(func(j drives.Job) bool { return j.ID == id })
	return nil
}

// DeleteJobsByDrive implements backend.JobAPI.
func (b *Backend) DeleteJobsByDrive(ctx context.Context, driveID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(ctx, "DeleteJobsByDrive", driveID); err != nil {
		return err
	}
	b.removeJobsLocked(func(j drives.Job) bool { return j.Drive == driveID })
	return nil
}

// DeleteJobsByDriveCompany implements backend.JobAPI.
func (b *Backend) DeleteJobsByDriveCompany(ctx context.Context, driveID, companyID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(ctx, "DeleteJobsByDriveCompany", driveID, companyID); err != nil {
		return err
	}
	b.removeJobsLocked(func(j drives.Job) bool {
		return j.Drive == driveID && j.Company == companyID
	})
	return nil
}

// removeJobsLocked deletes matching jobs and their requirements.
func (b *Backend) removeJobsLocked(match func(drives.Job) bool) {
	b.jobOrder = slices.DeleteFunc(b.jobOrder, func(id string) bool {
		j := b.jobs[id]
		if !match(j) {
			return false
		}
		delete(b.jobs, id)
		for rid, r := range b.requirements {
			if r.Job == id {
				delete(b.requirements, rid)
			}
		}
		return true
	})
}

// ListRequirements implements backend.RequirementAPI.
func (b *Backend) ListRequirements(ctx context.Context, jobID string) ([]drives.Requirement, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(ctx, "ListRequirements", jobID); err != nil {
		return nil, err
	}
	out := []drives.Requirement{}
	for _, r := range b.requirements {
		if r.Job == jobID {
			out = append(out, r)
		}
	}
	return out, nil
}

// CreateRequirement implements backend.RequirementAPI.
func (b *Backend) CreateRequirement(ctx context.Context, jobID string, r drives.Requirement) (drives.Requirement, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(ctx, "CreateRequirement", jobID); err != nil {
		return drives.Requirement{}, err
	}
	j, ok := b.jobs[jobID]
	if !ok {
		return drives.Requirement{}, errors.NewNotFoundError("job", jobID)
	}
	r.ID = b.newID()
	r.Job = jobID
	b.requirements[r.ID] = r
	j.Requirement = r.ID
	b.jobs[jobID] = j
	return r, nil
}

// UpdateRequirement implements backend.RequirementAPI.
func (b *Backend) UpdateRequirement(ctx context.Context, id string, r drives.Requirement) (drives.Requirement, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(ctx, "UpdateRequirement", id); err != nil {
		return drives.Requirement{}, err
	}
	current, ok := b.requirements[id]
	if !ok {
		return drives.Requirement{}, errors.NewNotFoundError("requirement", id)
	}
	r.ID = id
	r.Job = current.Job
	b.requirements[id] = r
	return r, nil
}

// EligibleStudentIDs implements backend.API. A job without a requirement
// is open to every student on the roster.
func (b *Backend) EligibleStudentIDs(ctx context.Context, jobID string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(ctx, "EligibleStudentIDs", jobID); err != nil {
		return nil, err
	}
	if _, ok := b.jobs[jobID]; !ok {
		return nil, errors.NewNotFoundError("job", jobID)
	}

	var req *drives.Requirement
	for _, r := range b.requirements {
		if r.Job == jobID {
			req = &r
			break
		}
	}

	ids := []string{}
	for _, s := range b.students {
		perf, hasPerf := b.performances[s.ID]
		if req == nil || Eligible(*req, perf, hasPerf) {
			ids = append(ids, s.ID)
		}
	}
	return ids, nil
}

// ListStudents implements backend.StudentAPI.
func (b *Backend) ListStudents(ctx context.Context) ([]drives.Student, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(ctx, "ListStudents"); err != nil {
		return nil, err
	}
	return slices.Clone(b.students), nil
}

// ListPerformances implements backend.StudentAPI.
func (b *Backend) ListPerformances(ctx context.Context) ([]drives.Performance, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(ctx, "ListPerformances"); err != nil {
		return nil, err
	}
	out := make([]drives.Performance, 0, len(b.performances))
	for _, s := range b.students {
		if p, ok := b.performances[s.ID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
