package workflow

import (
	"context"

	"github.com/agentstation/placement/pkg/drives"
	"github.com/agentstation/placement/pkg/errors"
	"github.com/agentstation/placement/pkg/logging"
)

// noDrive is returned when an action needs a loaded drive and there is none.
func noDrive() error {
	return errors.NewStaleStateError("drive", "", "no drive loaded")
}

// CreateDrive creates a drive and makes it the session's drive.
func (s *Session) CreateDrive(ctx context.Context, d drives.Drive) (drives.Drive, error) {
	gen, err := s.claim(ActionCreateDrive, ScopeDrive)
	if err != nil {
		return drives.Drive{}, err
	}
	defer s.release()
	ctx = s.ctx(ctx, ActionCreateDrive, "")

	created, err := s.api.CreateDrive(ctx, d)
	if err != nil {
		return drives.Drive{}, s.fail(ctx, gen, ScopeDrive, err)
	}

	s.apply(gen, func(State) State { return withDrive(emptyState(), created) })
	logging.FromContext(ctx).Info().Str("drive_id", created.ID).Msg("Drive created")
	return created, nil
}

// UpdateDrive merges patch into the loaded drive and saves it.
func (s *Session) UpdateDrive(ctx context.Context, patch drives.DrivePatch) (drives.Drive, error) {
	gen, err := s.claim(ActionUpdateDrive, ScopeDrive)
	if err != nil {
		return drives.Drive{}, err
	}
	defer s.release()

	st := s.snapshot()
	if st.Drive == nil {
		ctx = s.ctx(ctx, ActionUpdateDrive, "")
		return drives.Drive{}, s.fail(ctx, gen, ScopeDrive, noDrive())
	}
	ctx = s.ctx(ctx, ActionUpdateDrive, st.Drive.ID)

	merged := drives.ApplyDrivePatch(*st.Drive, patch)
	updated, err := s.api.UpdateDrive(ctx, st.Drive.ID, merged)
	if err != nil {
		return drives.Drive{}, s.fail(ctx, gen, ScopeDrive, err)
	}
	if updated.ID == "" {
		updated = merged
	}

	s.apply(gen, func(st State) State { return withDrive(st, updated) })
	return updated, nil
}

// DeleteDrive deletes the loaded drive: its jobs first, then its company
// links, then the drive. The first failure stops the cascade and nothing is
// rolled back. On success the session is emptied.
func (s *Session) DeleteDrive(ctx context.Context) error {
	gen, err := s.claim(ActionDeleteDrive, ScopeDrive)
	if err != nil {
		return err
	}
	defer s.release()

	st := s.snapshot()
	if st.Drive == nil {
		ctx = s.ctx(ctx, ActionDeleteDrive, "")
		return s.fail(ctx, gen, ScopeDrive, noDrive())
	}
	driveID := st.Drive.ID
	ctx = s.ctx(ctx, ActionDeleteDrive, driveID)

	steps := []func(context.Context, string) error{
		s.api.DeleteJobsByDrive,
		s.api.DeleteDriveCompaniesByDrive,
		s.api.DeleteDrive,
	}
	for _, step := range steps {
		if err := step(ctx, driveID); err != nil {
			return s.fail(ctx, gen, ScopeDrive, err)
		}
	}

	s.apply(gen, func(State) State { return emptyState() })
	logging.FromContext(ctx).Info().Msg("Drive deleted")
	s.hooks.triggerDriveDeleted(driveID)
	return nil
}

// AddCompanyToDrive creates a company, links it to the loaded drive and
// refreshes the drive's companies, strictly in that order.
func (s *Session) AddCompanyToDrive(ctx context.Context, c drives.Company) (drives.Company, error) {
	gen, err := s.claim(ActionAddCompany, ScopeCompany)
	if err != nil {
		return drives.Company{}, err
	}
	defer s.release()

	st := s.snapshot()
	if st.Drive == nil {
		ctx = s.ctx(ctx, ActionAddCompany, "")
		return drives.Company{}, s.fail(ctx, gen, ScopeCompany, noDrive())
	}
	driveID := st.Drive.ID
	ctx = s.ctx(ctx, ActionAddCompany, driveID)

	created, err := s.api.CreateCompany(ctx, c)
	if err != nil {
		return drives.Company{}, s.fail(ctx, gen, ScopeCompany, err)
	}
	ctx = logging.WithCompany(ctx, created.ID)

	if _, err := s.api.AddDriveCompany(ctx, driveID, created.ID); err != nil {
		return created, s.fail(ctx, gen, ScopeCompany, err)
	}
	if err := s.refetchCompanies(ctx, gen, driveID); err != nil {
		return created, s.fail(ctx, gen, ScopeCompany, err)
	}

	logging.FromContext(ctx).Info().Str("name", created.Name).Msg("Company added to drive")
	return created, nil
}

// UpdateCompany merges patch into an attached company and saves it.
func (s *Session) UpdateCompany(ctx context.Context, companyID string, patch drives.CompanyPatch) (drives.Company, error) {
	gen, err := s.claim(ActionUpdateCompany, ScopeCompany)
	if err != nil {
		return drives.Company{}, err
	}
	defer s.release()

	st := s.snapshot()
	ctx = s.ctx(ctx, ActionUpdateCompany, loadedDriveID(st))
	ctx = logging.WithCompany(ctx, companyID)

	current, ok := st.Company(companyID)
	if !ok {
		return drives.Company{}, s.fail(ctx, gen, ScopeCompany,
			errors.NewStaleStateError("company", companyID, "not attached to the loaded drive"))
	}

	merged := drives.ApplyCompanyPatch(current, patch)
	updated, err := s.api.UpdateCompany(ctx, companyID, merged)
	if err != nil {
		return drives.Company{}, s.fail(ctx, gen, ScopeCompany, err)
	}
	if updated.ID == "" {
		updated = merged
	}

	s.apply(gen, func(st State) State { return withCompany(st, updated) })
	return updated, nil
}

// RemoveCompanyFromDrive deletes the company's jobs in the loaded drive,
// then its drive links, then refreshes companies and jobs.
func (s *Session) RemoveCompanyFromDrive(ctx context.Context, companyID string) error {
	gen, err := s.claim(ActionRemoveCompany, ScopeCompany)
	if err != nil {
		return err
	}
	defer s.release()

	st := s.snapshot()
	if st.Drive == nil {
		ctx = s.ctx(ctx, ActionRemoveCompany, "")
		return s.fail(ctx, gen, ScopeCompany, noDrive())
	}
	driveID := st.Drive.ID
	ctx = s.ctx(ctx, ActionRemoveCompany, driveID)
	ctx = logging.WithCompany(ctx, companyID)

	removed := drives.JobsByCompany(st.Jobs)[companyID]

	if err := s.api.DeleteJobsByDriveCompany(ctx, driveID, companyID); err != nil {
		return s.fail(ctx, gen, ScopeCompany, err)
	}
	if err := s.api.DeleteDriveCompaniesByCompany(ctx, companyID); err != nil {
		return s.fail(ctx, gen, ScopeCompany, err)
	}
	if err := s.refetchCompanies(ctx, gen, driveID); err != nil {
		return s.fail(ctx, gen, ScopeCompany, err)
	}
	if err := s.refetchJobs(ctx, gen, driveID); err != nil {
		return s.fail(ctx, gen, ScopeCompany, err)
	}

	for _, j := range removed {
		s.hooks.triggerJobChanged(JobChange{Kind: JobDeleted, Job: j})
	}
	return nil
}

// AddJob creates a job for an attached company in the loaded drive, then
// refreshes the job list.
func (s *Session) AddJob(ctx context.Context, companyID string, j drives.Job) (drives.Job, error) {
	gen, err := s.claim(ActionAddJob, ScopeJob)
	if err != nil {
		return drives.Job{}, err
	}
	defer s.release()

	st := s.snapshot()
	if st.Drive == nil {
		ctx = s.ctx(ctx, ActionAddJob, "")
		return drives.Job{}, s.fail(ctx, gen, ScopeJob, noDrive())
	}
	driveID := st.Drive.ID
	ctx = s.ctx(ctx, ActionAddJob, driveID)
	ctx = logging.WithCompany(ctx, companyID)

	if _, ok := st.Company(companyID); !ok {
		return drives.Job{}, s.fail(ctx, gen, ScopeJob,
			errors.NewStaleStateError("company", companyID, "not attached to the loaded drive"))
	}

	created, err := s.api.CreateJob(ctx, driveID, companyID, j)
	if err != nil {
		return drives.Job{}, s.fail(ctx, gen, ScopeJob, err)
	}
	s.apply(gen, func(st State) State { return withJob(st, created) })
	s.hooks.triggerJobChanged(JobChange{Kind: JobAdded, Job: created})

	if err := s.refetchJobs(ctx, gen, driveID); err != nil {
		return created, s.fail(ctx, gen, ScopeJob, err)
	}
	return created, nil
}

// UpdateJob merges patch into a job of the loaded drive and saves it. A job
// missing from local state yields a StaleStateError and no request.
func (s *Session) UpdateJob(ctx context.Context, jobID string, patch drives.JobPatch) (drives.Job, error) {
	gen, err := s.claim(ActionUpdateJob, ScopeJob)
	if err != nil {
		return drives.Job{}, err
	}
	defer s.release()

	st := s.snapshot()
	ctx = s.ctx(ctx, ActionUpdateJob, loadedDriveID(st))
	ctx = logging.WithJob(ctx, jobID)

	current, ok := st.Job(jobID)
	if !ok {
		return drives.Job{}, s.fail(ctx, gen, ScopeJob,
			errors.NewStaleStateError("job", jobID, "not present in the loaded drive"))
	}

	merged := drives.ApplyJobPatch(current, patch)
	updated, err := s.api.UpdateJob(ctx, jobID, merged)
	if err != nil {
		return drives.Job{}, s.fail(ctx, gen, ScopeJob, err)
	}
	if updated.ID == "" {
		updated = merged
	}

	s.apply(gen, func(st State) State { return withJob(st, updated) })
	s.hooks.triggerJobChanged(JobChange{Kind: JobUpdated, Job: updated})
	return updated, nil
}

// DeleteJob deletes a job and refreshes the job list.
func (s *Session) DeleteJob(ctx context.Context, jobID string) error {
	gen, err := s.claim(ActionDeleteJob, ScopeJob)
	if err != nil {
		return err
	}
	defer s.release()

	st := s.snapshot()
	if st.Drive == nil {
		ctx = s.ctx(ctx, ActionDeleteJob, "")
		return s.fail(ctx, gen, ScopeJob, noDrive())
	}
	driveID := st.Drive.ID
	ctx = s.ctx(ctx, ActionDeleteJob, driveID)
	ctx = logging.WithJob(ctx, jobID)

	if err := s.api.DeleteJob(ctx, jobID); err != nil {
		return s.fail(ctx, gen, ScopeJob, err)
	}
	if err := s.refetchJobs(ctx, gen, driveID); err != nil {
		return s.fail(ctx, gen, ScopeJob, err)
	}

	job, ok := st.Job(jobID)
	if !ok {
		job = drives.Job{ID: jobID, Drive: driveID}
	}
	s.hooks.triggerJobChanged(JobChange{Kind: JobDeleted, Job: job})
	return nil
}

// AddOrUpdateRequirement saves the requirement of a job. When local state
// already holds a requirement for the job it is patched by ID, otherwise a
// new one is created. The job's requirement is refetched afterwards.
func (s *Session) AddOrUpdateRequirement(ctx context.Context, jobID string, patch drives.RequirementPatch) (drives.Requirement, error) {
	gen, err := s.claim(ActionSaveRequirement, ScopeRequirement)
	if err != nil {
		return drives.Requirement{}, err
	}
	defer s.release()

	st := s.snapshot()
	ctx = s.ctx(ctx, ActionSaveRequirement, loadedDriveID(st))
	ctx = logging.WithJob(ctx, jobID)

	var saved drives.Requirement
	if existing, ok := st.Requirements[jobID]; ok && existing.ID != "" {
		merged := drives.ApplyRequirementPatch(existing, patch)
		saved, err = s.api.UpdateRequirement(ctx, existing.ID, merged)
		if err == nil && saved.ID == "" {
			saved = merged
		}
	} else {
		saved, err = s.api.CreateRequirement(ctx, jobID, drives.NewRequirement(jobID, patch))
	}
	if err != nil {
		return drives.Requirement{}, s.fail(ctx, gen, ScopeRequirement, err)
	}

	s.refetchRequirement(ctx, gen, jobID, saved)
	return saved, nil
}

func loadedDriveID(st State) string {
	if st.Drive == nil {
		return ""
	}
	return st.Drive.ID
}
