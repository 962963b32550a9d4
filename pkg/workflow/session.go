// Package workflow keeps the client-side state of one placement drive while
// it is being edited: the drive itself, the companies attached to it, their
// jobs and each job's requirement. It issues backend calls in the order the
// backend's relations require, derives progress scores, and allows only one
// mutating action at a time.
package workflow

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/placement/pkg/backend"
	"github.com/agentstation/placement/pkg/constants"
	"github.com/agentstation/placement/pkg/drives"
	"github.com/agentstation/placement/pkg/errors"
	"github.com/agentstation/placement/pkg/logging"
)

// Backend is the subset of the PMS API a session needs.
type Backend interface {
	backend.DriveAPI
	backend.DriveCompanyAPI
	backend.CompanyAPI
	backend.JobAPI
	backend.RequirementAPI
}

// Session is the editing state of a single drive.
type Session struct {
	api    Backend
	logger *zerolog.Logger
	hooks  *hooks

	mu    sync.Mutex
	state State
	gen   uint64
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a session with no drive loaded.
func New(api Backend, opts ...Option) *Session {
	s := &Session{
		api:    api,
		logger: logging.Default(),
		hooks:  newHooks(),
		state:  emptyState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Pending reports the action in flight, or ActionIdle.
func (s *Session) Pending() Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Action
}

// Err returns the message stored in a scope's error slot.
func (s *Session) Err(scope Scope) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Errors[scope]
}

// Reset forgets the loaded drive. Results of an action still in flight are
// discarded when it completes.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	action := s.state.Action
	s.state = emptyState()
	s.state.Action = action
	s.gen++
}

// claim takes the action slot. It fails without side effects when another
// action is pending.
func (s *Session) claim(a Action, scope Scope) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Action != ActionIdle {
		return 0, errors.ErrActionInFlight
	}
	s.state.Action = a
	s.state = clearError(s.state, scope)
	return s.gen, nil
}

// release frees the action slot.
func (s *Session) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Action = ActionIdle
}

// apply runs a transition if the session has not been reset since gen.
func (s *Session) apply(gen uint64, fn func(State) State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	action := s.state.Action
	s.state = fn(s.state)
	s.state.Action = action
}

// fail records err in the scope's slot and returns it.
func (s *Session) fail(ctx context.Context, gen uint64, scope Scope, err error) error {
	logging.FromContext(ctx).Error().Err(err).Str("scope", string(scope)).Msg("Drive workflow action failed")
	s.apply(gen, func(st State) State { return withError(st, scope, err) })
	return err
}

// snapshot returns the parts of state an action reads before calling out.
func (s *Session) snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// ctx attaches the session logger and drive to ctx.
func (s *Session) ctx(ctx context.Context, op Action, driveID string) context.Context {
	ctx = logging.WithLogger(ctx, s.logger)
	ctx = logging.WithOperation(ctx, string(op))
	if driveID != "" {
		ctx = logging.WithDrive(ctx, driveID)
	}
	return ctx
}

// Load fetches a drive and everything attached to it. The drive is fetched
// first; its company links, the company list and its jobs are then fetched
// in parallel and any failure aborts the load; finally each job's
// requirement is fetched in parallel, where a failure only logs and leaves
// the job without a requirement.
func (s *Session) Load(ctx context.Context, driveID string) error {
	gen, err := s.claim(ActionLoadDrive, ScopeDrive)
	if err != nil {
		return err
	}
	defer s.release()
	ctx = s.ctx(ctx, ActionLoadDrive, driveID)

	d, err := s.api.GetDrive(ctx, driveID)
	if err != nil {
		return s.fail(ctx, gen, ScopeDrive, err)
	}

	var (
		companyIDs []string
		companies  []drives.Company
		jobs       []drives.Job
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		ids, err := s.api.ListDriveCompanyIDs(egCtx, driveID)
		companyIDs = ids
		return err
	})
	eg.Go(func() error {
		all, err := s.api.ListCompanies(egCtx)
		companies = all
		return err
	})
	eg.Go(func() error {
		list, err := s.api.ListJobsByDrive(egCtx, driveID)
		jobs = list
		return err
	})
	if err := eg.Wait(); err != nil {
		return s.fail(ctx, gen, ScopeDrive, err)
	}

	reqs := s.fetchRequirements(ctx, jobs)

	s.apply(gen, func(State) State {
		st := emptyState()
		st = withDrive(st, d)
		st = withCompanies(st, companyIDs, companies)
		st = withJobs(st, jobs)
		for jobID, r := range reqs {
			st = withRequirement(st, jobID, &r)
		}
		return st
	})

	logging.FromContext(ctx).Info().
		Int("companies", len(companyIDs)).
		Int("jobs", len(jobs)).
		Int("requirements", len(reqs)).
		Msg("Drive loaded")
	return nil
}

// fetchRequirements fetches the requirement of every job in parallel.
// Failed fetches are logged and omitted.
func (s *Session) fetchRequirements(ctx context.Context, jobs []drives.Job) map[string]drives.Requirement {
	var (
		mu   sync.Mutex
		reqs = make(map[string]drives.Requirement, len(jobs))
	)
	var eg errgroup.Group
	eg.SetLimit(constants.MaxConcurrentRequests)
	for _, j := range jobs {
		eg.Go(func() error {
			list, err := s.api.ListRequirements(ctx, j.ID)
			if err != nil {
				logging.FromContext(ctx).Warn().Err(err).Str("job_id", j.ID).
					Msg("Requirement fetch failed, treating job as having none")
				return nil
			}
			if len(list) == 0 {
				return nil
			}
			mu.Lock()
			reqs[j.ID] = list[0]
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()
	return reqs
}

// refetchRequirement refreshes one job's requirement, keeping fallback when
// the fetch fails.
func (s *Session) refetchRequirement(ctx context.Context, gen uint64, jobID string, fallback drives.Requirement) {
	list, err := s.api.ListRequirements(ctx, jobID)
	if err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("Requirement refetch failed, keeping saved copy")
		s.apply(gen, func(st State) State { return withRequirement(st, jobID, &fallback) })
		return
	}
	if len(list) == 0 {
		s.apply(gen, func(st State) State { return withRequirement(st, jobID, &fallback) })
		return
	}
	s.apply(gen, func(st State) State { return withRequirement(st, jobID, &list[0]) })
}

// refetchCompanies refreshes the drive's company links and company list.
func (s *Session) refetchCompanies(ctx context.Context, gen uint64, driveID string) error {
	var (
		ids []string
		all []drives.Company
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		ids, err = s.api.ListDriveCompanyIDs(egCtx, driveID)
		return err
	})
	eg.Go(func() error {
		var err error
		all, err = s.api.ListCompanies(egCtx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return err
	}
	s.apply(gen, func(st State) State { return withCompanies(st, ids, all) })
	return nil
}

// refetchJobs refreshes the drive's job list.
func (s *Session) refetchJobs(ctx context.Context, gen uint64, driveID string) error {
	jobs, err := s.api.ListJobsByDrive(ctx, driveID)
	if err != nil {
		return err
	}
	s.apply(gen, func(st State) State { return withJobs(st, jobs) })
	return nil
}
