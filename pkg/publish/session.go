package publish

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/placement/pkg/backend"
	"github.com/agentstation/placement/pkg/constants"
	"github.com/agentstation/placement/pkg/drives"
	"github.com/agentstation/placement/pkg/eligibility"
	"github.com/agentstation/placement/pkg/errors"
	"github.com/agentstation/placement/pkg/logging"
)

// Backend is the subset of the PMS API a publish session needs.
type Backend interface {
	backend.StudentAPI
	eligibility.Source
	Publisher
}

// PublishedHook is called after a drive is published.
type PublishedHook func(driveID string, jobStudents map[string][]string)

// Session edits and publishes the eligible students of one drive's jobs.
type Session struct {
	api     Backend
	logger  *zerolog.Logger
	driveID string
	jobs    []drives.Job
	cache   *eligibility.Cache
	rec     *Reconciler

	hooksMu     sync.RWMutex
	onPublished []PublishedHook

	mu       sync.Mutex
	students []drives.Student
	perfs    map[string]drives.Performance
	initErr  string
}

type sessionConfig struct {
	logger *zerolog.Logger
}

// Option configures a Session.
type Option func(*sessionConfig)

// WithLogger sets the session logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *sessionConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Open creates a session for the jobs of a drive. The first job becomes the
// active tab and its baseline is prefetched. Close must be called when the
// session is done.
func Open(api Backend, driveID string, jobs []drives.Job, opts ...Option) *Session {
	cfg := &sessionConfig{logger: logging.Default()}
	for _, opt := range opts {
		opt(cfg)
	}

	c := eligibility.New(api, eligibility.WithLogger(cfg.logger))
	s := &Session{
		api:     api,
		logger:  cfg.logger,
		driveID: driveID,
		jobs:    slices.Clone(jobs),
		cache:   c,
		rec:     NewReconciler(api, c, WithReconcilerLogger(cfg.logger)),
		perfs:   make(map[string]drives.Performance),
	}
	if len(jobs) > 0 {
		c.SetActive(jobs[0].ID)
	}
	return s
}

// LoadRoster fetches the student roster and all performance records in
// parallel. A failure is kept in the initial-data slot and returned.
func (s *Session) LoadRoster(ctx context.Context) error {
	ctx = s.ctx(ctx, "load_roster")

	var (
		students []drives.Student
		perfs    []drives.Performance
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		students, err = s.api.ListStudents(egCtx)
		return err
	})
	eg.Go(func() error {
		var err error
		perfs, err = s.api.ListPerformances(egCtx)
		return err
	})
	if err := eg.Wait(); err != nil {
		s.mu.Lock()
		s.initErr = errors.Message(err)
		s.mu.Unlock()
		logging.FromContext(ctx).Error().Err(err).Msg("Loading students failed")
		return err
	}

	byStudent := make(map[string]drives.Performance, len(perfs))
	for _, p := range perfs {
		byStudent[p.StudentID] = p
	}

	s.mu.Lock()
	s.students = students
	s.perfs = byStudent
	s.initErr = ""
	s.mu.Unlock()

	logging.FromContext(ctx).Debug().
		Int("students", len(students)).
		Int("performances", len(perfs)).
		Msg("Roster loaded")
	return nil
}

// Prefetch loads the baseline of every job, at most
// constants.MaxConcurrentRequests at a time. Failures stay on their job and
// the first one is returned.
func (s *Session) Prefetch(ctx context.Context) error {
	var eg errgroup.Group
	eg.SetLimit(constants.MaxConcurrentRequests)
	for _, j := range s.jobs {
		eg.Go(func() error {
			_, err := s.cache.Load(ctx, j.ID)
			return err
		})
	}
	return eg.Wait()
}

// DriveID returns the drive being published.
func (s *Session) DriveID() string { return s.driveID }

// Jobs returns the jobs of the drive, one per tab.
func (s *Session) Jobs() []drives.Job { return slices.Clone(s.jobs) }

// SetActive switches to a job's tab and prefetches its baseline.
func (s *Session) SetActive(jobID string) error {
	if !s.hasJob(jobID) {
		return errors.NewStaleStateError("job", jobID, "not part of drive "+s.driveID)
	}
	s.cache.SetActive(jobID)
	return nil
}

// Active returns the job of the active tab.
func (s *Session) Active() string { return s.cache.Active() }

// Students returns the roster entries in a job's effective list, in roster
// order, each joined with its performance record.
func (s *Session) Students(jobID string) []drives.StudentWithPerformance {
	ids := s.cache.EligibleIDs(jobID)
	in := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		in[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]drives.StudentWithPerformance, 0, len(ids))
	for _, st := range s.students {
		if _, ok := in[st.ID]; ok {
			out = append(out, s.joinLocked(st))
		}
	}
	return out
}

// AvailableToAdd returns the roster entries not in a job's effective list.
func (s *Session) AvailableToAdd(jobID string) []drives.StudentWithPerformance {
	s.mu.Lock()
	roster := s.students
	s.mu.Unlock()

	avail := s.cache.AvailableToAdd(jobID, roster)

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]drives.StudentWithPerformance, 0, len(avail))
	for _, st := range avail {
		out = append(out, s.joinLocked(st))
	}
	return out
}

func (s *Session) joinLocked(st drives.Student) drives.StudentWithPerformance {
	out := drives.StudentWithPerformance{Student: st}
	if p, ok := s.perfs[st.ID]; ok {
		out.Performance = &p
	}
	return out
}

// Add puts a student on a job's list.
func (s *Session) Add(jobID, studentID string) error {
	if !s.hasJob(jobID) {
		return errors.NewStaleStateError("job", jobID, "not part of drive "+s.driveID)
	}
	s.cache.AddStudent(jobID, studentID)
	return nil
}

// Remove takes a student off a job's list.
func (s *Session) Remove(jobID, studentID string) error {
	if !s.hasJob(jobID) {
		return errors.NewStaleStateError("job", jobID, "not part of drive "+s.driveID)
	}
	s.cache.RemoveStudent(jobID, studentID)
	return nil
}

// Finalize returns the map Commit would publish.
func (s *Session) Finalize() map[string][]string {
	return Finalize(s.jobs, s.cache)
}

// Commit publishes the drive. Edits survive a failed commit.
func (s *Session) Commit(ctx context.Context) (map[string][]string, error) {
	final, err := s.rec.Commit(ctx, s.driveID, s.jobs)
	if err != nil {
		return nil, err
	}
	s.triggerPublished(final)
	return final, nil
}

// Err returns the baseline fetch error of a job, or nil.
func (s *Session) Err(jobID string) error { return s.cache.Err(jobID) }

// Loading reports whether a job's baseline is being fetched.
func (s *Session) Loading(jobID string) bool { return s.cache.Loading(jobID) }

// Refetch reloads a job's baseline, clearing a previous failure.
func (s *Session) Refetch(ctx context.Context, jobID string) error {
	return s.cache.Refetch(ctx, jobID)
}

// InitErr returns the message of a failed roster load, or "".
func (s *Session) InitErr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initErr
}

// PublishErr returns the message of the last failed commit, or "".
func (s *Session) PublishErr() string { return s.rec.Err() }

// Edited returns the IDs of jobs with unsaved edits.
func (s *Session) Edited() []string { return s.cache.OverlayJobs() }

// Close stops background fetches.
func (s *Session) Close() { s.cache.Close() }

// OnPublished registers a callback for successful commits.
func (s *Session) OnPublished(fn PublishedHook) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.onPublished = append(s.onPublished, fn)
}

func (s *Session) triggerPublished(final map[string][]string) {
	s.hooksMu.RLock()
	defer s.hooksMu.RUnlock()
	for _, fn := range s.onPublished {
		fn(s.driveID, final)
	}
}

func (s *Session) hasJob(jobID string) bool {
	return slices.ContainsFunc(s.jobs, func(j drives.Job) bool { return j.ID == jobID })
}

func (s *Session) ctx(ctx context.Context, op string) context.Context {
	ctx = logging.WithLogger(ctx, s.logger)
	ctx = logging.WithDrive(ctx, s.driveID)
	return logging.WithOperation(ctx, op)
}
