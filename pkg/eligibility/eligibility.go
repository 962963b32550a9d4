// Package eligibility caches, per job, the students the backend reports as
// eligible (the baseline) and the unsaved additions and removals made on
// top of it (the overlay). Reads never block: a miss starts a background
// fetch and returns an empty list until it lands.
package eligibility

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/placement/internal/cache"
	"github.com/agentstation/placement/pkg/drives"
	"github.com/agentstation/placement/pkg/logging"
)

// Source fetches the eligible student IDs of a job.
type Source interface {
	EligibleStudentIDs(ctx context.Context, jobID string) ([]string, error)
}

// flight is one fetch of a job's baseline. done is closed once ids and err
// are set.
type flight struct {
	done chan struct{}
	ids  []string
	err  error
}

// Cache holds baselines and overlays for the jobs of one drive.
type Cache struct {
	src      Source
	logger   *zerolog.Logger
	baseline *cache.Store[[]string]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	overlay map[string][]string
	errs    map[string]error
	flights map[string]*flight
	active  string
	gen     uint64
	closed  bool
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used by background fetches.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a cache reading baselines from src. Close must be called to
// stop background fetches.
func New(src Source, opts ...Option) *Cache {
	c := &Cache{
		src:      src,
		logger:   logging.Default(),
		baseline: cache.New[[]string](),
		overlay:  make(map[string][]string),
		errs:     make(map[string]error),
		flights:  make(map[string]*flight),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

// EligibleIDs returns the effective list for a job: the overlay if one
// exists, else the baseline, else an empty list. On a miss it starts a
// background fetch unless one is already running or the last one failed.
func (c *Cache) EligibleIDs(jobID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ids, ok := c.effectiveLocked(jobID); ok {
		return slices.Clone(ids)
	}
	if _, failed := c.errs[jobID]; !failed {
		c.startFetchLocked(jobID)
	}
	return []string{}
}

// Load returns the effective list for a job, waiting for the baseline
// fetch if it is not cached yet. A fetch already in flight is joined rather
// than repeated.
func (c *Cache) Load(ctx context.Context, jobID string) ([]string, error) {
	c.mu.Lock()
	if ids, ok := c.effectiveLocked(jobID); ok {
		c.mu.Unlock()
		return slices.Clone(ids), nil
	}
	f := c.startFetchLocked(jobID)
	c.mu.Unlock()

	if err := c.wait(ctx, f); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ids, ok := c.effectiveLocked(jobID); ok {
		return slices.Clone(ids), nil
	}
	return slices.Clone(f.ids), nil
}

// Refetch replaces a job's baseline with a fresh fetch. The overlay is left
// alone. A fetch already in flight is joined.
func (c *Cache) Refetch(ctx context.Context, jobID string) error {
	c.mu.Lock()
	delete(c.errs, jobID)
	f := c.startFetchLocked(jobID)
	c.mu.Unlock()

	return c.wait(ctx, f)
}

// wait blocks until f completes, ctx is done or the cache is closed.
func (c *Cache) wait(ctx context.Context, f *flight) error {
	if f == nil {
		return context.Canceled
	}
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
}

// AddStudent adds a student to the job's overlay. Adding a student already
// in the effective list changes nothing.
func (c *Cache) AddStudent(jobID, studentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, _ := c.effectiveLocked(jobID)
	if slices.Contains(current, studentID) {
		return
	}
	next := make([]string, 0, len(current)+1)
	next = append(next, current...)
	c.overlay[jobID] = append(next, studentID)
}

// RemoveStudent removes a student from the job's overlay. The overlay is
// written even when the student was not present.
func (c *Cache) RemoveStudent(jobID, studentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, _ := c.effectiveLocked(jobID)
	next := make([]string, 0, len(current))
	for _, id := range current {
		if id != studentID {
			next = append(next, id)
		}
	}
	c.overlay[jobID] = next
}

// AvailableToAdd returns the students from all that are not in the job's
// effective list, in the order given.
func (c *Cache) AvailableToAdd(jobID string, all []drives.Student) []drives.Student {
	c.mu.Lock()
	current, _ := c.effectiveLocked(jobID)
	in := make(map[string]struct{}, len(current))
	for _, id := range current {
		in[id] = struct{}{}
	}
	c.mu.Unlock()

	out := make([]drives.Student, 0, len(all))
	for _, s := range all {
		if _, ok := in[s.ID]; !ok {
			out = append(out, s)
		}
	}
	return out
}

// SetActive makes jobID the active job and prefetches its baseline.
func (c *Cache) SetActive(jobID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.active = jobID
	if jobID == "" {
		return
	}
	if _, ok := c.baseline.Get(jobID); ok {
		return
	}
	if _, failed := c.errs[jobID]; failed {
		return
	}
	c.startFetchLocked(jobID)
}

// Active returns the active job ID.
func (c *Cache) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Reset clears overlays, baselines, errors and the active job. Fetches
// still in flight finish in the background and their results are dropped.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.overlay = make(map[string][]string)
	c.errs = make(map[string]error)
	c.flights = make(map[string]*flight)
	c.active = ""
	c.baseline.Clear()
}

// Close cancels background fetches and waits for them to return. The cache
// must not be used afterwards.
func (c *Cache) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

// Err returns the error of the job's last failed fetch, or nil.
func (c *Cache) Err(jobID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errs[jobID]
}

// Loading reports whether a fetch is in flight for the job.
func (c *Cache) Loading(jobID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.flights[jobID]
	return ok
}

// Overlay returns a copy of the job's overlay and whether one exists.
func (c *Cache) Overlay(jobID string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids, ok := c.overlay[jobID]
	return slices.Clone(ids), ok
}

// Baseline returns a copy of the job's baseline and whether one is cached.
func (c *Cache) Baseline(jobID string) ([]string, bool) {
	ids, ok := c.baseline.Get(jobID)
	return slices.Clone(ids), ok
}

// OverlayJobs returns the IDs of jobs that have unsaved edits.
func (c *Cache) OverlayJobs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	jobs := make([]string, 0, len(c.overlay))
	for id := range c.overlay {
		jobs = append(jobs, id)
	}
	slices.Sort(jobs)
	return jobs
}

// effectiveLocked returns overlay, then baseline. The bool is false when
// neither exists.
func (c *Cache) effectiveLocked(jobID string) ([]string, bool) {
	if ids, ok := c.overlay[jobID]; ok {
		return ids, true
	}
	if ids, ok := c.baseline.Get(jobID); ok {
		return ids, true
	}
	return nil, false
}

// startFetchLocked returns the job's in-flight fetch, starting one if none
// is running. It returns nil once the cache is closed.
func (c *Cache) startFetchLocked(jobID string) *flight {
	if f, ok := c.flights[jobID]; ok {
		return f
	}
	if c.closed {
		return nil
	}

	f := &flight{done: make(chan struct{})}
	c.flights[jobID] = f
	gen := c.gen

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx := logging.WithLogger(c.ctx, c.logger)
		ctx = logging.WithJob(ctx, jobID)
		ids, err := c.src.EligibleStudentIDs(ctx, jobID)
		c.complete(ctx, jobID, gen, f, ids, err)
	}()
	return f
}

// complete records a fetch result unless the cache was reset after the
// fetch started.
func (c *Cache) complete(ctx context.Context, jobID string, gen uint64, f *flight, ids []string, err error) {
	if ids == nil {
		ids = []string{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	defer close(f.done)

	f.ids, f.err = slices.Clone(ids), err
	if gen != c.gen {
		logging.FromContext(ctx).Debug().Msg("Discarding eligibility fetch from before reset")
		return
	}
	delete(c.flights, jobID)

	if err != nil {
		c.errs[jobID] = err
		logging.FromContext(ctx).Warn().Err(err).Msg("Eligible students fetch failed")
		return
	}
	delete(c.errs, jobID)
	c.baseline.Set(jobID, f.ids)
	logging.FromContext(ctx).Debug().Int("students", len(ids)).Msg("Eligible students cached")
}
