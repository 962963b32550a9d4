// Package publish turns the eligibility edits of a drive into the single
// job to students map the backend publishes, and commits it.
package publish

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/placement/pkg/drives"
	"github.com/agentstation/placement/pkg/errors"
	"github.com/agentstation/placement/pkg/logging"
)

// View exposes the per-job lists Finalize merges. eligibility.Cache
// satisfies it.
type View interface {
	Overlay(jobID string) ([]string, bool)
	Baseline(jobID string) ([]string, bool)
}

// Publisher commits a finalized map for a drive.
type Publisher interface {
	PublishDrive(ctx context.Context, id string, jobStudents map[string][]string) error
}

// Finalize resolves every job to exactly one list: its overlay if one
// exists, else its baseline, else an empty list. Jobs outside jobs are
// ignored even when they have an overlay.
func Finalize(jobs []drives.Job, view View) map[string][]string {
	out := make(map[string][]string, len(jobs))
	for _, j := range jobs {
		if ids, ok := view.Overlay(j.ID); ok {
			out[j.ID] = nonNil(ids)
			continue
		}
		if ids, ok := view.Baseline(j.ID); ok {
			out[j.ID] = nonNil(ids)
			continue
		}
		out[j.ID] = []string{}
	}
	return out
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return slices.Clone(ids)
}

// Reconciler finalizes and commits publications. It keeps the message of
// the last failed commit.
type Reconciler struct {
	api    Publisher
	view   View
	logger *zerolog.Logger

	mu     sync.Mutex
	errMsg string
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithReconcilerLogger sets the reconciler logger.
func WithReconcilerLogger(logger *zerolog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewReconciler creates a reconciler committing through api the lists
// found in view.
func NewReconciler(api Publisher, view View, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{api: api, view: view, logger: logging.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Commit finalizes the lists of jobs and publishes them in one call. On
// failure the returned error is a *errors.PublishError, its message is kept
// for Err and the view is left untouched so the commit can be retried.
func (r *Reconciler) Commit(ctx context.Context, driveID string, jobs []drives.Job) (map[string][]string, error) {
	ctx = logging.WithLogger(ctx, r.logger)
	ctx = logging.WithDrive(ctx, driveID)
	ctx = logging.WithOperation(ctx, "publish")

	final := Finalize(jobs, r.view)
	if err := r.api.PublishDrive(ctx, driveID, final); err != nil {
		perr := &errors.PublishError{DriveID: driveID, Jobs: len(final), Err: err}
		r.mu.Lock()
		r.errMsg = errors.Message(err)
		r.mu.Unlock()
		logging.FromContext(ctx).Error().Err(err).Int("jobs", len(final)).Msg("Publish failed")
		return nil, perr
	}

	r.mu.Lock()
	r.errMsg = ""
	r.mu.Unlock()

	students := 0
	for _, ids := range final {
		students += len(ids)
	}
	logging.FromContext(ctx).Info().
		Int("jobs", len(final)).
		Int("students", students).
		Msg("Drive published")
	return final, nil
}

// Err returns the message of the last failed commit, or "".
func (r *Reconciler) Err() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errMsg
}
