package workflow

import (
	"sync"

	"github.com/agentstation/placement/pkg/drives"
)

// JobChangeKind says what happened to a job.
type JobChangeKind string

// Job change kinds.
const (
	JobAdded   JobChangeKind = "added"
	JobUpdated JobChangeKind = "updated"
	JobDeleted JobChangeKind = "deleted"
)

// JobChange describes a job that was created, updated or deleted through a
// session.
type JobChange struct {
	Kind JobChangeKind
	Job  drives.Job
}

// Hook function types for workflow events
type (
	// DriveDeletedHook is called after a drive's delete cascade succeeds
	DriveDeletedHook func(driveID string)

	// JobChangedHook is called after a job is added, updated or deleted
	JobChangedHook func(change JobChange)
)

// hooks manages event callbacks for session changes
type hooks struct {
	mu             sync.RWMutex
	onDriveDeleted []DriveDeletedHook
	onJobChanged   []JobChangedHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnDriveDeleted registers a callback for when the session's drive is deleted.
func (s *Session) OnDriveDeleted(fn DriveDeletedHook) {
	s.hooks.mu.Lock()
	defer s.hooks.mu.Unlock()
	s.hooks.onDriveDeleted = append(s.hooks.onDriveDeleted, fn)
}

// OnJobChanged registers a callback for job changes.
func (s *Session) OnJobChanged(fn JobChangedHook) {
	s.hooks.mu.Lock()
	defer s.hooks.mu.Unlock()
	s.hooks.onJobChanged = append(s.hooks.onJobChanged, fn)
}

func (h *hooks) triggerDriveDeleted(driveID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onDriveDeleted {
		fn(driveID)
	}
}

func (h *hooks) triggerJobChanged(change JobChange) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onJobChanged {
		fn(change)
	}
}
