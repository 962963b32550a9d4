package placement

import (
	"sync"
)

// Hook function types for drive events
type (
	// DrivePublishedHook is called after a drive's eligible students are
	// committed
	DrivePublishedHook func(driveID string, jobStudents map[string][]string)

	// DriveDeletedHook is called after a drive and everything attached to it
	// is deleted
	DriveDeletedHook func(driveID string)
)

// Hooks provides event callback registration.
type Hooks interface {
	// OnDrivePublished registers a callback for published drives
	OnDrivePublished(fn DrivePublishedHook)

	// OnDriveDeleted registers a callback for deleted drives
	OnDriveDeleted(fn DriveDeletedHook)
}

// hooks manages event callbacks for drive changes
type hooks struct {
	mu               sync.RWMutex
	onDrivePublished []DrivePublishedHook
	onDriveDeleted   []DriveDeletedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnDrivePublished registers a callback for published drives.
func (c *client) OnDrivePublished(fn DrivePublishedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onDrivePublished = append(c.hooks.onDrivePublished, fn)
}

// OnDriveDeleted registers a callback for deleted drives.
func (c *client) OnDriveDeleted(fn DriveDeletedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onDriveDeleted = append(c.hooks.onDriveDeleted, fn)
}

func (h *hooks) triggerDrivePublished(driveID string, jobStudents map[string][]string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onDrivePublished {
		fn(driveID, jobStudents)
	}
}

func (h *hooks) triggerDriveDeleted(driveID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onDriveDeleted {
		fn(driveID)
	}
}
