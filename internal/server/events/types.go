// Package events fans placement changes made through the mock backend out
// to every realtime transport (WebSocket, SSE) through one broker.
package events

import "time"

// EventType names a change.
type EventType string

// Event types for drive changes.
const (
	DriveCreated   EventType = "drive.created"
	DriveUpdated   EventType = "drive.updated"
	DriveDeleted   EventType = "drive.deleted"
	DrivePublished EventType = "drive.published"

	CompanyCreated  EventType = "company.created"
	CompanyUpdated  EventType = "company.updated"
	CompanyAttached EventType = "company.attached"
	CompanyDetached EventType = "company.detached"

	JobCreated EventType = "job.created"
	JobUpdated EventType = "job.updated"
	JobDeleted EventType = "job.deleted"

	RequirementSaved EventType = "requirement.saved"

	// Client events (from transport layers).
	ClientConnected EventType = "client.connected"
)

// Event is one change with its payload.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}
