package audit

import "time"

// Event is an immutable, append-only record of something notable in a
// call's lifecycle.
//
// Invariants:
// - Events are never updated or deleted.
// - call_id is required; every event hangs off a call.
// - Capture is best-effort; callers never block a live call on audit failures.

type Event struct {
	ID     string `json:"id" db:"id"`
	CallID string `json:"call_id" db:"call_id"`

	// Type indicates the business category of the record.
	Type EventType `json:"type" db:"type"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeRecapSent   EventType = "recap_sent"
	EventTypeRecapFailed EventType = "recap_failed"
	EventTypeCallEnded   EventType = "call_ended"
)
