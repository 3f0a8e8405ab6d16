package session

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session: not found")

// Store is the persistence contract for call sessions.
//
// Upsert semantics are merge-not-replace: concurrent writers (the voice-turn
// handler and the status-callback handler) touch the same row, and a partial
// update must never clobber fields it does not own.
type Store interface {
	// Get returns the session for a call id, or ErrNotFound.
	Get(ctx context.Context, callID string) (CallSession, error)

	// Upsert creates the session on first delivery and merges on every
	// subsequent one. Empty fields in sess do not erase stored values.
	Upsert(ctx context.Context, sess CallSession) error

	// UpdateCallStatus applies a status-callback update: status, duration
	// and ended_at only. Collected data and transcript are untouched.
	UpdateCallStatus(ctx context.Context, callID string, status CallStatus, durationSeconds int, endedAt *time.Time) error

	// ClaimRecap atomically flips the sms_sent guard false->true.
	// Returns true only for the single caller that won the claim.
	ClaimRecap(ctx context.Context, callID string) (bool, error)

	// ReleaseRecap clears the guard after a failed send so a later
	// delivery can try again.
	ReleaseRecap(ctx context.Context, callID string) error

	// SetRecapSID records the provider message id after a successful send.
	SetRecapSID(ctx context.Context, callID, sid string) error
}
