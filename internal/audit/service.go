package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided.

type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal call-lifecycle events.
//
// Audit is internal-only; records are never exposed to callers. Callers
// treat logging as best-effort and ignore failures.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s == nil || s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.CallID == "" {
		return ErrInvalidEvent
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogRecapSent records a successful recap text, with the provider sid.
func (s *Service) LogRecapSent(ctx context.Context, callID, sid string) error {
	return s.Append(ctx, Event{
		CallID:   callID,
		Type:     EventTypeRecapSent,
		Message:  "recap sms sent",
		Metadata: `{"sid":"` + sid + `"}`,
	})
}

// LogRecapFailed records a recap delivery failure.
func (s *Service) LogRecapFailed(ctx context.Context, callID, reason string) error {
	return s.Append(ctx, Event{
		CallID:  callID,
		Type:    EventTypeRecapFailed,
		Message: reason,
	})
}

// LogCallEnded records the terminal provider status for a call.
func (s *Service) LogCallEnded(ctx context.Context, callID, status string, durationSeconds int) error {
	return s.Append(ctx, Event{
		CallID:   callID,
		Type:     EventTypeCallEnded,
		Message:  status,
		Metadata: fmt.Sprintf(`{"duration_seconds":%d}`, durationSeconds),
	})
}
