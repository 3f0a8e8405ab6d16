package reporting

import (
	"context"
	"errors"
	"time"

	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/session"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts data access for reporting. Implementations should
// read from the call_sessions store; session.PostgresStore and
// session.MemoryStore both satisfy it.

type Repository interface {
	List(ctx context.Context, from, to time.Time) ([]session.CallSession, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) IntakeSummary(ctx context.Context, req IntakeSummaryRequest) (IntakeSummary, error) {
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return IntakeSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return IntakeSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.List(ctx, req.Range.From, req.Range.To)
	if err != nil {
		return IntakeSummary{}, err
	}

	out := IntakeSummary{CallsByIntent: map[string]int{}}
	for _, c := range rows {
		out.TotalCalls++
		out.TotalDurationSeconds += c.DurationSeconds

		switch c.Status {
		case session.CallStatusHandled:
			out.HandledCalls++
		case session.CallStatusCompleted:
			out.CompletedCalls++
		case session.CallStatusFailed:
			out.FailedCalls++
		case session.CallStatusNoAnswer:
			out.NoAnswerCalls++
		case session.CallStatusBusy:
			out.BusyCalls++
		case session.CallStatusInProgress:
			out.InProgressCalls++
		}

		if c.State == session.StateDone {
			out.CompletedIntakes++
		}
		if c.SMSSent {
			out.RecapsSent++
		}
		if c.CollectedData.Intent != "" {
			out.CallsByIntent[string(c.CollectedData.Intent)]++
		}
	}
	if out.TotalCalls > 0 {
		out.AverageDurationSeconds = out.TotalDurationSeconds / out.TotalCalls
	}
	return out, nil
}
