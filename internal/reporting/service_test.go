package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/session"
)

func seedStore(t *testing.T, base time.Time) *session.MemoryStore {
	t.Helper()
	store := session.NewMemoryStore()
	ctx := context.Background()

	rows := []session.CallSession{
		{
			CallID: "CA1", Status: session.CallStatusCompleted, State: session.StateDone,
			CollectedData:   session.CollectedData{Intent: session.IntentBooking},
			DurationSeconds: 90, SMSSent: true, StartedAt: base,
		},
		{
			CallID: "CA2", Status: session.CallStatusCompleted, State: session.StateCollect,
			CollectedData:   session.CollectedData{Intent: session.IntentPricing},
			DurationSeconds: 30, StartedAt: base.Add(time.Minute),
		},
		{
			CallID: "CA3", Status: session.CallStatusNoAnswer,
			StartedAt: base.Add(2 * time.Minute),
		},
		{
			CallID: "CA4", Status: session.CallStatusCompleted, State: session.StateDone,
			CollectedData:   session.CollectedData{Intent: session.IntentBooking},
			DurationSeconds: 60, SMSSent: true, StartedAt: base.Add(2 * time.Hour),
		},
	}
	for _, r := range rows {
		if err := store.Upsert(ctx, r); err != nil {
			t.Fatalf("seed %s: %v", r.CallID, err)
		}
	}
	return store
}

func TestIntakeSummary_Aggregates(t *testing.T) {
	base := time.Unix(1700000000, 0).UTC()
	store := seedStore(t, base)
	svc := NewService(store)

	out, err := svc.IntakeSummary(context.Background(), IntakeSummaryRequest{
		Range: TimeRange{From: base, To: base.Add(time.Hour)},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	// CA4 starts outside the range.
	if out.TotalCalls != 3 {
		t.Fatalf("total = %d, want 3", out.TotalCalls)
	}
	if out.CompletedCalls != 2 || out.NoAnswerCalls != 1 {
		t.Fatalf("status counts wrong: %+v", out)
	}
	if out.CompletedIntakes != 1 {
		t.Fatalf("completed intakes = %d, want 1", out.CompletedIntakes)
	}
	if out.RecapsSent != 1 {
		t.Fatalf("recaps = %d, want 1", out.RecapsSent)
	}
	if out.CallsByIntent["booking"] != 1 || out.CallsByIntent["pricing"] != 1 {
		t.Fatalf("intent counts wrong: %+v", out.CallsByIntent)
	}
	if out.TotalDurationSeconds != 120 || out.AverageDurationSeconds != 40 {
		t.Fatalf("durations wrong: %+v", out)
	}
}

func TestIntakeSummary_InvalidRange(t *testing.T) {
	base := time.Unix(1700000000, 0).UTC()
	svc := NewService(session.NewMemoryStore())

	cases := []TimeRange{
		{},
		{From: base},
		{From: base, To: base},
		{From: base, To: base.Add(-time.Hour)},
	}
	for _, tr := range cases {
		if _, err := svc.IntakeSummary(context.Background(), IntakeSummaryRequest{Range: tr}); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("range %+v: expected ErrInvalidRequest, got %v", tr, err)
		}
	}
}

func TestIntakeSummary_EmptyStore(t *testing.T) {
	base := time.Unix(1700000000, 0).UTC()
	svc := NewService(session.NewMemoryStore())

	out, err := svc.IntakeSummary(context.Background(), IntakeSummaryRequest{
		Range: TimeRange{From: base, To: base.Add(time.Hour)},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalCalls != 0 || out.AverageDurationSeconds != 0 {
		t.Fatalf("expected zero summary, got %+v", out)
	}
	if out.CallsByIntent == nil {
		t.Fatalf("intent map should be allocated")
	}
}
