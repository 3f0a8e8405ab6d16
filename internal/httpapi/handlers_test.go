package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/reporting"
	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/session"
)

func newReportRouter(t *testing.T, store *session.MemoryStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := Handlers{Reports: reporting.NewService(store)}
	r.GET("/v1/reports/intake", h.IntakeSummary)
	return r
}

func TestIntakeSummary_ExplicitRange(t *testing.T) {
	store := session.NewMemoryStore()
	base := time.Unix(1700000000, 0).UTC()
	if err := store.Upsert(context.Background(), session.CallSession{
		CallID: "CA1", Status: session.CallStatusCompleted, State: session.StateDone,
		CollectedData: session.CollectedData{Intent: session.IntentBooking},
		StartedAt:     base,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	r := newReportRouter(t, store)

	url := "/v1/reports/intake?from=" + base.Add(-time.Hour).Format(time.RFC3339) +
		"&to=" + base.Add(time.Hour).Format(time.RFC3339)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var out reporting.IntakeSummary
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.TotalCalls != 1 || out.CompletedIntakes != 1 {
		t.Fatalf("unexpected summary: %+v", out)
	}
}

func TestIntakeSummary_DefaultsToLastSevenDays(t *testing.T) {
	store := session.NewMemoryStore()
	if err := store.Upsert(context.Background(), session.CallSession{
		CallID: "CA1", Status: session.CallStatusCompleted,
		StartedAt: time.Now().UTC().Add(-time.Hour),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	r := newReportRouter(t, store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/reports/intake", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var out reporting.IntakeSummary
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.TotalCalls != 1 {
		t.Fatalf("default range should include recent call: %+v", out)
	}
}

func TestIntakeSummary_BadTimestamp(t *testing.T) {
	r := newReportRouter(t, session.NewMemoryStore())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/reports/intake?from=yesterday", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestIntakeSummary_InvertedRange(t *testing.T) {
	r := newReportRouter(t, session.NewMemoryStore())
	base := time.Unix(1700000000, 0).UTC()

	url := "/v1/reports/intake?from=" + base.Format(time.RFC3339) +
		"&to=" + base.Add(-time.Hour).Format(time.RFC3339)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
