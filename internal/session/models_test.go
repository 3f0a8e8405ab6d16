package session

import (
	"strings"
	"testing"
)

func strp(s string) *string { return &s }

func TestMerge_FillsAndOverwrites(t *testing.T) {
	d := CollectedData{}
	d = d.Merge(ExtractedFields{
		Intent:  strp("service_request"),
		Service: strp("oil change"),
	})
	if d.Intent != IntentServiceRequest {
		t.Fatalf("expected service_request, got %q", d.Intent)
	}
	if d.Service != "oil change" {
		t.Fatalf("expected service, got %q", d.Service)
	}

	// A later turn can correct a field with a non-empty value.
	d = d.Merge(ExtractedFields{Service: strp("tire rotation")})
	if d.Service != "tire rotation" {
		t.Fatalf("expected overwrite, got %q", d.Service)
	}
}

func TestMerge_Monotonic(t *testing.T) {
	d := CollectedData{}
	d = d.Merge(ExtractedFields{
		Service:       strp("haircut"),
		Location:      strp("downtown salon"),
		PreferredTime: strp("tomorrow at 3pm"),
		CallerName:    strp("Dana"),
		VehicleOrItem: strp("n/a"),
	})

	// Replay turns with every combination of absent fields; nothing may
	// be erased.
	empties := []ExtractedFields{
		{},
		{Service: nil, Location: nil},
		{Notes: strp("extra context")},
		{Intent: strp("other")},
	}
	for _, f := range empties {
		d = d.Merge(f)
		if d.Service != "haircut" || d.Location != "downtown salon" ||
			d.PreferredTime != "tomorrow at 3pm" || d.CallerName != "Dana" || d.VehicleOrItem != "n/a" {
			t.Fatalf("field erased by merge of %+v: %+v", f, d)
		}
	}
}

func TestMerge_SameTurnTwiceIsIdempotent(t *testing.T) {
	turn := ExtractedFields{
		Intent:   strp("booking"),
		Service:  strp("haircut"),
		Location: strp("5th street"),
		Notes:    strp("prefers mornings"),
	}
	once := CollectedData{}.Merge(turn)
	twice := once.Merge(turn)
	if once != twice {
		t.Fatalf("duplicate merge changed data:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestMerge_NotesAccumulate(t *testing.T) {
	d := CollectedData{}
	d = d.Merge(ExtractedFields{Notes: strp("first thing")})
	d = d.Merge(ExtractedFields{Notes: strp("second thing")})
	if d.Notes != "first thing; second thing" {
		t.Fatalf("expected accumulated notes, got %q", d.Notes)
	}
}

func TestMerge_IntentDefaultsToOther(t *testing.T) {
	d := CollectedData{}.Merge(ExtractedFields{Notes: strp("hello")})
	if d.Intent != IntentOther {
		t.Fatalf("expected other, got %q", d.Intent)
	}
	// A real intent on a later turn still wins.
	d = d.Merge(ExtractedFields{Intent: strp("booking")})
	if d.Intent != IntentBooking {
		t.Fatalf("expected booking, got %q", d.Intent)
	}
}

func TestReadyToConfirm(t *testing.T) {
	cases := []struct {
		name string
		d    CollectedData
		want bool
	}{
		{"empty", CollectedData{}, false},
		{"booking missing time", CollectedData{Intent: IntentBooking, Service: "cut", Location: "here"}, false},
		{"booking complete", CollectedData{Intent: IntentBooking, Service: "cut", Location: "here", PreferredTime: "noon"}, true},
		{"service request complete", CollectedData{Intent: IntentServiceRequest, Service: "fix", Location: "shop", PreferredTime: "tomorrow"}, true},
		{"pricing with one field", CollectedData{Intent: IntentPricing, Service: "detail"}, true},
		{"pricing with nothing", CollectedData{Intent: IntentPricing}, false},
		{"hours with name", CollectedData{Intent: IntentHours, CallerName: "Sam"}, true},
		{"other with name", CollectedData{Intent: IntentOther, CallerName: "John Smith"}, true},
		{"other with notes only", CollectedData{Intent: IntentOther, Notes: "just chatting"}, false},
	}
	for _, tc := range cases {
		if got := tc.d.ReadyToConfirm(); got != tc.want {
			t.Fatalf("%s: ReadyToConfirm = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestNextMissingField_PriorityOrder(t *testing.T) {
	d := CollectedData{}
	order := []string{"service", "location", "preferred_time", "vehicle_or_item", "caller_name"}
	fill := []func(*CollectedData){
		func(d *CollectedData) { d.Service = "s" },
		func(d *CollectedData) { d.Location = "l" },
		func(d *CollectedData) { d.PreferredTime = "t" },
		func(d *CollectedData) { d.VehicleOrItem = "v" },
		func(d *CollectedData) { d.CallerName = "n" },
	}
	for i, want := range order {
		if got := d.NextMissingField(); got != want {
			t.Fatalf("step %d: got %q, want %q", i, got, want)
		}
		fill[i](&d)
	}
	if got := d.NextMissingField(); got != "" {
		t.Fatalf("expected empty after all filled, got %q", got)
	}
}

func TestSummary(t *testing.T) {
	d := CollectedData{Service: "oil change", Location: "123 Main Street", PreferredTime: "tomorrow at 3pm"}
	got := d.Summary()
	if got != "oil change, 123 Main Street, tomorrow at 3pm" {
		t.Fatalf("unexpected summary: %q", got)
	}
	if (CollectedData{}).Summary() != "" {
		t.Fatalf("expected empty summary")
	}
}

func TestAppendTranscript(t *testing.T) {
	var s CallSession
	s.AppendTranscript("hello")
	s.AppendTranscript("  world  ")
	s.AppendTranscript("")
	if s.Transcript != "hello\nworld" {
		t.Fatalf("unexpected transcript: %q", s.Transcript)
	}
	if strings.Count(s.Transcript, "\n") != 1 {
		t.Fatalf("expected single separator")
	}
}

func TestTranscriptTurns(t *testing.T) {
	var s CallSession
	if s.TranscriptTurns() != 0 {
		t.Fatalf("empty transcript should count zero turns")
	}
	s.AppendTranscript("hello")
	if s.TranscriptTurns() != 1 {
		t.Fatalf("expected one turn, got %d", s.TranscriptTurns())
	}
	s.AppendTranscript("no")
	s.AppendTranscript("no")
	if s.TranscriptTurns() != 3 {
		t.Fatalf("repeated speech still advances the turn count, got %d", s.TranscriptTurns())
	}
}

func TestCallStatusTerminal(t *testing.T) {
	for _, st := range []CallStatus{CallStatusCompleted, CallStatusNoAnswer, CallStatusBusy, CallStatusFailed} {
		if !st.Terminal() {
			t.Fatalf("%s should be terminal", st)
		}
	}
	for _, st := range []CallStatus{CallStatusInProgress, CallStatusHandled} {
		if st.Terminal() {
			t.Fatalf("%s should not be terminal", st)
		}
	}
}
