package session

import (
	"strings"
	"time"
)

// CallSession tracks one telephone call: status, conversation state,
// accumulated intake data and the recap idempotency guard.
//
// The session is the only shared mutable resource between the voice-turn
// handler and the status-callback handler. All writes go through a
// merge-then-write pattern; nothing does a blind overwrite.

type CallSession struct {
	CallID     string `json:"call_id" db:"call_id"`
	FromNumber string `json:"from_number,omitempty" db:"from_number"`
	ToNumber   string `json:"to_number,omitempty" db:"to_number"`

	Status CallStatus `json:"status" db:"status"`
	State  ConvState  `json:"state" db:"state"`

	CollectedData CollectedData `json:"collected_data" db:"collected_data"`

	// Transcript is the newline-joined record of all speech turns.
	// Append-only; a duplicate delivery is filtered by the TurnDeduper
	// before it reaches the transcript.
	Transcript string `json:"transcript,omitempty" db:"transcript"`

	DurationSeconds int `json:"duration_seconds,omitempty" db:"duration_seconds"`

	// SMSSent is the recap idempotency guard. It transitions false->true
	// at most once per call, only through Store.ClaimRecap.
	SMSSent bool   `json:"sms_sent" db:"sms_sent"`
	SMSSID  string `json:"sms_sid,omitempty" db:"sms_sid"`

	StartedAt time.Time  `json:"started_at" db:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty" db:"ended_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

type CallStatus string

const (
	CallStatusInProgress CallStatus = "in-progress"
	CallStatusHandled    CallStatus = "handled"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusNoAnswer   CallStatus = "no-answer"
	CallStatusBusy       CallStatus = "busy"
	CallStatusFailed     CallStatus = "failed"
)

// Terminal reports whether the status ends the call lifecycle.
// EndedAt is only set alongside a terminal status.
func (s CallStatus) Terminal() bool {
	switch s {
	case CallStatusCompleted, CallStatusNoAnswer, CallStatusBusy, CallStatusFailed:
		return true
	default:
		return false
	}
}

// ConvState is the conversation-state marker.
// Legal moves: collect -> confirm, confirm -> collect (on rejection),
// confirm -> done. It never leaves done.
type ConvState string

const (
	StateCollect ConvState = "collect"
	StateConfirm ConvState = "confirm"
	StateDone    ConvState = "done"
)

type Intent string

const (
	IntentBooking        Intent = "booking"
	IntentServiceRequest Intent = "service_request"
	IntentPricing        Intent = "pricing"
	IntentHours          Intent = "hours"
	IntentOther          Intent = "other"
)

// CollectedData is the structured intake record accumulated across turns.
// Empty string means "not captured yet"; fields are filled by Merge and
// never erased by a later turn that lacks them.
type CollectedData struct {
	Intent        Intent `json:"intent,omitempty"`
	CallerName    string `json:"caller_name,omitempty"`
	Service       string `json:"service,omitempty"`
	VehicleOrItem string `json:"vehicle_or_item,omitempty"`
	Location      string `json:"location,omitempty"`
	PreferredTime string `json:"preferred_time,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// ExtractedFields is one turn's extraction output. Nil means the field was
// not stated in this turn; the JSON shape matches the strict schema the AI
// extractor is instructed to return.
type ExtractedFields struct {
	Intent        *string `json:"intent"`
	CallerName    *string `json:"caller_name"`
	Service       *string `json:"service"`
	VehicleOrItem *string `json:"vehicle_or_item"`
	Location      *string `json:"location"`
	PreferredTime *string `json:"preferred_time"`
	Notes         *string `json:"notes"`
}

// AnyIdentityField reports whether the turn stated at least one of the five
// concrete intake fields. Intent and notes do not count: the rule fallback
// always produces notes, and counting them would confirm every call after a
// single turn.
func (f ExtractedFields) AnyIdentityField() bool {
	return nonEmpty(f.CallerName) || nonEmpty(f.Service) || nonEmpty(f.VehicleOrItem) ||
		nonEmpty(f.Location) || nonEmpty(f.PreferredTime)
}

func nonEmpty(p *string) bool {
	return p != nil && strings.TrimSpace(*p) != ""
}

// Merge folds one turn's extraction into the accumulated record.
// Last-non-null-wins: a stated value overwrites, an absent one is ignored.
// Notes are the exception and accumulate.
func (d CollectedData) Merge(f ExtractedFields) CollectedData {
	out := d
	if nonEmpty(f.Intent) {
		if in, ok := ParseIntent(*f.Intent); ok {
			out.Intent = in
		}
	}
	if out.Intent == "" {
		out.Intent = IntentOther
	}
	if nonEmpty(f.CallerName) {
		out.CallerName = strings.TrimSpace(*f.CallerName)
	}
	if nonEmpty(f.Service) {
		out.Service = strings.TrimSpace(*f.Service)
	}
	if nonEmpty(f.VehicleOrItem) {
		out.VehicleOrItem = strings.TrimSpace(*f.VehicleOrItem)
	}
	if nonEmpty(f.Location) {
		out.Location = strings.TrimSpace(*f.Location)
	}
	if nonEmpty(f.PreferredTime) {
		out.PreferredTime = strings.TrimSpace(*f.PreferredTime)
	}
	if nonEmpty(f.Notes) {
		n := strings.TrimSpace(*f.Notes)
		if out.Notes == "" {
			out.Notes = n
		} else if !strings.Contains(out.Notes, n) {
			out.Notes = out.Notes + "; " + n
		}
	}
	return out
}

func ParseIntent(s string) (Intent, bool) {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case IntentBooking:
		return IntentBooking, true
	case IntentServiceRequest:
		return IntentServiceRequest, true
	case IntentPricing:
		return IntentPricing, true
	case IntentHours:
		return IntentHours, true
	case IntentOther:
		return IntentOther, true
	default:
		return "", false
	}
}

// ReadyToConfirm reports whether intake is complete enough to read back a
// summary. Booking-like intents need service, location and preferred time;
// other intents confirm as soon as any concrete field has been captured.
func (d CollectedData) ReadyToConfirm() bool {
	switch d.Intent {
	case IntentBooking, IntentServiceRequest:
		return d.Service != "" && d.Location != "" && d.PreferredTime != ""
	default:
		// Pricing, hours, other and unset: a single concrete field is enough
		// to read back what we have.
		return d.CallerName != "" || d.Service != "" || d.VehicleOrItem != "" ||
			d.Location != "" || d.PreferredTime != ""
	}
}

// NextMissingField returns the field to ask for next, in fixed priority
// order, or "" when nothing obvious is missing.
func (d CollectedData) NextMissingField() string {
	switch {
	case d.Service == "":
		return "service"
	case d.Location == "":
		return "location"
	case d.PreferredTime == "":
		return "preferred_time"
	case d.VehicleOrItem == "":
		return "vehicle_or_item"
	case d.CallerName == "":
		return "caller_name"
	default:
		return ""
	}
}

// Summary renders the captured fields as a short human-readable line, used
// both for the spoken confirmation and the recap message. Empty when
// nothing has been captured.
func (d CollectedData) Summary() string {
	parts := make([]string, 0, 5)
	for _, v := range []string{d.Service, d.VehicleOrItem, d.Location, d.PreferredTime, d.CallerName} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

// AppendTranscript adds one speech turn to the newline-joined transcript.
func (s *CallSession) AppendTranscript(speech string) {
	speech = strings.TrimSpace(speech)
	if speech == "" {
		return
	}
	if s.Transcript == "" {
		s.Transcript = speech
		return
	}
	s.Transcript = s.Transcript + "\n" + speech
}

// TranscriptTurns counts the speech turns recorded so far. The next incoming
// turn's position is this count, which the turn deduper uses as part of its
// key.
func (s *CallSession) TranscriptTurns() int {
	if s.Transcript == "" {
		return 0
	}
	return strings.Count(s.Transcript, "\n") + 1
}
