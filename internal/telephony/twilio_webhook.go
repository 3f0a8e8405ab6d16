package telephony

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/session"
)

// Twilio sends application/x-www-form-urlencoded webhooks. These parsers
// capture only the fields the conversation loop cares about; everything
// else stays at the provider boundary.

// VoiceTurnForm is one delivery of the voice webhook: either the initial
// call leg (no SpeechResult yet) or a <Gather> result with the caller's
// recognized speech.
type VoiceTurnForm struct {
	CallSid      string
	AccountSid   string
	From         string
	To           string
	CallStatus   string
	SpeechResult string
	Confidence   string
}

func ParseVoiceTurn(r *http.Request) (VoiceTurnForm, error) {
	if err := r.ParseForm(); err != nil {
		return VoiceTurnForm{}, err
	}
	return VoiceTurnForm{
		CallSid:      r.PostFormValue("CallSid"),
		AccountSid:   r.PostFormValue("AccountSid"),
		From:         normalizePhone(r.PostFormValue("From")),
		To:           normalizePhone(r.PostFormValue("To")),
		CallStatus:   r.PostFormValue("CallStatus"),
		SpeechResult: strings.TrimSpace(r.PostFormValue("SpeechResult")),
		Confidence:   r.PostFormValue("Confidence"),
	}, nil
}

// StatusCallbackForm is a delivery of the call-status callback channel.
type StatusCallbackForm struct {
	CallSid      string
	CallStatus   string
	CallDuration int
}

func ParseStatusCallback(r *http.Request) (StatusCallbackForm, error) {
	if err := r.ParseForm(); err != nil {
		return StatusCallbackForm{}, err
	}
	f := StatusCallbackForm{
		CallSid:    r.PostFormValue("CallSid"),
		CallStatus: r.PostFormValue("CallStatus"),
	}
	if v := strings.TrimSpace(r.PostFormValue("CallDuration")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			f.CallDuration = n
		}
	}
	return f, nil
}

// MapCallStatus translates Twilio's call status vocabulary into ours.
// Unknown values map to in-progress so a new provider status can never
// accidentally terminate a session.
func MapCallStatus(twilioStatus string) session.CallStatus {
	switch strings.ToLower(strings.TrimSpace(twilioStatus)) {
	case "completed":
		return session.CallStatusCompleted
	case "no-answer":
		return session.CallStatusNoAnswer
	case "busy":
		return session.CallStatusBusy
	case "failed", "canceled":
		return session.CallStatusFailed
	default:
		return session.CallStatusInProgress
	}
}

func normalizePhone(s string) string {
	s = strings.TrimSpace(s)
	// Twilio sometimes sends "anonymous" or empty; keep as-is.
	return s
}
