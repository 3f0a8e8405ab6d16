package telephony

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/session"
)

func postForm(t *testing.T, path string, form url.Values) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestParseVoiceTurn(t *testing.T) {
	form := url.Values{}
	form.Set("CallSid", "CA123")
	form.Set("AccountSid", "AC456")
	form.Set("From", " +15551234567 ")
	form.Set("To", "+15557654321")
	form.Set("CallStatus", "in-progress")
	form.Set("SpeechResult", "  I need an oil change  ")
	form.Set("Confidence", "0.92")

	got, err := ParseVoiceTurn(postForm(t, "/webhooks/twilio/voice", form))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.CallSid != "CA123" || got.AccountSid != "AC456" {
		t.Fatalf("sids wrong: %+v", got)
	}
	if got.From != "+15551234567" || got.To != "+15557654321" {
		t.Fatalf("numbers wrong: %+v", got)
	}
	if got.SpeechResult != "I need an oil change" {
		t.Fatalf("speech not trimmed: %q", got.SpeechResult)
	}
}

func TestParseVoiceTurn_InitialLegHasNoSpeech(t *testing.T) {
	form := url.Values{}
	form.Set("CallSid", "CA123")
	form.Set("CallStatus", "ringing")

	got, err := ParseVoiceTurn(postForm(t, "/webhooks/twilio/voice", form))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.SpeechResult != "" {
		t.Fatalf("expected empty speech, got %q", got.SpeechResult)
	}
}

func TestParseStatusCallback(t *testing.T) {
	form := url.Values{}
	form.Set("CallSid", "CA123")
	form.Set("CallStatus", "completed")
	form.Set("CallDuration", "95")

	got, err := ParseStatusCallback(postForm(t, "/webhooks/twilio/status", form))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.CallSid != "CA123" || got.CallStatus != "completed" || got.CallDuration != 95 {
		t.Fatalf("unexpected form: %+v", got)
	}
}

func TestParseStatusCallback_BadDurationIgnored(t *testing.T) {
	form := url.Values{}
	form.Set("CallSid", "CA123")
	form.Set("CallStatus", "completed")
	form.Set("CallDuration", "ninety")

	got, err := ParseStatusCallback(postForm(t, "/webhooks/twilio/status", form))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.CallDuration != 0 {
		t.Fatalf("bad duration should zero out, got %d", got.CallDuration)
	}
}

func TestMapCallStatus(t *testing.T) {
	cases := []struct {
		in   string
		want session.CallStatus
	}{
		{"completed", session.CallStatusCompleted},
		{"Completed", session.CallStatusCompleted},
		{"no-answer", session.CallStatusNoAnswer},
		{"busy", session.CallStatusBusy},
		{"failed", session.CallStatusFailed},
		{"canceled", session.CallStatusFailed},
		{"ringing", session.CallStatusInProgress},
		{"some-future-status", session.CallStatusInProgress},
	}
	for _, tc := range cases {
		if got := MapCallStatus(tc.in); got != tc.want {
			t.Fatalf("%q: got %q, want %q", tc.in, got, tc.want)
		}
	}
}
