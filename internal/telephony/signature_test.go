package telephony

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"sort"
	"testing"
)

// signForm computes the value Twilio would put in X-Twilio-Signature for a
// POST to fullURL with the given parameters.
func signForm(authToken, fullURL string, form url.Values) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(fullURL))
	for _, k := range keys {
		mac.Write([]byte(k))
		mac.Write([]byte(form.Get(k)))
	}
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerify_ValidSignature(t *testing.T) {
	const token = "secret-token"
	form := url.Values{}
	form.Set("CallSid", "CA123")
	form.Set("From", "+15551234567")
	form.Set("SpeechResult", "I need an oil change")

	r := postForm(t, "/webhooks/twilio/voice", form)
	r.Header.Set(signatureHeader,
		signForm(token, "https://ai.example.com/webhooks/twilio/voice", form))

	v := NewSignatureVerifier(token, "https://ai.example.com")
	if !v.Verify(r) {
		t.Fatalf("valid signature rejected")
	}
}

func TestVerify_TamperedBody(t *testing.T) {
	const token = "secret-token"
	form := url.Values{}
	form.Set("CallSid", "CA123")

	sig := signForm(token, "https://ai.example.com/webhooks/twilio/voice", form)

	form.Set("CallSid", "CA999")
	r := postForm(t, "/webhooks/twilio/voice", form)
	r.Header.Set(signatureHeader, sig)

	v := NewSignatureVerifier(token, "https://ai.example.com")
	if v.Verify(r) {
		t.Fatalf("tampered body accepted")
	}
}

func TestVerify_MissingHeader(t *testing.T) {
	form := url.Values{}
	form.Set("CallSid", "CA123")
	r := postForm(t, "/webhooks/twilio/voice", form)

	v := NewSignatureVerifier("secret-token", "https://ai.example.com")
	if v.Verify(r) {
		t.Fatalf("missing signature accepted")
	}
}

func TestVerify_HostFallbackWithoutBaseURL(t *testing.T) {
	const token = "secret-token"
	form := url.Values{}
	form.Set("CallSid", "CA123")

	r := postForm(t, "/webhooks/twilio/voice", form)
	r.Host = "ai.example.com"
	r.Header.Set(signatureHeader,
		signForm(token, "http://ai.example.com/webhooks/twilio/voice", form))

	v := NewSignatureVerifier(token, "")
	if !v.Verify(r) {
		t.Fatalf("host-derived url signature rejected")
	}
}

func TestVerify_NilOrUnconfigured(t *testing.T) {
	form := url.Values{}
	form.Set("CallSid", "CA123")
	r := postForm(t, "/webhooks/twilio/voice", form)

	var nilV *SignatureVerifier
	if nilV.Verify(r) {
		t.Fatalf("nil verifier must reject")
	}
	if NewSignatureVerifier("", "https://ai.example.com").Verify(r) {
		t.Fatalf("empty token must reject")
	}
}
