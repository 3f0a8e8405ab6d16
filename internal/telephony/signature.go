package telephony

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"sort"
)

const signatureHeader = "X-Twilio-Signature"

// SignatureVerifier checks a webhook's X-Twilio-Signature: HMAC-SHA1 over
// the public request URL concatenated with the sorted POST parameters,
// keyed by the account auth token.
//
// Behind a proxy the URL Twilio signed is not the URL the process sees, so
// the externally visible base URL comes from configuration. This is the
// single "verify inbound request" capability; handlers depend on it and
// never reconstruct URLs themselves.
type SignatureVerifier struct {
	authToken string
	baseURL   string // e.g. "https://example.com", no trailing slash
}

func NewSignatureVerifier(authToken, baseURL string) *SignatureVerifier {
	return &SignatureVerifier{authToken: authToken, baseURL: baseURL}
}

// Verify reports whether the request carries a valid Twilio signature.
// It parses the form as a side effect.
func (v *SignatureVerifier) Verify(r *http.Request) bool {
	if v == nil || v.authToken == "" {
		return false
	}
	if err := r.ParseForm(); err != nil {
		return false
	}

	url := v.requestURL(r)

	keys := make([]string, 0, len(r.PostForm))
	for k := range r.PostForm {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mac := hmac.New(sha1.New, []byte(v.authToken))
	mac.Write([]byte(url))
	for _, k := range keys {
		mac.Write([]byte(k))
		// Twilio signs only the first value per parameter.
		mac.Write([]byte(r.PostForm.Get(k)))
	}
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	got := r.Header.Get(signatureHeader)
	return got != "" && hmac.Equal([]byte(got), []byte(want))
}

func (v *SignatureVerifier) requestURL(r *http.Request) string {
	if v.baseURL != "" {
		return v.baseURL + r.URL.RequestURI()
	}
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
