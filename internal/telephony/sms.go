package telephony

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const twilioAPIBase = "https://api.twilio.com"

// SMSClient sends text messages through the Twilio Messages REST API.
// Plain net/http with basic auth; no provider SDK at this boundary.
// It implements notify.MessageSender.
type SMSClient struct {
	accountSID string
	authToken  string
	from       string

	baseURL string
	http    *http.Client
}

func NewSMSClient(accountSID, authToken, from string) *SMSClient {
	return &SMSClient{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		baseURL:    twilioAPIBase,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

// SetBaseURL points the client at a different API host. Tests use this.
func (c *SMSClient) SetBaseURL(u string) { c.baseURL = strings.TrimRight(u, "/") }

// SendSMS posts one outbound message and returns the provider message SID.
func (c *SMSClient) SendSMS(ctx context.Context, to, body string) (string, error) {
	if c.accountSID == "" || c.authToken == "" {
		return "", errors.New("telephony: twilio credentials not configured")
	}
	if to == "" {
		return "", errors.New("telephony: destination number required")
	}
	if c.from == "" {
		return "", errors.New("telephony: from number not configured")
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("telephony: send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("telephony: send sms status %d: %s", resp.StatusCode, string(b))
	}

	var out struct {
		SID string `json:"sid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("telephony: decode sms response: %w", err)
	}
	if out.SID == "" {
		return "", errors.New("telephony: sms response missing sid")
	}
	return out.SID, nil
}
