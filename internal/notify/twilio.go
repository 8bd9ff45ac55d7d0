package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	twilioBaseURL = "https://api.twilio.com"
	// Twilio rejects bodies longer than this
	maxSMSLength = 1600
)

type TwilioConfig struct {
	AccountSID  string
	AuthToken   string
	FromPhone   string
	CountryCode string // prefixed to the 10-digit owner id, default "+1"
	BaseURL     string
}

// Twilio sends SMS through the Twilio Messages REST API.
type Twilio struct {
	cfg    TwilioConfig
	Client *http.Client
}

func NewTwilio(cfg TwilioConfig) *Twilio {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.FromPhone == "" {
		return nil
	}
	if cfg.CountryCode == "" {
		cfg.CountryCode = "+1"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = twilioBaseURL
	}
	return &Twilio{cfg: cfg, Client: &http.Client{Timeout: 10 * time.Second}}
}

func (t *Twilio) Send(ctx context.Context, recipient, message string) error {
	if t == nil {
		return fmt.Errorf("twilio: %w", ErrDisabled)
	}
	phone := strings.TrimSpace(recipient)
	msg := strings.TrimSpace(message)
	if phone == "" || msg == "" {
		return fmt.Errorf("twilio: empty recipient or message")
	}
	msg = truncate(msg, maxSMSLength)

	form := url.Values{}
	form.Set("From", t.cfg.FromPhone)
	form.Set("To", t.cfg.CountryCode+phone)
	form.Set("Body", msg)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json",
		strings.TrimRight(t.cfg.BaseURL, "/"), url.PathEscape(t.cfg.AccountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("twilio request: %w", err)
	}
	req.SetBasicAuth(t.cfg.AccountSID, t.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("twilio: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
