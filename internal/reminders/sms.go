package reminders

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

// WebhookSMSNotifier posts SMS reminders to a provider webhook. Left
// unconfigured it rejects sends so the reminder is marked failed instead
// of silently dropped.
type WebhookSMSNotifier struct {
	url   string
	token string
	http  *http.Client
}

func NewWebhookSMSNotifier(url, token string) *WebhookSMSNotifier {
	return &WebhookSMSNotifier{
		url:   strings.TrimSpace(url),
		token: strings.TrimSpace(token),
		http: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (s *WebhookSMSNotifier) Send(recipient, _ string, body string) error {
	if s.url == "" {
		return errors.New("sms webhook url not configured")
	}

	raw, err := json.Marshal(map[string]string{
		"to":   recipient,
		"body": body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.New("sms webhook returned non-2xx")
	}
	return nil
}
