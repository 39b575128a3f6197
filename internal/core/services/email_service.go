package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"farm-feed/internal/config"
)

var ErrEmailNotConfigured = errors.New("email delivery is not configured")

const resendEndpoint = "https://api.resend.com/emails"

// EmailService delivers transactional email through the Resend HTTP API
type EmailService struct {
	cfg    *config.Config
	client *http.Client
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		cfg: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// IsConfigured reports whether an API key is present
func (s *EmailService) IsConfigured() bool {
	return s.cfg.Email.ResendAPIKey != ""
}

// Send delivers a single email. In dev without an API key the message is
// logged instead of sent.
func (s *EmailService) Send(ctx context.Context, to, subject, body string) error {
	if !s.IsConfigured() {
		if s.cfg.IsDev() {
			log.Printf("📧 [DEV] Email to %s: %s", to, subject)
			return nil
		}
		return ErrEmailNotConfigured
	}

	payload := map[string]interface{}{
		"from":    s.cfg.Email.FromAddress,
		"to":      []string{to},
		"subject": subject,
		"text":    body,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendEndpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.Email.ResendAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("resend returned status %d", resp.StatusCode)
	}
	return nil
}
