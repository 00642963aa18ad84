package whatsapp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fieldforce-hq/attendance-backend-go/internal/config"
)

const maxRetries = 3

// Service delivers OTP codes and notifications over WhatsApp. Results are
// boolean: delivery failure is logged, never fatal to the caller's flow.
type Service interface {
	SendOTP(phone, code, name string) bool
	SendNotification(phone, message string) bool
}

type serviceImpl struct {
	cfg    config.WhatsAppConfig
	client *http.Client
}

// NewService creates a WhatsApp delivery service. With no API URL
// configured it falls back to logging messages, which keeps local
// development working without credentials.
func NewService(cfg config.WhatsAppConfig) Service {
	return &serviceImpl{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *serviceImpl) SendOTP(phone, code, name string) bool {
	message := fmt.Sprintf("Hi %s, your verification code is %s. It expires in 5 minutes.", name, code)

	if s.cfg.APIURL == "" {
		slog.Warn("WhatsApp not configured, logging OTP instead", "phone", phone, "code", code)
		return true
	}

	return s.send(phone, message)
}

func (s *serviceImpl) SendNotification(phone, message string) bool {
	if s.cfg.APIURL == "" {
		slog.Warn("WhatsApp not configured, skipping notification", "phone", phone)
		return false
	}

	return s.send(phone, message)
}

type outboundMessage struct {
	To   string `json:"to"`
	Type string `json:"type"`
	Text struct {
		Body string `json:"body"`
	} `json:"text"`
}

func (s *serviceImpl) send(phone, message string) bool {
	payload := outboundMessage{To: phone, Type: "text"}
	payload.Text.Body = message

	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal WhatsApp payload", "error", err)
		return false
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequest(http.MethodPost, s.cfg.APIURL, bytes.NewReader(body))
		if err != nil {
			slog.Error("Failed to build WhatsApp request", "error", err)
			return false
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)

		resp, err := s.client.Do(req)
		if err == nil && resp.StatusCode < 300 {
			resp.Body.Close()
			slog.Info("WhatsApp message sent", "phone", phone, "attempt", attempt)
			return true
		}

		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("unexpected status %d", resp.StatusCode)
			resp.Body.Close()
		}
		slog.Error("Failed to send WhatsApp message",
			"phone", phone,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", lastErr,
		)

		// Wait before retrying (exponential backoff: 1s, 2s, 4s)
		if attempt < maxRetries {
			time.Sleep(time.Duration(1<<(attempt-1)) * time.Second)
		}
	}

	return false
}
