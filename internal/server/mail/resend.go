package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/shareme/internal/logging"
)

const defaultResendEndpoint = "https://api.resend.com/emails"

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type resendResponse struct {
	ID      string `json:"id"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ResendDispatcher sends messages through the Resend HTTP API.
type ResendDispatcher struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     logging.Logger
}

// NewResendDispatcher creates a dispatcher posting to endpoint (the public
// Resend API when empty).
func NewResendDispatcher(apiKey, endpoint string, logger logging.Logger) *ResendDispatcher {
	if endpoint == "" {
		endpoint = defaultResendEndpoint
	}
	return &ResendDispatcher{
		apiKey:   apiKey,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With("module", "mail", "transport", "resend"),
	}
}

func (d *ResendDispatcher) Send(ctx context.Context, msg *Message) error {
	body, err := json.Marshal(resendRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal resend request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+d.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send HTTP request: %w", err)
	}
	defer resp.Body.Close()

	var out resendResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)

	if resp.StatusCode >= 400 {
		detail := out.Error
		if detail == "" {
			detail = out.Message
		}
		if detail != "" {
			return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, detail)
		}
		return fmt.Errorf("resend API error (status %d)", resp.StatusCode)
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}

	d.logger.Info(ctx, "email sent", "to", msg.To, "resend_id", out.ID)
	return nil
}
