package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/thetechguyfromvietnam/lolibub/internal/order"
)

// WebhookSink POSTs the order notification to a form-forwarding endpoint
// (Formspree-shaped JSON body). When selected as the primary sink its
// failure fails the whole submission.
type WebhookSink struct {
	client     *http.Client
	endpoint   string
	recipients []string
}

// NewWebhookSink creates the sink. recipients is the comma-separated list
// from configuration; the first entry becomes the form's email field.
func NewWebhookSink(client *http.Client, endpoint, recipients string) *WebhookSink {
	return &WebhookSink{
		client:     client,
		endpoint:   endpoint,
		recipients: splitRecipients(recipients),
	}
}

func (s *WebhookSink) Name() string { return "webhook" }

// Send posts the plain-text body plus the composed summary.
func (s *WebhookSink) Send(ctx context.Context, rec *order.Record, message string) error {
	email := ""
	if len(s.recipients) > 0 {
		email = s.recipients[0]
	}

	payload := map[string]string{
		"email":   email,
		"message": plainBody(rec),
		"summary": strings.ReplaceAll(message, "*", ""),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func splitRecipients(s string) []string {
	var out []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
