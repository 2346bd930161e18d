package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// HTTPNotifier is an HTTP implementation of the Notifier interface. It
// posts notifications to a sidecar service that handles actual delivery
// (email, chat, toasts).
type HTTPNotifier struct {
	url    string
	client *http.Client
}

// NewHTTPNotifier creates a new HTTPNotifier.
func NewHTTPNotifier(url string) *HTTPNotifier {
	return &HTTPNotifier{url: url, client: http.DefaultClient}
}

// Notify posts the notification to the sidecar.
func (c *HTTPNotifier) Notify(ctx context.Context, n Notification) error {
	requestBody, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url+"/notifications", bytes.NewBuffer(requestBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("failed to deliver notification: status code %d", resp.StatusCode)
	}
	return nil
}

// NoopNotifier discards all notifications. Used in tests and when no
// notifier sidecar is configured.
type NoopNotifier struct{}

// Notify discards the notification.
func (NoopNotifier) Notify(ctx context.Context, n Notification) error { return nil }
