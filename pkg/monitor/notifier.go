package monitor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/star-emergency/alert-gateway/pkg/models"
)

// HTTPNotifier reports lifecycle actions to the gateway's REST API.
type HTTPNotifier struct {
	baseURL string
	client  *http.Client
}

// NewHTTPNotifier creates a notifier for the gateway at baseURL.
func NewHTTPNotifier(baseURL string) *HTTPNotifier {
	return &HTTPNotifier{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// NotifyHandled reports that an operator has begun handling the alert.
func (n *HTTPNotifier) NotifyHandled(ctx context.Context, alertID string) error {
	return n.post(ctx, "/api/update-handled-time", alertID)
}

// NotifyCompleted reports that the alert has been completed.
func (n *HTTPNotifier) NotifyCompleted(ctx context.Context, alertID string) error {
	return n.post(ctx, "/api/complete-alert", alertID)
}

func (n *HTTPNotifier) post(ctx context.Context, path, alertID string) error {
	body, err := json.Marshal(models.AlertActionRequest{AlertID: alertID})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("request to %s returned status %d", path, resp.StatusCode)
	}
	return nil
}
