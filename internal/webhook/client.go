package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// SecretHeader carries the shared webhook secret.
const SecretHeader = "X-Webhook-Secret"

// Client posts profile submissions to the matching service webhook
type Client struct {
	baseURL    string
	secret     string
	httpClient *http.Client
	stubMode   bool
}

// NewClient creates a new webhook client with the given configuration
func NewClient(baseURL, secret string, stubMode bool) *Client {
	return &Client{
		baseURL:    baseURL,
		secret:     secret,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		stubMode:   stubMode,
	}
}

// SubmitProfile delivers req. In stub mode nothing is sent and the
// submission is acknowledged locally.
func (c *Client) SubmitProfile(ctx context.Context, req SubmissionRequest) (*SubmissionReceipt, error) {
	if c.stubMode {
		slog.Info("Webhook stub mode, profile submission not delivered",
			"submission_id", req.SubmissionID,
			"user_id", req.UserID,
		)
		return &SubmissionReceipt{
			Accepted:    true,
			ReferenceID: fmt.Sprintf("stub-%d", req.SubmissionID),
		}, nil
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/profiles", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set(SecretHeader, c.secret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var receipt SubmissionReceipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !receipt.Accepted {
		return nil, fmt.Errorf("webhook rejected submission %d", req.SubmissionID)
	}

	return &receipt, nil
}
