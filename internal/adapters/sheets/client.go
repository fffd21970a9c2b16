// Package sheets talks to the Apps Script web app that records purchases in
// the spreadsheet of record.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shipfreeapis/payment-pipeline/internal/domain"
)

const defaultTimeout = 10 * time.Second

// Client implements ports.RecordSink over plain HTTP POST. It carries no
// retry logic: a failure here becomes a 500 acknowledgment and the sender
// redelivers the whole event. The endpoint is expected to deduplicate on
// eventId, so duplicate sends are safe.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(endpoint string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("module", "sheets", "layer", "adapter"),
	}
}

type syncResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Record serializes rec and posts it to the sync endpoint. Non-2xx status,
// transport failure (including timeout), and a success:false body all count
// as failure.
func (c *Client) Record(ctx context.Context, rec domain.Record) error {
	if c.endpoint == "" {
		return fmt.Errorf("%w: sync endpoint not configured", domain.ErrSyncFailed)
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: encode record: %v", domain.ErrSyncFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", domain.ErrSyncFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "sync request failed", "event_id", rec.Key(), "error", err)
		return fmt.Errorf("%w: %v", domain.ErrSyncFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.ErrorContext(ctx, "sync endpoint rejected record", "event_id", rec.Key(), "status", resp.StatusCode)
		return fmt.Errorf("%w: HTTP %d", domain.ErrSyncFailed, resp.StatusCode)
	}

	var result syncResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrSyncFailed, err)
	}
	if !result.Success {
		c.logger.ErrorContext(ctx, "sync endpoint reported failure", "event_id", rec.Key(), "error", result.Error)
		if result.Error != "" {
			return fmt.Errorf("%w: %s", domain.ErrSyncFailed, result.Error)
		}
		return domain.ErrSyncFailed
	}
	return nil
}
