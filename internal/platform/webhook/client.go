package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/phrazzld/irmock-api/internal/domain"
)

// DefaultTimeout bounds a single callback request when none is configured.
const DefaultTimeout = 5 * time.Second

// maxDrainBytes limits how much of a response body is read before closing.
const maxDrainBytes = 64 << 10

// ErrEmptyURL is returned when Notify is called without a target.
var ErrEmptyURL = errors.New("callback url is empty")

// StatusError reports a callback target that answered with a non-2xx status.
type StatusError struct {
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("callback target responded with status %d", e.StatusCode)
}

// Notifier sends a submission record to a callback URL.
type Notifier interface {
	Notify(ctx context.Context, url string, submission *domain.Submission) error
}

// Client is an HTTP Notifier.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a Client whose requests time out after timeout.
// A non-positive timeout selects DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "irmock-api-webhook/1.0",
	}
}

// Notify POSTs the submission as JSON to url. Any non-2xx response is an error.
func (c *Client) Notify(ctx context.Context, url string, submission *domain.Submission) error {
	if url == "" {
		return ErrEmptyURL
	}

	body, err := json.Marshal(submission)
	if err != nil {
		return fmt.Errorf("failed to encode callback body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("callback request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}
