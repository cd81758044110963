package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const maxErrorBodyBytes = 4096

// httpStatusError distinguishes non-2xx replies from transport failures so
// the retry loop can tell retryable statuses apart.
type httpStatusError struct {
	status int
	body   string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.status, e.body)
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// postJSON issues an HTTP POST with up to maxRetries additional attempts on
// transient failures (connection errors, timeouts, 429, 5xx). Backoff doubles
// per attempt: 1s, 2s, 4s. Non-retryable statuses fail immediately.
func postJSON(ctx context.Context, client *http.Client, url string, payload any, maxRetries int, logger *log.Logger, component string) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			if logger != nil {
				logger.Printf("[%s] retrying | url=%s attempt=%d backoff=%s err=%v", component, url, attempt, backoff, lastErr)
			}
		}

		out, err := doPost(ctx, client, url, body)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if se, ok := err.(*httpStatusError); ok && !retryableStatus(se.status) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, lastErr
		}
	}
	return nil, fmt.Errorf("retries exhausted: %w", lastErr)
}

func doPost(ctx context.Context, client *http.Client, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &httpStatusError{status: resp.StatusCode, body: strings.TrimSpace(string(rb))}
	}

	return io.ReadAll(resp.Body)
}
