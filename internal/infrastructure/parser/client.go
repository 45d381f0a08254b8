package parser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// fetchClient wraps http.Client with the bounded-retry policy every outbound
// fetch uses: a fixed attempt budget with linearly increasing backoff.
type fetchClient struct {
	http      *http.Client
	userAgent string
	attempts  int
	backoff   time.Duration
}

func newFetchClient(client *http.Client, userAgent string, attempts int, backoff time.Duration) *fetchClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if attempts < 1 {
		attempts = 1
	}
	return &fetchClient{http: client, userAgent: userAgent, attempts: attempts, backoff: backoff}
}

// get retrieves url, retrying transport errors and non-2xx statuses until
// the attempt budget runs out. Backoff grows linearly with the attempt
// number and respects context cancellation.
func (c *fetchClient) get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, c.backoff*time.Duration(attempt-1)); err != nil {
				return nil, err
			}
		}

		body, err := c.getOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, lastErr
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", c.attempts, lastErr)
}

func (c *fetchClient) getOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s returned %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
