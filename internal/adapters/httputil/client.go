// Package httputil is the shared HTTP plumbing every plain-http adapter
// builds on: bounded concurrency, gzip decoding, and a small bounded retry
// that only ever fires on transient (network or 5xx) failures, never on a
// 4xx response. Mirrors
// internal/parser/parsers/fonbet/http_client.go connection-and-decode
// pattern, generalized from stdlib compress/gzip to klauspost/compress/gzip
// (the faster decoder the rest of the pack's scrapers reach for under
// sustained polling load) and given a request semaphore the prior
// per-parser clients left to the caller.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzip"
)

// Client wraps *http.Client with the concurrency cap, timeout, and retry
// policy every adapter shares (§4.2, §6 "max_concurrent_requests").
type Client struct {
	http      *http.Client
	sem       chan struct{}
	userAgent string
	maxRetries int
}

// New builds a Client bounded to maxConcurrent in-flight requests, each
// subject to timeout, with up to maxRetries retries on transient failures.
func New(timeout time.Duration, maxConcurrent int, userAgent string) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	return &Client{
		http:       &http.Client{Timeout: timeout},
		sem:        make(chan struct{}, maxConcurrent),
		userAgent:  userAgent,
		maxRetries: 2,
	}
}

// Get fetches url with the given headers, transparently decoding a gzip
// response body, retrying transient failures (network errors and 5xx
// responses) up to maxRetries times with a short linear backoff. A 4xx
// response is returned immediately as an error — never retried, since a
// client error will not resolve itself.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-c.sem }()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		body, status, err := c.doOnce(ctx, url, headers)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if status >= 400 && status < 500 {
			return nil, err // client errors never retried
		}
	}
	return nil, fmt.Errorf("httputil: %s: %w", url, lastErr)
}

func (c *Client) doOnce(ctx context.Context, url string, headers map[string]string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept-Encoding", "gzip")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, resp.StatusCode, fmt.Errorf("gzip decode: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return data, resp.StatusCode, nil
}
