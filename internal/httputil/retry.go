// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the fetcher and the
// search providers.
package httputil

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay is the first backoff interval; each retry doubles it.
// Tests override this to avoid real sleeps.
var RetryBaseDelay = 500 * time.Millisecond

// MaxBackoff caps a single wait, including server-sent Retry-After values.
var MaxBackoff = 8 * time.Second

const defaultMaxRetries = 3

// Retryable reports whether a status signals a transient server condition.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// Backoff returns the wait before retry number attempt (zero-based). A
// Retry-After header in whole seconds takes precedence over the doubling
// schedule. Both are capped at MaxBackoff.
func Backoff(resp *http.Response, attempt int) time.Duration {
	wait := RetryBaseDelay << attempt
	if resp != nil {
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs >= 0 {
			wait = time.Duration(secs) * time.Second
		}
	}
	if wait > MaxBackoff || wait < 0 {
		wait = MaxBackoff
	}
	return wait
}

// DoWithRetry executes req and retries while the server answers 429 or
// 503. When maxRetries is 0 the default (3) is used. The body of each
// retried response is drained and closed. If ctx ends during a wait the
// function returns ctx.Err(). After the last retry the final response is
// returned unchanged so the caller can inspect its status.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if client == nil {
		client = http.DefaultClient
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if !Retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		wait := Backoff(resp, attempt)
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
