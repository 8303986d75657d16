// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	RetryBaseDelay = time.Millisecond
	MaxBackoff = 20 * time.Millisecond
}

// statusServer answers with statuses in order, then 200.
func statusServer(t *testing.T, statuses ...int) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := int(atomic.AddInt32(&calls, 1))
		if n <= len(statuses) {
			w.WriteHeader(statuses[n-1])
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ts.Close)
	return ts, &calls
}

func get(t *testing.T, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	return req
}

func TestDoWithRetry(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []int
		maxRetries int
		wantStatus int
		wantCalls  int32
	}{
		{"immediate success", nil, 3, http.StatusOK, 1},
		{"429 then success", []int{429, 429}, 3, http.StatusOK, 3},
		{"503 then success", []int{503}, 3, http.StatusOK, 2},
		{"exhausts retries", []int{429, 429, 429, 429}, 2, http.StatusTooManyRequests, 3},
		{"default retries", []int{503, 503, 503, 503, 503}, 0, http.StatusServiceUnavailable, 4},
		{"404 is not retried", []int{404}, 3, http.StatusNotFound, 1},
		{"500 is not retried", []int{500}, 3, http.StatusInternalServerError, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, calls := statusServer(t, tt.statuses...)
			resp, err := DoWithRetry(context.Background(), ts.Client(), get(t, ts.URL), tt.maxRetries)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(calls))
		})
	}
}

func TestDoWithRetry_ContextCancelled(t *testing.T) {
	saved := RetryBaseDelay
	RetryBaseDelay = 10 * time.Millisecond
	t.Cleanup(func() { RetryBaseDelay = saved })

	ts, _ := statusServer(t, 429, 429, 429, 429)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := DoWithRetry(ctx, ts.Client(), get(t, ts.URL), 3)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDoWithRetry_TransportError(t *testing.T) {
	ts, _ := statusServer(t)
	url := ts.URL
	ts.Close()
	_, err := DoWithRetry(context.Background(), nil, get(t, url), 1)
	assert.Error(t, err)
}

func TestBackoff(t *testing.T) {
	withHeader := func(v string) *http.Response {
		return &http.Response{Header: http.Header{"Retry-After": {v}}}
	}
	assert.Equal(t, time.Millisecond, Backoff(nil, 0))
	assert.Equal(t, 4*time.Millisecond, Backoff(nil, 2))
	assert.Equal(t, MaxBackoff, Backoff(nil, 10))
	assert.Equal(t, time.Duration(0), Backoff(withHeader("0"), 3))
	assert.Equal(t, MaxBackoff, Backoff(withHeader("120"), 0))
	assert.Equal(t, 2*time.Millisecond, Backoff(withHeader("soon"), 1))
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(http.StatusTooManyRequests))
	assert.True(t, Retryable(http.StatusServiceUnavailable))
	assert.False(t, Retryable(http.StatusOK))
	assert.False(t, Retryable(http.StatusBadGateway))
}
