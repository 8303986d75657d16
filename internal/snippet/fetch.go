// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package snippet

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/training-factory/internal/httputil"
	"github.com/pdiddy/training-factory/pkg/types"
)

// DefaultUserAgent identifies the fetcher to web servers.
const DefaultUserAgent = "training-factory/0.1 (+https://example.local)"

// maxBodyBytes caps how much of a page is read.
const maxBodyBytes = 2 << 20

// Fetcher retrieves raw markup for a URL. Any failure yields "".
type Fetcher interface {
	Fetch(ctx context.Context, url string) string
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) string

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, url string) string { return f(ctx, url) }

// HTTPFetcher fetches markup over HTTP with a per-request timeout and an
// optional rate limit.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
	Timeout   time.Duration
	Limiter   *rate.Limiter
	Logger    *zap.Logger
}

// NewHTTPFetcher builds a fetcher from the shared HTTP settings.
func NewHTTPFetcher(cfg types.HTTPConfig, logger *zap.Logger) *HTTPFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &HTTPFetcher{
		Client:    &http.Client{},
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
		Logger:    logger,
	}
	if f.UserAgent == "" {
		f.UserAgent = DefaultUserAgent
	}
	if f.Timeout <= 0 {
		f.Timeout = 10 * time.Second
	}
	if cfg.FetchRate > 0 {
		f.Limiter = rate.NewLimiter(rate.Limit(cfg.FetchRate), 1)
	}
	return f
}

// Fetch returns the response body of a successful GET, or "" on any error,
// timeout, or non-2xx status.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) string {
	if url == "" {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	log := f.Logger.With(zap.String("url", url))

	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			log.Warn("snippet: rate limiter wait failed", zap.Error(err))
			return ""
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Warn("snippet: bad fetch request", zap.Error(err))
		return ""
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, f.Client, req, 1)
	if err != nil {
		log.Warn("snippet: fetch failed", zap.Error(err))
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("snippet: fetch returned non-2xx", zap.Int("status", resp.StatusCode))
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.Warn("snippet: reading body failed", zap.Error(err))
		return ""
	}
	return string(body)
}
