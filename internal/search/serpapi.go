// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/training-factory/internal/httputil"
	"github.com/pdiddy/training-factory/pkg/types"
)

// serpAPIBase is the SerpAPI search endpoint. Declared as a var so tests
// can substitute an httptest server.
var serpAPIBase = "https://serpapi.com/search.json"

// SerpAPIProvider queries Google results through SerpAPI.
type SerpAPIProvider struct {
	Client    *http.Client
	APIKey    string
	Endpoint  string
	UserAgent string
	Limiter   *rate.Limiter
	Logger    *zap.Logger
}

// NewSerpAPIProvider builds a provider from configuration.
func NewSerpAPIProvider(cfg types.SearchConfig, httpCfg types.HTTPConfig, logger *zap.Logger) *SerpAPIProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := httpCfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	p := &SerpAPIProvider{
		Client:    &http.Client{Timeout: timeout},
		APIKey:    cfg.SerpAPIKey,
		Endpoint:  cfg.Endpoint,
		UserAgent: httpCfg.UserAgent,
		Logger:    logger,
	}
	if cfg.Rate > 0 {
		p.Limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}
	return p
}

// Name returns the provider identifier.
func (p *SerpAPIProvider) Name() string { return string(types.ProviderSerpAPI) }

// Search queries SerpAPI. Transport, status, and decoding failures are
// logged and produce an empty result rather than an error.
func (p *SerpAPIProvider) Search(ctx context.Context, query string, limit int) ([]types.SearchHit, error) {
	log := p.logger().With(zap.String("provider", p.Name()), zap.String("query", query))
	if p.APIKey == "" {
		log.Warn("search: serpapi api key not set, search disabled")
		return nil, nil
	}
	hits, err := p.search(ctx, query, limit)
	if err != nil {
		log.Warn("search: serpapi request failed", zap.Error(err))
		return nil, nil
	}
	return hits, nil
}

func (p *SerpAPIProvider) search(ctx context.Context, query string, limit int) ([]types.SearchHit, error) {
	if p.Limiter != nil {
		if err := p.Limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "search: rate limiter")
		}
	}

	endpoint := p.Endpoint
	if endpoint == "" {
		endpoint = serpAPIBase
	}
	params := url.Values{
		"engine":  {"google"},
		"q":       {query},
		"num":     {strconv.Itoa(limit)},
		"api_key": {p.APIKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "search: creating serpapi request")
	}
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, eris.Wrap(err, "search: serpapi request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("search: serpapi returned HTTP %d", resp.StatusCode)
	}

	var sr serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, eris.Wrap(err, "search: parsing serpapi response")
	}

	organic := sr.OrganicResults
	if limit >= 0 && len(organic) > limit {
		organic = organic[:limit]
	}
	var hits []types.SearchHit
	for _, item := range organic {
		link := strings.TrimSpace(item.Link)
		title := strings.TrimSpace(item.Title)
		if link == "" || title == "" {
			continue
		}
		hits = append(hits, types.SearchHit{
			Title:   title,
			URL:     link,
			Snippet: strings.TrimSpace(item.Snippet),
			Source:  strings.TrimSpace(item.Source),
		})
	}
	return hits, nil
}

func (p *SerpAPIProvider) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// serpResponse is the subset of the SerpAPI response we read.
type serpResponse struct {
	OrganicResults []serpOrganic `json:"organic_results"`
}

type serpOrganic struct {
	Link    string `json:"link"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}
