// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/training-factory/internal/search"
	"github.com/pdiddy/training-factory/internal/snippet"
	"github.com/pdiddy/training-factory/pkg/types"
)

// ConfiguredRetriever resolves the search provider from each request's
// research options and runs an Engine against it. One retriever can serve
// many runs; it holds no per-run state.
type ConfiguredRetriever struct {
	Search   types.SearchConfig
	HTTP     types.HTTPConfig
	Research types.ResearchConfig
	Fetcher  snippet.Fetcher
	Now      func() time.Time
	Logger   *zap.Logger
}

// NewConfiguredRetriever wires a retriever with an HTTP markup fetcher.
func NewConfiguredRetriever(cfg types.Config, logger *zap.Logger) *ConfiguredRetriever {
	return &ConfiguredRetriever{
		Search:   cfg.Search,
		HTTP:     cfg.HTTP,
		Research: cfg.Research,
		Fetcher:  snippet.NewHTTPFetcher(cfg.HTTP, logger),
		Logger:   logger,
	}
}

// Retrieve runs one retrieval attempt. A request without a provider name
// uses the configured default.
func (r *ConfiguredRetriever) Retrieve(ctx context.Context, req types.Request) (types.ResearchResult, error) {
	name := req.ResearchOptions.SearchProvider
	if name == "" {
		name = r.Search.Provider
	}
	provider := search.NewProvider(name, req.ResearchOptions.WebEnabled, search.Options{
		Search: r.Search,
		HTTP:   r.HTTP,
		Logger: r.Logger,
	})

	e := NewEngine(provider, r.Fetcher, r.Research, r.Logger)
	if r.Now != nil {
		e.Now = r.Now
	}
	return e.Retrieve(ctx, req)
}
