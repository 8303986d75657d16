// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search provides the web search capability used by retrieval:
// a Provider interface, a canned fallback provider, a SerpAPI provider,
// and a registry that degrades to the fallback on misconfiguration.
package search

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/training-factory/pkg/types"
)

// Provider searches the web. Each implementation (fallback, SerpAPI)
// satisfies this interface per the Strategy pattern; results are ordered
// by provider rank.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]types.SearchHit, error)
}

// Options carries everything the registry needs to build a provider.
type Options struct {
	Search types.SearchConfig
	HTTP   types.HTTPConfig
	Logger *zap.Logger
}

// NewProvider returns the provider for name. An unknown name, or a request
// for live search without a SerpAPI key, logs a warning and returns the
// fallback provider. Asking for web enrichment implies SerpAPI.
func NewProvider(name types.SearchProviderName, web bool, opts Options) Provider {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	normalized := types.SearchProviderName(strings.ToLower(strings.TrimSpace(string(name))))
	if normalized == "" {
		normalized = types.ProviderFallback
	}
	if normalized != types.ProviderFallback && normalized != types.ProviderSerpAPI {
		log.Warn("search: unknown provider, using fallback", zap.String("provider", string(name)))
		normalized = types.ProviderFallback
	}

	if web || normalized == types.ProviderSerpAPI {
		if opts.Search.SerpAPIKey != "" {
			return NewSerpAPIProvider(opts.Search, opts.HTTP, log)
		}
		log.Warn("search: serpapi api key not set, using fallback provider")
	}
	return &FallbackProvider{}
}
