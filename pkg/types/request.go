// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model that flows between pipeline
// stages: the request, research results, generated payloads, QA results,
// and the assembled bundle.
package types

// SearchProviderName selects the search-provider implementation used by
// the retrieval stage.
type SearchProviderName string

const (
	ProviderFallback SearchProviderName = "fallback"
	ProviderSerpAPI  SearchProviderName = "serpapi"
)

// ResearchOptions controls how the retrieval stage gathers sources.
type ResearchOptions struct {
	// WebEnabled turns on live markup fetching for snippet enrichment.
	WebEnabled bool `json:"web_enabled" yaml:"web_enabled"`

	// SearchProvider names the provider; unknown names fall back.
	SearchProvider SearchProviderName `json:"search_provider" yaml:"search_provider"`
}

// Request is the immutable input of one pipeline run.
type Request struct {
	Topic           string          `json:"topic" yaml:"topic"`
	Audience        string          `json:"audience" yaml:"audience"`
	ResearchOptions ResearchOptions `json:"research_options" yaml:"research_options"`
}
