// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout bounds each fetch or search request.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// FetchRate limits markup fetches per second (0 disables the limit).
	FetchRate float64 `json:"fetch_rate" yaml:"fetch_rate" mapstructure:"fetch_rate"`
}

// ResearchConfig holds the retrieval caps.
type ResearchConfig struct {
	// MaxResultsPerQuery caps hits requested from the provider per query (default 10).
	MaxResultsPerQuery int `json:"max_results_per_query" yaml:"max_results_per_query" mapstructure:"max_results_per_query"`

	// MaxSources caps selected sources (default 8).
	MaxSources int `json:"max_sources" yaml:"max_sources" mapstructure:"max_sources"`

	// DomainCap is the per-domain selection limit for non-tier-A domains (default 2).
	DomainCap int `json:"domain_cap" yaml:"domain_cap" mapstructure:"domain_cap"`

	// MaxEnriched caps sources fetched for snippet enrichment (default 4).
	MaxEnriched int `json:"max_enriched" yaml:"max_enriched" mapstructure:"max_enriched"`

	// MaxSnippets caps snippets kept per source (default 4).
	MaxSnippets int `json:"max_snippets" yaml:"max_snippets" mapstructure:"max_snippets"`

	// SnippetChars caps each snippet's text (default 1200).
	SnippetChars int `json:"snippet_chars" yaml:"snippet_chars" mapstructure:"snippet_chars"`

	// ContextPackChars bounds the context pack (default 6000).
	ContextPackChars int `json:"context_pack_chars" yaml:"context_pack_chars" mapstructure:"context_pack_chars"`
}

// SearchConfig selects and configures the search provider.
type SearchConfig struct {
	// Provider is the default provider name when a request does not set one.
	Provider SearchProviderName `json:"provider" yaml:"provider" mapstructure:"provider"`

	// SerpAPIKey authenticates the serpapi provider.
	SerpAPIKey string `json:"serpapi_api_key,omitempty" yaml:"serpapi_api_key,omitempty" mapstructure:"serpapi_api_key"`

	// Endpoint overrides the serpapi endpoint.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" mapstructure:"endpoint"`

	// Rate limits provider calls per second (0 disables the limit).
	Rate float64 `json:"rate" yaml:"rate" mapstructure:"rate"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxTokens bounds each completion (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`
}

// GenerationConfig holds settings for the content-generation stages.
type GenerationConfig struct {
	AIConfig `yaml:",inline" mapstructure:",squash"`

	// Offline forces the deterministic fallback payloads.
	Offline bool `json:"offline" yaml:"offline" mapstructure:"offline"`

	// LabShape selects the lab layout: structured or legacy.
	LabShape string `json:"lab_shape" yaml:"lab_shape" mapstructure:"lab_shape"`

	// TemplatesShape selects the templates layout: structured or legacy.
	TemplatesShape string `json:"templates_shape" yaml:"templates_shape" mapstructure:"templates_shape"`
}

// StoreConfig locates the run archive.
type StoreConfig struct {
	// Path is the SQLite database file (default "out/runs.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings for a training-factory process.
type Config struct {
	HTTP       HTTPConfig       `json:"http" yaml:"http" mapstructure:"http"`
	Research   ResearchConfig   `json:"research" yaml:"research" mapstructure:"research"`
	Search     SearchConfig     `json:"search" yaml:"search" mapstructure:"search"`
	Generation GenerationConfig `json:"generation" yaml:"generation" mapstructure:"generation"`
	Store      StoreConfig      `json:"store" yaml:"store" mapstructure:"store"`
	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultResearchConfig returns the retrieval caps used when none are configured.
func DefaultResearchConfig() ResearchConfig {
	return ResearchConfig{
		MaxResultsPerQuery: 10,
		MaxSources:         8,
		DomainCap:          2,
		MaxEnriched:        4,
		MaxSnippets:        4,
		SnippetChars:       1200,
		ContextPackChars:   6000,
	}
}

// WithDefaults fills zero-valued caps from DefaultResearchConfig.
func (c ResearchConfig) WithDefaults() ResearchConfig {
	d := DefaultResearchConfig()
	if c.MaxResultsPerQuery <= 0 {
		c.MaxResultsPerQuery = d.MaxResultsPerQuery
	}
	if c.MaxSources <= 0 {
		c.MaxSources = d.MaxSources
	}
	if c.DomainCap <= 0 {
		c.DomainCap = d.DomainCap
	}
	if c.MaxEnriched <= 0 {
		c.MaxEnriched = d.MaxEnriched
	}
	if c.MaxSnippets <= 0 {
		c.MaxSnippets = d.MaxSnippets
	}
	if c.SnippetChars <= 0 {
		c.SnippetChars = d.SnippetChars
	}
	if c.ContextPackChars <= 0 {
		c.ContextPackChars = d.ContextPackChars
	}
	return c
}
