// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/training-factory/pkg/types"
)

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return zap.New(core), logs
}

// --- Registry ---

func TestNewProvider(t *testing.T) {
	withKey := types.SearchConfig{SerpAPIKey: "k"}

	tests := []struct {
		name     string
		provider types.SearchProviderName
		web      bool
		cfg      types.SearchConfig
		want     string
		warnings int
	}{
		{"default is fallback", "", false, types.SearchConfig{}, "fallback", 0},
		{"explicit fallback", "fallback", false, withKey, "fallback", 0},
		{"serpapi with key", "serpapi", false, withKey, "serpapi", 0},
		{"case insensitive", " SerpAPI ", false, withKey, "serpapi", 0},
		{"serpapi without key", "serpapi", false, types.SearchConfig{}, "fallback", 1},
		{"web implies serpapi", "fallback", true, withKey, "serpapi", 0},
		{"web without key", "fallback", true, types.SearchConfig{}, "fallback", 1},
		{"unknown name", "bing", false, withKey, "fallback", 1},
		{"unknown name with web and no key", "bing", true, types.SearchConfig{}, "fallback", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, logs := observedLogger()
			p := NewProvider(tt.provider, tt.web, Options{Search: tt.cfg, Logger: log})
			assert.Equal(t, tt.want, p.Name())
			assert.Equal(t, tt.warnings, logs.Len())
		})
	}
}

// --- Fallback provider ---

func TestFallbackProvider_MicrosoftQueries(t *testing.T) {
	p := &FallbackProvider{}
	for _, q := range []string{
		"Power BI fundamentals best practices",
		"Power Apps basics site:learn.microsoft.com/power-apps",
		"Enterprise ALM strategy",
	} {
		hits, err := p.Search(context.Background(), q, 10)
		require.NoError(t, err)
		require.Len(t, hits, 3, q)
		for _, h := range hits {
			assert.Equal(t, "learn.microsoft.com", h.Source)
		}
	}
}

func TestFallbackProvider_GeneralQueries(t *testing.T) {
	hits, err := (&FallbackProvider{}).Search(context.Background(), "Enterprise ChatGPT governance", 10)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "https://www.nist.gov/cyberframework", hits[0].URL)
	assert.Equal(t, "https://owasp.org/www-project-top-ten/", hits[1].URL)
	assert.Equal(t, "https://developers.google.com/style", hits[2].URL)
}

func TestFallbackProvider_Limit(t *testing.T) {
	p := &FallbackProvider{}
	hits, _ := p.Search(context.Background(), "anything", 2)
	assert.Len(t, hits, 2)
	hits, _ = p.Search(context.Background(), "anything", -1)
	assert.Empty(t, hits)
}

func TestFallbackProvider_ReturnsCopy(t *testing.T) {
	p := &FallbackProvider{}
	hits, _ := p.Search(context.Background(), "anything", 3)
	hits[0].Title = "mutated"
	again, _ := p.Search(context.Background(), "anything", 3)
	assert.Equal(t, "NIST Cybersecurity Framework", again[0].Title)
}
