// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"strings"

	"github.com/pdiddy/training-factory/pkg/types"
)

// microsoftKeywords switch the fallback provider to Microsoft Learn results.
var microsoftKeywords = []string{
	"power bi", "power apps", "power platform", "power automate",
	"dataverse", "fabric", "alm",
}

var microsoftHits = []types.SearchHit{
	{
		Title:   "Power Platform documentation overview",
		URL:     "https://learn.microsoft.com/power-platform/",
		Snippet: "Official Microsoft Learn entry point for Power Platform guidance.",
		Source:  "learn.microsoft.com",
	},
	{
		Title:   "Application lifecycle management (ALM) with Power Platform",
		URL:     "https://learn.microsoft.com/power-platform/alm/overview-alm",
		Snippet: "Microsoft guidance for ALM processes, environments, and release practices.",
		Source:  "learn.microsoft.com",
	},
	{
		Title:   "Power BI documentation",
		URL:     "https://learn.microsoft.com/power-bi/",
		Snippet: "Official Power BI product docs for modeling, governance, and deployment.",
		Source:  "learn.microsoft.com",
	},
}

var generalHits = []types.SearchHit{
	{
		Title:   "NIST Cybersecurity Framework",
		URL:     "https://www.nist.gov/cyberframework",
		Snippet: "Security best-practices framework useful for governance-focused training.",
		Source:  "nist.gov",
	},
	{
		Title:   "OWASP Top 10",
		URL:     "https://owasp.org/www-project-top-ten/",
		Snippet: "Well-known reference for common application security risks and mitigations.",
		Source:  "owasp.org",
	},
	{
		Title:   "Google Developer Documentation Style Guide",
		URL:     "https://developers.google.com/style",
		Snippet: "Clear writing and documentation standards for technical content creation.",
		Source:  "developers.google.com",
	},
}

// FallbackProvider returns canned authoritative results chosen by query
// keywords. It never makes a network call.
type FallbackProvider struct{}

// Name returns the provider identifier.
func (p *FallbackProvider) Name() string { return string(types.ProviderFallback) }

// Search returns up to limit canned hits for query.
func (p *FallbackProvider) Search(_ context.Context, query string, limit int) ([]types.SearchHit, error) {
	hits := generalHits
	lower := strings.ToLower(query)
	for _, k := range microsoftKeywords {
		if strings.Contains(lower, k) {
			hits = microsoftHits
			break
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > len(hits) {
		limit = len(hits)
	}
	out := make([]types.SearchHit, limit)
	copy(out, hits[:limit])
	return out, nil
}
