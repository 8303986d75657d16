// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Tier is the coarse authority bucket assigned to a source by domain.
type Tier string

const (
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
	TierD Tier = "D"
)

// Tiers lists every tier from highest to lowest authority.
var Tiers = []Tier{TierA, TierB, TierC, TierD}

// Valid reports whether t is one of the four known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierA, TierB, TierC, TierD:
		return true
	}
	return false
}

// Priority orders tiers for enrichment: A first, D last.
func (t Tier) Priority() int {
	switch t {
	case TierA:
		return 0
	case TierB:
		return 1
	case TierC:
		return 2
	case TierD:
		return 3
	}
	return 9
}

// Product is the product family detected from the topic text.
type Product string

const (
	ProductNone          Product = "none"
	ProductPowerBI       Product = "power_bi"
	ProductPowerApps     Product = "power_apps"
	ProductPowerAutomate Product = "power_automate"
	ProductPowerPlatform Product = "power_platform"
)

// QueryPlan is derived once per retrieval attempt from the request topic.
type QueryPlan struct {
	Queries          []string `json:"queries" yaml:"queries"`
	IntentKeywords   []string `json:"intent_keywords" yaml:"intent_keywords"`
	PreferredDomains []string `json:"preferred_domains" yaml:"preferred_domains"`
	DetectedProduct  Product  `json:"detected_product" yaml:"detected_product"`
}

// SearchHit is one ordered result returned by a search provider.
type SearchHit struct {
	Title   string `json:"title" yaml:"title"`
	URL     string `json:"url" yaml:"url"`
	Snippet string `json:"snippet" yaml:"snippet"`
	Source  string `json:"source" yaml:"source"`
}

// Snippet is a whitespace-normalized, length-capped text fragment.
type Snippet struct {
	Heading string `json:"heading" yaml:"heading"`
	Text    string `json:"text" yaml:"text"`
	Loc     string `json:"loc" yaml:"loc"`
}

// Source is one selected search result. ID is assigned after selection.
type Source struct {
	ID            string    `json:"id" yaml:"id"`
	Title         string    `json:"title" yaml:"title"`
	URL           string    `json:"url" yaml:"url"`
	Domain        string    `json:"domain" yaml:"domain"`
	Publisher     string    `json:"publisher" yaml:"publisher"`
	DocType       string    `json:"doc_type" yaml:"doc_type"`
	AuthorityTier Tier      `json:"authority_tier" yaml:"authority_tier"`
	Score         float64   `json:"score" yaml:"score"`
	Snippets      []Snippet `json:"snippets" yaml:"snippets"`
	RetrievedAt   string    `json:"retrieved_at,omitempty" yaml:"retrieved_at,omitempty"`
}

// ResearchResult is the output of one retrieval attempt.
type ResearchResult struct {
	QueryPlan   QueryPlan `json:"query_plan" yaml:"query_plan"`
	Sources     []Source  `json:"sources" yaml:"sources"`
	ContextPack string    `json:"context_pack" yaml:"context_pack"`
}

// SourceIDs returns the ids of all sources in selection order.
func (r ResearchResult) SourceIDs() []string {
	ids := make([]string, 0, len(r.Sources))
	for _, s := range r.Sources {
		ids = append(ids, s.ID)
	}
	return ids
}

// SourceByID looks up a source by its id.
func (r ResearchResult) SourceByID(id string) (Source, bool) {
	for _, s := range r.Sources {
		if s.ID == id {
			return s, true
		}
	}
	return Source{}, false
}
