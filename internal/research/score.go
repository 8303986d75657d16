// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"net/url"
	"strings"

	"github.com/pdiddy/training-factory/internal/textutil"
	"github.com/pdiddy/training-factory/pkg/types"
)

// Domain sets per authority tier. A domain matches when it equals an entry
// or is a subdomain of it.
var (
	tierADomains = []string{"learn.microsoft.com", "docs.microsoft.com", "nist.gov", "owasp.org"}
	tierBDomains = []string{
		"aws.amazon.com", "cloud.google.com", "azure.microsoft.com",
		"mckinsey.com", "deloitte.com", "accenture.com", "pwc.com",
	}
	tierCDomains = []string{"medium.com", "linkedin.com", "dev.to", "substack.com"}
)

// tierBase is the score floor contributed by each tier.
var tierBase = map[types.Tier]float64{
	types.TierA: 4.0,
	types.TierB: 2.5,
	types.TierC: 1.2,
	types.TierD: 0.3,
}

const (
	overlapWeight      = 0.35
	preferredBonus     = 1.0
	productPathBonus   = 0.6
	umbrellaPenalty    = 0.2
	siblingPathPenalty = 0.4
	scorePrecision     = 3
)

// Domain returns the lowercased URL host without a leading "www.".
func Domain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func matchesDomain(domain string, candidates []string) bool {
	for _, c := range candidates {
		if domain == c || strings.HasSuffix(domain, "."+c) {
			return true
		}
	}
	return false
}

// ClassifyTier assigns the authority tier for a domain, defaulting to D.
func ClassifyTier(domain string) types.Tier {
	switch {
	case domain == "":
		return types.TierD
	case matchesDomain(domain, tierADomains):
		return types.TierA
	case matchesDomain(domain, tierBDomains):
		return types.TierB
	case matchesDomain(domain, tierCDomains):
		return types.TierC
	}
	return types.TierD
}

// DocType guesses the document kind from the URL path.
func DocType(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	path := strings.ToLower(u.Path)
	switch {
	case strings.Contains(path, "/blog/"):
		return "blog"
	case strings.Contains(path, "/docs/"), strings.Contains(path, "/documentation"):
		return "documentation"
	case strings.Contains(path, "/learn/"), strings.Contains(path, "/training/"):
		return "guide"
	}
	return ""
}

// scorer holds the per-plan state needed to score candidates.
type scorer struct {
	plan           types.QueryPlan
	queryTokens    textutil.TokenSet
	lifecycleTopic bool
}

func newScorer(topic string, plan types.QueryPlan) scorer {
	toks := textutil.Tokenize(topic)
	for _, k := range plan.IntentKeywords {
		toks.Add(textutil.Tokenize(k))
	}
	return scorer{plan: plan, queryTokens: toks, lifecycleTopic: hasLifecycleContext(topic)}
}

// score computes the ranking score for a hit on the given domain.
func (s scorer) score(hit types.SearchHit, domain string, tier types.Tier) float64 {
	total := tierBase[tier]
	total += overlapWeight * float64(textutil.Overlap(s.queryTokens, textutil.TokenizeAll(hit.Title, hit.Snippet)))
	if matchesDomain(domain, s.plan.PreferredDomains) {
		total += preferredBonus
	}
	total += s.pathAdjustment(hit.URL)
	return textutil.Round(total, scorePrecision)
}

// pathAdjustment rewards URLs inside the detected product's docs tree and
// penalizes sibling product trees unless the topic is about lifecycle.
func (s scorer) pathAdjustment(rawURL string) float64 {
	own, ok := ruleFor(s.plan.DetectedProduct)
	if !ok {
		return 0
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	segments := map[string]bool{}
	for _, seg := range strings.Split(strings.ToLower(u.Path), "/") {
		if seg != "" {
			segments[seg] = true
		}
	}
	for _, ns := range own.namespaces {
		if segments[ns] {
			return productPathBonus
		}
	}
	if s.lifecycleTopic {
		return 0
	}
	if segments[umbrellaNamespace] {
		return -umbrellaPenalty
	}
	for _, r := range productRules {
		if r.product == own.product {
			continue
		}
		for _, ns := range r.namespaces {
			if segments[ns] {
				return -siblingPathPenalty
			}
		}
	}
	return 0
}
