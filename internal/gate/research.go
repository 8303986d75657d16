// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gate computes the research and content quality gates. Gates are
// pure: they read pipeline payloads and return a pass/fail verdict with
// the individual checks, never an error.
package gate

import (
	"github.com/pdiddy/training-factory/internal/research"
	"github.com/pdiddy/training-factory/internal/textutil"
	"github.com/pdiddy/training-factory/pkg/types"
)

// Research gate check prompts.
const (
	CheckMinSources      = "At least 3 sources are present"
	CheckAuthority       = "Authority threshold met (>=1 Tier A or >=2 Tier B)"
	CheckKeywordCoverage = "Keyword coverage ratio is at least 0.5"
	CheckDomainCap       = "No non-Tier-A domain has more than 2 sources"
)

const (
	minSources     = 3
	minTierB       = 2
	minCoverage    = 0.5
	domainCap      = 2
	ratioPrecision = 3
)

// EvaluateResearch scores the selected sources against the request topic.
func EvaluateResearch(res types.ResearchResult, req types.Request) types.ResearchQAResult {
	metrics := ResearchMetrics(res, req.Topic)

	nonADomains := map[string]int{}
	for _, s := range res.Sources {
		if s.AuthorityTier != types.TierA {
			nonADomains[s.Domain]++
		}
	}
	domainOK := true
	for _, n := range nonADomains {
		if n > domainCap {
			domainOK = false
			break
		}
	}

	checks := []types.Check{
		{Prompt: CheckMinSources, Answer: types.AnswerOf(len(res.Sources) >= minSources)},
		{Prompt: CheckAuthority, Answer: types.AnswerOf(
			metrics.TierCounts[types.TierA] >= 1 || metrics.TierCounts[types.TierB] >= minTierB)},
		{Prompt: CheckKeywordCoverage, Answer: types.AnswerOf(metrics.KeywordCoverageRatio >= minCoverage)},
		{Prompt: CheckDomainCap, Answer: types.AnswerOf(domainOK)},
	}
	return types.ResearchQAResult{
		Status:  types.StatusOf(checks),
		Checks:  checks,
		Metrics: metrics,
	}
}

// ResearchMetrics counts sources per tier and domain and computes the share
// of sources whose title or snippets share a token with the topic and
// intent keywords.
func ResearchMetrics(res types.ResearchResult, topic string) types.ResearchMetrics {
	tiers := make(map[types.Tier]int, len(types.Tiers))
	for _, t := range types.Tiers {
		tiers[t] = 0
	}
	domains := map[string]int{}

	intents := res.QueryPlan.IntentKeywords
	if len(intents) == 0 {
		intents = research.IntentKeywords
	}
	want := textutil.Tokenize(topic)
	for _, k := range intents {
		want.Add(textutil.Tokenize(k))
	}

	covered := 0
	for _, s := range res.Sources {
		tiers[s.AuthorityTier]++
		domains[s.Domain]++

		parts := []string{s.Title}
		for _, sn := range s.Snippets {
			parts = append(parts, sn.Text)
		}
		if textutil.Overlap(want, textutil.TokenizeAll(parts...)) > 0 {
			covered++
		}
	}

	var ratio float64
	if len(res.Sources) > 0 {
		ratio = textutil.Round(float64(covered)/float64(len(res.Sources)), ratioPrecision)
	}
	return types.ResearchMetrics{
		TierCounts:           tiers,
		DomainCounts:         domains,
		KeywordCoverageRatio: ratio,
	}
}
