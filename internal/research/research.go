// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research turns a training request into a ranked, deduplicated,
// authority-tiered list of sources with stable ids, optional fetched
// snippets, and a bounded context pack for the generators.
package research

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pdiddy/training-factory/internal/search"
	"github.com/pdiddy/training-factory/internal/snippet"
	"github.com/pdiddy/training-factory/internal/textutil"
	"github.com/pdiddy/training-factory/pkg/types"
)

const (
	searchSnippetHeading = "search_snippet"
	searchSnippetLoc     = "search"
	dateFmt              = "2006-01-02"
)

// Engine runs retrieval against a search provider and, when the request
// asks for it, enriches the top sources with fetched snippets.
type Engine struct {
	Provider  search.Provider
	Fetcher   snippet.Fetcher
	Extractor snippet.Extractor
	Config    types.ResearchConfig
	Now       func() time.Time
	Logger    *zap.Logger
}

// NewEngine builds an engine with default caps filled in.
func NewEngine(provider search.Provider, fetcher snippet.Fetcher, cfg types.ResearchConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.WithDefaults()
	return &Engine{
		Provider:  provider,
		Fetcher:   fetcher,
		Extractor: snippet.Extractor{MaxChars: cfg.SnippetChars},
		Config:    cfg,
		Now:       time.Now,
		Logger:    logger,
	}
}

// Retrieve plans queries for the request topic, collects and ranks
// candidates, selects the top sources, and builds the context pack. A
// provider that returns nothing yields a result with zero sources.
func (e *Engine) Retrieve(ctx context.Context, req types.Request) (types.ResearchResult, error) {
	cfg := e.Config.WithDefaults()
	log := e.logger()
	plan := BuildQueryPlan(req.Topic)

	hits, err := e.collect(ctx, plan, cfg.MaxResultsPerQuery)
	if err != nil {
		return types.ResearchResult{}, err
	}

	candidates := rank(req.Topic, plan, hits, cfg.SnippetChars)
	selected := selectSources(candidates, cfg.MaxSources, cfg.DomainCap)
	assignIDs(selected)

	if req.ResearchOptions.WebEnabled && e.Fetcher != nil && len(selected) > 0 {
		e.enrich(ctx, req.Topic, plan, selected, cfg)
	}

	log.Info("research: sources selected",
		zap.String("topic", req.Topic),
		zap.Int("candidates", len(candidates)),
		zap.Int("selected", len(selected)),
		zap.String("product", string(plan.DetectedProduct)),
	)

	return types.ResearchResult{
		QueryPlan:   plan,
		Sources:     selected,
		ContextPack: BuildContextPack(req.Topic, req.Audience, selected, cfg.ContextPackChars),
	}, nil
}

// collect runs every planned query and drops hits without a URL, a title,
// or a host, and hits whose URL was already seen. The first usable
// occurrence wins.
func (e *Engine) collect(ctx context.Context, plan types.QueryPlan, limit int) ([]types.SearchHit, error) {
	if e.Provider == nil {
		return nil, eris.New("research: no search provider configured")
	}
	seen := map[string]bool{}
	var out []types.SearchHit
	for _, q := range plan.Queries {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "research: retrieval cancelled")
		}
		hits, err := e.Provider.Search(ctx, q, limit)
		if err != nil {
			e.logger().Warn("research: query failed",
				zap.String("provider", e.Provider.Name()),
				zap.String("query", q),
				zap.Error(err))
			continue
		}
		if len(hits) > limit {
			hits = hits[:limit]
		}
		for _, h := range hits {
			h.URL = strings.TrimSpace(h.URL)
			if h.URL == "" || seen[h.URL] {
				continue
			}
			if strings.TrimSpace(h.Title) == "" || Domain(h.URL) == "" {
				continue
			}
			seen[h.URL] = true
			out = append(out, h)
		}
	}
	return out, nil
}

// rank converts hits to scored sources sorted by descending score, then
// ascending URL.
func rank(topic string, plan types.QueryPlan, hits []types.SearchHit, snippetChars int) []types.Source {
	sc := newScorer(topic, plan)
	out := make([]types.Source, 0, len(hits))
	for _, h := range hits {
		domain := Domain(h.URL)
		tier := ClassifyTier(domain)
		publisher := strings.TrimSpace(h.Source)
		if publisher == "" {
			publisher = domain
		}
		src := types.Source{
			Title:         strings.TrimSpace(h.Title),
			URL:           h.URL,
			Domain:        domain,
			Publisher:     publisher,
			DocType:       DocType(h.URL),
			AuthorityTier: tier,
			Score:         sc.score(h, domain, tier),
			Snippets:      []types.Snippet{},
		}
		if text := textutil.Truncate(textutil.CollapseWhitespace(h.Snippet), snippetChars); text != "" {
			src.Snippets = append(src.Snippets, types.Snippet{
				Heading: searchSnippetHeading,
				Text:    text,
				Loc:     searchSnippetLoc,
			})
		}
		out = append(out, src)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].URL < out[j].URL
	})
	return out
}

// selectSources walks candidates in rank order, keeping at most maxSources
// and at most domainCap per domain. Tier-A domains are never capped.
func selectSources(candidates []types.Source, maxSources, domainCap int) []types.Source {
	perDomain := map[string]int{}
	var selected []types.Source
	for _, c := range candidates {
		if len(selected) >= maxSources {
			break
		}
		if c.AuthorityTier != types.TierA && perDomain[c.Domain] >= domainCap {
			continue
		}
		perDomain[c.Domain]++
		selected = append(selected, c)
	}
	return selected
}

// SourceID formats the 1-based selection position as a source id.
func SourceID(n int) string {
	return fmt.Sprintf("src_%03d", n)
}

func assignIDs(sources []types.Source) {
	for i := range sources {
		sources[i].ID = SourceID(i + 1)
	}
}

// enrich fetches the highest-authority sources and prepends extracted
// snippets. A failed fetch leaves the source with its search snippet.
func (e *Engine) enrich(ctx context.Context, topic string, plan types.QueryPlan, sources []types.Source, cfg types.ResearchConfig) {
	keywords := append([]string(nil), plan.IntentKeywords...)
	keywords = append(keywords, textutil.Tokenize(topic).Sorted()...)

	order := make([]int, len(sources))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		sa, sb := sources[order[a]], sources[order[b]]
		if pa, pb := sa.AuthorityTier.Priority(), sb.AuthorityTier.Priority(); pa != pb {
			return pa < pb
		}
		if sa.Score != sb.Score {
			return sa.Score > sb.Score
		}
		return sa.URL < sb.URL
	})
	if len(order) > cfg.MaxEnriched {
		order = order[:cfg.MaxEnriched]
	}

	now := e.now().Format(dateFmt)
	for _, idx := range order {
		src := &sources[idx]
		markup := e.Fetcher.Fetch(ctx, src.URL)
		extracted := e.Extractor.Extract(markup, keywords, cfg.MaxSnippets)
		if len(extracted) > 0 {
			merged := append(extracted, src.Snippets...)
			if len(merged) > cfg.MaxSnippets {
				merged = merged[:cfg.MaxSnippets]
			}
			src.Snippets = merged
		} else {
			e.logger().Debug("research: no snippets extracted", zap.String("url", src.URL))
		}
		src.RetrievedAt = now
	}
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}
