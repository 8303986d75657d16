// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schema validates stage payloads before the pipeline accepts
// them. A payload that fails validation is a fatal error for the run; the
// returned *ValidationError lists every problem found, not just the first.
package schema

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pdiddy/training-factory/pkg/types"
)

const (
	// MaxSnippetsPerSource bounds the snippets attached to one source.
	MaxSnippetsPerSource = 4

	// MaxContextPackChars bounds the context pack, in runes.
	MaxContextPackChars = 6000

	dateLayout = "2006-01-02"
)

// sourceIDPattern matches research source ids: src_001, src_002, ...
var sourceIDPattern = regexp.MustCompile(`^src_\d{3}$`)

// ValidationError reports a payload that does not conform to its schema.
type ValidationError struct {
	Stage    string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema: %s payload invalid: %s", e.Stage, strings.Join(e.Problems, "; "))
}

// problems accumulates messages under a field-path prefix.
type problems struct {
	list []string
}

func (p *problems) addf(format string, args ...any) {
	p.list = append(p.list, fmt.Sprintf(format, args...))
}

func (p *problems) required(path, value string) {
	if strings.TrimSpace(value) == "" {
		p.addf("%s: required", path)
	}
}

func (p *problems) minItems(path string, n, want int) {
	if n < want {
		p.addf("%s: want at least %d item(s), got %d", path, want, n)
	}
}

func (p *problems) sourceIDs(path string, ids []string) {
	for i, id := range ids {
		if !sourceIDPattern.MatchString(id) {
			p.addf("%s[%d]: %q is not a source id", path, i, id)
		}
	}
}

// Validate checks one stage payload. The stage name is carried into the
// error so callers can report which stage produced invalid data.
func Validate(stage string, payload any) error {
	var p problems
	switch v := payload.(type) {
	case types.Request:
		request(&p, "request", v)
	case types.ResearchResult:
		researchResult(&p, "research", v)
	case types.ResearchQAResult:
		researchQA(&p, "research_qa", v)
	case types.Brief:
		brief(&p, "brief", v)
	case types.Curriculum:
		curriculum(&p, "curriculum", v)
	case types.Slides:
		slides(&p, "slides", v)
	case types.Lab:
		lab(&p, "lab", v)
	case types.Templates:
		templates(&p, "templates", v)
	case types.QAResult:
		qa(&p, "qa", v)
	case types.Bundle:
		bundle(&p, v)
	default:
		p.addf("unsupported payload type %T", payload)
	}
	if len(p.list) == 0 {
		return nil
	}
	return &ValidationError{Stage: stage, Problems: p.list}
}

// ValidateBundle checks every part of an assembled bundle.
func ValidateBundle(b types.Bundle) error {
	return Validate("assemble", b)
}

func bundle(p *problems, b types.Bundle) {
	request(p, "request", b.Request)
	researchResult(p, "research", b.Research)
	researchQA(p, "research_qa", b.ResearchQA)
	brief(p, "brief", b.Brief)
	curriculum(p, "curriculum", b.Curriculum)
	lab(p, "lab", b.Lab)
	slides(p, "slides", b.Slides)
	templates(p, "templates", b.Templates)
	qa(p, "qa", b.QA)
}

func request(p *problems, path string, r types.Request) {
	p.required(path+".topic", r.Topic)
	p.required(path+".audience", r.Audience)
}

func researchResult(p *problems, path string, r types.ResearchResult) {
	p.minItems(path+".query_plan.queries", len(r.QueryPlan.Queries), 1)

	seen := make(map[string]int, len(r.Sources))
	for i, s := range r.Sources {
		sp := fmt.Sprintf("%s.sources[%d]", path, i)
		if want := fmt.Sprintf("src_%03d", i+1); s.ID != want {
			p.addf("%s.id: got %q, want %q", sp, s.ID, want)
		}
		p.required(sp+".title", s.Title)
		p.required(sp+".url", s.URL)
		p.required(sp+".domain", s.Domain)
		if s.URL != "" {
			if j, dup := seen[s.URL]; dup {
				p.addf("%s.url: duplicates sources[%d]", sp, j)
			} else {
				seen[s.URL] = i
			}
		}
		if !s.AuthorityTier.Valid() {
			p.addf("%s.authority_tier: %q is not one of A, B, C, D", sp, s.AuthorityTier)
		}
		if len(s.Snippets) > MaxSnippetsPerSource {
			p.addf("%s.snippets: want at most %d, got %d", sp, MaxSnippetsPerSource, len(s.Snippets))
		}
		for j, sn := range s.Snippets {
			p.required(fmt.Sprintf("%s.snippets[%d].text", sp, j), sn.Text)
		}
		if s.RetrievedAt != "" {
			if _, err := time.Parse(dateLayout, s.RetrievedAt); err != nil {
				p.addf("%s.retrieved_at: %q is not a YYYY-MM-DD date", sp, s.RetrievedAt)
			}
		}
	}

	p.required(path+".context_pack", r.ContextPack)
	if n := utf8.RuneCountInString(r.ContextPack); n > MaxContextPackChars {
		p.addf("%s.context_pack: %d chars exceeds %d", path, n, MaxContextPackChars)
	}
}

func status(p *problems, path string, s types.QAStatus) {
	if s != types.StatusPass && s != types.StatusFail {
		p.addf("%s: %q is not pass or fail", path, s)
	}
}

func checks(p *problems, path string, cs []types.Check) {
	p.minItems(path, len(cs), 1)
	for i, c := range cs {
		p.required(fmt.Sprintf("%s[%d].prompt", path, i), c.Prompt)
		if c.Answer != types.AnswerYes && c.Answer != types.AnswerNo {
			p.addf("%s[%d].answer: %q is not Yes or No", path, i, c.Answer)
		}
	}
}

func researchQA(p *problems, path string, q types.ResearchQAResult) {
	status(p, path+".status", q.Status)
	checks(p, path+".checks", q.Checks)
	for tier := range q.Metrics.TierCounts {
		if !tier.Valid() {
			p.addf("%s.metrics.tier_counts: unknown tier %q", path, tier)
		}
	}
	if r := q.Metrics.KeywordCoverageRatio; r < 0 || r > 1 {
		p.addf("%s.metrics.keyword_coverage_ratio: %v outside [0,1]", path, r)
	}
}

func brief(p *problems, path string, b types.Brief) {
	p.required(path+".topic", b.Topic)
	p.required(path+".audience", b.Audience)
	p.minItems(path+".goals", len(b.Goals), 1)
	p.minItems(path+".constraints", len(b.Constraints), 1)
	p.minItems(path+".references_used", len(b.ReferencesUsed), 1)
	p.sourceIDs(path+".references_used", b.ReferencesUsed)
	p.minItems(path+".key_guidelines", len(b.KeyGuidelines), 1)
	for i, g := range b.KeyGuidelines {
		gp := fmt.Sprintf("%s.key_guidelines[%d]", path, i)
		p.required(gp+".guideline", g.Guideline)
		p.required(gp+".rationale", g.Rationale)
		p.minItems(gp+".sources", len(g.Sources), 1)
		p.sourceIDs(gp+".sources", g.Sources)
	}
}

func curriculum(p *problems, path string, c types.Curriculum) {
	p.required(path+".topic", c.Topic)
	p.minItems(path+".references_used", len(c.ReferencesUsed), 1)
	p.sourceIDs(path+".references_used", c.ReferencesUsed)
	p.minItems(path+".modules", len(c.Modules), 1)
	for i, m := range c.Modules {
		mp := fmt.Sprintf("%s.modules[%d]", path, i)
		p.required(mp+".title", m.Title)
		if m.DurationMinutes <= 0 {
			p.addf("%s.duration_minutes: must be positive", mp)
		}
		p.minItems(mp+".sources", len(m.Sources), 1)
		p.sourceIDs(mp+".sources", m.Sources)
	}
}

func slides(p *problems, path string, s types.Slides) {
	p.minItems(path+".deck", len(s.Deck), 1)
	for i, sl := range s.Deck {
		sp := fmt.Sprintf("%s.deck[%d]", path, i)
		if sl.Number < 1 {
			p.addf("%s.slide: must be positive", sp)
		}
		p.required(sp+".title", sl.Title)
		p.minItems(sp+".bullets", len(sl.Bullets), 1)
	}
}

func lab(p *problems, path string, l types.Lab) {
	switch {
	case l.Shape == types.ShapeLegacy && l.Legacy != nil:
		p.minItems(path+".labs", len(l.Legacy.Labs), 1)
		for i, a := range l.Legacy.Labs {
			ap := fmt.Sprintf("%s.labs[%d]", path, i)
			p.required(ap+".title", a.Title)
			p.minItems(ap+".instructions", len(a.Instructions), 1)
			p.required(ap+".expected_outcome", a.ExpectedOutcome)
		}
	case l.Shape == types.ShapeStructured && l.Structured != nil:
		s := l.Structured
		p.required(path+".title", s.Title)
		p.required(path+".objective", s.Objective)
		p.minItems(path+".steps", len(s.Steps), types.MinLabSteps)
		for i, st := range s.Steps {
			stp := fmt.Sprintf("%s.steps[%d]", path, i)
			if st.Step < 1 {
				p.addf("%s.step: must be positive", stp)
			}
			p.required(stp+".instruction", st.Instruction)
		}
		p.minItems(path+".checkpoints", len(s.Checkpoints), 1)
	default:
		p.addf("%s: no %s layout present", path, shapeName(l.Shape))
	}
}

func templates(p *problems, path string, t types.Templates) {
	switch {
	case t.Shape == types.ShapeLegacy && t.Legacy != nil:
		p.required(path+"."+types.ReadmeFilename, t.Legacy.Readme)
		p.required(path+"."+types.RunbookFilename, t.Legacy.Runbook)
	case t.Shape == types.ShapeStructured && t.Structured != nil:
		doc(p, path+".readme_md", t.Structured.ReadmeMD, types.ReadmeFilename)
		doc(p, path+".runbook_md", t.Structured.RunbookMD, types.RunbookFilename)
	default:
		p.addf("%s: no %s layout present", path, shapeName(t.Shape))
	}
}

func doc(p *problems, path string, d types.TemplateDoc, filename string) {
	if d.Filename != filename {
		p.addf("%s.filename: got %q, want %q", path, d.Filename, filename)
	}
	p.required(path+".content", d.Content)
}

func qa(p *problems, path string, q types.QAResult) {
	status(p, path+".status", q.Status)
	checks(p, path+".checks", q.Checks)
}

func shapeName(s types.Shape) string {
	if s == "" {
		return "payload"
	}
	return string(s)
}
