// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gate

import (
	"regexp"
	"strings"

	"github.com/pdiddy/training-factory/internal/textutil"
	"github.com/pdiddy/training-factory/pkg/types"
)

// Content gate check prompts, in evaluation order.
const (
	CheckLabComplete        = "Does the lab include steps and checkpoints?"
	CheckSlideText          = "Do slides contain titles and bullet text?"
	CheckSlidesReferenceLab = "Do slides reference the lab or hands-on practice?"
	CheckTemplatesPresent   = "Are README.md and RUNBOOK.md present and non-empty?"
	CheckTemplatesReference = "Do templates reference both the lab and the slides?"
	CheckReferencesValid    = "Does curriculum include references_used and are they valid research source IDs?"
	CheckModuleSources      = "Does each curriculum module include sources and are they valid research source IDs?"
	CheckAuthorityCitations = "Does curriculum cite sufficiently authoritative sources (Tier A/B) for this topic?"
)

var (
	labVocabulary   = regexp.MustCompile(`(?i)\b(labs?|exercises?|hands-on|checkpoints?)\b`)
	slideVocabulary = regexp.MustCompile(`(?i)\b(slides?|deck|presentations?)\b`)
)

// SensitiveKeywords mark topics whose citations must include tier A.
var SensitiveKeywords = []string{"governance", "security", "risk", "compliance", "policy", "alm", "lifecycle"}

// IsSensitiveTopic reports whether any topic token is a sensitive keyword.
func IsSensitiveTopic(topic string) bool {
	toks := textutil.Tokenize(topic)
	for _, k := range SensitiveKeywords {
		if toks.Has(k) {
			return true
		}
	}
	return false
}

// EvaluateContent checks the generated payloads for completeness,
// cross-references, and grounding in the research sources.
func EvaluateContent(slides types.Slides, lab types.Lab, tpl types.Templates, curriculum types.Curriculum, res types.ResearchResult) types.QAResult {
	known := map[string]types.Source{}
	for _, s := range res.Sources {
		known[s.ID] = s
	}

	checks := []types.Check{
		{Prompt: CheckLabComplete, Answer: types.AnswerOf(labComplete(lab))},
		{Prompt: CheckSlideText, Answer: types.AnswerOf(slidesHaveText(slides))},
		{Prompt: CheckSlidesReferenceLab, Answer: types.AnswerOf(labVocabulary.MatchString(slideText(slides)))},
		{Prompt: CheckTemplatesPresent, Answer: types.AnswerOf(templatesPresent(tpl))},
		{Prompt: CheckTemplatesReference, Answer: types.AnswerOf(templatesReference(tpl))},
		{Prompt: CheckReferencesValid, Answer: types.AnswerOf(allKnown(curriculum.ReferencesUsed, known))},
		{Prompt: CheckModuleSources, Answer: types.AnswerOf(modulesGrounded(curriculum, known))},
		{Prompt: CheckAuthorityCitations, Answer: types.AnswerOf(authoritative(curriculum, known))},
	}
	return types.QAResult{Status: types.StatusOf(checks), Checks: checks}
}

func nonBlank(items []string) bool {
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

func labComplete(lab types.Lab) bool {
	return nonBlank(lab.StepTexts()) && nonBlank(lab.CheckpointTexts())
}

func slidesHaveText(slides types.Slides) bool {
	if len(slides.Deck) == 0 {
		return false
	}
	for _, s := range slides.Deck {
		if strings.TrimSpace(s.Title) == "" || !nonBlank(s.Bullets) {
			return false
		}
	}
	return true
}

func slideText(slides types.Slides) string {
	var b strings.Builder
	for _, s := range slides.Deck {
		b.WriteString(s.Title)
		b.WriteByte('\n')
		for _, bullet := range s.Bullets {
			b.WriteString(bullet)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func templatesPresent(tpl types.Templates) bool {
	if tpl.Structured != nil {
		if tpl.Structured.ReadmeMD.Filename != types.ReadmeFilename ||
			tpl.Structured.RunbookMD.Filename != types.RunbookFilename {
			return false
		}
	}
	return strings.TrimSpace(tpl.Readme()) != "" && strings.TrimSpace(tpl.Runbook()) != ""
}

func templatesReference(tpl types.Templates) bool {
	text := tpl.Readme() + "\n" + tpl.Runbook()
	return labVocabulary.MatchString(text) && slideVocabulary.MatchString(text)
}

func allKnown(ids []string, known map[string]types.Source) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return false
		}
	}
	return true
}

func modulesGrounded(c types.Curriculum, known map[string]types.Source) bool {
	if len(c.Modules) == 0 {
		return false
	}
	for _, m := range c.Modules {
		if !allKnown(m.Sources, known) {
			return false
		}
	}
	return true
}

// authoritative applies the citation policy: sensitive topics need a tier-A
// citation; others need one tier-A or two tier-B citations.
func authoritative(c types.Curriculum, known map[string]types.Source) bool {
	cited := map[string]types.Tier{}
	cite := func(ids []string) {
		for _, id := range ids {
			if s, ok := known[id]; ok {
				cited[id] = s.AuthorityTier
			}
		}
	}
	cite(c.ReferencesUsed)
	for _, m := range c.Modules {
		cite(m.Sources)
	}

	var a, b int
	for _, t := range cited {
		switch t {
		case types.TierA:
			a++
		case types.TierB:
			b++
		}
	}
	if IsSensitiveTopic(c.Topic) {
		return a >= 1
	}
	return a >= 1 || b >= minTierB
}
