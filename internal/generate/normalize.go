// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"github.com/pdiddy/training-factory/pkg/types"
)

// Normalizers map a live model payload onto the exact stage shape. They
// unwrap envelopes, accept common field renames, drop citations of
// unknown source ids, and fill anything missing from the fallback.

func normalizeBrief(payload map[string]any, fallback types.Brief, g grounding) types.Brief {
	payload = unwrap(payload, "brief")

	refs := g.filter(stringList(payload["references_used"]))
	if len(refs) == 0 {
		refs = fallback.ReferencesUsed
	}

	var guidelines []types.Guideline
	raw, _ := field(payload, "key_guidelines", "guidelines")
	for _, m := range objects(raw) {
		text := str(m["guideline"])
		rationale := str(m["rationale"])
		if text == "" || rationale == "" {
			continue
		}
		sources := g.filter(stringList(m["sources"]))
		if len(sources) == 0 {
			sources = refs[:1]
		}
		guidelines = append(guidelines, types.Guideline{Guideline: text, Rationale: rationale, Sources: sources})
	}
	if len(guidelines) == 0 {
		guidelines = fallback.KeyGuidelines
	}

	return types.Brief{
		Topic:          strOr(payload["topic"], fallback.Topic),
		Audience:       strOr(payload["audience"], fallback.Audience),
		Goals:          listOr(payload["goals"], fallback.Goals),
		Constraints:    listOr(payload["constraints"], fallback.Constraints),
		ReferencesUsed: refs,
		KeyGuidelines:  guidelines,
	}
}

func normalizeCurriculum(payload map[string]any, fallback types.Curriculum, g grounding) types.Curriculum {
	payload = unwrap(payload, "curriculum")

	refs := g.filter(stringList(payload["references_used"]))
	if len(refs) == 0 {
		refs = fallback.ReferencesUsed
	}

	var modules []types.Module
	raw, _ := field(payload, "modules", "units")
	for _, m := range objects(raw) {
		title, _ := field(m, "title", "name")
		t := str(title)
		if t == "" {
			continue
		}
		minutes := moduleMinutes
		if d, ok := field(m, "duration_minutes", "duration"); ok {
			if n, ok := positiveInt(d); ok {
				minutes = n
			}
		}
		objectives, _ := field(m, "objectives", "learning_objectives")
		sources := g.filter(stringList(m["sources"]))
		if len(sources) == 0 {
			sources = refs[:1]
		}
		modules = append(modules, types.Module{
			Title:           t,
			DurationMinutes: minutes,
			Objectives:      stringList(objectives),
			Sources:         sources,
		})
	}
	if len(modules) == 0 {
		modules = fallback.Modules
	}

	return types.Curriculum{
		Topic:          strOr(payload["topic"], fallback.Topic),
		Audience:       strOr(payload["audience"], fallback.Audience),
		ReferencesUsed: refs,
		Modules:        modules,
	}
}

func normalizeSlides(payload map[string]any, fallback types.Slides) types.Slides {
	payload = unwrap(payload, "slides")

	raw, _ := field(payload, "deck", "slides")
	var deck []types.Slide
	for _, m := range objects(raw) {
		title, _ := field(m, "title", "heading")
		bullets, _ := field(m, "bullets", "points", "content")
		s := types.Slide{Number: len(deck) + 1, Title: str(title), Bullets: stringList(bullets)}
		if s.Title == "" || len(s.Bullets) == 0 {
			continue
		}
		deck = append(deck, s)
	}
	if len(deck) == 0 {
		return fallback
	}
	return types.Slides{Deck: deck}
}

func normalizeLab(payload map[string]any, shape types.Shape, structured types.StructuredLab, legacy types.LegacyLab) types.Lab {
	payload = unwrap(payload, "lab")

	if shape == types.ShapeLegacy {
		if _, ok := payload["labs"]; ok {
			if l := parseLegacyLab(payload); len(l.Labs) > 0 {
				return types.NewLegacyLab(l)
			}
			return types.NewLegacyLab(legacy)
		}
		if hasAll(payload, "title", "objective", "steps") {
			return types.NewLegacyLab(parseStructuredLab(payload, structured).ToLegacy())
		}
		return types.NewLegacyLab(legacy)
	}

	if hasAll(payload, "title", "objective", "prerequisites", "steps", "checkpoints") {
		return types.NewStructuredLab(parseStructuredLab(payload, structured))
	}
	return types.NewStructuredLab(parseLegacyLab(payload).ToStructured(structured))
}

func parseStructuredLab(payload map[string]any, fallback types.StructuredLab) types.StructuredLab {
	return types.StructuredLab{
		Title:         strOr(payload["title"], fallback.Title),
		Objective:     strOr(payload["objective"], fallback.Objective),
		Prerequisites: listOr(payload["prerequisites"], fallback.Prerequisites),
		Setup:         listOr(payload["setup"], fallback.Setup),
		Steps:         parseSteps(payload["steps"], fallback.Steps),
		Checkpoints:   listOr(payload["checkpoints"], fallback.Checkpoints),
	}
}

// parseSteps accepts step objects or bare instruction strings. Steps are
// padded to the minimum count; an unusable list yields fallback.
func parseSteps(v any, fallback []types.LabStep) []types.LabStep {
	items, ok := v.([]any)
	if !ok {
		return fallback
	}
	var steps []types.LabStep
	for i, item := range items {
		switch t := item.(type) {
		case string:
			if s := str(t); s != "" {
				steps = append(steps, types.LabStep{Step: i + 1, Instruction: s})
			}
		case map[string]any:
			instruction := str(t["instruction"])
			if instruction == "" {
				continue
			}
			n, ok := positiveInt(t["step"])
			if !ok {
				n = i + 1
			}
			steps = append(steps, types.LabStep{Step: n, Instruction: instruction, ExpectedOutput: str(t["expected_output"])})
		}
	}
	if len(steps) == 0 {
		return fallback
	}
	return types.PadSteps(steps)
}

func parseLegacyLab(payload map[string]any) types.LegacyLab {
	var l types.LegacyLab
	for _, m := range objects(payload["labs"]) {
		a := types.LegacyActivity{
			Title:           str(m["title"]),
			Instructions:    stringList(m["instructions"]),
			ExpectedOutcome: str(m["expected_outcome"]),
		}
		if a.Title == "" || len(a.Instructions) == 0 {
			continue
		}
		l.Labs = append(l.Labs, a)
	}
	return l
}

func normalizeTemplates(payload map[string]any, shape types.Shape, fallback types.LegacyTemplates) types.Templates {
	payload = unwrap(payload, "templates")

	legacy := fallback
	_, hasReadme := payload[types.ReadmeFilename]
	_, hasRunbook := payload[types.RunbookFilename]
	if hasReadme || hasRunbook {
		legacy.Readme = strOr(payload[types.ReadmeFilename], fallback.Readme)
		legacy.Runbook = strOr(payload[types.RunbookFilename], fallback.Runbook)
	} else {
		if doc, ok := payload["readme_md"].(map[string]any); ok {
			legacy.Readme = strOr(doc["content"], fallback.Readme)
		}
		if doc, ok := payload["runbook_md"].(map[string]any); ok {
			legacy.Runbook = strOr(doc["content"], fallback.Runbook)
		}
	}

	if shape == types.ShapeLegacy {
		return types.NewLegacyTemplates(legacy)
	}
	return types.NewStructuredTemplates(legacy.ToStructured())
}
