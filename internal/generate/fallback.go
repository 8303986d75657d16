// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"fmt"

	"github.com/pdiddy/training-factory/pkg/types"
)

const (
	defaultTopic    = "Untitled Topic"
	defaultAudience = "general"
	placeholderID   = "src_001"
	moduleMinutes   = 30
	contextPackCap  = 4000
)

// grounding is the set of source ids a stage may cite, in research order.
type grounding struct {
	ids   []string
	valid map[string]bool
}

func newGrounding(res types.ResearchResult) grounding {
	g := grounding{valid: map[string]bool{}}
	for _, id := range res.SourceIDs() {
		if id != "" && !g.valid[id] {
			g.ids = append(g.ids, id)
			g.valid[id] = true
		}
	}
	return g
}

// filter keeps the known ids of in, in order, without duplicates.
func (g grounding) filter(in []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, id := range in {
		if g.valid[id] && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	return out
}

// first returns up to n research ids, or the placeholder id when research
// found nothing.
func (g grounding) first(n int) []string {
	if len(g.ids) == 0 {
		return []string{placeholderID}
	}
	if len(g.ids) < n {
		n = len(g.ids)
	}
	return append([]string(nil), g.ids[:n]...)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func fallbackBrief(req types.Request, g grounding) types.Brief {
	topic := orDefault(req.Topic, defaultTopic)
	refs := g.first(2)
	return types.Brief{
		Topic:          topic,
		Audience:       orDefault(req.Audience, defaultAudience),
		Goals:          []string{fmt.Sprintf("Understand fundamentals of %s", topic)},
		Constraints:    []string{"Keep explanations clear and concise"},
		ReferencesUsed: refs,
		KeyGuidelines: []types.Guideline{{
			Guideline: "Ground recommendations in official guidance and practical constraints.",
			Rationale: "Stable, authoritative guidance reduces implementation risk for novices.",
			Sources:   refs[:1],
		}},
	}
}

// curriculumRefs prefers the brief's grounded references and falls back
// to the top research ids.
func curriculumRefs(brief types.Brief, g grounding) []string {
	if refs := g.filter(brief.ReferencesUsed); len(refs) > 0 {
		return refs
	}
	return g.first(2)
}

func fallbackCurriculum(brief types.Brief, g grounding) types.Curriculum {
	topic := orDefault(brief.Topic, defaultTopic)
	refs := curriculumRefs(brief, g)
	return types.Curriculum{
		Topic:          topic,
		Audience:       orDefault(brief.Audience, defaultAudience),
		ReferencesUsed: refs,
		Modules: []types.Module{
			{
				Title:           topic + ": Foundations",
				DurationMinutes: moduleMinutes,
				Objectives:      []string{fmt.Sprintf("Explain the core concepts of %s", topic)},
				Sources:         refs[:1],
			},
			{
				Title:           topic + ": Hands-on Practice",
				DurationMinutes: moduleMinutes,
				Objectives:      []string{fmt.Sprintf("Apply %s in a guided lab", topic)},
				Sources:         refs[len(refs)-1:],
			},
		},
	}
}

func fallbackSlides(c types.Curriculum) types.Slides {
	var deck []types.Slide
	for i, m := range c.Modules {
		title := orDefault(m.Title, fmt.Sprintf("Module %d", i+1))
		bullets := m.Objectives
		if len(bullets) == 0 {
			bullets = []string{"Learning objective", "Core concept", "Example"}
		}
		deck = append(deck, types.Slide{Number: i + 1, Title: title, Bullets: append([]string(nil), bullets...)})
	}
	deck = append(deck, types.Slide{
		Number: len(deck) + 1,
		Title:  "Lab walkthrough",
		Bullets: []string{
			"Complete the hands-on lab exercise",
			"Validate your work against the lab checkpoints",
		},
	})
	return types.Slides{Deck: deck}
}

func fallbackStructuredLab(c types.Curriculum) types.StructuredLab {
	title := "Core Module"
	if len(c.Modules) > 0 && c.Modules[0].Title != "" {
		title = c.Modules[0].Title
	}
	return types.StructuredLab{
		Title:         "Lab: " + title,
		Objective:     fmt.Sprintf("Apply key concepts from %s in a practical exercise.", title),
		Prerequisites: []string{"Basic familiarity with the training topic"},
		Setup:         []string{"Open your working environment"},
		Steps: []types.LabStep{
			{Step: 1, Instruction: fmt.Sprintf("Review the goals for %s.", title)},
			{Step: 2, Instruction: "Implement the requested task step by step."},
			{Step: 3, Instruction: "Validate results and document key takeaways."},
		},
		Checkpoints: []string{
			"Implementation runs without errors",
			"Results align with the lab objective",
		},
	}
}

func fallbackLegacyLab(c types.Curriculum) types.LegacyLab {
	var labs []types.LegacyActivity
	for i, m := range c.Modules {
		title := orDefault(m.Title, fmt.Sprintf("Module %d", i+1))
		labs = append(labs, types.LegacyActivity{
			Title: "Lab: " + title,
			Instructions: []string{
				fmt.Sprintf("Complete a practical exercise for %s", title),
				"Share your approach and reasoning",
			},
			ExpectedOutcome: fmt.Sprintf("Learner can apply concepts from %s", title),
		})
	}
	if len(labs) == 0 {
		labs = fallbackStructuredLab(c).ToLegacy().Labs
	}
	return types.LegacyLab{Labs: labs}
}

func fallbackLab(c types.Curriculum, shape types.Shape) types.Lab {
	if shape == types.ShapeLegacy {
		return types.NewLegacyLab(fallbackLegacyLab(c))
	}
	return types.NewStructuredLab(fallbackStructuredLab(c))
}

func fallbackLegacyTemplates(slides types.Slides, lab types.Lab) types.LegacyTemplates {
	labTitle := "the hands-on lab"
	switch {
	case lab.Structured != nil && lab.Structured.Title != "":
		labTitle = lab.Structured.Title
	case lab.Legacy != nil && len(lab.Legacy.Labs) > 0 && lab.Legacy.Labs[0].Title != "":
		labTitle = lab.Legacy.Labs[0].Title
	}
	return types.LegacyTemplates{
		Readme: "# Training Bundle\n\n" +
			fmt.Sprintf("This training bundle contains %d slide(s) and related assets.\n\n", len(slides.Deck)) +
			fmt.Sprintf("Hands-on lab: %s.\n", labTitle),
		Runbook: "# Runbook\n\n" +
			"1. Review the brief and curriculum.\n" +
			"2. Walk through slides and labs.\n" +
			"3. Use QA checks to validate delivery readiness.\n",
	}
}

func fallbackTemplates(slides types.Slides, lab types.Lab, shape types.Shape) types.Templates {
	legacy := fallbackLegacyTemplates(slides, lab)
	if shape == types.ShapeLegacy {
		return types.NewLegacyTemplates(legacy)
	}
	return types.NewStructuredTemplates(legacy.ToStructured())
}
