// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"github.com/rotisserie/eris"

	"github.com/pdiddy/training-factory/pkg/types"
)

// State accumulates one run. Each payload field is owned by exactly one
// stage and is nil until that stage has run.
type State struct {
	Request    types.Request
	Research   *types.ResearchResult
	ResearchQA *types.ResearchQAResult
	Brief      *types.Brief
	Curriculum *types.Curriculum
	Slides     *types.Slides
	Lab        *types.Lab
	Templates  *types.Templates
	QA         *types.QAResult
	Bundle     *types.Bundle

	Counters Counters
	Trace    []Stage
}

// delta is what a stage returns: the payload it produced and, for gates,
// the status that drives routing. A delta sets exactly one field.
type delta struct {
	stage  Stage
	status types.QAStatus

	research   *types.ResearchResult
	researchQA *types.ResearchQAResult
	brief      *types.Brief
	curriculum *types.Curriculum
	slides     *types.Slides
	lab        *types.Lab
	templates  *types.Templates
	qa         *types.QAResult
	bundle     *types.Bundle
}

// apply writes the delta's field and clears every field owned by a later
// stage, so a re-entered stage never leaves stale downstream data behind.
func (s *State) apply(d delta) {
	s.clearFrom(d.stage)
	switch d.stage {
	case StageRetrieveSources:
		s.Research = d.research
	case StageResearchGate:
		s.ResearchQA = d.researchQA
	case StageGenerateBrief:
		s.Brief = d.brief
	case StageGenerateCurriculum:
		s.Curriculum = d.curriculum
	case StageGenerateSlides:
		s.Slides = d.slides
	case StageGenerateLab:
		s.Lab = d.lab
	case StageGenerateTemplates:
		s.Templates = d.templates
	case StageContentGate:
		s.QA = d.qa
	case StageAssemble:
		s.Bundle = d.bundle
	}
	s.Trace = append(s.Trace, d.stage)
}

// clearFrom resets the fields owned by stage and every later stage.
func (s *State) clearFrom(stage Stage) {
	if stage <= StageRetrieveSources {
		s.Research = nil
	}
	if stage <= StageResearchGate {
		s.ResearchQA = nil
	}
	if stage <= StageGenerateBrief {
		s.Brief = nil
	}
	if stage <= StageGenerateCurriculum {
		s.Curriculum = nil
	}
	if stage <= StageGenerateSlides {
		s.Slides = nil
	}
	if stage <= StageGenerateLab {
		s.Lab = nil
	}
	if stage <= StageGenerateTemplates {
		s.Templates = nil
	}
	if stage <= StageContentGate {
		s.QA = nil
	}
	if stage <= StageAssemble {
		s.Bundle = nil
	}
}

// errMissing reports a stage that ran before its inputs were produced.
func errMissing(stage Stage, field string) error {
	return eris.Errorf("pipeline: %s ran without %s", stage, field)
}

// snapshot builds the bundle from a state in which every payload is set.
func (s *State) snapshot() (types.Bundle, error) {
	switch {
	case s.Research == nil:
		return types.Bundle{}, errMissing(StageAssemble, "research")
	case s.ResearchQA == nil:
		return types.Bundle{}, errMissing(StageAssemble, "research_qa")
	case s.Brief == nil:
		return types.Bundle{}, errMissing(StageAssemble, "brief")
	case s.Curriculum == nil:
		return types.Bundle{}, errMissing(StageAssemble, "curriculum")
	case s.Slides == nil:
		return types.Bundle{}, errMissing(StageAssemble, "slides")
	case s.Lab == nil:
		return types.Bundle{}, errMissing(StageAssemble, "lab")
	case s.Templates == nil:
		return types.Bundle{}, errMissing(StageAssemble, "templates")
	case s.QA == nil:
		return types.Bundle{}, errMissing(StageAssemble, "qa")
	}
	return types.Bundle{
		Request:    s.Request,
		Research:   *s.Research,
		ResearchQA: *s.ResearchQA,
		Brief:      *s.Brief,
		Curriculum: *s.Curriculum,
		Lab:        *s.Lab,
		Slides:     *s.Slides,
		Templates:  *s.Templates,
		QA:         *s.QA,
	}, nil
}
