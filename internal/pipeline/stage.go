// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import "github.com/pdiddy/training-factory/pkg/types"

// Stage names one node of the fixed pipeline graph.
type Stage int

const (
	StageRetrieveSources Stage = iota
	StageResearchGate
	StageGenerateBrief
	StageGenerateCurriculum
	StageGenerateSlides
	StageGenerateLab
	StageGenerateTemplates
	StageContentGate
	StageAssemble
	StageDone
)

var stageNames = [...]string{
	StageRetrieveSources:    "retrieve_sources",
	StageResearchGate:       "research_gate",
	StageGenerateBrief:      "generate_brief",
	StageGenerateCurriculum: "generate_curriculum",
	StageGenerateSlides:     "generate_slides",
	StageGenerateLab:        "generate_lab",
	StageGenerateTemplates:  "generate_templates",
	StageContentGate:        "content_gate",
	StageAssemble:           "assemble",
	StageDone:               "done",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// MaxRevisions bounds each gate's retry counter.
const MaxRevisions = 1

// DefaultMaxSteps bounds the run loop. The longest path through the graph
// (both gates retrying once) executes 15 stages.
const DefaultMaxSteps = 16

// Counters are the two independent revision counters.
type Counters struct {
	Research int
	Content  int
}

// Next is the transition table. It is total: every (stage, status,
// counters) triple maps to exactly one next stage, and StageDone and
// unknown stages map to StageDone. status is only consulted at the gates.
func Next(stage Stage, status types.QAStatus, c Counters) (Stage, Counters) {
	switch stage {
	case StageRetrieveSources:
		return StageResearchGate, c
	case StageResearchGate:
		if status == types.StatusFail && c.Research < MaxRevisions {
			c.Research++
			return StageRetrieveSources, c
		}
		return StageGenerateBrief, c
	case StageGenerateBrief:
		return StageGenerateCurriculum, c
	case StageGenerateCurriculum:
		return StageGenerateSlides, c
	case StageGenerateSlides:
		return StageGenerateLab, c
	case StageGenerateLab:
		return StageGenerateTemplates, c
	case StageGenerateTemplates:
		return StageContentGate, c
	case StageContentGate:
		if status == types.StatusFail && c.Content < MaxRevisions {
			c.Content++
			return StageGenerateSlides, c
		}
		return StageAssemble, c
	default:
		return StageDone, c
	}
}
