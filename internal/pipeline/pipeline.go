// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the fixed training-bundle graph: retrieval, the
// research gate, the five content stages, the content gate, and assembly.
// Each gate may send the run back once to an earlier stage; after that the
// run always moves forward, so a failing bundle is still assembled and the
// gate outcome is recorded inside it. Payloads that fail schema validation
// abort the run.
package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pdiddy/training-factory/internal/gate"
	"github.com/pdiddy/training-factory/internal/schema"
	"github.com/pdiddy/training-factory/pkg/types"
)

// ErrStepLimit is returned when a run exceeds its step budget.
var ErrStepLimit = eris.New("pipeline: step limit exceeded")

// Retriever produces one research result per call. Each call is a fresh
// attempt; results are never merged.
type Retriever interface {
	Retrieve(ctx context.Context, req types.Request) (types.ResearchResult, error)
}

// ContentGenerator produces the content payloads.
type ContentGenerator interface {
	Brief(ctx context.Context, req types.Request, res types.ResearchResult) (types.Brief, error)
	Curriculum(ctx context.Context, brief types.Brief, res types.ResearchResult) (types.Curriculum, error)
	Slides(ctx context.Context, curriculum types.Curriculum, feedback *types.QAResult) (types.Slides, error)
	Lab(ctx context.Context, curriculum types.Curriculum, slides types.Slides) (types.Lab, error)
	Templates(ctx context.Context, slides types.Slides, lab types.Lab) (types.Templates, error)
}

// Result is the outcome of a completed run.
type Result struct {
	Bundle            types.Bundle
	ResearchRevisions int
	ContentRevisions  int
	Trace             []Stage
}

// Engine wires the capabilities a run needs. Engines hold no run state and
// may execute concurrent runs when their capabilities allow it.
type Engine struct {
	Retriever Retriever
	Generator ContentGenerator
	MaxSteps  int
	Logger    *zap.Logger
}

// New returns an engine with the default step budget.
func New(r Retriever, g ContentGenerator, logger *zap.Logger) *Engine {
	return &Engine{Retriever: r, Generator: g, MaxSteps: DefaultMaxSteps, Logger: logger}
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// Run executes the graph for req. It returns a schema-valid bundle whether
// or not the gates passed, or the first fatal error. A *schema.ValidationError
// anywhere in the chain names the stage that produced invalid data.
func (e *Engine) Run(ctx context.Context, req types.Request) (*Result, error) {
	if err := schema.Validate("request", req); err != nil {
		return nil, eris.Wrap(err, "pipeline: invalid request")
	}
	maxSteps := e.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	log := e.logger().With(zap.String("topic", req.Topic))

	st := &State{Request: req}
	stage := StageRetrieveSources
	for steps := 0; stage != StageDone; steps++ {
		if steps >= maxSteps {
			return nil, eris.Wrapf(ErrStepLimit, "pipeline: stopped at %s after %d steps", stage, steps)
		}
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrapf(err, "pipeline: cancelled before %s", stage)
		}

		d, err := e.step(ctx, stage, st)
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: %s", stage)
		}
		st.apply(d)

		next, counters := Next(stage, d.status, st.Counters)
		if counters != st.Counters {
			log.Warn("pipeline: gate failed, retrying",
				zap.String("stage", stage.String()),
				zap.String("retry", next.String()),
				zap.Int("research_revision", counters.Research),
				zap.Int("content_revision", counters.Content))
		} else {
			log.Debug("pipeline: stage complete",
				zap.String("stage", stage.String()),
				zap.String("status", string(d.status)),
				zap.String("next", next.String()))
		}
		st.Counters = counters
		stage = next
	}

	log.Info("pipeline: bundle assembled",
		zap.String("research_status", string(st.Bundle.ResearchQA.Status)),
		zap.String("qa_status", string(st.Bundle.QA.Status)),
		zap.Int("research_revisions", st.Counters.Research),
		zap.Int("content_revisions", st.Counters.Content))

	return &Result{
		Bundle:            *st.Bundle,
		ResearchRevisions: st.Counters.Research,
		ContentRevisions:  st.Counters.Content,
		Trace:             st.Trace,
	}, nil
}

// step runs one stage against the current state and validates its output.
func (e *Engine) step(ctx context.Context, stage Stage, st *State) (delta, error) {
	d := delta{stage: stage}
	var payload any

	switch stage {
	case StageRetrieveSources:
		res, err := e.Retriever.Retrieve(ctx, st.Request)
		if err != nil {
			return d, err
		}
		d.research, payload = &res, res

	case StageResearchGate:
		if st.Research == nil {
			return d, errMissing(stage, "research")
		}
		qa := gate.EvaluateResearch(*st.Research, st.Request)
		d.researchQA, d.status, payload = &qa, qa.Status, qa

	case StageGenerateBrief:
		if st.Research == nil {
			return d, errMissing(stage, "research")
		}
		b, err := e.Generator.Brief(ctx, st.Request, *st.Research)
		if err != nil {
			return d, err
		}
		d.brief, payload = &b, b

	case StageGenerateCurriculum:
		if st.Brief == nil {
			return d, errMissing(stage, "brief")
		}
		c, err := e.Generator.Curriculum(ctx, *st.Brief, *st.Research)
		if err != nil {
			return d, err
		}
		d.curriculum, payload = &c, c

	case StageGenerateSlides:
		if st.Curriculum == nil {
			return d, errMissing(stage, "curriculum")
		}
		var feedback *types.QAResult
		if st.Counters.Content > 0 {
			feedback = st.QA
		}
		s, err := e.Generator.Slides(ctx, *st.Curriculum, feedback)
		if err != nil {
			return d, err
		}
		d.slides, payload = &s, s

	case StageGenerateLab:
		if st.Slides == nil {
			return d, errMissing(stage, "slides")
		}
		l, err := e.Generator.Lab(ctx, *st.Curriculum, *st.Slides)
		if err != nil {
			return d, err
		}
		d.lab, payload = &l, l

	case StageGenerateTemplates:
		if st.Lab == nil {
			return d, errMissing(stage, "lab")
		}
		t, err := e.Generator.Templates(ctx, *st.Slides, *st.Lab)
		if err != nil {
			return d, err
		}
		d.templates, payload = &t, t

	case StageContentGate:
		if st.Templates == nil {
			return d, errMissing(stage, "templates")
		}
		qa := gate.EvaluateContent(*st.Slides, *st.Lab, *st.Templates, *st.Curriculum, *st.Research)
		d.qa, d.status, payload = &qa, qa.Status, qa

	case StageAssemble:
		b, err := st.snapshot()
		if err != nil {
			return d, err
		}
		d.bundle, payload = &b, b

	default:
		return d, eris.Errorf("pipeline: no handler for stage %s", stage)
	}

	if err := schema.Validate(stage.String(), payload); err != nil {
		return d, err
	}
	return d, nil
}
