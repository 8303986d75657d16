// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate produces the content payloads of a training bundle:
// brief, curriculum, slides, lab, and templates. Each stage builds a
// deterministic fallback first. With no LLM configured the fallback is the
// result; otherwise the model reply is parsed and normalized onto the
// stage shape, and any failure along the way degrades to the fallback.
package generate

import (
	"context"
	"text/template"

	"go.uber.org/zap"

	"github.com/pdiddy/training-factory/internal/textutil"
	"github.com/pdiddy/training-factory/pkg/types"
)

// Generator implements the five content stages.
type Generator struct {
	LLM            LLM
	LabShape       types.Shape
	TemplatesShape types.Shape
	Logger         *zap.Logger
}

// New builds a generator from configuration. Unknown shape names are
// rejected so a misconfigured run fails before any stage executes.
func New(cfg types.GenerationConfig, logger *zap.Logger) (*Generator, error) {
	labShape, err := types.ParseShape(cfg.LabShape)
	if err != nil {
		return nil, err
	}
	tplShape, err := types.ParseShape(cfg.TemplatesShape)
	if err != nil {
		return nil, err
	}
	return &Generator{
		LLM:            NewLLM(cfg, logger),
		LabShape:       labShape,
		TemplatesShape: tplShape,
		Logger:         logger,
	}, nil
}

func (g *Generator) logger() *zap.Logger {
	if g.Logger == nil {
		return zap.NewNop()
	}
	return g.Logger
}

// live renders the prompt, calls the model, and extracts the JSON object.
// It returns false when offline or when any step fails; failures are
// logged and never surface as errors.
func (g *Generator) live(ctx context.Context, stage string, tmpl *template.Template, data any) (map[string]any, bool) {
	if g.LLM == nil {
		return nil, false
	}
	log := g.logger().With(zap.String("stage", stage))

	prompt, err := render(tmpl, data)
	if err != nil {
		log.Warn("generate: prompt failed, using fallback", zap.Error(err))
		return nil, false
	}
	reply, err := g.LLM.Complete(ctx, prompt)
	if err != nil {
		log.Warn("generate: model call failed, using fallback", zap.Error(err))
		return nil, false
	}
	payload, err := ExtractJSONObject(reply)
	if err != nil {
		log.Warn("generate: unparseable reply, using fallback", zap.Error(err))
		return nil, false
	}
	return payload, true
}

// Brief frames the training from the request and research sources.
func (g *Generator) Brief(ctx context.Context, req types.Request, res types.ResearchResult) (types.Brief, error) {
	if err := ctx.Err(); err != nil {
		return types.Brief{}, err
	}
	gr := newGrounding(res)
	fallback := fallbackBrief(req, gr)

	payload, ok := g.live(ctx, "generate_brief", briefPromptTmpl, struct {
		IDs                          []string
		Topic, Audience, ContextPack string
	}{
		IDs:         gr.first(len(gr.ids)),
		Topic:       fallback.Topic,
		Audience:    fallback.Audience,
		ContextPack: textutil.Truncate(res.ContextPack, contextPackCap),
	})
	if !ok {
		return fallback, nil
	}
	return normalizeBrief(payload, fallback, gr), nil
}

// Curriculum plans the modules, each citing research source ids.
func (g *Generator) Curriculum(ctx context.Context, brief types.Brief, res types.ResearchResult) (types.Curriculum, error) {
	if err := ctx.Err(); err != nil {
		return types.Curriculum{}, err
	}
	gr := newGrounding(res)
	fallback := fallbackCurriculum(brief, gr)

	payload, ok := g.live(ctx, "generate_curriculum", curriculumPromptTmpl, struct {
		IDs     []string
		Sources []types.Source
		Brief   types.Brief
	}{gr.first(len(gr.ids)), res.Sources, brief})
	if !ok {
		return fallback, nil
	}
	return normalizeCurriculum(payload, fallback, gr), nil
}

// Slides builds the deck. On a content-gate retry, feedback carries the
// failed QA result so the model can address the failing checks.
func (g *Generator) Slides(ctx context.Context, curriculum types.Curriculum, feedback *types.QAResult) (types.Slides, error) {
	if err := ctx.Err(); err != nil {
		return types.Slides{}, err
	}
	fallback := fallbackSlides(curriculum)

	var failed []types.Check
	if feedback != nil {
		failed = feedback.Failed()
	}
	payload, ok := g.live(ctx, "generate_slides", slidesPromptTmpl, struct {
		Curriculum types.Curriculum
		Failed     []types.Check
	}{curriculum, failed})
	if !ok {
		return fallback, nil
	}
	return normalizeSlides(payload, fallback), nil
}

// Lab builds the hands-on lab in the configured shape.
func (g *Generator) Lab(ctx context.Context, curriculum types.Curriculum, slides types.Slides) (types.Lab, error) {
	if err := ctx.Err(); err != nil {
		return types.Lab{}, err
	}
	structured := fallbackStructuredLab(curriculum)
	legacy := fallbackLegacyLab(curriculum)

	tmpl := structuredLabPromptTmpl
	if g.LabShape == types.ShapeLegacy {
		tmpl = legacyLabPromptTmpl
	}
	payload, ok := g.live(ctx, "generate_lab", tmpl, struct {
		Curriculum types.Curriculum
		Slides     types.Slides
	}{curriculum, slides})
	if !ok {
		return fallbackLab(curriculum, g.LabShape), nil
	}
	return normalizeLab(payload, g.LabShape, structured, legacy), nil
}

// Templates writes the README and RUNBOOK in the configured shape.
func (g *Generator) Templates(ctx context.Context, slides types.Slides, lab types.Lab) (types.Templates, error) {
	if err := ctx.Err(); err != nil {
		return types.Templates{}, err
	}
	fallback := fallbackLegacyTemplates(slides, lab)

	tmpl := structuredTemplatesPromptTmpl
	if g.TemplatesShape == types.ShapeLegacy {
		tmpl = legacyTemplatesPromptTmpl
	}
	payload, ok := g.live(ctx, "generate_templates", tmpl, struct {
		Slides types.Slides
		Lab    types.Lab
	}{slides, lab})
	if !ok {
		return fallbackTemplates(slides, lab, g.TemplatesShape), nil
	}
	return normalizeTemplates(payload, g.TemplatesShape, fallback), nil
}
