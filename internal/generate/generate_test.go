// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/training-factory/internal/gate"
	"github.com/pdiddy/training-factory/internal/schema"
	"github.com/pdiddy/training-factory/pkg/types"
)

// --- stand-ins ---

// scriptedLLM answers each prompt with the first reply whose key appears
// in the prompt, and records every prompt it saw.
type scriptedLLM struct {
	replies map[string]string
	err     error
	prompts []string
}

func (s *scriptedLLM) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	for key, reply := range s.replies {
		if strings.Contains(prompt, key) {
			return reply, nil
		}
	}
	return "{}", nil
}

func testResearch() types.ResearchResult {
	return types.ResearchResult{
		Sources: []types.Source{
			{ID: "src_001", Title: "Power BI documentation", URL: "https://learn.microsoft.com/power-bi/", Domain: "learn.microsoft.com", AuthorityTier: types.TierA},
			{ID: "src_002", Title: "Power BI guidance", URL: "https://learn.microsoft.com/power-bi/guidance/", Domain: "learn.microsoft.com", AuthorityTier: types.TierA},
			{ID: "src_003", Title: "Community post", URL: "https://medium.com/x", Domain: "medium.com", AuthorityTier: types.TierC},
		},
		ContextPack: "Topic: Power BI fundamentals",
	}
}

var testRequest = types.Request{Topic: "Power BI fundamentals", Audience: "novice"}

// --- ExtractJSONObject ---

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    map[string]any
		wantErr bool
	}{
		{"plain", `{"a":1}`, map[string]any{"a": 1.0}, false},
		{"fenced", "```json\n{\"a\":\"b\"}\n```", map[string]any{"a": "b"}, false},
		{"fenced upper", "```JSON\n{\"a\":true}\n```", map[string]any{"a": true}, false},
		{"prose around", `Here you go: {"a": {"b": 2}} hope this helps`, map[string]any{"a": map[string]any{"b": 2.0}}, false},
		{"no object", "no json here", nil, true},
		{"array", `[1,2]`, nil, true},
		{"broken", `{"a": }`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	_, err := ExtractJSONObject("plain words")
	assert.True(t, errors.Is(err, ErrNoJSONObject))
}

// --- offline ---

func runStages(t *testing.T, g *Generator, req types.Request, res types.ResearchResult) types.Bundle {
	t.Helper()
	ctx := context.Background()
	brief, err := g.Brief(ctx, req, res)
	require.NoError(t, err)
	cur, err := g.Curriculum(ctx, brief, res)
	require.NoError(t, err)
	slides, err := g.Slides(ctx, cur, nil)
	require.NoError(t, err)
	lab, err := g.Lab(ctx, cur, slides)
	require.NoError(t, err)
	tpl, err := g.Templates(ctx, slides, lab)
	require.NoError(t, err)
	return types.Bundle{Request: req, Research: res, Brief: brief, Curriculum: cur, Slides: slides, Lab: lab, Templates: tpl}
}

func TestOffline_PayloadsAreValidAndGrounded(t *testing.T) {
	for _, shape := range []types.Shape{types.ShapeStructured, types.ShapeLegacy} {
		t.Run(string(shape), func(t *testing.T) {
			g := &Generator{LabShape: shape, TemplatesShape: shape}
			b := runStages(t, g, testRequest, testResearch())

			assert.Equal(t, []string{"src_001", "src_002"}, b.Brief.ReferencesUsed)
			assert.Equal(t, []string{"src_001"}, b.Brief.KeyGuidelines[0].Sources)
			assert.Equal(t, "Understand fundamentals of Power BI fundamentals", b.Brief.Goals[0])

			require.Len(t, b.Curriculum.Modules, 2)
			assert.Equal(t, "Power BI fundamentals: Foundations", b.Curriculum.Modules[0].Title)
			assert.Equal(t, "Power BI fundamentals: Hands-on Practice", b.Curriculum.Modules[1].Title)
			assert.Equal(t, []string{"src_001"}, b.Curriculum.Modules[0].Sources)
			assert.Equal(t, []string{"src_002"}, b.Curriculum.Modules[1].Sources)

			require.Len(t, b.Slides.Deck, 3)
			assert.Equal(t, "Lab walkthrough", b.Slides.Deck[2].Title)
			assert.Equal(t, shape, b.Lab.Shape)
			assert.Equal(t, shape, b.Templates.Shape)

			for stage, payload := range map[string]any{
				"brief": b.Brief, "curriculum": b.Curriculum, "slides": b.Slides, "lab": b.Lab, "templates": b.Templates,
			} {
				assert.NoError(t, schema.Validate(stage, payload), stage)
			}

			qa := gate.EvaluateContent(b.Slides, b.Lab, b.Templates, b.Curriculum, b.Research)
			assert.Equal(t, types.StatusPass, qa.Status, "%v", qa.Failed())
		})
	}
}

func TestOffline_NoSourcesUsesPlaceholder(t *testing.T) {
	g := &Generator{}
	b := runStages(t, g, types.Request{}, types.ResearchResult{})
	assert.Equal(t, defaultTopic, b.Brief.Topic)
	assert.Equal(t, defaultAudience, b.Brief.Audience)
	assert.Equal(t, []string{placeholderID}, b.Brief.ReferencesUsed)
	assert.Equal(t, []string{placeholderID}, b.Curriculum.Modules[1].Sources)
	assert.NoError(t, schema.Validate("curriculum", b.Curriculum))
}

func TestOffline_Deterministic(t *testing.T) {
	g := &Generator{}
	a := runStages(t, g, testRequest, testResearch())
	b := runStages(t, g, testRequest, testResearch())
	assert.Equal(t, a, b)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Generator{}).Brief(ctx, testRequest, testResearch())
	assert.ErrorIs(t, err, context.Canceled)
}

// --- live ---

func TestLive_BriefDropsUnknownIDs(t *testing.T) {
	llm := &scriptedLLM{replies: map[string]string{
		"training brief": `{"brief": {"topic": "Power BI", "audience": "novice",
			"goals": ["Build a report"], "constraints": "One hour",
			"references_used": ["src_003", "src_999"],
			"key_guidelines": [
				{"guideline": "Use certified datasets", "rationale": "Trust", "sources": ["src_777"]},
				{"guideline": "", "rationale": "dropped"}
			]}}`,
	}}
	g := &Generator{LLM: llm}
	brief, err := g.Brief(context.Background(), testRequest, testResearch())
	require.NoError(t, err)

	assert.Equal(t, "Power BI", brief.Topic)
	assert.Equal(t, []string{"One hour"}, brief.Constraints)
	assert.Equal(t, []string{"src_003"}, brief.ReferencesUsed)
	require.Len(t, brief.KeyGuidelines, 1)
	assert.Equal(t, []string{"src_003"}, brief.KeyGuidelines[0].Sources)
	assert.Contains(t, llm.prompts[0], "Allowed source ids: src_001, src_002, src_003.")
}

func TestLive_BriefAllInventedFallsBack(t *testing.T) {
	llm := &scriptedLLM{replies: map[string]string{
		"training brief": `{"references_used": ["src_900"], "goals": []}`,
	}}
	brief, err := (&Generator{LLM: llm}).Brief(context.Background(), testRequest, testResearch())
	require.NoError(t, err)
	assert.Equal(t, []string{"src_001", "src_002"}, brief.ReferencesUsed)
	assert.Equal(t, "Power BI fundamentals", brief.Topic)
	assert.Len(t, brief.Goals, 1)
	assert.NoError(t, schema.Validate("brief", brief))
}

func TestLive_CurriculumRenames(t *testing.T) {
	llm := &scriptedLLM{replies: map[string]string{
		"Produce a curriculum": "```json\n" + `{"curriculum": {"units": [
			{"name": "Intro", "duration": 45, "learning_objectives": ["Know it"], "sources": ["src_002", "bogus"]},
			{"name": "Deep dive", "duration": "long"},
			{"duration": 10}
		], "references_used": ["src_002"]}}` + "\n```",
	}}
	brief := types.Brief{Topic: "Power BI fundamentals", Audience: "novice", ReferencesUsed: []string{"src_001"}}
	cur, err := (&Generator{LLM: llm}).Curriculum(context.Background(), brief, testResearch())
	require.NoError(t, err)

	require.Len(t, cur.Modules, 2)
	assert.Equal(t, types.Module{Title: "Intro", DurationMinutes: 45, Objectives: []string{"Know it"}, Sources: []string{"src_002"}}, cur.Modules[0])
	assert.Equal(t, moduleMinutes, cur.Modules[1].DurationMinutes)
	assert.Equal(t, []string{"src_002"}, cur.Modules[1].Sources)
	assert.Equal(t, "Power BI fundamentals", cur.Topic)
	assert.NoError(t, schema.Validate("curriculum", cur))
}

func TestLive_SlidesFeedbackAndRenumbering(t *testing.T) {
	llm := &scriptedLLM{replies: map[string]string{
		"slide deck": `{"slides": [
			{"slide": 7, "heading": "Intro", "points": ["One", "Two"]},
			{"title": "Empty", "bullets": []},
			{"title": "Lab", "bullets": "Do the hands-on lab"}
		]}`,
	}}
	feedback := &types.QAResult{Status: types.StatusFail, Checks: []types.Check{
		{Prompt: gate.CheckSlideText, Answer: types.AnswerYes},
		{Prompt: gate.CheckSlidesReferenceLab, Answer: types.AnswerNo},
	}}
	slides, err := (&Generator{LLM: llm}).Slides(context.Background(), types.Curriculum{}, feedback)
	require.NoError(t, err)

	assert.Equal(t, []types.Slide{
		{Number: 1, Title: "Intro", Bullets: []string{"One", "Two"}},
		{Number: 2, Title: "Lab", Bullets: []string{"Do the hands-on lab"}},
	}, slides.Deck)
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "- "+gate.CheckSlidesReferenceLab)
	assert.NotContains(t, llm.prompts[0], gate.CheckSlideText)
}

func TestLive_SlidesWithoutFeedbackOmitsReview(t *testing.T) {
	llm := &scriptedLLM{}
	_, err := (&Generator{LLM: llm}).Slides(context.Background(), types.Curriculum{}, nil)
	require.NoError(t, err)
	assert.NotContains(t, llm.prompts[0], "quality review")
}

func TestLive_LabShapes(t *testing.T) {
	structuredReply := `{"lab": {"title": "Build", "objective": "Ship a report", "prerequisites": [],
		"steps": ["Open Desktop", {"step": 2, "instruction": "Load data", "expected_output": "Table"}],
		"checkpoints": ["Report published"]}}`
	legacyReply := `{"labs": [{"title": "Legacy lab", "instructions": ["Only step"], "expected_outcome": "Done"}]}`
	cur := types.Curriculum{Modules: []types.Module{{Title: "Intro"}}}

	tests := []struct {
		name  string
		shape types.Shape
		reply string
		check func(t *testing.T, lab types.Lab)
	}{
		{"structured from structured", types.ShapeStructured, structuredReply, func(t *testing.T, lab types.Lab) {
			require.NotNil(t, lab.Structured)
			assert.Equal(t, "Build", lab.Structured.Title)
			assert.Equal(t, []string{"Basic familiarity with the training topic"}, lab.Structured.Prerequisites)
			require.Len(t, lab.Structured.Steps, 3)
			assert.Equal(t, "Table", lab.Structured.Steps[1].ExpectedOutput)
			assert.Equal(t, "Complete remaining task 3", lab.Structured.Steps[2].Instruction)
		}},
		{"structured from legacy", types.ShapeStructured, legacyReply, func(t *testing.T, lab types.Lab) {
			require.NotNil(t, lab.Structured)
			assert.Equal(t, "Legacy lab", lab.Structured.Title)
			assert.Len(t, lab.Structured.Steps, 3)
			assert.Equal(t, []string{"Done", "Lab output reviewed"}, lab.Structured.Checkpoints)
		}},
		{"legacy from legacy", types.ShapeLegacy, legacyReply, func(t *testing.T, lab types.Lab) {
			require.NotNil(t, lab.Legacy)
			assert.Equal(t, "Legacy lab", lab.Legacy.Labs[0].Title)
		}},
		{"legacy from structured", types.ShapeLegacy, structuredReply, func(t *testing.T, lab types.Lab) {
			require.NotNil(t, lab.Legacy)
			assert.Equal(t, []string{"Open Desktop", "Load data", "Complete remaining task 3"}, lab.Legacy.Labs[0].Instructions)
			assert.Equal(t, "Ship a report", lab.Legacy.Labs[0].ExpectedOutcome)
		}},
		{"legacy from garbage", types.ShapeLegacy, `{"foo": 1}`, func(t *testing.T, lab types.Lab) {
			require.NotNil(t, lab.Legacy)
			assert.Equal(t, "Lab: Intro", lab.Legacy.Labs[0].Title)
		}},
		{"structured from garbage", types.ShapeStructured, `{"foo": 1}`, func(t *testing.T, lab types.Lab) {
			require.NotNil(t, lab.Structured)
			assert.Equal(t, "Lab: Intro", lab.Structured.Title)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &scriptedLLM{replies: map[string]string{"Curriculum:": tt.reply}}
			lab, err := (&Generator{LLM: llm, LabShape: tt.shape}).Lab(context.Background(), cur, types.Slides{})
			require.NoError(t, err)
			assert.Equal(t, tt.shape, lab.Shape)
			tt.check(t, lab)
			assert.NoError(t, schema.Validate("lab", lab))
		})
	}
}

func TestLive_TemplatesShapes(t *testing.T) {
	tests := []struct {
		name        string
		shape       types.Shape
		reply       string
		wantReadme  string
		wantRunbook string
	}{
		{"legacy reply to structured", types.ShapeStructured, `{"README.md": "# Readme", "RUNBOOK.md": "# Runbook"}`, "# Readme", "# Runbook"},
		{"structured reply to legacy", types.ShapeLegacy, `{"templates": {"readme_md": {"filename": "README.md", "content": "R"}, "runbook_md": {"content": "B"}}}`, "R", "B"},
		{"partial legacy reply", types.ShapeLegacy, `{"README.md": "Only readme"}`, "Only readme", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &scriptedLLM{replies: map[string]string{"Slides:": tt.reply}}
			tpl, err := (&Generator{LLM: llm, TemplatesShape: tt.shape}).Templates(context.Background(), types.Slides{}, types.Lab{})
			require.NoError(t, err)
			assert.Equal(t, tt.shape, tpl.Shape)
			assert.Equal(t, tt.wantReadme, tpl.Readme())
			if tt.wantRunbook != "" {
				assert.Equal(t, tt.wantRunbook, tpl.Runbook())
			} else {
				assert.Contains(t, tpl.Runbook(), "Walk through slides and labs.")
			}
			assert.NoError(t, schema.Validate("templates", tpl))
		})
	}
}

func TestLive_FailuresFallBackWithWarning(t *testing.T) {
	tests := []struct {
		name    string
		llm     *scriptedLLM
		message string
	}{
		{"model error", &scriptedLLM{err: errors.New("overloaded")}, "generate: model call failed, using fallback"},
		{"prose reply", &scriptedLLM{replies: map[string]string{"brief": "I cannot help with that."}}, "generate: unparseable reply, using fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.WarnLevel)
			g := &Generator{LLM: tt.llm, Logger: zap.New(core)}
			brief, err := g.Brief(context.Background(), testRequest, testResearch())
			require.NoError(t, err)
			assert.Equal(t, fallbackBrief(testRequest, newGrounding(testResearch())), brief)

			entries := logs.FilterMessage(tt.message).All()
			require.Len(t, entries, 1)
			assert.Equal(t, "generate_brief", entries[0].ContextMap()["stage"])
		})
	}
}

func TestNew(t *testing.T) {
	g, err := New(types.GenerationConfig{Offline: true, LabShape: "legacy"}, nil)
	require.NoError(t, err)
	assert.Nil(t, g.LLM)
	assert.Equal(t, types.ShapeLegacy, g.LabShape)
	assert.Equal(t, types.ShapeStructured, g.TemplatesShape)

	_, err = New(types.GenerationConfig{TemplatesShape: "nested"}, nil)
	assert.Error(t, err)

	g, err = New(types.GenerationConfig{AIConfig: types.AIConfig{APIKey: "k"}}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ClaudeLLM{}, g.LLM)
}

func TestNewLLM_MissingKeyWarns(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	assert.Nil(t, NewLLM(types.GenerationConfig{}, zap.New(core)))
	assert.Equal(t, 1, logs.Len())

	core, logs = observer.New(zapcore.WarnLevel)
	assert.Nil(t, NewLLM(types.GenerationConfig{Offline: true}, zap.New(core)))
	assert.Equal(t, 0, logs.Len())
}
