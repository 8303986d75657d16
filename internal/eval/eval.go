// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package eval runs a matrix of topics and run modes through isolated
// pipelines and summarizes each resulting bundle as one CSV row.
package eval

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/training-factory/internal/pipeline"
	"github.com/pdiddy/training-factory/pkg/types"
)

// SummaryFile is the CSV written under the output directory.
const SummaryFile = "summary.csv"

const defaultConcurrency = 4

// EngineFactory builds the pipeline engine for one mode.
type EngineFactory func(cfg types.Config, logger *zap.Logger) (*pipeline.Engine, error)

// Runner executes a matrix. Each case and mode pair gets its own engine,
// so runs share no state.
type Runner struct {
	Config      types.Config
	Concurrency int
	OutDir      string
	NewEngine   EngineFactory
	Logger      *zap.Logger
}

// NewRunner returns a runner that builds engines from cfg.
func NewRunner(cfg types.Config, outDir string, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		Config:      cfg,
		Concurrency: defaultConcurrency,
		OutDir:      outDir,
		NewEngine:   pipeline.NewFromConfig,
		Logger:      logger,
	}
}

// Report is the outcome of a matrix run.
type Report struct {
	Rows        []Row
	SummaryPath string
}

// Run executes every case under every mode, writes one bundle per pair to
// OutDir/<case>/<mode>/bundle.json, and writes the summary CSV. Rows keep
// matrix order regardless of completion order. A pipeline error is recorded
// in the row's notes; only cancellation and output failures abort the run.
func (r *Runner) Run(ctx context.Context, m Matrix) (*Report, error) {
	if err := os.MkdirAll(r.OutDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "eval: creating %s", r.OutDir)
	}
	phase := m.Phase
	if phase == "" {
		phase = DefaultPhase
	}

	rows := make([]Row, len(m.Cases)*len(m.Modes))
	limit := r.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for ci, c := range m.Cases {
		for mi, md := range m.Modes {
			idx := ci*len(m.Modes) + mi
			g.Go(func() error {
				row, err := r.runOne(gCtx, phase, c, md)
				if err != nil {
					return err
				}
				rows[idx] = row
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	path := filepath.Join(r.OutDir, SummaryFile)
	f, err := os.Create(path)
	if err != nil {
		return nil, eris.Wrap(err, "eval: creating summary")
	}
	defer f.Close()
	if err := WriteCSV(f, rows); err != nil {
		return nil, err
	}
	r.Logger.Info("eval: summary written", zap.String("path", path), zap.Int("rows", len(rows)))
	return &Report{Rows: rows, SummaryPath: path}, nil
}

// runOne executes a single case under a single mode.
func (r *Runner) runOne(ctx context.Context, phase string, c Case, md Mode) (Row, error) {
	log := r.Logger.With(zap.String("case", c.ID), zap.String("mode", md.ID))
	row := Row{
		Phase:          phase,
		CaseID:         c.ID,
		ModeID:         md.ID,
		Topic:          c.Topic,
		Audience:       c.Audience,
		Web:            md.Web,
		SearchProvider: md.SearchProvider,
	}

	cfg := r.Config
	cfg.Generation.Offline = md.Offline
	engine, err := r.NewEngine(cfg, log)
	if err != nil {
		return row, eris.Wrapf(err, "eval: building engine for %s/%s", c.ID, md.ID)
	}

	req := types.Request{
		Topic:    c.Topic,
		Audience: c.Audience,
		ResearchOptions: types.ResearchOptions{
			WebEnabled:     md.Web,
			SearchProvider: md.pipelineProvider(),
		},
	}
	res, err := engine.Run(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return row, ctxErr
		}
		log.Warn("eval: run failed", zap.Error(err))
		row.Notes = err.Error()
		return row, nil
	}

	row = summarize(row, res.Bundle, res.ResearchRevisions)
	row.BundlePath = filepath.Join(r.OutDir, c.ID, md.ID, "bundle.json")
	if err := writeBundle(row.BundlePath, res.Bundle); err != nil {
		return row, err
	}
	log.Info("eval: run complete",
		zap.String("research_status", string(row.ResearchQAStatus)),
		zap.String("qa_status", string(row.QAStatus)))
	return row, nil
}

func writeBundle(path string, b types.Bundle) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "eval: creating %s", filepath.Dir(path))
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return eris.Wrap(err, "eval: encoding bundle")
	}
	return eris.Wrapf(os.WriteFile(path, append(data, '\n'), 0o644), "eval: writing %s", path)
}
