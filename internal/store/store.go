// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store archives assembled bundles in a SQLite database so runs can
// be listed and re-read after the process exits.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rotisserie/eris"

	"github.com/pdiddy/training-factory/pkg/types"
)

// DefaultPath is used when the configuration leaves store.path empty.
const DefaultPath = "out/runs.db"

const defaultListLimit = 20

// timeLayout is fixed width so created_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned by Get for an unknown run id.
var ErrNotFound = eris.New("store: run not found")

// Run is one archived pipeline outcome.
type Run struct {
	ID                string       `json:"id" yaml:"id"`
	CreatedAt         time.Time    `json:"created_at" yaml:"created_at"`
	ResearchRevisions int          `json:"research_revisions" yaml:"research_revisions"`
	ContentRevisions  int          `json:"content_revisions" yaml:"content_revisions"`
	Bundle            types.Bundle `json:"bundle" yaml:"bundle"`
}

// Summary is the row shape returned by List, without the bundle body.
type Summary struct {
	ID                string         `json:"id" yaml:"id"`
	CreatedAt         time.Time      `json:"created_at" yaml:"created_at"`
	Topic             string         `json:"topic" yaml:"topic"`
	Audience          string         `json:"audience" yaml:"audience"`
	ResearchStatus    types.QAStatus `json:"research_status" yaml:"research_status"`
	QAStatus          types.QAStatus `json:"qa_status" yaml:"qa_status"`
	ResearchRevisions int            `json:"research_revisions" yaml:"research_revisions"`
	ContentRevisions  int            `json:"content_revisions" yaml:"content_revisions"`
}

// ListOptions filters List.
type ListOptions struct {
	// Topic keeps runs whose topic contains this text, case-insensitively.
	Topic string

	// Limit caps the number of rows. Zero uses the default of 20.
	Limit int
}

// Store manages the run archive database.
type Store struct {
	db  *sql.DB
	Now func() time.Time
}

// Open opens or creates the archive at cfg.Path, creating parent
// directories and the schema as needed.
func Open(cfg types.StoreConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "store: creating directory %s", dir)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, eris.Wrap(err, "store: opening database")
	}

	s := &Store{db: db, Now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			topic TEXT NOT NULL,
			audience TEXT NOT NULL,
			research_status TEXT NOT NULL,
			qa_status TEXT NOT NULL,
			research_revisions INTEGER NOT NULL,
			content_revisions INTEGER NOT NULL,
			bundle_json TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
		`CREATE TABLE IF NOT EXISTS run_sources (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			source_id TEXT NOT NULL,
			url TEXT NOT NULL,
			domain TEXT NOT NULL,
			tier TEXT NOT NULL,
			PRIMARY KEY (run_id, source_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_sources_domain ON run_sources(domain)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return eris.Wrap(err, "store: executing schema statement")
		}
	}
	return nil
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Save archives a bundle under a fresh run id and returns the stored run.
func (s *Store) Save(ctx context.Context, b types.Bundle, researchRevisions, contentRevisions int) (Run, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return Run{}, eris.Wrap(err, "store: encoding bundle")
	}
	run := Run{
		ID:                uuid.NewString(),
		CreatedAt:         s.now().UTC(),
		ResearchRevisions: researchRevisions,
		ContentRevisions:  contentRevisions,
		Bundle:            b,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, eris.Wrap(err, "store: beginning transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, topic, audience, research_status, qa_status,
			research_revisions, content_revisions, bundle_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.Format(timeLayout), b.Request.Topic, b.Request.Audience,
		string(b.ResearchQA.Status), string(b.QA.Status),
		researchRevisions, contentRevisions, string(data),
	); err != nil {
		return Run{}, eris.Wrapf(err, "store: inserting run %s", run.ID)
	}

	for _, src := range b.Research.Sources {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_sources (run_id, source_id, url, domain, tier) VALUES (?, ?, ?, ?, ?)`,
			run.ID, src.ID, src.URL, src.Domain, string(src.AuthorityTier),
		); err != nil {
			return Run{}, eris.Wrapf(err, "store: inserting source %s", src.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, eris.Wrap(err, "store: committing run")
	}
	return run, nil
}

// Get loads one run by id. It returns ErrNotFound for an unknown id.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	var (
		run       Run
		createdAt string
		data      string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, research_revisions, content_revisions, bundle_json
		FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &createdAt, &run.ResearchRevisions, &run.ContentRevisions, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, eris.Wrapf(ErrNotFound, "store: id %s", id)
	}
	if err != nil {
		return Run{}, eris.Wrapf(err, "store: reading run %s", id)
	}

	if run.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return Run{}, eris.Wrapf(err, "store: parsing created_at for %s", id)
	}
	if err := json.Unmarshal([]byte(data), &run.Bundle); err != nil {
		return Run{}, eris.Wrapf(err, "store: decoding bundle for %s", id)
	}
	return run, nil
}

// List returns run summaries, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Summary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT id, created_at, topic, audience, research_status, qa_status,
			research_revisions, content_revisions
		FROM runs WHERE 1=1`)
	if opts.Topic != "" {
		qb.WriteString(` AND lower(topic) LIKE ?`)
		args = append(args, "%"+strings.ToLower(opts.Topic)+"%")
	}
	qb.WriteString(` ORDER BY created_at DESC, id LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, eris.Wrap(err, "store: listing runs")
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum       Summary
			createdAt string
			rs, qs    string
		)
		if err := rows.Scan(&sum.ID, &createdAt, &sum.Topic, &sum.Audience, &rs, &qs,
			&sum.ResearchRevisions, &sum.ContentRevisions); err != nil {
			return nil, eris.Wrap(err, "store: scanning run")
		}
		if sum.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, eris.Wrapf(err, "store: parsing created_at for %s", sum.ID)
		}
		sum.ResearchStatus, sum.QAStatus = types.QAStatus(rs), types.QAStatus(qs)
		out = append(out, sum)
	}
	return out, eris.Wrap(rows.Err(), "store: iterating runs")
}

// DomainCount is the number of archived sources from one domain.
type DomainCount struct {
	Domain string `json:"domain" yaml:"domain"`
	Count  int    `json:"count" yaml:"count"`
}

// DomainUsage counts archived sources per domain across all runs, most
// frequent first. Ties sort by domain.
func (s *Store) DomainUsage(ctx context.Context, limit int) ([]DomainCount, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT domain, count(*) AS n FROM run_sources
		GROUP BY domain ORDER BY n DESC, domain LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "store: counting domains")
	}
	defer rows.Close()

	var out []DomainCount
	for rows.Next() {
		var dc DomainCount
		if err := rows.Scan(&dc.Domain, &dc.Count); err != nil {
			return nil, eris.Wrap(err, "store: scanning domain count")
		}
		out = append(out, dc)
	}
	return out, eris.Wrap(rows.Err(), "store: iterating domain counts")
}
