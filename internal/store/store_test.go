// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/training-factory/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{Path: filepath.Join(t.TempDir(), "nested", "runs.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testBundle(topic string, status types.QAStatus) types.Bundle {
	lab := types.NewStructuredLab(types.StructuredLab{Title: "Lab", Objective: "Practice"})
	return types.Bundle{
		Request: types.Request{Topic: topic, Audience: "novice"},
		Research: types.ResearchResult{
			QueryPlan: types.QueryPlan{Queries: []string{topic}},
			Sources: []types.Source{
				{ID: "src_001", Title: "A", URL: "https://learn.microsoft.com/a", Domain: "learn.microsoft.com", AuthorityTier: types.TierA},
				{ID: "src_002", Title: "B", URL: "https://example.com/b", Domain: "example.com", AuthorityTier: types.TierD},
			},
			ContextPack: "pack",
		},
		ResearchQA: types.ResearchQAResult{Status: types.StatusPass},
		Curriculum: types.Curriculum{Topic: topic},
		Lab:        lab,
		Templates:  types.NewStructuredTemplates(types.StructuredTemplates{}),
		QA:         types.QAResult{Status: status},
	}
}

// clock returns a Now func that advances one second per call.
func clock() func() time.Time {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return t0.Add(time.Duration(n) * time.Second)
	}
}

func TestSaveAndGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	b := testBundle("Power BI fundamentals", types.StatusPass)
	run, err := s.Save(ctx, b, 1, 0)
	require.NoError(t, err)

	_, err = uuid.Parse(run.ID)
	assert.NoError(t, err)

	got, err := s.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, 1, got.ResearchRevisions)
	assert.Equal(t, 0, got.ContentRevisions)
	assert.True(t, run.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, b.Request, got.Bundle.Request)
	assert.Equal(t, b.Research.Sources, got.Bundle.Research.Sources)
	require.NotNil(t, got.Bundle.Lab.Structured)
	assert.Equal(t, "Lab", got.Bundle.Lab.Structured.Title)
}

func TestGetNotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSaveAssignsDistinctIDs(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	a, err := s.Save(ctx, testBundle("x", types.StatusPass), 0, 0)
	require.NoError(t, err)
	b, err := s.Save(ctx, testBundle("x", types.StatusPass), 0, 0)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestList(t *testing.T) {
	s := testStore(t)
	s.Now = clock()
	ctx := context.Background()

	first, err := s.Save(ctx, testBundle("Power BI fundamentals", types.StatusPass), 0, 0)
	require.NoError(t, err)
	second, err := s.Save(ctx, testBundle("Data governance", types.StatusFail), 1, 1)
	require.NoError(t, err)
	third, err := s.Save(ctx, testBundle("Power BI security", types.StatusPass), 0, 1)
	require.NoError(t, err)

	tests := []struct {
		name string
		opts ListOptions
		want []string
	}{
		{"all newest first", ListOptions{}, []string{third.ID, second.ID, first.ID}},
		{"limit", ListOptions{Limit: 2}, []string{third.ID, second.ID}},
		{"topic filter", ListOptions{Topic: "power bi"}, []string{third.ID, first.ID}},
		{"no match", ListOptions{Topic: "kubernetes"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, tt.opts)
			require.NoError(t, err)
			var ids []string
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	all, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Data governance", all[1].Topic)
	assert.Equal(t, types.StatusFail, all[1].QAStatus)
	assert.Equal(t, types.StatusPass, all[1].ResearchStatus)
	assert.Equal(t, 1, all[1].ContentRevisions)
}

func TestDomainUsage(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := s.Save(ctx, testBundle("x", types.StatusPass), 0, 0)
		require.NoError(t, err)
	}
	extra := testBundle("y", types.StatusPass)
	extra.Research.Sources = extra.Research.Sources[1:]
	_, err := s.Save(ctx, extra, 0, 0)
	require.NoError(t, err)

	got, err := s.DomainUsage(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []DomainCount{
		{Domain: "example.com", Count: 4},
		{Domain: "learn.microsoft.com", Count: 3},
	}, got)

	top, err := s.DomainUsage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []DomainCount{{Domain: "example.com", Count: 4}}, top)
}

func TestListOrdersSubSecondTimes(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{t0, t0.Add(100 * time.Millisecond), t0.Add(time.Second + 5)}
	n := 0
	s.Now = func() time.Time {
		n++
		return times[n-1]
	}

	var ids []string
	for i := 0; i < len(times); i++ {
		run, err := s.Save(ctx, testBundle("x", types.StatusPass), 0, 0)
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}

	got, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.True(t, got[0].CreatedAt.Equal(times[2]))
	assert.True(t, got[2].CreatedAt.Equal(t0))
}

func TestOpenReopensExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(types.StoreConfig{Path: path})
	require.NoError(t, err)
	run, err := s.Save(context.Background(), testBundle("x", types.StatusPass), 0, 0)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(types.StoreConfig{Path: path})
	require.NoError(t, err)
	defer s.Close()
	_, err = s.Get(context.Background(), run.ID)
	assert.NoError(t, err)
}
