// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xyshuai/LLM-generated-reference-checker/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleOutcomes() []types.Outcome {
	return []types.Outcome{
		{
			Index:     0,
			Reference: types.Reference{Raw: "Smith, J. (2020). Deep learning basics. Journal of AI, 12(3), 45-60."},
			Work:      &types.Work{Provider: types.ProviderOpenAlex, Title: "Deep learning basics", DOI: "10.1234/abc"},
			Comparison: types.Comparison{
				Resolved: true, TitleScore: 100, AuthorKnown: true, YearDiff: types.YearSame,
			},
			Status:    types.StatusVerified,
			FilledDOI: "10.1234/abc",
			DOIFill:   types.DOIFillOriginalCorrect,
		},
		{
			Index:      1,
			Reference:  types.Reference{Raw: "A citation nobody can find"},
			Comparison: types.Comparison{YearDiff: types.YearUnknown},
			Status:     types.StatusUnverified,
			DOIFill:    types.DOIFillMissing,
		},
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	started := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	runID, err := s.SaveRun(ctx, started, sampleOutcomes())
	require.NoError(t, err)
	assert.Positive(t, runID)

	runs, err := s.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)
	assert.Equal(t, started, runs[0].StartedAt)
	assert.Equal(t, 2, runs[0].Citations)
	assert.Equal(t, 1, runs[0].Verified)
	assert.Equal(t, 0, runs[0].Ambiguous)
	assert.Equal(t, 1, runs[0].Unverified)

	outcomes, err := s.Outcomes(ctx, runID)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, sampleOutcomes(), outcomes, "outcomes survive the round trip intact")
}

func TestRunsOrderAndLimit(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 3; i++ {
		id, err := s.SaveRun(ctx, time.Now(), sampleOutcomes())
		require.NoError(t, err)
		last = id
	}

	runs, err := s.Runs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, last, runs[0].ID, "most recent run listed first")
}

func TestOutcomesUnknownRun(t *testing.T) {
	s := testStore(t)
	_, err := s.Outcomes(context.Background(), 999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestStatsAggregatesRuns(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := s.SaveRun(ctx, time.Now(), sampleOutcomes())
		require.NoError(t, err)
	}

	totals, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, totals.Runs)
	assert.Equal(t, 4, totals.Citations)
	assert.Equal(t, 2, totals.Verified)
	assert.Equal(t, 2, totals.Unverified)
}

func TestStatsEmptyStore(t *testing.T) {
	s := testStore(t)
	totals, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, totals.Runs)
	assert.Zero(t, totals.Citations)
}
