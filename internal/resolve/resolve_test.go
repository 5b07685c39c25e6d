// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xyshuai/LLM-generated-reference-checker/pkg/types"
)

// fakeProvider is a scriptable Provider for resolver tests.
type fakeProvider struct {
	name       types.Provider
	byDOI      map[string]*types.Work
	byTitle    map[string][]types.Work
	doiErr     error
	titleErr   error
	doiCalls   int
	titleCalls int
}

func (f *fakeProvider) Name() types.Provider { return f.name }

func (f *fakeProvider) LookupDOI(_ context.Context, doi string) (*types.Work, error) {
	f.doiCalls++
	if f.doiErr != nil {
		return nil, f.doiErr
	}
	return f.byDOI[doi], nil
}

func (f *fakeProvider) SearchTitle(_ context.Context, title string) ([]types.Work, error) {
	f.titleCalls++
	if f.titleErr != nil {
		return nil, f.titleErr
	}
	return f.byTitle[title], nil
}

func testWork(provider types.Provider, title, doi string) *types.Work {
	return &types.Work{
		Provider: provider,
		Title:    title,
		Authors:  []string{"John Smith"},
		Year:     2020,
		DOI:      doi,
	}
}

func TestPlan(t *testing.T) {
	t.Run("doi and title", func(t *testing.T) {
		steps := Plan(types.Reference{DOI: "10.1/x", Title: "Deep learning basics"})
		require.Len(t, steps, 4)
		assert.Equal(t, QueryStep{types.ProviderOpenAlex, ByDOI, "10.1/x"}, steps[0])
		assert.Equal(t, QueryStep{types.ProviderCrossref, ByDOI, "10.1/x"}, steps[1])
		assert.Equal(t, QueryStep{types.ProviderOpenAlex, ByTitle, "Deep learning basics"}, steps[2])
		assert.Equal(t, QueryStep{types.ProviderCrossref, ByTitle, "Deep learning basics"}, steps[3])
	})

	t.Run("title only", func(t *testing.T) {
		steps := Plan(types.Reference{Title: "Deep learning basics"})
		require.Len(t, steps, 2)
		assert.Equal(t, ByTitle, steps[0].Kind)
	})

	t.Run("neither yields empty plan", func(t *testing.T) {
		assert.Empty(t, Plan(types.Reference{Raw: "garbage"}))
	})
}

func TestResolveDOIFirst(t *testing.T) {
	ref := types.Reference{Title: "Deep learning basics", DOI: "10.1/x"}
	oa := &fakeProvider{
		name:  types.ProviderOpenAlex,
		byDOI: map[string]*types.Work{"10.1/x": testWork(types.ProviderOpenAlex, "Deep learning basics", "10.1/x")},
	}
	cr := &fakeProvider{name: types.ProviderCrossref}

	res := New(oa, cr).Resolve(context.Background(), ref, &bytes.Buffer{})
	require.NotNil(t, res)
	assert.True(t, res.Accepted)
	assert.True(t, res.DOIHit)
	assert.Equal(t, types.ProviderOpenAlex, res.Work.Provider)
	assert.Equal(t, ByDOI, res.Step.Kind)
	assert.Zero(t, oa.titleCalls, "an accepted DOI hit should stop the plan")
	assert.Zero(t, cr.doiCalls)
}

func TestResolveDOIMismatchFallsThroughToTitle(t *testing.T) {
	ref := types.Reference{Title: "Deep learning basics", DOI: "10.1/x"}
	oa := &fakeProvider{
		name:  types.ProviderOpenAlex,
		byDOI: map[string]*types.Work{"10.1/x": testWork(types.ProviderOpenAlex, "Completely unrelated chemistry paper", "10.1/x")},
		byTitle: map[string][]types.Work{
			"Deep learning basics": {*testWork(types.ProviderOpenAlex, "Deep learning basics", "10.9/y")},
		},
	}
	cr := &fakeProvider{name: types.ProviderCrossref}

	res := New(oa, cr).Resolve(context.Background(), ref, &bytes.Buffer{})
	require.NotNil(t, res)
	assert.True(t, res.Accepted)
	assert.True(t, res.DOIHit, "the rejected DOI hit is still recorded")
	assert.Equal(t, ByTitle, res.Step.Kind)
	assert.Equal(t, "Deep learning basics", res.Work.Title)
}

func TestResolveRejectedCandidateSurfaced(t *testing.T) {
	ref := types.Reference{Title: "Deep learning basics", DOI: "10.1/x"}
	oa := &fakeProvider{
		name:  types.ProviderOpenAlex,
		byDOI: map[string]*types.Work{"10.1/x": testWork(types.ProviderOpenAlex, "Completely unrelated chemistry paper", "10.1/x")},
	}
	cr := &fakeProvider{name: types.ProviderCrossref}

	res := New(oa, cr).Resolve(context.Background(), ref, &bytes.Buffer{})
	require.NotNil(t, res, "the best rejected candidate is returned for display")
	assert.False(t, res.Accepted)
	assert.True(t, res.DOIHit)
	assert.Equal(t, "Completely unrelated chemistry paper", res.Work.Title)
}

func TestResolveProviderOrder(t *testing.T) {
	ref := types.Reference{Title: "Deep learning basics"}
	oa := &fakeProvider{name: types.ProviderOpenAlex}
	cr := &fakeProvider{
		name: types.ProviderCrossref,
		byTitle: map[string][]types.Work{
			"Deep learning basics": {*testWork(types.ProviderCrossref, "Deep learning basics", "")},
		},
	}

	res := New(oa, cr).Resolve(context.Background(), ref, &bytes.Buffer{})
	require.NotNil(t, res)
	assert.Equal(t, types.ProviderCrossref, res.Work.Provider)
	assert.Equal(t, 1, oa.titleCalls, "OpenAlex is asked before Crossref")
}

func TestResolveTransportErrorDegradesToMiss(t *testing.T) {
	ref := types.Reference{Title: "Deep learning basics"}
	oa := &fakeProvider{name: types.ProviderOpenAlex, titleErr: fmt.Errorf("boom")}
	cr := &fakeProvider{
		name: types.ProviderCrossref,
		byTitle: map[string][]types.Work{
			"Deep learning basics": {*testWork(types.ProviderCrossref, "Deep learning basics", "")},
		},
	}

	var warnings bytes.Buffer
	res := New(oa, cr).Resolve(context.Background(), ref, &warnings)
	require.NotNil(t, res)
	assert.Equal(t, types.ProviderCrossref, res.Work.Provider)
	assert.Contains(t, warnings.String(), "boom")
}

func TestResolveNothingFound(t *testing.T) {
	ref := types.Reference{Title: "Deep learning basics", DOI: "10.1/x"}
	oa := &fakeProvider{name: types.ProviderOpenAlex}
	cr := &fakeProvider{name: types.ProviderCrossref}

	res := New(oa, cr).Resolve(context.Background(), ref, &bytes.Buffer{})
	assert.Nil(t, res)
}

func TestResolveCachesWithinRun(t *testing.T) {
	ref := types.Reference{Title: "Deep learning basics"}
	oa := &fakeProvider{
		name: types.ProviderOpenAlex,
		byTitle: map[string][]types.Work{
			"Deep learning basics": {*testWork(types.ProviderOpenAlex, "Deep learning basics", "")},
		},
	}
	cr := &fakeProvider{name: types.ProviderCrossref}

	r := New(oa, cr)
	for i := 0; i < 3; i++ {
		res := r.Resolve(context.Background(), ref, &bytes.Buffer{})
		require.NotNil(t, res)
	}
	assert.Equal(t, 1, oa.titleCalls, "repeated identical lookups hit the cache")
}

func TestResolveCachesMisses(t *testing.T) {
	ref := types.Reference{Title: "Deep learning basics"}
	oa := &fakeProvider{name: types.ProviderOpenAlex}
	cr := &fakeProvider{name: types.ProviderCrossref}

	r := New(oa, cr)
	r.Resolve(context.Background(), ref, &bytes.Buffer{})
	r.Resolve(context.Background(), ref, &bytes.Buffer{})
	assert.Equal(t, 1, oa.titleCalls)
	assert.Equal(t, 1, cr.titleCalls)
}

func TestBestCandidate(t *testing.T) {
	ref := types.Reference{Title: "Deep learning basics", DOI: "10.1/x"}

	t.Run("highest similarity wins", func(t *testing.T) {
		candidates := []types.Work{
			{Title: "Unrelated chemistry paper"},
			{Title: "Deep learning basics"},
			{Title: "Deep learning advanced"},
		}
		best := bestCandidate(ref, candidates)
		require.NotNil(t, best)
		assert.Equal(t, "Deep learning basics", best.Title)
	})

	t.Run("doi match breaks score ties", func(t *testing.T) {
		candidates := []types.Work{
			{Title: "Deep learning basics", DOI: "10.9/other"},
			{Title: "Deep learning basics", DOI: "10.1/x"},
		}
		best := bestCandidate(ref, candidates)
		require.NotNil(t, best)
		assert.Equal(t, "10.1/x", best.DOI)
	})

	t.Run("earlier candidate wins full ties", func(t *testing.T) {
		candidates := []types.Work{
			{Title: "Deep learning basics", DOI: "10.5/a"},
			{Title: "Deep learning basics", DOI: "10.5/b"},
		}
		best := bestCandidate(ref, candidates)
		require.NotNil(t, best)
		assert.Equal(t, "10.5/a", best.DOI)
	})

	t.Run("empty candidate list", func(t *testing.T) {
		assert.Nil(t, bestCandidate(ref, nil))
	})
}
