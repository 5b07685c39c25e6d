// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve reconciles extracted citations against external
// metadata providers. The DOI-first, title-fallback, OpenAlex-then-
// Crossref branching lives in one place: Plan builds the ordered query
// steps and Resolver.Resolve walks them with a single acceptance
// predicate.
// Implements: prd002-resolution (R1-R5);
//
//	docs/ARCHITECTURE.md § Resolution.
package resolve

import (
	"context"
	"fmt"
	"io"

	"github.com/xyshuai/LLM-generated-reference-checker/internal/match"
	"github.com/xyshuai/LLM-generated-reference-checker/pkg/types"
)

// QueryKind selects the provider capability a step exercises.
type QueryKind string

const (
	ByDOI   QueryKind = "doi"
	ByTitle QueryKind = "title"
)

// QueryStep is one planned provider lookup.
type QueryStep struct {
	Provider types.Provider
	Kind     QueryKind
	Value    string
}

// Provider is the adapter contract for one metadata backend. LookupDOI
// and SearchTitle return (nil, nil) and (empty, nil) respectively for
// ordinary not-found results; an error means a transport-level failure,
// which the resolver degrades to a miss.
type Provider interface {
	Name() types.Provider
	LookupDOI(ctx context.Context, doi string) (*types.Work, error)
	SearchTitle(ctx context.Context, title string) ([]types.Work, error)
}

// Plan returns the ordered query steps for a citation: DOI lookups
// first (OpenAlex, then Crossref), then title searches in the same
// provider order. A citation with neither DOI nor title gets an empty
// plan and proceeds straight to Unverified (R1.3).
func Plan(ref types.Reference) []QueryStep {
	var steps []QueryStep
	if ref.DOI != "" {
		steps = append(steps,
			QueryStep{types.ProviderOpenAlex, ByDOI, ref.DOI},
			QueryStep{types.ProviderCrossref, ByDOI, ref.DOI},
		)
	}
	if ref.Title != "" {
		steps = append(steps,
			QueryStep{types.ProviderOpenAlex, ByTitle, ref.Title},
			QueryStep{types.ProviderCrossref, ByTitle, ref.Title},
		)
	}
	return steps
}

// Resolution is the outcome of walking a citation's query plan.
type Resolution struct {
	// Work is the candidate record. Never nil inside a non-nil Resolution.
	Work *types.Work

	// Step is the query step that produced it.
	Step QueryStep

	// Accepted reports whether Work passed the acceptance rule. When
	// false, Work is the best rejected candidate: it is surfaced so the
	// caller can show what the DOI or title actually points to, but the
	// citation classifies as Unverified.
	Accepted bool

	// DOIHit reports whether any DOI lookup in the plan returned a
	// record, accepted or not. DOI fill statuses depend on this even
	// when the final record came from a title search.
	DOIHit bool
}

// Resolver walks query plans against a fixed set of providers, caching
// results within one run so repeated DOIs or titles in a batch cost one
// lookup each.
type Resolver struct {
	providers map[types.Provider]Provider
	cache     *cache
}

// New creates a Resolver over the given providers. Provider order in
// the plan is fixed by Plan; the resolver only needs lookup by name.
func New(providers ...Provider) *Resolver {
	m := make(map[types.Provider]Provider, len(providers))
	for _, p := range providers {
		m[p.Name()] = p
	}
	return &Resolver{providers: m, cache: newCache()}
}

// Resolve walks the citation's query plan and returns the first
// accepted resolution. When every step misses or is rejected, it
// returns the best rejected candidate (Accepted=false), or nil when no
// provider returned anything at all. Transport failures are reported as
// warnings on w and treated as misses — a single citation's provider
// trouble never aborts the batch (R3.2).
//
// Acceptance: a DOI lookup is accepted when the extracted title agrees
// (similarity >= match.AcceptThreshold) or when the citation carries no
// title to check against; a title-search hit is accepted per the shared
// rule in match.Accepted. A DOI hit whose title disagrees falls through
// to title search (R2.2).
func (r *Resolver) Resolve(ctx context.Context, ref types.Reference, w io.Writer) *Resolution {
	var fallback *Resolution
	fallbackScore := -1
	doiHit := false

	for _, step := range Plan(ref) {
		provider, ok := r.providers[step.Provider]
		if !ok {
			continue
		}

		work, err := r.lookup(ctx, provider, step, ref)
		if err != nil {
			fmt.Fprintf(w, "warning: %s %s lookup failed: %v\n", step.Provider, step.Kind, err)
			continue
		}
		if work == nil {
			continue
		}
		if step.Kind == ByDOI {
			doiHit = true
		}

		var accepted bool
		if step.Kind == ByDOI {
			accepted = ref.Title == "" ||
				match.TokenSortRatio(ref.Title, work.Title) >= match.AcceptThreshold
		} else {
			accepted = match.Accepted(ref, work)
		}
		if accepted {
			return &Resolution{Work: work, Step: step, Accepted: true, DOIHit: doiHit}
		}

		if score := match.TokenSortRatio(ref.Title, work.Title); score > fallbackScore {
			fallback = &Resolution{Work: work, Step: step}
			fallbackScore = score
		}
	}
	if fallback != nil {
		fallback.DOIHit = doiHit
	}
	return fallback
}

// lookup executes one step through the per-run cache. Both hits and
// ordinary misses are cached; transport failures are not, so a
// transient error does not poison later citations.
func (r *Resolver) lookup(ctx context.Context, provider Provider, step QueryStep, ref types.Reference) (*types.Work, error) {
	if work, ok := r.cache.get(step); ok {
		return work, nil
	}

	var work *types.Work
	switch step.Kind {
	case ByDOI:
		var err error
		work, err = provider.LookupDOI(ctx, step.Value)
		if err != nil {
			return nil, err
		}
	case ByTitle:
		candidates, err := provider.SearchTitle(ctx, step.Value)
		if err != nil {
			return nil, err
		}
		work = bestCandidate(ref, candidates)
	default:
		return nil, fmt.Errorf("unknown query kind %q", step.Kind)
	}

	r.cache.put(step, work)
	return work, nil
}

// bestCandidate picks the best title-search candidate: highest title
// similarity, with an exact DOI match against the citation breaking
// ties, then provider relevance order (the scan keeps the earlier
// candidate unless a later one is strictly better).
func bestCandidate(ref types.Reference, candidates []types.Work) *types.Work {
	var best *types.Work
	bestScore := -1
	bestDOIMatch := false

	for i := range candidates {
		c := &candidates[i]
		score := match.TokenSortRatio(ref.Title, c.Title)
		doiMatch := ref.DOI != "" && c.DOI == ref.DOI
		if score > bestScore || (score == bestScore && doiMatch && !bestDOIMatch) {
			best = c
			bestScore = score
			bestDOIMatch = doiMatch
		}
	}
	return best
}
