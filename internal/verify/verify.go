// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verify runs the per-citation pipeline end to end: extract,
// resolve, compare, classify, assemble. Each citation is processed
// sequentially; the batch fans out over a bounded worker pool with
// results indexed by input position.
// Implements: prd004-verification (R1-R4);
//
//	docs/ARCHITECTURE.md § Verification.
package verify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/xyshuai/LLM-generated-reference-checker/internal/match"
	"github.com/xyshuai/LLM-generated-reference-checker/internal/parse"
	"github.com/xyshuai/LLM-generated-reference-checker/internal/resolve"
	"github.com/xyshuai/LLM-generated-reference-checker/pkg/types"
)

// Checker verifies citations against a resolver. The zero Concurrency
// value means sequential processing.
type Checker struct {
	Resolver    *resolve.Resolver
	Concurrency int
}

// New creates a Checker.
func New(resolver *resolve.Resolver, cfg types.VerifyConfig) *Checker {
	return &Checker{Resolver: resolver, Concurrency: cfg.Concurrency}
}

// VerifyOne runs the full pipeline for a single raw citation. It never
// returns an error: extraction gaps and resolution misses are outcomes,
// not failures (R1.1). Provider warnings go to w.
func (c *Checker) VerifyOne(ctx context.Context, index int, raw string, w io.Writer) types.Outcome {
	ref := parse.Parse(raw)

	res := c.Resolver.Resolve(ctx, ref, w)

	var work *types.Work
	if res != nil {
		work = res.Work
	}

	cmp := match.Compare(ref, work)
	status := match.Classify(cmp)
	if res != nil && !res.Accepted {
		// A rejected candidate is shown but never counts as resolved.
		status = types.StatusUnverified
	}

	filledDOI, fill := doiFill(ref, res)

	return types.Outcome{
		Index:      index,
		Reference:  ref,
		Work:       work,
		Comparison: cmp,
		Status:     status,
		FilledDOI:  filledDOI,
		DOIFill:    fill,
	}
}

// VerifyBatch verifies raw citations over a bounded worker pool and
// returns one Outcome per input, in input order (R4.1, R4.2). When the
// context is cancelled the pool stops picking up work, but outcomes
// already completed are retained in the returned slice; unprocessed
// positions come back as Unverified outcomes carrying only the raw
// string (R4.3). Progress and provider warnings go to w.
func (c *Checker) VerifyBatch(ctx context.Context, raws []string, w io.Writer) []types.Outcome {
	outcomes := make([]types.Outcome, len(raws))
	for i, raw := range raws {
		// Pre-fill so a cancelled slot still identifies its input.
		outcomes[i] = types.Outcome{
			Index:     i,
			Reference: types.Reference{Raw: raw},
			Status:    types.StatusUnverified,
			DOIFill:   types.DOIFillUnverified,
		}
	}

	workers := c.Concurrency
	if workers < 1 {
		workers = 1
	}
	if workers > len(raws) {
		workers = len(raws)
	}

	indexes := make(chan int)
	var wg sync.WaitGroup

	var mu sync.Mutex // guards w
	progress := func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, format, args...)
	}

	for n := 0; n < workers; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i] = c.VerifyOne(ctx, i, raws[i], writerFunc(progress))
				progress("processed %d/%d\n", i+1, len(raws))
			}
		}()
	}

feed:
	for i := range raws {
		select {
		case <-ctx.Done():
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()

	return outcomes
}

// writerFunc adapts a printf-style progress function to io.Writer so
// VerifyOne's warnings share the same lock as progress lines.
type writerFunc func(format string, args ...any)

func (f writerFunc) Write(p []byte) (int, error) {
	f("%s", string(p))
	return len(p), nil
}

// doiFill decides the authoritative DOI for a citation and labels how
// it was established. The decision table follows from whether the
// citation carried a DOI, whether a DOI lookup hit, whether the
// resolution was accepted, and how the final record was matched. An
// accepted DOI hit whose record carries the cited DOI is always
// original_correct; the mismatch label is reserved for a DOI that
// resolved to a work the citation does not match.
func doiFill(ref types.Reference, res *resolve.Resolution) (string, types.DOIFill) {
	if res == nil {
		if ref.DOI != "" {
			return "", types.DOIFillUnverified
		}
		return "", types.DOIFillMissing
	}

	work := res.Work

	if !res.Accepted {
		if res.DOIHit {
			// The cited DOI exists but points at a different work.
			return "", types.DOIFillTitleMismatch
		}
		if ref.DOI != "" {
			return "", types.DOIFillUnverified
		}
		return "", types.DOIFillMissing
	}

	if ref.DOI == "" {
		if work.DOI != "" {
			return work.DOI, types.DOIFillFromProvider
		}
		return "", types.DOIFillMissing
	}

	switch {
	case work.DOI == ref.DOI:
		return ref.DOI, types.DOIFillOriginalCorrect
	case res.Step.Kind == resolve.ByTitle && work.DOI != "":
		return work.DOI, types.DOIFillTitleCorrected
	case work.DOI != "":
		return work.DOI, types.DOIFillWrongCorrected
	default:
		return ref.DOI, types.DOIFillOriginalUnchecked
	}
}
