// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import "github.com/xyshuai/LLM-generated-reference-checker/pkg/types"

// Classify maps a comparison to a verification status (R4.1-R4.4).
//
// Verified requires a strong title match (>= VerifyThreshold), agreeing
// author surnames with author data present on both sides, and a year
// delta of at most 2 (a delta of exactly 2 still counts as "minor" and
// remains eligible — the inclusive side of the boundary; see
// docs/ARCHITECTURE.md § Matching).
//
// Unverified means no resolved record, or a title similarity below
// AcceptThreshold — including the case where the input carried a DOI
// that resolved to a different work.
//
// Everything else is Ambiguous: a real match was found but at least one
// signal disagrees. The most severe criterion wins ties, so a major year
// mismatch keeps a perfect title match out of Verified but not out of
// Ambiguous.
func Classify(cmp types.Comparison) types.Status {
	if !cmp.Resolved {
		return types.StatusUnverified
	}
	if cmp.TitleScore < AcceptThreshold {
		return types.StatusUnverified
	}

	if cmp.TitleScore >= VerifyThreshold &&
		cmp.AuthorKnown && !cmp.AuthorDiff &&
		(cmp.YearDiff == types.YearSame || cmp.YearDiff == types.YearMinor) {
		return types.StatusVerified
	}

	return types.StatusAmbiguous
}
