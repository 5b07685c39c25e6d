// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"strings"

	"github.com/xyshuai/LLM-generated-reference-checker/pkg/types"
)

const (
	// AcceptThreshold is the minimum title similarity for a provider hit
	// to count as a real resolution of the citation (R2.2). Below it the
	// planner falls through to its next query step.
	AcceptThreshold = 60

	// VerifyThreshold is the minimum title similarity for Verified (R4.1).
	VerifyThreshold = 90
)

// Compare derives the per-field difference signals for an extracted
// reference against a resolved work. A nil work yields a Comparison with
// Resolved=false and no diffs claimed.
func Compare(ref types.Reference, work *types.Work) types.Comparison {
	if work == nil {
		return types.Comparison{YearDiff: types.YearUnknown}
	}

	cmp := types.Comparison{
		Resolved:  true,
		Retracted: work.Retracted,
	}

	cmp.TitleScore = TokenSortRatio(ref.Title, work.Title)
	if ref.Title != "" && work.Title != "" {
		cmp.TitleDiff = StandardizeTitle(ref.Title) != StandardizeTitle(work.Title)
	}

	refSurname := Surname(ref.FirstAuthor)
	workSurname := Surname(work.FirstAuthor())
	if refSurname != "" && workSurname != "" {
		cmp.AuthorKnown = true
		cmp.AuthorDiff = refSurname != workSurname
	}

	cmp.YearDiff = types.YearUnknown
	if ref.Year != 0 && work.Year != 0 {
		delta := ref.Year - work.Year
		if delta < 0 {
			delta = -delta
		}
		cmp.YearDelta = delta
		switch {
		case delta == 0:
			cmp.YearDiff = types.YearSame
		case delta <= 2:
			cmp.YearDiff = types.YearMinor
		default:
			cmp.YearDiff = types.YearMajor
		}
	}

	cmp.VenueDiff = venueDiffers(ref.Venue, work.Venue)
	cmp.VolumeDiff = fieldDiffers(ref.Volume, work.Volume)
	cmp.IssueDiff = fieldDiffers(ref.Issue, work.Issue)
	cmp.PagesDiff = fieldDiffers(ref.Pages, work.Pages)

	return cmp
}

// Accepted reports whether a resolved work is a real match for the
// citation: title similarity at or above AcceptThreshold, or an exact
// DOI match when both sides carry one (R2.2). The planner treats an
// unaccepted hit as unresolved and continues to its next step.
func Accepted(ref types.Reference, work *types.Work) bool {
	if work == nil {
		return false
	}
	if ref.DOI != "" && work.DOI != "" && ref.DOI == work.DOI {
		return true
	}
	return TokenSortRatio(ref.Title, work.Title) >= AcceptThreshold
}

// fieldDiffers compares two optional scalar fields case-insensitively
// with whitespace normalized. Absence on either side claims no diff.
func fieldDiffers(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return canon(a) != canon(b)
}

// venueDiffers is fieldDiffers with one extra allowance: abbreviation
// variants where one name is a substring of the other ("J. Mach. Learn.
// Res." inside "Journal of Machine Learning Research" does not apply,
// but "Machine Learning" inside "Machine Learning Journal" does).
func venueDiffers(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	ca, cb := canon(a), canon(b)
	if ca == cb {
		return false
	}
	if strings.Contains(ca, cb) || strings.Contains(cb, ca) {
		return false
	}
	return true
}

func canon(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
