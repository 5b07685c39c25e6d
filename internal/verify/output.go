// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xyshuai/LLM-generated-reference-checker/pkg/types"
)

// FormatTable writes outcomes as a human-readable table to w.
func FormatTable(outcomes []types.Outcome, w io.Writer) {
	if len(outcomes) == 0 {
		fmt.Fprintln(w, "No citations.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-10s  %-50s  %-4s  %-8s  %-28s  %s\n",
		"#", "Status", "Title", "Year", "Source", "DOI", "Flags")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for i := range outcomes {
		o := &outcomes[i]
		title := o.Reference.Title
		if title == "" {
			title = o.Reference.Raw
		}
		title = truncate(title, 50)
		year := ""
		if o.Reference.Year != 0 {
			year = strconv.Itoa(o.Reference.Year)
		}
		doi := truncate(o.FilledDOI, 28)
		fmt.Fprintf(w, "%-4d  %-10s  %-50s  %-4s  %-8s  %-28s  %s\n",
			o.Index+1, o.Status, title, year, o.Provider(), doi, flags(o))
	}
}

// truncate shortens s to at most max runes, marking the cut with an
// ellipsis. Counting runes keeps multibyte titles from being split
// mid-character.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// flags summarizes an outcome's noteworthy signals in a compact form.
func flags(o *types.Outcome) string {
	var parts []string
	if o.Comparison.Retracted {
		parts = append(parts, "RETRACTED")
	}
	if o.Comparison.AuthorKnown && o.Comparison.AuthorDiff {
		parts = append(parts, "author")
	}
	switch o.Comparison.YearDiff {
	case types.YearMinor, types.YearMajor:
		parts = append(parts, fmt.Sprintf("year%+d", o.Comparison.YearDelta))
	}
	if o.DOIFill == types.DOIFillTitleMismatch {
		parts = append(parts, "doi-mismatch")
	}
	if o.DOIFill == types.DOIFillWrongCorrected || o.DOIFill == types.DOIFillTitleCorrected {
		parts = append(parts, "doi-corrected")
	}
	return strings.Join(parts, ",")
}

// FormatJSON writes outcomes as indented JSON to w.
func FormatJSON(outcomes []types.Outcome, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(outcomes)
}

// csvHeader mirrors the original result frame: extracted fields,
// resolved fields, per-field diff signals, DOI fill, classification.
var csvHeader = []string{
	"index", "raw",
	"title", "first_author", "year", "venue", "volume", "issue", "pages", "doi",
	"resolved_title", "resolved_first_author", "resolved_year", "resolved_venue",
	"resolved_volume", "resolved_issue", "resolved_pages", "resolved_doi",
	"source_id", "provider", "doc_type", "retracted",
	"title_score", "title_diff", "author_diff", "year_diff", "year_delta",
	"venue_diff", "volume_diff", "issue_diff", "pages_diff",
	"filled_doi", "doi_fill_status", "status", "confidence",
}

// FormatCSV writes outcomes as CSV to w.
func FormatCSV(outcomes []types.Outcome, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for i := range outcomes {
		o := &outcomes[i]
		ref := o.Reference
		work := o.Work
		if work == nil {
			work = &types.Work{}
		}
		cmp := o.Comparison

		yearDelta := ""
		if cmp.YearDiff != types.YearUnknown {
			yearDelta = strconv.Itoa(cmp.YearDelta)
		}

		row := []string{
			strconv.Itoa(o.Index), ref.Raw,
			ref.Title, ref.FirstAuthor, intField(ref.Year), ref.Venue,
			ref.Volume, ref.Issue, ref.Pages, ref.DOI,
			work.Title, work.FirstAuthor(), intField(work.Year), work.Venue,
			work.Volume, work.Issue, work.Pages, work.DOI,
			work.SourceID, string(o.Provider()), string(work.Type),
			strconv.FormatBool(cmp.Retracted),
			strconv.Itoa(cmp.TitleScore), strconv.FormatBool(cmp.TitleDiff),
			authorDiffField(cmp), string(cmp.YearDiff), yearDelta,
			strconv.FormatBool(cmp.VenueDiff), strconv.FormatBool(cmp.VolumeDiff),
			strconv.FormatBool(cmp.IssueDiff), strconv.FormatBool(cmp.PagesDiff),
			o.FilledDOI, string(o.DOIFill), string(o.Status), o.Status.Confidence(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func intField(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

// authorDiffField renders the tri-state author signal: empty when no
// surname pair was comparable.
func authorDiffField(cmp types.Comparison) string {
	if !cmp.AuthorKnown {
		return ""
	}
	return strconv.FormatBool(cmp.AuthorDiff)
}
