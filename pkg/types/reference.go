// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the refcheck pipeline.
// Implements: prd001-parsing (Reference);
//
//	prd002-resolution (Work, Provider, DocumentType);
//	prd003-matching (Comparison, YearDiff, Status);
//	prd004-verification (Outcome, DOIFill).
//
// See docs/ARCHITECTURE.md § Pipeline Interface, § Data Structures.
package types

// Provider identifies the metadata source that produced a resolved record.
type Provider string

const (
	ProviderOpenAlex Provider = "openalex"
	ProviderCrossref Provider = "crossref"

	// ProviderNone marks a citation for which no provider returned a
	// usable candidate. It is a valid outcome, not an error.
	ProviderNone Provider = "none"
)

// DocumentType is the normalized publication type of a resolved work.
type DocumentType string

const (
	DocJournalArticle  DocumentType = "journal-article"
	DocConferencePaper DocumentType = "conference-paper"
	DocBookChapter     DocumentType = "book-chapter"
	DocPreprint        DocumentType = "preprint"
	DocOther           DocumentType = "other"
)

// Reference is the structured record extracted from one raw citation
// string. Every field except Raw is optional: the zero value ("" or 0)
// means the extractor found no textual signal for it. Comparison code
// must check presence before comparing; two absent fields never count
// as either a match or a mismatch.
type Reference struct {
	// Raw is the citation string exactly as supplied, one per line.
	Raw string `json:"raw" yaml:"raw"`

	// Title is the extracted work title, or "" if none was located.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// FirstAuthor is the leading author segment as written in the
	// citation (surname extraction happens at comparison time).
	FirstAuthor string `json:"first_author,omitempty" yaml:"first_author,omitempty"`

	// Authors lists all extracted author entries in citation order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Year is the publication year, 0 if unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Venue is the journal, conference, or book name.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	Volume string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue  string `json:"issue,omitempty" yaml:"issue,omitempty"`

	// Pages is the page range normalized to "start-end" with an ASCII
	// hyphen, or a single page number.
	Pages string `json:"pages,omitempty" yaml:"pages,omitempty"`

	// DOI is lowercase with any resolver URL or "doi:" prefix stripped.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`
}

// Work is a bibliographic record returned by a metadata provider. It is
// immutable once returned; field presence conventions match Reference.
type Work struct {
	// SourceID is the provider-specific identifier (OpenAlex work ID or
	// the Crossref DOI).
	SourceID string `json:"source_id,omitempty" yaml:"source_id,omitempty"`

	// Provider identifies which backend produced this record.
	Provider Provider `json:"provider" yaml:"provider"`

	Title   string   `json:"title,omitempty" yaml:"title,omitempty"`
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Year    int      `json:"year,omitempty" yaml:"year,omitempty"`
	Venue   string   `json:"venue,omitempty" yaml:"venue,omitempty"`
	Volume  string   `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue   string   `json:"issue,omitempty" yaml:"issue,omitempty"`
	Pages   string   `json:"pages,omitempty" yaml:"pages,omitempty"`
	DOI     string   `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Type is the normalized document type.
	Type DocumentType `json:"type,omitempty" yaml:"type,omitempty"`

	// Retracted is true when the provider reports a retraction. False
	// when the provider does not report retraction status.
	Retracted bool `json:"retracted" yaml:"retracted"`
}

// FirstAuthor returns the first listed author, or "" if none.
func (w *Work) FirstAuthor() string {
	if len(w.Authors) == 0 {
		return ""
	}
	return w.Authors[0]
}

// YearDiff grades the absolute year delta between an extracted and a
// resolved record.
type YearDiff string

const (
	// YearSame means both years are present and equal.
	YearSame YearDiff = "same"

	// YearMinor means 0 < delta <= 2.
	YearMinor YearDiff = "minor"

	// YearMajor means delta > 2.
	YearMajor YearDiff = "major"

	// YearUnknown means at least one year is absent; no diff is claimed.
	YearUnknown YearDiff = "unknown"
)

// Comparison holds the per-field similarity and difference signals for
// one (Reference, Work) pair. It is derived purely from its inputs and
// can be recomputed deterministically.
type Comparison struct {
	// Resolved is true when a provider record was found for the citation.
	Resolved bool `json:"resolved" yaml:"resolved"`

	// TitleScore is the token-sort title similarity in [0,100];
	// 0 when either title is absent.
	TitleScore int  `json:"title_score" yaml:"title_score"`
	TitleDiff  bool `json:"title_diff" yaml:"title_diff"`

	// AuthorKnown is true when both sides have a determinable first
	// author surname. AuthorDiff is meaningful only when AuthorKnown.
	AuthorKnown bool `json:"author_known" yaml:"author_known"`
	AuthorDiff  bool `json:"author_diff" yaml:"author_diff"`

	YearDiff YearDiff `json:"year_diff" yaml:"year_diff"`

	// YearDelta is the absolute year difference; valid only when
	// YearDiff is not YearUnknown.
	YearDelta int `json:"year_delta,omitempty" yaml:"year_delta,omitempty"`

	VenueDiff  bool `json:"venue_diff" yaml:"venue_diff"`
	VolumeDiff bool `json:"volume_diff" yaml:"volume_diff"`
	IssueDiff  bool `json:"issue_diff" yaml:"issue_diff"`
	PagesDiff  bool `json:"pages_diff" yaml:"pages_diff"`

	// Retracted is copied verbatim from the resolved record; false when
	// no record was resolved (unknown, not asserted).
	Retracted bool `json:"retracted" yaml:"retracted"`
}

// Status is the verification state of one citation.
type Status string

const (
	StatusVerified   Status = "verified"
	StatusAmbiguous  Status = "ambiguous"
	StatusUnverified Status = "unverified"
)

// Confidence returns the confidence label paired with a status.
func (s Status) Confidence() string {
	switch s {
	case StatusVerified:
		return "high"
	case StatusAmbiguous:
		return "medium"
	default:
		return "low"
	}
}

// DOIFill describes what happened to the citation's DOI during
// verification: kept, filled in from the provider, corrected, or left
// unresolved.
type DOIFill string

const (
	DOIFillOriginalCorrect   DOIFill = "original_correct"
	DOIFillFromProvider      DOIFill = "filled_from_database"
	DOIFillTitleCorrected    DOIFill = "title_matched_doi_corrected"
	DOIFillWrongCorrected    DOIFill = "original_wrong_corrected"
	DOIFillTitleMismatch     DOIFill = "doi_title_mismatch"
	DOIFillOriginalUnchecked DOIFill = "original_unverified"
	DOIFillUnverified        DOIFill = "unverified"
	DOIFillMissing           DOIFill = "missing"
)

// Outcome is the assembled result for one input citation: extracted
// fields, the resolved record (nil when no match), diff signals, and
// the classification. One Outcome per input, in input order.
type Outcome struct {
	// Index is the citation's zero-based position in the batch.
	Index int `json:"index" yaml:"index"`

	Reference  Reference  `json:"reference" yaml:"reference"`
	Work       *Work      `json:"work,omitempty" yaml:"work,omitempty"`
	Comparison Comparison `json:"comparison" yaml:"comparison"`
	Status     Status     `json:"status" yaml:"status"`

	// FilledDOI is the DOI refcheck considers authoritative for this
	// citation, "" when none could be established.
	FilledDOI string  `json:"filled_doi,omitempty" yaml:"filled_doi,omitempty"`
	DOIFill   DOIFill `json:"doi_fill" yaml:"doi_fill"`
}

// Provider returns the provider that resolved this outcome, or
// ProviderNone when no record was found.
func (o *Outcome) Provider() Provider {
	if o.Work == nil {
		return ProviderNone
	}
	return o.Work.Provider
}
