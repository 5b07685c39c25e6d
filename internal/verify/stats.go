// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"fmt"
	"io"

	"github.com/xyshuai/LLM-generated-reference-checker/pkg/types"
)

// Stats aggregates a batch of outcomes: counts per status, per
// provider, per document type, DOI fill breakdown, and retractions.
type Stats struct {
	Total int `json:"total" yaml:"total"`

	ByStatus   map[types.Status]int       `json:"by_status" yaml:"by_status"`
	ByProvider map[types.Provider]int     `json:"by_provider" yaml:"by_provider"`
	ByType     map[types.DocumentType]int `json:"by_type" yaml:"by_type"`
	ByDOIFill  map[types.DOIFill]int      `json:"by_doi_fill" yaml:"by_doi_fill"`

	Retracted int `json:"retracted" yaml:"retracted"`
}

// Summarize computes batch statistics from outcomes.
func Summarize(outcomes []types.Outcome) Stats {
	s := Stats{
		Total:      len(outcomes),
		ByStatus:   make(map[types.Status]int),
		ByProvider: make(map[types.Provider]int),
		ByType:     make(map[types.DocumentType]int),
		ByDOIFill:  make(map[types.DOIFill]int),
	}
	for i := range outcomes {
		o := &outcomes[i]
		s.ByStatus[o.Status]++
		s.ByProvider[o.Provider()]++
		if o.Work != nil && o.Work.Type != "" {
			s.ByType[o.Work.Type]++
		}
		s.ByDOIFill[o.DOIFill]++
		if o.Comparison.Retracted {
			s.Retracted++
		}
	}
	return s
}

// FormatStats writes a human-readable statistics summary to w.
func FormatStats(s Stats, w io.Writer) {
	fmt.Fprintf(w, "%d citations: %d verified, %d ambiguous, %d unverified\n",
		s.Total,
		s.ByStatus[types.StatusVerified],
		s.ByStatus[types.StatusAmbiguous],
		s.ByStatus[types.StatusUnverified])

	fmt.Fprintf(w, "sources: %d openalex, %d crossref, %d not found\n",
		s.ByProvider[types.ProviderOpenAlex],
		s.ByProvider[types.ProviderCrossref],
		s.ByProvider[types.ProviderNone])

	fmt.Fprintf(w, "doi: %d correct, %d filled, %d corrected, %d missing\n",
		s.ByDOIFill[types.DOIFillOriginalCorrect],
		s.ByDOIFill[types.DOIFillFromProvider],
		s.ByDOIFill[types.DOIFillWrongCorrected]+s.ByDOIFill[types.DOIFillTitleCorrected],
		s.ByDOIFill[types.DOIFillMissing])

	if s.Retracted > 0 {
		fmt.Fprintf(w, "RETRACTED: %d citation(s) point at retracted works\n", s.Retracted)
	}
}
