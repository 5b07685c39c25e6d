// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/xyshuai/LLM-generated-reference-checker/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style
// Language) format. The field names follow the CSL-JSON/CSL-YAML schema
// so that output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Volume         string    `yaml:"volume,omitempty"`
	Issue          string    `yaml:"issue,omitempty"`
	Page           string    `yaml:"page,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// cslTypeMap translates normalized document types to CSL item types.
var cslTypeMap = map[types.DocumentType]string{
	types.DocJournalArticle:  "article-journal",
	types.DocConferencePaper: "paper-conference",
	types.DocBookChapter:     "chapter",
	types.DocPreprint:        "article",
	types.DocOther:           "article",
}

// FormatCSL writes outcomes as a CSL-YAML bibliography to w. Resolved
// metadata is preferred; extracted fields fill the gaps for unresolved
// citations so the bibliography stays complete.
func FormatCSL(outcomes []types.Outcome, w io.Writer) error {
	items := make([]CSLItem, len(outcomes))
	for i := range outcomes {
		items[i] = toCSLItem(&outcomes[i])
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

func toCSLItem(o *types.Outcome) CSLItem {
	ref := o.Reference
	work := o.Work
	if work == nil {
		work = &types.Work{}
	}

	item := CSLItem{
		ID:             cslID(o),
		Type:           "article",
		Title:          pick(work.Title, ref.Title),
		ContainerTitle: pick(work.Venue, ref.Venue),
		Volume:         pick(work.Volume, ref.Volume),
		Issue:          pick(work.Issue, ref.Issue),
		Page:           pick(work.Pages, ref.Pages),
		DOI:            pick(o.FilledDOI, ref.DOI),
	}

	if t, ok := cslTypeMap[work.Type]; ok {
		item.Type = t
	}

	authors := work.Authors
	if len(authors) == 0 {
		authors = ref.Authors
	}
	for _, a := range authors {
		item.Author = append(item.Author, parseAuthorName(a))
	}

	if year := pickYear(work.Year, ref.Year); year != 0 {
		item.Issued = &CSLDate{DateParts: [][]int{{year}}}
	}

	return item
}

// cslID picks a stable citation key: the provider record ID, the DOI,
// or a positional fallback.
func cslID(o *types.Outcome) string {
	if o.Work != nil && o.Work.SourceID != "" {
		return o.Work.SourceID
	}
	if o.FilledDOI != "" {
		return o.FilledDOI
	}
	return fmt.Sprintf("ref-%d", o.Index+1)
}

func pick(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func pickYear(a, b int) int {
	if a != 0 {
		return a
	}
	return b
}

// parseAuthorName splits a full name string into CSL family/given
// parts. "Family, Given" forms split on the comma; otherwise the last
// space-separated token is the family name. Single-token names use the
// literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	if family, given, ok := strings.Cut(name, ","); ok {
		return CSLName{
			Family: strings.TrimSpace(family),
			Given:  strings.TrimSpace(given),
		}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
