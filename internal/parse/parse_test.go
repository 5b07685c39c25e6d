// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xyshuai/LLM-generated-reference-checker/pkg/types"
)

func TestParseAPA(t *testing.T) {
	raw := "Smith, J. (2020). Deep learning basics. Journal of AI, 12(3), 45-60. doi:10.1234/abc"
	ref := Parse(raw)

	assert.Equal(t, raw, ref.Raw)
	assert.Equal(t, "Deep learning basics", ref.Title)
	assert.Equal(t, "Smith, J.", ref.FirstAuthor)
	assert.Equal(t, 2020, ref.Year)
	assert.Equal(t, "Journal of AI", ref.Venue)
	assert.Equal(t, "12", ref.Volume)
	assert.Equal(t, "3", ref.Issue)
	assert.Equal(t, "45-60", ref.Pages)
	assert.Equal(t, "10.1234/abc", ref.DOI)
}

func TestParseStyles(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want types.Reference
	}{
		{
			name: "IEEE quoted title",
			raw:  `J. Smith and A. Jones, "Deep learning basics," Journal of AI, vol. 12, no. 3, pp. 45-60, 2020.`,
			want: types.Reference{
				Title:       "Deep learning basics",
				FirstAuthor: "J. Smith",
				Year:        2020,
				Venue:       "Journal of AI",
				Volume:      "12",
				Issue:       "3",
				Pages:       "45-60",
			},
		},
		{
			name: "Vancouver",
			raw:  "Smith J, Jones A. Deep learning basics in medicine today. J Artif Intell. 2020;12(3):45-60.",
			want: types.Reference{
				Title:       "Deep learning basics in medicine today",
				FirstAuthor: "Smith J",
				Year:        2020,
				Venue:       "J Artif Intell",
				Volume:      "12",
				Issue:       "3",
				Pages:       "45-60",
			},
		},
		{
			name: "Harvard multiple authors",
			raw:  "Cortes, C., & Vapnik, V. (1995). Support-vector networks. Machine Learning, 20(3), 273-297.",
			want: types.Reference{
				Title:       "Support-vector networks",
				FirstAuthor: "Cortes, C.",
				Year:        1995,
				Venue:       "Machine Learning",
				Volume:      "20",
				Issue:       "3",
				Pages:       "273-297",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			assert.Equal(t, tt.want.Title, got.Title, "title")
			assert.Equal(t, tt.want.FirstAuthor, got.FirstAuthor, "first author")
			assert.Equal(t, tt.want.Year, got.Year, "year")
			assert.Equal(t, tt.want.Venue, got.Venue, "venue")
			assert.Equal(t, tt.want.Volume, got.Volume, "volume")
			assert.Equal(t, tt.want.Issue, got.Issue, "issue")
			assert.Equal(t, tt.want.Pages, got.Pages, "pages")
		})
	}
}

func TestParseAuthorList(t *testing.T) {
	ref := Parse("Cortes, C., & Vapnik, V. (1995). Support-vector networks. Machine Learning, 20(3), 273-297.")
	assert.Equal(t, []string{"Cortes, C.", "Vapnik, V."}, ref.Authors)
}

func TestParseIndexMarkerStripped(t *testing.T) {
	ref := Parse("[7] Smith, J. (2020). Deep learning basics. Journal of AI, 12(3), 45-60.")
	assert.Equal(t, "Smith, J.", ref.FirstAuthor)
	assert.Equal(t, 2020, ref.Year)
}

func TestParseYearSelection(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"parenthetical preferred over bare token", "Smith, J. (2020). A study of 1999 events. Journal, 5(1), 1-10.", 2020},
		{"implausible parenthetical skipped", "Smith, J. (9999). Title here today maybe. Journal, 5(1), 1-10.", 0},
		{"trailing year", `J. Smith, "A title," Journal, vol. 1, no. 2, pp. 3-4, 2018.`, 2018},
		{"no year at all", "Smith, J. Title without any date. Journal.", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			assert.Equal(t, tt.want, got.Year)
		})
	}
}

func TestParseGarbage(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"asdf qwerty zxcv",
		"!!! ??? ...",
		"[12]",
	} {
		ref := Parse(raw)
		assert.Equal(t, raw, ref.Raw)
		assert.Empty(t, ref.Title)
		assert.Empty(t, ref.DOI)
		assert.Zero(t, ref.Year)
	}
}

func TestParseIdempotent(t *testing.T) {
	raw := "Smith, J. (2020). Deep learning basics. Journal of AI, 12(3), 45-60. doi:10.1234/abc"
	first := Parse(raw)
	second := Parse(raw)
	assert.Equal(t, first, second)
}

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10.1234/abc", "10.1234/abc"},
		{"DOI: 10.1234/ABC", "10.1234/abc"},
		{"https://doi.org/10.1234/abc", "10.1234/abc"},
		{"http://dx.doi.org/10.1234/abc.", "10.1234/abc"},
		{"10.1234/abc),", "10.1234/abc"},
		{"not a doi", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDOI(tt.in), "input %q", tt.in)
	}
}

func TestNormalizePages(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"45-60", "45-60"},
		{"45–60", "45-60"},
		{"45 — 60", "45-60"},
		{"45 - 60", "45-60"},
		{"117", "117"},
		{"", ""},
		{"-", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePages(tt.in), "input %q", tt.in)
	}
}
