// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xyshuai/LLM-generated-reference-checker/pkg/types"
)

const crossrefWorkJSON = `{
	"DOI": "10.1234/ABC",
	"title": ["Deep learning basics"],
	"author": [
		{"given": "John", "family": "Smith"},
		{"family": "Jones"},
		{"name": "The DL Consortium"}
	],
	"container-title": ["Journal of AI"],
	"volume": "12",
	"issue": "3",
	"page": "45-60",
	"type": "journal-article",
	"published-print": {"date-parts": [[2020, 6, 1]]},
	"created": {"date-parts": [[2019, 12, 20]]}
}`

func withCrossrefServer(t *testing.T, handler http.HandlerFunc) *Crossref {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	old := crossrefBase
	crossrefBase = ts.URL
	t.Cleanup(func() { crossrefBase = old })

	return &Crossref{
		Client:    ts.Client(),
		Email:     "user@example.com",
		Token:     "cr-token",
		UserAgent: "refcheck-test",
	}
}

func TestCrossrefLookupDOI(t *testing.T) {
	var gotPath, gotToken string
	p := withCrossrefServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("Crossref-Plus-API-Token")
		fmt.Fprintf(w, `{"message": %s}`, crossrefWorkJSON)
	})

	work, err := p.LookupDOI(context.Background(), "10.1234/abc")
	require.NoError(t, err)
	require.NotNil(t, work)

	assert.Equal(t, "/10.1234/abc", gotPath)
	assert.Equal(t, "Bearer cr-token", gotToken)

	assert.Equal(t, types.ProviderCrossref, work.Provider)
	assert.Equal(t, "Deep learning basics", work.Title)
	assert.Equal(t, []string{"John Smith", "Jones", "The DL Consortium"}, work.Authors)
	assert.Equal(t, 2020, work.Year, "print date preferred over deposit date")
	assert.Equal(t, "Journal of AI", work.Venue)
	assert.Equal(t, "12", work.Volume)
	assert.Equal(t, "3", work.Issue)
	assert.Equal(t, "45-60", work.Pages)
	assert.Equal(t, "10.1234/abc", work.DOI, "lowercased")
	assert.Equal(t, types.DocJournalArticle, work.Type)
	assert.False(t, work.Retracted, "Crossref does not report retraction status here")
}

func TestCrossrefLookupDOINotFound(t *testing.T) {
	p := withCrossrefServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	work, err := p.LookupDOI(context.Background(), "10.9999/none")
	require.NoError(t, err)
	assert.Nil(t, work)
}

func TestCrossrefSearchTitle(t *testing.T) {
	var gotQuery, gotRows string
	p := withCrossrefServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query.title")
		gotRows = r.URL.Query().Get("rows")
		fmt.Fprintf(w, `{"message": {"items": [%s]}}`, crossrefWorkJSON)
	})

	works, err := p.SearchTitle(context.Background(), "Deep learning basics")
	require.NoError(t, err)
	require.Len(t, works, 1)

	assert.Equal(t, "Deep learning basics", gotQuery)
	assert.Equal(t, "10", gotRows)
	assert.Equal(t, "Deep learning basics", works[0].Title)
}

func TestCrossrefYearFallback(t *testing.T) {
	t.Run("online date when no print date", func(t *testing.T) {
		w := crossrefWork{PublishedOnline: crossrefDate{DateParts: [][]int{{2021}}}}
		assert.Equal(t, 2021, w.toWork().Year)
	})
	t.Run("created date as last resort", func(t *testing.T) {
		w := crossrefWork{Created: crossrefDate{DateParts: [][]int{{2019, 12, 20}}}}
		assert.Equal(t, 2019, w.toWork().Year)
	})
	t.Run("no dates at all", func(t *testing.T) {
		w := crossrefWork{}
		assert.Zero(t, w.toWork().Year)
	})
}

func TestCrossrefPageNormalization(t *testing.T) {
	tests := []struct {
		page string
		want string
	}{
		{"45-60", "45-60"},
		{"45–60", "45-60"},
		{"45 — 60", "45-60"},
		{"e1017", "e1017"},
		{"", ""},
	}
	for _, tt := range tests {
		w := crossrefWork{Page: tt.page}
		assert.Equal(t, tt.want, w.toWork().Pages, "page %q", tt.page)
	}
}

func TestCrossrefTypeMapping(t *testing.T) {
	tests := []struct {
		apiType string
		want    types.DocumentType
	}{
		{"journal-article", types.DocJournalArticle},
		{"proceedings-article", types.DocConferencePaper},
		{"book-chapter", types.DocBookChapter},
		{"posted-content", types.DocPreprint},
		{"report", types.DocOther},
	}
	for _, tt := range tests {
		t.Run(tt.apiType, func(t *testing.T) {
			w := crossrefWork{Type: tt.apiType}
			assert.Equal(t, tt.want, w.toWork().Type)
		})
	}
}
