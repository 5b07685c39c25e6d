// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/xyshuai/LLM-generated-reference-checker/internal/httputil"
	"github.com/xyshuai/LLM-generated-reference-checker/internal/parse"
	"github.com/xyshuai/LLM-generated-reference-checker/pkg/types"
)

// crossrefBase is the Crossref REST works endpoint. Declared as a var so
// tests can substitute an httptest server.
var crossrefBase = "https://api.crossref.org/works"

// Crossref queries the Crossref REST API (R2.1). Crossref serves as the
// secondary provider after OpenAlex in every query plan.
type Crossref struct {
	Client *http.Client

	// Email joins the Crossref polite pool via the mailto parameter.
	Email string

	// Token, when set, is sent as Crossref-Plus-API-Token for the Plus
	// service tier.
	Token string

	// MaxResults bounds title-search candidates (default 10).
	MaxResults int

	// Limiter throttles outbound requests; nil means unthrottled.
	Limiter *rate.Limiter

	UserAgent string
}

// NewCrossref builds a Crossref provider from resolution settings.
func NewCrossref(client *http.Client, cfg types.ResolveConfig) *Crossref {
	return &Crossref{
		Client:     client,
		Email:      cfg.Email,
		Token:      cfg.CrossrefToken,
		MaxResults: cfg.MaxCandidates,
		Limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		UserAgent:  cfg.UserAgent,
	}
}

// Name returns the provider identifier.
func (p *Crossref) Name() types.Provider { return types.ProviderCrossref }

// LookupDOI fetches a single work by DOI. A 404 is an ordinary miss and
// returns (nil, nil).
func (p *Crossref) LookupDOI(ctx context.Context, doi string) (*types.Work, error) {
	reqURL := crossrefBase + "/" + url.PathEscape(doi)
	if p.Email != "" {
		reqURL += "?mailto=" + url.QueryEscape(p.Email)
	}

	var resp crossrefSingleResponse
	found, err := p.getJSON(ctx, reqURL, &resp)
	if err != nil || !found {
		return nil, err
	}
	w := resp.Message.toWork()
	return &w, nil
}

// SearchTitle runs a query.title search and returns the candidates in
// provider relevance order.
func (p *Crossref) SearchTitle(ctx context.Context, title string) ([]types.Work, error) {
	maxResults := p.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}
	if maxResults > 50 {
		maxResults = 50
	}

	params := url.Values{
		"query.title": {title},
		"rows":        {fmt.Sprintf("%d", maxResults)},
	}
	if p.Email != "" {
		params.Set("mailto", p.Email)
	}

	var resp crossrefListResponse
	found, err := p.getJSON(ctx, crossrefBase+"?"+params.Encode(), &resp)
	if err != nil || !found {
		return nil, err
	}

	works := make([]types.Work, 0, len(resp.Message.Items))
	for _, item := range resp.Message.Items {
		works = append(works, item.toWork())
	}
	return works, nil
}

// getJSON performs a GET with rate limiting and retry, decoding the
// body into v. The found return is false for a 404.
func (p *Crossref) getJSON(ctx context.Context, reqURL string, v any) (found bool, err error) {
	if p.Limiter != nil {
		if err := p.Limiter.Wait(ctx); err != nil {
			return false, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.UserAgent)
	if p.Token != "" {
		req.Header.Set("Crossref-Plus-API-Token", "Bearer "+p.Token)
	}

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return false, fmt.Errorf("Crossref API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("Crossref API returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return false, fmt.Errorf("parsing Crossref response: %w", err)
	}
	return true, nil
}

// Crossref API JSON structures.
type crossrefSingleResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefListResponse struct {
	Message struct {
		Items []crossrefWork `json:"items"`
	} `json:"message"`
}

type crossrefWork struct {
	DOI             string           `json:"DOI"`
	Title           []string         `json:"title"`
	Author          []crossrefAuthor `json:"author"`
	ContainerTitle  []string         `json:"container-title"`
	Volume          string           `json:"volume"`
	Issue           string           `json:"issue"`
	Page            string           `json:"page"`
	Type            string           `json:"type"`
	PublishedPrint  crossrefDate     `json:"published-print"`
	PublishedOnline crossrefDate     `json:"published-online"`
	Created         crossrefDate     `json:"created"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

func (d crossrefDate) year() int {
	if len(d.DateParts) > 0 && len(d.DateParts[0]) > 0 {
		return d.DateParts[0][0]
	}
	return 0
}

// crossrefTypeMap translates Crossref work types to the normalized
// document type enum.
var crossrefTypeMap = map[string]types.DocumentType{
	"journal-article":     types.DocJournalArticle,
	"proceedings-article": types.DocConferencePaper,
	"book-chapter":        types.DocBookChapter,
	"posted-content":      types.DocPreprint,
}

func (w *crossrefWork) toWork() types.Work {
	out := types.Work{
		SourceID: w.DOI,
		Provider: types.ProviderCrossref,
		DOI:      strings.ToLower(w.DOI),
		Volume:   w.Volume,
		Issue:    w.Issue,

		// Crossref page ranges arrive with en dashes; keep "start-end".
		Pages: parse.NormalizePages(w.Page),
	}

	if len(w.Title) > 0 {
		out.Title = w.Title[0]
	}
	if len(w.ContainerTitle) > 0 {
		out.Venue = w.ContainerTitle[0]
	}

	for _, a := range w.Author {
		switch {
		case a.Family != "" && a.Given != "":
			out.Authors = append(out.Authors, a.Given+" "+a.Family)
		case a.Family != "":
			out.Authors = append(out.Authors, a.Family)
		case a.Name != "":
			out.Authors = append(out.Authors, a.Name)
		}
	}

	// Print date preferred, then online, then deposit date.
	for _, d := range []crossrefDate{w.PublishedPrint, w.PublishedOnline, w.Created} {
		if y := d.year(); y != 0 {
			out.Year = y
			break
		}
	}

	if t, ok := crossrefTypeMap[w.Type]; ok {
		out.Type = t
	} else if w.Type != "" {
		out.Type = types.DocOther
	}

	return out
}
