// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/time/rate"

	"github.com/xyshuai/LLM-generated-reference-checker/internal/httputil"
	"github.com/xyshuai/LLM-generated-reference-checker/pkg/types"
)

// openAlexBase is the OpenAlex Works endpoint. Declared as a var so
// tests can substitute an httptest server.
var openAlexBase = "https://api.openalex.org/works"

// OpenAlex queries the OpenAlex API (R2.1). OpenAlex is the primary
// provider: it reports retraction status, which Crossref responses here
// do not.
type OpenAlex struct {
	Client *http.Client

	// Email is sent as the mailto parameter for polite pool access.
	Email string

	// MaxResults bounds title-search candidates (default 10).
	MaxResults int

	// Limiter throttles outbound requests; nil means unthrottled.
	Limiter *rate.Limiter

	UserAgent string
}

// NewOpenAlex builds an OpenAlex provider from resolution settings.
func NewOpenAlex(client *http.Client, cfg types.ResolveConfig) *OpenAlex {
	return &OpenAlex{
		Client:     client,
		Email:      cfg.Email,
		MaxResults: cfg.MaxCandidates,
		Limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		UserAgent:  cfg.UserAgent,
	}
}

// Name returns the provider identifier.
func (p *OpenAlex) Name() types.Provider { return types.ProviderOpenAlex }

// LookupDOI fetches a single work by DOI. A 404 is an ordinary miss and
// returns (nil, nil).
func (p *OpenAlex) LookupDOI(ctx context.Context, doi string) (*types.Work, error) {
	reqURL := openAlexBase + "/doi:" + url.PathEscape(doi)
	if p.Email != "" {
		reqURL += "?mailto=" + url.QueryEscape(p.Email)
	}

	var work openAlexWork
	found, err := p.getJSON(ctx, reqURL, &work)
	if err != nil || !found {
		return nil, err
	}
	w := work.toWork()
	return &w, nil
}

// SearchTitle runs a title.search filter query and returns the
// candidates in provider relevance order.
func (p *OpenAlex) SearchTitle(ctx context.Context, title string) ([]types.Work, error) {
	maxResults := p.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}
	if maxResults > 50 {
		maxResults = 50
	}

	params := url.Values{
		"filter":   {"title.search:" + searchableTitle(title)},
		"per-page": {fmt.Sprintf("%d", maxResults)},
	}
	if p.Email != "" {
		params.Set("mailto", p.Email)
	}

	var resp openAlexListResponse
	found, err := p.getJSON(ctx, openAlexBase+"?"+params.Encode(), &resp)
	if err != nil || !found {
		return nil, err
	}

	works := make([]types.Work, 0, len(resp.Results))
	for _, r := range resp.Results {
		works = append(works, r.toWork())
	}
	return works, nil
}

// getJSON performs a GET with rate limiting and retry, decoding the
// body into v. The found return is false for a 404.
func (p *OpenAlex) getJSON(ctx context.Context, reqURL string, v any) (found bool, err error) {
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

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return false, fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return false, fmt.Errorf("parsing OpenAlex response: %w", err)
	}
	return true, nil
}

// titleSearchCleanRe removes operator characters OpenAlex treats
// specially in title.search filters.
var titleSearchCleanRe = regexp.MustCompile(`[&:?,;]`)

// searchableTitle lowercases the title, strips filter operators, and
// keeps the first eight words — enough to disambiguate without making
// the filter brittle.
func searchableTitle(title string) string {
	t := titleSearchCleanRe.ReplaceAllString(strings.ToLower(title), " ")
	words := strings.Fields(t)
	if len(words) > 8 {
		words = words[:8]
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.
type openAlexListResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	DOI             string               `json:"doi"`
	PublicationYear int                  `json:"publication_year"`
	Type            string               `json:"type"`
	IsRetracted     bool                 `json:"is_retracted"`
	Authorships     []openAlexAuthorship `json:"authorships"`
	Biblio          openAlexBiblio       `json:"biblio"`
	PrimaryLocation *openAlexLocation    `json:"primary_location"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	DisplayName string `json:"display_name"`
}

type openAlexBiblio struct {
	Volume    string `json:"volume"`
	Issue     string `json:"issue"`
	FirstPage string `json:"first_page"`
	LastPage  string `json:"last_page"`
}

type openAlexLocation struct {
	Source *openAlexSource `json:"source"`
}

type openAlexSource struct {
	DisplayName string `json:"display_name"`
}

// openAlexTypeMap translates OpenAlex work types to the normalized
// document type enum.
var openAlexTypeMap = map[string]types.DocumentType{
	"article":             types.DocJournalArticle,
	"proceedings-article": types.DocConferencePaper,
	"book-chapter":        types.DocBookChapter,
	"posted-content":      types.DocPreprint,
	"preprint":            types.DocPreprint,
}

func (w *openAlexWork) toWork() types.Work {
	out := types.Work{
		SourceID:  strings.TrimPrefix(w.ID, "https://openalex.org/"),
		Provider:  types.ProviderOpenAlex,
		Title:     w.Title,
		Year:      w.PublicationYear,
		Volume:    w.Biblio.Volume,
		Issue:     w.Biblio.Issue,
		Retracted: w.IsRetracted,
	}

	// OpenAlex returns DOIs as resolver URLs; keep the bare form.
	if w.DOI != "" {
		out.DOI = strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(w.DOI, "https://doi.org/"), "http://doi.org/"))
	}

	for _, a := range w.Authorships {
		if a.Author.DisplayName != "" {
			out.Authors = append(out.Authors, a.Author.DisplayName)
		}
	}

	if w.PrimaryLocation != nil && w.PrimaryLocation.Source != nil {
		out.Venue = w.PrimaryLocation.Source.DisplayName
	}

	if w.Biblio.FirstPage != "" {
		if w.Biblio.LastPage != "" && w.Biblio.LastPage != w.Biblio.FirstPage {
			out.Pages = w.Biblio.FirstPage + "-" + w.Biblio.LastPage
		} else {
			out.Pages = w.Biblio.FirstPage
		}
	}

	if t, ok := openAlexTypeMap[w.Type]; ok {
		out.Type = t
	} else if w.Type != "" {
		out.Type = types.DocOther
	}

	return out
}
