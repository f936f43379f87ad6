// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package papers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/survey-engine/internal/httputil"
	"github.com/pdiddy/survey-engine/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,authors,year,abstract,url,externalIds,openAccessPdf"

// SemanticScholarSource queries the Semantic Scholar graph API.
type SemanticScholarSource struct {
	Client *http.Client
	APIKey string
}

// Name returns the source identifier.
func (s *SemanticScholarSource) Name() string { return string(types.SourceSemanticScholar) }

// Search queries Semantic Scholar and maps the graph response into the
// common Paper shape. Rate-limited responses go through DoWithRetry.
func (s *SemanticScholarSource) Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.Paper, error) {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	params := url.Values{
		"query":  {query},
		"limit":  {fmt.Sprintf("%d", maxResults)},
		"fields": {semanticFields},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, semanticAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	if s.APIKey != "" {
		req.Header.Set("x-api-key", s.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, s.client(), req, 0)
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	var results []types.Paper
	for _, paper := range sr.Data {
		p := types.Paper{
			Title:    paper.Title,
			Abstract: paper.Abstract,
			Year:     paper.Year,
			Source:   types.SourceSemanticScholar,
			URL:      paper.URL,
			DOI:      paper.ExternalIDs.DOI,
		}
		for _, a := range paper.Authors {
			p.Authors = append(p.Authors, a.Name)
		}
		if paper.OpenAccessPDF != nil {
			p.PDFURL = paper.OpenAccessPDF.URL
		}
		results = append(results, p)
	}
	return results, nil
}

func (s *SemanticScholarSource) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

// Semantic Scholar graph API response structures.
type semanticResponse struct {
	Data []semanticPaper `json:"data"`
}

type semanticPaper struct {
	Title         string            `json:"title"`
	Abstract      string            `json:"abstract"`
	Year          int               `json:"year"`
	URL           string            `json:"url"`
	Authors       []semanticAuthor  `json:"authors"`
	ExternalIDs   semanticExternal  `json:"externalIds"`
	OpenAccessPDF *semanticOpenPDF  `json:"openAccessPdf"`
}

type semanticAuthor struct {
	Name string `json:"name"`
}

type semanticExternal struct {
	DOI string `json:"DOI"`
}

type semanticOpenPDF struct {
	URL string `json:"url"`
}
