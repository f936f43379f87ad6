// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package papers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/survey-engine/internal/httputil"
	"github.com/pdiddy/survey-engine/pkg/types"
)

// PubMed E-utilities endpoints. Declared as vars so tests can substitute
// httptest servers.
var (
	pubmedSearchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedSummaryBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esummary.fcgi"
)

// pubmedMaxIDs caps the esearch id list; esummary detail requests grow
// linearly with it.
const pubmedMaxIDs = 15

// PubMedSource queries PubMed through the NCBI E-utilities: esearch for the
// id list, then esummary for per-id details.
type PubMedSource struct {
	Client *http.Client
}

// Name returns the source identifier.
func (s *PubMedSource) Name() string { return string(types.SourcePubMed) }

// Search runs the two-step esearch/esummary flow and maps summaries into
// the common Paper shape. Summaries carry no abstract.
func (s *PubMedSource) Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.Paper, error) {
	ids, err := s.searchIDs(ctx, query, cfg)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return s.fetchSummaries(ctx, ids, cfg)
}

func (s *PubMedSource) searchIDs(ctx context.Context, query string, cfg types.SearchConfig) ([]string, error) {
	retmax := cfg.MaxResults
	if retmax <= 0 || retmax > pubmedMaxIDs {
		retmax = pubmedMaxIDs
	}

	params := url.Values{
		"db":      {"pubmed"},
		"term":    {query},
		"retmax":  {strconv.Itoa(retmax)},
		"retmode": {"json"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pubmedSearchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating esearch request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.client(), req, 0)
	if err != nil {
		return nil, fmt.Errorf("PubMed esearch request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("PubMed esearch returned HTTP %d", resp.StatusCode)
	}

	var sr pubmedSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing esearch response: %w", err)
	}
	return sr.ESearchResult.IDList, nil
}

func (s *PubMedSource) fetchSummaries(ctx context.Context, ids []string, cfg types.SearchConfig) ([]types.Paper, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"json"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pubmedSummaryBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating esummary request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.client(), req, 0)
	if err != nil {
		return nil, fmt.Errorf("PubMed esummary request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("PubMed esummary returned HTTP %d", resp.StatusCode)
	}

	var sumResp pubmedSummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&sumResp); err != nil {
		return nil, fmt.Errorf("parsing esummary response: %w", err)
	}

	var results []types.Paper
	for _, id := range ids {
		raw, ok := sumResp.Result[id]
		if !ok {
			continue
		}
		var doc pubmedDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}

		p := types.Paper{
			Title:  doc.Title,
			Year:   pubdateYear(doc.PubDate),
			Source: types.SourcePubMed,
			URL:    fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", id),
			DOI:    doc.ELocationID,
		}
		for _, a := range doc.Authors {
			p.Authors = append(p.Authors, a.Name)
		}
		results = append(results, p)
	}
	return results, nil
}

func (s *PubMedSource) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

// pubdateYear extracts the year from a PubMed pubdate such as "2021 Feb 12".
func pubdateYear(pubdate string) int {
	fields := strings.Fields(pubdate)
	if len(fields) == 0 {
		return 0
	}
	year, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return year
}

// PubMed E-utilities response structures. esummary keys documents by id
// alongside a "uids" array, so Result holds raw messages.
type pubmedSearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type pubmedSummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type pubmedDoc struct {
	Title       string         `json:"title"`
	PubDate     string         `json:"pubdate"`
	ELocationID string         `json:"elocationid"`
	Authors     []pubmedAuthor `json:"authors"`
}

type pubmedAuthor struct {
	Name string `json:"name"`
}
