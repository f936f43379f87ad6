// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package papers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/survey-engine/pkg/types"
)

const arxivFeedSample = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2301.07041v1</id>
    <title>Attention Is All You Need, Revisited</title>
    <summary>We revisit attention mechanisms.</summary>
    <published>2023-01-17T12:00:00Z</published>
    <author><name>Jane Doe</name></author>
    <author><name>John Roe</name></author>
    <link title="pdf" href="http://arxiv.org/pdf/2301.07041v1" rel="related" type="application/pdf"/>
  </entry>
</feed>`

func TestArxivSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "search_query=all")
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(arxivFeedSample))
	}))
	defer ts.Close()

	orig := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = orig }()

	src := &ArxivSource{Client: ts.Client()}
	papers, err := src.Search(context.Background(), "attention", types.SearchConfig{MaxResults: 5})
	require.NoError(t, err)
	require.Len(t, papers, 1)

	p := papers[0]
	assert.Equal(t, "Attention Is All You Need, Revisited", p.Title)
	assert.Equal(t, []string{"Jane Doe", "John Roe"}, p.Authors)
	assert.Equal(t, 2023, p.Year)
	assert.Equal(t, types.SourceArxiv, p.Source)
	assert.Equal(t, "http://arxiv.org/abs/2301.07041v1", p.URL)
	assert.Equal(t, "http://arxiv.org/pdf/2301.07041v1", p.PDFURL)
}

func TestArxivSearchServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	orig := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = orig }()

	src := &ArxivSource{Client: ts.Client()}
	_, err := src.Search(context.Background(), "attention", types.SearchConfig{})
	assert.Error(t, err)
}

const semanticSample = `{
  "data": [
    {
      "title": "Survey of Graph Networks",
      "abstract": "An overview.",
      "year": 2022,
      "url": "https://www.semanticscholar.org/paper/abc",
      "authors": [{"name": "Ada Lovelace"}],
      "externalIds": {"DOI": "10.1000/xyz"},
      "openAccessPdf": {"url": "https://example.org/paper.pdf"}
    },
    {
      "title": "No Extras",
      "abstract": "",
      "year": 0,
      "url": "",
      "authors": [],
      "externalIds": {},
      "openAccessPdf": null
    }
  ]
}`

func TestSemanticScholarSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Contains(t, r.URL.Query().Get("fields"), "openAccessPdf")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(semanticSample))
	}))
	defer ts.Close()

	orig := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = orig }()

	src := &SemanticScholarSource{Client: ts.Client(), APIKey: "test-key"}
	papers, err := src.Search(context.Background(), "graphs", types.SearchConfig{MaxResults: 5})
	require.NoError(t, err)
	require.Len(t, papers, 2)

	assert.Equal(t, "10.1000/xyz", papers[0].DOI)
	assert.Equal(t, "https://example.org/paper.pdf", papers[0].PDFURL)
	assert.Equal(t, []string{"Ada Lovelace"}, papers[0].Authors)
	assert.Empty(t, papers[1].PDFURL)
}

const pubmedSearchSample = `{"esearchresult": {"idlist": ["101", "102"]}}`

const pubmedSummarySample = `{
  "result": {
    "uids": ["101", "102"],
    "101": {
      "title": "Gene Therapy Advances",
      "pubdate": "2021 Feb 12",
      "elocationid": "10.1001/abc",
      "authors": [{"name": "Kim J"}, {"name": "Park S"}]
    },
    "102": {
      "title": "CRISPR Screening",
      "pubdate": "",
      "elocationid": "",
      "authors": []
    }
  }
}`

func TestPubMedSearch(t *testing.T) {
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pubmed", r.URL.Query().Get("db"))
		w.Write([]byte(pubmedSearchSample))
	}))
	defer search.Close()

	summary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "101,102", r.URL.Query().Get("id"))
		w.Write([]byte(pubmedSummarySample))
	}))
	defer summary.Close()

	origSearch, origSummary := pubmedSearchBase, pubmedSummaryBase
	pubmedSearchBase, pubmedSummaryBase = search.URL, summary.URL
	defer func() { pubmedSearchBase, pubmedSummaryBase = origSearch, origSummary }()

	src := &PubMedSource{Client: search.Client()}
	papers, err := src.Search(context.Background(), "gene therapy", types.SearchConfig{})
	require.NoError(t, err)
	require.Len(t, papers, 2)

	assert.Equal(t, "Gene Therapy Advances", papers[0].Title)
	assert.Equal(t, 2021, papers[0].Year)
	assert.Equal(t, "10.1001/abc", papers[0].DOI)
	assert.Equal(t, "https://pubmed.ncbi.nlm.nih.gov/101/", papers[0].URL)
	assert.Empty(t, papers[0].Abstract)
	assert.Equal(t, 0, papers[1].Year)
}

func TestPubMedSearchNoResults(t *testing.T) {
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"esearchresult": {"idlist": []}}`))
	}))
	defer search.Close()

	orig := pubmedSearchBase
	pubmedSearchBase = search.URL
	defer func() { pubmedSearchBase = orig }()

	src := &PubMedSource{Client: search.Client()}
	papers, err := src.Search(context.Background(), "nothing", types.SearchConfig{})
	require.NoError(t, err)
	assert.Empty(t, papers)
}
