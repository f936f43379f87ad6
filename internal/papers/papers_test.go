// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package papers

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/pdiddy/survey-engine/pkg/types"
)

// --- mock source ---

type mockSource struct {
	name    string
	results []types.Paper
	err     error
	calls   int
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Search(_ context.Context, _ string, _ types.SearchConfig) ([]types.Paper, error) {
	m.calls++
	return m.results, m.err
}

func testCfg() types.SearchConfig {
	return types.SearchConfig{
		MaxResults:     20,
		DedupThreshold: DefaultDedupThreshold,
	}
}

// --- Aggregate ---

func TestAggregateToleratesSourceFailure(t *testing.T) {
	dead := &mockSource{name: "arxiv", err: errors.New("connection refused")}
	alive := &mockSource{name: "pubmed", results: []types.Paper{
		{Title: "Paper A", Source: types.SourcePubMed},
	}}

	papers := Aggregate(context.Background(), "topic", []Source{dead, alive}, testCfg(), zap.NewNop())

	if len(papers) != 1 {
		t.Fatalf("len(papers) = %d, want 1", len(papers))
	}
	if alive.calls != 1 {
		t.Errorf("surviving source called %d times, want 1", alive.calls)
	}
}

func TestAggregateAllSourcesDead(t *testing.T) {
	sources := []Source{
		&mockSource{name: "arxiv", err: errors.New("timeout")},
		&mockSource{name: "semantic_scholar", err: errors.New("HTTP 500")},
		&mockSource{name: "pubmed", err: errors.New("timeout")},
	}

	papers := Aggregate(context.Background(), "topic", sources, testCfg(), zap.NewNop())
	if len(papers) != 0 {
		t.Errorf("len(papers) = %d, want 0", len(papers))
	}
}

func TestAggregatePreservesFetchOrder(t *testing.T) {
	first := &mockSource{name: "arxiv", results: []types.Paper{
		{Title: "Shared Result Title", Source: types.SourceArxiv},
	}}
	second := &mockSource{name: "semantic_scholar", results: []types.Paper{
		{Title: "shared result title!!", Source: types.SourceSemanticScholar},
		{Title: "A Different Paper", Source: types.SourceSemanticScholar},
	}}

	papers := Aggregate(context.Background(), "topic", []Source{first, second}, testCfg(), zap.NewNop())

	if len(papers) != 2 {
		t.Fatalf("len(papers) = %d, want 2", len(papers))
	}
	// The earlier source's copy survives the tie.
	if papers[0].Source != types.SourceArxiv {
		t.Errorf("papers[0].Source = %s, want arxiv", papers[0].Source)
	}
}

// --- Deduplicate ---

func TestDeduplicateDropsNearIdenticalTitles(t *testing.T) {
	candidates := []types.Paper{
		{Title: "Deep Learning for X"},
		{Title: "deep learning for x!!!"},
	}

	got := Deduplicate(candidates, DefaultDedupThreshold)
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
	if got[0].Title != "Deep Learning for X" {
		t.Errorf("kept %q, want the first-seen title", got[0].Title)
	}
}

func TestDeduplicateKeepsDistinctTitles(t *testing.T) {
	candidates := []types.Paper{
		{Title: "Graph Neural Networks in Biology"},
		{Title: "Transformers for Program Synthesis"},
		{Title: "A Survey of Quantum Error Correction"},
	}

	got := Deduplicate(candidates, DefaultDedupThreshold)
	if len(got) != 3 {
		t.Errorf("len(got) = %d, want 3", len(got))
	}
}

func TestDeduplicateThresholdIsStrict(t *testing.T) {
	// Exactly at the threshold is kept; only strictly greater drops.
	candidates := []types.Paper{
		{Title: "a b c d e f g h i j k l m n o p q"},  // 17 words
		{Title: "a b c d e f g h i j k l m n o p qq"}, // 16 shared, union 18
	}

	got := Deduplicate(candidates, 16.0/18.0)
	if len(got) != 2 {
		t.Errorf("len(got) = %d, want 2 (similarity equal to threshold kept)", len(got))
	}
}

// --- Formatting ---

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(nil, &buf)
	if !strings.Contains(buf.String(), "No papers found.") {
		t.Errorf("output = %q, want no-papers message", buf.String())
	}
}

func TestFormatTableListsPapers(t *testing.T) {
	var buf bytes.Buffer
	FormatTable([]types.Paper{
		{Title: "Paper A", Authors: []string{"Lee", "Kim"}, Year: 2023, Source: types.SourceArxiv},
	}, &buf)

	out := buf.String()
	if !strings.Contains(out, "Paper A") || !strings.Contains(out, "Lee et al.") {
		t.Errorf("output missing expected fields:\n%s", out)
	}
}
