// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package papers queries academic APIs and returns unified, deduplicated
// results. Each source (arXiv, Semantic Scholar, PubMed) implements the
// Source interface per the Strategy pattern; docs/ARCHITECTURE § Retrieval.
package papers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/survey-engine/internal/textproc"
	"github.com/pdiddy/survey-engine/pkg/types"
)

// DefaultDedupThreshold is the Jaccard similarity above which a candidate's
// title marks it as a duplicate.
const DefaultDedupThreshold = 0.85

// Source searches a single academic API. A dead source returns an error;
// the aggregator tolerates it and moves on.
type Source interface {
	Name() string
	Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.Paper, error)
}

// DefaultSources builds the enabled adapters in fetch order: arXiv, then
// Semantic Scholar, then PubMed. Earlier sources win dedup ties.
func DefaultSources(cfg types.SearchConfig) []Source {
	var sources []Source
	if cfg.EnableArxiv {
		sources = append(sources, &ArxivSource{})
	}
	if cfg.EnableSemanticScholar {
		sources = append(sources, &SemanticScholarSource{APIKey: cfg.SemanticScholarAPIKey})
	}
	if cfg.EnablePubMed {
		sources = append(sources, &PubMedSource{})
	}
	return sources
}

// Aggregate runs the sources sequentially, collects their papers, and
// deduplicates by title similarity. A source error is logged and yields an
// empty contribution; it never aborts the aggregation. Each source call is
// bounded by cfg.Timeout (default 30s).
func Aggregate(ctx context.Context, query string, sources []Source, cfg types.SearchConfig, logger *zap.Logger) []types.Paper {
	return AggregateFunc(ctx, query, sources, cfg, logger, nil)
}

// AggregateFunc is Aggregate with a hook invoked before each source is
// queried. The pipeline uses it to surface per-source progress.
func AggregateFunc(ctx context.Context, query string, sources []Source, cfg types.SearchConfig, logger *zap.Logger, before func(i int, src Source)) []types.Paper {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var all []types.Paper
	for i, src := range sources {
		if before != nil {
			before(i, src)
		}
		srcCtx, cancel := context.WithTimeout(ctx, timeout)
		results, err := src.Search(srcCtx, query, cfg)
		cancel()
		if err != nil {
			logger.Warn("paper source failed",
				zap.String("source", src.Name()),
				zap.Error(err))
			continue
		}
		logger.Info("paper source returned results",
			zap.String("source", src.Name()),
			zap.Int("count", len(results)))
		all = append(all, results...)
	}

	threshold := cfg.DedupThreshold
	if threshold <= 0 {
		threshold = DefaultDedupThreshold
	}
	return Deduplicate(all, threshold)
}

// Deduplicate drops candidates whose normalized title exceeds the Jaccard
// similarity threshold against any previously accepted title. Processing
// order is fetch order, so earlier sources win ties. Quadratic in accepted
// count; result sets are bounded, so this stays cheap.
func Deduplicate(candidates []types.Paper, threshold float64) []types.Paper {
	var accepted []types.Paper
	var acceptedTitles []string

	for _, p := range candidates {
		norm := textproc.NormalizeTitle(p.Title)

		duplicate := false
		for _, seen := range acceptedTitles {
			if textproc.JaccardSimilarity(norm, seen) > threshold {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}

		accepted = append(accepted, p)
		acceptedTitles = append(acceptedTitles, norm)
	}
	return accepted
}

// FormatTable writes papers as a human-readable table to w.
func FormatTable(papers []types.Paper, w io.Writer) {
	if len(papers) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %s\n",
		"Rank", "Title", "Authors", "Year", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 104))

	for i, p := range papers {
		title := truncate(p.Title, 60)
		year := ""
		if p.Year > 0 {
			year = fmt.Sprintf("%d", p.Year)
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-4s  %s\n",
			i+1, title, formatAuthors(p.Authors), year, p.Source)
	}
	fmt.Fprintf(w, "\n%d papers\n", len(papers))
}

// FormatJSON writes papers as indented JSON to w.
func FormatJSON(papers []types.Paper, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(papers)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
