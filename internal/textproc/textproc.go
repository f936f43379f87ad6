// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textproc implements text normalization and windowed chunking.
// Pure transformations, no I/O; see docs/ARCHITECTURE § Text Processing.
package textproc

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/pdiddy/survey-engine/pkg/types"
)

// Default window parameters used by the ingestion and retrieval stages.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	// unsafeChars matches everything outside the safe punctuation set:
	// word characters, whitespace, and .,!?;:()-'" survive cleaning.
	unsafeChars = regexp.MustCompile(`[^\w\s.,!?;:()'"-]`)
	newlineRun  = regexp.MustCompile(`\n+`)
)

// Clean normalizes raw extracted text: collapses whitespace runs to single
// spaces, strips characters outside the safe punctuation set, collapses
// newline runs, and trims the ends. Total: empty input yields empty output.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = unsafeChars.ReplaceAllString(text, "")
	text = newlineRun.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

// Chunk splits text into overlapping windows of at most size bytes. Each
// window spans [start, min(start+size, len)); a window is emitted only when
// its trimmed text is non-empty. The next window starts at end-overlap, and
// the loop stops once start >= len-overlap, which prevents looping forever
// when the overlap covers the remaining tail.
//
// Overlap must be strictly less than size; callers pass validated constants.
func Chunk(text string, size, overlap int) []types.Chunk {
	var chunks []types.Chunk

	start := 0
	for start < len(text) {
		end := start + size
		if end > len(text) {
			end = len(text)
		}

		if trimmed := strings.TrimSpace(text[start:end]); trimmed != "" {
			chunks = append(chunks, types.Chunk{
				Text:        trimmed,
				StartOffset: start,
				EndOffset:   end,
			})
		}

		start = end - overlap
		if start >= len(text)-overlap {
			break
		}
	}

	return chunks
}

// NormalizeTitle returns a lowercased, punctuation-stripped form of a title
// with whitespace collapsed, used as the dedup comparison key.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// JaccardSimilarity computes intersection-over-union of the two strings'
// word sets. Two empty strings are identical (1.0).
func JaccardSimilarity(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)

	if len(wordsA) == 0 && len(wordsB) == 0 {
		return 1.0
	}

	intersection := 0
	for w := range wordsA {
		if wordsB[w] {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}

// WordCount returns the number of whitespace-delimited words in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
