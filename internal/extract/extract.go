// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract pulls plain text out of uploaded documents. File kind is
// decided by magic bytes first and the declared type second, so a mislabeled
// upload fails with an honest error instead of a parser panic.
// See docs/ARCHITECTURE § Extraction.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/survey-engine/pkg/types"
)

// LegacyConverter turns formats no Go library reads (binary .doc) into
// text. Nil when no container runtime is present.
type LegacyConverter interface {
	Convert(ctx context.Context, path string) (string, error)
}

// Extractor dispatches documents to the per-format extractors.
type Extractor struct {
	legacy LegacyConverter
}

// NewExtractor builds an extractor. legacy may be nil; legacy .doc files
// then fail per-file and the pipeline skips them.
func NewExtractor(legacy LegacyConverter) *Extractor {
	return &Extractor{legacy: legacy}
}

// Extract returns the document's plain text.
func (e *Extractor) Extract(ctx context.Context, doc types.Document) (string, error) {
	data, err := os.ReadFile(doc.Path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", doc.OriginalName, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty file %s", doc.OriginalName)
	}

	switch {
	case isPDF(data):
		text, err := extractPDF(data)
		if err != nil {
			return "", fmt.Errorf("extracting %s: %w", doc.OriginalName, err)
		}
		return text, nil
	case isZip(data):
		text, err := extractDOCX(data)
		if err != nil {
			return "", fmt.Errorf("extracting %s: %w", doc.OriginalName, err)
		}
		return text, nil
	}

	ext := strings.ToLower(filepath.Ext(doc.OriginalName))
	mt := strings.ToLower(doc.MimeType)

	// Binary .doc has no parseable structure here; hand it to the container.
	if mt == "application/msword" || ext == ".doc" {
		if e.legacy == nil {
			return "", fmt.Errorf("no converter available for legacy document %s", doc.OriginalName)
		}
		text, err := e.legacy.Convert(ctx, doc.Path)
		if err != nil {
			return "", fmt.Errorf("converting %s: %w", doc.OriginalName, err)
		}
		return text, nil
	}

	if mt == "application/pdf" || ext == ".pdf" {
		return "", fmt.Errorf("%s claims to be a PDF but has no %%PDF header", doc.OriginalName)
	}
	if strings.Contains(mt, "wordprocessingml") || ext == ".docx" {
		return "", fmt.Errorf("%s claims to be a DOCX but is not a zip container", doc.OriginalName)
	}

	if isProbablyText(data) || strings.HasPrefix(mt, "text/") || ext == ".txt" || ext == ".md" {
		return string(data), nil
	}

	return "", fmt.Errorf("unsupported file type for %s (mimetype %q)", doc.OriginalName, doc.MimeType)
}

func isPDF(b []byte) bool {
	return bytes.HasPrefix(b, []byte("%PDF-"))
}

func isZip(b []byte) bool {
	return bytes.HasPrefix(b, []byte{'P', 'K', 0x03, 0x04})
}

// isProbablyText accepts data with no NUL bytes and a mostly printable
// sample.
func isProbablyText(b []byte) bool {
	sample := b
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	good := 0
	for _, c := range sample {
		if c == 0x00 {
			return false
		}
		if c == '\n' || c == '\r' || c == '\t' || (c >= 0x20 && c <= 0x7E) || c >= 0x80 {
			good++
		}
	}
	return float64(good)/float64(len(sample)) > 0.9
}
