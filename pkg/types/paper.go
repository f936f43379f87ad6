// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the survey-engine pipeline.
// See docs/ARCHITECTURE § Pipeline Interface, § Data Structures.
package types

// PaperSource identifies the academic API that produced a paper.
type PaperSource string

const (
	SourceArxiv           PaperSource = "arxiv"
	SourceSemanticScholar PaperSource = "semantic_scholar"
	SourcePubMed          PaperSource = "pubmed"
)

// Paper is the common shape every source adapter normalizes into. Results
// from heterogeneous APIs (Atom XML, graph JSON, E-utilities JSON) all land
// here before deduplication and storage.
type Paper struct {
	// Title is the paper title as returned by the source, cleaned.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the publication year, or zero when the source omits a date.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Source identifies which adapter found this paper.
	Source PaperSource `json:"source" yaml:"source"`

	// DOI is the digital object identifier, when the source provides one.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// URL is the paper's landing page.
	URL string `json:"url" yaml:"url"`

	// PDFURL is a direct PDF link, when the source provides one.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// Abstract is the paper abstract. PubMed summaries carry none.
	Abstract string `json:"abstract" yaml:"abstract"`
}
