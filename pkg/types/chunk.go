// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ChunkSourceType tags a chunk's provenance: an uploaded document or a
// retrieved paper.
type ChunkSourceType string

const (
	ChunkFromDocument ChunkSourceType = "document"
	ChunkFromPaper    ChunkSourceType = "paper"
)

// ChunkMetadata carries the provenance attached to every stored chunk.
type ChunkMetadata struct {
	// SourceType is "document" or "paper".
	SourceType ChunkSourceType `json:"source_type"`

	// SourceID identifies the originating document or paper (filename or URL).
	SourceID string `json:"source_id"`

	// SourceTitle is the human-readable title of the source.
	SourceTitle string `json:"source_title"`

	// ChunkIndex is this chunk's position within its source, starting at 0.
	ChunkIndex int `json:"chunk_index"`

	// TotalChunks is the number of chunks the source produced.
	// ChunkIndex < TotalChunks always holds.
	TotalChunks int `json:"total_chunks"`

	// SurveyID scopes the chunk to one survey run.
	SurveyID string `json:"survey_id"`

	// Authors is a comma-joined author list. Paper chunks only.
	Authors string `json:"authors,omitempty"`

	// Year is the publication year. Paper chunks only.
	Year int `json:"year,omitempty"`

	// Source is the search backend that found the paper. Paper chunks only.
	Source string `json:"source,omitempty"`

	// DOI is the paper's DOI. Paper chunks only.
	DOI string `json:"doi,omitempty"`
}

// Chunk is a bounded, overlapping slice of source text plus provenance.
// Text is always non-empty after trimming; empty windows are never emitted.
type Chunk struct {
	// Text is the trimmed window content.
	Text string `json:"text"`

	// StartOffset is the window's starting byte offset in the cleaned source.
	StartOffset int `json:"start_offset"`

	// EndOffset is the window's exclusive ending byte offset.
	EndOffset int `json:"end_offset"`

	// Metadata carries the chunk's provenance.
	Metadata ChunkMetadata `json:"metadata"`
}
