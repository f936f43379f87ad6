// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SurveyStatus is the terminal-state machine over one survey run.
type SurveyStatus string

const (
	StatusPending    SurveyStatus = "pending"
	StatusProcessing SurveyStatus = "processing"
	StatusCompleted  SurveyStatus = "completed"
	StatusFailed     SurveyStatus = "failed"
)

// Agent names the pipeline stage emitting a progress event.
type Agent string

const (
	AgentDocumentRetrieval Agent = "document_retrieval"
	AgentPaperRetrieval    Agent = "paper_retrieval"
	AgentSummarization     Agent = "summarization"
	AgentCitation          Agent = "citation"
	AgentVerification      Agent = "verification"
	AgentPlagiarismCheck   Agent = "plagiarism_check"
)

// ProgressEvent is one progress report from a pipeline stage. Within a
// single stage run Progress is non-decreasing and the final event of a
// stage carries exactly 100.
type ProgressEvent struct {
	// SurveyID keys the event to one survey run.
	SurveyID string `json:"survey_id"`

	// Agent is the stage reporting progress.
	Agent Agent `json:"agent"`

	// Progress is the stage's completion percentage, 0 to 100.
	Progress int `json:"progress"`

	// Message is a human-readable status line.
	Message string `json:"message"`
}

// Document describes one uploaded file attached to a survey.
type Document struct {
	// Filename is the stored filename (unique within the upload area).
	Filename string `json:"filename" yaml:"filename"`

	// OriginalName is the name the user uploaded the file under.
	OriginalName string `json:"original_name" yaml:"original_name"`

	// MimeType is the declared media type: pdf, doc, or docx.
	MimeType string `json:"mimetype" yaml:"mimetype"`

	// Path is the local filesystem path to the file.
	Path string `json:"path" yaml:"path"`

	// Size is the file size in bytes.
	Size int64 `json:"size,omitempty" yaml:"size,omitempty"`
}

// GeneratedSection is one section of the generated survey document.
type GeneratedSection struct {
	// Title is the section heading.
	Title string `json:"title" yaml:"title"`

	// Content is the generated section body.
	Content string `json:"content" yaml:"content"`

	// Order is the section's position in the document, starting at 0.
	Order int `json:"order" yaml:"order"`
}

// GeneratedSurvey holds the assembled output of the generation stage.
type GeneratedSurvey struct {
	// Content is the full Markdown document, sections concatenated in order.
	Content string `json:"content" yaml:"content"`

	// WordCount is the whitespace-delimited word count of Content.
	WordCount int `json:"word_count" yaml:"word_count"`

	// Sections lists the individual sections in order.
	Sections []GeneratedSection `json:"sections" yaml:"sections"`
}

// Citation records one formatted citation produced by the citation stage.
type Citation struct {
	// CitationKey is the inline citation label.
	CitationKey string `json:"citation_key" yaml:"citation_key"`

	// FormattedCitation is the rendered citation text.
	FormattedCitation string `json:"formatted_citation" yaml:"formatted_citation"`

	// SourceID links back to the cited paper's URL.
	SourceID string `json:"source_id" yaml:"source_id"`

	// Style is the citation style, currently always "APA".
	Style string `json:"style" yaml:"style"`
}

// VerificationReport is the fixed-shape output of the verification stage.
type VerificationReport struct {
	// ConfidenceScore is an overall confidence percentage, 0 to 100.
	ConfidenceScore int `json:"confidence_score" yaml:"confidence_score"`

	// ClaimsVerified counts claims checked against sources.
	ClaimsVerified int `json:"claims_verified" yaml:"claims_verified"`

	// CorrectionsMade counts claims rewritten after verification.
	CorrectionsMade int `json:"corrections_made" yaml:"corrections_made"`

	// FlaggedIssues lists unresolved problems found during verification.
	FlaggedIssues []string `json:"flagged_issues" yaml:"flagged_issues"`

	// GeneratedAt is when the report was produced.
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
}

// PlagiarismSource records one overlapping external source.
type PlagiarismSource struct {
	Text       string  `json:"text" yaml:"text"`
	Similarity float64 `json:"similarity" yaml:"similarity"`
	Source     string  `json:"source" yaml:"source"`
}

// PlagiarismReport is the fixed-shape output of the plagiarism-check stage.
type PlagiarismReport struct {
	// SimilarityScore is the overlap percentage with known sources.
	SimilarityScore float64 `json:"similarity_score" yaml:"similarity_score"`

	// OriginalityScore is 100 minus the similarity score.
	OriginalityScore float64 `json:"originality_score" yaml:"originality_score"`

	// RewrittenSections counts sections rewritten to reduce overlap.
	RewrittenSections int `json:"rewritten_sections" yaml:"rewritten_sections"`

	// Sources lists the overlapping external sources.
	Sources []PlagiarismSource `json:"sources" yaml:"sources"`

	// GeneratedAt is when the report was produced.
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
}

// Survey is the per-run aggregate: inputs, stage results, and final status.
// The pipeline owns the record for the lifetime of one execution and hands
// it to the store once per completed stage.
type Survey struct {
	// ID uniquely identifies the survey run.
	ID string `json:"id" yaml:"id"`

	// Topic is the research topic, at least 10 characters.
	Topic string `json:"topic" yaml:"topic"`

	// AdditionalInfo refines the topic, at most 1000 characters.
	AdditionalInfo string `json:"additional_info,omitempty" yaml:"additional_info,omitempty"`

	// Status is the run's lifecycle state.
	Status SurveyStatus `json:"status" yaml:"status"`

	// CurrentAgent is the stage most recently reporting progress.
	CurrentAgent Agent `json:"current_agent,omitempty" yaml:"current_agent,omitempty"`

	// Progress is the current stage's completion percentage.
	Progress int `json:"progress" yaml:"progress"`

	// Documents lists the uploaded files, at most 10.
	Documents []Document `json:"documents,omitempty" yaml:"documents,omitempty"`

	// RetrievedPapers holds the deduplicated aggregation output.
	RetrievedPapers []Paper `json:"retrieved_papers,omitempty" yaml:"retrieved_papers,omitempty"`

	// Generated holds the generation stage output.
	Generated *GeneratedSurvey `json:"generated_survey,omitempty" yaml:"generated_survey,omitempty"`

	// Citations holds the citation stage output.
	Citations []Citation `json:"citations,omitempty" yaml:"citations,omitempty"`

	// Verification holds the verification stage report.
	Verification *VerificationReport `json:"verification_report,omitempty" yaml:"verification_report,omitempty"`

	// Plagiarism holds the plagiarism-check report.
	Plagiarism *PlagiarismReport `json:"plagiarism_report,omitempty" yaml:"plagiarism_report,omitempty"`

	// ErrorMessage holds the captured failure reason for failed runs.
	ErrorMessage string `json:"error_message,omitempty" yaml:"error_message,omitempty"`

	// CreatedAt is when the survey was submitted.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// CompletedAt is when the run reached a terminal state.
	CompletedAt time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`

	// ProcessingTime is the elapsed wall-clock seconds of a completed run.
	ProcessingTime int `json:"processing_time,omitempty" yaml:"processing_time,omitempty"`
}

// Namespace returns the vector store partition for this survey. Namespaces
// are derived from survey identity and never overlap across surveys.
func (s *Survey) Namespace() string {
	return "survey_" + s.ID
}

// UpdateProgress records the current stage and its progress without
// persisting; the orchestrator saves once per completed stage.
func (s *Survey) UpdateProgress(agent Agent, progress int) {
	s.CurrentAgent = agent
	s.Progress = progress
}

// MarkCompleted transitions the run to completed and records elapsed time.
func (s *Survey) MarkCompleted(now time.Time) {
	s.Status = StatusCompleted
	s.Progress = 100
	s.CompletedAt = now
	s.ProcessingTime = int(now.Sub(s.CreatedAt) / time.Second)
}

// MarkFailed transitions the run to failed with the captured reason.
func (s *Survey) MarkFailed(reason string, now time.Time) {
	s.Status = StatusFailed
	s.ErrorMessage = reason
	s.CompletedAt = now
}
