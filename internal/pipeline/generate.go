// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/survey-engine/internal/completion"
	"github.com/pdiddy/survey-engine/internal/textproc"
	"github.com/pdiddy/survey-engine/pkg/types"
)

const (
	defaultSectionDelay     = time.Second
	defaultMaxContextPapers = 20
	contextAbstractLimit    = 300
	contextAuthorLimit      = 3
)

// sectionSpec describes one generated section: its heading, the progress
// milestone announced before its completion call, and its prompts.
type sectionSpec struct {
	title     string
	heading   string
	progress  int
	message   string
	system    string
	user      string // format string taking the shared context
	maxTokens int
}

var sections = []sectionSpec{
	{
		title:     "Abstract",
		heading:   "## Abstract",
		progress:  15,
		message:   "Generating abstract...",
		system:    "You are an expert academic writer. Write a concise abstract (150-200 words) for a literature survey.",
		user:      "Write an abstract for a literature survey on the following topic:\n\n%s\n\nThe abstract should summarize the scope, key themes, and main contributions.",
		maxTokens: 300,
	},
	{
		title:     "Introduction",
		heading:   "## 1. Introduction",
		progress:  20,
		message:   "Generating introduction...",
		system:    "You are an expert academic writer. Write a concise introduction section (300-400 words) for a literature survey.",
		user:      "Write an introduction for a literature survey on:\n\n%s\n\nInclude:\n1. Background and motivation\n2. Importance of the topic\n3. Scope of the survey\n\nKeep it focused and relevant.",
		maxTokens: 600,
	},
	{
		title:     "Background and Related Work",
		heading:   "## 2. Background and Related Work",
		progress:  35,
		message:   "Generating background and literature review...",
		system:    "You are an expert academic writer. Write a focused background section (400-500 words) for a literature survey.",
		user:      "Write a background and literature review section for:\n\n%s\n\nInclude:\n1. Key concepts\n2. Major research areas\n3. Seminal works\n\nFocus on the most important aspects.",
		maxTokens: 800,
	},
	{
		title:     "Methodology and Approaches",
		heading:   "## 3. Methodology and Approaches",
		progress:  50,
		message:   "Analyzing methodologies...",
		system:    "You are an expert academic writer. Write a concise methodology section (300-400 words) for a literature survey.",
		user:      "Write a methodology section for:\n\n%s\n\nInclude:\n1. Common research methodologies\n2. Approaches used in key papers\n\nSummarize the main technical approaches.",
		maxTokens: 600,
	},
	{
		title:     "Key Findings and Results",
		heading:   "## 4. Key Findings and Results",
		progress:  65,
		message:   "Synthesizing key findings...",
		system:    "You are an expert academic writer. Write a focused findings section (400-500 words) for a literature survey.",
		user:      "Write a findings and results section for:\n\n%s\n\nInclude:\n1. Major findings from the literature\n2. Key outcomes and comparisons\n\nHighlight the most significant results.",
		maxTokens: 800,
	},
	{
		title:     "Discussion and Analysis",
		heading:   "## 5. Discussion and Analysis",
		progress:  75,
		message:   "Generating discussion...",
		system:    "You are an expert academic writer. Write a concise discussion section (300-400 words) for a literature survey.",
		user:      "Write a discussion section for:\n\n%s\n\nInclude:\n1. Critical analysis\n2. Comparison of approaches\n3. Practical implications\n\nProvide clear insights.",
		maxTokens: 600,
	},
	{
		title:     "Future Research Directions",
		heading:   "## 6. Future Research Directions",
		progress:  85,
		message:   "Generating future research directions...",
		system:    "You are an expert academic writer. Write a concise future work section (200-300 words).",
		user:      "Write a future research directions section for:\n\n%s\n\nInclude:\n1. Open research questions\n2. Emerging opportunities\n\nBe specific and forward-looking.",
		maxTokens: 500,
	},
	{
		title:     "Conclusion",
		heading:   "## 7. Conclusion",
		progress:  95,
		message:   "Writing conclusion...",
		system:    "You are an expert academic writer. Write a concise conclusion (150-200 words) for a literature survey.",
		user:      "Write a conclusion for a literature survey on:\n\n%s\n\nInclude:\n1. Summary of key contributions\n2. Final recommendations",
		maxTokens: 400,
	},
}

// runGeneration produces the survey document section by section, with a
// fixed pause between completion calls to stay inside provider throughput
// limits.
func (o *Orchestrator) runGeneration(ctx context.Context, survey *types.Survey) error {
	agent := types.AgentSummarization
	o.emit(survey, agent, 5, "Initializing literature survey generation...")
	o.emit(survey, agent, 10, "Analyzing retrieved papers and documents...")

	sharedContext := o.prepareContext(survey)

	delay := o.genCfg.SectionDelay
	if delay < 0 {
		delay = 0
	} else if delay == 0 {
		delay = defaultSectionDelay
	}

	generated := make([]types.GeneratedSection, 0, len(sections))
	for i, spec := range sections {
		o.emit(survey, agent, spec.progress, spec.message)

		content, err := o.completer.Complete(ctx, []completion.Message{
			{Role: "system", Content: spec.system},
			{Role: "user", Content: fmt.Sprintf(spec.user, sharedContext)},
		}, completion.Options{
			MaxTokens:      spec.maxTokens,
			Temperature:    0.7,
			HasTemperature: true,
		})
		if err != nil {
			return fmt.Errorf("generating %s: %w", strings.ToLower(spec.title), err)
		}

		generated = append(generated, types.GeneratedSection{
			Title:   spec.title,
			Content: content,
			Order:   i,
		})

		if i < len(sections)-1 && delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	fullContent := assembleDocument(survey, generated)
	wordCount := textproc.WordCount(fullContent)

	survey.Generated = &types.GeneratedSurvey{
		Content:   fullContent,
		WordCount: wordCount,
		Sections:  generated,
	}

	if err := o.store.Save(ctx, survey); err != nil {
		return err
	}

	o.emit(survey, agent, 100, fmt.Sprintf("Literature survey generated (%d words)", wordCount))
	return nil
}

// assembleDocument joins the sections under numbered headings and appends
// the provenance note.
func assembleDocument(survey *types.Survey, generated []types.GeneratedSection) string {
	var b strings.Builder
	b.WriteString("# Literature Survey: " + survey.Topic + "\n")

	for i, section := range generated {
		b.WriteString("\n" + sections[i].heading + "\n\n")
		b.WriteString(section.Content + "\n")
	}

	b.WriteString(fmt.Sprintf(
		"\n---\n*This literature survey was generated based on %d research papers and %d uploaded documents.*\n",
		len(survey.RetrievedPapers), len(survey.Documents)))
	return b.String()
}

// prepareContext builds the shared prompt context: topic, refinements, and
// a bounded digest of the top retrieved papers.
func (o *Orchestrator) prepareContext(survey *types.Survey) string {
	maxPapers := o.genCfg.MaxContextPapers
	if maxPapers <= 0 {
		maxPapers = defaultMaxContextPapers
	}

	var b strings.Builder
	b.WriteString("Topic: " + survey.Topic + "\n")
	if survey.AdditionalInfo != "" {
		b.WriteString("Additional Information: " + survey.AdditionalInfo + "\n")
	}

	b.WriteString(fmt.Sprintf("\nRetrieved Papers (%d):\n", len(survey.RetrievedPapers)))
	for i, paper := range survey.RetrievedPapers {
		if i >= maxPapers {
			break
		}
		b.WriteString(fmt.Sprintf("%d. %s", i+1, paper.Title))
		if len(paper.Authors) > 0 {
			authors := paper.Authors
			if len(authors) > contextAuthorLimit {
				authors = authors[:contextAuthorLimit]
			}
			b.WriteString(" by " + strings.Join(authors, ", "))
		}
		if paper.Year > 0 {
			b.WriteString(fmt.Sprintf(" (%d)", paper.Year))
		}
		if paper.Abstract != "" {
			abstract := paper.Abstract
			if len(abstract) > contextAbstractLimit {
				abstract = abstract[:contextAbstractLimit]
			}
			b.WriteString("\n   Abstract: " + abstract + "...")
		}
		b.WriteString("\n")
	}
	return b.String()
}
