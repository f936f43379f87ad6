// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/survey-engine/internal/completion"
	"github.com/pdiddy/survey-engine/internal/container"
	"github.com/pdiddy/survey-engine/internal/embed"
	"github.com/pdiddy/survey-engine/internal/extract"
	"github.com/pdiddy/survey-engine/internal/papers"
	"github.com/pdiddy/survey-engine/internal/pipeline"
	"github.com/pdiddy/survey-engine/internal/store"
	"github.com/pdiddy/survey-engine/internal/vectorstore"
	"github.com/pdiddy/survey-engine/pkg/types"
)

const (
	minTopicLength = 10
	maxInfoLength  = 1000
	maxDocuments   = 10
)

var runCmd = &cobra.Command{
	Use:   "run [topic]",
	Short: "Generate a literature survey for a topic",
	Long: `Run executes the full survey pipeline: uploaded documents are extracted
and embedded, papers are aggregated from the enabled sources, and the survey
is generated section by section. The run is checkpointed after every stage;
use status to follow a stored run and export to write its output.`,
	Args: cobra.ExactArgs(1),
	RunE: runSurvey,
}

func init() {
	runCmd.Flags().String("info", "", "additional context refining the topic (max 1000 characters)")
	runCmd.Flags().StringArray("doc", nil, "document to ingest (pdf, docx, doc, txt; repeatable, max 10)")
	runCmd.Flags().String("output", "", "write the generated survey to this file when the run completes")

	rootCmd.AddCommand(runCmd)
}

func runSurvey(cmd *cobra.Command, args []string) error {
	topic := strings.TrimSpace(args[0])
	info, _ := cmd.Flags().GetString("info")
	docPaths, _ := cmd.Flags().GetStringArray("doc")

	if len(topic) < minTopicLength {
		return fmt.Errorf("topic must be at least %d characters", minTopicLength)
	}
	if len(info) > maxInfoLength {
		return fmt.Errorf("additional info must be at most %d characters", maxInfoLength)
	}
	if len(docPaths) > maxDocuments {
		return fmt.Errorf("at most %d documents can be ingested per run", maxDocuments)
	}

	documents, err := collectDocuments(docPaths)
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	db, err := store.NewStore(storeConfig())
	if err != nil {
		return err
	}
	defer db.Close()

	embedder, err := embed.NewClient(embeddingConfig(), logger)
	if err != nil {
		return err
	}

	completionCfg, err := completionConfig()
	if err != nil {
		return err
	}
	completer, err := completion.NewClient(completionCfg, logger)
	if err != nil {
		return err
	}

	searchCfg := searchConfig()

	orchestrator := pipeline.NewOrchestrator(pipeline.Deps{
		Store:     db,
		Extractor: extract.NewExtractor(legacyConverter(ctx, logger)),
		Sources:   papers.DefaultSources(searchCfg),
		Embedder:  embedder,
		Vectors:   vectorstore.NewGateway(ctx, vectorStoreConfig(), logger),
		Completer: completer,
		Logger:    logger,
		SearchCfg: searchCfg,
		GenCfg:    generationConfig(),
	})

	survey := &types.Survey{
		Topic:          topic,
		AdditionalInfo: info,
		Documents:      documents,
	}
	if err := db.Create(ctx, survey); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Survey %s created\n", survey.ID)

	if err := orchestrator.Run(ctx, survey); err != nil {
		return fmt.Errorf("survey %s failed: %w", survey.ID, err)
	}

	fmt.Printf("Survey %s completed in %ds (%d papers, %d words)\n",
		survey.ID, survey.ProcessingTime,
		len(survey.RetrievedPapers), survey.Generated.WordCount)

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		if err := writeSurvey(survey, output); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Survey written to %s\n", output)
	}
	return nil
}

// legacyConverter wires the markitdown container when a runtime is present.
// Without one, legacy .doc files fail per-file and are skipped.
func legacyConverter(ctx context.Context, logger *zap.Logger) extract.LegacyConverter {
	rt, err := container.DetectRuntime()
	if err != nil {
		logger.Warn("no container runtime, legacy .doc files will be skipped", zap.Error(err))
		return nil
	}
	converter, err := extract.NewMarkitdownConverter(ctx, rt)
	if err != nil {
		logger.Warn("markitdown image unavailable, legacy .doc files will be skipped", zap.Error(err))
		return nil
	}
	return converter
}

// collectDocuments validates the uploads and derives their declared types.
func collectDocuments(paths []string) ([]types.Document, error) {
	var documents []types.Document
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", path, err)
		}

		mimeType, err := documentMimeType(path)
		if err != nil {
			return nil, err
		}

		documents = append(documents, types.Document{
			Filename:     filepath.Base(path),
			OriginalName: filepath.Base(path),
			MimeType:     mimeType,
			Path:         path,
			Size:         info.Size(),
		})
	}
	return documents, nil
}

func documentMimeType(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf", nil
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document", nil
	case ".doc":
		return "application/msword", nil
	case ".txt", ".md":
		return "text/plain", nil
	default:
		return "", fmt.Errorf("unsupported document type: %s (want pdf, docx, doc, txt, or md)", path)
	}
}
