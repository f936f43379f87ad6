// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/survey-engine/internal/store"
	"github.com/pdiddy/survey-engine/pkg/types"
)

var statusCmd = &cobra.Command{
	Use:   "status [survey-id]",
	Short: "Show stored survey runs",
	Long: `Status without arguments lists stored surveys newest first. With a
survey id it shows the run's current stage, progress, and stage outputs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().String("status", "", "filter the listing by status (pending, processing, completed, failed)")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	db, err := store.NewStore(storeConfig())
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()

	if len(args) == 0 {
		filter, _ := cmd.Flags().GetString("status")
		surveys, err := db.List(ctx, types.SurveyStatus(filter))
		if err != nil {
			return err
		}
		printSurveyList(surveys)
		return nil
	}

	survey, err := db.Load(ctx, args[0])
	if err != nil {
		return err
	}
	printSurvey(survey)
	return nil
}

func printSurveyList(surveys []types.Survey) {
	if len(surveys) == 0 {
		fmt.Println("No surveys stored.")
		return
	}

	fmt.Printf("%-36s  %-10s  %-8s  %s\n", "ID", "Status", "Progress", "Topic")
	fmt.Println(strings.Repeat("-", 80))
	for _, s := range surveys {
		topic := s.Topic
		if len(topic) > 40 {
			topic = topic[:37] + "..."
		}
		fmt.Printf("%-36s  %-10s  %7d%%  %s\n", s.ID, s.Status, s.Progress, topic)
	}
	fmt.Printf("\n%d surveys\n", len(surveys))
}

func printSurvey(s *types.Survey) {
	fmt.Printf("Survey:      %s\n", s.ID)
	fmt.Printf("Topic:       %s\n", s.Topic)
	if s.AdditionalInfo != "" {
		fmt.Printf("Info:        %s\n", s.AdditionalInfo)
	}
	fmt.Printf("Status:      %s\n", s.Status)
	if s.CurrentAgent != "" {
		fmt.Printf("Stage:       %s (%d%%)\n", s.CurrentAgent, s.Progress)
	}
	fmt.Printf("Created:     %s\n", s.CreatedAt.Format("2006-01-02 15:04:05"))
	if !s.CompletedAt.IsZero() {
		fmt.Printf("Finished:    %s (%ds)\n", s.CompletedAt.Format("2006-01-02 15:04:05"), s.ProcessingTime)
	}
	if s.ErrorMessage != "" {
		fmt.Printf("Error:       %s\n", s.ErrorMessage)
	}
	fmt.Printf("Documents:   %d\n", len(s.Documents))
	fmt.Printf("Papers:      %d\n", len(s.RetrievedPapers))
	if s.Generated != nil {
		fmt.Printf("Generated:   %d words, %d sections\n", s.Generated.WordCount, len(s.Generated.Sections))
	}
	if s.Verification != nil {
		fmt.Printf("Verified:    confidence %d%%\n", s.Verification.ConfidenceScore)
	}
	if s.Plagiarism != nil {
		fmt.Printf("Originality: %.1f%%\n", s.Plagiarism.OriginalityScore)
	}

	if len(s.RetrievedPapers) > 0 {
		fmt.Println()
		printPaperDigest(s.RetrievedPapers)
	}
}

func printPaperDigest(papers []types.Paper) {
	fmt.Println("Retrieved papers:")
	for i, p := range papers {
		if i >= 10 {
			fmt.Fprintf(os.Stdout, "  ... and %d more\n", len(papers)-10)
			break
		}
		year := "n.d."
		if p.Year > 0 {
			year = fmt.Sprintf("%d", p.Year)
		}
		fmt.Printf("  %2d. %s (%s, %s)\n", i+1, p.Title, year, p.Source)
	}
}
