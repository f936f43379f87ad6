// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/survey-engine/internal/report"
	"github.com/pdiddy/survey-engine/internal/store"
	"github.com/pdiddy/survey-engine/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export [survey-id]",
	Short: "Write a completed survey to a Markdown file",
	Long: `Export writes the generated survey document, with an APA reference
list appended, to a file. Only completed surveys can be exported.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("out", "", "output file (default <survey-id>.md)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	db, err := store.NewStore(storeConfig())
	if err != nil {
		return err
	}
	defer db.Close()

	survey, err := db.Load(context.Background(), args[0])
	if err != nil {
		return err
	}
	if survey.Status != types.StatusCompleted || survey.Generated == nil {
		return fmt.Errorf("survey %s is %s, only completed surveys can be exported",
			survey.ID, survey.Status)
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = survey.ID + ".md"
	}

	if err := writeSurvey(survey, out); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Survey written to %s\n", out)
	return nil
}

// writeSurvey renders the survey document plus its reference list.
func writeSurvey(survey *types.Survey, path string) error {
	var b strings.Builder
	b.WriteString(survey.Generated.Content)
	if refs := report.References(survey.RetrievedPapers); refs != "" {
		b.WriteString("\n" + refs)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing survey to %s: %w", path, err)
	}
	return nil
}
