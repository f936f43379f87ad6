// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/survey-engine/internal/papers"
	"github.com/pdiddy/survey-engine/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the paper sources for a topic",
	Long: `Search queries the enabled academic sources (arXiv, Semantic Scholar,
PubMed) for papers matching the query. Results are unified across sources
and deduplicated by title similarity; fetch order decides ties.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("max-results", 0, "maximum results per source (default from config)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().String("save", "", "save the query and results to a YAML file")
	searchCmd.Flags().String("from-file", "", "print results from a saved query file instead of searching")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("query must not be empty")
	}

	if fromFile, _ := cmd.Flags().GetString("from-file"); fromFile != "" {
		qf, err := papers.ReadQueryFile(fromFile)
		if err != nil {
			return err
		}
		return printResults(cmd, qf.Results)
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	cfg := searchConfig()
	if maxResults, _ := cmd.Flags().GetInt("max-results"); maxResults > 0 {
		cfg.MaxResults = maxResults
	}

	sources := papers.DefaultSources(cfg)
	results := papers.Aggregate(context.Background(), query, sources, cfg, logger)

	if save, _ := cmd.Flags().GetString("save"); save != "" {
		if err := papers.WriteQueryFile(save, query, sources, cfg, results); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Query saved to %s\n", save)
	}
	return printResults(cmd, results)
}

func printResults(cmd *cobra.Command, results []types.Paper) error {
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return papers.FormatJSON(results, os.Stdout)
	}
	papers.FormatTable(results, os.Stdout)
	return nil
}
