// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the survey-engine CLI. The pipeline
// surface is a set of subcommands: run generates a survey end to end,
// search queries the paper sources directly, and status/export/delete
// operate on stored runs. See docs/ARCHITECTURE § CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/survey-engine/internal/secrets"
	"github.com/pdiddy/survey-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

var rootCmd = &cobra.Command{
	Use:   "survey-engine",
	Short: "Automated literature survey generation",
	Long: `survey-engine generates literature surveys from a research topic. It
aggregates papers from arXiv, Semantic Scholar, and PubMed, ingests uploaded
documents, embeds everything into a vector store, and drives a rotating pool
of completion models to write the survey section by section.

Each operation is a subcommand: run executes the full pipeline for a topic,
search queries the paper sources directly, and status, export, and delete
operate on stored survey runs.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./survey-engine.yaml or ~/.config/survey-engine/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("survey-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "survey-engine"))
		}
	}

	viper.SetEnvPrefix("SURVEY_ENGINE")
	viper.AutomaticEnv()

	viper.SetDefault("search.max_results", 20)
	viper.SetDefault("search.enable_arxiv", true)
	viper.SetDefault("search.enable_semantic_scholar", true)
	viper.SetDefault("search.enable_pubmed", true)
	viper.SetDefault("embedding.batch_size", 100)
	viper.SetDefault("embedding.cache_size", 4096)
	viper.SetDefault("vectorstore.base_url", "http://localhost:8000")
	viper.SetDefault("completion.base_url", "https://api.groq.com/openai/v1")
	viper.SetDefault("completion.models", []string{
		"meta-llama/llama-4-maverick-17b-128e-instruct",
		"llama-3.3-70b-versatile",
		"qwen/qwen3-32b",
		"moonshotai/kimi-k2-instruct-0905",
		"openai/gpt-oss-120b",
	})
	viper.SetDefault("generation.section_delay", "1s")
	viper.SetDefault("generation.max_context_papers", 20)
	viper.SetDefault("store.db_path", "surveys.db")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newLogger() (*zap.Logger, error) {
	verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func searchConfig() types.SearchConfig {
	return types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "survey-engine/" + version,
		},
		MaxResults:            viper.GetInt("search.max_results"),
		EnableArxiv:           viper.GetBool("search.enable_arxiv"),
		EnableSemanticScholar: viper.GetBool("search.enable_semantic_scholar"),
		EnablePubMed:          viper.GetBool("search.enable_pubmed"),
		SemanticScholarAPIKey: loadedSecrets["semantic-scholar-api-key"],
		DedupThreshold:        viper.GetFloat64("search.dedup_threshold"),
	}
}

func embeddingConfig() types.EmbeddingConfig {
	return types.EmbeddingConfig{
		BaseURL:   viper.GetString("embedding.base_url"),
		APIKey:    loadedSecrets["embedding-api-key"],
		Model:     viper.GetString("embedding.model"),
		BatchSize: viper.GetInt("embedding.batch_size"),
		CacheSize: viper.GetInt("embedding.cache_size"),
	}
}

func vectorStoreConfig() types.VectorStoreConfig {
	return types.VectorStoreConfig{
		BaseURL: viper.GetString("vectorstore.base_url"),
	}
}

// completionConfig pairs the loaded credentials with the configured models
// round-robin, so every model is reachable even with fewer keys than models.
func completionConfig() (types.CompletionConfig, error) {
	credentials := secrets.Credentials(loadedSecrets)
	if len(credentials) == 0 {
		return types.CompletionConfig{}, fmt.Errorf(
			"no completion credentials found: add groq-api-key to .secrets/")
	}

	models := viper.GetStringSlice("completion.models")
	if len(models) == 0 {
		return types.CompletionConfig{}, fmt.Errorf("completion.models is empty")
	}

	pool := make([]types.PoolEntry, 0, len(models))
	for i, model := range models {
		pool = append(pool, types.PoolEntry{
			Credential: credentials[i%len(credentials)],
			Model:      model,
		})
	}

	return types.CompletionConfig{
		BaseURL: viper.GetString("completion.base_url"),
		Pool:    pool,
	}, nil
}

func generationConfig() types.GenerationConfig {
	return types.GenerationConfig{
		SectionDelay:     viper.GetDuration("generation.section_delay"),
		MaxContextPapers: viper.GetInt("generation.max_context_papers"),
	}
}

func storeConfig() types.StoreConfig {
	return types.StoreConfig{DBPath: viper.GetString("store.db_path")}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
