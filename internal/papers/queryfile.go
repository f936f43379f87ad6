// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package papers

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/survey-engine/pkg/types"
)

// QueryFile is the on-disk representation of a paper search and its results.
// A search can be saved to a file and reloaded later without re-querying
// the academic APIs.
type QueryFile struct {
	Query   string          `yaml:"query"`
	Config  QueryFileConfig `yaml:"config"`
	Results []types.Paper   `yaml:"results"`
	Summary QuerySummary    `yaml:"summary"`
}

// QueryFileConfig stores the search configuration that produced the results.
type QueryFileConfig struct {
	MaxResults     int      `yaml:"max_results"`
	DedupThreshold float64  `yaml:"dedup_threshold"`
	Sources        []string `yaml:"sources"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total     int       `yaml:"total"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves a query and its aggregated results to a YAML file.
func WriteQueryFile(path, query string, sources []Source, cfg types.SearchConfig, results []types.Paper) error {
	names := make([]string, 0, len(sources))
	for _, src := range sources {
		names = append(names, src.Name())
	}

	threshold := cfg.DedupThreshold
	if threshold <= 0 {
		threshold = DefaultDedupThreshold
	}

	qf := QueryFile{
		Query: query,
		Config: QueryFileConfig{
			MaxResults:     cfg.MaxResults,
			DedupThreshold: threshold,
			Sources:        names,
		},
		Results: results,
		Summary: QuerySummary{
			Total:     len(results),
			Timestamp: time.Now(),
		},
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}
