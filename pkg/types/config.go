// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "survey-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the paper retrieval stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults caps results per source (default 20; PubMed uses 15).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// EnableArxiv controls whether the arXiv adapter runs.
	EnableArxiv bool `json:"enable_arxiv" yaml:"enable_arxiv"`

	// EnableSemanticScholar controls whether the Semantic Scholar adapter runs.
	EnableSemanticScholar bool `json:"enable_semantic_scholar" yaml:"enable_semantic_scholar"`

	// EnablePubMed controls whether the PubMed adapter runs.
	EnablePubMed bool `json:"enable_pubmed" yaml:"enable_pubmed"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// DedupThreshold is the Jaccard similarity above which a title is a
	// duplicate (default 0.85). Similarity strictly greater drops.
	DedupThreshold float64 `json:"dedup_threshold" yaml:"dedup_threshold"`
}

// EmbeddingConfig holds settings for the embedding client.
type EmbeddingConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is an OpenAI-compatible embeddings endpoint base
	// (e.g. "https://api.openai.com/v1"). Empty selects the deterministic
	// fallback embedder.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// APIKey authenticates against the embedding provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Model is the embedding model identifier.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// BatchSize caps texts per provider request (default 100).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// CacheSize is the LRU embedding cache capacity. Zero disables caching.
	CacheSize int `json:"cache_size" yaml:"cache_size"`
}

// VectorStoreConfig holds settings for the vector store gateway.
type VectorStoreConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the vector database endpoint (default "http://localhost:8000").
	BaseURL string `json:"base_url" yaml:"base_url"`
}

// PoolEntry pairs one credential with one model. The completion client
// cycles through entries round-robin.
type PoolEntry struct {
	// Credential is the API key used for this entry.
	Credential string `json:"credential" yaml:"credential"`

	// Model is the model identifier requested with this credential.
	Model string `json:"model" yaml:"model"`
}

// CompletionConfig holds settings for the text generation client.
type CompletionConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is an OpenAI-compatible chat completion endpoint base
	// (e.g. "https://api.groq.com/openai/v1").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Pool is the ordered rotation pool of credential/model pairs.
	Pool []PoolEntry `json:"pool" yaml:"pool"`

	// MaxAttempts caps attempts per logical completion call (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`
}

// GenerationConfig holds settings for the generation stage.
type GenerationConfig struct {
	// SectionDelay is the pause between consecutive section completions
	// (default 1s). Respects provider throughput limits.
	SectionDelay time.Duration `json:"section_delay" yaml:"section_delay"`

	// MaxContextPapers caps papers included in the shared context (default 20).
	MaxContextPapers int `json:"max_context_papers" yaml:"max_context_papers"`
}

// StoreConfig holds settings for survey persistence.
type StoreConfig struct {
	// DBPath is the SQLite database file path (default "surveys.db").
	DBPath string `json:"db_path" yaml:"db_path"`
}
