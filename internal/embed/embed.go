// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embed turns text into fixed-dimension vectors for the vector
// store. A configured provider is used when available; otherwise the client
// degrades to deterministic pseudo-vectors that carry no semantic meaning.
// See docs/ARCHITECTURE § Embedding.
package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/pdiddy/survey-engine/pkg/types"
)

// Dimension is the fixed embedding vector length.
const Dimension = 1536

// defaultBatchSize bounds texts per provider request.
const defaultBatchSize = 100

// Provider converts one batch of texts into vectors, order-preserving.
type Provider interface {
	Name() string
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Client batches embedding requests and caches results. Construct with
// NewClient.
type Client struct {
	provider  Provider
	batchSize int
	degraded  bool
	logger    *zap.Logger
	warnOnce  sync.Once
	cache     *lru.Cache[string, []float32]
}

// NewClient builds an embedding client from config. An empty BaseURL selects
// the deterministic fallback embedder; the degradation is logged once on
// first use, never silently.
func NewClient(cfg types.EmbeddingConfig, logger *zap.Logger) (*Client, error) {
	c := &Client{
		batchSize: cfg.BatchSize,
		logger:    logger,
	}
	if c.batchSize <= 0 {
		c.batchSize = defaultBatchSize
	}

	if cfg.BaseURL == "" {
		c.provider = &fallbackProvider{}
		c.degraded = true
	} else {
		c.provider = newHTTPProvider(cfg)
	}

	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, []float32](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating embedding cache: %w", err)
		}
		c.cache = cache
	}

	return c, nil
}

// Degraded reports whether the client is producing fallback pseudo-vectors.
// Similarity queries over degraded vectors return arbitrary results.
func (c *Client) Degraded() bool {
	return c.degraded
}

// Embed returns one Dimension-length vector per input text, in input order.
// Requests to the provider are batched in groups of at most the configured
// batch size.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if c.degraded {
		c.warnOnce.Do(func() {
			c.logger.Warn("no embedding provider configured, using deterministic fallback vectors",
				zap.String("provider", c.provider.Name()))
		})
	}

	out := make([][]float32, len(texts))

	// Serve cache hits and collect the misses.
	var missIdx []int
	var missTexts []string
	for i, text := range texts {
		if v, ok := c.cacheGet(text); ok {
			out[i] = v
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	for start := 0; start < len(missTexts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(missTexts) {
			end = len(missTexts)
		}

		vectors, err := c.provider.Embed(ctx, missTexts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embedding batch: %w", err)
		}
		if len(vectors) != end-start {
			return nil, fmt.Errorf("provider returned %d vectors for %d texts", len(vectors), end-start)
		}

		for j, v := range vectors {
			i := missIdx[start+j]
			out[i] = v
			c.cachePut(texts[i], v)
		}
	}

	return out, nil
}

func (c *Client) cacheGet(text string) ([]float32, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(c.cacheKey(text))
}

func (c *Client) cachePut(text string, v []float32) {
	if c.cache == nil {
		return
	}
	c.cache.Add(c.cacheKey(text), v)
}

func (c *Client) cacheKey(text string) string {
	h := sha256.Sum256([]byte(c.provider.Name() + "\x00" + text))
	return hex.EncodeToString(h[:])
}
