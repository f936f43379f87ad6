// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/survey-engine/pkg/types"
)

func TestFallbackVectorDeterministic(t *testing.T) {
	a := fallbackVector("transformer architectures")
	b := fallbackVector("transformer architectures")
	c := fallbackVector("Transformer architectures")

	assert.Len(t, a, Dimension)
	assert.Equal(t, a, b, "identical input must yield bit-identical vectors")
	assert.NotEqual(t, a, c, "different input should yield different vectors")
}

func TestFallbackVectorRange(t *testing.T) {
	vec := fallbackVector("some chunk of text")
	for i, v := range vec {
		if v < -1 || v > 1 {
			t.Fatalf("component %d = %v outside [-1, 1]", i, v)
		}
	}
}

func TestNewClientFallbackWhenUnconfigured(t *testing.T) {
	client, err := NewClient(types.EmbeddingConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, client.Degraded())

	vectors, err := client.Embed(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, fallbackVector("alpha"), vectors[0])
	assert.Equal(t, fallbackVector("beta"), vectors[1])
}

// countingProvider records batch sizes and returns index-tagged vectors so
// tests can verify ordering across batches.
type countingProvider struct {
	batches [][]string
	fail    bool
}

func (p *countingProvider) Name() string { return "counting" }

func (p *countingProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if p.fail {
		return nil, fmt.Errorf("provider down")
	}
	p.batches = append(p.batches, texts)
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = []float32{float32(len(text))}
	}
	return vectors, nil
}

func TestEmbedBatchesAndPreservesOrder(t *testing.T) {
	provider := &countingProvider{}
	client := &Client{provider: provider, batchSize: 2, logger: zap.NewNop()}

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	vectors, err := client.Embed(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, len(texts))

	for i, text := range texts {
		assert.Equal(t, []float32{float32(len(text))}, vectors[i], "vector %d out of order", i)
	}

	require.Len(t, provider.batches, 3)
	assert.Len(t, provider.batches[0], 2)
	assert.Len(t, provider.batches[1], 2)
	assert.Len(t, provider.batches[2], 1)
}

func TestEmbedCacheSkipsProvider(t *testing.T) {
	provider := &countingProvider{}
	client, err := NewClient(types.EmbeddingConfig{CacheSize: 16}, zap.NewNop())
	require.NoError(t, err)
	client.provider = provider
	client.degraded = false

	_, err = client.Embed(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, provider.batches, 1)

	// Second call is fully served from cache.
	vectors, err := client.Embed(context.Background(), []string{"beta", "alpha"})
	require.NoError(t, err)
	require.Len(t, provider.batches, 1, "cached texts must not hit the provider")
	assert.Equal(t, []float32{4}, vectors[0])
	assert.Equal(t, []float32{5}, vectors[1])
}

func TestEmbedProviderError(t *testing.T) {
	client := &Client{provider: &countingProvider{fail: true}, batchSize: 10, logger: zap.NewNop()}

	_, err := client.Embed(context.Background(), []string{"alpha"})
	assert.ErrorContains(t, err, "provider down")
}

func TestHTTPProviderEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)

		// Respond out of order; the client must reassemble by index.
		resp := map[string]any{
			"data": []map[string]any{
				{"index": 1, "embedding": []float32{2}},
				{"index": 0, "embedding": []float32{1}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider := newHTTPProvider(types.EmbeddingConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "test-model",
	})

	vectors, err := provider.Embed(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{1}, vectors[0])
	assert.Equal(t, []float32{2}, vectors[1])
}

func TestHTTPProviderServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	}))
	defer server.Close()

	provider := newHTTPProvider(types.EmbeddingConfig{BaseURL: server.URL})
	_, err := provider.Embed(context.Background(), []string{"text"})
	assert.ErrorContains(t, err, "HTTP 402")
}

func TestHTTPProviderCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{}})
	}))
	defer server.Close()

	provider := newHTTPProvider(types.EmbeddingConfig{BaseURL: server.URL})
	_, err := provider.Embed(context.Background(), []string{"text"})
	assert.ErrorContains(t, err, "0 vectors for 1 inputs")
}
