// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vectorstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/survey-engine/pkg/types"
)

// chromaStub mimics the Chroma v1 REST surface well enough for the gateway.
type chromaStub struct {
	mux        *http.ServeMux
	addCalls   int
	lastAdd    map[string]any
	queryReply map[string]any
}

func newChromaStub() *chromaStub {
	s := &chromaStub{mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /api/v1/heartbeat", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]int64{"nanosecond heartbeat": 1})
	})
	s.mux.HandleFunc("POST /api/v1/collections", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]any{"id": "col-1", "name": body["name"]})
	})
	s.mux.HandleFunc("POST /api/v1/collections/col-1/add", func(w http.ResponseWriter, r *http.Request) {
		s.addCalls++
		json.NewDecoder(r.Body).Decode(&s.lastAdd)
		w.WriteHeader(http.StatusCreated)
	})
	s.mux.HandleFunc("POST /api/v1/collections/col-1/query", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(s.queryReply)
	})
	s.mux.HandleFunc("DELETE /api/v1/collections/{name}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return s
}

func TestGatewayRoundTrip(t *testing.T) {
	stub := newChromaStub()
	stub.queryReply = map[string]any{
		"ids":       [][]string{{"doc_s1_0"}},
		"documents": [][]string{{"chunk text"}},
		"metadatas": [][]map[string]any{{{"source_type": "document"}}},
		"distances": [][]float64{{0.12}},
	}
	server := httptest.NewServer(stub.mux)
	defer server.Close()

	ctx := context.Background()
	g := NewGateway(ctx, types.VectorStoreConfig{BaseURL: server.URL}, zap.NewNop())
	require.True(t, g.Available())

	assert.True(t, g.EnsureCollection(ctx, "survey_s1"))

	ok := g.Add(ctx, "survey_s1", []Record{{
		ID:        "doc_s1_0",
		Document:  "chunk text",
		Embedding: []float32{0.1, 0.2},
		Metadata:  map[string]any{"source_type": "document"},
	}})
	require.True(t, ok)
	assert.Equal(t, 1, stub.addCalls)
	assert.Equal(t, []any{"doc_s1_0"}, stub.lastAdd["ids"])

	res := g.Query(ctx, "survey_s1", []float32{0.1, 0.2}, 5)
	require.Len(t, res.IDs, 1)
	assert.Equal(t, "doc_s1_0", res.IDs[0])
	assert.Equal(t, "chunk text", res.Documents[0])
	assert.InDelta(t, 0.12, res.Distances[0], 1e-9)

	assert.True(t, g.DeleteCollection(ctx, "survey_s1"))
}

func TestGatewayUnavailableOnFailedHeartbeat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx := context.Background()
	g := NewGateway(ctx, types.VectorStoreConfig{BaseURL: server.URL}, zap.NewNop())
	assert.False(t, g.Available())

	// Every operation short-circuits without touching the server.
	assert.False(t, g.EnsureCollection(ctx, "survey_s1"))
	assert.False(t, g.Add(ctx, "survey_s1", []Record{{ID: "x"}}))
	assert.False(t, g.DeleteCollection(ctx, "survey_s1"))

	res := g.Query(ctx, "survey_s1", []float32{1}, 5)
	assert.Empty(t, res.IDs)
	assert.Empty(t, res.Documents)
	assert.Empty(t, res.Distances)
}

func TestGatewayFlipsUnavailableOnRuntimeFailure(t *testing.T) {
	healthy := true
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/heartbeat", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /api/v1/collections", func(w http.ResponseWriter, _ *http.Request) {
		if !healthy {
			http.Error(w, "gone", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"id": "col-1"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	ctx := context.Background()
	g := NewGateway(ctx, types.VectorStoreConfig{BaseURL: server.URL}, zap.NewNop())
	require.True(t, g.Available())

	healthy = false
	assert.False(t, g.EnsureCollection(ctx, "survey_other"))
	assert.False(t, g.Available())

	// Once degraded the gateway stays degraded for the rest of the run.
	healthy = true
	assert.False(t, g.Add(ctx, "survey_other", []Record{{ID: "x"}}))
}

func TestGatewayAddEmptyRecords(t *testing.T) {
	stub := newChromaStub()
	server := httptest.NewServer(stub.mux)
	defer server.Close()

	ctx := context.Background()
	g := NewGateway(ctx, types.VectorStoreConfig{BaseURL: server.URL}, zap.NewNop())
	assert.False(t, g.Add(ctx, "survey_s1", nil))
	assert.Equal(t, 0, stub.addCalls)
	assert.True(t, g.Available())
}

func TestGatewayUnreachableServer(t *testing.T) {
	cfg := types.VectorStoreConfig{BaseURL: "http://127.0.0.1:1"}
	g := NewGateway(context.Background(), cfg, zap.NewNop())
	assert.False(t, g.Available())
}
