// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vectorstore is a thin gateway to a Chroma-compatible vector
// database. The store is an optional capability: if the database cannot be
// reached the gateway degrades to no-ops and the pipeline proceeds without
// similarity search. See docs/ARCHITECTURE § Vector store.
package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/survey-engine/pkg/types"
)

// DefaultBaseURL is the conventional local Chroma endpoint.
const DefaultBaseURL = "http://localhost:8000"

// Record is one stored item: a chunk of text, its embedding, and metadata.
type Record struct {
	// ID uniquely identifies the record within its collection.
	ID string

	// Document is the raw chunk text.
	Document string

	// Embedding is the chunk's vector.
	Embedding []float32

	// Metadata carries flat key/value chunk attributes.
	Metadata map[string]any
}

// QueryResult holds nearest-neighbor matches for one query embedding.
// All slices share the same length and ordering.
type QueryResult struct {
	IDs       []string
	Documents []string
	Metadatas []map[string]any
	Distances []float64
}

// Gateway talks to one Chroma-compatible server. Construct with NewGateway;
// the zero value is unusable.
type Gateway struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger

	available atomic.Bool
	warnOnce  sync.Once

	mu          sync.Mutex
	collections map[string]string // name -> server-side collection id
}

// NewGateway probes the server with a heartbeat and returns a gateway. A
// failed probe does not error; the gateway starts unavailable and every
// operation short-circuits.
func NewGateway(ctx context.Context, cfg types.VectorStoreConfig, logger *zap.Logger) *Gateway {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	g := &Gateway{
		baseURL:     baseURL,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
		collections: make(map[string]string),
	}

	if err := g.heartbeat(ctx); err != nil {
		g.markUnavailable(err)
	} else {
		g.available.Store(true)
		logger.Info("vector store connected", zap.String("base_url", baseURL))
	}
	return g
}

// Available reports whether vector operations are currently being performed.
func (g *Gateway) Available() bool {
	return g.available.Load()
}

func (g *Gateway) heartbeat(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/api/v1/heartbeat", nil)
	if err != nil {
		return fmt.Errorf("creating heartbeat request: %w", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("heartbeat: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("heartbeat returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// markUnavailable flips the gateway off and logs the degradation once.
// Later failures are silent; the single warning covers the remaining run.
func (g *Gateway) markUnavailable(err error) {
	g.available.Store(false)
	g.warnOnce.Do(func() {
		g.logger.Warn("vector store not available, vector operations will be skipped",
			zap.String("base_url", g.baseURL), zap.Error(err))
	})
}

// EnsureCollection creates the named collection if it does not exist and
// returns true when the collection is ready for use.
func (g *Gateway) EnsureCollection(ctx context.Context, name string) bool {
	if !g.available.Load() {
		return false
	}
	_, err := g.collectionID(ctx, name)
	if err != nil {
		g.markUnavailable(err)
		return false
	}
	return true
}

func (g *Gateway) collectionID(ctx context.Context, name string) (string, error) {
	g.mu.Lock()
	if id, ok := g.collections[name]; ok {
		g.mu.Unlock()
		return id, nil
	}
	g.mu.Unlock()

	body := map[string]any{
		"name":          name,
		"get_or_create": true,
		"metadata":      map[string]any{"description": "survey documents and papers"},
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := g.post(ctx, "/api/v1/collections", body, &created); err != nil {
		return "", fmt.Errorf("ensuring collection %q: %w", name, err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("ensuring collection %q: server returned no id", name)
	}

	g.mu.Lock()
	g.collections[name] = created.ID
	g.mu.Unlock()
	return created.ID, nil
}

// Add stores records in the named collection. It reports whether the records
// were stored; false means the store is unavailable and the caller should
// proceed without it.
func (g *Gateway) Add(ctx context.Context, collection string, records []Record) bool {
	if !g.available.Load() || len(records) == 0 {
		return false
	}

	id, err := g.collectionID(ctx, collection)
	if err != nil {
		g.markUnavailable(err)
		return false
	}

	ids := make([]string, len(records))
	documents := make([]string, len(records))
	embeddings := make([][]float32, len(records))
	metadatas := make([]map[string]any, len(records))
	for i, r := range records {
		ids[i] = r.ID
		documents[i] = r.Document
		embeddings[i] = r.Embedding
		metadatas[i] = r.Metadata
	}

	body := map[string]any{
		"ids":        ids,
		"documents":  documents,
		"embeddings": embeddings,
		"metadatas":  metadatas,
	}
	if err := g.post(ctx, "/api/v1/collections/"+id+"/add", body, nil); err != nil {
		g.markUnavailable(fmt.Errorf("adding %d records to %q: %w", len(records), collection, err))
		return false
	}

	g.logger.Debug("stored records",
		zap.String("collection", collection), zap.Int("count", len(records)))
	return true
}

// Query returns up to n nearest neighbors of the embedding. When the store
// is unavailable the result is empty, never an error.
func (g *Gateway) Query(ctx context.Context, collection string, embedding []float32, n int) QueryResult {
	if !g.available.Load() {
		return QueryResult{}
	}

	id, err := g.collectionID(ctx, collection)
	if err != nil {
		g.markUnavailable(err)
		return QueryResult{}
	}

	body := map[string]any{
		"query_embeddings": [][]float32{embedding},
		"n_results":        n,
		"include":          []string{"documents", "metadatas", "distances"},
	}
	var raw struct {
		IDs       [][]string         `json:"ids"`
		Documents [][]string         `json:"documents"`
		Metadatas [][]map[string]any `json:"metadatas"`
		Distances [][]float64        `json:"distances"`
	}
	if err := g.post(ctx, "/api/v1/collections/"+id+"/query", body, &raw); err != nil {
		g.markUnavailable(fmt.Errorf("querying %q: %w", collection, err))
		return QueryResult{}
	}

	var result QueryResult
	if len(raw.IDs) > 0 {
		result.IDs = raw.IDs[0]
	}
	if len(raw.Documents) > 0 {
		result.Documents = raw.Documents[0]
	}
	if len(raw.Metadatas) > 0 {
		result.Metadatas = raw.Metadatas[0]
	}
	if len(raw.Distances) > 0 {
		result.Distances = raw.Distances[0]
	}
	return result
}

// DeleteCollection removes the named collection and reports whether the
// deletion was performed.
func (g *Gateway) DeleteCollection(ctx context.Context, name string) bool {
	if !g.available.Load() {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, g.baseURL+"/api/v1/collections/"+name, nil)
	if err != nil {
		g.markUnavailable(fmt.Errorf("deleting collection %q: %w", name, err))
		return false
	}
	resp, err := g.client.Do(req)
	if err != nil {
		g.markUnavailable(fmt.Errorf("deleting collection %q: %w", name, err))
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		g.markUnavailable(fmt.Errorf("deleting collection %q: HTTP %d", name, resp.StatusCode))
		return false
	}

	g.mu.Lock()
	delete(g.collections, name)
	g.mu.Unlock()
	return true
}

func (g *Gateway) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, msg)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
