// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"context"
	"math"
)

// fallbackProvider computes deterministic pseudo-vectors from a rolling hash
// of the input text. Identical input always yields a bit-identical vector.
// The vectors carry no semantic meaning; nearest-neighbor results over them
// are arbitrary.
type fallbackProvider struct{}

func (f *fallbackProvider) Name() string { return "fallback" }

func (f *fallbackProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = fallbackVector(text)
	}
	return vectors, nil
}

// fallbackVector expands a 32-bit rolling hash of text into Dimension
// values via sin(hash*(i+1)).
func fallbackVector(text string) []float32 {
	var hash int32
	for _, r := range text {
		hash = hash*31 + int32(r)
	}

	vec := make([]float32, Dimension)
	for i := range vec {
		vec[i] = float32(math.Sin(float64(hash) * float64(i+1)))
	}
	return vec
}
