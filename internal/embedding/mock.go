package embedding

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/duonguwu/ai-challenge/pkg/utils"
)

// MockEmbedder is a deterministic embedder for tests. It returns a fixed-
// dimension unit vector derived from the input hash, so the same text or
// image always gets the same embedding.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder returns an embedder producing deterministic embeddings of
// the given dimensionality.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 512
	}
	return &MockEmbedder{dimensions: dimensions}
}

func (e *MockEmbedder) embed(data []byte) []float32 {
	h := fnv.New64a()
	_, _ = h.Write(data)
	seed := h.Sum64()
	vec := make([]float32, e.dimensions)
	for i := range vec {
		vec[i] = float32(math.Sin(float64(seed%1000)*float64(i+1))*0.1 + 0.01)
	}
	utils.NormalizeL2(vec)
	return vec
}

// EncodeText returns one deterministic vector per text.
func (e *MockEmbedder) EncodeText(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.embed([]byte(t))
	}
	return out, nil
}

// EncodeImage returns a deterministic vector for the image bytes.
func (e *MockEmbedder) EncodeImage(ctx context.Context, image []byte) ([]float32, error) {
	return e.embed(image), nil
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int { return e.dimensions }

// Close is a no-op for MockEmbedder.
func (e *MockEmbedder) Close() error { return nil }
