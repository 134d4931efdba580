// Package embedding provides text and image embedding via a CLIP service.
package embedding

import "context"

// Embedder produces embedding vectors for text queries and images.
// Text and image vectors share one embedding space and dimensionality, so
// either can be searched against the same keyframe index.
type Embedder interface {
	// EncodeText returns one L2-normalized vector per input text, in input order.
	EncodeText(ctx context.Context, texts []string) ([][]float32, error)
	// EncodeImage returns one L2-normalized vector for the given image bytes.
	EncodeImage(ctx context.Context, image []byte) ([]float32, error)
	Dimensions() int
	Close() error
}
