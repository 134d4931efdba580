// Package vectorstore provides the vector index client interface and its
// Qdrant and in-memory implementations.
package vectorstore

import (
	"context"

	"github.com/duonguwu/ai-challenge/internal/models"
)

// DistanceCosine is the similarity metric used by the keyframe collection.
const DistanceCosine = "Cosine"

// Point is one upsertable unit: id, embedding vector, and payload.
type Point struct {
	ID      string                 `json:"id"`
	Vector  []float32              `json:"vector"`
	Payload models.KeyframePayload `json:"payload"`
}

// Hit is one result of a single-vector search, with payload attached.
type Hit struct {
	ID      string                 `json:"id"`
	Score   float64                `json:"score"`
	Payload models.KeyframePayload `json:"payload"`
}

// SearchParams bounds a single-vector search.
type SearchParams struct {
	Limit          int
	ScoreThreshold float64
	// ObjectFilters restricts hits to payloads whose object_labels field
	// matches any of the given labels. Empty means no filter.
	ObjectFilters []string
}

// CollectionInfo reports collection statistics.
type CollectionInfo struct {
	PointsCount int64
	VectorSize  int
	Status      string
}

// Store is a vector index client. One long-lived handle is created at startup
// and shared; implementations must be safe for concurrent use.
type Store interface {
	// EnsureCollection creates the collection if absent. An existing
	// collection with a different vector size or distance metric is a fatal
	// configuration error, not silently tolerated.
	EnsureCollection(ctx context.Context, name string, vectorSize int, distance string) error
	// Upsert writes points in one batch call; the batch commits or fails as
	// a unit from the caller's point of view.
	Upsert(ctx context.Context, collection string, points []*Point) error
	// Search returns up to params.Limit hits ranked by similarity descending.
	Search(ctx context.Context, collection string, vector []float32, params SearchParams) ([]*Hit, error)
	// CollectionInfo returns point count and status for a collection.
	CollectionInfo(ctx context.Context, collection string) (*CollectionInfo, error)
	// Health reports whether the store is reachable.
	Health(ctx context.Context) error
}
