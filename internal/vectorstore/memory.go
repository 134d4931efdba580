package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-memory brute-force vector store for tests and local
// development. Vectors are assumed normalized, so the inner product is cosine
// similarity.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	vectorSize int
	distance   string
	points     map[string]*Point // keyed by point id; upsert replaces
	order      []string          // insertion order for deterministic iteration
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

// EnsureCollection creates the collection if absent; a size or distance
// mismatch with an existing collection is an error.
func (m *MemoryStore) EnsureCollection(ctx context.Context, name string, vectorSize int, distance string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.collections[name]; ok {
		if c.vectorSize != vectorSize {
			return fmt.Errorf("collection %q has vector size %d, expected %d", name, c.vectorSize, vectorSize)
		}
		if c.distance != distance {
			return fmt.Errorf("collection %q uses distance %q, expected %q", name, c.distance, distance)
		}
		return nil
	}
	m.collections[name] = &memoryCollection{
		vectorSize: vectorSize,
		distance:   distance,
		points:     make(map[string]*Point),
	}
	return nil
}

// Upsert inserts or replaces points by id.
func (m *MemoryStore) Upsert(ctx context.Context, collection string, points []*Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[collection]
	if !ok {
		return fmt.Errorf("collection %q does not exist", collection)
	}
	for _, p := range points {
		if len(p.Vector) != c.vectorSize {
			return fmt.Errorf("point %s: vector dimension %d, expected %d", p.ID, len(p.Vector), c.vectorSize)
		}
		if _, exists := c.points[p.ID]; !exists {
			c.order = append(c.order, p.ID)
		}
		c.points[p.ID] = p
	}
	return nil
}

// Search scores every point by inner product, applies the label filter and
// score threshold, and returns the top hits by score descending.
func (m *MemoryStore) Search(ctx context.Context, collection string, vector []float32, params SearchParams) ([]*Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %q does not exist", collection)
	}
	if len(vector) != c.vectorSize {
		return nil, fmt.Errorf("query dimension %d, expected %d", len(vector), c.vectorSize)
	}

	hits := make([]*Hit, 0, len(c.order))
	for _, id := range c.order {
		p := c.points[id]
		if !matchesAnyLabel(p.Payload.ObjectLabels, params.ObjectFilters) {
			continue
		}
		var dot float64
		for i := range vector {
			dot += float64(vector[i] * p.Vector[i])
		}
		if params.ScoreThreshold > 0 && dot < params.ScoreThreshold {
			continue
		}
		hits = append(hits, &Hit{ID: p.ID, Score: dot, Payload: p.Payload})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if params.Limit > 0 && len(hits) > params.Limit {
		hits = hits[:params.Limit]
	}
	return hits, nil
}

func matchesAnyLabel(labels, filters []string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		for _, l := range labels {
			if l == f {
				return true
			}
		}
	}
	return false
}

// CollectionInfo returns point count and a fixed "green" status.
func (m *MemoryStore) CollectionInfo(ctx context.Context, collection string) (*CollectionInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %q does not exist", collection)
	}
	return &CollectionInfo{
		PointsCount: int64(len(c.points)),
		VectorSize:  c.vectorSize,
		Status:      "green",
	}, nil
}

// Health always succeeds for the in-memory store.
func (m *MemoryStore) Health(ctx context.Context) error { return nil }
