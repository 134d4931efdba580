package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// QdrantStore talks to a Qdrant instance over its HTTP API.
type QdrantStore struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewQdrantStore creates a client for the Qdrant instance at baseURL.
// The timeout bounds each individual request, so a hung call fails that one
// operation instead of blocking its worker forever.
func NewQdrantStore(baseURL string, timeout time.Duration, logger *zap.Logger) (*QdrantStore, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid qdrant url: %w", err)
	}
	return &QdrantStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

type qdrantEnvelope struct {
	Status json.RawMessage `json:"status"`
	Result json.RawMessage `json:"result"`
}

type qdrantCollectionResult struct {
	Status      string `json:"status"`
	PointsCount int64  `json:"points_count"`
	Config      struct {
		Params struct {
			Vectors struct {
				Size     int    `json:"size"`
				Distance string `json:"distance"`
			} `json:"vectors"`
		} `json:"params"`
	} `json:"config"`
}

// EnsureCollection creates the collection if absent. An existing collection
// with mismatched vector size or distance is a configuration error.
func (s *QdrantStore) EnsureCollection(ctx context.Context, name string, vectorSize int, distance string) error {
	existing, err := s.collection(ctx, name)
	if err == nil {
		if existing.Config.Params.Vectors.Size != vectorSize {
			return fmt.Errorf("collection %q has vector size %d, expected %d",
				name, existing.Config.Params.Vectors.Size, vectorSize)
		}
		if existing.Config.Params.Vectors.Distance != distance {
			return fmt.Errorf("collection %q uses distance %q, expected %q",
				name, existing.Config.Params.Vectors.Distance, distance)
		}
		s.logger.Info("collection already exists", zap.String("collection", name))
		return nil
	}
	if !isNotFound(err) {
		return err
	}

	body := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     vectorSize,
			"distance": distance,
		},
	}
	if err := s.do(ctx, http.MethodPut, "/collections/"+name, body, nil); err != nil {
		return fmt.Errorf("create collection %q: %w", name, err)
	}
	s.logger.Info("collection created",
		zap.String("collection", name),
		zap.Int("vector_size", vectorSize),
		zap.String("distance", distance),
	)
	return nil
}

// Upsert writes points in one call. Qdrant applies the batch atomically;
// wait=true blocks until the operation is persisted.
func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []*Point) error {
	if len(points) == 0 {
		return nil
	}
	body := map[string]interface{}{"points": points}
	path := fmt.Sprintf("/collections/%s/points?wait=true", collection)
	if err := s.do(ctx, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("upsert %d points: %w", len(points), err)
	}
	return nil
}

// Search runs a single-vector similarity search with payloads attached.
func (s *QdrantStore) Search(ctx context.Context, collection string, vector []float32, params SearchParams) ([]*Hit, error) {
	body := map[string]interface{}{
		"vector":       vector,
		"limit":        params.Limit,
		"with_payload": true,
	}
	if params.ScoreThreshold > 0 {
		body["score_threshold"] = params.ScoreThreshold
	}
	if len(params.ObjectFilters) > 0 {
		body["filter"] = map[string]interface{}{
			"must": []map[string]interface{}{
				{
					"key":   "object_labels",
					"match": map[string]interface{}{"any": params.ObjectFilters},
				},
			},
		}
	}

	var hits []*Hit
	path := fmt.Sprintf("/collections/%s/points/search", collection)
	if err := s.do(ctx, http.MethodPost, path, body, &hits); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return hits, nil
}

// CollectionInfo returns point count and status for a collection.
func (s *QdrantStore) CollectionInfo(ctx context.Context, collection string) (*CollectionInfo, error) {
	result, err := s.collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	return &CollectionInfo{
		PointsCount: result.PointsCount,
		VectorSize:  result.Config.Params.Vectors.Size,
		Status:      result.Status,
	}, nil
}

// Health checks Qdrant reachability.
func (s *QdrantStore) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("qdrant health returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *QdrantStore) collection(ctx context.Context, name string) (*qdrantCollectionResult, error) {
	var result qdrantCollectionResult
	if err := s.do(ctx, http.MethodGet, "/collections/"+name, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// statusError carries the HTTP status of a failed Qdrant call.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant returned status %d: %s", e.code, e.body)
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusNotFound
}

// do issues one request and decodes the "result" field of the response
// envelope into out (when out is non-nil).
func (s *QdrantStore) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	var envelope qdrantEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}
