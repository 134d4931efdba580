package search

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/duonguwu/ai-challenge/internal/config"
	"github.com/duonguwu/ai-challenge/internal/embedding"
	"github.com/duonguwu/ai-challenge/internal/models"
	"github.com/duonguwu/ai-challenge/internal/vectorstore"
	"github.com/duonguwu/ai-challenge/pkg/metrics"
)

// Engine runs multi-query vector search against the keyframe collection and
// fuses the per-query results into one ranked, video-grouped response.
type Engine struct {
	store      vectorstore.Store
	embedder   embedding.Embedder
	collection string
	cfg        *config.SearchConfig
	logger     *zap.Logger
}

// NewEngine creates a search engine over the given store and embedder.
func NewEngine(
	store vectorstore.Store,
	embedder embedding.Embedder,
	collection string,
	cfg *config.SearchConfig,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		store:      store,
		embedder:   embedder,
		collection: collection,
		cfg:        cfg,
		logger:     logger,
	}
}

// SearchText embeds every query text and runs a fused search over the
// resulting vectors.
func (e *Engine) SearchText(ctx context.Context, req *models.TextSearchRequest) (*models.SearchResponse, error) {
	start := time.Now()
	if err := req.Validate(e.cfg.DefaultLimit, e.cfg.MaxLimit); err != nil {
		return nil, err
	}

	vectors, err := e.embedder.EncodeText(ctx, req.QueryTexts)
	if err != nil {
		return nil, fmt.Errorf("text embedding failed: %w", err)
	}

	resp, err := e.searchVectors(ctx, vectors, vectorstore.SearchParams{
		Limit:          req.Limit,
		ScoreThreshold: e.threshold(req.ScoreThreshold),
		ObjectFilters:  req.ObjectFilters,
	}, req.Limit)
	if err != nil {
		return nil, err
	}
	resp.QueryTimeMS = float64(time.Since(start).Microseconds()) / 1000
	metrics.SearchesTotal.WithLabelValues("text").Inc()
	e.logger.Info("text search served",
		zap.Int("queries", len(req.QueryTexts)),
		zap.Int("results", resp.TotalResults),
		zap.Float64("query_time_ms", resp.QueryTimeMS),
	)
	return resp, nil
}

// SearchImage embeds the uploaded image and runs a fused search with its
// single vector.
func (e *Engine) SearchImage(ctx context.Context, req *models.ImageSearchRequest) (*models.SearchResponse, error) {
	start := time.Now()
	if err := req.Validate(e.cfg.DefaultLimit, e.cfg.MaxLimit); err != nil {
		return nil, err
	}

	image, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		return nil, models.Validationf("image_base64 is not valid base64: %v", err)
	}
	vector, err := e.embedder.EncodeImage(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("image embedding failed: %w", err)
	}

	resp, err := e.searchVectors(ctx, [][]float32{vector}, vectorstore.SearchParams{
		Limit:          req.Limit,
		ScoreThreshold: e.threshold(req.ScoreThreshold),
		ObjectFilters:  req.ObjectFilters,
	}, req.Limit)
	if err != nil {
		return nil, err
	}
	resp.QueryTimeMS = float64(time.Since(start).Microseconds()) / 1000
	metrics.SearchesTotal.WithLabelValues("image").Inc()
	e.logger.Info("image search served",
		zap.Int("results", resp.TotalResults),
		zap.Float64("query_time_ms", resp.QueryTimeMS),
	)
	return resp, nil
}

// searchVectors runs one sub-search per query vector in parallel, preserving
// input order in the collected hit lists. Any sub-search failure cancels the
// rest and fails the whole search.
func (e *Engine) searchVectors(ctx context.Context, vectors [][]float32, params vectorstore.SearchParams, limit int) (*models.SearchResponse, error) {
	if len(vectors) == 0 {
		return nil, models.Validationf("no query vectors")
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, models.Validationf("query vector %d is empty", i)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		hitsPerQuery = make([][]*vectorstore.Hit, len(vectors))
		errChan      = make(chan error, len(vectors))
		wg           sync.WaitGroup
	)
	for i, vector := range vectors {
		wg.Add(1)
		go func(i int, vector []float32) {
			defer wg.Done()
			hits, err := e.store.Search(ctx, e.collection, vector, params)
			if err != nil {
				errChan <- fmt.Errorf("sub-search %d failed: %w", i, err)
				cancel()
				return
			}
			hitsPerQuery[i] = hits
		}(i, vector)
	}
	wg.Wait()
	close(errChan)
	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}

	results := Fuse(hitsPerQuery)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return &models.SearchResponse{
		TotalResults:   len(results),
		Results:        results,
		GroupedByVideo: GroupByVideo(results),
	}, nil
}

// threshold returns the request threshold, falling back to the configured
// default when unset.
func (e *Engine) threshold(requested float64) float64 {
	if requested > 0 {
		return requested
	}
	return e.cfg.DefaultScoreThreshold
}

// CollectionInfo reports statistics of the keyframe collection.
func (e *Engine) CollectionInfo(ctx context.Context) (*models.CollectionInfoResponse, error) {
	info, err := e.store.CollectionInfo(ctx, e.collection)
	if err != nil {
		return nil, err
	}
	return &models.CollectionInfoResponse{
		Name:        e.collection,
		VectorSize:  info.VectorSize,
		PointsCount: info.PointsCount,
		Status:      info.Status,
	}, nil
}
