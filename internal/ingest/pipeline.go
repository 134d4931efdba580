// Package ingest orchestrates dataset validation, record construction, and
// batched upload into the vector index.
package ingest

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/duonguwu/ai-challenge/internal/config"
	"github.com/duonguwu/ai-challenge/internal/dataset"
	"github.com/duonguwu/ai-challenge/internal/manifest"
	"github.com/duonguwu/ai-challenge/internal/models"
	"github.com/duonguwu/ai-challenge/internal/vectorstore"
	"github.com/duonguwu/ai-challenge/pkg/metrics"
	"go.uber.org/zap"
)

// Summary is the outcome of one pipeline run.
type Summary struct {
	VideosSucceeded int           `json:"videos_succeeded"`
	VideosFailed    int           `json:"videos_failed"`
	VideosSkipped   int           `json:"videos_skipped"`
	PointsUploaded  int           `json:"points_uploaded"`
	Duration        time.Duration `json:"duration"`
	IndexPoints     int64         `json:"index_points"`
}

// Pipeline ingests a dataset into the vector index using a bounded worker
// pool with per-video failure isolation.
type Pipeline struct {
	layout     *dataset.Layout
	builder    *dataset.RecordBuilder
	validator  *dataset.Validator
	store      vectorstore.Store
	manifest   *manifest.Store // optional; when nil every video is reprocessed
	cfg        *config.IngestConfig
	collection string
	vectorSize int
	logger     *zap.Logger
	force      bool
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithManifest enables skip-unchanged tracking through the given manifest store.
func WithManifest(m *manifest.Store) PipelineOption {
	return func(p *Pipeline) { p.manifest = m }
}

// WithForce disables the unchanged-video skip so every video is reingested.
func WithForce(force bool) PipelineOption {
	return func(p *Pipeline) { p.force = force }
}

// NewPipeline creates a pipeline over the given layout and vector store.
func NewPipeline(
	layout *dataset.Layout,
	store vectorstore.Store,
	cfg *config.IngestConfig,
	collection string,
	vectorSize int,
	logger *zap.Logger,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		layout:     layout,
		builder:    dataset.NewRecordBuilder(layout, cfg.ConfidenceThreshold, cfg.HighConfidenceThreshold, logger),
		validator:  dataset.NewValidator(layout, vectorSize, logger),
		store:      store,
		cfg:        cfg,
		collection: collection,
		vectorSize: vectorSize,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// accumulator folds per-video results into the run counters. Workers share no
// other mutable state.
type accumulator struct {
	mu        sync.Mutex
	succeeded int
	failed    int
	skipped   int
	points    int
}

func (a *accumulator) success(points int) {
	a.mu.Lock()
	a.succeeded++
	a.points += points
	a.mu.Unlock()
	metrics.VideosIngested.WithLabelValues("succeeded").Inc()
	metrics.PointsUploaded.Add(float64(points))
}

func (a *accumulator) failure() {
	a.mu.Lock()
	a.failed++
	a.mu.Unlock()
	metrics.VideosIngested.WithLabelValues("failed").Inc()
}

func (a *accumulator) skip() {
	a.mu.Lock()
	a.skipped++
	a.mu.Unlock()
	metrics.VideosIngested.WithLabelValues("skipped").Inc()
}

// Run executes the full pipeline: validate, ensure the collection, then build
// and upload every video on a bounded worker pool. A video's failure is
// isolated; Run only returns an error when nothing can be ingested at all.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()

	var videos []string
	if p.cfg.ValidateOrDefault() {
		report, err := p.validator.Validate(ctx)
		if err != nil {
			return nil, fmt.Errorf("dataset validation: %w", err)
		}
		if report.ValidVideos == 0 {
			return nil, fmt.Errorf("no valid videos found in dataset")
		}
		logReportFindings(p.logger, report)
		videos = report.ValidVideoIDs
	} else {
		var err error
		videos, err = p.layout.Videos()
		if err != nil {
			return nil, err
		}
		if len(videos) == 0 {
			return nil, fmt.Errorf("no videos found in dataset")
		}
	}

	if err := p.store.EnsureCollection(ctx, p.collection, p.vectorSize, vectorstore.DistanceCosine); err != nil {
		return nil, fmt.Errorf("ensure collection: %w", err)
	}

	p.logger.Info("ingestion starting",
		zap.Int("videos", len(videos)),
		zap.Int("max_workers", p.cfg.MaxWorkers),
		zap.Int("batch_size", p.cfg.BatchSize),
	)

	var (
		acc  accumulator
		wg   sync.WaitGroup
		jobs = make(chan string)
	)
	for i := 0; i < p.cfg.MaxWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for videoID := range jobs {
				p.processVideo(ctx, videoID, &acc)
			}
		}()
	}
	for _, videoID := range videos {
		select {
		case jobs <- videoID:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := &Summary{
		VideosSucceeded: acc.succeeded,
		VideosFailed:    acc.failed,
		VideosSkipped:   acc.skipped,
		PointsUploaded:  acc.points,
		Duration:        time.Since(start),
	}
	if info, err := p.store.CollectionInfo(ctx, p.collection); err == nil {
		summary.IndexPoints = info.PointsCount
	}

	p.logger.Info("ingestion finished",
		zap.Int("videos_succeeded", summary.VideosSucceeded),
		zap.Int("videos_failed", summary.VideosFailed),
		zap.Int("videos_skipped", summary.VideosSkipped),
		zap.Int("points_uploaded", summary.PointsUploaded),
		zap.Int64("index_points", summary.IndexPoints),
		zap.Duration("duration", summary.Duration),
	)
	return summary, nil
}

func logReportFindings(logger *zap.Logger, report *models.ValidationReport) {
	for _, missing := range report.MissingFiles {
		logger.Warn("validation: missing files", zap.String("detail", missing))
	}
	for _, mismatch := range report.ShapeMismatches {
		logger.Warn("validation: shape mismatch", zap.String("detail", mismatch))
	}
}

func (p *Pipeline) processVideo(ctx context.Context, videoID string, acc *accumulator) {
	if ctx.Err() != nil {
		return
	}
	mtime, size := p.featureStamp(videoID)
	if p.manifest != nil && !p.force && p.manifest.UpToDate(ctx, videoID, mtime, size) {
		p.logger.Debug("skipping unchanged video", zap.String("video_id", videoID))
		acc.skip()
		return
	}

	points, err := p.IngestVideo(ctx, videoID)
	if err != nil {
		p.logger.Error("video ingestion failed", zap.String("video_id", videoID), zap.Error(err))
		acc.failure()
		p.recordOutcome(ctx, videoID, 0, manifest.StatusFailed, mtime, size)
		return
	}
	p.logger.Info("video ingested", zap.String("video_id", videoID), zap.Int("points", points))
	acc.success(points)
	p.recordOutcome(ctx, videoID, points, manifest.StatusSucceeded, mtime, size)
}

// IngestVideo builds one video's records and uploads them in sequential
// sub-batches. Only one batch is in flight per video, bounding peak memory.
func (p *Pipeline) IngestVideo(ctx context.Context, videoID string) (int, error) {
	records, err := p.builder.Build(videoID)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("video %s produced no records", videoID)
	}

	uploaded := 0
	for start := 0; start < len(records); start += p.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return uploaded, err
		}
		end := start + p.cfg.BatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := make([]*vectorstore.Point, 0, end-start)
		for _, r := range records[start:end] {
			batch = append(batch, &vectorstore.Point{ID: r.PointID, Vector: r.Vector, Payload: r.Payload})
		}
		if err := p.store.Upsert(ctx, p.collection, batch); err != nil {
			return uploaded, fmt.Errorf("upload batch %d-%d: %w", start, end, err)
		}
		uploaded += len(batch)
	}
	return uploaded, nil
}

func (p *Pipeline) featureStamp(videoID string) (mtime, size int64) {
	info, err := os.Stat(p.layout.FeaturesPath(videoID))
	if err != nil {
		return 0, 0
	}
	return info.ModTime().UnixNano(), info.Size()
}

func (p *Pipeline) recordOutcome(ctx context.Context, videoID string, points int, status string, mtime, size int64) {
	if p.manifest == nil {
		return
	}
	err := p.manifest.Record(ctx, &manifest.Entry{
		VideoID:      videoID,
		Points:       points,
		Keyframes:    points,
		Status:       status,
		FeatureMtime: mtime,
		FeatureSize:  size,
		FinishedAt:   time.Now().UTC(),
	})
	if err != nil {
		p.logger.Warn("failed to record ingest outcome", zap.String("video_id", videoID), zap.Error(err))
	}
}

// Validate runs dataset validation only and returns the report.
func (p *Pipeline) Validate(ctx context.Context) (*models.ValidationReport, error) {
	return p.validator.Validate(ctx)
}
