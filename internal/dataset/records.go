package dataset

import (
	"fmt"

	"github.com/duonguwu/ai-challenge/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// pointNamespace is the UUIDv5 namespace for keyframe point ids. Deriving the
// id from video id + keyframe index makes re-ingestion upsert the same points
// instead of appending duplicates.
var pointNamespace = uuid.MustParse("a6f5b6a2-9c74-4c38-9b2a-3f1d4c5e6a70")

// PointID returns the deterministic point id for a keyframe.
func PointID(videoID string, keyframeIndex int) string {
	return uuid.NewSHA1(pointNamespace, []byte(fmt.Sprintf("%s:%d", videoID, keyframeIndex))).String()
}

// RecordBuilder joins one video's feature vectors, metadata rows, and
// detection files into an ordered sequence of keyframe records.
type RecordBuilder struct {
	layout                  *Layout
	confidenceThreshold     float64
	highConfidenceThreshold float64
	logger                  *zap.Logger
}

// NewRecordBuilder creates a builder with the given detection thresholds.
func NewRecordBuilder(layout *Layout, confidenceThreshold, highConfidenceThreshold float64, logger *zap.Logger) *RecordBuilder {
	return &RecordBuilder{
		layout:                  layout,
		confidenceThreshold:     confidenceThreshold,
		highConfidenceThreshold: highConfidenceThreshold,
		logger:                  logger,
	}
}

// Build produces a video's keyframe records in metadata row order. A record
// that cannot be built (corrupt detection file, missing vector row) is logged
// and skipped; the remaining rows continue. Returns an error only when the
// video's feature or metadata files themselves are unreadable.
func (b *RecordBuilder) Build(videoID string) ([]*models.KeyframeRecord, error) {
	vectors, err := b.layout.Features(videoID)
	if err != nil {
		return nil, fmt.Errorf("video %s: %w", videoID, err)
	}
	metadata, err := b.layout.Metadata(videoID)
	if err != nil {
		return nil, fmt.Errorf("video %s: %w", videoID, err)
	}

	records := make([]*models.KeyframeRecord, 0, len(metadata))
	for i, row := range metadata {
		record, err := b.buildRecord(videoID, i, row, vectors)
		if err != nil {
			b.logger.Warn("skipping keyframe record",
				zap.String("video_id", videoID),
				zap.Int("keyframe_idx", i+1),
				zap.Error(err),
			)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (b *RecordBuilder) buildRecord(videoID string, i int, row MetadataRow, vectors [][]float32) (*models.KeyframeRecord, error) {
	if i >= len(vectors) {
		return nil, fmt.Errorf("no feature vector for row %d (matrix has %d rows)", i, len(vectors))
	}
	keyframeNum := i + 1

	detections, labels, highLabels, err := b.layout.Detections(videoID, keyframeNum, b.confidenceThreshold, b.highConfidenceThreshold)
	if err != nil {
		return nil, err
	}

	return &models.KeyframeRecord{
		PointID: PointID(videoID, keyframeNum),
		Vector:  vectors[i],
		Payload: models.KeyframePayload{
			OriginalID:            models.OriginalID(videoID, keyframeNum),
			VideoID:               videoID,
			KeyframeIndex:         keyframeNum,
			KeyframeName:          fmt.Sprintf("%03d.jpg", keyframeNum),
			ImagePath:             b.layout.ImagePath(videoID, keyframeNum),
			PtsTime:               row.PtsTime,
			FrameIndex:            row.FrameIndex,
			FPS:                   row.FPS,
			Batch:                 Batch(videoID),
			Objects:               detections,
			ObjectLabels:          labels,
			HighConfidenceObjects: highLabels,
			ObjectCount:           len(detections),
			HasObjects:            len(detections) > 0,
		},
	}, nil
}
