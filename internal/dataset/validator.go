package dataset

import (
	"context"
	"fmt"
	"os"

	"github.com/duonguwu/ai-challenge/internal/models"
	"go.uber.org/zap"
)

// Validator walks a dataset layout and checks that every video has matching
// feature, metadata, detection, and keyframe-image files. It mutates nothing;
// its only output is the report.
type Validator struct {
	layout     *Layout
	vectorSize int
	logger     *zap.Logger
}

// NewValidator creates a validator that expects feature vectors of vectorSize.
func NewValidator(layout *Layout, vectorSize int, logger *zap.Logger) *Validator {
	return &Validator{layout: layout, vectorSize: vectorSize, logger: logger}
}

// Validate checks every video found in the feature-file directory and returns
// an aggregate report. A failed check marks that one video invalid and
// validation continues; only enumeration failure is an error.
func (v *Validator) Validate(ctx context.Context) (*models.ValidationReport, error) {
	videos, err := v.layout.Videos()
	if err != nil {
		return nil, err
	}

	report := &models.ValidationReport{TotalVideos: len(videos)}
	for _, videoID := range videos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		keyframes, ok := v.validateVideo(videoID, report)
		if !ok {
			continue
		}
		report.ValidVideos++
		report.TotalKeyframes += keyframes
		report.ValidVideoIDs = append(report.ValidVideoIDs, videoID)
	}

	v.logger.Info("dataset validation finished",
		zap.Int("total_videos", report.TotalVideos),
		zap.Int("valid_videos", report.ValidVideos),
		zap.Int("total_keyframes", report.TotalKeyframes),
		zap.Int("missing_files", len(report.MissingFiles)),
		zap.Int("shape_mismatches", len(report.ShapeMismatches)),
	)
	return report, nil
}

// validateVideo runs all checks for one video. On success it returns the
// video's keyframe count.
func (v *Validator) validateVideo(videoID string, report *models.ValidationReport) (int, bool) {
	rows, dim, err := v.layout.FeatureShape(videoID)
	if err != nil {
		report.MissingFiles = append(report.MissingFiles,
			fmt.Sprintf("%s: features unreadable: %v", videoID, err))
		return 0, false
	}
	if dim != v.vectorSize {
		report.ShapeMismatches = append(report.ShapeMismatches,
			fmt.Sprintf("%s: expected (N, %d), got (%d, %d)", videoID, v.vectorSize, rows, dim))
		return 0, false
	}

	metadataPath := v.layout.MetadataPath(videoID)
	if _, err := os.Stat(metadataPath); err != nil {
		report.MissingFiles = append(report.MissingFiles,
			fmt.Sprintf("%s: metadata: %s", videoID, metadataPath))
		return 0, false
	}
	metadata, err := v.layout.Metadata(videoID)
	if err != nil {
		report.MissingFiles = append(report.MissingFiles,
			fmt.Sprintf("%s: metadata unreadable: %v", videoID, err))
		return 0, false
	}
	if len(metadata) != rows {
		report.ShapeMismatches = append(report.ShapeMismatches,
			fmt.Sprintf("%s: metadata rows (%d) != feature rows (%d)", videoID, len(metadata), rows))
		return 0, false
	}

	if info, err := os.Stat(v.layout.ObjectsDir(videoID)); err != nil || !info.IsDir() {
		report.MissingFiles = append(report.MissingFiles,
			fmt.Sprintf("%s: objects dir: %s", videoID, v.layout.ObjectsDir(videoID)))
		return 0, false
	}
	if info, err := os.Stat(v.layout.KeyframesDir(videoID)); err != nil || !info.IsDir() {
		report.MissingFiles = append(report.MissingFiles,
			fmt.Sprintf("%s: keyframes dir: %s", videoID, v.layout.KeyframesDir(videoID)))
		return 0, false
	}

	return rows, true
}
