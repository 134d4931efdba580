package dataset

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/duonguwu/ai-challenge/internal/models"
)

// detectionFile mirrors the on-disk detection JSON: parallel arrays indexed
// by detection. Scores arrive as strings in some dataset drops, so they are
// decoded leniently.
type detectionFile struct {
	Scores   []json.Number `json:"detection_scores"`
	Entities []string      `json:"detection_class_entities"`
	Classes  []string      `json:"detection_class_names"`
	Boxes    [][]float64   `json:"detection_boxes"`
}

// Detections loads and filters the detection file for one keyframe.
// Candidate file names are tried in order (4-digit then 3-digit padding);
// a missing file yields empty results rather than an error. Detections below
// confidenceThreshold are dropped; labels are deduplicated preserving
// first-seen order; labels at or above highConfidenceThreshold are also
// returned separately.
func (l *Layout) Detections(videoID string, keyframeNum int, confidenceThreshold, highConfidenceThreshold float64) ([]models.Detection, []string, []string, error) {
	var path string
	for _, candidate := range l.DetectionCandidates(videoID, keyframeNum) {
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
			break
		}
	}
	if path == "" {
		return nil, nil, nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read detections: %w", err)
	}
	var file detectionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, nil, nil, fmt.Errorf("parse detections %s: %w", path, err)
	}

	var (
		detections []models.Detection
		labels     []string
		highLabels []string
		seen       = make(map[string]bool)
		seenHigh   = make(map[string]bool)
	)
	for i, rawScore := range file.Scores {
		if i >= len(file.Entities) || i >= len(file.Classes) {
			break
		}
		score, err := rawScore.Float64()
		if err != nil {
			continue
		}
		if score < confidenceThreshold {
			continue
		}
		var box []float64
		if i < len(file.Boxes) && len(file.Boxes[i]) >= 4 {
			box = file.Boxes[i][:4]
		}
		entity := file.Entities[i]
		detections = append(detections, models.Detection{
			Label:      entity,
			ClassName:  file.Classes[i],
			Confidence: score,
			Box:        box,
		})
		if !seen[entity] {
			seen[entity] = true
			labels = append(labels, entity)
		}
		if score >= highConfidenceThreshold && !seenHigh[entity] {
			seenHigh[entity] = true
			highLabels = append(highLabels, entity)
		}
	}
	return detections, labels, highLabels, nil
}
