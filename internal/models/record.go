// Package models defines core data structures for keyframe records, validation
// reports, and search requests/results.
package models

import "fmt"

// Detection is one object detection within a keyframe.
type Detection struct {
	Label      string    `json:"entity"`
	ClassName  string    `json:"class_name"`
	Confidence float64   `json:"score"`
	Box        []float64 `json:"bbox"`
}

// KeyframePayload carries everything stored alongside a keyframe vector.
// Field names match the on-index payload schema, so payloads round-trip
// through the vector store unchanged.
type KeyframePayload struct {
	OriginalID            string      `json:"original_id"`
	VideoID               string      `json:"video_id"`
	KeyframeIndex         int         `json:"keyframe_idx"`
	KeyframeName          string      `json:"keyframe_name"`
	ImagePath             string      `json:"jpg_path"`
	PtsTime               float64     `json:"pts_time"`
	FrameIndex            int         `json:"frame_idx"`
	FPS                   int         `json:"fps"`
	Batch                 string      `json:"batch"`
	Objects               []Detection `json:"objects"`
	ObjectLabels          []string    `json:"object_labels"`
	HighConfidenceObjects []string    `json:"high_confidence_objects"`
	ObjectCount           int         `json:"object_count"`
	HasObjects            bool        `json:"has_objects"`
}

// KeyframeRecord is one ingestible unit: a point id, its embedding vector,
// and the payload attached to it. Records are immutable once built.
type KeyframeRecord struct {
	PointID string
	Vector  []float32
	Payload KeyframePayload
}

// OriginalID returns the stable dedup key of a keyframe: "<video_id>_<NNN>".
// It identifies the keyframe's content, unlike PointID which is an index-level
// identifier.
func OriginalID(videoID string, keyframeIndex int) string {
	return fmt.Sprintf("%s_%03d", videoID, keyframeIndex)
}
