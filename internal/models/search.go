package models

import "fmt"

// ValidationError marks a request rejected before any backend call; the HTTP
// layer maps it to a 400 response.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// TextSearchRequest is the request body for text-based keyframe search.
// QueryTexts are embedded in order; results from all queries are fused.
type TextSearchRequest struct {
	QueryTexts     []string `json:"query_texts"`
	ObjectFilters  []string `json:"object_filters,omitempty"`
	Limit          int      `json:"limit,omitempty"`
	ScoreThreshold float64  `json:"score_threshold,omitempty"`
}

// Validate checks the request and normalizes limit against the given bounds.
func (r *TextSearchRequest) Validate(defaultLimit, maxLimit int) error {
	if len(r.QueryTexts) == 0 {
		return Validationf("query_texts cannot be empty")
	}
	for i, q := range r.QueryTexts {
		if q == "" {
			return Validationf("query_texts[%d] is empty", i)
		}
	}
	normalizeLimits(&r.Limit, defaultLimit, maxLimit)
	if r.ScoreThreshold < 0 {
		return Validationf("score_threshold must be non-negative")
	}
	return nil
}

// ImageSearchRequest is the request body for image-based keyframe search.
type ImageSearchRequest struct {
	ImageBase64    string   `json:"image_base64"`
	ObjectFilters  []string `json:"object_filters,omitempty"`
	Limit          int      `json:"limit,omitempty"`
	ScoreThreshold float64  `json:"score_threshold,omitempty"`
}

// Validate checks the request and normalizes limit against the given bounds.
func (r *ImageSearchRequest) Validate(defaultLimit, maxLimit int) error {
	if r.ImageBase64 == "" {
		return Validationf("image_base64 cannot be empty")
	}
	normalizeLimits(&r.Limit, defaultLimit, maxLimit)
	if r.ScoreThreshold < 0 {
		return Validationf("score_threshold must be non-negative")
	}
	return nil
}

func normalizeLimits(limit *int, def, max int) {
	if *limit <= 0 {
		*limit = def
	}
	if *limit > max {
		*limit = max
	}
}

// FrameResult is one fused search result with its final rank.
type FrameResult struct {
	Rank            int         `json:"rank"`
	OriginalID      string      `json:"original_id"`
	VideoID         string      `json:"video_id"`
	KeyframeIndex   int         `json:"keyframe_idx"`
	ImagePath       string      `json:"jpg_path"`
	PtsTime         float64     `json:"pts_time"`
	FrameIndex      int         `json:"frame_idx"`
	SimilarityScore float64     `json:"similarity_score"`
	Objects         []Detection `json:"objects"`
}

// VideoGroup holds all matching frames of one video, sorted by score descending.
type VideoGroup struct {
	VideoID     string         `json:"video_id"`
	TotalFrames int            `json:"total_frames"`
	BestScore   float64        `json:"best_score"`
	Frames      []*FrameResult `json:"frames"`
}

// SearchResponse is the fused, ranked, video-grouped response for one search.
type SearchResponse struct {
	TotalResults   int            `json:"total_results"`
	QueryTimeMS    float64        `json:"query_time_ms"`
	Results        []*FrameResult `json:"results"`
	GroupedByVideo []*VideoGroup  `json:"grouped_by_video"`
}

// CollectionInfoResponse reports vector collection statistics.
type CollectionInfoResponse struct {
	Name        string `json:"name"`
	VectorSize  int    `json:"vector_size"`
	PointsCount int64  `json:"points_count"`
	Status      string `json:"status"`
}
