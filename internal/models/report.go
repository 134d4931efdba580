package models

// ValidationReport aggregates the outcome of one dataset validation run.
// It is built once per run and immutable after construction.
type ValidationReport struct {
	TotalVideos    int      `json:"total_videos"`
	ValidVideos    int      `json:"valid_videos"`
	TotalKeyframes int      `json:"total_keyframes"`
	MissingFiles   []string `json:"missing_files"`
	ShapeMismatches []string `json:"shape_mismatches"`

	// ValidVideoIDs lists the videos that passed every check, in enumeration
	// order. Ingestion is restricted to this set when validation is enabled.
	ValidVideoIDs []string `json:"valid_video_ids"`
}
