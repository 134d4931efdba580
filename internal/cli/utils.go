// Package cli provides output helpers for the keyframe-search CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/duonguwu/ai-challenge/internal/ingest"
	"github.com/duonguwu/ai-challenge/internal/models"
)

// OutputFormat is the format for CLI output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a -output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, OutputJSON:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// WriteValidationReport writes a dataset validation report to w.
func WriteValidationReport(w io.Writer, report *models.ValidationReport, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	fmt.Fprintf(w, "videos:           %d\n", report.TotalVideos)
	fmt.Fprintf(w, "valid_videos:     %d\n", report.ValidVideos)
	fmt.Fprintf(w, "total_keyframes:  %d\n", report.TotalKeyframes)
	if len(report.MissingFiles) > 0 {
		fmt.Fprintln(w, "\nmissing files:")
		for _, m := range report.MissingFiles {
			fmt.Fprintf(w, "  - %s\n", m)
		}
	}
	if len(report.ShapeMismatches) > 0 {
		fmt.Fprintln(w, "\nshape mismatches:")
		for _, m := range report.ShapeMismatches {
			fmt.Fprintf(w, "  - %s\n", m)
		}
	}
	return nil
}

// WriteIngestSummary writes an ingestion run summary to w.
func WriteIngestSummary(w io.Writer, summary *ingest.Summary, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	fmt.Fprintf(w, "videos_succeeded: %d\n", summary.VideosSucceeded)
	fmt.Fprintf(w, "videos_failed:    %d\n", summary.VideosFailed)
	fmt.Fprintf(w, "videos_skipped:   %d\n", summary.VideosSkipped)
	fmt.Fprintf(w, "points_uploaded:  %d\n", summary.PointsUploaded)
	fmt.Fprintf(w, "index_points:     %d\n", summary.IndexPoints)
	fmt.Fprintf(w, "duration:         %s\n", summary.Duration.Round(time.Millisecond))
	return nil
}
