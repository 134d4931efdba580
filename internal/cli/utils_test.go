package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/duonguwu/ai-challenge/internal/ingest"
	"github.com/duonguwu/ai-challenge/internal/models"
)

func TestParseOutputFormat(t *testing.T) {
	for _, valid := range []string{"text", "json"} {
		if _, err := ParseOutputFormat(valid); err != nil {
			t.Errorf("ParseOutputFormat(%q) = %v", valid, err)
		}
	}
	if _, err := ParseOutputFormat("yaml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWriteValidationReportText(t *testing.T) {
	var buf bytes.Buffer
	report := &models.ValidationReport{
		TotalVideos:     3,
		ValidVideos:     2,
		TotalKeyframes:  250,
		MissingFiles:    []string{"L21_V003: metadata file missing"},
		ShapeMismatches: []string{"L21_V002: 50 metadata rows, 48 feature rows"},
	}
	if err := WriteValidationReport(&buf, report, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"valid_videos:     2", "L21_V003", "L21_V002"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteValidationReportJSON(t *testing.T) {
	var buf bytes.Buffer
	report := &models.ValidationReport{TotalVideos: 1, ValidVideos: 1, TotalKeyframes: 10}
	if err := WriteValidationReport(&buf, report, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.ValidationReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.TotalKeyframes != 10 {
		t.Errorf("round trip lost data: %+v", decoded)
	}
}

func TestWriteIngestSummary(t *testing.T) {
	var buf bytes.Buffer
	summary := &ingest.Summary{
		VideosSucceeded: 5,
		VideosFailed:    1,
		PointsUploaded:  600,
		IndexPoints:     600,
		Duration:        1500 * time.Millisecond,
	}
	if err := WriteIngestSummary(&buf, summary, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"videos_succeeded: 5", "videos_failed:    1", "points_uploaded:  600", "1.5s"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
