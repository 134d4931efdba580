package dataset_test

import (
	"path/filepath"
	"testing"

	"github.com/duonguwu/ai-challenge/internal/config"
	"github.com/duonguwu/ai-challenge/internal/dataset"
	"github.com/duonguwu/ai-challenge/internal/dataset/datasettest"
)

func TestNewLayoutMissingRoot(t *testing.T) {
	_, err := dataset.NewLayout(&config.DatasetConfig{Root: "/nonexistent/dataset/root"})
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestLayoutPaths(t *testing.T) {
	layout, root := datasettest.Layout(t)

	if got := layout.FeaturesPath("L21_V001"); got != filepath.Join(root, "clip-features-32", "L21_V001.npy") {
		t.Errorf("FeaturesPath() = %q", got)
	}
	if got := layout.MetadataPath("L21_V001"); got != filepath.Join(root, "map-keyframes", "L21_V001.csv") {
		t.Errorf("MetadataPath() = %q", got)
	}
	if got := layout.KeyframesDir("L21_V001"); got != filepath.Join(root, "Keyframes_L21", "keyframes", "L21_V001") {
		t.Errorf("KeyframesDir() = %q", got)
	}
	if got := layout.ImagePath("L21_V001", 7); got != filepath.Join(root, "Keyframes_L21", "keyframes", "L21_V001", "007.jpg") {
		t.Errorf("ImagePath() = %q", got)
	}
}

func TestDetectionCandidatesOrder(t *testing.T) {
	layout, _ := datasettest.Layout(t)
	candidates := layout.DetectionCandidates("L21_V001", 37)
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if filepath.Base(candidates[0]) != "0037.json" {
		t.Errorf("first candidate should be 4-digit, got %q", candidates[0])
	}
	if filepath.Base(candidates[1]) != "037.json" {
		t.Errorf("second candidate should be 3-digit, got %q", candidates[1])
	}
}

func TestBatch(t *testing.T) {
	if got := dataset.Batch("L21_V001"); got != "L21" {
		t.Errorf("Batch() = %q, want L21", got)
	}
	if got := dataset.Batch("noseparator"); got != "noseparator" {
		t.Errorf("Batch() = %q", got)
	}
}

func TestVideos(t *testing.T) {
	layout, _ := datasettest.Layout(t)
	datasettest.WriteNPY(t, layout.FeaturesPath("L21_V002"), datasettest.MakeVectors(2, datasettest.VectorSize))
	datasettest.WriteNPY(t, layout.FeaturesPath("L21_V001"), datasettest.MakeVectors(2, datasettest.VectorSize))

	videos, err := layout.Videos()
	if err != nil {
		t.Fatal(err)
	}
	if len(videos) != 2 || videos[0] != "L21_V001" || videos[1] != "L21_V002" {
		t.Errorf("Videos() = %v, want sorted [L21_V001 L21_V002]", videos)
	}
}

func TestFeatures(t *testing.T) {
	layout, _ := datasettest.Layout(t)
	want := [][]float32{{1, 0, 0, 0, 0, 0, 0, 0}, {0, 0.5, 0, 0, 0, 0, 0, 0.25}}
	datasettest.WriteNPY(t, layout.FeaturesPath("L21_V001"), want)

	rows, dim, err := layout.FeatureShape("L21_V001")
	if err != nil {
		t.Fatal(err)
	}
	if rows != 2 || dim != datasettest.VectorSize {
		t.Errorf("FeatureShape() = (%d, %d), want (2, %d)", rows, dim, datasettest.VectorSize)
	}

	vectors, err := layout.Features("L21_V001")
	if err != nil {
		t.Fatal(err)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	if vectors[0][0] != 1 || vectors[1][1] != 0.5 || vectors[1][7] != 0.25 {
		t.Errorf("unexpected vector values: %v", vectors)
	}
}

func TestMetadata(t *testing.T) {
	layout, _ := datasettest.Layout(t)
	datasettest.WriteMetadataCSV(t, layout.MetadataPath("L21_V001"), 3)

	rows, err := layout.Metadata("L21_V001")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].FPS != 25 || rows[2].FrameIndex != 78 {
		t.Errorf("unexpected rows: %+v", rows)
	}
}
