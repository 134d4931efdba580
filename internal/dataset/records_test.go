package dataset_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/duonguwu/ai-challenge/internal/dataset"
	"github.com/duonguwu/ai-challenge/internal/dataset/datasettest"
)

func testBuilder(layout *dataset.Layout) *dataset.RecordBuilder {
	return dataset.NewRecordBuilder(layout, 0.5, 0.7, zap.NewNop())
}

func TestBuildLabels(t *testing.T) {
	// Scores [0.3 0.6 0.9] with thresholds 0.5/0.7: "cat" is dropped, "dog"
	// and "car" survive, only "car" is high-confidence.
	layout, _ := datasettest.Layout(t)
	datasettest.WriteVideo(t, layout, "L21_V001", 1)
	datasettest.WriteDetections(t, filepath.Join(layout.ObjectsDir("L21_V001"), "001.json"),
		[]float64{0.3, 0.6, 0.9}, []string{"cat", "dog", "car"})

	records, err := testBuilder(layout).Build("L21_V001")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	p := records[0].Payload
	if !reflect.DeepEqual(p.ObjectLabels, []string{"dog", "car"}) {
		t.Errorf("labels = %v, want [dog car]", p.ObjectLabels)
	}
	if !reflect.DeepEqual(p.HighConfidenceObjects, []string{"car"}) {
		t.Errorf("high-confidence labels = %v, want [car]", p.HighConfidenceObjects)
	}
	if p.ObjectCount != 2 || !p.HasObjects {
		t.Errorf("object count = %d, has objects = %v", p.ObjectCount, p.HasObjects)
	}
}

func TestBuildLabelDedupPreservesOrder(t *testing.T) {
	layout, _ := datasettest.Layout(t)
	datasettest.WriteVideo(t, layout, "L21_V001", 1)
	datasettest.WriteDetections(t, filepath.Join(layout.ObjectsDir("L21_V001"), "001.json"),
		[]float64{0.9, 0.8, 0.95, 0.6}, []string{"dog", "cat", "dog", "cat"})

	records, err := testBuilder(layout).Build("L21_V001")
	if err != nil {
		t.Fatal(err)
	}
	p := records[0].Payload
	if !reflect.DeepEqual(p.ObjectLabels, []string{"dog", "cat"}) {
		t.Errorf("labels = %v, want first-seen order [dog cat]", p.ObjectLabels)
	}
	if !reflect.DeepEqual(p.HighConfidenceObjects, []string{"dog", "cat"}) {
		t.Errorf("high-confidence labels = %v, want [dog cat]", p.HighConfidenceObjects)
	}
	if len(p.Objects) != 4 {
		t.Errorf("detections are not deduplicated, got %d want 4", len(p.Objects))
	}
}

func TestBuildDetectionPaddingFallback(t *testing.T) {
	layout, _ := datasettest.Layout(t)
	datasettest.WriteVideo(t, layout, "L21_V001", 2)
	// Keyframe 1 uses the 4-digit convention, keyframe 2 the 3-digit one.
	datasettest.WriteDetections(t, filepath.Join(layout.ObjectsDir("L21_V001"), "0001.json"),
		[]float64{0.9}, []string{"car"})
	datasettest.WriteDetections(t, filepath.Join(layout.ObjectsDir("L21_V001"), "002.json"),
		[]float64{0.9}, []string{"dog"})

	records, err := testBuilder(layout).Build("L21_V001")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if got := records[0].Payload.ObjectLabels; !reflect.DeepEqual(got, []string{"car"}) {
		t.Errorf("keyframe 1 labels = %v", got)
	}
	if got := records[1].Payload.ObjectLabels; !reflect.DeepEqual(got, []string{"dog"}) {
		t.Errorf("keyframe 2 labels = %v", got)
	}
}

func TestBuildMissingDetectionsFile(t *testing.T) {
	layout, _ := datasettest.Layout(t)
	datasettest.WriteVideo(t, layout, "L21_V001", 1)

	records, err := testBuilder(layout).Build("L21_V001")
	if err != nil {
		t.Fatal(err)
	}
	p := records[0].Payload
	if len(p.Objects) != 0 || len(p.ObjectLabels) != 0 || p.HasObjects {
		t.Errorf("expected empty detections, got %+v", p)
	}
}

func TestBuildCorruptDetectionsSkipsRecordOnly(t *testing.T) {
	layout, _ := datasettest.Layout(t)
	datasettest.WriteVideo(t, layout, "L21_V001", 3)
	corrupt := filepath.Join(layout.ObjectsDir("L21_V001"), "002.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	records, err := testBuilder(layout).Build("L21_V001")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records (row 2 skipped), got %d", len(records))
	}
	if records[0].Payload.KeyframeIndex != 1 || records[1].Payload.KeyframeIndex != 3 {
		t.Errorf("unexpected keyframe order: %d, %d",
			records[0].Payload.KeyframeIndex, records[1].Payload.KeyframeIndex)
	}
}

func TestBuildRecordFields(t *testing.T) {
	layout, _ := datasettest.Layout(t)
	datasettest.WriteVideo(t, layout, "L21_V001", 2)

	records, err := testBuilder(layout).Build("L21_V001")
	if err != nil {
		t.Fatal(err)
	}
	p := records[1].Payload
	if p.OriginalID != "L21_V001_002" {
		t.Errorf("original id = %q", p.OriginalID)
	}
	if p.VideoID != "L21_V001" || p.KeyframeIndex != 2 || p.Batch != "L21" {
		t.Errorf("payload = %+v", p)
	}
	if p.KeyframeName != "002.jpg" {
		t.Errorf("keyframe name = %q", p.KeyframeName)
	}
	if p.FPS != 25 || p.FrameIndex != 52 {
		t.Errorf("provenance = fps %d frame %d", p.FPS, p.FrameIndex)
	}
	if len(records[1].Vector) != datasettest.VectorSize {
		t.Errorf("vector length = %d", len(records[1].Vector))
	}
}

func TestBuildIdempotentShape(t *testing.T) {
	// Rebuilding an unchanged video produces the same records and, with
	// deterministic point ids, the same ids.
	layout, _ := datasettest.Layout(t)
	datasettest.WriteVideo(t, layout, "L21_V001", 4)
	datasettest.WriteDetections(t, filepath.Join(layout.ObjectsDir("L21_V001"), "003.json"),
		[]float64{0.8, 0.6}, []string{"car", "tree"})

	first, err := testBuilder(layout).Build("L21_V001")
	if err != nil {
		t.Fatal(err)
	}
	second, err := testBuilder(layout).Build("L21_V001")
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("record counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].PointID != second[i].PointID {
			t.Errorf("point id changed for keyframe %d", i+1)
		}
		if !reflect.DeepEqual(first[i].Payload.ObjectLabels, second[i].Payload.ObjectLabels) {
			t.Errorf("labels changed for keyframe %d", i+1)
		}
	}
}

func TestPointIDDeterministic(t *testing.T) {
	a := dataset.PointID("L21_V001", 3)
	b := dataset.PointID("L21_V001", 3)
	c := dataset.PointID("L21_V001", 4)
	if a != b {
		t.Error("same keyframe should map to the same point id")
	}
	if a == c {
		t.Error("different keyframes should map to different point ids")
	}
}
