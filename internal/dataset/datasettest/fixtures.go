// Package datasettest provides dataset fixtures for tests: a temp content
// root with real .npy feature files, metadata tables, and detection files.
package datasettest

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/duonguwu/ai-challenge/internal/config"
	"github.com/duonguwu/ai-challenge/internal/dataset"
)

// VectorSize keeps fixture files small; production uses 512.
const VectorSize = 8

// Layout creates a temp content root with the standard directory names and
// returns a layout over it.
func Layout(t *testing.T) (*dataset.Layout, string) {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"clip-features-32", "map-keyframes", "objects"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			t.Fatal(err)
		}
	}
	layout, err := dataset.NewLayout(&config.DatasetConfig{
		Root:                root,
		FeaturesDir:         "clip-features-32",
		MetadataDir:         "map-keyframes",
		ObjectsDir:          "objects",
		KeyframesDirPattern: "Keyframes_L{batch}/keyframes",
	})
	if err != nil {
		t.Fatal(err)
	}
	return layout, root
}

// WriteNPY writes a float32 matrix in NumPy .npy v1.0 format.
func WriteNPY(t *testing.T, path string, rows [][]float32) {
	t.Helper()
	dim := 0
	if len(rows) > 0 {
		dim = len(rows[0])
	}
	header := fmt.Sprintf("{'descr': '<f4', 'fortran_order': False, 'shape': (%d, %d), }", len(rows), dim)
	// Pad so that magic+version+length+header is a multiple of 64 bytes,
	// with a trailing newline as the format requires.
	padded := len(header) + 1
	if rem := (10 + padded) % 64; rem != 0 {
		padded += 64 - rem
	}
	header = header + strings.Repeat(" ", padded-len(header)-1) + "\n"

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.Write([]byte("\x93NUMPY\x01\x00")); err != nil {
		t.Fatal(err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint16(len(header))); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte(header)); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 4)
	for _, row := range rows {
		for _, v := range row {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
			if _, err := f.Write(buf); err != nil {
				t.Fatal(err)
			}
		}
	}
}

// MakeVectors returns n unit basis vectors of the given dimension.
func MakeVectors(n, dim int) [][]float32 {
	rows := make([][]float32, n)
	for i := range rows {
		rows[i] = make([]float32, dim)
		rows[i][i%dim] = 1
	}
	return rows
}

// WriteMetadataCSV writes an n-row keyframe metadata table with the standard
// header. Row i carries pts_time i*1.04, fps 25, frame_idx i*26.
func WriteMetadataCSV(t *testing.T, path string, n int) {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("n,pts_time,fps,frame_idx\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&sb, "%d,%.2f,25,%d\n", i, float64(i)*1.04, i*26)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		t.Fatal(err)
	}
}

// WriteDetections writes a detection file with the given parallel scores and
// entity labels; class names and boxes are derived.
func WriteDetections(t *testing.T, path string, scores []float64, entities []string) {
	t.Helper()
	classes := make([]string, len(entities))
	boxes := make([][]float64, len(entities))
	for i, e := range entities {
		classes[i] = "/m/" + strings.ToLower(e)
		boxes[i] = []float64{0.1, 0.2, 0.3, 0.4}
	}
	data, err := json.Marshal(map[string]interface{}{
		"detection_scores":         scores,
		"detection_class_entities": entities,
		"detection_class_names":    classes,
		"detection_boxes":          boxes,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

// WriteVideo creates a complete, valid video fixture with n keyframes.
func WriteVideo(t *testing.T, layout *dataset.Layout, videoID string, n int) {
	t.Helper()
	WriteNPY(t, layout.FeaturesPath(videoID), MakeVectors(n, VectorSize))
	WriteMetadataCSV(t, layout.MetadataPath(videoID), n)
	if err := os.MkdirAll(layout.ObjectsDir(videoID), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(layout.KeyframesDir(videoID), 0755); err != nil {
		t.Fatal(err)
	}
}
