package dataset

import (
	"fmt"
	"os"

	"github.com/sbinet/npyio"
)

// FeatureShape reads only the header of a video's feature matrix and returns
// (rows, dim). Used by validation, which does not need the vector data.
func (l *Layout) FeatureShape(videoID string) (rows, dim int, err error) {
	f, err := os.Open(l.FeaturesPath(videoID))
	if err != nil {
		return 0, 0, fmt.Errorf("open features: %w", err)
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return 0, 0, fmt.Errorf("read npy header: %w", err)
	}
	shape := r.Header.Descr.Shape
	if len(shape) != 2 {
		return 0, 0, fmt.Errorf("expected 2-D feature matrix, got shape %v", shape)
	}
	return shape[0], shape[1], nil
}

// Features reads a video's full feature matrix as one row per keyframe.
// The underlying file must hold float32 data of shape (rows, dim).
func (l *Layout) Features(videoID string) ([][]float32, error) {
	f, err := os.Open(l.FeaturesPath(videoID))
	if err != nil {
		return nil, fmt.Errorf("open features: %w", err)
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("read npy header: %w", err)
	}
	shape := r.Header.Descr.Shape
	if len(shape) != 2 {
		return nil, fmt.Errorf("expected 2-D feature matrix, got shape %v", shape)
	}
	rows, dim := shape[0], shape[1]

	raw := make([]float32, rows*dim)
	if err := r.Read(&raw); err != nil {
		return nil, fmt.Errorf("read npy data: %w", err)
	}

	vectors := make([][]float32, rows)
	for i := 0; i < rows; i++ {
		vectors[i] = raw[i*dim : (i+1)*dim : (i+1)*dim]
	}
	return vectors, nil
}
