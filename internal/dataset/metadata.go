package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// MetadataRow is one row of a video's keyframe metadata table.
// Row order matches keyframe order.
type MetadataRow struct {
	PtsTime    float64
	FPS        int
	FrameIndex int
}

// Metadata reads a video's keyframe metadata table. The CSV must carry a
// header naming at least pts_time, fps, and frame_idx; column order varies
// between dataset drops, so columns are resolved by name.
func (l *Layout) Metadata(videoID string) ([]MetadataRow, error) {
	f, err := os.Open(l.MetadataPath(videoID))
	if err != nil {
		return nil, fmt.Errorf("open metadata: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read metadata header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{"pts_time", "fps", "frame_idx"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("metadata missing column %q", required)
		}
	}

	var rows []MetadataRow
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read metadata line %d: %w", line, err)
		}
		row, err := parseMetadataRow(record, cols)
		if err != nil {
			return nil, fmt.Errorf("metadata line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseMetadataRow(record []string, cols map[string]int) (MetadataRow, error) {
	var row MetadataRow
	pts, err := strconv.ParseFloat(record[cols["pts_time"]], 64)
	if err != nil {
		return row, fmt.Errorf("pts_time: %w", err)
	}
	// fps is nominally an integer but some tables carry it as "25.0".
	fps, err := strconv.ParseFloat(record[cols["fps"]], 64)
	if err != nil {
		return row, fmt.Errorf("fps: %w", err)
	}
	frameIdx, err := strconv.Atoi(record[cols["frame_idx"]])
	if err != nil {
		return row, fmt.Errorf("frame_idx: %w", err)
	}
	row.PtsTime = pts
	row.FPS = int(fps)
	row.FrameIndex = frameIdx
	return row, nil
}
