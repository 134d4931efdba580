// Package dataset provides dataset layout resolution, validation, and
// keyframe record construction over a content root.
package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/duonguwu/ai-challenge/internal/config"
)

// Layout resolves paths for the per-video files of a content root:
// feature matrices, metadata tables, detection files, and keyframe images.
// It performs no I/O beyond existence checks and directory listing.
type Layout struct {
	root                string
	featuresDir         string
	metadataDir         string
	objectsDir          string
	keyframesDirPattern string
}

// NewLayout creates a layout for the configured content root.
// Returns an error if the root does not exist.
func NewLayout(cfg *config.DatasetConfig) (*Layout, error) {
	info, err := os.Stat(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("dataset root %q: %w", cfg.Root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset root %q is not a directory", cfg.Root)
	}
	return &Layout{
		root:                cfg.Root,
		featuresDir:         cfg.FeaturesDir,
		metadataDir:         cfg.MetadataDir,
		objectsDir:          cfg.ObjectsDir,
		keyframesDirPattern: cfg.KeyframesDirPattern,
	}, nil
}

// Root returns the content root path.
func (l *Layout) Root() string { return l.root }

// FeaturesRoot returns the directory holding the per-video feature matrices.
func (l *Layout) FeaturesRoot() string {
	return filepath.Join(l.root, l.featuresDir)
}

// FeaturesPath returns the path of a video's feature matrix (.npy).
func (l *Layout) FeaturesPath(videoID string) string {
	return filepath.Join(l.root, l.featuresDir, videoID+".npy")
}

// MetadataPath returns the path of a video's keyframe metadata table (.csv).
func (l *Layout) MetadataPath(videoID string) string {
	return filepath.Join(l.root, l.metadataDir, videoID+".csv")
}

// ObjectsDir returns the directory holding a video's per-keyframe detection files.
func (l *Layout) ObjectsDir(videoID string) string {
	return filepath.Join(l.root, l.objectsDir, videoID)
}

// DetectionCandidates returns the candidate detection file paths for a keyframe,
// in resolution order: 4-digit zero-padded first, then 3-digit. Both naming
// conventions appear in the wild; the first existing file wins.
func (l *Layout) DetectionCandidates(videoID string, keyframeNum int) []string {
	dir := l.ObjectsDir(videoID)
	return []string{
		filepath.Join(dir, fmt.Sprintf("%04d.json", keyframeNum)),
		filepath.Join(dir, fmt.Sprintf("%03d.json", keyframeNum)),
	}
}

// Batch extracts the batch token from a video id: "L21_V001" -> "L21".
func Batch(videoID string) string {
	if i := strings.IndexByte(videoID, '_'); i > 0 {
		return videoID[:i]
	}
	return videoID
}

// KeyframesDir returns the directory holding a video's keyframe images.
// The configured pattern's {batch} placeholder is filled with the numeric
// part of the batch token ("L21_V001" -> "21").
func (l *Layout) KeyframesDir(videoID string) string {
	batch := strings.TrimPrefix(Batch(videoID), "L")
	dir := strings.ReplaceAll(l.keyframesDirPattern, "{batch}", batch)
	return filepath.Join(l.root, dir, videoID)
}

// ImagePath returns the path of a keyframe's image, relative to the content
// root. The path is display-only; no existence check is performed.
func (l *Layout) ImagePath(videoID string, keyframeNum int) string {
	return filepath.Join(l.KeyframesDir(videoID), fmt.Sprintf("%03d.jpg", keyframeNum))
}

// Videos enumerates candidate video ids from the feature-file directory,
// sorted for deterministic processing order.
func (l *Layout) Videos() ([]string, error) {
	dir := filepath.Join(l.root, l.featuresDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read features dir %q: %w", dir, err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".npy") {
			ids = append(ids, strings.TrimSuffix(name, ".npy"))
		}
	}
	sort.Strings(ids)
	return ids, nil
}
