// Package manifest records per-video ingestion outcomes in SQLite so that
// unchanged videos can be skipped on re-ingestion.
package manifest

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry is one video's last recorded ingestion outcome.
type Entry struct {
	VideoID      string
	Keyframes    int
	Points       int
	Status       string // "succeeded" or "failed"
	FeatureMtime int64  // UnixNano of the feature file at ingest time
	FeatureSize  int64
	FinishedAt   time.Time
}

// Statuses recorded for an ingested video.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Store persists ingestion entries in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the manifest database at dbPath and initializes the
// schema. Parent directories are created if they do not exist.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create manifest directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS ingested_videos (
		video_id TEXT PRIMARY KEY,
		keyframes INTEGER NOT NULL,
		points INTEGER NOT NULL,
		status TEXT NOT NULL,
		feature_mtime INTEGER NOT NULL,
		feature_size INTEGER NOT NULL,
		finished_at TIMESTAMP NOT NULL
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Record inserts or replaces a video's ingestion outcome.
func (s *Store) Record(ctx context.Context, e *Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ingested_videos (video_id, keyframes, points, status, feature_mtime, feature_size, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(video_id) DO UPDATE SET
			keyframes = excluded.keyframes,
			points = excluded.points,
			status = excluded.status,
			feature_mtime = excluded.feature_mtime,
			feature_size = excluded.feature_size,
			finished_at = excluded.finished_at`,
		e.VideoID, e.Keyframes, e.Points, e.Status, e.FeatureMtime, e.FeatureSize, e.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to record %s: %w", e.VideoID, err)
	}
	return nil
}

// Get returns a video's last entry, or sql.ErrNoRows if never recorded.
func (s *Store) Get(ctx context.Context, videoID string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT video_id, keyframes, points, status, feature_mtime, feature_size, finished_at
		 FROM ingested_videos WHERE video_id = ?`, videoID)
	var e Entry
	err := row.Scan(&e.VideoID, &e.Keyframes, &e.Points, &e.Status, &e.FeatureMtime, &e.FeatureSize, &e.FinishedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// UpToDate reports whether videoID was last ingested successfully from a
// feature file with the given mtime and size.
func (s *Store) UpToDate(ctx context.Context, videoID string, mtime, size int64) bool {
	e, err := s.Get(ctx, videoID)
	if err != nil {
		return false
	}
	return e.Status == StatusSucceeded && e.FeatureMtime == mtime && e.FeatureSize == size
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
