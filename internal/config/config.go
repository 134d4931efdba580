// Package config provides configuration loading and structs for the keyframe search server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug    bool           `yaml:"debug"`
	Server   ServerConfig   `yaml:"server"`
	Qdrant   QdrantConfig   `yaml:"qdrant"`
	Embedder EmbedderConfig `yaml:"embedder"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Search   SearchConfig   `yaml:"search"`
	Watch    WatchConfig    `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// QdrantConfig holds vector store connection and collection settings.
type QdrantConfig struct {
	URL            string `yaml:"url"`
	Collection     string `yaml:"collection"`
	VectorSize     int    `yaml:"vector_size"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// EmbedderConfig holds CLIP embedding service settings.
type EmbedderConfig struct {
	URL            string `yaml:"url"`
	Dimensions     int    `yaml:"dimensions"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// DatasetConfig holds the content root and per-kind directory names.
type DatasetConfig struct {
	Root                string `yaml:"root"`
	FeaturesDir         string `yaml:"features_dir"`
	MetadataDir         string `yaml:"metadata_dir"`
	ObjectsDir          string `yaml:"objects_dir"`
	KeyframesDirPattern string `yaml:"keyframes_dir_pattern"` // contains {batch}
}

// IngestConfig holds ingestion pipeline settings.
type IngestConfig struct {
	BatchSize               int     `yaml:"batch_size"`
	MaxWorkers              int     `yaml:"max_workers"`
	ConfidenceThreshold     float64 `yaml:"confidence_threshold"`
	HighConfidenceThreshold float64 `yaml:"high_confidence_threshold"`
	Validate                *bool   `yaml:"validate"`
	ManifestPath            string  `yaml:"manifest_path"`
}

// ValidateOrDefault returns whether to validate the dataset before ingesting;
// defaults to true when unset.
func (c *IngestConfig) ValidateOrDefault() bool {
	if c.Validate != nil {
		return *c.Validate
	}
	return true
}

// SearchConfig holds search limits and defaults.
type SearchConfig struct {
	DefaultLimit          int     `yaml:"default_limit"`
	MaxLimit              int     `yaml:"max_limit"`
	DefaultScoreThreshold float64 `yaml:"default_score_threshold"`
}

// WatchConfig holds dataset watch settings.
type WatchConfig struct {
	Enabled    bool `yaml:"enabled"`
	DebounceMS int  `yaml:"debounce_ms"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Dataset.Root = expandPath(cfg.Dataset.Root, configDir)
	cfg.Ingest.ManifestPath = expandPath(cfg.Ingest.ManifestPath, configDir)

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
