package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Qdrant.URL == "" {
		cfg.Qdrant.URL = "http://localhost:6333"
	}
	if cfg.Qdrant.Collection == "" {
		cfg.Qdrant.Collection = "video_keyframes"
	}
	if cfg.Qdrant.VectorSize == 0 {
		cfg.Qdrant.VectorSize = 512
	}
	if cfg.Qdrant.TimeoutSeconds == 0 {
		cfg.Qdrant.TimeoutSeconds = 30
	}
	if cfg.Embedder.URL == "" {
		cfg.Embedder.URL = "http://localhost:8090"
	}
	if cfg.Embedder.Dimensions == 0 {
		cfg.Embedder.Dimensions = cfg.Qdrant.VectorSize
	}
	if cfg.Embedder.TimeoutSeconds == 0 {
		cfg.Embedder.TimeoutSeconds = 30
	}
	if cfg.Dataset.FeaturesDir == "" {
		cfg.Dataset.FeaturesDir = "clip-features-32"
	}
	if cfg.Dataset.MetadataDir == "" {
		cfg.Dataset.MetadataDir = "map-keyframes"
	}
	if cfg.Dataset.ObjectsDir == "" {
		cfg.Dataset.ObjectsDir = "objects"
	}
	if cfg.Dataset.KeyframesDirPattern == "" {
		cfg.Dataset.KeyframesDirPattern = "Keyframes_L{batch}/keyframes"
	}
	if cfg.Ingest.BatchSize == 0 {
		cfg.Ingest.BatchSize = 1000
	}
	if cfg.Ingest.MaxWorkers == 0 {
		cfg.Ingest.MaxWorkers = 4
	}
	if cfg.Ingest.ConfidenceThreshold == 0 {
		cfg.Ingest.ConfidenceThreshold = 0.5
	}
	if cfg.Ingest.HighConfidenceThreshold == 0 {
		cfg.Ingest.HighConfidenceThreshold = 0.7
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 500
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 1000
	}
	if cfg.Watch.DebounceMS == 0 {
		cfg.Watch.DebounceMS = 2000
	}
}
