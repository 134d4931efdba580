// Package main is the keyframe-search CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/duonguwu/ai-challenge/internal/cli"
	"github.com/duonguwu/ai-challenge/internal/config"
	"github.com/duonguwu/ai-challenge/internal/dataset"
	"github.com/duonguwu/ai-challenge/internal/embedding"
	"github.com/duonguwu/ai-challenge/internal/ingest"
	"github.com/duonguwu/ai-challenge/internal/manifest"
	"github.com/duonguwu/ai-challenge/internal/search"
	"github.com/duonguwu/ai-challenge/internal/server"
	"github.com/duonguwu/ai-challenge/internal/vectorstore"
	"github.com/duonguwu/ai-challenge/internal/watcher"
	"github.com/duonguwu/ai-challenge/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/keyframe-search/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "keyframe-search server" from the project dir uses the
// project's config.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ingest":
		runIngest()
	case "validate":
		runValidate()
	case "version", "--version", "-v":
		fmt.Printf("keyframe-search version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// Components holds initialized services shared by the subcommands.
type Components struct {
	Store    vectorstore.Store
	Embedder embedding.Embedder
	Layout   *dataset.Layout
	Manifest *manifest.Store
}

func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Manifest != nil {
		_ = c.Manifest.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, needManifest bool) (*Components, error) {
	store, err := vectorstore.NewQdrantStore(
		cfg.Qdrant.URL,
		time.Duration(cfg.Qdrant.TimeoutSeconds)*time.Second,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}

	var embedder embedding.Embedder
	if cfg.Embedder.URL != "" {
		embedder = embedding.NewClipEmbedder(
			cfg.Embedder.URL,
			cfg.Embedder.Dimensions,
			time.Duration(cfg.Embedder.TimeoutSeconds)*time.Second,
		)
	} else {
		logger.Warn("no embedder url configured, using mock embeddings")
		embedder = embedding.NewMockEmbedder(cfg.Embedder.Dimensions)
	}

	layout, err := dataset.NewLayout(&cfg.Dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}

	c := &Components{Store: store, Embedder: embedder, Layout: layout}
	if needManifest && cfg.Ingest.ManifestPath != "" {
		m, err := manifest.Open(cfg.Ingest.ManifestPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open ingest manifest: %w", err)
		}
		c.Manifest = m
	}
	return c, nil
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, cfg.Watch.Enabled)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	engine := search.NewEngine(
		components.Store,
		components.Embedder,
		cfg.Qdrant.Collection,
		&cfg.Search,
		logger,
	)

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Watch.Enabled {
		pipeOpts := []ingest.PipelineOption{}
		if components.Manifest != nil {
			pipeOpts = append(pipeOpts, ingest.WithManifest(components.Manifest))
		}
		pipeline := ingest.NewPipeline(
			components.Layout,
			components.Store,
			&cfg.Ingest,
			cfg.Qdrant.Collection,
			cfg.Qdrant.VectorSize,
			logger,
			pipeOpts...,
		)
		watchSvc := watcher.NewWatcher(
			components.Layout.FeaturesRoot(),
			func(videoID string) {
				if _, err := pipeline.IngestVideo(context.Background(), videoID); err != nil {
					logger.Warn("watch ingest failed", zap.String("video_id", videoID), zap.Error(err))
				}
			},
			logger,
			watcher.WithDebounce(time.Duration(cfg.Watch.DebounceMS)*time.Millisecond),
		)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer watchSvc.Stop()
	}

	srv := server.NewServer(engine, components.Store, components.Embedder, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	force := fs.Bool("force", false, "reingest videos even when unchanged since the last run")
	workers := fs.Int("workers", 0, "override ingest worker count")
	batchSize := fs.Int("batch-size", 0, "override upload batch size")
	noValidate := fs.Bool("no-validate", false, "skip dataset validation before ingesting")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *workers > 0 {
		cfg.Ingest.MaxWorkers = *workers
	}
	if *batchSize > 0 {
		cfg.Ingest.BatchSize = *batchSize
	}
	if *noValidate {
		off := false
		cfg.Ingest.Validate = &off
	}

	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, true)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	pipeOpts := []ingest.PipelineOption{ingest.WithForce(*force)}
	if components.Manifest != nil {
		pipeOpts = append(pipeOpts, ingest.WithManifest(components.Manifest))
	}
	pipeline := ingest.NewPipeline(
		components.Layout,
		components.Store,
		&cfg.Ingest,
		cfg.Qdrant.Collection,
		cfg.Qdrant.VectorSize,
		logger,
		pipeOpts...,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	summary, err := pipeline.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingestion failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteIngestSummary(os.Stdout, summary, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	if summary.VideosFailed > 0 {
		os.Exit(1)
	}
}

func runValidate() {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	layout, err := dataset.NewLayout(&cfg.Dataset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open dataset: %v\n", err)
		os.Exit(1)
	}
	validator := dataset.NewValidator(layout, cfg.Qdrant.VectorSize, logger)
	report, err := validator.Validate(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteValidationReport(os.Stdout, report, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	if report.ValidVideos == 0 {
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`keyframe-search - Video keyframe semantic search

Usage:
  keyframe-search server [flags]    Start the HTTP search API
  keyframe-search ingest [flags]    Ingest the dataset into the vector index
  keyframe-search validate [flags]  Validate the dataset layout without ingesting
  keyframe-search version           Show version
  keyframe-search help              Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/keyframe-search/config.yaml)
  --debug            Enable debug logging

Ingest Flags:
  --config string      Config file path
  --force              Reingest videos even when unchanged since the last run
  --workers int        Override ingest worker count
  --batch-size int     Override upload batch size
  --no-validate        Skip dataset validation before ingesting
  --output string      Output format: text or json (default: text)

Validate Flags:
  --config string    Config file path
  --output string    Output format: text or json (default: text)

Examples:
  keyframe-search server
  keyframe-search ingest --workers 8
  keyframe-search ingest --force --output json
  keyframe-search validate`)
}
