// Package watcher watches the dataset features directory and triggers
// re-ingestion of changed videos, debounced per video.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 2 * time.Second

// Watcher observes .npy feature files and invokes a callback with the video
// id once writes to a file have settled.
type Watcher struct {
	featuresDir string
	onVideo     func(videoID string)
	debounce    time.Duration
	logger      *zap.Logger

	watcher     *fsnotify.Watcher
	mu          sync.Mutex
	debounceMap map[string]*time.Timer
	done        chan struct{}
	started     bool
	stopOnce    sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the settle time before a changed video is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher over the given features directory. onVideo is
// called with the video id of each settled feature-file change.
func NewWatcher(featuresDir string, onVideo func(videoID string), logger *zap.Logger, opts ...Option) *Watcher {
	w := &Watcher{
		featuresDir: featuresDir,
		onVideo:     onVideo,
		debounce:    defaultDebounce,
		logger:      logger,
		debounceMap: make(map[string]*time.Timer),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. It runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := watcher.Add(w.featuresDir); err != nil {
		_ = watcher.Close()
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.started = true
	w.mu.Unlock()

	w.logger.Info("watching features directory", zap.String("dir", w.featuresDir))
	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Warn("watch error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	videoID, ok := videoIDFromPath(ev.Name)
	if !ok {
		return
	}
	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		w.logger.Debug("feature file changed",
			zap.String("video_id", videoID), zap.String("op", ev.Op.String()))
		w.debounceVideo(videoID)
	case ev.Op&fsnotify.Remove != 0:
		w.cancelDebounce(videoID)
	}
}

// videoIDFromPath maps a feature file path to its video id; only .npy files
// qualify.
func videoIDFromPath(path string) (string, bool) {
	base := filepath.Base(path)
	if !strings.EqualFold(filepath.Ext(base), ".npy") {
		return "", false
	}
	return strings.TrimSuffix(base, filepath.Ext(base)), true
}

func (w *Watcher) debounceVideo(videoID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[videoID]; ok {
		t.Stop()
	}
	w.debounceMap[videoID] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.debounceMap, videoID)
		w.mu.Unlock()
		w.logger.Info("video settled, triggering ingest", zap.String("video_id", videoID))
		if w.onVideo != nil {
			w.onVideo(videoID)
		}
	})
}

func (w *Watcher) cancelDebounce(videoID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[videoID]; ok {
		t.Stop()
		delete(w.debounceMap, videoID)
	}
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started || w.watcher == nil {
		w.mu.Unlock()
		return
	}
	for videoID, t := range w.debounceMap {
		t.Stop()
		delete(w.debounceMap, videoID)
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
