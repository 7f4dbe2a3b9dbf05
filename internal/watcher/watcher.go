// Package watcher reloads the served dataset when its file changes on disk.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"reelgraph/internal/domain"
	"reelgraph/internal/loader"
	"reelgraph/internal/store"
)

// Watcher watches a file for changes
type Watcher struct {
	path     string
	onChange func(ctx context.Context, path string)
	debounce time.Duration
	logger   *slog.Logger
}

// New creates a new file watcher
func New(path string, onChange func(ctx context.Context, path string), logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     path,
		onChange: onChange,
		debounce: 500 * time.Millisecond,
		logger:   logger,
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Watch starts watching the file for changes.
// It blocks until the context is cancelled or an error occurs.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	// Watch the directory so editors that replace the file are still seen.
	dir := filepath.Dir(w.path)
	filename := filepath.Base(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.logger.Info("Watching dataset for changes", "path", w.path)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				if ctx.Err() != nil {
					return
				}
				w.logger.Info("Dataset file changed", "path", w.path)
				w.onChange(ctx, w.path)
			})

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", "error", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Replacer swaps the served graph. *service.GraphService satisfies it.
type Replacer interface {
	Replace(ctx context.Context, source string, fragment *domain.GraphFragment) store.LoadReport
}

// Reload returns an onChange callback that parses the changed file and
// replaces the graph with it. A file that fails to parse leaves the graph
// as it was.
func Reload(r Replacer, logger *slog.Logger) func(ctx context.Context, path string) {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, path string) {
		fragment, err := loader.LoadFile(path)
		if err != nil {
			logger.Error("Failed to reload dataset", "path", path, "error", err)
			return
		}
		r.Replace(ctx, path, fragment)
	}
}
