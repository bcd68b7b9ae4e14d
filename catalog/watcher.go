package catalog

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is how long the watcher waits for the filesystem to settle
// before triggering a rebuild.
const defaultDebounce = 500 * time.Millisecond

// Watcher observes skill source directories and triggers index rebuilds when
// skill documents change. Rebuilds stay serialized on the watcher goroutine,
// keeping the "rebuild is externally serialized" contract.
type Watcher struct {
	rebuilder *Rebuilder
	debounce  time.Duration
	logger    *slog.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce overrides the settle delay before a rebuild fires.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatcherLogger sets the logger.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// NewWatcher creates a watcher driving rebuilder.
func NewWatcher(rebuilder *Rebuilder, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		rebuilder: rebuilder,
		debounce:  defaultDebounce,
		logger:    slog.Default().With(slog.String("component", "catalog-watcher")),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches all existing source trees until ctx is cancelled. Changes to
// markdown files are debounced and collapsed into a single rebuild.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	watched := 0
	for _, src := range w.rebuilder.scanner.Sources() {
		if err := addRecursive(fw, src.Path); err != nil {
			w.logger.Debug("source not watchable",
				slog.String("source", src.Name),
				slog.String("error", err.Error()))
			continue
		}
		watched++
	}
	if watched == 0 {
		return ErrNoSources
	}

	w.logger.Info("watching skill sources", slog.Int("sources", watched))

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			// Newly created directories must be added to the watch set.
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = addRecursive(fw, ev.Name)
				}
			}
			if !isSkillDocument(ev.Name) {
				continue
			}
			w.logger.Debug("skill document changed",
				slog.String("path", ev.Name),
				slog.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			if _, err := w.rebuilder.Rebuild(); err != nil {
				w.logger.Warn("rebuild failed", slog.String("error", err.Error()))
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", slog.String("error", err.Error()))
		}
	}
}

// isSkillDocument reports whether a changed path can affect the index.
func isSkillDocument(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md")
}

// addRecursive registers dir and all its subdirectories with the watcher.
func addRecursive(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != dir {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}
