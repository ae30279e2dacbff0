// Package watch reruns audits when Swift sources change on disk.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/swiftaudit/swiftaudit/internal/config"
)

// Watcher monitors project roots for Swift file changes and invokes a
// callback after a quiet period.
//
// Design decision: Events are debounced rather than handled one by one
// because editors and git operations touch many files in a burst; a scan
// per event would wedge the terminal in rescans.
type Watcher struct {
	// debounce is the quiet period before the callback fires.
	debounce time.Duration

	// excludedDirs are directory names never watched.
	excludedDirs map[string]bool

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a rescan.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithExcludedDirs adds directory names to skip when watching.
func WithExcludedDirs(dirs []string) Option {
	return func(w *Watcher) {
		for _, d := range dirs {
			w.excludedDirs[d] = true
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// New creates a Watcher with the built-in directory exclusions.
func New(opts ...Option) *Watcher {
	w := &Watcher{
		debounce:     config.DefaultWatchDebounce,
		excludedDirs: make(map[string]bool),
		logger:       slog.Default(),
	}
	for _, d := range config.DefaultExcludedDirs {
		w.excludedDirs[d] = true
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch blocks watching the given roots until the context is cancelled.
// After each debounced burst of Swift file changes, onChange is called.
// An error from onChange is logged, not fatal; the watch keeps running so
// a transient scan failure does not end the session.
func (w *Watcher) Watch(ctx context.Context, roots []string, onChange func(ctx context.Context) error) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	for _, root := range roots {
		if err := w.addRecursive(fsw, root); err != nil {
			return err
		}
	}

	w.logger.Info("watching for changes",
		"roots", roots,
		"debounce", w.debounce,
	)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}

			// New directories must be added to the watch; everything
			// else only matters when it is a Swift file.
			if event.Op.Has(fsnotify.Create) {
				if w.watchableDir(event.Name) {
					if err := w.addRecursive(fsw, event.Name); err != nil {
						w.logger.Warn("failed to watch new directory",
							"dir", event.Name, "error", err)
					}
				}
			}
			if !strings.HasSuffix(event.Name, ".swift") {
				continue
			}

			w.logger.Debug("source changed", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-timerC:
			timer = nil
			timerC = nil
			if err := onChange(ctx); err != nil {
				w.logger.Warn("rescan failed", "error", err)
			}
		}
	}
}

// addRecursive watches a directory tree, skipping excluded directories.
func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if w.excludedDirs[name] || (strings.HasPrefix(name, ".") && path != root) {
			return fs.SkipDir
		}
		return fsw.Add(path)
	})
}

// watchableDir reports whether a created path is a directory worth watching.
func (w *Watcher) watchableDir(path string) bool {
	base := filepath.Base(path)
	if w.excludedDirs[base] || strings.HasPrefix(base, ".") {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
