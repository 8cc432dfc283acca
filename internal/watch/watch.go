// Package watch re-runs a build whenever a file it read changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/erraggy/specflat/loader"
	"github.com/erraggy/specflat/source"
)

// DefaultDebounce is how long the watcher waits after the last change
// before rebuilding.
const DefaultDebounce = 100 * time.Millisecond

// BuildFunc runs one build and returns the identifiers of every document it
// read. Identifiers that are URLs are not watched.
type BuildFunc func(ctx context.Context) ([]string, error)

// Option configures Run
type Option func(*config)

type config struct {
	debounce time.Duration
	logger   loader.Logger
}

// WithDebounce sets the quiet period after a change before rebuilding.
func WithDebounce(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithLogger sets the logger for watch events and build failures.
func WithLogger(l loader.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Run calls build, then calls it again each time entry or one of the files
// the previous build returned is written, created, renamed, or removed.
// Bursts of changes within the debounce window cause a single rebuild.
//
// Build errors are logged and do not stop the watch; entry is always
// watched so a broken document can be fixed in place. Run returns nil when
// ctx is cancelled.
func Run(ctx context.Context, entry string, build BuildFunc, opts ...Option) error {
	cfg := &config{debounce: DefaultDebounce, logger: loader.NopLogger{}}
	for _, opt := range opts {
		opt(cfg)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer fsw.Close()

	w := &watcher{
		fsw:    fsw,
		entry:  entry,
		logger: cfg.logger,
		files:  make(map[string]bool),
		dirs:   make(map[string]bool),
	}
	w.rebuild(ctx, build)

	// The timer only runs while a rebuild is pending.
	timer := time.NewTimer(cfg.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.files[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.logger.Debug("file changed", "file", event.Name, "event", event.Op.String())
			timer.Reset(cfg.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("file watcher error", "error", err)

		case <-timer.C:
			w.rebuild(ctx, build)
		}
	}
}

type watcher struct {
	fsw    *fsnotify.Watcher
	entry  string
	logger loader.Logger

	files map[string]bool
	dirs  map[string]bool
}

// rebuild runs build and watches the files it reports.
func (w *watcher) rebuild(ctx context.Context, build BuildFunc) {
	ids, err := build(ctx)
	if err != nil {
		w.logger.Error("rebuild failed", "error", err)
	}
	w.track(append([]string{w.entry}, ids...))
}

// track replaces the watched file set. Directories are watched rather than
// files so that editors that save by rename are still seen.
func (w *watcher) track(ids []string) {
	files := make(map[string]bool, len(ids))
	dirs := make(map[string]bool)
	for _, id := range ids {
		if id == "" || source.IsURL(id) {
			continue
		}
		abs, err := filepath.Abs(id)
		if err != nil {
			continue
		}
		files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	for dir := range dirs {
		if w.dirs[dir] {
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			w.logger.Warn("cannot watch directory", "dir", dir, "error", err)
			delete(dirs, dir)
		}
	}
	for dir := range w.dirs {
		if !dirs[dir] {
			_ = w.fsw.Remove(dir)
		}
	}
	w.files = files
	w.dirs = dirs
	w.logger.Debug("watching", "files", len(files), "directories", len(dirs))
}
