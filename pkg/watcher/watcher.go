// Package watcher re-runs work when input files change on disk.
//
// Files are watched through their directories: editors that save by
// writing a temporary file and renaming it over the original would
// otherwise detach a per-file watch after the first save.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to a set of files in batches. A batch is
// delivered once no watched file has changed for the debounce interval.
type Watcher struct {
	fsw      *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration
	onChange func(changed []string)

	mu      sync.Mutex
	files   map[string]bool // absolute paths
	dirs    map[string]int  // watched directory -> number of files in it
	pending map[string]bool
	timer   *time.Timer
}

// New creates a watcher calling onChange with the sorted absolute paths of
// the files changed in each batch. onChange runs on its own goroutine and
// may call Replace.
func New(debounce time.Duration, logger *slog.Logger, onChange func(changed []string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create watcher")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		fsw:      fsw,
		logger:   logger,
		debounce: debounce,
		onChange: onChange,
		files:    make(map[string]bool),
		dirs:     make(map[string]int),
		pending:  make(map[string]bool),
	}, nil
}

// Replace makes files the watched set. Directories no longer needed are
// released; changes already pending for dropped files are discarded.
func (w *Watcher) Replace(files []string) error {
	next := make(map[string]bool, len(files))
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve path %s", file)
		}
		next[abs] = true
	}
	dirs := make(map[string]int)
	for file := range next {
		dirs[filepath.Dir(file)]++
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for dir := range dirs {
		if w.dirs[dir] > 0 {
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			return errors.Wrapf(err, "failed to watch %s", dir)
		}
	}
	for dir := range w.dirs {
		if dirs[dir] > 0 {
			continue
		}
		if err := w.fsw.Remove(dir); err != nil {
			w.logger.Warn("could not unwatch", "dir", dir, "error", err)
		}
	}
	for file := range w.pending {
		if !next[file] {
			delete(w.pending, file)
		}
	}

	w.files, w.dirs = next, dirs
	w.logger.Debug("watching", "files", len(next), "dirs", len(dirs))
	return nil
}

// Run dispatches file system events until ctx is done or the watcher is
// closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// handle records a write to, or a replacement of, a watched file and
// restarts the quiet period
func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.files[event.Name] {
		return
	}
	w.pending[event.Name] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

// flush hands the pending batch to onChange
func (w *Watcher) flush() {
	w.mu.Lock()
	changed := make([]string, 0, len(w.pending))
	for file := range w.pending {
		changed = append(changed, file)
	}
	clear(w.pending)
	w.timer = nil
	w.mu.Unlock()

	if len(changed) == 0 {
		return
	}
	slices.Sort(changed)
	w.logger.Debug("files changed", "files", changed)
	if w.onChange != nil {
		w.onChange(changed)
	}
}

// Close stops watching; a pending batch is dropped
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	clear(w.pending)
	w.mu.Unlock()
	return w.fsw.Close()
}
