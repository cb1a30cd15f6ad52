// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback whenever one of a fixed set of files
// changes on disk. It backs the --watch flag on kiln render: the recipe
// and its lock file are watched, and each burst of writes triggers a
// single re-render after a quiet period.
//
// The watcher registers the parent directories of the requested files
// rather than the files themselves. Editors that save through a rename
// replace the inode, which would silently detach a direct file watch;
// a directory watch keeps reporting events for the path.
package watch

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is the quiet period after the last event before the
// callback fires. Editors emit several events per save (truncate, write,
// chmod, rename); the delay coalesces them into one invocation.
const defaultDebounce = 500 * time.Millisecond

type (
	// Callback is invoked after each settled burst of changes. The
	// changed slice holds the affected paths as they were passed to New,
	// sorted. A returned error is logged and watching continues.
	Callback func(ctx context.Context, changed []string) error

	// Option configures a Watcher.
	Option func(*Watcher)

	// Watcher delivers debounced change notifications for a fixed set of
	// files. The zero value is not usable; construct one with New.
	Watcher struct {
		fsw      *fsnotify.Watcher
		files    map[string]string // cleaned absolute path -> path as given
		debounce time.Duration
		onChange Callback
		logger   *log.Logger

		started atomic.Bool
	}
)

// WithDebounce sets the quiet period between the last file event and the
// callback. Values <= 0 keep the default.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for transient errors and callback failures.
func WithLogger(logger *log.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// New builds a watcher for the given files and registers their parent
// directories with the OS. The files do not have to exist yet; a path
// created later inside a watched directory is picked up normally.
func New(files []string, onChange Callback, opts ...Option) (*Watcher, error) {
	if len(files) == 0 {
		return nil, errors.New("no files to watch")
	}
	if onChange == nil {
		return nil, errors.New("nil change callback")
	}

	w := &Watcher{
		files:    make(map[string]string, len(files)),
		debounce: defaultDebounce,
		onChange: onChange,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}

	dirs := make(map[string]struct{})
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", f, err)
		}
		abs = filepath.Clean(abs)
		w.files[abs] = f
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.fsw = fsw
	return w, nil
}

// Run blocks processing events until ctx is cancelled or the watcher
// breaks. Cancellation is a normal shutdown and returns nil. Run may be
// called at most once per Watcher.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watcher already running")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		busy    atomic.Bool
	)

	// fire runs on the timer goroutine. If a previous callback is still
	// running, the timer is re-armed so the pending set is retried later
	// instead of dropped.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !busy.CompareAndSwap(false, true) {
			mu.Lock()
			timer.Reset(w.debounce)
			mu.Unlock()
			return
		}
		defer busy.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		if err := w.onChange(ctx, changed); err != nil {
			w.logger.Error("Change handler failed", "err", err)
		}
	}

	defer func() {
		mu.Lock()
		t := timer
		mu.Unlock()
		if t != nil {
			t.Stop()
		}
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("Failed to close file watcher", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch event channel closed")
			}
			name, matched := w.match(evt)
			if !matched {
				continue
			}
			mu.Lock()
			pending[name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch error channel closed")
			}
			if isFatalWatchError(err) {
				return fmt.Errorf("file watcher failed: %w", err)
			}
			w.logger.Warn("Transient file watch error", "err", err)
		}
	}
}

// match reports whether evt concerns a watched file, returning the path
// as it was handed to New. Chmod-only events are ignored; they carry no
// content change and some editors emit them constantly.
func (w *Watcher) match(evt fsnotify.Event) (string, bool) {
	if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
		return "", false
	}
	name, ok := w.files[filepath.Clean(evt.Name)]
	return name, ok
}
