// Package watch reruns the map pipeline when the game save changes.
//
// Aurora writes its SQLite save in place and may touch journal files next
// to it, so the watcher observes the save's directory and reacts to any
// write, create or rename of the save or its -journal, -wal and -shm
// companions. Bursts of events are debounced into one reload.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Defaults for the debouncer.
const (
	DefaultDebounce = 500 * time.Millisecond
	DefaultMaxWait  = 5 * time.Second
)

// Watcher watches one save file.
type Watcher struct {
	path     string
	debounce time.Duration
	maxWait  time.Duration
	logger   *log.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period and the maximum delay of a reload.
func WithDebounce(quiet, maxWait time.Duration) Option {
	return func(w *Watcher) {
		if quiet > 0 {
			w.debounce = quiet
		}
		if maxWait > 0 {
			w.maxWait = maxWait
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New creates a watcher for the file at path.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	w := &Watcher{
		path:     abs,
		debounce: DefaultDebounce,
		maxWait:  DefaultMaxWait,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string { return w.path }

// Run calls onChange after every debounced burst of changes until ctx is
// done. onChange runs on the watcher goroutine; changes arriving while it
// runs are merged into the next call.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("watching save", "path", w.path, "debounce", w.debounce)

	d := newDebouncer(w.debounce, w.maxWait)
	defer d.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.relevant(ev) {
				w.logger.Debug("save changed", "file", filepath.Base(ev.Name), "op", ev.Op.String())
				d.Trigger()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)

		case <-d.C():
			onChange(ctx)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	if name == w.path {
		return true
	}
	for _, suffix := range []string{"-journal", "-wal", "-shm"} {
		if strings.TrimSuffix(name, suffix) == w.path && strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
