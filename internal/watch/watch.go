// Package watch reports changes to the layout file made outside the session.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
)

// DefaultDebounce coalesces the burst of events an editor produces on save.
const DefaultDebounce = 200 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	Clock    clockwork.Clock
	Logger   *slog.Logger
	// OnChange runs on the watcher goroutine after the file settles.
	OnChange func()
}

// Watcher watches one file. The containing directory is watched so atomic
// replacements (write temp, rename) are seen.
type Watcher struct {
	path     string
	debounce time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	onChange func()
	fsw      *fsnotify.Watcher
}

// New starts watching path's directory. The directory must exist.
func New(path string, opts Options) (*Watcher, error) {
	if opts.OnChange == nil {
		return nil, fmt.Errorf("watch: OnChange is required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:     abs,
		debounce: opts.Debounce,
		clock:    opts.Clock,
		logger:   opts.Logger,
		onChange: opts.OnChange,
		fsw:      fsw,
	}, nil
}

// Path is the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run delivers change notifications until ctx is cancelled or the watcher
// is closed.
func (w *Watcher) Run(ctx context.Context) {
	var timer clockwork.Timer
	var pending <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	w.logger.Info("watching layout file", "path", w.path)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("layout file event", "op", event.Op.String())
			if timer == nil {
				timer = w.clock.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.Chan()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "path", w.path, "error", err)
		case <-pending:
			pending = nil
			w.notify()
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}

func (w *Watcher) notify() {
	defer func() {
		if err := recover(); err != nil {
			w.logger.Error("watch callback panic recovered", "error", err)
		}
	}()
	w.onChange()
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
