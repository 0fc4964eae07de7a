package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceInterval is the quiet period before a reload fires.
const DefaultDebounceInterval = 100 * time.Millisecond

// LoadFunc reads and validates the configuration file at path.
type LoadFunc func(path string) (*Config, error)

// ReloadFunc receives each configuration that loaded and validated after a
// file change.
type ReloadFunc func(cfg *Config)

// Watcher reloads a configuration file when it changes on disk.
// It watches the parent directory so editors that replace the file by rename
// are still observed.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce *Debouncer
	load     LoadFunc
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher for the configuration file at path.
// A zero interval uses DefaultDebounceInterval.
func NewWatcher(path string, interval time.Duration, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultDebounceInterval
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configuration path %q: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		path:     abs,
		watcher:  fsw,
		debounce: NewDebouncer(interval),
		load:     LoadConfigWithEnvOverrides,
		logger:   logger.With("component", "config.watcher"),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// SetLoader replaces the function used to read the file on change. The
// default is LoadConfigWithEnvOverrides. Call it before Watch.
func (w *Watcher) SetLoader(fn LoadFunc) {
	if fn != nil {
		w.load = fn
	}
}

// Watch blocks until ctx is cancelled or Stop is called. Each burst of
// changes reloads the file through the loader; a configuration that fails
// to load is logged and the previous one stays in effect.
func (w *Watcher) Watch(ctx context.Context, onReload ReloadFunc) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer close(w.doneCh)

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %q: %w", filepath.Dir(w.path), err)
	}

	w.logger.Info("config watcher started", "path", w.path)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("config watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("config watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}

			w.logger.Debug("config file event", "op", event.Op.String())
			w.debounce.Trigger(func() {
				cfg, err := w.load(w.path)
				if err != nil {
					w.logger.Error("config reload failed", "error", err)
					return
				}
				w.logger.Info("config reloaded", "path", w.path)
				if onReload != nil {
					onReload(cfg)
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("config watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and cancels a pending reload.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}

	w.debounce.Stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return name == w.path
}

// Debouncer collects rapid events and runs the latest callback once after a
// quiet period.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopped  bool
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger schedules callback after the interval, replacing any pending one.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		cb := d.callback
		d.callback = nil
		stopped := d.stopped
		d.mu.Unlock()

		if cb != nil && !stopped {
			cb()
		}
	})
}

// Stop cancels any pending callback. Later Triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
