package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nanoagent.yaml")
	if err := os.WriteFile(path, []byte("engine:\n  max_strategies: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path, 20*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	reloaded := make(chan *Config, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func(cfg *Config) { reloaded <- cfg })
	}()

	// Rewrite until the watcher has registered the directory and reported.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	var got *Config
	for got == nil {
		select {
		case cfg := <-reloaded:
			got = cfg
		case <-tick.C:
			if err := os.WriteFile(path, []byte("engine:\n  max_strategies: 7\n"), 0644); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}

	if got.Engine.MaxStrategies != 7 {
		t.Errorf("expected reloaded max strategies 7, got %d", got.Engine.MaxStrategies)
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
	if err := <-done; err != nil {
		t.Errorf("Watch returned error: %v", err)
	}
}

func TestWatcher_UsesLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nanoagent.yaml")
	if err := os.WriteFile(path, []byte("engine:\n  max_strategies: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path, 20*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	var loads atomic.Int32
	w.SetLoader(func(p string) (*Config, error) {
		loads.Add(1)
		cfg, err := LoadConfigWithEnvOverrides(p)
		if err != nil {
			return nil, err
		}
		cfg.Telemetry.Logging.Level = "debug"
		return cfg, nil
	})

	reloaded := make(chan *Config, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func(cfg *Config) { reloaded <- cfg })
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	var got *Config
	for got == nil {
		select {
		case cfg := <-reloaded:
			got = cfg
		case <-tick.C:
			if err := os.WriteFile(path, []byte("engine:\n  max_strategies: 3\n"), 0644); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}

	if got.Engine.MaxStrategies != 3 {
		t.Errorf("expected reloaded max strategies 3, got %d", got.Engine.MaxStrategies)
	}
	if got.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected loader override to apply, got level %q", got.Telemetry.Logging.Level)
	}
	if loads.Load() == 0 {
		t.Error("expected custom loader to be called")
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
	if err := <-done; err != nil {
		t.Errorf("Watch returned error: %v", err)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nanoagent.yaml")

	w, err := NewWatcher(path, 0, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Stop()

	tests := []struct {
		name string
		file string
		want bool
	}{
		{"config file", path, true},
		{"sibling", filepath.Join(dir, "other.yaml"), false},
		{"editor swap", filepath.Join(dir, ".nanoagent.yaml.swp"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.relevant(fsnotifyWrite(tt.file)); got != tt.want {
				t.Errorf("relevant(%s) = %v, want %v", tt.file, got, tt.want)
			}
		})
	}
}

func TestDebouncer_CoalescesBursts(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	var last atomic.Int32
	for i := 1; i <= 5; i++ {
		n := int32(i)
		d.Trigger(func() {
			calls.Add(1)
			last.Store(n)
		})
	}

	time.Sleep(150 * time.Millisecond)

	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 call, got %d", got)
	}
	if got := last.Load(); got != 5 {
		t.Errorf("expected latest callback to run, got %d", got)
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Trigger(func() { calls.Add(1) })

	time.Sleep(100 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("expected no calls after Stop, got %d", got)
	}
}

func fsnotifyWrite(name string) fsnotify.Event {
	return fsnotify.Event{Name: name, Op: fsnotify.Write}
}
