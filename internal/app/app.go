// Package app assembles a running nanoagent from configuration: telemetry,
// the weight store and its backend, the checkpointer and the racing engine.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"amrikyy/nanoagent/pkg/config"
	"amrikyy/nanoagent/pkg/pricing"
	"amrikyy/nanoagent/pkg/racer"
	"amrikyy/nanoagent/pkg/telemetry"
	"amrikyy/nanoagent/pkg/telemetry/health"
	"amrikyy/nanoagent/pkg/weights"
)

// checkpointStaleFactor is how many missed checkpoint periods make the
// weights_checkpoint health check fail.
const checkpointStaleFactor = 3

// App owns every long-lived component of a nanoagent process.
type App struct {
	cfg          *config.Config
	telemetry    *telemetry.Telemetry
	store        *weights.MemoryStore
	backend      weights.Backend
	checkpointer *weights.Checkpointer
	engine       *racer.DefaultEngine
	logger       *slog.Logger

	mu     sync.Mutex
	server *http.Server
}

// New builds an App from a validated configuration. Nothing runs until
// Start is called.
func New(cfg *config.Config, version health.VersionInfo, opts ...telemetry.Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	tel, err := telemetry.New(&cfg.Telemetry, version, opts...)
	if err != nil {
		return nil, err
	}
	logger := tel.Logger()

	backend, err := OpenBackend(cfg.Weights)
	if err != nil {
		return nil, err
	}

	store := weights.NewMemoryStore(cfg.Learning.Floor)
	engine, err := racer.New(EngineOptions(cfg, store, tel))
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	a := &App{
		cfg:          cfg,
		telemetry:    tel,
		store:        store,
		backend:      backend,
		checkpointer: weights.NewCheckpointer(store, backend, cfg.Weights.CheckpointSchedule, logger),
		engine:       engine,
		logger:       logger.With("component", "app"),
	}
	a.registerChecks()
	return a, nil
}

// EngineOptions converts configuration to engine options.
func EngineOptions(cfg *config.Config, store weights.Store, tel *telemetry.Telemetry) racer.Options {
	opts := racer.Options{
		MaxStrategies:   cfg.Engine.MaxStrategies,
		Timeout:         cfg.Engine.Timeout,
		MinConfidence:   cfg.Engine.MinConfidence,
		LearningEnabled: cfg.Engine.LearningEnabled,
		LearningRate:    cfg.Learning.Rate,
		WeightFloor:     cfg.Learning.Floor,
		NonWinnerDecay:  cfg.Learning.NonWinnerDecay,
		MaxConcurrency:  cfg.Engine.MaxConcurrency,
		HistorySize:     cfg.Engine.HistorySize,
		Rules:           pricing.DefaultRules(),
		Store:           store,
	}
	if tel != nil {
		opts.Logger = tel.Logger()
		opts.Observer = tel.Metrics()
		opts.Tracer = tel.Tracer()
	}
	return opts
}

// RuntimeOptions extracts the settings that can change without a restart.
func RuntimeOptions(cfg *config.EngineConfig) racer.RuntimeOptions {
	return racer.RuntimeOptions{
		MaxStrategies:   cfg.MaxStrategies,
		Timeout:         cfg.Timeout,
		MinConfidence:   cfg.MinConfidence,
		LearningEnabled: cfg.LearningEnabled,
	}
}

// OpenBackend creates the configured weight backend.
func OpenBackend(cfg config.WeightsConfig) (weights.Backend, error) {
	switch cfg.Backend {
	case "memory", "":
		return weights.NewMemoryBackend(), nil
	case "sqlite":
		if dir := filepath.Dir(cfg.SQLite.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create weights directory: %w", err)
			}
		}
		b, err := weights.NewSQLiteBackendWithConfig(weights.SQLiteBackendConfig{
			DBPath:      cfg.SQLite.Path,
			BusyTimeout: cfg.SQLite.BusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite weights backend: %w", err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("unsupported weights backend: %s", cfg.Backend)
}

func (a *App) registerChecks() {
	h := a.telemetry.Health()
	h.RegisterCheck(health.CheckStrategies, health.StrategiesRegistered(a.engine.Registry().Len))
	h.RegisterCheck(health.CheckWeights, health.BackendReachable(a.backend))

	if period, ok := schedulePeriod(a.cfg.Weights.CheckpointSchedule); ok {
		h.RegisterCheck(health.CheckCheckpoint,
			health.CheckpointFresh(a.checkpointer.LastRun, checkpointStaleFactor*period))
	}
}

// schedulePeriod estimates the interval between two runs of a cron schedule.
func schedulePeriod(spec string) (time.Duration, bool) {
	if spec == "" {
		return 0, false
	}
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return 0, false
	}
	first := sched.Next(time.Now())
	return sched.Next(first).Sub(first), true
}

// Start restores persisted weights and starts the checkpoint scheduler.
// Strategies registered afterwards keep their restored weight.
func (a *App) Start(ctx context.Context) error {
	if _, err := a.checkpointer.Restore(ctx); err != nil {
		return err
	}
	if err := a.checkpointer.Start(ctx); err != nil {
		return err
	}
	a.telemetry.Metrics().SetWeights(a.store.Snapshot())
	return nil
}

// Serve starts the telemetry HTTP server on addr and returns the address it
// listens on. It returns immediately.
func (a *App) Serve(addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           a.telemetry.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	a.mu.Lock()
	a.server = srv
	a.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("telemetry server failed", "error", err)
		}
	}()

	a.logger.Info("telemetry server listening", "address", ln.Addr().String())
	return ln.Addr(), nil
}

// Reload applies the runtime settings of cfg to the engine. Settings that
// need a restart are logged and ignored.
func (a *App) Reload(cfg *config.Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := a.engine.Reconfigure(RuntimeOptions(&cfg.Engine)); err != nil {
		return fmt.Errorf("failed to reconfigure engine: %w", err)
	}

	if cfg.Weights != a.cfg.Weights || cfg.Learning != a.cfg.Learning {
		a.logger.Warn("weights and learning settings changed, restart to apply")
	}
	return nil
}

// Close stops the server and the checkpointer (which writes a final
// snapshot), then releases the engine, backend and telemetry.
func (a *App) Close(ctx context.Context) error {
	var errs []error

	a.mu.Lock()
	srv := a.server
	a.server = nil
	a.mu.Unlock()
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop telemetry server: %w", err))
		}
	}

	if err := a.checkpointer.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.engine.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := a.backend.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close weights backend: %w", err))
	}
	if err := a.telemetry.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Engine returns the racing engine.
func (a *App) Engine() *racer.DefaultEngine { return a.engine }

// Telemetry returns the telemetry bundle.
func (a *App) Telemetry() *telemetry.Telemetry { return a.telemetry }

// Logger returns the process logger.
func (a *App) Logger() *slog.Logger { return a.telemetry.Logger() }

// Checkpointer returns the weight checkpointer.
func (a *App) Checkpointer() *weights.Checkpointer { return a.checkpointer }
