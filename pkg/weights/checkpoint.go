package weights

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Checkpointer copies the weight table to a Backend. It restores saved
// weights at startup, saves snapshots on a cron schedule and once more on
// Stop.
type Checkpointer struct {
	store    Store
	backend  Backend
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	lastRun time.Time
}

// NewCheckpointer creates a checkpointer. An empty schedule disables
// periodic saves; Flush and Stop still write.
func NewCheckpointer(store Store, backend Backend, schedule string, logger *slog.Logger) *Checkpointer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checkpointer{
		store:    store,
		backend:  backend,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With("component", "weights.checkpointer"),
	}
}

// Restore loads persisted weights into the store and returns how many were
// applied. Values are clamped by the store.
func (c *Checkpointer) Restore(ctx context.Context) (int, error) {
	records, err := c.backend.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to restore weights: %w", err)
	}

	for _, r := range records {
		c.store.Set(r.Strategy, r.Weight)
	}

	c.logger.Info("weights restored", "count", len(records))
	return len(records), nil
}

// Flush saves the current table to the backend.
func (c *Checkpointer) Flush(ctx context.Context) error {
	now := time.Now()
	records := RecordsFromSnapshot(c.store.Snapshot(), now)
	if err := c.backend.Save(ctx, records); err != nil {
		return fmt.Errorf("failed to checkpoint weights: %w", err)
	}

	c.mu.Lock()
	c.lastRun = now
	c.mu.Unlock()

	c.logger.Debug("weights checkpointed", "count", len(records))
	return nil
}

// Start schedules periodic flushes. It returns immediately.
//
// Common schedules:
//   - "@every 1m"   - every minute
//   - "*/5 * * * *" - every five minutes
func (c *Checkpointer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.schedule == "" {
		c.logger.Info("checkpoint schedule not configured, skipping scheduler")
		return nil
	}
	if c.running {
		return fmt.Errorf("checkpointer already running")
	}

	if _, err := cron.ParseStandard(c.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", c.schedule, err)
	}

	_, err := c.cron.AddFunc(c.schedule, func() {
		if err := c.Flush(ctx); err != nil {
			c.logger.Error("scheduled checkpoint failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule checkpoint: %w", err)
	}

	c.cron.Start()
	c.running = true

	c.logger.Info("weights checkpointer started", "schedule", c.schedule)
	return nil
}

// Stop halts the scheduler, waits for a running flush, and writes a final
// snapshot.
func (c *Checkpointer) Stop(ctx context.Context) error {
	c.mu.Lock()
	wasRunning := c.running
	c.running = false
	c.mu.Unlock()

	// A scheduled flush may be in progress and needs c.mu.
	if wasRunning {
		<-c.cron.Stop().Done()
		c.logger.Info("weights checkpointer stopped")
	}

	return c.Flush(ctx)
}

// LastRun returns when the last successful flush happened.
func (c *Checkpointer) LastRun() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRun
}

// NextRun returns the next scheduled flush, or nil when not scheduled.
func (c *Checkpointer) NextRun() *time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.cron.Entries()
	if !c.running || len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
