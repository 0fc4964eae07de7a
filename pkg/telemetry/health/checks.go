package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"amrikyy/nanoagent/pkg/weights"
)

// Check names used by the nanoagent binary.
const (
	CheckStrategies = "strategies"
	CheckWeights    = "weights_backend"
	CheckCheckpoint = "weights_checkpoint"
)

// Pinger is implemented by backends that can verify connectivity cheaply.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StrategiesRegistered fails while count reports no strategies.
func StrategiesRegistered(count func() int) CheckFunc {
	return func(ctx context.Context) error {
		if count() == 0 {
			return errors.New("no strategies registered")
		}
		return nil
	}
}

// BackendReachable checks a weight backend. Backends that implement Pinger
// are pinged; others must answer a Load.
func BackendReachable(b weights.Backend) CheckFunc {
	return func(ctx context.Context) error {
		if p, ok := b.(Pinger); ok {
			return p.Ping(ctx)
		}
		if _, err := b.Load(ctx); err != nil {
			return fmt.Errorf("weights backend unreachable: %w", err)
		}
		return nil
	}
}

// CheckpointFresh fails when the last successful checkpoint is older than
// maxAge. A zero last time passes until maxAge has elapsed since the check
// was created, so a freshly started process is not reported stale.
func CheckpointFresh(last func() time.Time, maxAge time.Duration) CheckFunc {
	started := time.Now()
	return func(ctx context.Context) error {
		at := last()
		if at.IsZero() {
			at = started
		}
		if age := time.Since(at); age > maxAge {
			return fmt.Errorf("last weights checkpoint %s ago exceeds %s", age.Round(time.Second), maxAge)
		}
		return nil
	}
}
