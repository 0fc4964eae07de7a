package strategy

import (
	"context"

	"golang.org/x/time/rate"
)

// Strategy is a registered, immutable candidate approach to solving a task.
type Strategy struct {
	name    string
	fn      Func
	meta    Metadata
	seq     int
	limiter *rate.Limiter
}

// New builds a Strategy outside a Registry. Metadata defaults are applied.
// Registry.Register is the usual way to create strategies.
func New(name string, fn Func, meta Metadata) *Strategy {
	meta = meta.WithDefaults()
	s := &Strategy{name: name, fn: fn, meta: meta}
	if meta.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(meta.RateLimit), meta.Burst)
	}
	return s
}

// Name returns the unique strategy name.
func (s *Strategy) Name() string {
	return s.name
}

// Metadata returns the strategy metadata with defaults applied.
func (s *Strategy) Metadata() Metadata {
	return s.meta
}

// Wait blocks until the strategy's rate limiter admits a call or ctx ends.
// Strategies without a rate limit return immediately.
func (s *Strategy) Wait(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Wait(ctx)
}

// Allow reports whether the rate limiter admits a call right now, taking a
// token if it does. Strategies without a rate limit always return true.
func (s *Strategy) Allow() bool {
	if s.limiter == nil {
		return true
	}
	return s.limiter.Allow()
}

// Call invokes the strategy function.
func (s *Strategy) Call(ctx context.Context, task Task, shared any) (any, error) {
	return s.fn(ctx, task, shared)
}
