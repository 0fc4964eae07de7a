package strategy

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"amrikyy/nanoagent/pkg/weights"
)

// ErrInvalidStrategy is returned when a registration is malformed.
var ErrInvalidStrategy = errors.New("invalid strategy")

// Registry holds registered strategies and ranks them by adaptive weight.
// It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]*Strategy
	nextSeq    int

	weights weights.Store
	logger  *slog.Logger
}

// NewRegistry creates an empty registry backed by store. A nil store gets
// an in-memory table with the default floor.
func NewRegistry(store weights.Store, logger *slog.Logger) *Registry {
	if store == nil {
		store = weights.NewMemoryStore(weights.DefaultFloor)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		strategies: make(map[string]*Strategy),
		weights:    store,
		logger:     logger,
	}
}

// Register adds or replaces a strategy.
//
// A new strategy starts at weights.DefaultWeight. Registering an existing
// name overwrites the function and metadata, keeps its position in
// registration order and its learned weight, and logs a warning.
func (r *Registry) Register(name string, fn Func, meta Metadata) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidStrategy)
	}
	if fn == nil {
		return fmt.Errorf("%w: %q has no function", ErrInvalidStrategy, name)
	}
	if meta.Reliability < 0 || meta.Reliability > 1 {
		return fmt.Errorf("%w: %q reliability %v outside [0,1]", ErrInvalidStrategy, name, meta.Reliability)
	}
	if meta.CostClass != "" && !meta.CostClass.IsValid() {
		return fmt.Errorf("%w: %q has unknown cost class %q", ErrInvalidStrategy, name, meta.CostClass)
	}
	if meta.RateLimit < 0 {
		return fmt.Errorf("%w: %q rate limit cannot be negative", ErrInvalidStrategy, name)
	}

	s := New(name, fn, meta)

	r.mu.Lock()
	existing, replaced := r.strategies[name]
	if replaced {
		s.seq = existing.seq
	} else {
		s.seq = r.nextSeq
		r.nextSeq++
	}
	r.strategies[name] = s
	r.mu.Unlock()

	weight := r.weights.Ensure(name)

	if replaced {
		r.logger.Warn("strategy re-registered, overwriting previous definition",
			"strategy", name,
			"weight", weight,
		)
	} else {
		r.logger.Info("strategy registered",
			"strategy", name,
			"cost_class", s.meta.CostClass,
			"reliability", s.meta.Reliability,
			"expected_latency_ms", s.meta.ExpectedLatency.Milliseconds(),
		)
	}

	return nil
}

// Select returns up to maxCount strategies eligible for task, ordered by
// descending weight. Equal weights keep registration order. Select has no
// side effects.
func (r *Registry) Select(task Task, maxCount int) []*Strategy {
	if maxCount <= 0 {
		return nil
	}

	candidates := r.eligible(task.Type)

	ranked := make([]rankedStrategy, len(candidates))
	for i, s := range candidates {
		ranked[i] = rankedStrategy{strategy: s, weight: r.weights.Get(s.name)}
	}

	slices.SortStableFunc(ranked, func(a, b rankedStrategy) int {
		switch {
		case a.weight > b.weight:
			return -1
		case a.weight < b.weight:
			return 1
		}
		return 0
	})

	if len(ranked) > maxCount {
		ranked = ranked[:maxCount]
	}

	selected := make([]*Strategy, len(ranked))
	for i, rs := range ranked {
		selected[i] = rs.strategy
	}
	return selected
}

// Get returns a strategy by name, or nil if it is not registered.
func (r *Registry) Get(name string) *Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.strategies[name]
}

// Names returns strategy names in registration order.
func (r *Registry) Names() []string {
	all := r.ordered()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.name
	}
	return names
}

// Len returns the number of registered strategies.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.strategies)
}

// Weights returns the backing weight store.
func (r *Registry) Weights() weights.Store {
	return r.weights
}

type rankedStrategy struct {
	strategy *Strategy
	weight   float64
}

// eligible returns strategies supporting taskType in registration order.
func (r *Registry) eligible(taskType string) []*Strategy {
	all := r.ordered()
	out := all[:0]
	for _, s := range all {
		if s.meta.Supports(taskType) {
			out = append(out, s)
		}
	}
	return out
}

func (r *Registry) ordered() []*Strategy {
	r.mu.RLock()
	all := make([]*Strategy, 0, len(r.strategies))
	for _, s := range r.strategies {
		all = append(all, s)
	}
	r.mu.RUnlock()

	slices.SortFunc(all, func(a, b *Strategy) int { return a.seq - b.seq })
	return all
}
