package weights

import (
	"math"
	"sync"
)

const (
	// DefaultWeight is the weight assigned to a newly registered strategy.
	DefaultWeight = 1.0

	// MaxWeight is the upper bound of every weight.
	MaxWeight = 1.0

	// DefaultFloor is the lower bound used when none is configured.
	DefaultFloor = 0.1
)

// Store is the per-strategy weight table.
//
// Implementations must keep every weight within [Floor(), MaxWeight] and be
// safe for concurrent use.
type Store interface {
	// Get returns the current weight, or DefaultWeight if the strategy is unknown.
	Get(name string) float64

	// Ensure initializes the weight to DefaultWeight if absent and returns
	// the current value.
	Ensure(name string) float64

	// Set stores a weight, clamped to [Floor(), MaxWeight].
	Set(name string, weight float64)

	// Adjust atomically replaces the weight with fn(old), clamped, and
	// returns both values.
	Adjust(name string, fn func(old float64) float64) (old, updated float64)

	// Delete removes a strategy from the table.
	Delete(name string)

	// Snapshot returns a copy of the table.
	Snapshot() map[string]float64

	// Floor returns the lower bound applied to every weight.
	Floor() float64
}

// MemoryStore implements Store with an in-process map.
type MemoryStore struct {
	mu      sync.RWMutex
	weights map[string]float64
	floor   float64
}

// NewMemoryStore creates an empty weight table with the given floor.
// A floor outside [0, MaxWeight] falls back to DefaultFloor.
func NewMemoryStore(floor float64) *MemoryStore {
	if floor < 0 || floor > MaxWeight {
		floor = DefaultFloor
	}
	return &MemoryStore{
		weights: make(map[string]float64),
		floor:   floor,
	}
}

// Get returns the current weight for name.
func (s *MemoryStore) Get(name string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if w, ok := s.weights[name]; ok {
		return w
	}
	return DefaultWeight
}

// Ensure initializes name to DefaultWeight if it has no entry yet.
func (s *MemoryStore) Ensure(name string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.weights[name]; ok {
		return w
	}
	s.weights[name] = DefaultWeight
	return DefaultWeight
}

// Set stores weight for name after clamping it.
func (s *MemoryStore) Set(name string, weight float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.weights[name] = s.clamp(weight)
}

// Adjust applies fn to the current weight under the write lock.
func (s *MemoryStore) Adjust(name string, fn func(old float64) float64) (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.weights[name]
	if !ok {
		old = DefaultWeight
	}
	updated := s.clamp(fn(old))
	s.weights[name] = updated
	return old, updated
}

// Delete removes name from the table.
func (s *MemoryStore) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.weights, name)
}

// Snapshot returns a copy of all weights.
func (s *MemoryStore) Snapshot() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]float64, len(s.weights))
	for name, w := range s.weights {
		out[name] = w
	}
	return out
}

// Floor returns the configured lower bound.
func (s *MemoryStore) Floor() float64 {
	return s.floor
}

func (s *MemoryStore) clamp(w float64) float64 {
	if math.IsNaN(w) {
		return s.floor
	}
	if w < s.floor {
		return s.floor
	}
	if w > MaxWeight {
		return MaxWeight
	}
	return w
}
