// Package strategy defines the candidate strategies raced by the engine and
// the registry that ranks them.
//
// A Strategy is a named Func plus static Metadata (cost class, expected
// reliability, expected latency). The Registry stores strategies in
// registration order and selects the top candidates for a task by their
// current adaptive weight, read from a weights.Store.
//
// Example usage:
//
//	reg := strategy.NewRegistry(weights.NewMemoryStore(0.1), logger)
//	err := reg.Register("amadeus", amadeusSearch, strategy.Metadata{
//	    CostClass:       strategy.CostHigh,
//	    Reliability:     0.9,
//	    ExpectedLatency: 1200 * time.Millisecond,
//	})
//
//	selected := reg.Select(task, 5)
package strategy
