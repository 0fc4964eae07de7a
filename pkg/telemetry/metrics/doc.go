// Package metrics provides Prometheus metrics collection for NanoAgent.
//
// # Metrics Categories
//
//   - Decision Metrics: decision count by outcome, duration, winning confidence,
//     and strategies raced
//   - Strategy Metrics: attempt count by outcome, attempt latency and score,
//     wins per strategy
//   - Weight Metrics: current learned weight and weight updates by reason
//
// # Usage
//
// The Collector implements racer.Observer, so wiring it into an engine is a
// single option:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	opts := racer.DefaultOptions()
//	opts.Observer = collector
//	engine, err := racer.New(opts)
//
//	mux.Handle("/metrics", collector.Handler())
//
// # Cardinality
//
// Strategy names and task types become label values. Each is capped by a
// CardinalityLimiter; values past the limit are reported as "other".
package metrics
