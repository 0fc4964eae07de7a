// Package health provides liveness and readiness probes for a running
// NanoAgent process.
//
// A Checker holds named CheckFuncs. Liveness never runs them; readiness runs
// them concurrently, each under its own timeout, and reports "degraded" if
// any fails. The checks in this package cover the engine's own
// dependencies: at least one registered strategy, a reachable weight
// backend, and a recent weight checkpoint.
//
// # Endpoints
//
//   - GET /health: liveness, always 200 while the process runs
//   - GET /ready: readiness, 200 when every check passes, 503 otherwise
//   - GET /version: build information
//
// # Usage
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck(health.CheckStrategies, health.StrategiesRegistered(engine.Registry().Len))
//	checker.RegisterCheck(health.CheckWeights, health.BackendReachable(backend))
//	checker.Register(mux, info)
package health
