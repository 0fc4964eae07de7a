// Package weights holds the adaptive per-strategy weight table and its
// optional persistence.
//
// # Overview
//
// Every registered strategy owns a weight in [floor, 1.0]. New strategies
// start at DefaultWeight (1.0). The learner nudges weights toward 1.0 on a
// win and decays them toward the floor on failure; the registry reads them
// to rank strategies for the next decision.
//
// The package provides:
//
//   - Store: the in-process weight table (MemoryStore), safe for concurrent use
//   - Backend: durable snapshots of the table (memory, SQLite)
//   - Checkpointer: restores the table at startup and saves it on a cron schedule
//
// # Usage
//
//	store := weights.NewMemoryStore(0.1)
//	store.Ensure("amadeus")
//
//	backend, err := weights.NewSQLiteBackend("weights.db")
//	if err != nil {
//	    return err
//	}
//	cp := weights.NewCheckpointer(store, backend, "@every 1m", logger)
//	if _, err := cp.Restore(ctx); err != nil {
//	    return err
//	}
//	if err := cp.Start(ctx); err != nil {
//	    return err
//	}
//	defer cp.Stop(context.Background())
//
// # Thread Safety
//
// MemoryStore guards the table with a mutex and offers Adjust for atomic
// read-modify-write, so hosts may call the engine concurrently even when
// strategy sets overlap.
package weights
