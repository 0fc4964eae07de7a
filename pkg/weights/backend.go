package weights

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Backend persists snapshots of the weight table.
// Implementations must be thread-safe.
type Backend interface {
	// Save upserts the given records.
	Save(ctx context.Context, records []Record) error

	// Load returns every persisted record ordered by strategy name.
	Load(ctx context.Context) ([]Record, error)

	// Delete removes the record for a strategy. No-op if absent.
	Delete(ctx context.Context, strategy string) error

	// Close releases any resources held by the backend.
	Close() error
}

// Record is one persisted weight.
type Record struct {
	// Strategy is the registered strategy name.
	Strategy string

	// Weight is the stored weight.
	Weight float64

	// UpdatedAt is when the weight was last saved.
	UpdatedAt time.Time
}

// RecordsFromSnapshot converts a Store snapshot to records stamped with now,
// ordered by strategy name.
func RecordsFromSnapshot(snapshot map[string]float64, now time.Time) []Record {
	records := make([]Record, 0, len(snapshot))
	for name, w := range snapshot {
		records = append(records, Record{Strategy: name, Weight: w, UpdatedAt: now})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Strategy < records[j].Strategy
	})
	return records
}

// MemoryBackend implements Backend in memory. Useful in tests and when
// durability is not required.
type MemoryBackend struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[string]Record)}
}

// Save upserts records.
func (b *MemoryBackend) Save(ctx context.Context, records []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, r := range records {
		if r.Strategy == "" {
			return fmt.Errorf("strategy name cannot be empty")
		}
		b.records[r.Strategy] = r
	}
	return nil
}

// Load returns all records ordered by strategy name.
func (b *MemoryBackend) Load(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Record, 0, len(b.records))
	for _, r := range b.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Strategy < out[j].Strategy })
	return out, nil
}

// Delete removes the record for strategy.
func (b *MemoryBackend) Delete(ctx context.Context, strategy string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.records, strategy)
	return nil
}

// Close is a no-op.
func (b *MemoryBackend) Close() error {
	return nil
}
