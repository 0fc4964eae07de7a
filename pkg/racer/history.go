package racer

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultHistorySize is the number of decisions retained by default.
const DefaultHistorySize = 1000

// DecisionRecord is the compact form of a Decision kept in history.
type DecisionRecord struct {
	ID         uuid.UUID
	TaskID     string
	TaskType   string
	Strategies []string
	Winner     string
	Success    bool
	Confidence float64
	Latency    time.Duration
	Timestamp  time.Time
}

// HistorySummary aggregates the retained decisions.
type HistorySummary struct {
	// Decisions is the number of retained records.
	Decisions int

	// AverageStrategiesPerTask is the mean number of strategies launched.
	AverageStrategiesPerTask float64

	// AverageConfidence is the mean winner confidence; failed decisions count as 0.
	AverageConfidence float64

	// SuccessRate is the fraction of decisions with a winner.
	SuccessRate float64
}

// History is a bounded ring of recent decisions, safe for concurrent use.
type History struct {
	mu      sync.RWMutex
	records []DecisionRecord
	next    int
	full    bool
}

// NewHistory creates a history that keeps the last size decisions.
// A non-positive size uses DefaultHistorySize.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{records: make([]DecisionRecord, size)}
}

// Add records d, evicting the oldest record when full.
func (h *History) Add(d *Decision) {
	rec := DecisionRecord{
		ID:         d.ID,
		TaskID:     d.TaskID,
		TaskType:   d.TaskType,
		Strategies: make([]string, len(d.Attempts)),
		Winner:     d.Strategy,
		Success:    d.Success,
		Confidence: d.Confidence,
		Latency:    d.Latency,
		Timestamp:  d.Timestamp,
	}
	for i, a := range d.Attempts {
		rec.Strategies[i] = a.Strategy
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.records[h.next] = rec
	h.next = (h.next + 1) % len(h.records)
	if h.next == 0 {
		h.full = true
	}
}

// Len returns the number of retained records.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lenLocked()
}

// Records returns retained records, oldest first.
func (h *History) Records() []DecisionRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := h.lenLocked()
	out := make([]DecisionRecord, 0, n)
	if h.full {
		out = append(out, h.records[h.next:]...)
	}
	out = append(out, h.records[:h.next]...)
	return out
}

// Summary aggregates the retained records.
func (h *History) Summary() HistorySummary {
	records := h.Records()
	sum := HistorySummary{Decisions: len(records)}
	if len(records) == 0 {
		return sum
	}

	var strategies, successes int
	var confidence float64
	for _, r := range records {
		strategies += len(r.Strategies)
		confidence += r.Confidence
		if r.Success {
			successes++
		}
	}

	n := float64(len(records))
	sum.AverageStrategiesPerTask = float64(strategies) / n
	sum.AverageConfidence = confidence / n
	sum.SuccessRate = float64(successes) / n
	return sum
}

func (h *History) lenLocked() int {
	if h.full {
		return len(h.records)
	}
	return h.next
}
