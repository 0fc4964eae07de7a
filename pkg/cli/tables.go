package cli

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"amrikyy/nanoagent/pkg/pricing"
	"amrikyy/nanoagent/pkg/racer"
	"amrikyy/nanoagent/pkg/weights"
)

// WeightsTable lists strategy weights sorted by name.
type WeightsTable map[string]float64

func (t WeightsTable) Headers() []string { return []string{"STRATEGY", "WEIGHT"} }

func (t WeightsTable) Rows() [][]string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	slices.Sort(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, formatFloat(t[name])})
	}
	return rows
}

// DecisionRow is the printable form of a decision.
type DecisionRow struct {
	ID         string  `json:"id"`
	TaskID     string  `json:"task_id"`
	Success    bool    `json:"success"`
	Strategy   string  `json:"strategy,omitempty"`
	Confidence float64 `json:"confidence"`
	Price      string  `json:"price,omitempty"`
	Tried      int     `json:"strategies_tried"`
	Candidates int     `json:"candidates"`
	LatencyMs  int64   `json:"latency_ms"`
	Error      string  `json:"error,omitempty"`
}

// NewDecisionRow summarises d.
func NewDecisionRow(d *racer.Decision) DecisionRow {
	row := DecisionRow{
		ID:         d.ID.String(),
		TaskID:     d.TaskID,
		Success:    d.Success,
		Strategy:   d.Strategy,
		Confidence: d.Confidence,
		Tried:      d.Metadata.StrategiesTried,
		Candidates: d.Metadata.Candidates,
		LatencyMs:  d.Latency.Milliseconds(),
	}
	if q, ok := pricing.QuoteFrom(d.Result); ok {
		row.Price = fmt.Sprintf("%.2f %s", q.Price, q.Currency)
	}
	if d.Err != nil {
		row.Error = d.Err.Error()
	}
	return row
}

// DecisionsTable lists decisions in the order they were made.
type DecisionsTable []DecisionRow

func (t DecisionsTable) Headers() []string {
	return []string{"TASK", "SUCCESS", "WINNER", "CONFIDENCE", "PRICE", "TRIED", "CANDIDATES", "LATENCY_MS", "ERROR"}
}

func (t DecisionsTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		rows = append(rows, []string{
			r.TaskID,
			strconv.FormatBool(r.Success),
			r.Strategy,
			formatFloat(r.Confidence),
			r.Price,
			strconv.Itoa(r.Tried),
			strconv.Itoa(r.Candidates),
			strconv.FormatInt(r.LatencyMs, 10),
			r.Error,
		})
	}
	return rows
}

// ReportTable renders a performance report, one row per strategy.
type ReportTable struct {
	Report *racer.PerformanceReport `json:"report"`
}

func (t ReportTable) Headers() []string {
	return []string{"STRATEGY", "EXECUTIONS", "WINS", "WIN_RATE", "AVG_SCORE", "AVG_LATENCY", "WEIGHT", "RELIABILITY", "RECOMMENDATION"}
}

func (t ReportTable) Rows() [][]string {
	if t.Report == nil {
		return nil
	}
	rows := make([][]string, 0, len(t.Report.Strategies))
	for _, s := range t.Report.Strategies {
		rows = append(rows, []string{
			s.Strategy,
			strconv.FormatInt(s.Executions, 10),
			strconv.FormatInt(s.Wins, 10),
			formatFloat(s.WinRate),
			formatFloat(s.AverageScore),
			(time.Duration(s.AverageLatency) * time.Millisecond).String(),
			formatFloat(s.Weight),
			formatFloat(s.Reliability),
			string(s.Recommendation),
		})
	}
	return rows
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}

// RecordsTable lists persisted weight records.
type RecordsTable []weights.Record

func (t RecordsTable) Headers() []string { return []string{"STRATEGY", "WEIGHT", "UPDATED_AT"} }

func (t RecordsTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		rows = append(rows, []string{r.Strategy, formatFloat(r.Weight), r.UpdatedAt.UTC().Format(time.RFC3339)})
	}
	return rows
}
