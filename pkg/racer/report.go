package racer

import (
	"sort"
)

// Recommendation grades a strategy by win rate.
type Recommendation string

const (
	RecommendationExcellent        Recommendation = "excellent"
	RecommendationGood             Recommendation = "good"
	RecommendationNeedsImprovement Recommendation = "needs improvement"
)

// Recommend grades a win rate: above 0.7 is excellent, above 0.4 good.
func Recommend(winRate float64) Recommendation {
	switch {
	case winRate > 0.7:
		return RecommendationExcellent
	case winRate > 0.4:
		return RecommendationGood
	}
	return RecommendationNeedsImprovement
}

// StrategyReport summarises one strategy's performance.
type StrategyReport struct {
	Strategy       string
	Executions     int64
	Wins           int64
	WinRate        float64
	AverageScore   float64
	AverageLatency int64 // milliseconds
	Weight         float64
	Reliability    float64
	Recommendation Recommendation
}

// PerformanceReport is the engine-wide report.
type PerformanceReport struct {
	RegisteredStrategies int
	TotalDecisions       int64
	History              HistorySummary
	Strategies           []StrategyReport
}

// buildReport assembles strategy reports sorted by descending win rate,
// then name. weightOf and reliabilityOf look up current values.
func buildReport(stats *EngineStats, weightOf, reliabilityOf func(string) float64) []StrategyReport {
	reports := make([]StrategyReport, 0, len(stats.Strategies))
	for _, name := range sortedNames(stats.Strategies) {
		st := stats.Strategies[name]
		winRate := st.WinRate()
		reports = append(reports, StrategyReport{
			Strategy:       name,
			Executions:     st.Executions,
			Wins:           st.Wins,
			WinRate:        winRate,
			AverageScore:   st.AverageScore(),
			AverageLatency: st.AverageLatency().Milliseconds(),
			Weight:         weightOf(name),
			Reliability:    reliabilityOf(name),
			Recommendation: Recommend(winRate),
		})
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].WinRate > reports[j].WinRate
	})
	return reports
}
