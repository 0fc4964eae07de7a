package pricing

import (
	"time"

	"amrikyy/nanoagent/pkg/scoring"
	"amrikyy/nanoagent/pkg/strategy"
)

// Scorer scores price quotes. Anything that is not a valid quote scores 0;
// otherwise the score is scoring.Blend of reliability and latency.
type Scorer struct{}

// Score implements scoring.Scorer.
func (Scorer) Score(result any, latency time.Duration, meta strategy.Metadata) float64 {
	q, ok := QuoteFrom(result)
	if !ok || !q.Valid() {
		return 0
	}
	return scoring.Blend(latency, meta)
}

// CheapestRule prefers the strictly lower price, then the strictly higher
// score. Candidates whose result is not a quote sort last.
type CheapestRule struct{}

// Compare implements scoring.CollapseRule.
func (CheapestRule) Compare(a, b scoring.Candidate) int {
	qa, oka := QuoteFrom(a.Result)
	qb, okb := QuoteFrom(b.Result)
	switch {
	case oka && !okb:
		return -1
	case !oka && okb:
		return 1
	case oka && okb:
		if qa.Price < qb.Price {
			return -1
		}
		if qa.Price > qb.Price {
			return 1
		}
	}
	return scoring.HighestScore.Compare(a, b)
}

// RuleSet returns the price discovery rule set.
func RuleSet() scoring.RuleSet {
	return scoring.RuleSet{Scorer: Scorer{}, Collapse: CheapestRule{}}
}

// DefaultRules returns rules whose default and price_check entries both use
// price discovery.
func DefaultRules() *scoring.Rules {
	r := scoring.NewRules(RuleSet())
	r.Set(TaskTypePriceCheck, RuleSet())
	return r
}
