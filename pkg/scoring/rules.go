package scoring

import "sync"

// RuleSet pairs the scorer and collapse rule used for one task type.
type RuleSet struct {
	Scorer   Scorer
	Collapse CollapseRule
}

// Rules maps task types to rule sets with a fallback default.
// It is safe for concurrent use.
type Rules struct {
	mu       sync.RWMutex
	byType   map[string]RuleSet
	fallback RuleSet
}

// NewRules creates a Rules whose unknown task types use fallback.
// A nil scorer in fallback scores every result by Blend; a nil collapse
// rule uses HighestScore.
func NewRules(fallback RuleSet) *Rules {
	return &Rules{
		byType:   make(map[string]RuleSet),
		fallback: fill(fallback, RuleSet{Scorer: ScorerFunc(blendAny), Collapse: HighestScore}),
	}
}

// Set installs the rule set for taskType. Nil fields inherit the default.
func (r *Rules) Set(taskType string, rs RuleSet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType[taskType] = fill(rs, r.fallback)
}

// For returns the rule set for taskType, or the default.
func (r *Rules) For(taskType string) RuleSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rs, ok := r.byType[taskType]; ok {
		return rs
	}
	return r.fallback
}

// Default returns the fallback rule set.
func (r *Rules) Default() RuleSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fallback
}

func fill(rs, base RuleSet) RuleSet {
	if rs.Scorer == nil {
		rs.Scorer = base.Scorer
	}
	if rs.Collapse == nil {
		rs.Collapse = base.Collapse
	}
	return rs
}
