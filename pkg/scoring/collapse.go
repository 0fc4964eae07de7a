package scoring

import (
	"errors"
	"strings"
	"time"
)

// ErrNoCandidates is returned by Collapse when there is nothing to choose from.
var ErrNoCandidates = errors.New("no candidates to collapse")

// Candidate is a valid, eligible attempt under consideration for winner.
type Candidate struct {
	Strategy string
	Result   any
	Score    float64
	Latency  time.Duration
}

// CollapseRule orders candidates. Compare returns a negative number when a
// should win over b, positive when b should win, and 0 when the rule has no
// preference.
type CollapseRule interface {
	Compare(a, b Candidate) int
}

// CollapseFunc adapts a function to the CollapseRule interface.
type CollapseFunc func(a, b Candidate) int

// Compare calls f.
func (f CollapseFunc) Compare(a, b Candidate) int {
	return f(a, b)
}

// HighestScore prefers the strictly higher score.
var HighestScore CollapseRule = CollapseFunc(func(a, b Candidate) int {
	return compareFloatDesc(a.Score, b.Score)
})

// Collapse returns the best candidate under rule. Candidates the rule cannot
// separate are ordered by strategy name, so the result does not depend on
// completion order.
func Collapse(rule CollapseRule, candidates []Candidate) (Candidate, error) {
	if len(candidates) == 0 {
		return Candidate{}, ErrNoCandidates
	}
	if rule == nil {
		rule = HighestScore
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if better(rule, c, best) {
			best = c
		}
	}
	return best, nil
}

func better(rule CollapseRule, a, b Candidate) bool {
	if c := rule.Compare(a, b); c != 0 {
		return c < 0
	}
	return strings.Compare(a.Strategy, b.Strategy) < 0
}

// compareFloatDesc returns -1 when a > b, 1 when a < b, else 0.
func compareFloatDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}
