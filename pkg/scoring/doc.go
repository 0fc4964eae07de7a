// Package scoring turns strategy results into comparable numbers and
// collapses a set of valid candidates to a single winner.
//
// A Scorer maps (result, latency, metadata) to [0,1]. A CollapseRule orders
// two candidates; Collapse applies the rule and breaks any remaining tie by
// strategy name so the winner is always deterministic. Rules bundles a
// scorer and collapse rule per task type.
package scoring
