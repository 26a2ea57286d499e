// Package ruleengine holds the priority-ordered rule list and ties the
// rule index and candidate buffer together into a single evaluate(url)
// call (spec.md §4.5).
package ruleengine

import (
	"sort"

	"github.com/edgecomet/ruleengine/internal/ruleindex"
	"github.com/edgecomet/ruleengine/pkg/urlrule"
)

// NoMatch is returned as the result string when no rule fires; callers
// that need to distinguish "no match" from a legitimate empty result
// string should use the bool return instead of comparing against this.
const NoMatch = ""

type sortedRule struct {
	rule       urlrule.Rule
	id         int
	allNegated bool
}

// Engine holds rules sorted by priority descending (ties broken by
// definition-index ascending) and the Rule Index built from the same
// list. Once constructed it is immutable and safe for concurrent
// Evaluate calls, each through its own QueryContext.
type Engine struct {
	index  *ruleindex.Index
	sorted []sortedRule
}

// New builds a Rule Index from rules and a priority-sorted copy of the
// list. rules must be presented in definition-index order (0..N-1); the
// Rule Index assigns dense rule IDs in that same order, and the stable
// sort here relies on it to preserve tie-break order.
func New(rules []urlrule.Rule) *Engine {
	index := ruleindex.Build(rules)

	sorted := make([]sortedRule, len(rules))
	for id, rule := range rules {
		sorted[id] = sortedRule{rule: rule, id: id, allNegated: rule.AllNegated()}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].rule.Priority > sorted[j].rule.Priority
	})

	return &Engine{index: index, sorted: sorted}
}

// NewQueryContext allocates the per-caller mutable state Evaluate needs.
// Create one per goroutine and reuse it across calls.
func (e *Engine) NewQueryContext() *ruleindex.QueryContext {
	return ruleindex.NewQueryContext(e.index)
}

// Evaluate returns the result string of the highest-priority rule whose
// conditions all hold for u, or ("", false) if no rule matches.
//
// Rules are scanned in priority order. A rule is skipped immediately if
// it is not a candidate (no chance any of its non-negated conditions
// matched) unless it has no non-negated conditions at all (allNegated),
// in which case it must always be checked directly. A surviving rule
// wins only if its counter reached its expected count — trivially true
// when allNegated — and none of its negated conditions match the URL.
func (e *Engine) Evaluate(ctx *ruleindex.QueryContext, u urlrule.ParsedURL) (string, bool) {
	buf := e.index.Query(ctx, u)

	for _, sr := range e.sorted {
		if !buf.IsCandidate(sr.id) && !sr.allNegated {
			continue
		}
		if !buf.AllSatisfied(sr.id) {
			continue
		}
		if !negatedConditionsHold(sr.rule, u) {
			continue
		}
		return sr.rule.Result, true
	}

	return NoMatch, false
}

func negatedConditionsHold(rule urlrule.Rule, u urlrule.ParsedURL) bool {
	for _, c := range rule.Conditions {
		if !c.Negated {
			continue
		}
		if !c.Matches(u) {
			return false
		}
	}
	return true
}

// NaiveEvaluate is the reference evaluator spec.md §8's differential
// property checks the indexed engine against: iterate rules in priority
// order (stable on definition index), test each condition by direct
// string operator, no indexes involved.
func NaiveEvaluate(rules []urlrule.Rule, u urlrule.ParsedURL) (string, bool) {
	sorted := make([]urlrule.Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})

	for _, rule := range sorted {
		matched := true
		for _, c := range rule.Conditions {
			if !c.Matches(u) {
				matched = false
				break
			}
		}
		if matched {
			return rule.Result, true
		}
	}
	return NoMatch, false
}
