// Package ruleindex builds the per-(part, operator) dispatch structures
// described in spec.md §4.3: a hash map for EQUALS, a prefix automaton
// per part for STARTS_WITH (and, on reversed keys, for ENDS_WITH), and a
// substring automaton per part for CONTAINS. A single Query call walks a
// parsed URL through whichever of the sixteen structures are non-empty
// and accumulates matches into the caller's candidate buffer.
package ruleindex

import (
	"github.com/edgecomet/ruleengine/internal/automaton"
	"github.com/edgecomet/ruleengine/internal/candidate"
	"github.com/edgecomet/ruleengine/pkg/urlrule"
)

// Index is built once from a rule list and is immutable and safe for
// concurrent Query calls thereafter, each through its own QueryContext.
type Index struct {
	expected []int

	equals   [urlrule.PartCount]map[string][]int
	starts   [urlrule.PartCount]*automaton.PrefixAutomaton
	ends     [urlrule.PartCount]*automaton.PrefixAutomaton
	contains [urlrule.PartCount]*automaton.SubstringAutomaton

	hasEquals   [urlrule.PartCount]bool
	hasStarts   [urlrule.PartCount]bool
	hasEnds     [urlrule.PartCount]bool
	hasContains [urlrule.PartCount]bool
}

// Build assigns dense rule IDs in input order (the caller is responsible
// for presenting rules in definition-index order) and inserts every
// non-negated condition into the structure selected by its (part,
// operator) pair.
func Build(rules []urlrule.Rule) *Index {
	idx := &Index{expected: make([]int, len(rules))}
	for p := urlrule.Part(0); p < urlrule.PartCount; p++ {
		idx.starts[p] = automaton.NewPrefixAutomaton()
		idx.ends[p] = automaton.NewPrefixAutomaton()
		idx.contains[p] = automaton.NewSubstringAutomaton()
	}

	for id, rule := range rules {
		for _, c := range rule.Conditions {
			if c.Negated {
				continue
			}
			idx.expected[id]++

			switch c.Operator {
			case urlrule.Equals:
				if idx.equals[c.Part] == nil {
					idx.equals[c.Part] = make(map[string][]int)
				}
				idx.equals[c.Part][c.Value] = append(idx.equals[c.Part][c.Value], id)
				idx.hasEquals[c.Part] = true
			case urlrule.StartsWith:
				idx.starts[c.Part].Insert(c.Value, id)
				idx.hasStarts[c.Part] = true
			case urlrule.EndsWith:
				idx.ends[c.Part].Insert(reverseString(c.Value), id)
				idx.hasEnds[c.Part] = true
			case urlrule.Contains:
				idx.contains[c.Part].Insert(c.Value, id)
				idx.hasContains[c.Part] = true
			}
		}
	}

	for p := urlrule.Part(0); p < urlrule.PartCount; p++ {
		idx.contains[p].Build()
	}

	return idx
}

// RuleCount returns the number of rules this index was built for.
func (idx *Index) RuleCount() int {
	return len(idx.expected)
}

// ExpectedCounts returns the per-rule non-negated condition counts, one
// entry per dense rule id. The returned slice must not be mutated; it is
// shared by every QueryContext built against this index.
func (idx *Index) ExpectedCounts() []int {
	return idx.expected
}

// QueryContext is the per-caller mutable state a query needs: a
// candidate buffer sized to this index's rule count, a scratch rune
// buffer reused across calls for the ENDS_WITH reversed-key walk, and a
// per-part dedup generation buffer for the CONTAINS substring automaton
// (so a repeated-occurrence pattern contributes one increment per query
// rather than one per occurrence; see SearchUnique). Callers on
// different goroutines must use their own QueryContext.
type QueryContext struct {
	buffer  *candidate.Buffer
	scratch []rune

	containsVisited [urlrule.PartCount][]int32
	containsGen     [urlrule.PartCount]int32
}

// NewQueryContext allocates a context for idx. Create one per goroutine
// and reuse it across queries; the buffer, scratch slice, and dedup
// buffers are the only allocations a query needs. The buffer and dedup
// buffers are sized once up front from idx; the scratch slice starts
// empty and grows to the longest URL part reversed so far.
func NewQueryContext(idx *Index) *QueryContext {
	ctx := &QueryContext{buffer: candidate.NewBuffer(idx.ExpectedCounts())}
	for p := urlrule.Part(0); p < urlrule.PartCount; p++ {
		if idx.hasContains[p] {
			ctx.containsVisited[p] = make([]int32, idx.contains[p].StateCount())
		}
	}
	return ctx
}

// Query resets the context's candidate buffer and walks the four URL
// parts, in fixed HOST/PATH/FILE/QUERY order, through whichever indexes
// are non-empty for that part, incrementing the matched rule IDs. The
// returned buffer is owned by ctx and is invalidated by the next Query
// call on the same context.
func (idx *Index) Query(ctx *QueryContext, u urlrule.ParsedURL) *candidate.Buffer {
	ctx.buffer.Reset()

	for p := urlrule.Part(0); p < urlrule.PartCount; p++ {
		value := u.Part(p)

		if idx.hasEquals[p] {
			for _, id := range idx.equals[p][value] {
				ctx.buffer.Increment(id)
			}
		}
		if idx.hasStarts[p] {
			idx.starts[p].FindPrefixesOf(value, ctx.buffer.Increment)
		}
		if idx.hasEnds[p] {
			ctx.scratch = automaton.ReverseInto(ctx.scratch, value)
			idx.ends[p].FindPrefixesOfRunes(ctx.scratch, ctx.buffer.Increment)
		}
		if idx.hasContains[p] {
			ctx.containsGen[p]++
			idx.contains[p].SearchUnique(value, ctx.containsVisited[p], ctx.containsGen[p], ctx.buffer.Increment)
		}
	}

	return ctx.buffer
}

func reverseString(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}
