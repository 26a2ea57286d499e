// Package urlrule defines the data model shared by every component of the
// matching engine: the four URL parts and operators, conditions, rules,
// and the parsed URL shape the engine is queried with.
package urlrule

import (
	"fmt"
	"strings"
)

// Part identifies one of the four URL parts a condition can test.
// The zero value is Host. Parts are addressed by dense ordinal
// throughout the engine, so PartCount must track the number of
// declared constants.
type Part int

const (
	Host Part = iota
	Path
	File
	Query
	PartCount
)

func (p Part) String() string {
	switch p {
	case Host:
		return "host"
	case Path:
		return "path"
	case File:
		return "file"
	case Query:
		return "query"
	default:
		return fmt.Sprintf("Part(%d)", int(p))
	}
}

// ParsePart parses a case-insensitive part name from a rule specification.
func ParsePart(s string) (Part, error) {
	switch strings.ToLower(s) {
	case "host":
		return Host, nil
	case "path":
		return Path, nil
	case "file":
		return File, nil
	case "query":
		return Query, nil
	default:
		return 0, fmt.Errorf("unknown URL part %q", s)
	}
}

// Operator identifies one of the four string comparisons a condition can
// apply. The zero value is Equals. Operators are addressed by dense
// ordinal for per-operator index dispatch.
type Operator int

const (
	Equals Operator = iota
	Contains
	StartsWith
	EndsWith
	OperatorCount
)

func (o Operator) String() string {
	switch o {
	case Equals:
		return "equals"
	case Contains:
		return "contains"
	case StartsWith:
		return "starts_with"
	case EndsWith:
		return "ends_with"
	default:
		return fmt.Sprintf("Operator(%d)", int(o))
	}
}

// ParseOperator parses a case-insensitive operator name from a rule
// specification.
func ParseOperator(s string) (Operator, error) {
	switch strings.ToLower(s) {
	case "equals":
		return Equals, nil
	case "contains":
		return Contains, nil
	case "starts_with":
		return StartsWith, nil
	case "ends_with":
		return EndsWith, nil
	default:
		return 0, fmt.Errorf("unknown operator %q", s)
	}
}

// Apply tests value directly against input using the operator. This is
// the direct, non-indexed evaluation path used to verify negated
// conditions and by the differential reference evaluator.
func (o Operator) Apply(input, value string) bool {
	switch o {
	case Equals:
		return input == value
	case Contains:
		return strings.Contains(input, value)
	case StartsWith:
		return strings.HasPrefix(input, value)
	case EndsWith:
		return strings.HasSuffix(input, value)
	default:
		return false
	}
}

// Condition is a single (part, operator, value, negated) test. Two
// conditions with equal fields are interchangeable value objects.
type Condition struct {
	Part     Part
	Operator Operator
	Value    string
	Negated  bool
}

// Matches applies the condition directly (no index) against a parsed URL.
// Used for negated-condition verification and the differential reference
// evaluator; never on the indexed hot path.
func (c Condition) Matches(u ParsedURL) bool {
	result := c.Operator.Apply(u.Part(c.Part), c.Value)
	if c.Negated {
		return !result
	}
	return result
}

// Rule is a named, prioritized conjunction of conditions producing a
// result string when every condition holds. DefinitionIndex is assigned
// by the loader in file order (0..N-1). The engine breaks priority ties
// by the rules' order in the slice it is given, which the loader keeps
// equal to DefinitionIndex order; the field itself is not read during
// sorting or matching.
type Rule struct {
	Name            string
	Priority        int
	Conditions      []Condition
	Result          string
	DefinitionIndex int
}

// AllNegated reports whether every condition of the rule is negated.
// Such a rule contributes no entries to any operator index (§4.5) and
// must be considered unconditionally during evaluation.
func (r Rule) AllNegated() bool {
	for _, c := range r.Conditions {
		if !c.Negated {
			return false
		}
	}
	return true
}

// ExpectedCount returns the number of non-negated conditions in the rule.
func (r Rule) ExpectedCount() int {
	n := 0
	for _, c := range r.Conditions {
		if !c.Negated {
			n++
		}
	}
	return n
}

// ParsedURL holds the four extracted URL parts. Absent parts are always
// the empty string, never a null/undefined value.
type ParsedURL struct {
	Host  string
	Path  string
	File  string
	Query string
}

// Part returns the URL's value for the given part ordinal.
func (u ParsedURL) Part(p Part) string {
	switch p {
	case Host:
		return u.Host
	case Path:
		return u.Path
	case File:
		return u.File
	case Query:
		return u.Query
	default:
		return ""
	}
}
