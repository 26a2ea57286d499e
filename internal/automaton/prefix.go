// Package automaton holds the two pattern-matching structures the rule
// index is built on: a multi-key prefix trie (this file) and an
// Aho-Corasick substring DFA (substring.go). Both answer "which inserted
// keys relate to input X" in time linear in len(X), independent of how
// many keys were inserted.
package automaton

// PrefixAutomaton maps string keys to sets of tagged integers and answers
// which keys are a prefix of a query input. It is used directly for
// STARTS_WITH conditions, and reused for ENDS_WITH by inserting and
// querying reversed strings.
type PrefixAutomaton struct {
	root *prefixNode
}

// prefixNode stores child links in two tiers: a direct-indexed array for
// ASCII code points (O(1), no hashing, cache-friendly) and a lazy map for
// everything else. tags holds the values inserted at exactly this node,
// i.e. whose key ends here.
type prefixNode struct {
	ascii [128]*prefixNode
	ext   map[rune]*prefixNode
	tags  []int
}

// NewPrefixAutomaton returns an empty automaton ready for Insert.
func NewPrefixAutomaton() *PrefixAutomaton {
	return &PrefixAutomaton{root: &prefixNode{}}
}

// Insert adds key (possibly empty) tagged with tag. Inserting the same
// (key, tag) pair twice is permitted; both copies are emitted on a
// matching query.
func (a *PrefixAutomaton) Insert(key string, tag int) {
	node := a.root
	for _, r := range key {
		node = node.childOrCreate(r)
	}
	node.tags = append(node.tags, tag)
}

// FindPrefixesOf invokes sink once for every tag whose key is a prefix of
// input, including the empty-string key if one was inserted. Order is
// unspecified. The walk stops as soon as no child exists for the next
// character.
func (a *PrefixAutomaton) FindPrefixesOf(input string, sink func(tag int)) {
	node := a.root
	emit(node, sink)
	for _, r := range input {
		node = node.child(r)
		if node == nil {
			return
		}
		emit(node, sink)
	}
}

// FindPrefixesOfRunes behaves exactly like FindPrefixesOf but walks a rune
// slice instead of a string. This is the entry point used for the
// ENDS_WITH query path, where the caller has already reversed the URL
// part into a reusable scratch buffer (see ruleindex) to avoid allocating
// a reversed string per query.
func (a *PrefixAutomaton) FindPrefixesOfRunes(input []rune, sink func(tag int)) {
	node := a.root
	emit(node, sink)
	for _, r := range input {
		node = node.child(r)
		if node == nil {
			return
		}
		emit(node, sink)
	}
}

func emit(n *prefixNode, sink func(tag int)) {
	for _, tag := range n.tags {
		sink(tag)
	}
}

func (n *prefixNode) child(r rune) *prefixNode {
	if r >= 0 && r < 128 {
		return n.ascii[r]
	}
	if n.ext == nil {
		return nil
	}
	return n.ext[r]
}

func (n *prefixNode) childOrCreate(r rune) *prefixNode {
	if r >= 0 && r < 128 {
		if n.ascii[r] == nil {
			n.ascii[r] = &prefixNode{}
		}
		return n.ascii[r]
	}
	if n.ext == nil {
		n.ext = make(map[rune]*prefixNode)
	}
	c, ok := n.ext[r]
	if !ok {
		c = &prefixNode{}
		n.ext[r] = c
	}
	return c
}

// ReverseInto reverses s by rune into dst, growing and returning dst if
// its capacity is insufficient. Callers reuse the returned slice across
// queries to stay allocation-free once it has grown to the largest URL
// part seen.
func ReverseInto(dst []rune, s string) []rune {
	n := len([]rune(s))
	if cap(dst) < n {
		dst = make([]rune, n)
	}
	dst = dst[:n]
	i := n
	for _, r := range s {
		i--
		dst[i] = r
	}
	return dst
}
