package automaton

// SubstringAutomaton is an Aho-Corasick DFA over states 0..S-1 (state 0 is
// the root). It answers, for a fixed set of inserted patterns, which of
// them occur anywhere in a query text, in time linear in len(text) with
// no failure-link chasing to advance the DFA: every transition is a
// single table lookup, computed once during Build.
type SubstringAutomaton struct {
	states    []acState
	built     bool
	emptyTags []int
}

// acState is one DFA state: a transition row (direct-indexed for ASCII,
// lazy map otherwise) and the tags to emit when the state is entered.
// Before Build, ascii[c] == -1 means "no trie edge yet"; after Build every
// entry is a valid state id and the DFA needs no further interpretation.
type acState struct {
	ascii  [128]int
	ext    map[rune]int
	fail   int
	output []int
}

func newACState() acState {
	s := acState{}
	for i := range s.ascii {
		s.ascii[i] = -1
	}
	return s
}

// NewSubstringAutomaton returns an automaton with only the root state,
// ready for Insert.
func NewSubstringAutomaton() *SubstringAutomaton {
	return &SubstringAutomaton{states: []acState{newACState()}}
}

// Insert adds pattern (possibly empty) tagged with tag. Insert after Build
// is a programmer error and panics. The empty pattern is recorded
// separately and replayed at the start of every Search rather than routed
// through the trie.
func (a *SubstringAutomaton) Insert(pattern string, tag int) {
	if a.built {
		panic("automaton: insert after build")
	}
	if pattern == "" {
		a.emptyTags = append(a.emptyTags, tag)
		return
	}
	state := 0
	for _, r := range pattern {
		state = a.childOrCreate(state, r)
	}
	a.states[state].output = append(a.states[state].output, tag)
}

func (a *SubstringAutomaton) childOrCreate(state int, r rune) int {
	if r >= 0 && r < 128 {
		if a.states[state].ascii[r] == -1 {
			a.states = append(a.states, newACState())
			a.states[state].ascii[r] = len(a.states) - 1
		}
		return a.states[state].ascii[r]
	}
	if a.states[state].ext == nil {
		a.states[state].ext = make(map[rune]int)
	}
	if v, ok := a.states[state].ext[r]; ok {
		return v
	}
	a.states = append(a.states, newACState())
	a.states[state].ext[r] = len(a.states) - 1
	return len(a.states) - 1
}

// Build runs the four construction phases described for the substring
// automaton: trie insertion already happened in Insert; this computes
// failure links by BFS and then completes the DFA so Search never walks
// a failure chain. Build is idempotent-unsafe: calling it twice panics,
// and Insert after Build panics.
func (a *SubstringAutomaton) Build() {
	if a.built {
		panic("automaton: build called twice")
	}
	const root = 0

	var queue []int
	for c := 0; c < 128; c++ {
		if t := a.states[root].ascii[c]; t != -1 {
			a.states[t].fail = root
			queue = append(queue, t)
		}
	}
	for _, t := range a.states[root].ext {
		a.states[t].fail = root
		queue = append(queue, t)
	}
	for c := 0; c < 128; c++ {
		if a.states[root].ascii[c] == -1 {
			a.states[root].ascii[c] = root
		}
	}

	for head := 0; head < len(queue); head++ {
		s := queue[head]

		for c := 0; c < 128; c++ {
			t := a.states[s].ascii[c]
			if t == -1 {
				continue
			}
			f := a.states[s].fail
			for f != root && a.states[f].ascii[c] == -1 {
				f = a.states[f].fail
			}
			next := root
			if a.states[f].ascii[c] != -1 {
				next = a.states[f].ascii[c]
			}
			a.states[t].fail = next
			a.states[t].output = append(a.states[t].output, a.states[next].output...)
			queue = append(queue, t)
		}

		for r, t := range a.states[s].ext {
			f := a.states[s].fail
			for f != root {
				if _, ok := a.states[f].ext[r]; ok {
					break
				}
				f = a.states[f].fail
			}
			next := root
			if v, ok := a.states[f].ext[r]; ok {
				next = v
			}
			a.states[t].fail = next
			a.states[t].output = append(a.states[t].output, a.states[next].output...)
			queue = append(queue, t)
		}
	}

	// Phase (d): complete the DFA in the same BFS order, so that fail[s]
	// is always already complete by the time s is processed.
	for _, s := range queue {
		fs := a.states[s].fail
		for c := 0; c < 128; c++ {
			if a.states[s].ascii[c] == -1 {
				a.states[s].ascii[c] = a.states[fs].ascii[c]
			}
		}
		if a.states[fs].ext != nil {
			for r, v := range a.states[fs].ext {
				if _, ok := a.states[s].ext[r]; !ok {
					if a.states[s].ext == nil {
						a.states[s].ext = make(map[rune]int)
					}
					a.states[s].ext[r] = v
				}
			}
		}
	}

	a.built = true
}

// Search invokes sink once per (pattern, tag) occurrence in text, and
// once per call for each insertion of the empty pattern. Search before
// Build is a programmer error and panics.
func (a *SubstringAutomaton) Search(text string, sink func(tag int)) {
	if !a.built {
		panic("automaton: search before build")
	}
	for _, tag := range a.emptyTags {
		sink(tag)
	}
	state := 0
	for _, r := range text {
		state = a.next(state, r)
		for _, tag := range a.states[state].output {
			sink(tag)
		}
	}
}

// StateCount returns the number of DFA states, for sizing a caller's
// SearchUnique dedup buffer.
func (a *SubstringAutomaton) StateCount() int {
	return len(a.states)
}

// SearchUnique behaves like Search, except each inserted pattern's tags
// are emitted at most once per call regardless of how many times the
// pattern occurs in text. visited must be a caller-owned slice of length
// StateCount(), and gen a value not previously passed for visited since
// it was last zeroed; callers bump gen once per call to get a fresh
// dedup set without re-zeroing the slice (visited[s] == gen means the
// tags of the patterns ending at s already fired this call).
//
// On entering a state not yet visited this call, SearchUnique emits only
// the tags inserted at that state itself, then follows failure links to
// the states of shorter patterns ending at the same position, stopping
// at the root or at a state already visited. Each state is therefore
// visited at most once per call, and a pattern whose tag a failure-link
// merge also placed in a longer pattern's output list is not emitted a
// second time through that longer pattern's state.
//
// This is the entry point the rule index queries through (ruleindex.go):
// a CONTAINS condition must contribute at most one increment per query
// no matter how many times its pattern occurs in the URL part, since the
// candidate buffer's counter-equality test (spec.md §4.3) counts
// conditions satisfied, not occurrences. Deduping per state rather than
// per tag still lets two distinct conditions that happen to share a tag
// (the same rule matched via two different patterns) each contribute
// their own increment, since each pattern ends at its own state.
func (a *SubstringAutomaton) SearchUnique(text string, visited []int32, gen int32, sink func(tag int)) {
	if !a.built {
		panic("automaton: search before build")
	}
	for _, tag := range a.emptyTags {
		sink(tag)
	}
	state := 0
	for _, r := range text {
		state = a.next(state, r)
		for s := state; s != 0 && visited[s] != gen; s = a.states[s].fail {
			visited[s] = gen
			// Build appends the failure state's output after s's own tags.
			out := a.states[s].output
			own := len(out) - len(a.states[a.states[s].fail].output)
			for _, tag := range out[:own] {
				sink(tag)
			}
		}
	}
}

func (a *SubstringAutomaton) next(state int, r rune) int {
	if r >= 0 && r < 128 {
		return a.states[state].ascii[r]
	}
	if v, ok := a.states[state].ext[r]; ok {
		return v
	}
	return 0
}
