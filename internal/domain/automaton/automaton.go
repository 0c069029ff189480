// Package automaton implements exact multi-pattern matching with an
// Aho-Corasick automaton: a trie over case-folded runes, failure links
// computed breadth-first, and merged output sets so nested and overlapping
// patterns all surface in one left-to-right pass.
//
// Construction is split in two types. A Builder accepts patterns and is
// sealed by Build; the resulting Automaton is immutable and safe for
// concurrent Scan calls without locking. Cost of a scan is proportional to
// the text length plus the number of matches, independent of pattern count.
package automaton

import (
	"errors"
	"unicode"
)

var (
	// ErrEmptyPattern is returned by Add for a zero-length pattern.
	ErrEmptyPattern = errors.New("automaton: empty pattern")

	// ErrDuplicatePattern is returned by Add when the folded pattern is
	// already present. Payloads are never silently duplicated.
	ErrDuplicatePattern = errors.New("automaton: duplicate pattern")

	// ErrSealed is returned by Add after Build has been called.
	ErrSealed = errors.New("automaton: builder already built")

	// ErrNotBuilt is returned by Scan on an Automaton that did not come
	// from Builder.Build.
	ErrNotBuilt = errors.New("automaton: scan before build")
)

const root int32 = 0

// node is one trie state. Children are owned by the arena; fail is a
// lookup shortcut into the same arena, never an ownership edge.
type node struct {
	next  map[rune]int32
	fail  int32
	depth int32
	// accept is the index of the pattern ending exactly here, or -1.
	accept int32
	// out is the merged output set: accept (if any) followed by the
	// output set of the fail target.
	out []int32
}

// Hit is one pattern occurrence. Start and End are half-open rune offsets.
type Hit[P any] struct {
	Start   int
	End     int
	Pattern int
	Payload P
}

// Len returns the hit length in runes.
func (h Hit[P]) Len() int { return h.End - h.Start }

// Fold is the per-rune case folding shared by pattern insertion and
// scanning. It never changes the rune count, so offsets computed on folded
// text are valid on the original.
func Fold(r rune) rune {
	return unicode.ToLower(r)
}

// FoldRunes returns the folded runes of s.
func FoldRunes(s string) []rune {
	rs := []rune(s)
	for i, r := range rs {
		rs[i] = Fold(r)
	}
	return rs
}

// Automaton is a compiled, read-only matcher.
type Automaton[P any] struct {
	nodes    []node
	patterns []string
	lengths  []int
	payloads []P
}

// Len returns the number of patterns in the automaton.
func (a *Automaton[P]) Len() int { return len(a.patterns) }

// States returns the number of trie states, root included.
func (a *Automaton[P]) States() int { return len(a.nodes) }

// Pattern returns the folded pattern at index i, or "" when out of range.
func (a *Automaton[P]) Pattern(i int) string {
	if i < 0 || i >= len(a.patterns) {
		return ""
	}
	return a.patterns[i]
}

// Payload returns the payload attached to pattern i.
func (a *Automaton[P]) Payload(i int) (P, bool) {
	if i < 0 || i >= len(a.payloads) {
		var zero P
		return zero, false
	}
	return a.payloads[i], true
}

// Scan finds every occurrence of every pattern in text. Hits are ordered by
// end offset; hits sharing an end offset are ordered longest first (the
// node's own output before suffix-chained output).
func (a *Automaton[P]) Scan(text string) ([]Hit[P], error) {
	if a == nil || len(a.nodes) == 0 {
		return nil, ErrNotBuilt
	}
	folded := FoldRunes(text)
	var hits []Hit[P]
	a.scan(folded, 0, len(folded), func(h Hit[P]) {
		hits = append(hits, h)
	})
	return hits, nil
}

// ScanRange scans folded[from:to] as an independent text and reports hits
// with absolute offsets into folded. No hit crosses from or to. The caller
// is responsible for folding (see FoldRunes).
func (a *Automaton[P]) ScanRange(folded []rune, from, to int, emit func(Hit[P])) error {
	if a == nil || len(a.nodes) == 0 {
		return ErrNotBuilt
	}
	if from < 0 {
		from = 0
	}
	if to > len(folded) {
		to = len(folded)
	}
	if from >= to {
		return nil
	}
	a.scan(folded, from, to, emit)
	return nil
}

func (a *Automaton[P]) scan(folded []rune, from, to int, emit func(Hit[P])) {
	state := root
	for i := from; i < to; i++ {
		c := folded[i]
		for {
			if nxt, ok := a.nodes[state].next[c]; ok {
				state = nxt
				break
			}
			if state == root {
				break
			}
			state = a.nodes[state].fail
		}
		out := a.nodes[state].out
		if len(out) == 0 {
			continue
		}
		end := i + 1
		for _, p := range out {
			emit(Hit[P]{
				Start:   end - a.lengths[p],
				End:     end,
				Pattern: int(p),
				Payload: a.payloads[p],
			})
		}
	}
}
