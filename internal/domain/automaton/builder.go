package automaton

import (
	"fmt"
	"sort"
)

// Builder accumulates patterns and compiles them into an Automaton.
// A Builder is not safe for concurrent use.
type Builder[P any] struct {
	a     *Automaton[P]
	built bool
}

// NewBuilder returns an empty builder with only the root state.
func NewBuilder[P any]() *Builder[P] {
	return &Builder[P]{
		a: &Automaton[P]{
			nodes: []node{{next: map[rune]int32{}, accept: -1}},
		},
	}
}

// Add inserts pattern as a path from the root and marks its terminal state
// accepting. A rejected pattern leaves the builder usable.
func (b *Builder[P]) Add(pattern string, payload P) error {
	if b.built {
		return ErrSealed
	}
	folded := FoldRunes(pattern)
	if len(folded) == 0 {
		return ErrEmptyPattern
	}

	a := b.a
	state := root
	for _, c := range folded {
		nxt, ok := a.nodes[state].next[c]
		if !ok {
			nxt = int32(len(a.nodes))
			a.nodes = append(a.nodes, node{
				next:   map[rune]int32{},
				depth:  a.nodes[state].depth + 1,
				accept: -1,
			})
			a.nodes[state].next[c] = nxt
		}
		state = nxt
	}
	if a.nodes[state].accept >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicatePattern, pattern)
	}

	a.nodes[state].accept = int32(len(a.patterns))
	a.patterns = append(a.patterns, string(folded))
	a.lengths = append(a.lengths, len(folded))
	a.payloads = append(a.payloads, payload)
	return nil
}

// Len returns the number of accepted patterns so far.
func (b *Builder[P]) Len() int { return len(b.a.patterns) }

// Build computes failure links and merged output sets, then seals the
// builder. Calling Build again returns the same automaton.
func (b *Builder[P]) Build() *Automaton[P] {
	if b.built {
		return b.a
	}
	b.built = true

	nodes := b.a.nodes
	nodes[root].fail = root

	queue := make([]int32, 0, len(nodes))
	for _, child := range sortedChildren(nodes[root].next) {
		nodes[child].fail = root
		nodes[child].out = mergeOutput(nodes[child].accept, nil)
		queue = append(queue, child)
	}

	for head := 0; head < len(queue); head++ {
		parent := queue[head]
		for _, c := range sortedKeys(nodes[parent].next) {
			child := nodes[parent].next[c]

			f := nodes[parent].fail
			for {
				if nxt, ok := nodes[f].next[c]; ok {
					nodes[child].fail = nxt
					break
				}
				if f == root {
					nodes[child].fail = root
					break
				}
				f = nodes[f].fail
			}

			nodes[child].out = mergeOutput(nodes[child].accept, nodes[nodes[child].fail].out)
			queue = append(queue, child)
		}
	}
	return b.a
}

// mergeOutput returns own (if accepting) followed by inherited. The
// inherited slice is shared, not copied, when there is nothing to prepend.
func mergeOutput(own int32, inherited []int32) []int32 {
	if own < 0 {
		return inherited
	}
	out := make([]int32, 0, len(inherited)+1)
	out = append(out, own)
	return append(out, inherited...)
}

// sortedKeys gives a deterministic BFS order. Correctness does not depend
// on it, only reproducibility of state numbering.
func sortedKeys(m map[rune]int32) []rune {
	keys := make([]rune, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sortedChildren(m map[rune]int32) []int32 {
	keys := sortedKeys(m)
	out := make([]int32, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}
