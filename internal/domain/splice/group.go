// Package splice injects annotation markers around resolved spans, either
// into a flat string or into a parsed HTML tree.
//
// Both forms work from the highest offset down so that inserting a marker
// never shifts the offsets of spans still waiting to be spliced.
package splice

import (
	"sort"

	"github.com/corey/glossa/internal/domain/lexicon"
	"github.com/corey/glossa/internal/domain/resolve"
)

// Group is the set of spans sharing one offset pair: all senses of a
// homonym group as they were fanned out by the resolver.
type Group struct {
	Start    int
	End      int
	Category lexicon.Category
	Display  string
	Surface  string
	Senses   []lexicon.Metadata
}

// Len returns the group length in runes.
func (g Group) Len() int { return g.End - g.Start }

type groupKey struct {
	start, end int
	cat        lexicon.Category
}

// Groups collapses spans with identical offsets and category into one Group,
// keeping sense order. The result is ordered like resolve.Sort.
func Groups(spans []resolve.Span) []Group {
	var out []Group
	at := make(map[groupKey]int, len(spans))
	for _, s := range spans {
		k := groupKey{s.Start, s.End, s.Category}
		i, ok := at[k]
		if !ok {
			i = len(out)
			at[k] = i
			out = append(out, Group{
				Start:    s.Start,
				End:      s.End,
				Category: s.Category,
				Display:  s.Display,
				Surface:  s.Surface,
			})
		}
		out[i].Senses = append(out[i].Senses, s.Meta)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Len() != b.Len() {
			return a.Len() > b.Len()
		}
		return a.Category < b.Category
	})
	return out
}

// Richest returns the index of the sense with the most populated fields.
// Ties go to the earlier sense.
func Richest(senses []lexicon.Metadata) int {
	best, score := 0, -1
	for i, m := range senses {
		if r := m.Richness(); r > score {
			best, score = i, r
		}
	}
	return best
}

// Options controls how homonym groups are rendered.
type Options struct {
	// Nested wraps every sense, first sense outermost. Otherwise only the
	// richest sense is rendered.
	Nested bool
}

func (o Options) senses(g Group) []int {
	if !o.Nested {
		return []int{Richest(g.Senses)}
	}
	idx := make([]int, len(g.Senses))
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// Plan picks the groups that will be spliced, highest start first. A group
// that overlaps one already chosen is dropped; at equal starts the longer
// group is chosen.
func Plan(groups []Group, n int) []Group {
	order := make([]Group, 0, len(groups))
	for _, g := range groups {
		if g.Start < 0 || g.End > n || g.Start >= g.End || len(g.Senses) == 0 {
			continue
		}
		order = append(order, g)
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].Start != order[j].Start {
			return order[i].Start > order[j].Start
		}
		return order[i].Len() > order[j].Len()
	})
	out := order[:0]
	floor := n
	for _, g := range order {
		if g.End > floor {
			continue
		}
		out = append(out, g)
		floor = g.Start
	}
	return out
}
