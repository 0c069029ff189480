// Package resolve turns raw automaton hits into the spans that are safe to
// render: boundary-valid, phrase-first, non-overlapping, with homonyms
// fanned out to one span per sense.
package resolve

import (
	"errors"
	"fmt"
	"sort"

	"github.com/corey/glossa/internal/domain/automaton"
	"github.com/corey/glossa/internal/domain/lexicon"
)

// ErrInputTooLarge is returned when the text exceeds the configured
// ceiling. Nothing is scanned in that case.
var ErrInputTooLarge = errors.New("scan input too large")

// Automaton is a matcher whose payload is the homonym group of a spelling.
type Automaton = automaton.Automaton[*lexicon.Group]

// Span is one located sense. Start and End are half-open rune offsets.
// Senses of one homonym group share Start and End and differ by Sense.
type Span struct {
	Start     int              `json:"start"`
	End       int              `json:"end"`
	Category  lexicon.Category `json:"category"`
	Surface   string           `json:"surface"`
	Display   string           `json:"display"`
	Meta      lexicon.Metadata `json:"meta"`
	Sense     int              `json:"sense"`
	GroupSize int              `json:"group_size"`
}

// Len returns the span length in runes.
func (s Span) Len() int { return s.End - s.Start }

// Homonym reports whether the span is one of several senses.
func (s Span) Homonym() bool { return s.GroupSize > 1 }

// Resolver applies boundary and precedence rules on top of two automata.
// Either automaton may be nil, in which case that category yields nothing.
// A Resolver holds no per-call state and is safe for concurrent use.
type Resolver struct {
	phrases  *Automaton
	words    *Automaton
	maxInput int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMaxInput caps the input size in bytes. Zero means unlimited.
func WithMaxInput(n int) Option {
	return func(r *Resolver) { r.maxInput = n }
}

// New creates a Resolver over the given automata.
func New(phrases, words *Automaton, opts ...Option) *Resolver {
	r := &Resolver{phrases: phrases, words: words}
	for _, o := range opts {
		o(r)
	}
	return r
}

type hit struct {
	start, end int
	group      *lexicon.Group
}

// Resolve finds the final, ordered span list for text.
func (r *Resolver) Resolve(text string) ([]Span, error) {
	if r.maxInput > 0 && len(text) > r.maxInput {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrInputTooLarge, len(text), r.maxInput)
	}
	runes := []rune(text)
	folded := make([]rune, len(runes))
	for i, c := range runes {
		folded[i] = automaton.Fold(c)
	}

	var phrases []hit
	if r.phrases != nil {
		raw, err := boundedHits(r.phrases, runes, folded, 0, len(runes))
		if err != nil {
			return nil, fmt.Errorf("phrase scan: %w", err)
		}
		phrases = leftmostLongest(raw)
	}

	var words []hit
	if r.words != nil {
		var raw []hit
		for _, gap := range Uncovered(len(runes), phraseRanges(phrases)) {
			hs, err := boundedHits(r.words, runes, folded, gap.Start, gap.End)
			if err != nil {
				return nil, fmt.Errorf("word scan: %w", err)
			}
			raw = append(raw, hs...)
		}
		words = leftmostLongest(raw)
	}

	spans := make([]Span, 0, len(phrases)+len(words))
	spans = expand(spans, runes, phrases)
	spans = expand(spans, runes, words)
	Sort(spans)
	return spans, nil
}

// boundedHits scans folded[from:to] and keeps boundary-valid hits.
// Boundaries are checked against the whole text, not the sub-range.
func boundedHits(a *Automaton, runes, folded []rune, from, to int) ([]hit, error) {
	var out []hit
	err := a.ScanRange(folded, from, to, func(h automaton.Hit[*lexicon.Group]) {
		if Bounded(runes, h.Start, h.End) {
			out = append(out, hit{start: h.Start, end: h.End, group: h.Payload})
		}
	})
	return out, err
}

// leftmostLongest keeps a non-overlapping subset: earliest start wins,
// then the longer hit.
func leftmostLongest(hs []hit) []hit {
	sort.SliceStable(hs, func(i, j int) bool {
		if hs[i].start != hs[j].start {
			return hs[i].start < hs[j].start
		}
		return hs[i].end > hs[j].end
	})
	out := hs[:0]
	lastEnd := -1
	for _, h := range hs {
		if h.start < lastEnd {
			continue
		}
		out = append(out, h)
		lastEnd = h.end
	}
	return out
}

// Range is a half-open rune interval.
type Range struct {
	Start, End int
}

func phraseRanges(hs []hit) []Range {
	out := make([]Range, len(hs))
	for i, h := range hs {
		out[i] = Range{h.start, h.end}
	}
	return out
}

// Uncovered returns the maximal sub-ranges of [0,n) not covered by any of
// covered. covered must be sorted by Start and non-overlapping.
func Uncovered(n int, covered []Range) []Range {
	var out []Range
	pos := 0
	for _, c := range covered {
		if c.Start > pos {
			out = append(out, Range{pos, c.Start})
		}
		if c.End > pos {
			pos = c.End
		}
	}
	if pos < n {
		out = append(out, Range{pos, n})
	}
	return out
}

func expand(dst []Span, runes []rune, hs []hit) []Span {
	for _, h := range hs {
		g := h.group
		surface := string(runes[h.start:h.end])
		for i, m := range g.Senses {
			dst = append(dst, Span{
				Start:     h.start,
				End:       h.end,
				Category:  g.Category,
				Surface:   surface,
				Display:   g.Display,
				Meta:      m,
				Sense:     i,
				GroupSize: len(g.Senses),
			})
		}
	}
	return dst
}

// Sort orders spans by ascending start, longer spans first, phrases before
// words, then by sense.
func Sort(spans []Span) {
	sort.SliceStable(spans, func(i, j int) bool {
		a, b := spans[i], spans[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Len() != b.Len() {
			return a.Len() > b.Len()
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Sense < b.Sense
	})
}
