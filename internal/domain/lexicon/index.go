package lexicon

import (
	"sort"
	"unicode/utf8"
)

type groupKey struct {
	cat      Category
	spelling string
}

// Counts summarizes an Index.
type Counts struct {
	Phrases      int `json:"phrases"`
	Words        int `json:"words"`
	PhraseSenses int `json:"phrase_senses"`
	WordSenses   int `json:"word_senses"`
	Skipped      int `json:"skipped"`
	Rerouted     int `json:"rerouted"` // multi-token word keys moved to phrases
	Merged       int `json:"merged"`   // identical senses collapsed
}

// Builder accumulates records. It is not safe for concurrent use.
type Builder struct {
	order  []*Group
	groups map[groupKey]*Group
	counts Counts
	seen   int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{groups: make(map[groupKey]*Group)}
}

// Load is a convenience for NewBuilder followed by Add.
func Load(cat Category, records []RawRecord) (*Builder, []error) {
	b := NewBuilder()
	errs := b.Add(cat, records...)
	return b, errs
}

// Add appends records of one category in dictionary order. Malformed
// records are skipped and reported; the rest are kept.
func (b *Builder) Add(cat Category, records ...RawRecord) []error {
	var errs []error
	for i, rec := range records {
		e, err := entryFromRecord(cat, b.seen+i, rec)
		if err != nil {
			b.counts.Skipped++
			errs = append(errs, err)
			continue
		}
		if e.Category == Word && TokenCount(e.Pattern) != 1 {
			e.Category = Phrase
			b.counts.Rerouted++
		}
		b.addEntry(e)
	}
	b.seen += len(records)
	return errs
}

// AddEntry adds an already-normalized entry.
func (b *Builder) AddEntry(e Entry) {
	b.addEntry(e)
}

func (b *Builder) addEntry(e Entry) {
	key := groupKey{cat: e.Category, spelling: e.Pattern}
	g, ok := b.groups[key]
	if !ok {
		g = &Group{Spelling: e.Pattern, Display: e.Display, Category: e.Category}
		b.groups[key] = g
		b.order = append(b.order, g)
	}
	for _, m := range g.Senses {
		if m == e.Meta {
			b.counts.Merged++
			return
		}
	}
	g.Senses = append(g.Senses, e.Meta)
}

// Build produces the immutable Index. The builder may keep accepting
// records afterwards; later Builds see them, earlier Indexes do not.
func (b *Builder) Build() *Index {
	idx := &Index{
		byKey:  make(map[groupKey]*Group, len(b.order)),
		counts: b.counts,
	}
	for _, g := range b.order {
		cp := &Group{
			Spelling: g.Spelling,
			Display:  g.Display,
			Category: g.Category,
			Senses:   append([]Metadata(nil), g.Senses...),
		}
		idx.byKey[groupKey{cat: cp.Category, spelling: cp.Spelling}] = cp
		switch cp.Category {
		case Phrase:
			idx.phrases = append(idx.phrases, cp)
			idx.counts.PhraseSenses += cp.Len()
		case Word:
			idx.words = append(idx.words, cp)
			idx.counts.WordSenses += cp.Len()
		}
	}
	sortByLength(idx.phrases)
	sortByLength(idx.words)
	idx.counts.Phrases = len(idx.phrases)
	idx.counts.Words = len(idx.words)
	return idx
}

// sortByLength orders groups longest spelling first. Automaton correctness
// does not depend on it; listings do.
func sortByLength(gs []*Group) {
	sort.SliceStable(gs, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(gs[i].Spelling), utf8.RuneCountInString(gs[j].Spelling)
		if li != lj {
			return li > lj
		}
		return gs[i].Spelling < gs[j].Spelling
	})
}

// Index is the read-only result of a Build.
type Index struct {
	phrases []*Group
	words   []*Group
	byKey   map[groupKey]*Group
	counts  Counts
}

// PhraseEntries returns phrase groups, longest first.
func (x *Index) PhraseEntries() []*Group { return x.phrases }

// WordEntries returns word groups, longest first.
func (x *Index) WordEntries() []*Group { return x.words }

// Entries returns the groups of one category.
func (x *Index) Entries(cat Category) []*Group {
	if cat == Phrase {
		return x.phrases
	}
	return x.words
}

// Counts returns group, sense and rejection counts.
func (x *Index) Counts() Counts { return x.counts }

// LookupCategory finds the group for spelling in one category. The
// spelling is normalized first.
func (x *Index) LookupCategory(cat Category, spelling string) (*Group, bool) {
	g, ok := x.byKey[groupKey{cat: cat, spelling: Normalize(spelling)}]
	return g, ok
}

// Lookup returns the phrase and word groups for spelling, phrase first.
func (x *Index) Lookup(spelling string) []*Group {
	var out []*Group
	for _, cat := range []Category{Phrase, Word} {
		if g, ok := x.LookupCategory(cat, spelling); ok {
			out = append(out, g)
		}
	}
	return out
}
