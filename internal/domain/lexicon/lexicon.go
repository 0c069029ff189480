// Package lexicon turns raw dictionary records into the typed, normalized
// and homonym-grouped entries the matching automata are built from.
//
// Records arrive per category (phrase dictionary, word dictionary). A
// Builder accepts them in dictionary order, rejecting malformed records one
// at a time, and Build produces an immutable Index.
package lexicon

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Category says which automaton a pattern belongs to.
type Category int

const (
	// Phrase is a multi-token expression ("good morning").
	Phrase Category = iota
	// Word is a single token.
	Word
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case Phrase:
		return "phrase"
	case Word:
		return "word"
	default:
		return "unknown"
	}
}

// MarshalText encodes the category by name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category name.
func (c *Category) UnmarshalText(b []byte) error {
	v, ok := ParseCategory(string(b))
	if !ok {
		return fmt.Errorf("unknown category %q", b)
	}
	*c = v
	return nil
}

// ParseCategory parses "phrase"/"phrases" and "word"/"words".
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "phrase", "phrases":
		return Phrase, true
	case "word", "words":
		return Word, true
	default:
		return 0, false
	}
}

// Metadata is the opaque bag attached to one sense of a pattern.
// It is a value type; once attached to a Group it is never mutated.
type Metadata struct {
	PartOfSpeech        string `json:"pos,omitempty"`
	Level               string `json:"level,omitempty"`
	Translation         string `json:"translation,omitempty"`
	BaseForm            string `json:"base_form,omitempty"`
	BaseFormTranslation string `json:"base_form_translation,omitempty"`
}

// Richness counts the populated fields.
func (m Metadata) Richness() int {
	n := 0
	for _, f := range []string{m.PartOfSpeech, m.Level, m.Translation, m.BaseForm, m.BaseFormTranslation} {
		if f != "" {
			n++
		}
	}
	return n
}

// IsZero reports whether no field is set.
func (m Metadata) IsZero() bool { return m == Metadata{} }

// Entry is one (pattern, category, metadata) triple.
type Entry struct {
	Pattern  string // normalized, used for matching
	Display  string // original casing
	Category Category
	Meta     Metadata
}

// Group is the set of senses sharing one normalized spelling within a
// category. Senses keep dictionary insertion order.
type Group struct {
	Spelling string     `json:"spelling"`
	Display  string     `json:"display"`
	Category Category   `json:"category"`
	Senses   []Metadata `json:"senses"`
}

// Len returns the number of senses.
func (g *Group) Len() int { return len(g.Senses) }

// IsHomonym reports whether the spelling carries more than one sense.
func (g *Group) IsHomonym() bool { return len(g.Senses) > 1 }

// Entries flattens the group into one Entry per sense.
func (g *Group) Entries() []Entry {
	out := make([]Entry, len(g.Senses))
	for i, m := range g.Senses {
		out[i] = Entry{Pattern: g.Spelling, Display: g.Display, Category: g.Category, Meta: m}
	}
	return out
}

// Normalize produces the canonical matching form of a spelling: NFC,
// lower-cased rune by rune, whitespace runs collapsed to one space, trimmed.
// Per-rune folding keeps the rune count aligned with text scanned through
// automaton.Fold.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// TokenCount returns the number of whitespace-separated tokens.
func TokenCount(normalized string) int {
	return len(strings.Fields(normalized))
}
