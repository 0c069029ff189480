// Package annotate assembles the pipeline: dictionary index to automata,
// automata to resolved spans, spans to annotated output.
package annotate

import (
	"errors"
	"fmt"

	"github.com/corey/glossa/internal/domain/automaton"
	"github.com/corey/glossa/internal/domain/lexicon"
	"github.com/corey/glossa/internal/domain/resolve"
)

// BuildPhraseAutomaton compiles the phrase groups of idx.
//
// A non-nil automaton is always usable. The error may still be non-nil
// when individual patterns were rejected; any other construction failure
// returns a nil automaton, which callers treat as "no phrases".
func BuildPhraseAutomaton(idx *lexicon.Index) (*resolve.Automaton, error) {
	return build(lexicon.Phrase, idx.PhraseEntries())
}

// BuildWordAutomaton compiles the word groups of idx. See BuildPhraseAutomaton.
func BuildWordAutomaton(idx *lexicon.Index) (*resolve.Automaton, error) {
	return build(lexicon.Word, idx.WordEntries())
}

func build(cat lexicon.Category, groups []*lexicon.Group) (*resolve.Automaton, error) {
	b := automaton.NewBuilder[*lexicon.Group]()
	var rejected []error
	for _, g := range groups {
		if err := b.Add(g.Spelling, g); err != nil {
			if errors.Is(err, automaton.ErrEmptyPattern) {
				rejected = append(rejected, err)
				continue
			}
			return nil, fmt.Errorf("build %s automaton: %w", cat, err)
		}
	}
	return b.Build(), errors.Join(rejected...)
}
