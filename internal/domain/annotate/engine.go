package annotate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/corey/glossa/internal/domain/lexicon"
	"github.com/corey/glossa/internal/domain/resolve"
	"github.com/corey/glossa/internal/ports"
)

// Snapshot is one fully built dictionary generation. It is immutable once
// published, so scans never need a lock.
type Snapshot struct {
	Generation uint64
	Index      *lexicon.Index
	Phrases    *resolve.Automaton // nil when the phrase build failed
	Words      *resolve.Automaton // nil when the word build failed
	Skipped    []error            // malformed records and rejected patterns
	BuiltAt    time.Time
	BuildTime  time.Duration
}

// Stats summarizes a snapshot for status output.
type Stats struct {
	Generation    uint64         `json:"generation"`
	Counts        lexicon.Counts `json:"counts"`
	PhraseStates  int            `json:"phrase_states"`
	WordStates    int            `json:"word_states"`
	PhraseEnabled bool           `json:"phrase_enabled"`
	WordEnabled   bool           `json:"word_enabled"`
	BuiltAt       time.Time      `json:"built_at"`
	BuildTimeMs   int64          `json:"build_time_ms"`
}

// Stats returns the snapshot summary.
func (s *Snapshot) Stats() Stats {
	st := Stats{
		Generation:    s.Generation,
		Counts:        s.Index.Counts(),
		PhraseEnabled: s.Phrases != nil,
		WordEnabled:   s.Words != nil,
		BuiltAt:       s.BuiltAt,
		BuildTimeMs:   s.BuildTime.Milliseconds(),
	}
	if s.Phrases != nil {
		st.PhraseStates = s.Phrases.States()
	}
	if s.Words != nil {
		st.WordStates = s.Words.States()
	}
	return st
}

// Engine owns the current snapshot and swaps it whole on Reload. Annotate
// and Reload may be called concurrently.
type Engine struct {
	opts   Options
	logger *slog.Logger

	current atomic.Pointer[Snapshot]
	gen     atomic.Uint64
	reload  sync.Mutex // serializes builds, never held by scans
}

// NewEngine creates an engine with an empty dictionary. opts supplies the
// defaults for every Annotate call; its Format is ignored.
func NewEngine(opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{opts: opts, logger: logger}
	e.current.Store(&Snapshot{Index: lexicon.NewBuilder().Build(), BuiltAt: time.Now()})
	return e
}

// Snapshot returns the snapshot currently used for scans.
func (e *Engine) Snapshot() *Snapshot { return e.current.Load() }

// Reload builds a new snapshot from src and publishes it. When src fails
// the previous snapshot stays in place. A failed automaton build does not
// fail the reload: that category is left without annotation.
func (e *Engine) Reload(src ports.RecordSource) (*Snapshot, error) {
	e.reload.Lock()
	defer e.reload.Unlock()

	start := time.Now()
	b := lexicon.NewBuilder()
	var skipped []error
	for _, cat := range []lexicon.Category{lexicon.Phrase, lexicon.Word} {
		records, err := src.Records(cat)
		if err != nil {
			return nil, fmt.Errorf("load %s records: %w", cat, err)
		}
		for _, err := range b.Add(cat, records...) {
			e.logger.Warn("skipping dictionary record", slog.String("category", cat.String()), slog.Any("error", err))
			skipped = append(skipped, err)
		}
	}
	idx := b.Build()

	phrases, err := BuildPhraseAutomaton(idx)
	skipped = e.noteBuild(lexicon.Phrase, phrases, err, skipped)
	words, err := BuildWordAutomaton(idx)
	skipped = e.noteBuild(lexicon.Word, words, err, skipped)

	snap := &Snapshot{
		Generation: e.gen.Add(1),
		Index:      idx,
		Phrases:    phrases,
		Words:      words,
		Skipped:    skipped,
		BuiltAt:    time.Now(),
		BuildTime:  time.Since(start),
	}
	e.current.Store(snap)

	c := idx.Counts()
	e.logger.Info("dictionary loaded",
		slog.Uint64("generation", snap.Generation),
		slog.Int("phrases", c.Phrases),
		slog.Int("words", c.Words),
		slog.Int("skipped", c.Skipped),
		slog.Duration("took", snap.BuildTime),
	)
	return snap, nil
}

func (e *Engine) noteBuild(cat lexicon.Category, a *resolve.Automaton, err error, skipped []error) []error {
	if err == nil {
		return skipped
	}
	if a == nil {
		e.logger.Warn("automaton build failed, category disabled", slog.String("category", cat.String()), slog.Any("error", err))
	} else {
		e.logger.Warn("patterns rejected", slog.String("category", cat.String()), slog.Any("error", err))
	}
	return append(skipped, err)
}

// Annotate annotates text with the current snapshot.
func (e *Engine) Annotate(text string, format Format) (*Document, error) {
	return e.annotate(e.current.Load(), text, format)
}

func (e *Engine) annotate(snap *Snapshot, text string, format Format) (*Document, error) {
	opts := e.opts
	opts.Format = format
	return Annotate(text, snap.Phrases, snap.Words, opts)
}

// AnnotateChunks annotates each chunk with one snapshot, checking ctx
// between chunks. On cancellation the documents finished so far are
// returned along with the context error.
func (e *Engine) AnnotateChunks(ctx context.Context, chunks []string, format Format) ([]*Document, error) {
	snap := e.current.Load()
	docs := make([]*Document, 0, len(chunks))
	for i, c := range chunks {
		if err := ctx.Err(); err != nil {
			return docs, err
		}
		doc, err := e.annotate(snap, c, format)
		if err != nil {
			return docs, fmt.Errorf("chunk %d: %w", i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Lookup returns every group matching spelling, phrases first.
func (e *Engine) Lookup(spelling string) []*lexicon.Group {
	return e.current.Load().Index.Lookup(spelling)
}

// IsInputTooLarge reports whether err is the input ceiling error.
func IsInputTooLarge(err error) bool { return errors.Is(err, resolve.ErrInputTooLarge) }
