package app

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/corey/glossa/internal/adapters/bbolt"
	"github.com/corey/glossa/internal/adapters/dictfile"
	"github.com/corey/glossa/internal/domain/lexicon"
)

// ImportResult summarizes one dictionary import.
type ImportResult struct {
	Category lexicon.Category `json:"category"`
	Source   string           `json:"source"`
	Records  int              `json:"records"`
	Groups   int              `json:"groups"`
	Skipped  []error          `json:"-"`
}

// ImportFile reads a JSON dictionary and replaces the stored records of
// cat with it. Records are stored raw, malformed ones included, so the
// stored dictionary loads exactly like the file would; Skipped reports
// what the index will reject.
func ImportFile(store *bbolt.Store, cat lexicon.Category, path string) (ImportResult, error) {
	records, err := dictfile.Load(path)
	if err != nil {
		return ImportResult{}, err
	}
	b, skipped := lexicon.Load(cat, records)
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if err := store.Import(cat, records, abs); err != nil {
		return ImportResult{}, fmt.Errorf("import %s: %w", cat, err)
	}
	c := b.Build().Counts()
	return ImportResult{
		Category: cat,
		Source:   abs,
		Records:  len(records),
		Groups:   c.Phrases + c.Words,
		Skipped:  skipped,
	}, nil
}

// ExportCategory writes the stored records of cat as a JSON array.
// Returns the number of records written.
func ExportCategory(store *bbolt.Store, cat lexicon.Category, w io.Writer) (int, error) {
	records, err := store.Records(cat)
	if err != nil {
		return 0, fmt.Errorf("export %s: %w", cat, err)
	}
	if err := dictfile.Write(w, records); err != nil {
		return 0, fmt.Errorf("export %s: %w", cat, err)
	}
	return len(records), nil
}
