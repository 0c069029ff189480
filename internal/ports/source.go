package ports

import "github.com/corey/glossa/internal/domain/lexicon"

// RecordSource yields raw dictionary records for a category, in dictionary
// order. Implementations: dictfile (JSON files on disk) and the bbolt store.
type RecordSource interface {
	// Records returns nil, nil when the source has nothing for cat.
	Records(cat lexicon.Category) ([]lexicon.RawRecord, error)
}
