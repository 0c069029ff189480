// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

import (
	"time"

	"github.com/corey/glossa/internal/domain/lexicon"
)

// DictionaryStore persists raw dictionary records per category.
// The backing store (bbolt) keeps one namespace per category. Concurrent
// reads are safe; writes are serialized by the adapter.
//
// Crash safety: SaveRecords must be transactional. A crash mid-write must
// not corrupt the previously committed dictionary.
type DictionaryStore interface {
	RecordSource

	// SaveRecords replaces the stored dictionary for a category.
	// Record order is preserved; it decides homonym sense order.
	SaveRecords(cat lexicon.Category, records []lexicon.RawRecord) error

	// DropRecords removes a category's dictionary.
	// Idempotent: dropping a category that was never saved is not an error.
	DropRecords(cat lexicon.Category) error

	// Categories describes what is stored, phrase category first.
	Categories() ([]StoredDictionary, error)

	Close() error
}

// StoredDictionary summarizes one persisted category.
type StoredDictionary struct {
	Category lexicon.Category `json:"category"`
	Records  int              `json:"records"`
	Source   string           `json:"source,omitempty"` // file the records were imported from
	SavedAt  time.Time        `json:"saved_at"`
}
