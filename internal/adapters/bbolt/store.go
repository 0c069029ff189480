// Package bbolt implements the ports.DictionaryStore interface using bbolt
// (embedded B+ tree). Each category gets its own sub-bucket under
// "dictionaries" holding the ordered record blob and a small meta blob.
// Writes are transactional: a crash mid-write cannot corrupt previously
// committed data.
package bbolt

import (
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/corey/glossa/internal/domain/lexicon"
	"github.com/corey/glossa/internal/ports"
)

// Bucket keys
var (
	bucketDictionaries = []byte("dictionaries")
	keyRecords         = []byte("records")
	keyMeta            = []byte("meta")
)

var _ ports.DictionaryStore = (*Store)(nil)

// Store implements ports.DictionaryStore backed by bbolt.
type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.db.Path()
}

func categoryKey(cat lexicon.Category) []byte {
	return []byte(cat.String())
}

// SaveRecords replaces the stored dictionary for a category.
func (s *Store) SaveRecords(cat lexicon.Category, records []lexicon.RawRecord) error {
	return s.Import(cat, records, "")
}

// Import replaces the stored dictionary for a category and remembers the
// file it came from.
func (s *Store) Import(cat lexicon.Category, records []lexicon.RawRecord, source string) error {
	data, err := encodeRecords(records)
	if err != nil {
		return fmt.Errorf("encode %s records: %w", cat, err)
	}
	meta, err := encodeGob(storedMeta{Records: len(records), Source: source, SavedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode %s meta: %w", cat, err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(bucketDictionaries)
		if err != nil {
			return err
		}
		// Replace, not merge: drop the old bucket first.
		if err := root.DeleteBucket(categoryKey(cat)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		cb, err := root.CreateBucket(categoryKey(cat))
		if err != nil {
			return err
		}
		if err := cb.Put(keyRecords, data); err != nil {
			return err
		}
		return cb.Put(keyMeta, meta)
	})
}

// Records retrieves the stored dictionary for a category.
// Returns nil, nil if nothing was saved.
func (s *Store) Records(cat lexicon.Category) ([]lexicon.RawRecord, error) {
	var data []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		cb := categoryBucket(tx, cat)
		if cb == nil {
			return nil
		}
		// Copy bytes out of the transaction (bbolt slices are only valid within tx)
		if v := cb.Get(keyRecords); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	records, err := decodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s records: %w", cat, err)
	}
	return records, nil
}

// DropRecords removes a category's dictionary.
// Idempotent: dropping a category that was never saved is not an error.
func (s *Store) DropRecords(cat lexicon.Category) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(bucketDictionaries)
		if root == nil {
			return nil
		}
		if err := root.DeleteBucket(categoryKey(cat)); errors.Is(err, bolt.ErrBucketNotFound) {
			return nil // idempotent
		} else {
			return err
		}
	})
}

// Categories describes what is stored, phrase category first.
func (s *Store) Categories() ([]ports.StoredDictionary, error) {
	var out []ports.StoredDictionary
	err := s.db.View(func(tx *bolt.Tx) error {
		for _, cat := range []lexicon.Category{lexicon.Phrase, lexicon.Word} {
			cb := categoryBucket(tx, cat)
			if cb == nil {
				continue
			}
			v := cb.Get(keyMeta)
			if v == nil {
				continue
			}
			var m storedMeta
			if err := decodeGob(v, &m); err != nil {
				return fmt.Errorf("decode %s meta: %w", cat, err)
			}
			out = append(out, ports.StoredDictionary{
				Category: cat,
				Records:  m.Records,
				Source:   m.Source,
				SavedAt:  m.SavedAt,
			})
		}
		return nil
	})
	return out, err
}

func categoryBucket(tx *bolt.Tx, cat lexicon.Category) *bolt.Bucket {
	root := tx.Bucket(bucketDictionaries)
	if root == nil {
		return nil
	}
	return root.Bucket(categoryKey(cat))
}
