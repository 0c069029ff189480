// Record blob encoding.
//
// Each blob starts with a one-byte format version followed by a gob stream.
// Records are stored as one ordered slice per category: order decides the
// sense order of homonyms, so a map is never used.
package bbolt

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/corey/glossa/internal/domain/lexicon"
)

// formatV1 is the only blob format written.
const formatV1 byte = 1

// storedRecord is the gob form of lexicon.RawRecord. It is decoupled from
// the domain type so JSON tag or method changes never break stored data.
type storedRecord struct {
	Key                 string
	PartOfSpeech        string
	Level               string
	Translation         string
	BaseForm            string
	BaseFormTranslation string
	Invalid             string
}

// storedMeta describes a saved category.
type storedMeta struct {
	Records int
	Source  string
	SavedAt time.Time
}

func encodeRecords(records []lexicon.RawRecord) ([]byte, error) {
	out := make([]storedRecord, len(records))
	for i, r := range records {
		out[i] = storedRecord{
			Key:                 r.Key,
			PartOfSpeech:        r.Fields.PartOfSpeech,
			Level:               r.Fields.Level,
			Translation:         r.Fields.Translation,
			BaseForm:            r.Fields.BaseForm,
			BaseFormTranslation: r.Fields.BaseFormTranslation,
			Invalid:             r.Invalid,
		}
	}
	return encodeGob(out)
}

func decodeRecords(data []byte) ([]lexicon.RawRecord, error) {
	var in []storedRecord
	if err := decodeGob(data, &in); err != nil {
		return nil, err
	}
	out := make([]lexicon.RawRecord, len(in))
	for i, r := range in {
		out[i] = lexicon.RawRecord{
			Key: r.Key,
			Fields: lexicon.RecordFields{
				PartOfSpeech:        r.PartOfSpeech,
				Level:               r.Level,
				Translation:         r.Translation,
				BaseForm:            r.BaseForm,
				BaseFormTranslation: r.BaseFormTranslation,
			},
			Invalid: r.Invalid,
		}
	}
	return out, nil
}

// encodeGob encodes v behind the format version byte.
func encodeGob(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(formatV1)
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("gob encode: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeGob decodes a versioned blob into target. Target must be a pointer.
func decodeGob(data []byte, target any) error {
	if len(data) == 0 {
		return fmt.Errorf("empty blob")
	}
	if data[0] != formatV1 {
		return fmt.Errorf("unsupported blob format %d", data[0])
	}
	if err := gob.NewDecoder(bytes.NewReader(data[1:])).Decode(target); err != nil {
		return fmt.Errorf("gob decode: %w", err)
	}
	return nil
}
