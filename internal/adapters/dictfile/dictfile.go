// Package dictfile reads and writes JSON dictionary files.
//
// Two shapes are accepted. The object form maps a spelling key (optionally
// suffixed with a type tag) to its fields, and is decoded token by token so
// record order, and with it homonym sense order, is kept even when a key
// repeats:
//
//	{"bank_noun": {"translation": "bank"}, "bank_noun": {"translation": "shore"}}
//
// The array form carries the spelling in a "key", "word" or "phrase" field:
//
//	[{"word": "bank", "pos": "noun", "translation": "bank"}]
//
// A field value may also be a bare string, taken as the translation. A
// record whose value cannot be decoded is kept with RawRecord.Invalid set,
// so the index skips it and the rest of the file still loads. Only JSON
// syntax errors fail the whole file.
package dictfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/corey/glossa/internal/domain/lexicon"
	"github.com/corey/glossa/internal/ports"
)

var _ ports.RecordSource = Source{}

// Source reads each category from its own file. An empty path means the
// category has no dictionary.
type Source struct {
	Phrases string
	Words   string
}

// Path returns the file configured for cat.
func (s Source) Path(cat lexicon.Category) string {
	if cat == lexicon.Phrase {
		return s.Phrases
	}
	return s.Words
}

// Paths returns the configured, non-empty paths.
func (s Source) Paths() []string {
	var out []string
	for _, p := range []string{s.Phrases, s.Words} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Records implements ports.RecordSource.
func (s Source) Records(cat lexicon.Category) ([]lexicon.RawRecord, error) {
	path := s.Path(cat)
	if path == "" {
		return nil, nil
	}
	return Load(path)
}

// Load maps the file read-only and decodes it. The mapping is released
// before returning; decoded records own their strings.
func Load(path string) ([]lexicon.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat dictionary: %w", err)
	}
	// mmap rejects zero-length mappings.
	if info.Size() == 0 {
		return nil, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap dictionary: %w", err)
	}
	defer m.Unmap()

	records, err := Decode(m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Decode parses a dictionary in either shape. Whitespace-only input is an
// empty dictionary.
func Decode(data []byte) ([]lexicon.RawRecord, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode dictionary: %w", err)
	}
	switch tok {
	case json.Delim('{'):
		return decodeObject(dec)
	case json.Delim('['):
		return decodeArray(dec)
	default:
		return nil, fmt.Errorf("decode dictionary: want object or array, got %v", tok)
	}
}

func decodeObject(dec *json.Decoder) ([]lexicon.RawRecord, error) {
	var out []lexicon.RawRecord
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode key %d: %w", len(out), err)
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode %q: %w", key, err)
		}
		fields, err := decodeFields(raw)
		if err != nil {
			out = append(out, lexicon.RawRecord{Key: key, Invalid: err.Error()})
			continue
		}
		out = append(out, lexicon.RawRecord{Key: key, Fields: fields})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode dictionary: %w", err)
	}
	return out, nil
}

type arrayKey struct {
	Key    string `json:"key"`
	Word   string `json:"word"`
	Phrase string `json:"phrase"`
	// Invalid carries a stored decode problem through export and re-import.
	Invalid string `json:"invalid"`
}

func decodeArray(dec *json.Decoder) ([]lexicon.RawRecord, error) {
	var out []lexicon.RawRecord
	for dec.More() {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode record %d: %w", len(out), err)
		}
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			out = append(out, lexicon.RawRecord{Invalid: fmt.Sprintf("record is not an object: %s", trimmed)})
			continue
		}
		var k arrayKey
		if err := json.Unmarshal(raw, &k); err != nil {
			out = append(out, lexicon.RawRecord{Invalid: err.Error()})
			continue
		}
		fields, err := decodeFields(raw)
		if err != nil {
			out = append(out, lexicon.RawRecord{Key: firstKey(k), Invalid: err.Error()})
			continue
		}
		// A missing key is kept as "" so the index reports it as malformed.
		out = append(out, lexicon.RawRecord{Key: firstKey(k), Fields: fields, Invalid: k.Invalid})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode dictionary: %w", err)
	}
	return out, nil
}

func firstKey(k arrayKey) string {
	switch {
	case k.Key != "":
		return k.Key
	case k.Word != "":
		return k.Word
	}
	return k.Phrase
}

func decodeFields(raw json.RawMessage) (lexicon.RecordFields, error) {
	var f lexicon.RecordFields
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		err := json.Unmarshal(trimmed, &f.Translation)
		return f, err
	}
	err := json.Unmarshal(trimmed, &f)
	return f, err
}

// Write encodes records in the array form, one record per line.
func Write(w io.Writer, records []lexicon.RawRecord) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return err
	}
	for i, r := range records {
		line, err := encodeRecord(r)
		if err != nil {
			return fmt.Errorf("encode record %d: %w", i, err)
		}
		sep := ",\n  "
		if i == 0 {
			sep = "\n  "
		}
		if _, err := io.WriteString(w, sep); err != nil {
			return err
		}
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	if len(records) > 0 {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "]\n")
	return err
}

func encodeRecord(r lexicon.RawRecord) ([]byte, error) {
	key, err := json.Marshal(r.Key)
	if err != nil {
		return nil, err
	}
	fields, err := json.Marshal(r.Fields)
	if err != nil {
		return nil, err
	}
	if len(fields) < 2 || fields[0] != '{' {
		return nil, errors.New("fields did not encode as an object")
	}
	var b bytes.Buffer
	b.WriteString(`{"key":`)
	b.Write(key)
	if r.Invalid != "" {
		invalid, err := json.Marshal(r.Invalid)
		if err != nil {
			return nil, err
		}
		b.WriteString(`,"invalid":`)
		b.Write(invalid)
	}
	if len(fields) > 2 {
		b.WriteByte(',')
		b.Write(fields[1:])
	} else {
		b.WriteByte('}')
	}
	return b.Bytes(), nil
}
