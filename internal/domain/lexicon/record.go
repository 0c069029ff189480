package lexicon

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedEntry marks a record that cannot be indexed.
var ErrMalformedEntry = errors.New("malformed dictionary entry")

// MalformedEntryError describes one rejected record.
type MalformedEntryError struct {
	Category Category
	Index    int // position in the source, 0-based
	Key      string
	Reason   string
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("%s #%d %q: %s", e.Category, e.Index, e.Key, e.Reason)
}

func (e *MalformedEntryError) Unwrap() error { return ErrMalformedEntry }

// RawRecord is one dictionary record as produced by a loader: a spelling
// key, optionally suffixed with a type tag ("bank_noun"), and its fields.
type RawRecord struct {
	Key    string       `json:"key"`
	Fields RecordFields `json:"fields"`
	// Invalid is set by a loader that could not decode the record's value.
	// The index rejects such a record with this text as the reason.
	Invalid string `json:"invalid,omitempty"`
}

// RecordFields holds the optional metadata of a record. Unknown JSON
// fields are ignored; a few common aliases are accepted.
type RecordFields struct {
	PartOfSpeech        string
	Level               string
	Translation         string
	BaseForm            string
	BaseFormTranslation string
}

type recordFieldsJSON struct {
	PartOfSpeech        looseString `json:"pos"`
	Type                looseString `json:"type"`
	Level               looseString `json:"level"`
	CEFR                looseString `json:"cefr"`
	Translation         looseString `json:"translation"`
	BaseForm            looseString `json:"base_form"`
	Lemma               looseString `json:"lemma"`
	BaseFormTranslation looseString `json:"base_form_translation"`
	LemmaTranslation    looseString `json:"lemma_translation"`
}

// looseString accepts a JSON string, number or null. Numeric proficiency
// levels ("level": 2) are common in hand-written dictionaries.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || string(data) == "null":
		*s = ""
		return nil
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("want string or number, got %s", data)
	}
	*s = looseString(n.String())
	return nil
}

// UnmarshalJSON decodes the canonical names and their aliases.
func (f *RecordFields) UnmarshalJSON(data []byte) error {
	var raw recordFieldsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = RecordFields{
		PartOfSpeech:        firstNonEmpty(raw.PartOfSpeech, raw.Type),
		Level:               firstNonEmpty(raw.Level, raw.CEFR),
		Translation:         string(raw.Translation),
		BaseForm:            firstNonEmpty(raw.BaseForm, raw.Lemma),
		BaseFormTranslation: firstNonEmpty(raw.BaseFormTranslation, raw.LemmaTranslation),
	}
	return nil
}

// MarshalJSON writes the canonical names only.
func (f RecordFields) MarshalJSON() ([]byte, error) {
	return json.Marshal(Metadata(f))
}

func firstNonEmpty(vals ...looseString) string {
	for _, v := range vals {
		if s := strings.TrimSpace(string(v)); s != "" {
			return s
		}
	}
	return ""
}

// posTags are the suffixes recognized in "spelling_tag" keys.
var posTags = map[string]bool{
	"noun": true, "n": true,
	"verb": true, "v": true,
	"adj": true, "adjective": true,
	"adv": true, "adverb": true,
	"prep": true, "preposition": true,
	"pron": true, "pronoun": true,
	"conj": true, "conjunction": true,
	"interj": true, "interjection": true,
	"det": true, "determiner": true,
	"art": true, "article": true,
	"num": true, "numeral": true,
	"aux": true, "modal": true,
	"phrasal": true, "idiom": true, "phrase": true,
}

// splitKey separates a trailing type tag from the spelling. The tag is
// only stripped when it is a known part of speech or equals pos.
func splitKey(key, pos string) (spelling, tag string) {
	i := strings.LastIndexByte(key, '_')
	if i < 0 {
		return key, ""
	}
	suffix := strings.ToLower(strings.TrimSpace(key[i+1:]))
	if suffix == "" {
		return key, ""
	}
	if posTags[suffix] || (pos != "" && strings.EqualFold(suffix, pos)) {
		return key[:i], suffix
	}
	return key, ""
}

// entryFromRecord validates a record and converts it to an Entry.
func entryFromRecord(cat Category, idx int, rec RawRecord) (Entry, error) {
	if rec.Invalid != "" {
		return Entry{}, &MalformedEntryError{Category: cat, Index: idx, Key: rec.Key, Reason: rec.Invalid}
	}
	if strings.TrimSpace(rec.Key) == "" {
		return Entry{}, &MalformedEntryError{Category: cat, Index: idx, Key: rec.Key, Reason: "missing spelling key"}
	}

	meta := Metadata{
		PartOfSpeech:        strings.TrimSpace(rec.Fields.PartOfSpeech),
		Level:               strings.TrimSpace(rec.Fields.Level),
		Translation:         strings.TrimSpace(rec.Fields.Translation),
		BaseForm:            strings.TrimSpace(rec.Fields.BaseForm),
		BaseFormTranslation: strings.TrimSpace(rec.Fields.BaseFormTranslation),
	}

	spelling, tag := splitKey(rec.Key, meta.PartOfSpeech)
	if meta.PartOfSpeech == "" {
		meta.PartOfSpeech = tag
	}

	pattern := Normalize(spelling)
	if pattern == "" {
		return Entry{}, &MalformedEntryError{Category: cat, Index: idx, Key: rec.Key, Reason: "empty pattern after normalization"}
	}

	return Entry{
		Pattern:  pattern,
		Display:  strings.Join(strings.Fields(spelling), " "),
		Category: cat,
		Meta:     meta,
	}, nil
}
