package dictfile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/glossa/internal/domain/lexicon"
)

// =============================================================================
// JSON dictionary files
// Expectation: both shapes decode in file order, repeated keys survive, and
// Write output loads back to the same records.
// =============================================================================

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDecode_ObjectKeepsOrderAndDuplicates(t *testing.T) {
	recs, err := Decode([]byte(`{
		"bank_noun": {"pos": "noun", "translation": "банк"},
		"read": {"type": "verb", "cefr": "A1", "translation": "читать"},
		"bank_noun": {"translation": "берег"},
		"went": "пошёл",
		"empty": null
	}`))
	require.NoError(t, err)
	require.Len(t, recs, 5)

	assert.Equal(t, "bank_noun", recs[0].Key)
	assert.Equal(t, "банк", recs[0].Fields.Translation)
	assert.Equal(t, lexicon.RecordFields{PartOfSpeech: "verb", Level: "A1", Translation: "читать"}, recs[1].Fields)
	assert.Equal(t, "bank_noun", recs[2].Key)
	assert.Equal(t, "берег", recs[2].Fields.Translation)
	assert.Equal(t, "пошёл", recs[3].Fields.Translation)
	assert.Equal(t, lexicon.RecordFields{}, recs[4].Fields)
}

func TestDecode_ArrayForm(t *testing.T) {
	recs, err := Decode([]byte(`[
		{"word": "bank", "pos": "noun"},
		{"phrase": "good morning", "translation": "доброе утро"},
		{"key": "ice_cream"},
		{"translation": "no key"}
	]`))
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, "bank", recs[0].Key)
	assert.Equal(t, "noun", recs[0].Fields.PartOfSpeech)
	assert.Equal(t, "good morning", recs[1].Key)
	assert.Equal(t, "ice_cream", recs[2].Key)
	assert.Equal(t, "", recs[3].Key, "missing key is left for the index to reject")
}

func TestDecode_MissingKeyBecomesMalformedEntry(t *testing.T) {
	recs, err := Decode([]byte(`[{"translation": "orphan"}, {"word": "ok"}]`))
	require.NoError(t, err)

	_, errs := lexicon.Load(lexicon.Word, recs)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], lexicon.ErrMalformedEntry)
}

func TestDecode_BadRecordDoesNotFailFile(t *testing.T) {
	recs, err := Decode([]byte(`{
		"cat": {"translation": "кот"},
		"dog": 5,
		"fox": {"pos": ["noun"]},
		"bird": {"level": 2, "translation": "птица"}
	}`))
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Empty(t, recs[0].Invalid)
	assert.Equal(t, "dog", recs[1].Key)
	assert.NotEmpty(t, recs[1].Invalid)
	assert.Equal(t, "fox", recs[2].Key)
	assert.NotEmpty(t, recs[2].Invalid)
	assert.Empty(t, recs[3].Invalid)
	assert.Equal(t, "2", recs[3].Fields.Level, "numeric level is accepted")

	idx, errs := lexicon.Load(lexicon.Word, recs)
	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs[0], lexicon.ErrMalformedEntry)
	assert.ErrorIs(t, errs[1], lexicon.ErrMalformedEntry)
	assert.Equal(t, 2, idx.Build().Counts().Words)
}

func TestDecode_ArrayBadElementDoesNotFailFile(t *testing.T) {
	recs, err := Decode([]byte(`[{"word": "cat"}, "oops", {"word": "bird"}, {"word": "dog", "translation": true}]`))
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, "cat", recs[0].Key)
	assert.NotEmpty(t, recs[1].Invalid)
	assert.Equal(t, "bird", recs[2].Key)
	assert.Empty(t, recs[2].Invalid)
	assert.Equal(t, "dog", recs[3].Key)
	assert.NotEmpty(t, recs[3].Invalid)
}

func TestDecode_Errors(t *testing.T) {
	for name, in := range map[string]string{
		"scalar":    `42`,
		"truncated": `{"a": {"pos": "noun"}`,
		"syntax":    `{"a": {"pos": }}`,
		"unclosed":  `[{"word": "a"}`,
	} {
		_, err := Decode([]byte(in))
		assert.Error(t, err, name)
	}

	recs, err := Decode([]byte("  \n"))
	require.NoError(t, err)
	assert.Nil(t, recs)
}

func TestLoad_MappedFile(t *testing.T) {
	path := writeFile(t, "words.json", `{"read": {"pos": "verb"}, "books": {"pos": "noun"}}`)
	recs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "books", recs[1].Key)
}

func TestLoad_EmptyAndMissingFiles(t *testing.T) {
	recs, err := Load(writeFile(t, "empty.json", ""))
	require.NoError(t, err)
	assert.Nil(t, recs)

	_, err = Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoad_ErrorNamesFile(t *testing.T) {
	path := writeFile(t, "broken.json", `{"a": `)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.json")
}

func TestSource_PerCategoryFiles(t *testing.T) {
	src := Source{
		Phrases: writeFile(t, "phrases.json", `{"good morning": {}}`),
	}
	phrases, err := src.Records(lexicon.Phrase)
	require.NoError(t, err)
	assert.Len(t, phrases, 1)

	words, err := src.Records(lexicon.Word)
	require.NoError(t, err)
	assert.Nil(t, words)
	assert.Equal(t, []string{src.Phrases}, src.Paths())
}

func TestWrite_RoundTrip(t *testing.T) {
	in := []lexicon.RawRecord{
		{Key: "bank_noun", Fields: lexicon.RecordFields{PartOfSpeech: "noun", Translation: "банк"}},
		{Key: "bank_noun", Fields: lexicon.RecordFields{Translation: "берег"}},
		{Key: "bare"},
		{Key: "dog", Invalid: "want string or number, got true"},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, in))
	assert.Contains(t, buf.String(), `{"key":"bare"}`)

	out, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}
