package app

import (
	"bytes"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/glossa/internal/adapters/bbolt"
	"github.com/corey/glossa/internal/adapters/dictfile"
	"github.com/corey/glossa/internal/config"
	"github.com/corey/glossa/internal/domain/annotate"
	"github.com/corey/glossa/internal/domain/lexicon"
)

// =============================================================================
// App lifecycle
// Expectation: New loads dictionaries from files or the store, Start serves
// them over HTTP, and a dictionary edit is picked up by the watcher.
// =============================================================================

const wordsJSON = `{
	"read": {"pos": "verb", "translation": "читать"},
	"books": {"pos": "noun", "translation": "книги"},
	"bank_noun": {"translation": "банк"},
	"bank_noun": {"translation": "берег"}
}`

const phrasesJSON = `{"good morning": {"translation": "доброе утро"}}`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		Annotate: config.AnnotateConfig{MaxInputBytes: 1 << 20, ClassPrefix: "glossa", Sanitize: true},
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			ShutdownTimeout: time.Second,
		},
		Dictionary: config.DictionaryConfig{WatchSettle: 20 * time.Millisecond},
		Log:        config.LogConfig{Level: "info", Format: "text"},
	}
}

func writeDict(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newFileApp(t *testing.T, watch bool) (*App, string) {
	t.Helper()
	root := t.TempDir()
	cfg := testConfig()
	cfg.Dictionary.WordsPath = writeDict(t, root, "words.json", wordsJSON)
	cfg.Dictionary.PhrasesPath = writeDict(t, root, "phrases.json", phrasesJSON)
	cfg.Dictionary.Watch = watch

	a, err := New(Options{ProjectRoot: root, Config: cfg, Logger: quietLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { a.Stop() })
	return a, cfg.Dictionary.WordsPath
}

func TestNew_RequiresRootAndConfig(t *testing.T) {
	_, err := New(Options{Config: testConfig()})
	assert.Error(t, err)
	_, err = New(Options{ProjectRoot: t.TempDir()})
	assert.Error(t, err)
}

func TestNew_LoadsFromFiles(t *testing.T) {
	a, _ := newFileApp(t, false)
	assert.Nil(t, a.Store)

	st := a.Engine.Snapshot().Stats()
	assert.Equal(t, uint64(1), st.Generation)
	assert.Equal(t, 1, st.Counts.Phrases)
	assert.Equal(t, 3, st.Counts.Words)

	doc, err := a.Engine.Annotate("Good morning! I read books.", annotate.FormatText)
	require.NoError(t, err)
	assert.Len(t, doc.Spans, 3)
}

func TestNew_BadRecordIsSkipped(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig()
	cfg.Dictionary.WordsPath = writeDict(t, root, "words.json", `{
		"read": {"pos": "verb", "level": 1},
		"dog": 5,
		"books": {"pos": "noun"}
	}`)

	a, err := New(Options{ProjectRoot: root, Config: cfg, Logger: quietLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { a.Stop() })

	snap := a.Engine.Snapshot()
	require.Len(t, snap.Skipped, 1)
	assert.ErrorIs(t, snap.Skipped[0], lexicon.ErrMalformedEntry)
	assert.Contains(t, snap.Skipped[0].Error(), `"dog"`)

	doc, err := a.Engine.Annotate("I read books", annotate.FormatText)
	require.NoError(t, err)
	assert.Len(t, doc.Spans, 2)
}

func TestNew_MissingFileFails(t *testing.T) {
	cfg := testConfig()
	cfg.Dictionary.WordsPath = filepath.Join(t.TempDir(), "nope.json")
	_, err := New(Options{ProjectRoot: t.TempDir(), Config: cfg, Logger: quietLogger()})
	assert.Error(t, err)
}

func TestNew_LoadsFromStore(t *testing.T) {
	root := t.TempDir()
	paths := NewPaths(root)
	require.NoError(t, paths.EnsureDirs())

	store, err := bbolt.NewStore(paths.DB)
	require.NoError(t, err)
	_, err = ImportFile(store, lexicon.Word, writeDict(t, root, "words.json", wordsJSON))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	a, err := New(Options{ProjectRoot: root, Config: testConfig(), Logger: quietLogger()})
	require.NoError(t, err)
	defer a.Stop()

	require.NotNil(t, a.Store)
	assert.Equal(t, 3, a.Engine.Snapshot().Stats().Counts.Words)
	assert.Len(t, a.Engine.Lookup("bank"), 1)
}

func TestEngineOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Annotate.ClassPrefix = "lex"
	cfg.Annotate.NestedSenses = true
	cfg.Annotate.Sanitize = false

	opts := EngineOptions(cfg)
	assert.True(t, opts.Splice.Nested)
	assert.Nil(t, opts.Sanitizer)
	assert.NotNil(t, opts.Converter)
	assert.Equal(t, 1<<20, opts.MaxInput)

	e := annotate.NewEngine(opts, quietLogger())
	_, err := e.Reload(dictfile.Source{Words: writeDict(t, t.TempDir(), "w.json", wordsJSON)})
	require.NoError(t, err)
	doc, err := e.Annotate("read", annotate.FormatText)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc.Output, `<span class="lex-word"`))
}

func TestApp_StartServesAndStopCleans(t *testing.T) {
	a, _ := newFileApp(t, false)
	require.NoError(t, a.Start())

	port := a.WebServer.Port()
	data, err := os.ReadFile(a.Paths.PortFile)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(port), string(data))
	_, err = os.Stat(a.Paths.PIDFile)
	require.NoError(t, err)

	resp, err := http.Get(a.WebServer.URL() + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
	assert.Greater(t, a.Uptime(), time.Duration(0))

	require.NoError(t, a.Stop())
	_, err = os.Stat(a.Paths.PortFile)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(a.Paths.PIDFile)
	assert.True(t, os.IsNotExist(err))
}

func TestApp_WatcherReloadsOnEdit(t *testing.T) {
	a, words := newFileApp(t, true)
	require.NoError(t, a.Start())
	require.NotNil(t, a.Watcher)
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(words, []byte(`{"daily": {"pos": "adv"}}`), 0644))

	require.Eventually(t, func() bool {
		return a.Engine.Snapshot().Generation >= 2
	}, 3*time.Second, 20*time.Millisecond)

	doc, err := a.Engine.Annotate("I read books daily", annotate.FormatText)
	require.NoError(t, err)
	require.Len(t, doc.Spans, 1)
	assert.Equal(t, "daily", doc.Spans[0].Surface)
}

func TestApp_BrokenEditKeepsPreviousDictionary(t *testing.T) {
	a, words := newFileApp(t, false)
	first := a.Engine.Snapshot()

	require.NoError(t, os.WriteFile(words, []byte(`{"broken": `), 0644))
	a.onDictionaryChanged(words)

	assert.Same(t, first, a.Engine.Snapshot())
}

// =============================================================================
// Dictionary import/export
// =============================================================================

func TestImportExport_RoundTrip(t *testing.T) {
	root := t.TempDir()
	store, err := bbolt.NewStore(filepath.Join(root, "g.db"))
	require.NoError(t, err)
	defer store.Close()

	path := writeDict(t, root, "words.json", `{"read": {"pos": "verb"}, "": {"translation": "x"}, "bank_noun": {}, "bank_noun": {"translation": "берег"}}`)
	res, err := ImportFile(store, lexicon.Word, path)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Records)
	assert.Equal(t, 2, res.Groups)
	require.Len(t, res.Skipped, 1)
	assert.ErrorIs(t, res.Skipped[0], lexicon.ErrMalformedEntry)

	cats, err := store.Categories()
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, res.Source, cats[0].Source)

	var buf bytes.Buffer
	n, err := ExportCategory(store, lexicon.Word, &buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	back, err := dictfile.Decode(buf.Bytes())
	require.NoError(t, err)
	stored, err := store.Records(lexicon.Word)
	require.NoError(t, err)
	assert.Equal(t, stored, back)
}

func TestImportFile_MissingFile(t *testing.T) {
	store, err := bbolt.NewStore(filepath.Join(t.TempDir(), "g.db"))
	require.NoError(t, err)
	defer store.Close()

	_, err = ImportFile(store, lexicon.Phrase, filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
