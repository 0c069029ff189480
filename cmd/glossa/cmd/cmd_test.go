package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/glossa/internal/adapters/dictfile"
	"github.com/corey/glossa/internal/domain/annotate"
)

// =============================================================================
// CLI commands
// Expectation: annotate, lookup and dict work end to end against a
// temporary project root, without a running server.
// =============================================================================

const testWords = `{
	"read": {"pos": "verb", "translation": "читать"},
	"books": {"pos": "noun", "translation": "книги"},
	"bank_noun": {"translation": "банк"},
	"bank_noun": {"translation": "берег"}
}`

const testPhrases = `{"good morning": {"pos": "phrase", "translation": "доброе утро"}}`

type project struct {
	root, words, phrases string
}

func newProject(t *testing.T) project {
	t.Helper()
	t.Setenv("GLOSSA_CONFIG", "")
	t.Setenv("GLOSSA_LOG_LEVEL", "error")
	root := t.TempDir()
	p := project{
		root:    root,
		words:   filepath.Join(root, "words.json"),
		phrases: filepath.Join(root, "phrases.json"),
	}
	require.NoError(t, os.WriteFile(p.words, []byte(testWords), 0644))
	require.NoError(t, os.WriteFile(p.phrases, []byte(testPhrases), 0644))
	return p
}

// run executes the root command with fresh flag state.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	configPath, rootDir = "", ""
	annotateFormat, annotateOutput, annotateWords, annotatePhrases = "", "markup", "", ""
	annotateNested, annotateParagraphs, annotateColor = false, false, "never"
	lookupWords, lookupPhrases, lookupJSON = "", "", false
	dictExportOut, dictJSON, configEnv = "", false, false

	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAnnotateCmd_StdinMarkup(t *testing.T) {
	p := newProject(t)
	out, err := run(t, "I read books daily", "--root", p.root, "annotate", "--words", p.words)
	require.NoError(t, err)
	assert.Equal(t,
		`I <span class="glossa-word" data-pos="verb" data-translation="читать">read</span> `+
			`<span class="glossa-word" data-pos="noun" data-translation="книги">books</span> daily`+"\n",
		out)
}

func TestAnnotateCmd_FileJSON(t *testing.T) {
	p := newProject(t)
	in := filepath.Join(p.root, "page.html")
	require.NoError(t, os.WriteFile(in, []byte("<p>Good morning, I read</p>"), 0644))

	out, err := run(t, "", "--root", p.root, "annotate", in, "-o", "json", "--words", p.words, "--phrases", p.phrases)
	require.NoError(t, err)

	var got struct {
		Text  string `json:"text"`
		Spans []struct {
			Start   int    `json:"start"`
			End     int    `json:"end"`
			Surface string `json:"surface"`
		} `json:"spans"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Good morning, I read\n", got.Text)
	require.Len(t, got.Spans, 2)
	assert.Equal(t, "Good morning", got.Spans[0].Surface)
	assert.Equal(t, 16, got.Spans[1].Start)
}

func TestAnnotateCmd_TerminalAndParagraphs(t *testing.T) {
	p := newProject(t)
	out, err := run(t, "the bank\n\nread", "--root", p.root, "annotate", "-o", "term", "--paragraphs", "--words", p.words)
	require.NoError(t, err)
	assert.Contains(t, out, "the [bank]\n")
	assert.Contains(t, out, "1. банк")
	assert.Contains(t, out, "2. берег")
	assert.Contains(t, out, "[read]\n")
	assert.Equal(t, 2, strings.Count(out, "1 matches"))
}

func TestAnnotateCmd_ParagraphsKeepSeparators(t *testing.T) {
	p := newProject(t)
	in := "read\n \t\n\nbooks\n\t\nplain"
	out, err := run(t, in, "--root", p.root, "annotate", "--paragraphs", "--words", p.words)
	require.NoError(t, err)
	assert.Equal(t,
		`<span class="glossa-word" data-pos="verb" data-translation="читать">read</span>`+"\n \t\n\n"+
			`<span class="glossa-word" data-pos="noun" data-translation="книги">books</span>`+"\n\t\nplain\n",
		out)

	html := filepath.Join(p.root, "page.html")
	require.NoError(t, os.WriteFile(html, []byte("<p>read</p>\n\n<p>books</p>"), 0644))
	_, err = run(t, "", "--root", p.root, "annotate", "--paragraphs", "--words", p.words, html)
	assert.ErrorContains(t, err, "--paragraphs")
}

func TestSplitParagraphs(t *testing.T) {
	for _, in := range []string{"", "one", "a\n\nb", "a\n  \n\n\nb\n\n", "\n\nlead"} {
		chunks, seps := splitParagraphs(in)
		require.Len(t, seps, len(chunks)-1, "%q", in)
		var b strings.Builder
		for i, c := range chunks {
			if i > 0 {
				b.WriteString(seps[i-1])
			}
			b.WriteString(c)
		}
		assert.Equal(t, in, b.String())
	}
}

func TestAnnotateCmd_Errors(t *testing.T) {
	p := newProject(t)
	_, err := run(t, "x", "--root", p.root, "annotate", "-o", "pdf", "--words", p.words)
	assert.Error(t, err)

	_, err = run(t, "x", "--root", p.root, "annotate", "-f", "rtf", "--words", p.words)
	assert.Error(t, err)

	_, err = run(t, "", "--root", p.root, "annotate", filepath.Join(p.root, "missing.txt"), "--words", p.words)
	assert.Error(t, err)
}

func TestLookupCmd(t *testing.T) {
	p := newProject(t)
	out, err := run(t, "", "--root", p.root, "lookup", "Bank", "--words", p.words)
	require.NoError(t, err)
	assert.Contains(t, out, "2 senses")
	assert.Contains(t, out, "2. берег")

	out, err = run(t, "", "--root", p.root, "lookup", "good", "MORNING", "--phrases", p.phrases)
	require.NoError(t, err)
	assert.Contains(t, out, "доброе утро")

	_, err = run(t, "", "--root", p.root, "lookup", "banking", "--words", p.words)
	assert.Error(t, err)
}

func TestDictCmd_ImportStatsExportDrop(t *testing.T) {
	p := newProject(t)

	out, err := run(t, "", "--root", p.root, "dict", "import", "words", p.words)
	require.NoError(t, err)
	assert.Contains(t, out, "4 word records (3 entries)")

	out, err = run(t, "", "--root", p.root, "dict", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "4 records")

	// Store-backed lookup and annotate, no --words needed.
	out, err = run(t, "", "--root", p.root, "lookup", "bank")
	require.NoError(t, err)
	assert.Contains(t, out, "берег")

	out, err = run(t, "", "--root", p.root, "dict", "export", "words")
	require.NoError(t, err)
	recs, err := dictfile.Decode([]byte(out))
	require.NoError(t, err)
	assert.Len(t, recs, 4)

	exported := filepath.Join(p.root, "out.json")
	_, err = run(t, "", "--root", p.root, "dict", "export", "words", "-O", exported)
	require.NoError(t, err)
	_, err = os.Stat(exported)
	require.NoError(t, err)

	out, err = run(t, "", "--root", p.root, "dict", "drop", "words")
	require.NoError(t, err)
	assert.Contains(t, out, "dropped word dictionary")

	out, err = run(t, "", "--root", p.root, "dict", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "none stored")

	_, err = run(t, "", "--root", p.root, "dict", "import", "verbs", p.words)
	assert.Error(t, err)
}

func TestConfigCmd(t *testing.T) {
	p := newProject(t)
	out, err := run(t, "", "--root", p.root, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "store (")
	assert.Contains(t, out, "not running")

	out, err = run(t, "", "config", "--env")
	require.NoError(t, err)
	assert.Contains(t, out, "GLOSSA_WORDS_PATH")
}

func TestInputFormat(t *testing.T) {
	cases := map[string]annotate.Format{
		"page.HTML": annotate.FormatHTML,
		"notes.md":  annotate.FormatMarkdown,
		"a.txt":     annotate.FormatText,
		"":          annotate.FormatText,
	}
	for name, want := range cases {
		got, err := inputFormat("", name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
	got, err := inputFormat("html", "notes.md")
	require.NoError(t, err)
	assert.Equal(t, annotate.FormatHTML, got, "flag wins over extension")
}
