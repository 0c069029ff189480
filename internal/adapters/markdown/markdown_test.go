package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/glossa/internal/domain/annotate"
	"github.com/corey/glossa/internal/domain/lexicon"
)

// =============================================================================
// Markdown converter
// Expectation: Markdown becomes HTML the tree splicer can annotate, with
// code left alone.
// =============================================================================

func TestConvert_Basics(t *testing.T) {
	out, err := New().Convert([]byte("# Title\n\nSome *books* here.\n"))
	require.NoError(t, err)
	assert.Contains(t, out, `<h1 id="title">Title</h1>`)
	assert.Contains(t, out, `<p>Some <em>books</em> here.</p>`)
}

func TestConvert_DropsRawHTML(t *testing.T) {
	out, err := New().Convert([]byte("hello <script>alert(1)</script>\n"))
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
}

type words map[lexicon.Category][]lexicon.RawRecord

func (w words) Records(cat lexicon.Category) ([]lexicon.RawRecord, error) { return w[cat], nil }

func TestConvert_AnnotatesOutsideCode(t *testing.T) {
	e := annotate.NewEngine(annotate.Options{Converter: New()}, nil)
	_, err := e.Reload(words{lexicon.Word: {{Key: "books", Fields: lexicon.RecordFields{Translation: "книги"}}}})
	require.NoError(t, err)

	doc, err := e.Annotate("I read books.\n\n```\nbooks\n```\n\nand `books` too\n", annotate.FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Applied)
	assert.Contains(t, doc.Output, `<span class="glossa-word" data-translation="книги">books</span>.`)
	assert.Contains(t, doc.Output, "<pre><code>books\n</code></pre>")
	assert.Contains(t, doc.Output, "<code>books</code>")
}
