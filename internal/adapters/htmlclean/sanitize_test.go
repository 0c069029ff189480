package htmlclean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// HTML sanitizer
// Expectation: active content is gone, annotation spans and text survive.
// =============================================================================

func TestSanitize_KeepsAnnotations(t *testing.T) {
	in := `<p>I <span class="glossa-word" data-translation="читать">read</span> books</p>`
	out, err := Sanitizer{}.Sanitize(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSanitize_DropsActiveContent(t *testing.T) {
	out, err := Sanitizer{}.Sanitize(
		`<script>alert(1)</script><p onclick="x()">hi<iframe src="//evil"></iframe><!-- c --></p>` +
			`<a href=" javascript:alert(1)">a</a><a href="https://ok.example/">b</a>` +
			`<img src="data:text/html,x"><img src="data:image/png;base64,AA==">`)
	require.NoError(t, err)
	assert.Equal(t,
		`<p>hi</p><a>a</a><a href="https://ok.example/">b</a><img/><img src="data:image/png;base64,AA=="/>`,
		out)
}

func TestSanitize_PlainText(t *testing.T) {
	out, err := Sanitizer{}.Sanitize("a & b")
	require.NoError(t, err)
	assert.Equal(t, "a &amp; b", out)
}
