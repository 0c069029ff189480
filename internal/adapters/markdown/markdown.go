// Package markdown implements ports.MarkupConverter with goldmark, so
// Markdown input can go through the HTML tree splicer. Code blocks and code
// spans come out as <pre>/<code>, which the splicer never annotates.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/corey/glossa/internal/ports"
)

var _ ports.MarkupConverter = (*Converter)(nil)

// Converter renders Markdown to HTML. Raw HTML in the source is dropped by
// goldmark's default renderer.
type Converter struct {
	md goldmark.Markdown
}

// New returns a converter with GitHub-flavoured tables, strikethrough and
// autolinks enabled.
func New() *Converter {
	return &Converter{md: goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)}
}

// Convert implements ports.MarkupConverter.
func (c *Converter) Convert(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("goldmark: %w", err)
	}
	return buf.String(), nil
}
