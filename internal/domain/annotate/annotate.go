package annotate

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/corey/glossa/internal/domain/resolve"
	"github.com/corey/glossa/internal/domain/splice"
	"github.com/corey/glossa/internal/ports"
)

// Format is the shape of the input text.
type Format int

const (
	// FormatText is plain text; markers are spliced into the string.
	FormatText Format = iota
	// FormatHTML is an HTML fragment; markers are spliced into its tree.
	FormatHTML
	// FormatMarkdown is converted to HTML first and then handled as HTML.
	FormatMarkdown
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatHTML:
		return "html"
	case FormatMarkdown:
		return "markdown"
	default:
		return "unknown"
	}
}

// MarshalText encodes the format by name.
func (f Format) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText decodes a format name.
func (f *Format) UnmarshalText(b []byte) error {
	v, err := ParseFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// ParseFormat parses "text", "html" or "markdown". Empty means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt", "plain":
		return FormatText, nil
	case "html", "htm":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return 0, fmt.Errorf("unknown format %q (want text, html or markdown)", s)
	}
}

// Options controls one annotation call.
type Options struct {
	Format    Format
	Marker    splice.Marker // nil means splice.HTMLMarker{}
	Splice    splice.Options
	MaxInput  int // bytes; zero means unlimited
	Sanitizer ports.Sanitizer
	Converter ports.MarkupConverter // required for FormatMarkdown
}

func (o Options) marker() splice.Marker {
	if o.Marker == nil {
		return splice.HTMLMarker{}
	}
	return o.Marker
}

// Document is the result of annotating one input.
type Document struct {
	ID      uuid.UUID      `json:"id"`
	Format  Format         `json:"format"`
	Text    string         `json:"text"` // the text spans index into
	Output  string         `json:"output"`
	Spans   []resolve.Span `json:"spans"`
	Applied int            `json:"applied"` // span groups actually spliced
	Elapsed time.Duration  `json:"elapsed"`
}

// Annotate scans text with the two automata and splices markers around
// every resolved span. Either automaton may be nil.
func Annotate(text string, phrases, words *resolve.Automaton, opts Options) (*Document, error) {
	start := time.Now()
	if opts.MaxInput > 0 && len(text) > opts.MaxInput {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", resolve.ErrInputTooLarge, len(text), opts.MaxInput)
	}
	r := resolve.New(phrases, words, resolve.WithMaxInput(opts.MaxInput))
	doc := &Document{ID: uuid.New(), Format: opts.Format}

	var err error
	switch opts.Format {
	case FormatText:
		err = annotateText(doc, text, r, opts)
	case FormatHTML:
		err = annotateHTML(doc, text, r, opts)
	case FormatMarkdown:
		if opts.Converter == nil {
			return nil, fmt.Errorf("markdown input: no converter configured")
		}
		var markup string
		markup, err = opts.Converter.Convert([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("convert markdown: %w", err)
		}
		err = annotateHTML(doc, markup, r, opts)
	default:
		return nil, fmt.Errorf("unknown format %d", opts.Format)
	}
	if err != nil {
		return nil, err
	}

	if opts.Sanitizer != nil && opts.Format != FormatText {
		doc.Output, err = opts.Sanitizer.Sanitize(doc.Output)
		if err != nil {
			return nil, fmt.Errorf("sanitize: %w", err)
		}
	}
	doc.Elapsed = time.Since(start)
	return doc, nil
}

func annotateText(doc *Document, text string, r *resolve.Resolver, opts Options) error {
	spans, err := r.Resolve(text)
	if err != nil {
		return err
	}
	doc.Text = text
	doc.Spans = spans
	doc.Output = splice.Text(text, spans, opts.marker(), opts.Splice)
	doc.Applied = len(splice.Plan(splice.Groups(spans), utf8.RuneCountInString(text)))
	return nil
}

func annotateHTML(doc *Document, markup string, r *resolve.Resolver, opts Options) error {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}

	m := opts.marker()
	text := splice.TreeText(root, m)
	spans, err := r.Resolve(text)
	if err != nil {
		return err
	}
	doc.Text = text
	doc.Spans = spans
	doc.Applied = splice.Tree(root, spans, m, opts.Splice)

	var b strings.Builder
	for n := root.FirstChild; n != nil; n = n.NextSibling {
		if err := html.Render(&b, n); err != nil {
			return fmt.Errorf("render html: %w", err)
		}
	}
	doc.Output = b.String()
	return nil
}
