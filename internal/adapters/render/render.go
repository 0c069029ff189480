// Package render implements ports.Renderer for the command line: a JSON
// span dump and an ANSI-highlighted terminal view.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/corey/glossa/internal/domain/lexicon"
	"github.com/corey/glossa/internal/domain/resolve"
	"github.com/corey/glossa/internal/domain/splice"
	"github.com/corey/glossa/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorCyan    = "\033[36m"
	colorMagenta = "\033[35m"
	colorYellow  = "\033[33m"
	colorGray    = "\033[90m"
)

var (
	_ ports.Renderer = JSON{}
	_ ports.Renderer = Terminal{}
)

// JSON writes {"text": ..., "spans": [...]}.
type JSON struct {
	Indent bool
}

// Render implements ports.Renderer.
func (j JSON) Render(w io.Writer, text string, spans []resolve.Span) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if j.Indent {
		enc.SetIndent("", "  ")
	}
	if spans == nil {
		spans = []resolve.Span{}
	}
	return enc.Encode(struct {
		Text  string         `json:"text"`
		Spans []resolve.Span `json:"spans"`
	}{text, spans})
}

// Terminal highlights matches in place (phrases magenta, words cyan,
// homonyms yellow) and lists each match with its senses underneath.
type Terminal struct {
	NoColor bool
}

// ansiMarker is a splice.Marker emitting color codes instead of markup.
type ansiMarker struct{}

func (ansiMarker) Open(g splice.Group, _ int) string {
	switch {
	case len(g.Senses) > 1:
		return colorYellow
	case g.Category == lexicon.Phrase:
		return colorMagenta
	default:
		return colorCyan
	}
}

func (ansiMarker) Close(splice.Group, int) string { return colorReset }

func (ansiMarker) Element(splice.Group, int) *html.Node { return nil }

func (ansiMarker) Owns(string, []html.Attribute) bool { return false }

// bracketMarker marks matches without color.
type bracketMarker struct{ ansiMarker }

func (bracketMarker) Open(splice.Group, int) string  { return "[" }
func (bracketMarker) Close(splice.Group, int) string { return "]" }

// Render implements ports.Renderer.
func (t Terminal) Render(w io.Writer, text string, spans []resolve.Span) error {
	var m splice.Marker = ansiMarker{}
	bold, gray, reset := colorBold, colorGray, colorReset
	if t.NoColor {
		m = bracketMarker{}
		bold, gray, reset = "", "", ""
	}

	var sb strings.Builder
	sb.WriteString(splice.Text(text, spans, m, splice.Options{}))
	if !strings.HasSuffix(text, "\n") {
		sb.WriteByte('\n')
	}

	groups := splice.Groups(spans)
	sb.WriteString(fmt.Sprintf("\n%s%d matches%s\n", bold, len(groups), reset))
	for _, g := range groups {
		sb.WriteString(fmt.Sprintf("  %s%d-%d%s %s %s(%s)%s\n", gray, g.Start, g.End, reset, g.Surface, gray, g.Category, reset))
		for i, s := range g.Senses {
			sb.WriteString("    ")
			if len(g.Senses) > 1 {
				sb.WriteString(fmt.Sprintf("%d. ", i+1))
			}
			sb.WriteString(Describe(s))
			sb.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// Describe formats one sense: "translation  [pos, level]  ← base (base translation)".
func Describe(m lexicon.Metadata) string {
	var parts []string
	if m.Translation != "" {
		parts = append(parts, m.Translation)
	} else {
		parts = append(parts, "—")
	}
	var tags []string
	for _, s := range []string{m.PartOfSpeech, m.Level} {
		if s != "" {
			tags = append(tags, s)
		}
	}
	if len(tags) > 0 {
		parts = append(parts, "["+strings.Join(tags, ", ")+"]")
	}
	if m.BaseForm != "" {
		base := "← " + m.BaseForm
		if m.BaseFormTranslation != "" {
			base += " (" + m.BaseFormTranslation + ")"
		}
		parts = append(parts, base)
	}
	return strings.Join(parts, "  ")
}
