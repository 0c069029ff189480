package splice

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Marker renders the wrapper placed around one sense of a group.
type Marker interface {
	// Open returns the opening markup for a flat splice.
	Open(g Group, sense int) string
	// Close returns the matching closing markup.
	Close(g Group, sense int) string
	// Element returns an empty wrapper element for a tree splice.
	Element(g Group, sense int) *html.Node
	// Owns reports whether an element was produced by this marker.
	Owns(tag string, attrs []html.Attribute) bool
}

// DefaultClassPrefix is used when HTMLMarker.ClassPrefix is empty.
const DefaultClassPrefix = "glossa"

// HTMLMarker wraps spans in <span> elements carrying the sense metadata as
// data attributes.
type HTMLMarker struct {
	ClassPrefix string
}

func (m HTMLMarker) prefix() string {
	if m.ClassPrefix == "" {
		return DefaultClassPrefix
	}
	return m.ClassPrefix
}

func (m HTMLMarker) attrs(g Group, sense int) []html.Attribute {
	meta := g.Senses[sense]
	out := []html.Attribute{{Key: "class", Val: m.prefix() + "-" + g.Category.String()}}
	add := func(k, v string) {
		if v != "" {
			out = append(out, html.Attribute{Key: k, Val: v})
		}
	}
	add("data-pos", meta.PartOfSpeech)
	add("data-level", meta.Level)
	add("data-translation", meta.Translation)
	add("data-base", meta.BaseForm)
	add("data-base-translation", meta.BaseFormTranslation)
	if len(g.Senses) > 1 {
		add("data-sense", strconv.Itoa(sense))
		add("data-senses", strconv.Itoa(len(g.Senses)))
	}
	return out
}

// Open implements Marker. Attribute values are escaped; nothing else is.
func (m HTMLMarker) Open(g Group, sense int) string {
	var b strings.Builder
	b.WriteString("<span")
	for _, a := range m.attrs(g, sense) {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Val))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	return b.String()
}

// Close implements Marker.
func (HTMLMarker) Close(Group, int) string { return "</span>" }

// Element implements Marker.
func (m HTMLMarker) Element(g Group, sense int) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr:     m.attrs(g, sense),
	}
}

// Owns implements Marker.
func (m HTMLMarker) Owns(tag string, attrs []html.Attribute) bool {
	if tag != "span" {
		return false
	}
	p := m.prefix() + "-"
	for _, a := range attrs {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == p+"phrase" || c == p+"word" {
				return true
			}
		}
	}
	return false
}
