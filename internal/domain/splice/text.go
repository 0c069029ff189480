package splice

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/corey/glossa/internal/domain/resolve"
)

// Text returns text with every spliceable group wrapped by marker. Offsets
// are rune offsets into text. Text content is copied through unchanged.
func Text(text string, spans []resolve.Span, marker Marker, opts Options) string {
	if len(spans) == 0 {
		return text
	}
	runes := []rune(text)
	chosen := Plan(Groups(spans), len(runes))
	if len(chosen) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + len(chosen)*64)
	pos := 0
	// chosen is highest first; emit front to back.
	for i := len(chosen) - 1; i >= 0; i-- {
		g := chosen[i]
		b.WriteString(string(runes[pos:g.Start]))
		senses := opts.senses(g)
		for _, s := range senses {
			b.WriteString(marker.Open(g, s))
		}
		b.WriteString(string(runes[g.Start:g.End]))
		for j := len(senses) - 1; j >= 0; j-- {
			b.WriteString(marker.Close(g, senses[j]))
		}
		pos = g.End
	}
	b.WriteString(string(runes[pos:]))
	return b.String()
}

// Strip removes the elements marker owns from annotated output, keeping
// their content. Everything else is copied byte for byte.
//
// Tags are recognized one '<' at a time, so "<!--" or "<script>" in plain
// text never hides a later marker. A marker only wraps text or other
// markers: the first end tag after an owned start tag is its close.
func Strip(annotated string, marker Marker) string {
	var b strings.Builder
	b.Grow(len(annotated))
	depth := 0
	rest := annotated
	for {
		i := strings.IndexByte(rest, '<')
		if i < 0 {
			b.WriteString(rest)
			return b.String()
		}
		b.WriteString(rest[:i])
		rest = rest[i:]
		if n, open := ownedTag(rest, marker, depth > 0); n > 0 {
			if open {
				depth++
			} else {
				depth--
			}
			rest = rest[n:]
			continue
		}
		b.WriteByte('<')
		rest = rest[1:]
	}
}

// ownedTag reports the byte length of the tag at the start of s when it is
// an owned start tag, or, with closing set, any end tag.
func ownedTag(s string, marker Marker, closing bool) (n int, open bool) {
	if len(s) < 2 {
		return 0, false
	}
	c := s[1]
	isLetter := ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
	if !isLetter && !(c == '/' && closing) {
		return 0, false
	}
	z := html.NewTokenizer(strings.NewReader(s))
	switch z.Next() {
	case html.StartTagToken:
		raw := len(z.Raw())
		tok := z.Token()
		if marker.Owns(tok.Data, tok.Attr) {
			return raw, true
		}
	case html.EndTagToken:
		if closing {
			return len(z.Raw()), false
		}
	}
	return 0, false
}
