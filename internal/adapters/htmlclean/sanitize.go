// Package htmlclean implements ports.Sanitizer on golang.org/x/net/html.
// It drops active content (scripts, frames, event handlers, javascript:
// URLs) from annotated markup and leaves every other element, including
// the annotation spans, untouched.
package htmlclean

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/corey/glossa/internal/ports"
)

var _ ports.Sanitizer = Sanitizer{}

// Elements removed together with their content.
var dropped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Iframe:   true,
	atom.Frame:    true,
	atom.Frameset: true,
	atom.Object:   true,
	atom.Embed:    true,
	atom.Applet:   true,
	atom.Base:     true,
	atom.Link:     true,
	atom.Meta:     true,
}

// Attributes whose values are URLs.
var urlAttrs = map[string]bool{
	"href": true, "src": true, "action": true, "formaction": true, "xlink:href": true,
}

// Sanitizer removes active content from HTML fragments.
type Sanitizer struct{}

// Sanitize implements ports.Sanitizer.
func (Sanitizer) Sanitize(markup string) (string, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	var b strings.Builder
	for _, n := range nodes {
		if n.Type == html.ElementNode && dropped[n.DataAtom] {
			continue
		}
		clean(n)
		if err := html.Render(&b, n); err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
	}
	return b.String(), nil
}

func clean(n *html.Node) {
	if n.Type == html.ElementNode {
		n.Attr = cleanAttrs(n.Attr)
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.CommentNode || (c.Type == html.ElementNode && dropped[c.DataAtom]) {
			n.RemoveChild(c)
		} else {
			clean(c)
		}
		c = next
	}
}

func cleanAttrs(attrs []html.Attribute) []html.Attribute {
	out := attrs[:0]
	for _, a := range attrs {
		key := strings.ToLower(a.Key)
		if strings.HasPrefix(key, "on") {
			continue
		}
		if urlAttrs[key] && unsafeURL(a.Val) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func unsafeURL(v string) bool {
	v = strings.ToLower(strings.Map(func(r rune) rune {
		if r <= ' ' {
			return -1
		}
		return r
	}, v))
	return strings.HasPrefix(v, "javascript:") || strings.HasPrefix(v, "vbscript:") ||
		(strings.HasPrefix(v, "data:") && !strings.HasPrefix(v, "data:image/"))
}
