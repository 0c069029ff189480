package splice

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/corey/glossa/internal/domain/resolve"
)

// Elements whose text is never annotated.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Code:     true,
	atom.Pre:      true,
	atom.Textarea: true,
	atom.Head:     true,
}

// Elements that break the virtual text with a newline, so that words in
// adjacent blocks are never glued together.
var blocks = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Br: true, atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Figcaption: true, atom.Figure: true, atom.Footer: true, atom.Form: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Hr: true, atom.Li: true, atom.Main: true, atom.Nav: true,
	atom.Ol: true, atom.P: true, atom.Section: true, atom.Table: true, atom.Td: true,
	atom.Th: true, atom.Tr: true, atom.Ul: true, atom.Title: true,
}

type segment struct {
	node  *html.Node
	start int
	n     int
}

type walker struct {
	marker Marker
	text   strings.Builder
	size   int
	segs   []segment
}

func (w *walker) newline() {
	if w.size == 0 {
		return
	}
	s := w.text.String()
	if s[len(s)-1] == '\n' {
		return
	}
	w.text.WriteByte('\n')
	w.size++
}

func (w *walker) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.segs = append(w.segs, segment{node: n, start: w.size, n: utf8.RuneCountInString(n.Data)})
		w.text.WriteString(n.Data)
		w.size += utf8.RuneCountInString(n.Data)
		return
	case html.ElementNode:
		if skipped[n.DataAtom] {
			return
		}
		if w.marker != nil && w.marker.Owns(n.Data, n.Attr) {
			return
		}
	case html.CommentNode, html.DoctypeNode, html.RawNode:
		return
	}
	block := n.Type == html.ElementNode && blocks[n.DataAtom]
	if block {
		w.newline()
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
	if block {
		w.newline()
	}
}

func walk(root *html.Node, marker Marker) *walker {
	w := &walker{marker: marker}
	if root != nil {
		w.walk(root)
	}
	return w
}

// TreeText returns the virtual text of root: the concatenated text nodes
// outside skipped elements, with a newline between block-level elements.
// Elements owned by marker are skipped when marker is not nil. Span offsets
// for Tree are rune offsets into this text.
func TreeText(root *html.Node, marker Marker) string {
	return walk(root, marker).text.String()
}

// Tree splices spans into root in place and returns how many groups were
// wrapped. A span must lie inside a single text node; spans crossing node
// boundaries are skipped.
func Tree(root *html.Node, spans []resolve.Span, marker Marker, opts Options) int {
	if root == nil || len(spans) == 0 {
		return 0
	}
	w := walk(root, marker)
	applied := 0
	for _, g := range Plan(Groups(spans), w.size) {
		seg, ok := locate(w.segs, g.Start, g.End)
		if !ok || seg.node.Parent == nil {
			continue
		}
		splitText(seg, g, marker, opts)
		applied++
	}
	return applied
}

// locate finds the text segment that fully contains [start,end).
func locate(segs []segment, start, end int) (segment, bool) {
	lo, hi := 0, len(segs)
	for lo < hi {
		mid := (lo + hi) / 2
		if segs[mid].start+segs[mid].n <= start {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == len(segs) {
		return segment{}, false
	}
	s := segs[lo]
	if start < s.start || end > s.start+s.n {
		return segment{}, false
	}
	return s, true
}

// splitText replaces [g.Start,g.End) of the segment's node with a wrapper.
// The text before the span stays in the original node, so segments at lower
// offsets remain valid.
func splitText(seg segment, g Group, marker Marker, opts Options) {
	runes := []rune(seg.node.Data)
	from, to := g.Start-seg.start, g.End-seg.start

	var outer, inner *html.Node
	for _, s := range opts.senses(g) {
		el := marker.Element(g, s)
		if outer == nil {
			outer = el
		} else {
			inner.AppendChild(el)
		}
		inner = el
	}
	inner.AppendChild(&html.Node{Type: html.TextNode, Data: string(runes[from:to])})

	parent, next := seg.node.Parent, seg.node.NextSibling
	parent.InsertBefore(outer, next)
	if to < len(runes) {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: string(runes[to:])}, next)
	}
	seg.node.Data = string(runes[:from])
	if from == 0 {
		parent.RemoveChild(seg.node)
	}
}
