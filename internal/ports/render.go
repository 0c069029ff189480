package ports

import (
	"io"

	"github.com/corey/glossa/internal/domain/resolve"
)

// Sanitizer post-processes annotated markup before it leaves the process.
// It must keep the annotation markers intact.
type Sanitizer interface {
	Sanitize(markup string) (string, error)
}

// Renderer presents a scanned text and its spans, e.g. as JSON or as
// highlighted terminal output.
type Renderer interface {
	Render(w io.Writer, text string, spans []resolve.Span) error
}

// MarkupConverter turns a source format (Markdown) into HTML that the tree
// splicer can annotate.
type MarkupConverter interface {
	Convert(src []byte) (string, error)
}
