package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/corey/glossa/internal/adapters/render"
	"github.com/corey/glossa/internal/app"
	"github.com/corey/glossa/internal/domain/lexicon"
	"github.com/corey/glossa/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorRed     = "\033[31m"
	colorCyan    = "\033[36m"
	colorMagenta = "\033[35m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorGray    = "\033[90m"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatLookup lists each group and its senses.
//
//	bank  word · 2 senses
//	  1. банк  [noun]
//	  2. берег  [noun]
func formatLookup(groups []*lexicon.Group) string {
	var sb strings.Builder
	for _, g := range groups {
		color := colorCyan
		if g.Category == lexicon.Phrase {
			color = colorMagenta
		}
		fmt.Fprintf(&sb, "%s%s%s  %s%s · %d sense%s%s\n",
			color, g.Display, colorReset, colorGray, g.Category, g.Len(), plural(g.Len()), colorReset)
		for i, m := range g.Senses {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, render.Describe(m))
		}
	}
	return sb.String()
}

// formatImport summarizes an import.
func formatImport(res app.ImportResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%simported%s %d %s records (%d entries) from %s\n",
		colorGreen, colorReset, res.Records, res.Category, res.Groups, res.Source)
	if n := len(res.Skipped); n > 0 {
		fmt.Fprintf(&sb, "%s%d record%s will be skipped:%s\n", colorYellow, n, plural(n), colorReset)
		for _, err := range res.Skipped {
			fmt.Fprintf(&sb, "  %v\n", err)
		}
	}
	return sb.String()
}

// formatDictStats lists the stored dictionaries.
func formatDictStats(path string, cats []ports.StoredDictionary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%sglossa dictionaries%s  %s%s%s\n", colorBold, colorReset, colorGray, path, colorReset)
	if len(cats) == 0 {
		sb.WriteString("  (none stored; import with: glossa dict import words words.json)\n")
		return sb.String()
	}
	for _, c := range cats {
		fmt.Fprintf(&sb, "  %-8s %6d records  %s  %s\n",
			c.Category, c.Records, c.SavedAt.Format("2006-01-02 15:04"), orNone(c.Source))
	}
	return sb.String()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
