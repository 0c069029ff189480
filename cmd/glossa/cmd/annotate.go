package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corey/glossa/internal/adapters/render"
	"github.com/corey/glossa/internal/domain/annotate"
	"github.com/corey/glossa/internal/ports"
)

var (
	annotateFormat     string
	annotateOutput     string
	annotateWords      string
	annotatePhrases    string
	annotateNested     bool
	annotateParagraphs bool
	annotateColor      string
)

var annotateCmd = &cobra.Command{
	Use:   "annotate [file]",
	Short: "Annotate a file or stdin",
	Long: "Scans text, HTML or Markdown for dictionary phrases and words and writes the annotated result.\n" +
		"Reads stdin when no file is given. Input format defaults from the file extension.",
	Args: cobra.MaximumNArgs(1),
	RunE: runAnnotate,
}

func init() {
	f := annotateCmd.Flags()
	f.StringVarP(&annotateFormat, "format", "f", "", "Input format: text, html, markdown (default from extension)")
	f.StringVarP(&annotateOutput, "output", "o", "markup", "Output: markup, json, term")
	f.StringVar(&annotateWords, "words", "", "Word dictionary JSON (overrides config)")
	f.StringVar(&annotatePhrases, "phrases", "", "Phrase dictionary JSON (overrides config)")
	f.BoolVar(&annotateNested, "nested", false, "Emit one nested marker per homonym sense")
	f.BoolVar(&annotateParagraphs, "paragraphs", false, "Annotate blank-line separated paragraphs independently")
	f.StringVar(&annotateColor, "color", "auto", "Terminal color: auto, always, never")
}

var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n`)

func runAnnotate(cmd *cobra.Command, args []string) error {
	input, name, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	format, err := inputFormat(annotateFormat, name)
	if err != nil {
		return err
	}
	renderer, err := outputRenderer(annotateOutput)
	if err != nil {
		return err
	}
	if annotateParagraphs && format != annotate.FormatText {
		return fmt.Errorf("--paragraphs only applies to text input, not %s", format)
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if annotateWords != "" || annotatePhrases != "" {
		cfg.Dictionary.WordsPath = annotateWords
		cfg.Dictionary.PhrasesPath = annotatePhrases
	}
	if annotateNested {
		cfg.Annotate.NestedSenses = true
	}
	cfg.Dictionary.Watch = false

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	chunks, seps := []string{input}, []string(nil)
	if annotateParagraphs {
		chunks, seps = splitParagraphs(input)
	}
	docs, err := a.Engine.AnnotateChunks(cmd.Context(), chunks, format)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, doc := range docs {
		if i > 0 && renderer == nil {
			fmt.Fprint(out, seps[i-1])
		}
		if renderer == nil {
			fmt.Fprint(out, doc.Output)
			continue
		}
		if err := renderer.Render(out, doc.Text, doc.Spans); err != nil {
			return err
		}
	}
	if renderer == nil && !strings.HasSuffix(input, "\n") {
		fmt.Fprintln(out)
	}
	return nil
}

// splitParagraphs cuts text at blank lines. seps[i] is the separator found
// between chunks[i] and chunks[i+1], so joining them back gives text.
func splitParagraphs(text string) (chunks, seps []string) {
	last := 0
	for _, loc := range paragraphBreak.FindAllStringIndex(text, -1) {
		chunks = append(chunks, text[last:loc[0]])
		seps = append(seps, text[loc[0]:loc[1]])
		last = loc[1]
	}
	return append(chunks, text[last:]), seps
}

// readInput returns the file contents, or stdin when no file is named.
func readInput(cmd *cobra.Command, args []string) (string, string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", err
		}
		return string(data), args[0], nil
	}
	if cmd.InOrStdin() == os.Stdin && !isStdinPipe() {
		return "", "", fmt.Errorf("no input: pass a file or pipe text on stdin")
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), "", nil
}

// inputFormat picks the explicit format, else infers one from the file name.
func inputFormat(flag, name string) (annotate.Format, error) {
	if flag != "" {
		return annotate.ParseFormat(flag)
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return annotate.FormatHTML, nil
	case ".md", ".markdown":
		return annotate.FormatMarkdown, nil
	default:
		return annotate.FormatText, nil
	}
}

// outputRenderer returns nil for raw annotated markup.
func outputRenderer(name string) (ports.Renderer, error) {
	switch name {
	case "", "markup", "html":
		return nil, nil
	case "json":
		return render.JSON{Indent: true}, nil
	case "term", "terminal":
		return render.Terminal{NoColor: !resolveColor(annotateColor)}, nil
	default:
		return nil, fmt.Errorf("unknown output %q (want markup, json or term)", name)
	}
}
