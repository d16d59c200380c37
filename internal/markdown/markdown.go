// internal/markdown/markdown.go
package markdown

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// DefaultCodeStyle is the chroma style used when none is configured.
const DefaultCodeStyle = "github"

// Options tune the converter.
type Options struct {
	// CodeStyle names a chroma style for fenced code blocks. Unknown names
	// fall back to chroma's default style.
	CodeStyle string
	// LineNumbers adds line numbers to highlighted code.
	LineNumbers bool
	// Sanitize runs the generated HTML through a bluemonday policy.
	Sanitize bool
}

// Converter renders markdown fragments to HTML. It is safe for concurrent
// use once built.
type Converter struct {
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// New builds a converter with GFM, footnotes, definition lists, heading IDs,
// .md link rewriting and syntax highlighting.
func New(opts Options) *Converter {
	style := opts.CodeStyle
	if style == "" {
		style = DefaultCodeStyle
	}

	c := &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Footnote,
				extension.DefinitionList,
				highlighting.NewHighlighting(
					highlighting.WithCustomStyle(styles.Get(style)),
					highlighting.WithFormatOptions(
						chromahtml.WithLineNumbers(opts.LineNumbers),
					),
				),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
				parser.WithASTTransformers(
					util.Prioritized(newMDLinkTransformer(), 100),
				),
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
			),
		),
	}
	if opts.Sanitize {
		c.sanitizer = newSanitizer()
	}
	return c
}

// newSanitizer allows what user generated content may carry plus the
// class and inline style attributes emitted by the highlighter.
func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowStyling()
	p.AllowAttrs("style").OnElements("span", "pre", "code")
	return p
}

// Convert renders src to HTML.
func (c *Converter) Convert(src string) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown with goldmark: %w", err)
	}
	if c.sanitizer != nil {
		return string(c.sanitizer.SanitizeBytes(buf.Bytes())), nil
	}
	return buf.String(), nil
}
