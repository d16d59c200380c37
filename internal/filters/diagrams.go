// internal/filters/diagrams.go
package filters

import (
	"context"
	"crypto/md5"
	"fmt"
	"regexp"
	"strings"

	"oss.terrastruct.com/d2/d2graph"
	"oss.terrastruct.com/d2/d2layouts/d2dagrelayout"
	"oss.terrastruct.com/d2/d2lib"
	"oss.terrastruct.com/d2/d2renderers/d2svg"
	"oss.terrastruct.com/d2/d2themes/d2themescatalog"
	"oss.terrastruct.com/d2/lib/textmeasure"
)

// d2Fence matches a fenced code block tagged d2.
var d2Fence = regexp.MustCompile("(?ms)^```d2[ \t]*\r?\n(.*?)^```[ \t]*$")

// diagramFilter replaces ```d2 fences with inline SVG. Rendered diagrams
// are cached by content hash for the lifetime of the filter.
type diagramFilter struct {
	ruler *textmeasure.Ruler
	cache map[[md5.Size]byte]string
}

func newDiagramFilter() *diagramFilter {
	return &diagramFilter{cache: make(map[[md5.Size]byte]string)}
}

func (*diagramFilter) Name() string { return "diagrams" }

func (f *diagramFilter) Apply(src string) (string, error) {
	var firstErr error
	out := d2Fence.ReplaceAllStringFunc(src, func(fence string) string {
		if firstErr != nil {
			return fence
		}
		m := d2Fence.FindStringSubmatch(fence)
		svg, err := f.render(m[1])
		if err != nil {
			firstErr = err
			return fence
		}
		return "\n<div class=\"diagram\">\n" + svg + "\n</div>\n"
	})
	if firstErr != nil {
		return src, firstErr
	}
	return out, nil
}

func (f *diagramFilter) render(source string) (string, error) {
	key := md5.Sum([]byte(source))
	if svg, ok := f.cache[key]; ok {
		return svg, nil
	}

	if f.ruler == nil {
		ruler, err := textmeasure.NewRuler()
		if err != nil {
			return "", fmt.Errorf("d2 text ruler: %w", err)
		}
		f.ruler = ruler
	}

	defaultLayout := func(ctx context.Context, g *d2graph.Graph) error {
		return d2dagrelayout.Layout(ctx, g, nil)
	}
	diagram, _, err := d2lib.Compile(context.Background(), source, &d2lib.CompileOptions{
		Layout: defaultLayout,
		Ruler:  f.ruler,
	})
	if err != nil {
		return "", fmt.Errorf("d2 compile: %w", err)
	}
	body, err := d2svg.Render(diagram, &d2svg.RenderOpts{
		Pad:     d2svg.DEFAULT_PADDING,
		ThemeID: d2themescatalog.NeutralDefault.ID,
	})
	if err != nil {
		return "", fmt.Errorf("d2 render: %w", err)
	}

	// A blank line would end the raw HTML block in markdown.
	svg := dropBlankLines(string(body))
	f.cache[key] = svg
	return svg, nil
}

func dropBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}
