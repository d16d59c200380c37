// internal/compose/compose.go
package compose

import (
	"fmt"
	"path/filepath"
	"regexp"

	"mdpub/internal/store"
	"mdpub/internal/subst"
	"mdpub/internal/textedit"
	"mdpub/internal/util"
)

// Location describes where a document comes from and where its HTML goes.
// All paths are absolute.
type Location struct {
	Source   string // markdown source file
	DocRoot  string // root of the source tree
	Dest     string // output HTML file
	DestRoot string // root of the output tree
}

// Relocated reports whether the output lands in a different directory
// than its source.
func (l Location) Relocated() bool {
	return filepath.Clean(filepath.Dir(l.Dest)) != filepath.Clean(filepath.Dir(l.Source))
}

// BaseHref is the relative path from the source document's directory to the
// document root, suitable for a <base href> tag.
func BaseHref(sourceFile, docRoot string) string {
	return util.ComputeBaseHref(filepath.Dir(sourceFile), docRoot)
}

var inPageAnchor = regexp.MustCompile(`href=["'](#)`)

// Compose resolves the placeholders of templateText, unescapes \$ and \[,
// fixes in-page anchors of relocated output, and stores the result as
// page.html.
func Compose(st *store.Store, templateText, fallback string, loc Location) (string, error) {
	res, err := subst.Substitute(st, templateText, fallback)
	if err != nil {
		return "", fmt.Errorf("template substitution: %w", err)
	}
	html := subst.Unescape(res.Text, `\$`, `\[`)

	if loc.Dest != "" && loc.Relocated() {
		html = RewriteAnchors(html, util.RelHref(loc.DestRoot, loc.Dest))
	}

	st.SetString(store.PageSection, "html", html)
	return html, nil
}

// RewriteAnchors prefixes every href="#..." with prefix so that in-page
// anchors keep pointing at the same file when a <base> tag moves the
// resolution root.
func RewriteAnchors(html, prefix string) string {
	if prefix == "" {
		return html
	}
	buf := textedit.NewBuffer(html)
	buf.InsertAtSubmatch(inPageAnchor, 1, prefix)
	if buf.Edits() == 0 {
		return html
	}
	return buf.String()
}
