// internal/builder/processor.go
package builder

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"mdpub/internal/blocks"
	"mdpub/internal/compose"
	"mdpub/internal/config"
	"mdpub/internal/filters"
	"mdpub/internal/store"
	"mdpub/internal/subst"
	"mdpub/internal/util"
)

// TemplateLoader returns the text of a named template.
type TemplateLoader func(name string) (string, error)

// Processor turns one markdown document at a time into HTML. It shares a
// single store across documents; the page section is rebuilt for each one.
type Processor struct {
	store     *store.Store
	markdown  blocks.Converter
	templates TemplateLoader
	log       *zap.SugaredLogger
	chains    map[string]filters.Chain
}

func NewProcessor(st *store.Store, md blocks.Converter, templates TemplateLoader, log *zap.SugaredLogger) *Processor {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Processor{
		store:     st,
		markdown:  md,
		templates: templates,
		log:       log,
		chains:    make(map[string]filters.Chain),
	}
}

// ProcessDocument runs the full pipeline over raw: meta-block, stylesheets,
// base href, named blocks, substitution, markdown, and the template when
// one is configured.
func (p *Processor) ProcessDocument(raw string, loc compose.Location) (Page, error) {
	st := p.store
	body := blocks.ExtractMeta(st, raw)

	use := st.GetString(store.PageSection, "use", "")
	if use == "" {
		use = config.DefaultUseSection
	}
	page := Page{
		Use:   use,
		Title: st.GetString(store.PageSection, "title", use),
	}
	page.Draft, _ = strconv.ParseBool(st.GetString(store.PageSection, "draft", ""))

	p.rewriteStylesheets(use, loc)
	st.SetString(store.PageSection, "base", compose.BaseHref(loc.Source, loc.DocRoot))

	chain, err := p.chain(st.GetString(store.PageSection, "filters", use))
	if err != nil {
		return page, err
	}
	conv := blocks.ConverterFunc(func(src string) (string, error) {
		filtered, err := chain.Apply(src)
		if err != nil {
			return "", err
		}
		return p.markdown.Convert(filtered)
	})

	// The body starts on a fresh line, even when the meta-block consumed
	// the newline in front of it.
	body, err = blocks.ExtractNamed(st, "\n"+body, conv)
	if err != nil {
		return page, fmt.Errorf("named blocks: %w", err)
	}
	body = strings.TrimPrefix(body, "\n")

	res, err := subst.Substitute(st, body, use)
	if err != nil {
		return page, fmt.Errorf("body substitution: %w", err)
	}
	p.log.Debugw("substituted body", "source", loc.Source, "passes", res.Passes)

	content, err := conv.Convert(res.Text)
	if err != nil {
		return page, err
	}
	st.SetString(store.PageSection, "content", content)

	page.Template = st.GetString(store.PageSection, "template", use)
	if page.Template == "" {
		page.HTML = content
		return page, nil
	}

	tmpl, err := p.templates(page.Template)
	if err != nil {
		return page, fmt.Errorf("failed to load template %s: %w", page.Template, err)
	}

	// Placeholders the author escaped are literal text by now; keep them
	// that way through the template pass.
	st.SetString(store.PageSection, "content", subst.Escape(content, "${"))
	html, err := compose.Compose(st, tmpl, use, loc)
	st.SetString(store.PageSection, "content", content)
	if err != nil {
		return page, err
	}
	page.HTML = html
	return page, nil
}

// rewriteStylesheets makes the stylesheets of the use section absolute
// under the destination root, once per section, and renders page.css with
// hrefs relative to the output file. Page level stylesheets are taken as is.
func (p *Processor) rewriteStylesheets(use string, loc compose.Location) {
	st := p.store
	if st.ContainsSection(use) && st.GetString(use, "done", "") != "true" {
		if list := util.SplitList(st.GetString(use, "stylesheets", "")); len(list) > 0 {
			for i, css := range list {
				if !isURL(css) && !filepath.IsAbs(css) {
					list[i] = filepath.Join(loc.DestRoot, filepath.FromSlash(css))
				}
			}
			st.SetString(use, "stylesheets", strings.Join(list, ","))
		}
		st.SetString(use, "done", "true")
	}

	var hrefs []string
	if own, ok := st.Lookup(store.PageSection, "stylesheets", ""); ok {
		hrefs = util.SplitList(own)
	} else {
		for _, css := range util.SplitList(st.GetString(use, "stylesheets", "")) {
			if !isURL(css) && loc.Dest != "" {
				css = util.RelHref(filepath.Dir(loc.Dest), css)
			}
			hrefs = append(hrefs, css)
		}
	}

	var sb strings.Builder
	for _, href := range hrefs {
		fmt.Fprintf(&sb, "<link rel=\"stylesheet\" href=\"%s\">\n", href)
	}
	st.SetString(store.PageSection, "css", sb.String())
}

func (p *Processor) chain(list string) (filters.Chain, error) {
	if c, ok := p.chains[list]; ok {
		return c, nil
	}
	c, err := filters.Parse(list)
	if err != nil {
		return nil, err
	}
	p.chains[list] = c
	return c, nil
}

func isURL(s string) bool {
	return strings.Contains(s, "://") || strings.HasPrefix(s, "//")
}
