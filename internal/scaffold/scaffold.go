// internal/scaffold/scaffold.go
package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"mdpub/internal/config"
	"mdpub/internal/store"
	"mdpub/internal/subst"
)

// DefaultConfigFile is the configuration written by CreateNewSite.
const DefaultConfigFile = "mdpub.ini"

// ArchetypeFile, when present in the template directory, replaces the
// built-in page archetype.
const ArchetypeFile = "archetype.md"

var ErrExists = errors.New("already exists")

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// CreateNewSite lays out a ready-to-build site in dir: configuration,
// project metadata, a page template, a stylesheet and a home page.
func CreateNewSite(dir string, log *zap.SugaredLogger) error {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if _, err := os.Stat(filepath.Join(dir, DefaultConfigFile)); err == nil {
		return fmt.Errorf("site in %s: %w", dir, ErrExists)
	}
	log.Infow("scaffolding new site", "dir", dir)

	files := []struct{ path, content string }{
		{DefaultConfigFile, configContent},
		{config.DefaultProjectFile, projectContent},
		{"templates/default.html", templateContent},
		{"static/css/style.css", styleContent},
		{"content/index.md", indexContent},
	}
	for _, f := range files {
		path := filepath.Join(dir, filepath.FromSlash(f.path))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(f.content), 0644); err != nil {
			return fmt.Errorf("failed to write file %s: %w", path, err)
		}
	}

	log.Infof("Site scaffolded. Next: cd %s && mdpub serve", dir)
	return nil
}

// CreateNewPage writes a markdown page titled title into section (a
// subdirectory of the document root, may be empty). The page is produced
// by resolving the archetype's placeholders against the site configuration
// in st plus page.title, page.slug and page.date. It returns the new
// file's path.
func CreateNewPage(st *store.Store, section, title string, log *zap.SugaredLogger) (string, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	slug := Slugify(title)
	if slug == "" {
		return "", fmt.Errorf("title %q has nothing to build a file name from", title)
	}

	paths := config.PathsOf(st)

	path := filepath.Join(paths.DocRoot, filepath.FromSlash(section), slug+".md")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("page %s: %w", path, ErrExists)
	}

	archetype := defaultArchetype
	custom := filepath.Join(paths.TemplateDir, ArchetypeFile)
	if data, err := os.ReadFile(custom); err == nil {
		archetype = string(data)
		log.Debugw("using archetype", "file", custom)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	st.SetString(store.PageSection, "title", title)
	st.SetString(store.PageSection, "slug", slug)
	st.SetString(store.PageSection, "date", time.Now().Format("2006-01-02"))
	res, err := subst.Substitute(st, archetype, config.DefaultUseSection)
	if err != nil {
		return "", fmt.Errorf("failed to expand archetype: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(res.Text), 0644); err != nil {
		return "", err
	}
	log.Infow("created page", "file", path)
	return path, nil
}

// Slugify lowercases title and joins its words with hyphens.
func Slugify(title string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-")
}

const defaultArchetype = `@@@
title: ${page.title}
date: ${page.date}
draft: true
@@@
# ${page.title}

Write something meaningful here.
`

const configContent = `; mdpub site configuration
[paths]
docRoot = content
destDir = public
templateDir = templates

[includeDirs]
css = static/css        ; copied to public/css

[program]
title = My Documentation

[use]
template = default.html
stylesheets = css/style.css
codeStyle = github
`

const projectContent = `name: my-project
version: 0.1.0
description: A new documentation site powered by mdpub.
`

const templateContent = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>${page.title} | ${program.title}</title>
  <base href="${page.base}">
${page.css}</head>
<body>
  <header id="top">
    <div class="site-name">${program.title} ${program.version}</div>
  </header>
  ${page.nav}
  <main>
${page.content}
  </main>
  <footer>
    <nav><a href="index.html">home</a> <a href="#top">top</a></nav>
  </footer>
</body>
</html>
`

const styleContent = `body {
  font-family: sans-serif;
  max-width: 700px;
  margin: 2em auto;
  padding: 0 1em;
  line-height: 1.6;
  color: #222;
  background: #fdfdfd;
}
.site-name { font-size: 0.9em; color: #777; font-style: italic; }
#nav { font-size: 0.9em; margin-bottom: 2em; }
main { margin-bottom: 3em; }
footer { text-align: center; font-size: 0.9em; color: #555; }
footer nav a { color: #444; text-decoration: none; margin: 0 0.5em; }
footer nav a:hover { text-decoration: underline; }
pre { padding: 0.5em; overflow-x: auto; }
.cm-add { background-color: #d4edda; color: #155724; }
.cm-del { background-color: #f8d7da; color: #721c24; text-decoration: line-through; }
.cm-hl { background-color: #fff3cd; color: #856404; }
.cm-com { background-color: #eae3d3; color: #6e4c1e; font-style: italic; }
`

const indexContent = `@@@
title: Home
@@@
# ${program.title}

Welcome to ${program.name}, version ${program.version}.

Write \${page.title} to show a page's title.

@@@[#nav]
[Home](index.md)
@@@
`
