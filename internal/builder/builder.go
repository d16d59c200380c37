// internal/builder/builder.go
package builder

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"mdpub/internal/archive"
	"mdpub/internal/compose"
	"mdpub/internal/config"
	"mdpub/internal/finder"
	"mdpub/internal/markdown"
	"mdpub/internal/store"
	"mdpub/internal/util"
)

// BuildSite converts the markdown sources under the configured document root
// into HTML pages under the destination directory, copies the include
// directories, and optionally bundles the result. It returns the number of
// pages written. Failing documents are reported together at the end unless
// opts.StopOnError is set.
func BuildSite(ctx context.Context, st *store.Store, opts BuildOptions, log *zap.SugaredLogger) (int, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	paths := config.PathsOf(st)

	if err := os.MkdirAll(paths.DestDir, 0755); err != nil {
		return 0, err
	}
	if opts.CleanDestination {
		log.Infow("cleaning destination directory", "dir", paths.DestDir)
		if err := cleanDir(paths.DestDir); err != nil {
			return 0, err
		}
	}

	md := markdown.New(markdown.Options{
		CodeStyle:   st.GetString(config.DefaultUseSection, "codeStyle", ""),
		LineNumbers: st.GetString(config.DefaultUseSection, "lineNumbers", "") == "true",
		Sanitize:    opts.Sanitize,
	})
	proc := NewProcessor(st, md, DirTemplateLoader(paths.TemplateDir), log)

	inputs, err := finder.Find(paths.DocRoot, opts.Inputs)
	if err != nil {
		return 0, err
	}
	log.Debugw("found inputs", "count", len(inputs), "root", paths.DocRoot)

	var errs error
	pagesGenerated := 0
	for _, path := range inputs {
		if err := ctx.Err(); err != nil {
			return pagesGenerated, err
		}
		written, err := buildPage(proc, paths, path)
		if err != nil {
			err = fmt.Errorf("failed to process %s: %w", path, err)
			if opts.StopOnError {
				return pagesGenerated, err
			}
			log.Errorw("document failed", "source", path, "error", err)
			errs = multierr.Append(errs, err)
			continue
		}
		if written {
			pagesGenerated++
		}
	}

	for sub, dir := range config.IncludeDirs(st) {
		if err := copyDir(dir, filepath.Join(paths.DestDir, sub)); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to copy include dir %s: %w", dir, err))
		}
	}

	if opts.Archive != "" {
		n, err := archive.Write(opts.Archive, paths.DestDir, st)
		if err != nil {
			return pagesGenerated, multierr.Append(errs, err)
		}
		log.Infow("archive written", "file", opts.Archive, "entries", n)
	}
	return pagesGenerated, errs
}

// buildPage processes one source file and writes its HTML. Drafts are
// skipped and reported as not written.
func buildPage(proc *Processor, paths config.Paths, path string) (bool, error) {
	contentBytes, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	if !utf8.Valid(contentBytes) {
		return false, fmt.Errorf("content file is not valid UTF-8")
	}

	relPath, err := filepath.Rel(paths.DocRoot, path)
	if err != nil {
		return false, err
	}
	outputPath := filepath.Join(paths.DestDir, util.HTMLPath(relPath))

	page, err := proc.ProcessDocument(string(contentBytes), compose.Location{
		Source:   path,
		DocRoot:  paths.DocRoot,
		Dest:     outputPath,
		DestRoot: paths.DestDir,
	})
	if err != nil {
		return false, err
	}
	if page.Draft && !isExceptionPage(strings.TrimSuffix(relPath, filepath.Ext(relPath))) {
		proc.log.Infow("skipping draft", "source", path)
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return false, err
	}
	if err := os.WriteFile(outputPath, []byte(page.HTML), 0644); err != nil {
		return false, err
	}
	proc.log.Debugw("page written", "source", path, "dest", outputPath, "template", page.Template)
	return true, nil
}

// isExceptionPage checks for pages that should not be considered drafts.
func isExceptionPage(slug string) bool {
	return slug == "index" || slug == "404"
}

func cleanDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// copyDir copies the files of src into dst, keeping the directory layout.
// Hidden files and directories are skipped.
func copyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path != src && strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		return copyFile(path, filepath.Join(dst, rel))
	})
}

func copyFile(from, to string) error {
	if err := os.MkdirAll(filepath.Dir(to), 0755); err != nil {
		return err
	}
	src, err := os.Open(from)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Create(to)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// DirTemplateLoader loads templates by name from dir, reading each file once.
func DirTemplateLoader(dir string) TemplateLoader {
	cache := make(map[string]string)
	return func(name string) (string, error) {
		if text, ok := cache[name]; ok {
			return text, nil
		}
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
		if err != nil {
			return "", err
		}
		cache[name] = string(data)
		return cache[name], nil
	}
}
