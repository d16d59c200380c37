// internal/finder/finder.go
package finder

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extensions are the file extensions treated as markdown sources.
var Extensions = map[string]bool{".md": true, ".markdown": true}

// Find expands args into the markdown files they name under root. An arg is
// a file, a directory (searched recursively), or a glob pattern; relative
// args are taken from root. With no args the whole root is searched. The
// result is sorted and free of duplicates.
func Find(root string, args []string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		args = []string{root}
	}

	seen := make(map[string]bool)
	var found []string
	add := func(path string) error {
		if !within(root, path) {
			return fmt.Errorf("%s is outside the document root %s", path, root)
		}
		if !seen[path] {
			seen[path] = true
			found = append(found, path)
		}
		return nil
	}

	for _, arg := range args {
		if !filepath.IsAbs(arg) {
			arg = filepath.Join(root, arg)
		}
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no input matches %s", arg)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, err
			}
			if !info.IsDir() {
				if Extensions[strings.ToLower(filepath.Ext(m))] {
					if err := add(m); err != nil {
						return nil, err
					}
				}
				continue
			}
			if err := filepath.WalkDir(m, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					if path != m && strings.HasPrefix(d.Name(), ".") {
						return filepath.SkipDir
					}
					return nil
				}
				if !Extensions[strings.ToLower(filepath.Ext(path))] {
					return nil
				}
				return add(path)
			}); err != nil {
				return nil, err
			}
		}
	}

	sort.Strings(found)
	return found, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
