// internal/util/util.go
package util

import (
	"path/filepath"
	"strings"
)

// ComputeBaseHref calculates the relative path from dir up to root so that
// links work for pages at any depth. A page directory two levels below the
// root gets "../../"; the root itself gets "".
func ComputeBaseHref(dir, root string) string {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(root))
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel) + "/"
}

// RelHref returns target relative to dir in URL (slash) form. When no
// relative path exists the target is returned unchanged.
func RelHref(dir, target string) string {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(target))
	if err != nil {
		return filepath.ToSlash(target)
	}
	return filepath.ToSlash(rel)
}

// SplitList splits a comma separated configuration value, dropping blanks.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// HTMLPath maps a markdown source path to its .html output name.
func HTMLPath(rel string) string {
	return strings.TrimSuffix(rel, filepath.Ext(rel)) + ".html"
}
