// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/ini.v1"

	"mdpub/internal/store"
)

// Well-known sections.
const (
	PathsSection       = "paths"
	IncludeDirsSection = "includeDirs"
	ProgramSection     = "program"
	DefaultUseSection  = "use"
)

// Default locations, relative to the configuration file.
const (
	DefaultDocRoot     = "content"
	DefaultDestDir     = "public"
	DefaultTemplateDir = "templates"
)

var ErrNoConfig = errors.New("no configuration file")

var identifier = regexp.MustCompile(`^\w+$`)

// Paths are the resolved, absolute directories a build works with.
type Paths struct {
	DocRoot     string
	DestDir     string
	TemplateDir string
}

// Load reads an INI file into a new store. Section and key order and
// comments are kept. A key with an empty value is stored as unset, so
// lookups fall through to the fallback section. Relative values in [paths]
// and [includeDirs] are resolved against the file's directory.
func Load(path string) (*store.Store, error) {
	st := store.New()
	if err := Merge(st, path); err != nil {
		return nil, err
	}
	return st, nil
}

// Merge loads an INI file into an existing store; later files override
// earlier ones key by key.
func Merge(st *store.Store, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w at %s", ErrNoConfig, path)
		}
		return fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	f, err := ini.LoadSources(ini.LoadOptions{
		AllowBooleanKeys:         true,
		SpaceBeforeInlineComment: true,
	}, data)
	if err != nil {
		return fmt.Errorf("could not parse config file %s: %w", path, err)
	}

	dir := filepath.Dir(abs)
	for _, sec := range f.Sections() {
		name := sec.Name()
		if name == ini.DefaultSection && len(sec.Keys()) == 0 {
			continue
		}
		if !identifier.MatchString(name) {
			return fmt.Errorf("config file %s: invalid section name %q", path, name)
		}
		for _, key := range sec.Keys() {
			if !identifier.MatchString(key.Name()) {
				return fmt.Errorf("config file %s: invalid key %q in [%s]", path, key.Name(), name)
			}
			var value *string
			if v := key.Value(); v != "" {
				if name == PathsSection || name == IncludeDirsSection {
					v = resolve(dir, v)
				}
				value = &v
			}
			st.SetEntry(name, key.Name(), value, comment(key.Comment))
		}
	}

	st.SetString(ProgramSection, "configDir", dir)
	return nil
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}

func comment(raw string) *string {
	c := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(raw), ";#"))
	if c == "" {
		return nil
	}
	return &c
}

// PathsOf returns the build directories, applying defaults relative to the
// configuration directory for anything not configured.
func PathsOf(st *store.Store) Paths {
	base := st.GetString(ProgramSection, "configDir", "")
	get := func(key, def string) string {
		if v := st.GetString(PathsSection, key, ""); v != "" {
			return v
		}
		return filepath.Join(base, def)
	}
	return Paths{
		DocRoot:     get("docRoot", DefaultDocRoot),
		DestDir:     get("destDir", DefaultDestDir),
		TemplateDir: get("templateDir", DefaultTemplateDir),
	}
}

// IncludeDirs maps each [includeDirs] key to its absolute directory. The
// key names the subdirectory of the output the directory is copied to.
func IncludeDirs(st *store.Store) map[string]string {
	dirs := make(map[string]string)
	for _, e := range st.Section(IncludeDirsSection) {
		if e.Value != nil {
			dirs[e.Key] = *e.Value
		}
	}
	return dirs
}
