// internal/config/project.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"mdpub/internal/store"
)

// DefaultProjectFile holds project metadata next to the configuration.
const DefaultProjectFile = "project.yaml"

// Project is the metadata describing what is being documented.
// The `yaml` tags are used by the parser to map file keys to struct fields.
type Project struct {
	Name        string            `yaml:"name"`
	Version     string            `yaml:"version"`
	Description string            `yaml:"description"`
	URL         string            `yaml:"url"`
	Properties  map[string]string `yaml:"properties"`
}

// LoadProject reads project metadata into the [program] section. Keys the
// configuration file already set are left alone.
func LoadProject(st *store.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read project file at %s: %w", path, err)
	}

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("could not parse project file %s: %w", path, err)
	}

	set := func(key, value string) {
		if value == "" || st.Has(ProgramSection, key) {
			return
		}
		st.SetString(ProgramSection, key, value)
	}
	set("name", p.Name)
	set("version", p.Version)
	set("description", p.Description)
	set("url", p.URL)
	for key, value := range p.Properties {
		if !identifier.MatchString(key) {
			return fmt.Errorf("project file %s: invalid property name %q", path, key)
		}
		set(key, value)
	}
	return nil
}

// LoadSite loads the configuration file and the project metadata. An empty
// projectPath means project.yaml next to the configuration, which may be
// absent.
func LoadSite(configPath, projectPath string) (*store.Store, error) {
	st, err := Load(configPath)
	if err != nil {
		return nil, err
	}
	if projectPath == "" {
		projectPath = filepath.Join(st.GetString(ProgramSection, "configDir", ""), DefaultProjectFile)
		if _, err := os.Stat(projectPath); errors.Is(err, os.ErrNotExist) {
			return st, nil
		}
	}
	if err := LoadProject(st, projectPath); err != nil {
		return nil, err
	}
	return st, nil
}
