package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mdpub/internal/store"
)

const sampleINI = `[paths]
docRoot = docs
destDir = /abs/out

[includeDirs]
css = static/css

; the program name
[program]
; shown in every footer
title = MyTool
unset =

[use]
template = default.html
stylesheets = css/style.css
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	st, err := Load(writeFile(t, dir, "mdpub.ini", sampleINI))
	if err != nil {
		t.Fatal(err)
	}

	if got := st.GetString("program", "title", ""); got != "MyTool" {
		t.Errorf("program.title = %q", got)
	}
	entries := st.Section("program")
	if len(entries) == 0 || entries[0].Comment == nil || *entries[0].Comment != "shown in every footer" {
		t.Errorf("comment not kept: %+v", entries)
	}
	if !st.Has("program", "unset") {
		t.Error("empty key missing")
	}
	if _, ok := st.Lookup("program", "unset", ""); ok {
		t.Error("empty key should be unset")
	}

	paths := PathsOf(st)
	if paths.DocRoot != filepath.Join(dir, "docs") {
		t.Errorf("DocRoot = %q", paths.DocRoot)
	}
	if paths.DestDir != filepath.Clean("/abs/out") {
		t.Errorf("DestDir = %q", paths.DestDir)
	}
	if paths.TemplateDir != filepath.Join(dir, DefaultTemplateDir) {
		t.Errorf("TemplateDir = %q", paths.TemplateDir)
	}

	inc := IncludeDirs(st)
	if inc["css"] != filepath.Join(dir, "static", "css") {
		t.Errorf("includeDirs = %v", inc)
	}

	want := []string{"paths", "includeDirs", "program", "use"}
	got := st.Sections()
	if len(got) != len(want) {
		t.Fatalf("Sections() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sections() = %v, want %v", got, want)
			break
		}
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.ini"))
	if !errors.Is(err, ErrNoConfig) {
		t.Errorf("err = %v, want ErrNoConfig", err)
	}
}

func TestLoadInvalidKey(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(writeFile(t, dir, "bad.ini", "[use]\nbad-key = x\n"))
	if err == nil {
		t.Error("expected an error for a non identifier key")
	}
}

func TestLoadProject(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "project.yaml", `name: mdpub
version: 1.2.3
description: Markdown publishing
properties:
  license: MIT
  title: Ignored
`)
	st := store.New()
	st.SetString("program", "title", "FromINI")

	if err := LoadProject(st, path); err != nil {
		t.Fatal(err)
	}
	checks := map[string]string{
		"name":    "mdpub",
		"version": "1.2.3",
		"license": "MIT",
		"title":   "FromINI",
	}
	for key, want := range checks {
		if got := st.GetString("program", key, ""); got != want {
			t.Errorf("program.%s = %q, want %q", key, got, want)
		}
	}
}

func TestLoadProjectBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "project.yaml", "name: [unclosed\n")
	if err := LoadProject(store.New(), path); err == nil {
		t.Error("expected a parse error")
	}
}
