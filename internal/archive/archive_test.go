package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"mdpub/internal/store"
)

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"index.html":    "<p>home</p>",
		"css/style.css": "body{}",
		"guide/a.html":  "<p>a</p>",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	st := store.New()
	st.SetString("program", "name", "demo")
	st.SetString("program", "version", "0.1.0")

	// The archive lands inside the tree it bundles and must skip itself.
	jar := filepath.Join(dir, "site.jar")
	n, err := Write(jar, dir, st)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("entries = %d, want 4", n)
	}

	zr, err := zip.OpenReader(jar)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
		if f.Name != ManifestPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		if !strings.Contains(string(data), "Implementation-Version: 0.1.0") {
			t.Errorf("manifest = %q", data)
		}
	}
	if names[0] != ManifestPath {
		t.Errorf("manifest is not the first entry: %v", names)
	}
	sort.Strings(names)
	want := []string{ManifestPath, "css/style.css", "guide/a.html", "index.html"}
	sort.Strings(want)
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("entries = %v, want %v", names, want)
		}
	}
}

func TestManifestWithoutProgram(t *testing.T) {
	m := Manifest(store.New())
	if strings.Contains(m, "Implementation") {
		t.Errorf("unexpected implementation headers: %q", m)
	}
	if !strings.HasSuffix(m, "\r\n\r\n") {
		t.Errorf("manifest must end with a blank line: %q", m)
	}
}
