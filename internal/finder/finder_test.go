package finder

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func tree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range []string{
		"index.md",
		"notes.txt",
		"guide/intro.md",
		"guide/setup.markdown",
		"guide/deep/ref.md",
		".hidden/secret.md",
	} {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func rel(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		r, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = filepath.ToSlash(r)
	}
	return out
}

func TestFind(t *testing.T) {
	root := tree(t)
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"everything", nil, []string{"guide/deep/ref.md", "guide/intro.md", "guide/setup.markdown", "index.md"}},
		{"single file", []string{"index.md"}, []string{"index.md"}},
		{"directory", []string{"guide/deep"}, []string{"guide/deep/ref.md"}},
		{"glob", []string{"guide/*.md"}, []string{"guide/intro.md"}},
		{"duplicates", []string{"index.md", "*.md"}, []string{"index.md"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Find(root, tt.args)
			if err != nil {
				t.Fatal(err)
			}
			if g := rel(t, root, got); !reflect.DeepEqual(g, tt.want) {
				t.Errorf("Find() = %v, want %v", g, tt.want)
			}
		})
	}
}

func TestFindErrors(t *testing.T) {
	root := tree(t)
	if _, err := Find(root, []string{"missing/*.md"}); err == nil {
		t.Error("expected an error for an empty match")
	}
	outside := filepath.Join(t.TempDir(), "x.md")
	if err := os.WriteFile(outside, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Find(root, []string{outside}); err == nil {
		t.Error("expected an error for a file outside the root")
	}
}
