package util

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestComputeBaseHref(t *testing.T) {
	root := filepath.FromSlash("/site/content")
	tests := []struct {
		dir  string
		want string
	}{
		{"/site/content", ""},
		{"/site/content/posts", "../"},
		{"/site/content/posts/2024/jan", "../../../"},
	}
	for _, tt := range tests {
		if got := ComputeBaseHref(filepath.FromSlash(tt.dir), root); got != tt.want {
			t.Errorf("ComputeBaseHref(%q) = %q, want %q", tt.dir, got, tt.want)
		}
	}
}

func TestRelHref(t *testing.T) {
	got := RelHref(filepath.FromSlash("/out/docs/a"), filepath.FromSlash("/out/css/style.css"))
	if got != "../../css/style.css" {
		t.Errorf("RelHref() = %q", got)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" a.css, ,b.css ,")
	if !reflect.DeepEqual(got, []string{"a.css", "b.css"}) {
		t.Errorf("SplitList() = %v", got)
	}
	if SplitList("") != nil {
		t.Error("SplitList(\"\") should be nil")
	}
}

func TestHTMLPath(t *testing.T) {
	if got := HTMLPath(filepath.FromSlash("posts/a.md")); got != filepath.FromSlash("posts/a.html") {
		t.Errorf("HTMLPath() = %q", got)
	}
}
