package compose

import (
	"errors"
	"path/filepath"
	"testing"

	"mdpub/internal/store"
	"mdpub/internal/subst"
)

func TestComposeEndToEnd(t *testing.T) {
	st := store.New()
	st.SetString("program", "title", "MyTool")

	got, err := Compose(st, "Built by ${program.title}", "use", Location{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Built by MyTool" {
		t.Errorf("Compose() = %q", got)
	}
	if st.GetString(store.PageSection, "html", "") != got {
		t.Error("page.html not stored")
	}
}

func TestComposeUnescapes(t *testing.T) {
	st := store.New()
	st.SetString("page", "content", "<p>costs \\$5, see \\[note]</p>")

	got, err := Compose(st, "<main>${page.content}</main>", "use", Location{})
	if err != nil {
		t.Fatal(err)
	}
	if want := "<main><p>costs $5, see [note]</p></main>"; got != want {
		t.Errorf("Compose() = %q, want %q", got, want)
	}
}

func TestComposeUsesFallbackSection(t *testing.T) {
	st := store.New()
	st.SetString("use", "title", "Default Title")

	got, err := Compose(st, "<title>${page.title}</title>", "use", Location{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "<title>Default Title</title>" {
		t.Errorf("Compose() = %q", got)
	}
}

func TestComposeRelocatedAnchors(t *testing.T) {
	src := filepath.FromSlash("/work/content/guide/intro.md")
	dest := filepath.FromSlash("/work/public/guide/intro.html")
	loc := Location{
		Source:   src,
		DocRoot:  filepath.FromSlash("/work/content"),
		Dest:     dest,
		DestRoot: filepath.FromSlash("/work/public"),
	}
	st := store.New()
	st.SetString("page", "base", BaseHref(src, loc.DocRoot))

	got, err := Compose(st, `<base href="${page.base}"><a href="#top">top</a><a href="x.html">x</a>`, "use", loc)
	if err != nil {
		t.Fatal(err)
	}
	want := `<base href="../"><a href="guide/intro.html#top">top</a><a href="x.html">x</a>`
	if got != want {
		t.Errorf("Compose() = %q\nwant %q", got, want)
	}
}

func TestComposeInPlaceKeepsAnchors(t *testing.T) {
	loc := Location{
		Source:   filepath.FromSlash("/work/docs/a.md"),
		DocRoot:  filepath.FromSlash("/work/docs"),
		Dest:     filepath.FromSlash("/work/docs/a.html"),
		DestRoot: filepath.FromSlash("/work/docs"),
	}
	got, err := Compose(store.New(), `<a href="#x">x</a>`, "use", loc)
	if err != nil {
		t.Fatal(err)
	}
	if got != `<a href="#x">x</a>` {
		t.Errorf("Compose() = %q", got)
	}
}

func TestComposeNotConverged(t *testing.T) {
	st := store.New()
	st.SetString("a", "b", "${a.b}")
	_, err := Compose(st, "${a.b}", "", Location{})
	if !errors.Is(err, subst.ErrNotConverged) {
		t.Errorf("err = %v", err)
	}
}

func TestBaseHref(t *testing.T) {
	root := filepath.FromSlash("/work/content")
	if got := BaseHref(filepath.FromSlash("/work/content/index.md"), root); got != "" {
		t.Errorf("root page base = %q", got)
	}
	if got := BaseHref(filepath.FromSlash("/work/content/a/b/c.md"), root); got != "../../" {
		t.Errorf("nested page base = %q", got)
	}
}
