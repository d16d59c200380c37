package blocks

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"mdpub/internal/store"
)

// listConverter stands in for the markdown converter.
var listConverter = ConverterFunc(func(src string) (string, error) {
	var sb strings.Builder
	sb.WriteString("<ul>")
	for _, line := range strings.Split(src, "\n") {
		sb.WriteString("<li>" + strings.TrimPrefix(line, "- ") + "</li>")
	}
	sb.WriteString("</ul>")
	return sb.String(), nil
})

func TestExtractMeta(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantBody string
		wantPage []string
		wantMeta map[string]string
	}{
		{
			name:     "leading block",
			raw:      "@@@\ntitle: Hello\n@@@\nBody text\n",
			wantBody: "Body text\n",
			wantPage: []string{"title", "text"},
			wantMeta: map[string]string{"title": "Hello"},
		},
		{
			name:     "no block",
			raw:      "Just a body\n@@@\ntitle: nope\n@@@\n",
			wantBody: "Just a body\n@@@\ntitle: nope\n@@@\n",
			wantPage: []string{"text"},
		},
		{
			name:     "spacing, empty values and junk lines",
			raw:      "@@@\n  author :  Jane Doe  \nempty:\nnot a pair\nurl: http://x.y/z\n@@@\n# Heading\n",
			wantBody: "# Heading\n",
			wantPage: []string{"author", "empty", "url", "text"},
			wantMeta: map[string]string{"author": "Jane Doe", "empty": "", "url": "http://x.y/z"},
		},
		{
			name:     "empty block",
			raw:      "@@@\n@@@\nrest",
			wantBody: "rest",
			wantPage: []string{"text"},
		},
		{
			name:     "block not at start",
			raw:      "\n@@@\ntitle: x\n@@@\n",
			wantBody: "\n@@@\ntitle: x\n@@@\n",
			wantPage: []string{"text"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.New()
			body := ExtractMeta(st, tt.raw)
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
			var keys []string
			for _, e := range st.Section(store.PageSection) {
				keys = append(keys, e.Key)
			}
			if !reflect.DeepEqual(keys, tt.wantPage) {
				t.Errorf("page keys = %v, want %v", keys, tt.wantPage)
			}
			for k, v := range tt.wantMeta {
				if got := st.GetString(store.PageSection, k, ""); got != v {
					t.Errorf("page.%s = %q, want %q", k, got, v)
				}
			}
			if got := st.GetString(store.PageSection, "text", ""); got != tt.wantBody {
				t.Errorf("page.text = %q", got)
			}
		})
	}
}

func TestExtractMetaResetsPage(t *testing.T) {
	st := store.New()
	ExtractMeta(st, "@@@\ntitle: First\nnav: x\n@@@\none")
	ExtractMeta(st, "@@@\ntitle: Second\n@@@\ntwo")

	if st.Has(store.PageSection, "nav") {
		t.Error("page.nav leaked from the previous document")
	}
	if got := st.GetString(store.PageSection, "title", ""); got != "Second" {
		t.Errorf("title = %q", got)
	}
}

func TestExtractNamed(t *testing.T) {
	st := store.New()
	body := "Intro\n@@@[#nav]\n- Home\n- About\n@@@\nMain text\n"

	got, err := ExtractNamed(st, body, listConverter)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Intro\nMain text\n" {
		t.Errorf("body = %q", got)
	}
	want := "\n<div id=\"nav\">\n<ul><li>Home</li><li>About</li></ul>\n</div>\n"
	if nav := st.GetString(store.PageSection, "nav", ""); nav != want {
		t.Errorf("page.nav = %q, want %q", nav, want)
	}
}

func TestExtractNamedSeveralBlocks(t *testing.T) {
	st := store.New()
	body := "top\n@@@[#a]\n- one\n@@@\n@@@[@b]\n- two\n@@@\n@@@[#empty]\n@@@\nbottom"

	got, err := ExtractNamed(st, body, listConverter)
	if err != nil {
		t.Fatal(err)
	}
	if got != "top\nbottom" {
		t.Errorf("body = %q", got)
	}
	if b := st.GetString(store.PageSection, "b", ""); !strings.HasPrefix(b, "\n<div class=\"b\">") {
		t.Errorf("page.b = %q", b)
	}
	if a := st.GetString(store.PageSection, "a", ""); !strings.Contains(a, "<li>one</li>") {
		t.Errorf("page.a = %q", a)
	}
	if !st.Has(store.PageSection, "empty") {
		t.Error("empty block not stored")
	}
}

func TestExtractNamedLeavesMalformedAndEscaped(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"escaped delimiter", "Show \\@@@ literally\n", "Show @@@ literally\n"},
		{"escaped once only", "a \\\\@@@ b", "a \\@@@ b"},
		{"no leading newline", "@@@[#x]\n- a\n@@@\n", "@@@[#x]\n- a\n@@@\n"},
		{"unterminated", "x\n@@@[#x]\n- a\n", "x\n@@@[#x]\n- a\n"},
		{"escaped closing inside block", "x\n@@@[#x]\n\\@@@\n@@@\ny", "x\ny"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractNamed(store.New(), tt.body, listConverter)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("ExtractNamed() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractNamedConverterError(t *testing.T) {
	boom := errors.New("boom")
	conv := ConverterFunc(func(string) (string, error) { return "", boom })
	_, err := ExtractNamed(store.New(), "x\n@@@[#a]\nb\n@@@\n", conv)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
}
