// internal/blocks/named.go
package blocks

import (
	"fmt"
	"regexp"

	"mdpub/internal/store"
	"mdpub/internal/subst"
)

// Converter turns a markdown fragment into HTML.
type Converter interface {
	Convert(src string) (string, error)
}

// ConverterFunc adapts an ordinary function to the Converter interface.
type ConverterFunc func(src string) (string, error)

func (f ConverterFunc) Convert(src string) (string, error) {
	return f(src)
}

// namedBlock matches @@@[#name] or @@@[@name] up to a closing @@@ line.
// The opening delimiter must also follow a newline; that is checked by
// ExtractNamed since the match may start anywhere.
var namedBlock = regexp.MustCompile(`(?s)@@@\[([#@])(\w+)\]\r?\n(?:(.*?)\r?\n)?@@@(?:\r?\n|\z)`)

// ExtractNamed removes every named block from body, in document order. The
// content of each block is converted, wrapped in a div carrying the block
// name as id (#) or class (@), and stored as page.<name>. Escaped
// delimiters (\@@@) are unescaped once all blocks are gone.
func ExtractNamed(st *store.Store, body string, conv Converter) (string, error) {
	pos := 0
	for pos < len(body) {
		m := namedBlock.FindStringSubmatchIndex(body[pos:])
		if m == nil {
			break
		}
		for i := range m {
			if m[i] >= 0 {
				m[i] += pos
			}
		}
		start, end := m[0], m[1]
		if start == 0 || body[start-1] != '\n' {
			pos = start + 1
			continue
		}

		sigil, name := body[m[2]:m[3]], body[m[4]:m[5]]
		content := ""
		if m[6] >= 0 {
			content = body[m[6]:m[7]]
		}

		html, err := conv.Convert(content)
		if err != nil {
			return body, fmt.Errorf("block %s%s: %w", sigil, name, err)
		}
		st.SetString(store.PageSection, name, wrap(sigil, name, html))

		body = body[:start] + body[end:]
		pos = start
	}
	return subst.Unescape(body, `\@@@`), nil
}

func wrap(sigil, name, html string) string {
	attr := "id"
	if sigil == "@" {
		attr = "class"
	}
	return fmt.Sprintf("\n<div %s=\"%s\">\n%s\n</div>\n", attr, name, html)
}
