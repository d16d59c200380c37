// internal/blocks/meta.go
package blocks

import (
	"regexp"
	"strings"

	"mdpub/internal/store"
)

// metaBlock matches a @@@ delimited block at the very start of a document.
var metaBlock = regexp.MustCompile(`(?s)\A@@@\r?\n(?:(.*?)\r?\n)?@@@(?:\r?\n|\z)`)

var metaLine = regexp.MustCompile(`^\s*(\w+)\s*:\s*(.*?)\s*$`)

// ExtractMeta strips the leading meta-block from raw and stores each
// "key: value" line as page.key. The page section is cleared first, so
// nothing from a previous document survives. The remaining body is stored
// as page.text and returned.
func ExtractMeta(st *store.Store, raw string) string {
	st.ClearSection(store.PageSection)

	body := raw
	if m := metaBlock.FindStringSubmatchIndex(raw); m != nil {
		if m[2] >= 0 {
			for _, kv := range ParseMeta(raw[m[2]:m[3]]) {
				st.SetString(store.PageSection, kv[0], kv[1])
			}
		}
		body = raw[m[1]:]
	}

	st.SetString(store.PageSection, "text", body)
	return body
}

// ParseMeta parses "key: value" lines, in order. Lines that do not follow
// the grammar are ignored.
func ParseMeta(block string) [][2]string {
	var out [][2]string
	for _, line := range strings.Split(block, "\n") {
		sm := metaLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if sm == nil {
			continue
		}
		out = append(out, [2]string{sm[1], sm[2]})
	}
	return out
}
