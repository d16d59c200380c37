// internal/subst/subst.go
package subst

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"mdpub/internal/store"
)

// MaxPasses bounds the fixed-point loop. Cyclic references such as
// a.x = "${a.x}" never settle and hit this cap.
const MaxPasses = 100

// MaxGrowth bounds how large the text may get, as a multiple of the input
// plus everything the store holds. A value that contains itself more than
// once, such as a.x = "${a.x}${a.x}", grows without settling and hits this
// limit long before MaxPasses.
const MaxGrowth = 16

// Sentinel is written in place of a placeholder that has no section part.
const Sentinel = "ERROR: Substitution!"

var ErrNotConverged = errors.New("substitution did not converge")

// placeholder matches ${section.key}. Both groups are optional so that
// malformed references like ${key} or ${} are still found and reported.
var placeholder = regexp.MustCompile(`\$\{(?:(\w+)\.)?(\w+)?\}`)

// escapedDollar stands in for the '$' of an escaped placeholder until the
// loop is over, so later passes cannot resolve it.
const escapedDollar = "\uE000"

// Result is the outcome of a Substitute call.
type Result struct {
	Text        string
	Substituted bool
	Passes      int
}

// Substitute resolves every ${section.key} in text against st, using
// fallback as the secondary section, until no placeholder is left.
// A placeholder preceded by an odd number of backslashes is escaped: one
// backslash is dropped and the placeholder is kept as literal text.
func Substitute(st *store.Store, text, fallback string) (Result, error) {
	res := Result{}
	limit := MaxGrowth * (len(text) + st.Size())
	for {
		out, n, last := pass(st, text, fallback)
		text = out
		if n == 0 {
			break
		}
		res.Substituted = true
		res.Passes++
		if res.Passes >= MaxPasses && placeholder.MatchString(text) {
			res.Text = strings.ReplaceAll(text, escapedDollar, "$")
			return res, fmt.Errorf("%w after %d passes, last reference %s", ErrNotConverged, res.Passes, last)
		}
		if len(text) > limit {
			res.Text = strings.ReplaceAll(text, escapedDollar, "$")
			return res, fmt.Errorf("%w: text grew to %d bytes after %d passes, last reference %s", ErrNotConverged, len(text), res.Passes, last)
		}
	}
	res.Text = strings.ReplaceAll(text, escapedDollar, "$")
	return res, nil
}

// pass performs one left-to-right scan. It returns the rewritten text, the
// number of placeholders resolved, and the last one it saw.
func pass(st *store.Store, text, fallback string) (string, int, string) {
	matches := placeholder.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, 0, ""
	}

	var sb strings.Builder
	n := 0
	last := ""
	prev := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if backslashesBefore(text, prev, start)%2 == 1 {
			sb.WriteString(text[prev : start-1])
			sb.WriteString(escapedDollar)
			sb.WriteString(text[start+1 : end])
			prev = end
			continue
		}

		sb.WriteString(text[prev:start])
		last = text[start:end]
		if m[2] < 0 || m[4] < 0 {
			sb.WriteString(Sentinel)
		} else {
			sb.WriteString(st.GetString(text[m[2]:m[3]], text[m[4]:m[5]], fallback))
		}
		n++
		prev = end
	}
	sb.WriteString(text[prev:])
	return sb.String(), n, last
}

func backslashesBefore(text string, floor, pos int) int {
	n := 0
	for i := pos - 1; i >= floor && text[i] == '\\'; i-- {
		n++
	}
	return n
}

// Unescape drops the leading backslash of every occurrence of the given
// escape sequences, e.g. Unescape(s, `\$`, `\[`).
func Unescape(text string, seqs ...string) string {
	for _, seq := range seqs {
		if len(seq) < 2 || seq[0] != '\\' {
			continue
		}
		text = strings.ReplaceAll(text, seq, seq[1:])
	}
	return text
}

// Escape is the inverse of Unescape for a single sequence such as "${".
func Escape(text, seq string) string {
	return strings.ReplaceAll(text, seq, `\`+seq)
}
