// internal/textedit/edit.go

// Package textedit queues edits against a string using rsc.io/edit and
// applies them in a single allocation.
package textedit

import (
	"regexp"

	"rsc.io/edit"
)

// A Buffer is a queue of edits to apply to a given string.
type Buffer struct {
	ed  *edit.Buffer
	src string
	n   int
}

// NewBuffer returns a buffer that accumulates changes to src.
func NewBuffer(src string) *Buffer {
	return &Buffer{ed: edit.NewBuffer([]byte(src)), src: src}
}

// InsertAtSubmatch inserts text at the start of submatch group of every
// match of re in the original string.
func (b *Buffer) InsertAtSubmatch(re *regexp.Regexp, group int, text string) {
	for _, m := range re.FindAllStringSubmatchIndex(b.src, -1) {
		if pos := m[2*group]; pos >= 0 {
			b.ed.Insert(pos, text)
			b.n++
		}
	}
}

// Edits reports how many edits are queued.
func (b *Buffer) Edits() int {
	return b.n
}

// String returns the original string with the queued edits applied.
func (b *Buffer) String() string {
	return b.ed.String()
}
