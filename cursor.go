package jiramark

import (
	"fmt"
	"unicode/utf8"
)

const eof = -1

// Cursor is an immutable view over the source text plus the half-open
// byte range [Start, End) already consumed by the expression that owns
// it.  Matching happens at End; a successful match produces a new
// Cursor with a larger or equal End, never a mutation.
type Cursor struct {
	input string
	start int
	end   int
}

// NewCursor returns a cursor anchored at the beginning of input with
// nothing consumed yet.
func NewCursor(input string) Cursor {
	return Cursor{input: input}
}

func (c Cursor) Input() string { return c.input }
func (c Cursor) Start() int    { return c.start }
func (c Cursor) End() int      { return c.end }

func (c Cursor) Range() Range {
	return NewRange(c.start, c.end)
}

// To extends the consumed range to a new end, keeping the start.
func (c Cursor) To(end int) Cursor {
	if end < c.end || end > len(c.input) {
		panic(fmt.Sprintf("jiramark: cursor extended to %d outside [%d, %d]", end, c.end, len(c.input)))
	}
	return Cursor{input: c.input, start: c.start, end: end}
}

// Take returns a cursor covering exactly the next n bytes, anchored
// at the current end.
func (c Cursor) Take(n int) Cursor {
	return Cursor{input: c.input, start: c.end, end: c.end + n}
}

// At returns a fresh cursor anchored at the current end with nothing
// consumed.  Sub-expressions start matching from here.
func (c Cursor) At() Cursor {
	return Cursor{input: c.input, start: c.end, end: c.end}
}

// Rest returns the unconsumed remainder of the input.
func (c Cursor) Rest() string {
	return c.input[c.end:]
}

// More reports whether any unconsumed input remains.
func (c Cursor) More() bool {
	return c.end < len(c.input)
}

// PeekRune decodes the rune at the cursor end, returning eof when the
// input is exhausted.
func (c Cursor) PeekRune() (rune, int) {
	if !c.More() {
		return eof, 0
	}
	r, size := utf8.DecodeRuneInString(c.input[c.end:])
	if size <= 0 {
		return utf8.RuneError, 1
	}
	return r, size
}

// Text returns the consumed slice of the input.
func (c Cursor) Text() string {
	return c.input[c.start:c.end]
}

func (c Cursor) String() string {
	return fmt.Sprintf("Cursor(%d..%d/%d)", c.start, c.end, len(c.input))
}
