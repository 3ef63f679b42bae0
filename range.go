package jiramark

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// Range is a half-open byte interval [Start, End) within the input.
type Range struct{ Start, End int }

func NewRange(start, end int) Range {
	return Range{Start: start, End: end}
}

func (r Range) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

func (r Range) Str(input string) string {
	return input[r.Start:r.End]
}

func (r Range) Len() int {
	return r.End - r.Start
}

func (r Range) Contains(other Range) bool {
	return other.Start >= r.Start && other.End <= r.End
}

// Location is a 1-indexed line/column pair resolved from a byte
// offset.  Columns count runes, not bytes.
type Location struct {
	Line   int
	Column int
	Cursor int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// posIndex resolves byte offsets into line/column Locations.  Line
// starts are indexed once; columns are computed by scanning the line
// prefix, which is fine for diagnostics.
type posIndex struct {
	input string

	// lineStart holds 0-based byte offsets of each line start
	lineStart []int
}

func newPosIndex(input string) *posIndex {
	lineStart := make([]int, 1, 64)
	lineStart[0] = 0
	for i := 0; i < len(input); i++ {
		if input[i] == '\n' {
			lineStart = append(lineStart, i+1)
		}
	}
	return &posIndex{input: input, lineStart: lineStart}
}

func (pi *posIndex) LocationAt(cursor int) Location {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(pi.input) {
		cursor = len(pi.input)
	}

	// Find first lineStart > cursor, then step back one.
	lineIdx := sort.Search(len(pi.lineStart), func(i int) bool {
		return pi.lineStart[i] > cursor
	}) - 1
	if lineIdx < 0 {
		lineIdx = 0
	}

	col := utf8.RuneCountInString(pi.input[pi.lineStart[lineIdx]:cursor]) + 1

	return Location{
		Line:   lineIdx + 1,
		Column: col,
		Cursor: cursor,
	}
}
