package jiramark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorConsume(t *testing.T) {
	c := NewCursor("hello")
	assert.Equal(t, 0, c.Start())
	assert.Equal(t, 0, c.End())
	assert.Equal(t, "hello", c.Rest())
	assert.True(t, c.More())

	c = c.To(3)
	assert.Equal(t, "hel", c.Text())
	assert.Equal(t, "lo", c.Rest())
	assert.Equal(t, NewRange(0, 3), c.Range())

	sub := c.At()
	assert.Equal(t, 3, sub.Start())
	assert.Equal(t, 3, sub.End())
	assert.Equal(t, "", sub.Text())

	taken := c.Take(2)
	assert.Equal(t, "lo", taken.Text())
	assert.False(t, taken.More())
}

func TestCursorToBounds(t *testing.T) {
	c := NewCursor("ab").To(1)
	assert.Panics(t, func() { c.To(0) })
	assert.Panics(t, func() { c.To(3) })
	assert.NotPanics(t, func() { c.To(1) })
}

func TestCursorPeekRune(t *testing.T) {
	c := NewCursor("héllo")
	r, size := c.PeekRune()
	assert.Equal(t, 'h', r)
	assert.Equal(t, 1, size)

	r, size = c.To(1).PeekRune()
	assert.Equal(t, 'é', r)
	assert.Equal(t, 2, size)

	r, size = NewCursor("").PeekRune()
	assert.Equal(t, rune(eof), r)
	assert.Equal(t, 0, size)
}

func TestLocationAt(t *testing.T) {
	pi := newPosIndex("ab\ncdé\nf")

	tests := []struct {
		cursor int
		line   int
		column int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{2, 1, 3},
		{3, 2, 1},
		{5, 2, 3},
		{7, 2, 4},
		{8, 3, 1},
	}
	for _, tt := range tests {
		loc := pi.LocationAt(tt.cursor)
		assert.Equal(t, tt.line, loc.Line, "cursor %d", tt.cursor)
		assert.Equal(t, tt.column, loc.Column, "cursor %d", tt.cursor)
		assert.Equal(t, tt.cursor, loc.Cursor)
	}
}

func TestParseFailureDeepest(t *testing.T) {
	inner := failf(7, "expected `x`")
	outer := failWrap(2, failWrap(5, inner, "expected middle"), "expected outer")

	require.Equal(t, inner, outer.Deepest())
	assert.Equal(t, []string{"expected outer", "expected middle", "expected `x`"}, outer.Chain())
}
