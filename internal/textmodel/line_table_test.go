package textmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSingleLine(t *testing.T) {
	lt := New("hello")
	assert.Equal(t, 1, lt.LineCount())
}

func TestUTF8OffsetOfBasic(t *testing.T) {
	lt := New("abc\ndef\nghi")

	off, ok := lt.UTF8OffsetOf(1, 1)
	require.True(t, ok)
	assert.Equal(t, 5, off) // "abc\n" (4 bytes) + 1
}

func TestUTF8OffsetOfOutOfRange(t *testing.T) {
	lt := New("abc")

	_, ok := lt.UTF8OffsetOf(-1, 0)
	assert.False(t, ok)

	_, ok = lt.UTF8OffsetOf(5, 0)
	assert.False(t, ok)

	_, ok = lt.UTF8OffsetOf(0, 100)
	assert.False(t, ok)
}

func TestPositionOfUTF8OffsetRoundTrip(t *testing.T) {
	text := "func foo() {\n  print(\"hi\")\n}\n"
	lt := New(text)

	for off := 0; off <= len(text); off++ {
		line, col, ok := lt.PositionOfUTF8Offset(off)
		if !ok {
			t.Fatalf("offset %d: expected ok", off)
		}
		back, ok := lt.UTF8OffsetOf(line, col)
		require.True(t, ok)
		assert.Equal(t, off, back, "round-trip mismatch at offset %d (line=%d col=%d)", off, line, col)
	}
}

func TestSurrogatePairHandling(t *testing.T) {
	// U+1F600 "😀" requires a UTF-16 surrogate pair (2 code units) and
	// 4 UTF-8 bytes.
	text := "a😀b"
	lt := New(text)

	// Column 0 is 'a', column 1 is the start of the emoji (UTF-16 unit 1),
	// column 3 is 'b' (after the 2-unit surrogate pair).
	off, ok := lt.UTF8OffsetOf(0, 3)
	require.True(t, ok)
	assert.Equal(t, 5, off) // 'a' (1 byte) + emoji (4 bytes)

	line, col, ok := lt.PositionOfUTF8Offset(5)
	require.True(t, ok)
	assert.Equal(t, 0, line)
	assert.Equal(t, 3, col)
}

func TestUTF16ColOf(t *testing.T) {
	lt := New("a😀b")

	col, ok := lt.UTF16ColOf(0, 5) // byte offset after emoji
	require.True(t, ok)
	assert.Equal(t, 3, col)

	// Splitting the emoji's bytes is not a valid boundary.
	_, ok = lt.UTF16ColOf(0, 2)
	assert.False(t, ok)
}

func TestMultilineOffsets(t *testing.T) {
	lt := New("line0\nline1\nline2")
	assert.Equal(t, 3, lt.LineCount())

	off, ok := lt.UTF8OffsetOf(2, 4)
	require.True(t, ok)
	assert.Equal(t, len("line0\n")+len("line1\n")+4, off)
}

func TestEmptyDocument(t *testing.T) {
	lt := New("")
	assert.Equal(t, 1, lt.LineCount())

	off, ok := lt.UTF8OffsetOf(0, 0)
	require.True(t, ok)
	assert.Equal(t, 0, off)

	line, col, ok := lt.PositionOfUTF8Offset(0)
	require.True(t, ok)
	assert.Equal(t, 0, line)
	assert.Equal(t, 0, col)
}
