// Package textmodel provides UTF-8/UTF-16 position arithmetic over document
// text. LSP positions are UTF-16 (line, character); the compiler service
// speaks UTF-8 byte offsets. Confusing the two is the core invariant this
// package exists to prevent.
package textmodel

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"
)

// lineInfo records one line's extent within the document, plus its UTF-16
// length computed lazily (most lines never need it).
type lineInfo struct {
	byteOffset int // byte offset of the line's first byte
	byteLen    int // byte length, excluding the line terminator
	utf16Len   int // -1 until computed
}

// LineTable answers UTF-8-byte-offset <-> (line, UTF-16 column) queries in
// O(log n) time. It is built once per document snapshot and is immutable
// thereafter, so it is safe to share across goroutines without locking.
type LineTable struct {
	text  string
	lines []lineInfo
}

// New builds a LineTable over text. Lines are split on '\n'; a trailing
// '\r' is treated as part of the line's content (LSP counts it as a
// character), matching how editors usually report CRLF documents.
func New(text string) *LineTable {
	lt := &LineTable{text: text}

	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lt.lines = append(lt.lines, lineInfo{byteOffset: start, byteLen: i - start, utf16Len: -1})
			start = i + 1
		}
	}
	lt.lines = append(lt.lines, lineInfo{byteOffset: start, byteLen: len(text) - start, utf16Len: -1})

	return lt
}

// LineCount returns the number of lines in the document (always >= 1).
func (lt *LineTable) LineCount() int {
	return len(lt.lines)
}

// lineText returns the raw UTF-8 bytes of line, excluding its terminator.
func (lt *LineTable) lineText(line int) string {
	li := lt.lines[line]
	return lt.text[li.byteOffset : li.byteOffset+li.byteLen]
}

// utf16LenOf returns the UTF-16 length of line, computing and caching it on
// first use.
func (lt *LineTable) utf16LenOf(line int) int {
	li := &lt.lines[line]
	if li.utf16Len < 0 {
		li.utf16Len = utf16Length(lt.lineText(line))
	}
	return li.utf16Len
}

// UTF8OffsetOf converts an LSP (line, UTF-16 column) position to a UTF-8
// byte offset into the document. Returns ok=false for out-of-range input
// (negative line, line past the end, or a column beyond the line's UTF-16
// length) rather than an error — callers decide whether that is a client
// bug, per the "absent, not error" rule.
func (lt *LineTable) UTF8OffsetOf(line, utf16Col int) (int, bool) {
	if line < 0 || line >= len(lt.lines) || utf16Col < 0 {
		return 0, false
	}

	lineStr := lt.lineText(line)
	byteCol, ok := utf16ColToByteCol(lineStr, utf16Col)
	if !ok {
		return 0, false
	}

	return lt.lines[line].byteOffset + byteCol, true
}

// PositionOfUTF8Offset converts a UTF-8 byte offset into the document to an
// LSP (line, UTF-16 column) position. Returns ok=false if off is negative or
// past the end of the text.
func (lt *LineTable) PositionOfUTF8Offset(off int) (line, utf16Col int, ok bool) {
	if off < 0 || off > len(lt.text) {
		return 0, 0, false
	}

	// Binary search for the line whose byte range contains off.
	idx := sort.Search(len(lt.lines), func(i int) bool {
		return lt.lines[i].byteOffset > off
	}) - 1
	if idx < 0 {
		idx = 0
	}

	li := lt.lines[idx]
	byteCol := off - li.byteOffset
	if byteCol > li.byteLen {
		// off falls inside the line terminator itself; clamp to end-of-line.
		byteCol = li.byteLen
	}

	col, ok := byteColToUTF16Col(lt.lineText(idx), byteCol)
	if !ok {
		return 0, 0, false
	}

	return idx, col, true
}

// UTF16ColOf converts a (line, UTF-8 byte column) position to a UTF-16
// column on that line. Returns ok=false for an out-of-range line or a byte
// column that does not land on a rune boundary within the line.
func (lt *LineTable) UTF16ColOf(line, utf8Col int) (int, bool) {
	if line < 0 || line >= len(lt.lines) || utf8Col < 0 {
		return 0, false
	}

	lineStr := lt.lineText(line)
	if utf8Col > len(lineStr) {
		return 0, false
	}

	return byteColToUTF16Col(lineStr, utf8Col)
}

// utf16ColToByteCol converts a UTF-16 column within a single line (no
// newlines) to a UTF-8 byte column. ok is false if utf16Col exceeds the
// line's UTF-16 length.
func utf16ColToByteCol(line string, utf16Col int) (int, bool) {
	if utf16Col == 0 {
		return 0, true
	}

	byteCol := 0
	units := 0

	for _, r := range line {
		if units >= utf16Col {
			return byteCol, true
		}
		units += utf16RuneUnits(r)
		byteCol += utf8.RuneLen(r)
	}

	if units == utf16Col {
		return byteCol, true
	}

	return 0, false
}

// byteColToUTF16Col converts a UTF-8 byte column within a single line to a
// UTF-16 column. byteCol must land on a rune boundary (the caller-supplied
// offset came from LSP or from a validated range, never from the middle of
// a multi-byte rune).
func byteColToUTF16Col(line string, byteCol int) (int, bool) {
	if byteCol == 0 {
		return 0, true
	}
	if byteCol > len(line) {
		return 0, false
	}

	units := 0
	bytes := 0

	for _, r := range line {
		if bytes >= byteCol {
			break
		}
		bytes += utf8.RuneLen(r)
		units += utf16RuneUnits(r)
	}

	if bytes != byteCol {
		// byteCol split a multi-byte rune: not a valid boundary.
		return 0, false
	}

	return units, true
}

// utf16RuneUnits returns how many UTF-16 code units r occupies: 1 for BMP
// runes, 2 for runes requiring a surrogate pair.
func utf16RuneUnits(r rune) int {
	if r > 0xFFFF {
		return 2
	}
	return 1
}

// utf16Length returns the length of s in UTF-16 code units.
func utf16Length(s string) int {
	n := 0
	for _, r := range s {
		n += utf16RuneUnits(r)
	}
	return n
}

// EncodeUTF16 is exposed for callers (translators) that need raw UTF-16
// code units, e.g. to measure identifier lengths for semantic tokens.
func EncodeUTF16(s string) []uint16 {
	return utf16.Encode([]rune(s))
}
