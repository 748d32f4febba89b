package docmanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	u := ParseURI("file:///a.swift")
	assert.Equal(t, "file", u.Scheme)

	u = ParseURI("untitled:Untitled-1")
	assert.Equal(t, "", u.Scheme) // no "://" separator

	u = ParseURI("git://repo/a.swift")
	assert.Equal(t, "git", u.Scheme)
}

func TestOpenAndLatestSnapshot(t *testing.T) {
	m := New()
	uri := ParseURI("file:///a.swift")

	snap := m.Open(uri, 1, "hello")
	assert.Equal(t, int64(1), snap.Version)

	got, ok := m.LatestSnapshot(uri)
	require.True(t, ok)
	assert.Equal(t, "hello", got.Text)
}

func TestCloseIsIdempotent(t *testing.T) {
	m := New()
	uri := ParseURI("file:///a.swift")

	m.Open(uri, 1, "hello")
	m.Close(uri)
	m.Close(uri) // must not panic

	_, ok := m.LatestSnapshot(uri)
	assert.False(t, ok)
}

func TestEditOnUnopenedDocumentReturnsNotOK(t *testing.T) {
	m := New()
	uri := ParseURI("file:///missing.swift")

	_, _, ok := m.Edit(uri, 2, []Change{{Text: "x"}}, nil)
	assert.False(t, ok)
}

func TestEditRangedReplacement(t *testing.T) {
	m := New()
	uri := ParseURI("file:///a.swift")
	m.Open(uri, 1, "func foo() {}\n")

	var events []ReplaceTextEvent
	snap, malformed, ok := m.Edit(uri, 2, []Change{
		{
			Range: &Range{Start: Position{Line: 0, Char: 5}, End: Position{Line: 0, Char: 8}},
			Text:  "bar",
		},
	}, func(ev ReplaceTextEvent) { events = append(events, ev) })

	require.True(t, ok)
	assert.Empty(t, malformed)
	assert.Equal(t, "func bar() {}\n", snap.Text)
	assert.Equal(t, int64(2), snap.Version)

	require.Len(t, events, 1)
	assert.Equal(t, 5, events[0].ByteOffset)
	assert.Equal(t, 3, events[0].ByteLength)
	assert.Equal(t, "bar", events[0].Replacement)
	assert.Equal(t, "func foo() {}\n", events[0].Before.Text)
}

func TestEditFullTextReplacement(t *testing.T) {
	m := New()
	uri := ParseURI("file:///a.swift")
	m.Open(uri, 1, "old text")

	snap, _, ok := m.Edit(uri, 2, []Change{{Text: "new text"}}, nil)
	require.True(t, ok)
	assert.Equal(t, "new text", snap.Text)
}

func TestEditSequentialChangesChainBeforeSnapshots(t *testing.T) {
	m := New()
	uri := ParseURI("file:///a.swift")
	m.Open(uri, 1, "abc")

	var befores []string
	_, _, ok := m.Edit(uri, 2, []Change{
		{Range: &Range{Start: Position{0, 0}, End: Position{0, 1}}, Text: "X"},
		{Range: &Range{Start: Position{0, 1}, End: Position{0, 2}}, Text: "Y"},
	}, func(ev ReplaceTextEvent) { befores = append(befores, ev.Before.Text) })

	require.True(t, ok)
	require.Len(t, befores, 2)
	assert.Equal(t, "abc", befores[0])
	assert.Equal(t, "Xbc", befores[1]) // second change sees the result of the first
}

func TestEditMalformedRangeIsSkippedNotFatal(t *testing.T) {
	m := New()
	uri := ParseURI("file:///a.swift")
	m.Open(uri, 1, "abc")

	snap, malformed, ok := m.Edit(uri, 2, []Change{
		{Range: &Range{Start: Position{Line: 5, Char: 0}, End: Position{Line: 5, Char: 1}}, Text: "z"},
		{Range: &Range{Start: Position{0, 0}, End: Position{0, 1}}, Text: "Z"},
	}, nil)

	require.True(t, ok)
	assert.Equal(t, []int{0}, malformed)
	assert.Equal(t, "Zbc", snap.Text) // second, valid change still applied
}

func TestResetClearsAllDocuments(t *testing.T) {
	m := New()
	m.Open(ParseURI("file:///a.swift"), 1, "a")
	m.Open(ParseURI("file:///b.swift"), 1, "b")

	m.Reset()

	assert.Empty(t, m.OpenURIs())
}

func TestOpenURIsSorted(t *testing.T) {
	m := New()
	m.Open(ParseURI("file:///b.swift"), 1, "")
	m.Open(ParseURI("file:///a.swift"), 1, "")

	assert.Equal(t, []string{"file:///a.swift", "file:///b.swift"}, m.OpenURIs())
}
