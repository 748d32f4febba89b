package lspadapter

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDocPosition(t *testing.T) {
	p := toDocPosition(protocol.Position{Line: 3, Character: 7})
	assert.Equal(t, 3, p.Line)
	assert.Equal(t, 7, p.Char)
}

func TestToDocRange(t *testing.T) {
	r := toDocRange(protocol.Range{
		Start: protocol.Position{Line: 1, Character: 0},
		End:   protocol.Position{Line: 2, Character: 4},
	})
	assert.Equal(t, 1, r.Start.Line)
	assert.Equal(t, 0, r.Start.Char)
	assert.Equal(t, 2, r.End.Line)
	assert.Equal(t, 4, r.End.Char)
}

func TestToDocChangesWholeDocument(t *testing.T) {
	changes := toDocChanges([]interface{}{
		protocol.TextDocumentContentChangeEventWhole{Text: "new text"},
	})

	require.Len(t, changes, 1)
	assert.Nil(t, changes[0].Range)
	assert.Equal(t, "new text", changes[0].Text)
}

func TestToDocChangesRangedReplacement(t *testing.T) {
	rng := protocol.Range{
		Start: protocol.Position{Line: 0, Character: 5},
		End:   protocol.Position{Line: 0, Character: 8},
	}
	changes := toDocChanges([]interface{}{
		protocol.TextDocumentContentChangeEvent{Range: &rng, Text: "bar"},
	})

	require.Len(t, changes, 1)
	require.NotNil(t, changes[0].Range)
	assert.Equal(t, 5, changes[0].Range.Start.Char)
	assert.Equal(t, "bar", changes[0].Text)
}

func TestToDocChangesEventWithNilRangeIsWholeDocument(t *testing.T) {
	changes := toDocChanges([]interface{}{
		protocol.TextDocumentContentChangeEvent{Range: nil, Text: "whole"},
	})

	require.Len(t, changes, 1)
	assert.Nil(t, changes[0].Range)
	assert.Equal(t, "whole", changes[0].Text)
}

func TestToDocChangesSequentialOrderPreserved(t *testing.T) {
	rng := protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   protocol.Position{Line: 0, Character: 1},
	}
	changes := toDocChanges([]interface{}{
		protocol.TextDocumentContentChangeEvent{Range: &rng, Text: "X"},
		protocol.TextDocumentContentChangeEventWhole{Text: "Y"},
	})

	require.Len(t, changes, 2)
	assert.Equal(t, "X", changes[0].Text)
	assert.Equal(t, "Y", changes[1].Text)
	assert.Nil(t, changes[1].Range)
}

func TestToDocChangesIgnoresUnrecognizedShape(t *testing.T) {
	changes := toDocChanges([]interface{}{"not a change event"})
	assert.Empty(t, changes)
}

func TestBoolPtr(t *testing.T) {
	p := boolPtr(true)
	require.NotNil(t, p)
	assert.True(t, *p)
}
