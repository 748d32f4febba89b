package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd/fake"
	"github.com/swift-server/sourcekit-lsp-go/internal/textmodel"
)

// spec.md §8 end-to-end scenario 4: three tokens encode to the documented
// delta-coded 5-tuple stream.
func TestEncodeTokensMatchesDocumentedExample(t *testing.T) {
	const (
		typeKeyword uint32 = 12
		typeType    uint32 = 6
		typeFunc    uint32 = 10
	)

	tokens := []Token{
		{Line: 2, StartChar: 4, Length: 3, TypeIndex: typeKeyword},
		{Line: 2, StartChar: 10, Length: 2, TypeIndex: typeType},
		{Line: 4, StartChar: 0, Length: 5, TypeIndex: typeFunc},
	}

	got := EncodeTokens(tokens)
	want := []uint32{
		2, 4, 3, typeKeyword, 0,
		0, 6, 2, typeType, 0,
		2, 0, 5, typeFunc, 0,
	}
	assert.Equal(t, want, got)
}

func TestEncodeTokensEmpty(t *testing.T) {
	got := EncodeTokens(nil)
	assert.Equal(t, []uint32{}, got)
}

func TestComputeDeltaNoOldTokensReturnsFull(t *testing.T) {
	newTokens := []Token{{Line: 0, StartChar: 0, Length: 3, TypeIndex: 1}}
	result := ComputeDelta(nil, newTokens, "r1")
	require.False(t, result.IsDelta)
	require.NotNil(t, result.Full)
	assert.Equal(t, EncodeTokens(newTokens), result.Full.Data)
}

func TestComputeDeltaNoNewTokensDeletesAll(t *testing.T) {
	oldTokens := []Token{{Line: 0, StartChar: 0, Length: 3, TypeIndex: 1}}
	result := ComputeDelta(oldTokens, nil, "r2")
	require.True(t, result.IsDelta)
	require.NotNil(t, result.Delta)
	require.Len(t, result.Delta.Edits, 1)
	assert.Equal(t, uint32(0), result.Delta.Edits[0].Start)
	assert.Equal(t, uint32(len(oldTokens)*5), result.Delta.Edits[0].DeleteCount)
}

func TestComputeDeltaSmallChangeProducesDelta(t *testing.T) {
	oldTokens := []Token{
		{Line: 0, StartChar: 0, Length: 3, TypeIndex: 1},
		{Line: 1, StartChar: 0, Length: 3, TypeIndex: 1},
		{Line: 2, StartChar: 0, Length: 3, TypeIndex: 1},
		{Line: 3, StartChar: 0, Length: 3, TypeIndex: 1},
		{Line: 4, StartChar: 0, Length: 3, TypeIndex: 1},
	}
	newTokens := make([]Token, len(oldTokens))
	copy(newTokens, oldTokens)
	newTokens[2].Length = 4

	result := ComputeDelta(oldTokens, newTokens, "r3")
	require.True(t, result.IsDelta)
	require.NotNil(t, result.Delta)
}

func TestComputeDeltaLargeChangeFallsBackToFull(t *testing.T) {
	oldTokens := []Token{{Line: 0, StartChar: 0, Length: 1, TypeIndex: 1}}
	newTokens := []Token{
		{Line: 0, StartChar: 0, Length: 1, TypeIndex: 2},
		{Line: 1, StartChar: 0, Length: 1, TypeIndex: 2},
		{Line: 2, StartChar: 0, Length: 1, TypeIndex: 2},
	}

	result := ComputeDelta(oldTokens, newTokens, "r4")
	assert.False(t, result.IsDelta)
	require.NotNil(t, result.Full)
}

// spec.md §4.6 "classify each token by its kind UID; merge with
// syntax-map keyword/type tokens": a declaration's name and a nested
// reference both come from substructure, not the syntax map, so they
// must survive a walk even though neither kind UID ever appears there.
func TestClassifySubstructureWalksDeclAndNestedRef(t *testing.T) {
	r := fake.NewUIDResolver()
	ns := sourcekitd.ResolveNamespaces(r)
	kinds := NewKindTable(r)

	text := "class Foo {\n  bar()\n}\n"
	lines := textmodel.New(text)

	classUID := r.ResolveValue("source.lang.swift.decl.class")
	refFuncUID := r.ResolveValue("source.lang.swift.ref.function")

	refNode := sourcekitd.Dict{
		ns.Keys.Kind:   refFuncUID,
		ns.Keys.Offset: int64(14), // "bar" inside the method call
		ns.Keys.Length: int64(3),
	}
	classNode := sourcekitd.Dict{
		ns.Keys.Kind:         classUID,
		ns.Keys.NameOffset:   int64(6), // "Foo"
		ns.Keys.NameLength:   int64(3),
		ns.Keys.BodyOffset:   int64(10),
		ns.Keys.BodyLength:   int64(11),
		ns.Keys.SubStructure: sourcekitd.Array{refNode},
	}

	tokens := ClassifySubstructure(ns, kinds, lines, sourcekitd.Array{classNode})
	require.Len(t, tokens, 2)

	classIdx, ok := kinds.TokenTypeIndex(classUID)
	require.True(t, ok)
	refIdx, ok := kinds.TokenTypeIndex(refFuncUID)
	require.True(t, ok)

	assert.Equal(t, uint32(0), tokens[0].Line)
	assert.Equal(t, uint32(6), tokens[0].StartChar)
	assert.Equal(t, uint32(3), tokens[0].Length)
	assert.Equal(t, classIdx, tokens[0].TypeIndex)

	assert.Equal(t, uint32(1), tokens[1].Line)
	assert.Equal(t, uint32(2), tokens[1].StartChar)
	assert.Equal(t, refIdx, tokens[1].TypeIndex)
}

func TestClassifySubstructureSkipsUnknownKind(t *testing.T) {
	r := fake.NewUIDResolver()
	ns := sourcekitd.ResolveNamespaces(r)
	kinds := NewKindTable(r)

	text := "let x = 1\n"
	lines := textmodel.New(text)

	unknownUID := r.ResolveValue("source.lang.swift.decl.nonsense")
	node := sourcekitd.Dict{
		ns.Keys.Kind:       unknownUID,
		ns.Keys.NameOffset: int64(4),
		ns.Keys.NameLength: int64(1),
	}

	tokens := ClassifySubstructure(ns, kinds, lines, sourcekitd.Array{node})
	assert.Empty(t, tokens)
}

func TestMergeTokensConcatenatesAllSets(t *testing.T) {
	a := []Token{{Line: 0, StartChar: 0}}
	b := []Token{{Line: 1, StartChar: 0}}
	merged := MergeTokens(a, b)
	assert.Len(t, merged, 2)
}

func TestSortTokensOrdersByLineThenChar(t *testing.T) {
	tokens := []Token{
		{Line: 1, StartChar: 5},
		{Line: 0, StartChar: 9},
		{Line: 1, StartChar: 1},
	}
	SortTokens(tokens)
	require.Len(t, tokens, 3)
	assert.Equal(t, uint32(0), tokens[0].Line)
	assert.Equal(t, uint32(1), tokens[1].Line)
	assert.Equal(t, uint32(1), tokens[1].StartChar)
	assert.Equal(t, uint32(5), tokens[2].StartChar)
}
