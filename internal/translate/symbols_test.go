package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd/fake"
	"github.com/swift-server/sourcekit-lsp-go/internal/textmodel"
)

func TestDocumentSymbolsBuildsNestedTree(t *testing.T) {
	r := fake.NewUIDResolver()
	ns := sourcekitd.ResolveNamespaces(r)
	kinds := NewKindTable(r)

	text := "class Foo {\n  func bar() {}\n}\n"
	lines := textmodel.New(text)

	classUID := r.ResolveValue("source.lang.swift.decl.class")
	methodUID := r.ResolveValue("source.lang.swift.decl.function.method.instance")

	method := sourcekitd.Dict{
		ns.Keys.Name_:      "bar()",
		ns.Keys.Kind:       methodUID,
		ns.Keys.BodyOffset: int64(14),
		ns.Keys.BodyLength: int64(15),
	}
	class := sourcekitd.Dict{
		ns.Keys.Name_:       "Foo",
		ns.Keys.Kind:        classUID,
		ns.Keys.BodyOffset:  int64(0),
		ns.Keys.BodyLength:  int64(30),
		ns.Keys.NameOffset:  int64(6),
		ns.Keys.NameLength:  int64(3),
		ns.Keys.SubStructure: sourcekitd.Array{method},
	}

	symbols := DocumentSymbols(ns, kinds, lines, sourcekitd.Array{class})
	require.Len(t, symbols, 1)

	got := symbols[0]
	assert.Equal(t, "Foo", got.Name)
	assert.Equal(t, protocol.SymbolKindClass, got.Kind)
	assert.Equal(t, uint32(0), got.SelectionRange.Start.Line)
	assert.Equal(t, uint32(6), got.SelectionRange.Start.Character)
	require.Len(t, got.Children, 1)
	assert.Equal(t, "bar()", got.Children[0].Name)
	assert.Equal(t, protocol.SymbolKindMethod, got.Children[0].Kind)
}

func TestDocumentSymbolsDropsNodeMissingName(t *testing.T) {
	r := fake.NewUIDResolver()
	ns := sourcekitd.ResolveNamespaces(r)
	kinds := NewKindTable(r)
	lines := textmodel.New("class Foo {}\n")

	classUID := r.ResolveValue("source.lang.swift.decl.class")
	malformed := sourcekitd.Dict{
		ns.Keys.Kind:       classUID,
		ns.Keys.BodyOffset: int64(0),
		ns.Keys.BodyLength: int64(12),
	}

	symbols := DocumentSymbols(ns, kinds, lines, sourcekitd.Array{malformed})
	assert.Empty(t, symbols)
}

func TestDocumentSymbolsDropsUnknownKind(t *testing.T) {
	r := fake.NewUIDResolver()
	ns := sourcekitd.ResolveNamespaces(r)
	kinds := NewKindTable(r)
	lines := textmodel.New("class Foo {}\n")

	unknownUID := r.ResolveValue("source.lang.swift.decl.nonsense")
	node := sourcekitd.Dict{
		ns.Keys.Name_:      "Foo",
		ns.Keys.Kind:       unknownUID,
		ns.Keys.BodyOffset: int64(0),
		ns.Keys.BodyLength: int64(12),
	}

	symbols := DocumentSymbols(ns, kinds, lines, sourcekitd.Array{node})
	assert.Empty(t, symbols)
}

func TestByteRangeToLSPOutOfRangeIsAbsent(t *testing.T) {
	lines := textmodel.New("abc\n")
	_, ok := byteRangeToLSP(lines, 0, 1000)
	assert.False(t, ok)
}
