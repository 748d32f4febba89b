package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd/fake"
)

func TestKindTableMapsKnownSymbolKinds(t *testing.T) {
	r := fake.NewUIDResolver()
	kinds := NewKindTable(r)

	classUID := r.ResolveValue("source.lang.swift.decl.class")
	kind, ok := kinds.SymbolKind(classUID)
	assert.True(t, ok)
	assert.Equal(t, uint32(5), uint32(kind)) // protocol.SymbolKindClass == 5
}

func TestKindTableUnknownSymbolKindIsAbsent(t *testing.T) {
	r := fake.NewUIDResolver()
	kinds := NewKindTable(r)

	unknown := r.ResolveValue("source.lang.swift.decl.nonsense")
	_, ok := kinds.SymbolKind(unknown)
	assert.False(t, ok)
}

func TestKindTableMapsTokenTypeIndex(t *testing.T) {
	r := fake.NewUIDResolver()
	kinds := NewKindTable(r)

	keywordUID := r.ResolveValue("source.lang.swift.syntaxtype.keyword")
	idx, ok := kinds.TokenTypeIndex(keywordUID)
	assert.True(t, ok)
	assert.Equal(t, tokenTypeIndex["keyword"], idx)
}

func TestKindTableIsColorLiteral(t *testing.T) {
	r := fake.NewUIDResolver()
	kinds := NewKindTable(r)

	colorUID := r.ResolveValue("source.lang.swift.expr.object_literal.color")
	assert.True(t, kinds.IsColorLiteral(colorUID))

	other := r.ResolveValue("source.lang.swift.decl.class")
	assert.False(t, kinds.IsColorLiteral(other))
}
