package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd/fake"
)

func TestHoverPrefersDocXMLOverAnnotatedDecl(t *testing.T) {
	r := fake.NewUIDResolver()
	ns := sourcekitd.ResolveNamespaces(r)

	info := sourcekitd.Dict{
		ns.Keys.Name_:        "foo(_:)",
		ns.Keys.DocFullAsXML: "<Function><Name>foo</Name><Abstract>Does a thing.</Abstract></Function>",
		ns.Keys.AnnotatedDecl: "<decl>func foo(_ x: Int)</decl>",
	}

	hover, ok := Hover(ns, info)
	require.True(t, ok)
	content, ok := hover.Contents.(protocol.MarkupContent)
	require.True(t, ok)
	assert.Equal(t, protocol.MarkupKindMarkdown, content.Kind)
	assert.Contains(t, content.Value, "Does a thing.")
	assert.NotContains(t, content.Value, "func foo")
}

func TestHoverFallsBackToAnnotatedDecl(t *testing.T) {
	r := fake.NewUIDResolver()
	ns := sourcekitd.ResolveNamespaces(r)

	info := sourcekitd.Dict{
		ns.Keys.Name_:         "foo(_:)",
		ns.Keys.AnnotatedDecl: "<decl>func foo(_ x: Int)</decl>",
	}

	hover, ok := Hover(ns, info)
	require.True(t, ok)
	content := hover.Contents.(protocol.MarkupContent)
	assert.Contains(t, content.Value, "```swift")
	assert.Contains(t, content.Value, "func foo(_ x: Int)")
}

func TestHoverMissingNameIsAbsent(t *testing.T) {
	r := fake.NewUIDResolver()
	ns := sourcekitd.ResolveNamespaces(r)

	_, ok := Hover(ns, sourcekitd.Dict{})
	assert.False(t, ok)
}

func TestEscapeMarkdownNameEscapesSpecialCharacters(t *testing.T) {
	assert.Equal(t, `foo\(\_x\_\)`, escapeMarkdownName("foo(_x_)"))
}
