package translate

import (
	"fmt"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
)

// Hover builds markdown hover contents from a cursor_info response, per
// spec.md §4.6: "if the cursor has a name, build markdown as the
// backslash-escaped name followed by the XML documentation rendered to
// markdown, or the annotated declaration rendered likewise." Returns
// false if the response carries no usable name.
func Hover(ns sourcekitd.Namespaces, cursorInfo sourcekitd.Dict) (protocol.Hover, bool) {
	name, ok := cursorInfo.GetString(ns.Keys.Name_)
	if !ok || name == "" {
		return protocol.Hover{}, false
	}

	var body string
	if doc, ok := cursorInfo.GetString(ns.Keys.DocFullAsXML); ok && doc != "" {
		body = renderDocXMLAsMarkdown(doc)
	} else if decl, ok := cursorInfo.GetString(ns.Keys.AnnotatedDecl); ok && decl != "" {
		body = renderAnnotatedDeclAsMarkdown(decl)
	}

	value := escapeMarkdownName(name)
	if body != "" {
		value = value + "\n\n" + body
	}

	return protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: value,
		},
	}, true
}

func escapeMarkdownName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '\\', '`', '*', '_', '{', '}', '[', ']', '(', ')', '#', '+', '-', '.', '!':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// renderDocXMLAsMarkdown strips every tag of the compiler service's
// doc-comment XML and keeps the trimmed text content. No tag gets markdown
// formatting of its own: Declaration and Abstract blocks come out as plain
// text, not fenced code.
func renderDocXMLAsMarkdown(xml string) string {
	return stripXMLTags(xml)
}

func renderAnnotatedDeclAsMarkdown(decl string) string {
	return fmt.Sprintf("```swift\n%s\n```", stripXMLTags(decl))
}

func stripXMLTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
