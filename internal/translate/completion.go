package translate

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
)

// CompletionItems translates a codecomplete.open/update results array into
// LSP completion items. A result missing a label is dropped; everything
// else degrades gracefully, since a completion list should stay
// permissive about any one malformed entry rather than come back empty
// (spec.md §7 "drop that item and continue").
func CompletionItems(ns sourcekitd.Namespaces, kinds *KindTable, arr sourcekitd.Array) []protocol.CompletionItem {
	var out []protocol.CompletionItem
	for _, v := range arr {
		d, ok := v.(sourcekitd.Dict)
		if !ok {
			continue
		}
		item, ok := completionItem(ns, kinds, d)
		if !ok {
			continue
		}
		out = append(out, item)
	}
	return out
}

func completionItem(ns sourcekitd.Namespaces, kinds *KindTable, d sourcekitd.Dict) (protocol.CompletionItem, bool) {
	label, ok := d.GetString(ns.Keys.Name_)
	if !ok {
		return protocol.CompletionItem{}, false
	}

	item := protocol.CompletionItem{Label: label}

	if kindUID, ok := d.GetUID(ns.Keys.Kind); ok {
		k := kinds.CompletionItemKind(kindUID)
		item.Kind = &k
	}

	if typeName, ok := d.GetString(ns.Keys.TypeName); ok {
		item.Detail = &typeName
	}

	if insertText, ok := d.GetString(ns.Keys.SourceText); ok {
		item.InsertText = &insertText
	}

	if description, ok := d.GetString(ns.Keys.Description); ok && description != "" {
		item.Documentation = protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: description,
		}
	}

	return item, true
}
