package translate

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
	"github.com/swift-server/sourcekit-lsp-go/internal/textmodel"
)

// CategorizedEditsToWorkspaceEdit converts a semantic_refactoring
// response's key.edits array into a single-document WorkspaceEdit. Entries
// missing an offset, length, or replacement text are dropped (spec.md §7).
func CategorizedEditsToWorkspaceEdit(ns sourcekitd.Namespaces, uri string, lines *textmodel.LineTable, arr sourcekitd.Array) (protocol.WorkspaceEdit, bool) {
	var textEdits []protocol.TextEdit
	for _, v := range arr {
		d, ok := v.(sourcekitd.Dict)
		if !ok {
			continue
		}
		offset, ok1 := d.GetInt64(ns.Keys.Offset)
		length, ok2 := d.GetInt64(ns.Keys.Length)
		text, ok3 := d.GetString(ns.Keys.SourceText)
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		rng, ok := byteRangeToLSP(lines, offset, length)
		if !ok {
			continue
		}
		textEdits = append(textEdits, protocol.TextEdit{Range: rng, NewText: text})
	}

	if len(textEdits) == 0 {
		return protocol.WorkspaceEdit{}, false
	}

	return protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentUri][]protocol.TextEdit{uri: textEdits},
	}, true
}
