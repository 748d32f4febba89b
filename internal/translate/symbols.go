package translate

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
	"github.com/swift-server/sourcekit-lsp-go/internal/textmodel"
)

// DocumentSymbols recursively builds an LSP DocumentSymbol tree from a
// syntactic-mode editor_open response's substructure array (spec.md §4.6
// "Document symbol"). Malformed nodes (missing name, offset, or an
// unrecognized kind) are skipped rather than aborting the walk, per §7
// "drop that item and continue."
func DocumentSymbols(ns sourcekitd.Namespaces, kinds *KindTable, lines *textmodel.LineTable, substructure sourcekitd.Array) []protocol.DocumentSymbol {
	return buildSymbolLevel(ns, kinds, lines, substructure)
}

func buildSymbolLevel(ns sourcekitd.Namespaces, kinds *KindTable, lines *textmodel.LineTable, nodes sourcekitd.Array) []protocol.DocumentSymbol {
	var out []protocol.DocumentSymbol
	for _, v := range nodes {
		node, ok := v.(sourcekitd.Dict)
		if !ok {
			continue
		}
		sym, ok := buildSymbolNode(ns, kinds, lines, node)
		if !ok {
			continue
		}
		out = append(out, sym)
	}
	return out
}

func buildSymbolNode(ns sourcekitd.Namespaces, kinds *KindTable, lines *textmodel.LineTable, node sourcekitd.Dict) (protocol.DocumentSymbol, bool) {
	name, ok := node.GetString(ns.Keys.Name_)
	if !ok {
		return protocol.DocumentSymbol{}, false
	}

	kindUID, ok := node.GetUID(ns.Keys.Kind)
	if !ok {
		return protocol.DocumentSymbol{}, false
	}
	symbolKind, ok := kinds.SymbolKind(kindUID)
	if !ok {
		return protocol.DocumentSymbol{}, false
	}

	bodyOffset, ok1 := node.GetInt64(ns.Keys.BodyOffset)
	bodyLength, ok2 := node.GetInt64(ns.Keys.BodyLength)
	if !ok1 || !ok2 {
		return protocol.DocumentSymbol{}, false
	}

	bodyRange, ok := byteRangeToLSP(lines, bodyOffset, bodyLength)
	if !ok {
		return protocol.DocumentSymbol{}, false
	}

	selectionRange := bodyRange
	if nameOffset, ok1 := node.GetInt64(ns.Keys.NameOffset); ok1 {
		nameLength, _ := node.GetInt64(ns.Keys.NameLength)
		if r, ok := byteRangeToLSP(lines, nameOffset, nameLength); ok {
			selectionRange = r
		}
	}

	sym := protocol.DocumentSymbol{
		Name:           name,
		Kind:           symbolKind,
		Range:          bodyRange,
		SelectionRange: selectionRange,
	}

	if children, ok := node.GetArray(ns.Keys.SubStructure); ok {
		childSymbols := buildSymbolLevel(ns, kinds, lines, children)
		if len(childSymbols) > 0 {
			sym.Children = childSymbols
		}
	}

	return sym, true
}

// ByteRangeToRange is the exported form of byteRangeToLSP, for callers
// outside this package (internal/worker's documentHighlight) that need the
// same UTF-8-byte-span-to-LSP-Range conversion without going through a
// Token or Diagnostic.
func ByteRangeToRange(lines *textmodel.LineTable, offset, length int64) (protocol.Range, bool) {
	return byteRangeToLSP(lines, offset, length)
}

// byteRangeToLSP converts a UTF-8 [offset, offset+length) span to an LSP
// Range using lines; returns false if either endpoint falls outside the
// line table (spec.md §4.1 "out-of-range inputs yield absent").
func byteRangeToLSP(lines *textmodel.LineTable, offset, length int64) (protocol.Range, bool) {
	startLine, startCol, ok := lines.PositionOfUTF8Offset(int(offset))
	if !ok {
		return protocol.Range{}, false
	}
	endLine, endCol, ok := lines.PositionOfUTF8Offset(int(offset + length))
	if !ok {
		return protocol.Range{}, false
	}
	return protocol.Range{
		Start: protocol.Position{Line: uint32(startLine), Character: uint32(startCol)},
		End:   protocol.Position{Line: uint32(endLine), Character: uint32(endCol)},
	}, true
}
