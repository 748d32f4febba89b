// Package lspadapter wires the worker's Go API onto glsp's wire protocol,
// translating protocol_3_16 request/notification params into worker.Worker
// calls and back.
package lspadapter

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swift-server/sourcekit-lsp-go/internal/docmanager"
)

func toDocPosition(p protocol.Position) docmanager.Position {
	return docmanager.Position{Line: int(p.Line), Char: int(p.Character)}
}

func toDocRange(r protocol.Range) docmanager.Range {
	return docmanager.Range{Start: toDocPosition(r.Start), End: toDocPosition(r.End)}
}

// toDocChanges converts a didChange notification's content-change list.
// Each entry is either protocol.TextDocumentContentChangeEvent (a ranged
// replacement, Range non-nil) or protocol.TextDocumentContentChangeEventWhole
// (a full-text replacement) depending on which shape the client sent;
// glsp decodes the wire union into whichever of the two matches.
func toDocChanges(raw []interface{}) []docmanager.Change {
	out := make([]docmanager.Change, 0, len(raw))
	for _, v := range raw {
		switch c := v.(type) {
		case protocol.TextDocumentContentChangeEvent:
			if c.Range == nil {
				out = append(out, docmanager.Change{Text: c.Text})
				continue
			}
			rng := toDocRange(*c.Range)
			out = append(out, docmanager.Change{Range: &rng, Text: c.Text})
		case protocol.TextDocumentContentChangeEventWhole:
			out = append(out, docmanager.Change{Text: c.Text})
		}
	}
	return out
}

func boolPtr(b bool) *bool { return &b }
