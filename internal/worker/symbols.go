package worker

import (
	"context"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swift-server/sourcekit-lsp-go/internal/buildsettings"
	"github.com/swift-server/sourcekit-lsp-go/internal/docmanager"
	"github.com/swift-server/sourcekit-lsp-go/internal/translate"
)

// DocumentSymbol handles textDocument/documentSymbol. It re-opens the
// document syntactic-only to get a fresh substructure tree without paying
// for a semantic recompile (spec.md §4.6 "DocumentSymbol needs only
// parse-level structure").
func (w *Worker) DocumentSymbol(ctx context.Context, rawURI string) ([]protocol.DocumentSymbol, *RequestError) {
	type result struct {
		symbols []protocol.DocumentSymbol
		err     *RequestError
	}

	r := call(w.lane, func() result {
		uri := docmanager.ParseURI(rawURI)
		snap, ok := w.docs.LatestSnapshot(uri)
		if !ok {
			return result{err: newRequestError(ErrNotFound, "document not open: %s", rawURI)}
		}

		name := pseudoPath(uri)
		resp, reqErr := w.sendSync(ctx, w.editorOpenRequest(name, snap.Text, buildsettings.CompileCommand{}, true, false))
		if reqErr != nil {
			return result{err: reqErr}
		}

		substructure, _ := resp.GetArray(w.ns.Keys.SubStructure)
		return result{symbols: translate.DocumentSymbols(w.ns, w.kinds, snap.Lines, substructure)}
	})

	return r.symbols, r.err
}
