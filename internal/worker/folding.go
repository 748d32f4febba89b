package worker

import (
	"context"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swift-server/sourcekit-lsp-go/internal/buildsettings"
	"github.com/swift-server/sourcekit-lsp-go/internal/docmanager"
	"github.com/swift-server/sourcekit-lsp-go/internal/translate"
)

// FoldingRange handles textDocument/foldingRange. opts mirrors the
// client's foldingRangeLimit/lineFoldingOnly capabilities, recorded at
// initialize time (spec.md §4.6).
func (w *Worker) FoldingRange(ctx context.Context, rawURI string, opts translate.FoldingOptions) ([]protocol.FoldingRange, *RequestError) {
	type result struct {
		ranges []protocol.FoldingRange
		err    *RequestError
	}

	r := call(w.lane, func() result {
		uri := docmanager.ParseURI(rawURI)
		snap, ok := w.docs.LatestSnapshot(uri)
		if !ok {
			return result{err: newRequestError(ErrNotFound, "document not open: %s", rawURI)}
		}

		name := pseudoPath(uri)
		resp, reqErr := w.sendSync(ctx, w.editorOpenRequest(name, snap.Text, buildsettings.CompileCommand{}, true, true))
		if reqErr != nil {
			return result{err: reqErr}
		}

		syntaxArr, _ := resp.GetArray(w.ns.Keys.SyntaxMap)
		substructure, _ := resp.GetArray(w.ns.Keys.SubStructure)
		syntaxMap := decodeSyntaxMap(w.ns, syntaxArr)

		return result{ranges: translate.FoldingRanges(w.ns, w.commentUID, snap.Lines, syntaxMap, substructure, opts)}
	})

	return r.ranges, r.err
}
