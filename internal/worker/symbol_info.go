package worker

import (
	"context"

	"github.com/swift-server/sourcekit-lsp-go/internal/docmanager"
	"github.com/swift-server/sourcekit-lsp-go/internal/translate"
)

// SymbolInfo handles the symbolInfo request: cursor-info at pos, returning
// the nested symbol-info dictionary as a single-element slice, or an empty
// slice if the cursor names nothing (spec.md §4.6 "SymbolInfo —
// [cursor_info.symbolInfo] or []").
func (w *Worker) SymbolInfo(ctx context.Context, rawURI string, line, char int) ([]translate.SymbolDetail, *RequestError) {
	type result struct {
		details []translate.SymbolDetail
		err     *RequestError
	}

	r := call(w.lane, func() result {
		uri := docmanager.ParseURI(rawURI)
		snap, ok := w.docs.LatestSnapshot(uri)
		if !ok {
			return result{err: newRequestError(ErrNotFound, "document not open: %s", rawURI)}
		}
		offset, ok := snap.Lines.UTF8OffsetOf(line, char)
		if !ok {
			return result{err: newRequestError(ErrInvalidRequest, "position out of range")}
		}

		name := pseudoPath(uri)
		cmd := w.compileCommands[rawURI]
		resp, reqErr := w.sendSync(ctx, w.cursorInfoRequest(name, offset, cmd, false))
		if reqErr != nil {
			return result{err: reqErr}
		}

		return result{details: translate.SymbolInfo(w.ns, resp)}
	})

	return r.details, r.err
}
