package worker

import (
	"context"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swift-server/sourcekit-lsp-go/internal/docmanager"
	"github.com/swift-server/sourcekit-lsp-go/internal/translate"
)

// Hover handles textDocument/hover by issuing a cursor_info request at pos
// and rendering its declaration/doc-comment to markdown (spec.md §4.6).
func (w *Worker) Hover(ctx context.Context, rawURI string, line, char int) (protocol.Hover, *RequestError) {
	type result struct {
		hover protocol.Hover
		ok    bool
		err   *RequestError
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

		hover, ok := translate.Hover(w.ns, resp)
		return result{hover: hover, ok: ok}
	})

	if r.err != nil {
		return protocol.Hover{}, r.err
	}
	if !r.ok {
		return protocol.Hover{}, newRequestError(ErrNotFound, "no hover information at position")
	}
	return r.hover, nil
}
