package worker

import (
	"context"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swift-server/sourcekit-lsp-go/internal/docmanager"
	"github.com/swift-server/sourcekit-lsp-go/internal/translate"
)

// completionSession tracks the single outstanding codecomplete.open
// session a worker may hold (spec.md §3 "Completion session — at most one
// per worker, scoped to a single (uri, position). Opening a new session
// closes any previous one.").
type completionSession struct {
	name   string
	offset int
}

// Completion handles textDocument/completion. It closes any session left
// open from a previous request before opening a new one, so the daemon
// never accumulates more than one live completion context per worker.
func (w *Worker) Completion(ctx context.Context, rawURI string, line, char int) ([]protocol.CompletionItem, *RequestError) {
	type result struct {
		items []protocol.CompletionItem
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
		w.closeCompletionSession(ctx)

		cmd := w.compileCommands[rawURI]
		resp, reqErr := w.sendSync(ctx, w.codeCompleteOpenRequest(name, offset, cmd))
		if reqErr != nil {
			return result{err: reqErr}
		}
		w.completion = &completionSession{name: name, offset: offset}

		results, _ := resp.GetArray(w.ns.Keys.Results)
		return result{items: translate.CompletionItems(w.ns, w.kinds, results)}
	})

	return r.items, r.err
}

// closeCompletionSession sends codecomplete.close for any session left
// open and clears it. Must run on the lane. A failure to close is logged
// and otherwise ignored, matching how the worker treats editor_close
// failures elsewhere.
func (w *Worker) closeCompletionSession(ctx context.Context) {
	if w.completion == nil {
		return
	}
	session := w.completion
	w.completion = nil
	if _, reqErr := w.sendSync(ctx, w.codeCompleteCloseRequest(session.name, session.offset)); reqErr != nil && reqErr.Kind != ErrConnectionInterrupted {
		w.logger.Warn("codecomplete close failed", "error", reqErr)
	}
}
