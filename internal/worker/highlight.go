package worker

import (
	"context"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swift-server/sourcekit-lsp-go/internal/docmanager"
	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
	"github.com/swift-server/sourcekit-lsp-go/internal/textmodel"
	"github.com/swift-server/sourcekit-lsp-go/internal/translate"
)

// DocumentHighlight handles textDocument/documentHighlight via
// relatedidents. ctx is passed straight through to the compiler-service
// call; no $/cancelRequest handling is wired to it, and neither client
// consults ctx, so the call is not cancelled once issued.
func (w *Worker) DocumentHighlight(ctx context.Context, rawURI string, line, char int) ([]protocol.DocumentHighlight, *RequestError) {
	type result struct {
		highlights []protocol.DocumentHighlight
		err        *RequestError
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
		resp, reqErr := w.sendSync(ctx, w.relatedIdentsRequest(name, offset, cmd))
		if reqErr != nil {
			return result{err: reqErr}
		}

		results, _ := resp.GetArray(w.ns.Keys.Results)
		return result{highlights: highlightsFromResults(w.ns, snap.Lines, results)}
	})

	return r.highlights, r.err
}

func highlightsFromResults(ns sourcekitd.Namespaces, lines *textmodel.LineTable, results sourcekitd.Array) []protocol.DocumentHighlight {
	var out []protocol.DocumentHighlight
	for _, v := range results {
		d, ok := v.(sourcekitd.Dict)
		if !ok {
			continue
		}
		offset, ok1 := d.GetInt64(ns.Keys.Offset)
		length, ok2 := d.GetInt64(ns.Keys.Length)
		if !ok1 || !ok2 {
			continue
		}
		rng, ok := translate.ByteRangeToRange(lines, offset, length)
		if !ok {
			continue
		}
		kind := protocol.DocumentHighlightKindText
		out = append(out, protocol.DocumentHighlight{Range: rng, Kind: &kind})
	}
	return out
}
