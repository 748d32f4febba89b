package worker

import (
	"context"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swift-server/sourcekit-lsp-go/internal/buildsettings"
	"github.com/swift-server/sourcekit-lsp-go/internal/docmanager"
	"github.com/swift-server/sourcekit-lsp-go/internal/translate"
)

// DocumentColor handles textDocument/documentColor: a syntactic-only
// editor_open, walked for color-literal substructure nodes.
func (w *Worker) DocumentColor(ctx context.Context, rawURI string) ([]protocol.ColorInformation, *RequestError) {
	type result struct {
		colors []protocol.ColorInformation
		err    *RequestError
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
		return result{colors: translate.DocumentColors(w.ns, w.kinds, snap.Lines, substructure)}
	})

	return r.colors, r.err
}

// ColorPresentation handles textDocument/colorPresentation. It is a pure
// function of the color itself, so it never touches the lane.
func (w *Worker) ColorPresentation(c protocol.Color) []protocol.ColorPresentation {
	return translate.ColorPresentations(c)
}
