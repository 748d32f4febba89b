package worker

import (
	"context"
	"fmt"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swift-server/sourcekit-lsp-go/internal/buildsettings"
	"github.com/swift-server/sourcekit-lsp-go/internal/docmanager"
	"github.com/swift-server/sourcekit-lsp-go/internal/translate"
)

// SemanticTokensFull handles textDocument/semanticTokens/full. It always
// returns a full response — never a delta, since the client has supplied
// no previousResultId for this request — and caches the classified token
// set per URI so a later semanticTokens/full/delta request has something
// to diff against (spec.md §4.6).
func (w *Worker) SemanticTokensFull(ctx context.Context, rawURI string) (*protocol.SemanticTokens, *RequestError) {
	type result struct {
		tokens *protocol.SemanticTokens
		err    *RequestError
	}

	r := call(w.lane, func() result {
		tokens, reqErr := w.classifyTokens(ctx, rawURI)
		if reqErr != nil {
			return result{err: reqErr}
		}

		resultID := w.nextTokenResultID(rawURI)
		w.lastTokens[rawURI] = tokens

		return result{tokens: &protocol.SemanticTokens{ResultID: &resultID, Data: translate.EncodeTokens(tokens)}}
	})

	return r.tokens, r.err
}

// SemanticTokensFullDelta handles textDocument/semanticTokens/full/delta,
// diffing against the cached token set from the previous request for this
// URI (spec.md §4.6 "delta vs full" threshold).
func (w *Worker) SemanticTokensFullDelta(ctx context.Context, rawURI string) (*translate.DeltaResult, *RequestError) {
	type result struct {
		delta *translate.DeltaResult
		err   *RequestError
	}

	r := call(w.lane, func() result {
		newTokens, reqErr := w.classifyTokens(ctx, rawURI)
		if reqErr != nil {
			return result{err: reqErr}
		}

		oldTokens := w.lastTokens[rawURI]
		resultID := w.nextTokenResultID(rawURI)
		delta := translate.ComputeDelta(oldTokens, newTokens, resultID)
		w.lastTokens[rawURI] = newTokens

		return result{delta: delta}
	})

	return r.delta, r.err
}

// classifyTokens issues a syntactic-only editor_open and classifies both
// of its token sources: the syntax map (keywords, comments, strings,
// numbers) and the substructure tree (declarations and references, which
// the syntax map never carries). Must run on the lane.
func (w *Worker) classifyTokens(ctx context.Context, rawURI string) ([]translate.Token, *RequestError) {
	uri := docmanager.ParseURI(rawURI)
	snap, ok := w.docs.LatestSnapshot(uri)
	if !ok {
		return nil, newRequestError(ErrNotFound, "document not open: %s", rawURI)
	}

	name := pseudoPath(uri)
	resp, reqErr := w.sendSync(ctx, w.editorOpenRequest(name, snap.Text, buildsettings.CompileCommand{}, true, true))
	if reqErr != nil {
		return nil, reqErr
	}

	syntaxArr, _ := resp.GetArray(w.ns.Keys.SyntaxMap)
	syntaxMap := decodeSyntaxMap(w.ns, syntaxArr)
	syntaxTokens := translate.ClassifySyntaxMap(w.kinds, snap.Lines, syntaxMap)

	substructure, _ := resp.GetArray(w.ns.Keys.SubStructure)
	declRefTokens := translate.ClassifySubstructure(w.ns, w.kinds, snap.Lines, substructure)

	tokens := translate.MergeTokens(syntaxTokens, declRefTokens)
	translate.SortTokens(tokens)
	return tokens, nil
}

// nextTokenResultID mints a fresh, per-URI monotonically increasing
// resultID for the SemanticTokensDelta protocol's resultId linkage. Must
// run on the lane.
func (w *Worker) nextTokenResultID(rawURI string) string {
	w.tokenResultSeq[rawURI]++
	return fmt.Sprintf("%s:%d", rawURI, w.tokenResultSeq[rawURI])
}
