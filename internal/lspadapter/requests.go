package lspadapter

import (
	"context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swift-server/sourcekit-lsp-go/internal/translate"
	"github.com/swift-server/sourcekit-lsp-go/internal/worker"
)

func requestErrorToLSP(err *worker.RequestError) error {
	if err == nil {
		return nil
	}
	return err
}

func (a *Adapter) hover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	hover, err := a.w.Hover(context.Background(), params.TextDocument.URI, int(params.Position.Line), int(params.Position.Character))
	if err != nil {
		if err.Kind == worker.ErrNotFound {
			return nil, nil
		}
		return nil, requestErrorToLSP(err)
	}
	return &hover, nil
}

func (a *Adapter) completion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	items, err := a.w.Completion(context.Background(), params.TextDocument.URI, int(params.Position.Line), int(params.Position.Character))
	if err != nil {
		return nil, requestErrorToLSP(err)
	}
	return items, nil
}

// definition always declines: goto-definition is served by the
// coordinator's index-backed lookup in the full system, which this
// single-binary adapter does not embed. Returning nil, nil tells the
// client "no results" rather than an error.
func (a *Adapter) definition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	a.w.Definition(context.Background(), params.TextDocument.URI, int(params.Position.Line), int(params.Position.Character))
	return nil, nil
}

// implementation is not part of the worker's public contract — it is
// advertised among initialize's capabilities, but the worker itself has
// no compiler-service request that answers it. It defers to the index in
// the full system, same as Definition.
func (a *Adapter) implementation(ctx *glsp.Context, params *protocol.ImplementationParams) (any, error) {
	return nil, nil
}

func (a *Adapter) documentHighlight(ctx *glsp.Context, params *protocol.DocumentHighlightParams) ([]protocol.DocumentHighlight, error) {
	highlights, err := a.w.DocumentHighlight(context.Background(), params.TextDocument.URI, int(params.Position.Line), int(params.Position.Character))
	return highlights, requestErrorToLSP(err)
}

func (a *Adapter) documentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	symbols, err := a.w.DocumentSymbol(context.Background(), params.TextDocument.URI)
	if err != nil {
		return nil, requestErrorToLSP(err)
	}
	return symbols, nil
}

func (a *Adapter) foldingRange(ctx *glsp.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	ranges, err := a.w.FoldingRange(context.Background(), params.TextDocument.URI, a.foldingOptions())
	return ranges, requestErrorToLSP(err)
}

// foldingOptions reads the folding-range client capabilities captured at
// initialize time. FoldingRangeParams itself carries neither rangeLimit
// nor lineFoldingOnly — they are declared once, in ClientCapabilities,
// not per-request.
func (a *Adapter) foldingOptions() translate.FoldingOptions {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.foldingOpts
}

func (a *Adapter) documentColor(ctx *glsp.Context, params *protocol.DocumentColorParams) (any, error) {
	colors, err := a.w.DocumentColor(context.Background(), params.TextDocument.URI)
	return colors, requestErrorToLSP(err)
}

func (a *Adapter) colorPresentation(ctx *glsp.Context, params *protocol.ColorPresentationParams) (any, error) {
	return a.w.ColorPresentation(params.Color), nil
}

func (a *Adapter) codeAction(ctx *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	actions, err := a.w.CodeAction(context.Background(), params.TextDocument.URI, params.Range, params.Context)
	if err != nil {
		return nil, requestErrorToLSP(err)
	}
	return actions, nil
}

func (a *Adapter) semanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (any, error) {
	tokens, err := a.w.SemanticTokensFull(context.Background(), params.TextDocument.URI)
	if err != nil {
		return nil, requestErrorToLSP(err)
	}
	return tokens, nil
}

func (a *Adapter) executeCommand(ctx *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	edit, err := a.w.ExecuteCommand(context.Background(), *params)
	if err != nil {
		return nil, requestErrorToLSP(err)
	}
	return edit, nil
}

// SymbolInfo is sourcekit-lsp's custom "$/symbolInfo" extension request.
// glsp's generated Handler dispatch table only switches on the fixed LSP
// 3.16 method set, so this is exposed as a plain method for a coordinator
// or test harness to call directly rather than wired onto
// protocol.Handler (see DESIGN.md).
func (a *Adapter) SymbolInfo(rawURI string, line, char int) ([]translate.SymbolDetail, error) {
	details, err := a.w.SymbolInfo(context.Background(), rawURI, line, char)
	return details, requestErrorToLSP(err)
}

// Crash is a test-only operation in the worker's public contract: it
// asks the compiler service to exit so tests can exercise the
// crash-recovery state machine end to end.
func (a *Adapter) Crash() {
	a.w.Crash(context.Background())
}
