package lspadapter

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swift-server/sourcekit-lsp-go/internal/docmanager"
	"github.com/swift-server/sourcekit-lsp-go/internal/translate"
	"github.com/swift-server/sourcekit-lsp-go/internal/worker"
)

const serverName = "sourcekit-lsp-go"

var serverVersion = "0.1.0"

// semanticRefactorCommand is the one workspace/executeCommand the worker
// accepts (worker.ExecuteCommand rejects everything else as an invalid
// request). It is the only command advertised: this server only ever
// claims a fixed set of built-in Swift commands it can actually carry
// out, rather than advertising command names it cannot implement.
const semanticRefactorCommand = "semantic-refactor"

// Adapter is the glsp-facing front for a single worker.Worker. It holds
// the most recent *glsp.Context so that diagnostics and applyEdit
// notifications triggered asynchronously — by a compiler-service crash
// notification arriving on its own goroutine, for instance — can still
// reach the client; context.Notify/context.Call are closures over the
// underlying jsonrpc2 connection and remain valid for the connection's
// whole lifetime, not just the request that first produced them.
type Adapter struct {
	w      *worker.Worker
	logger *slog.Logger

	// docs mirrors every didOpen/didChange/didClose the client sends,
	// independently of the worker's own docmanager, so ReopenDocuments
	// still has a URI/version/text to replay after a crash resets the
	// worker's copy.
	docs *docmanager.Manager

	mu          sync.Mutex
	ctx         *glsp.Context
	foldingOpts translate.FoldingOptions
}

// New constructs an Adapter with no worker attached yet. worker.New
// requires a Coordinator at construction time and an Adapter requires a
// *worker.Worker to dispatch requests to, so the two are built in two
// steps: New the Adapter, pass it as worker.Options.Coordinator, then
// Attach the resulting Worker (see cmd/swift-lsp-worker for the wiring
// order this requires).
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{logger: logger, docs: docmanager.New()}
}

// Attach finishes wiring a by giving it the Worker it should dispatch
// requests to. Must be called exactly once, before NewHandler's handlers
// can be invoked.
func (a *Adapter) Attach(w *worker.Worker) {
	a.w = w
}

func (a *Adapter) setContext(ctx *glsp.Context) {
	a.mu.Lock()
	a.ctx = ctx
	a.mu.Unlock()
}

func (a *Adapter) context() *glsp.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ctx
}

// PublishDiagnostics implements worker.Coordinator.
func (a *Adapter) PublishDiagnostics(uri string, diagnostics []protocol.Diagnostic) {
	ctx := a.context()
	if ctx == nil || ctx.Notify == nil {
		a.logger.Warn("dropping publishDiagnostics: no client connection yet", "uri", uri)
		return
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// ApplyEdit implements worker.Coordinator.
func (a *Adapter) ApplyEdit(_ context.Context, label string, edit protocol.WorkspaceEdit) (bool, string, error) {
	ctx := a.context()
	if ctx == nil || ctx.Call == nil {
		return false, "no client connection", nil
	}

	var result protocol.ApplyWorkspaceEditResponse
	if err := ctx.Call(protocol.ServerWorkspaceApplyEdit, protocol.ApplyWorkspaceEditParams{
		Label: &label,
		Edit:  edit,
	}, &result); err != nil {
		return false, "", err
	}
	reason := ""
	if result.FailureReason != nil {
		reason = *result.FailureReason
	}
	return result.Applied, reason, nil
}

// ReopenDocuments implements worker.Coordinator. The crash that triggers
// this call wipes the worker's own docmanager (worker.resetDocumentState),
// so a.docs — this adapter's independent mirror of every open document,
// fed by didOpen/didChange/didClose regardless of worker state — is the
// only surviving record of what was open. Replaying OpenDocument for each
// one is what lets textDocument/hover succeed again once the compiler
// service is back (spec.md §8 scenario 1).
func (a *Adapter) ReopenDocuments() {
	for _, rawURI := range a.docs.OpenURIs() {
		snap, ok := a.docs.LatestSnapshot(docmanager.ParseURI(rawURI))
		if !ok {
			continue
		}
		if err := a.w.OpenDocument(context.Background(), rawURI, snap.Version, snap.Text); err != nil {
			a.logger.Warn("reopenDocuments: failed to reopen", "uri", rawURI, "error", err)
		}
	}
}

// NewHandler builds the protocol.Handler glspserver.NewServer expects,
// wired to a.
func (a *Adapter) NewHandler() *protocol.Handler {
	var h protocol.Handler
	h = protocol.Handler{
		Initialize:  a.initialize(&h),
		Initialized: a.initialized,
		Shutdown:    a.shutdown,
		SetTrace: func(context *glsp.Context, params *protocol.SetTraceParams) error {
			protocol.SetTraceValue(params.Value)
			return nil
		},

		TextDocumentDidOpen:   a.didOpen,
		TextDocumentDidClose:  a.didClose,
		TextDocumentDidChange: a.didChange,
		TextDocumentWillSave:  a.willSave,
		TextDocumentDidSave:   a.didSave,

		TextDocumentHover:              a.hover,
		TextDocumentCompletion:         a.completion,
		TextDocumentDefinition:         a.definition,
		TextDocumentImplementation:     a.implementation,
		TextDocumentDocumentHighlight:  a.documentHighlight,
		TextDocumentDocumentSymbol:     a.documentSymbol,
		TextDocumentFoldingRange:       a.foldingRange,
		TextDocumentDocumentColor:      a.documentColor,
		TextDocumentColorPresentation:  a.colorPresentation,
		TextDocumentCodeAction:         a.codeAction,
		TextDocumentSemanticTokensFull: a.semanticTokensFull,
		WorkspaceExecuteCommand:        a.executeCommand,
		WorkspaceDidChangeWatchedFiles: a.didChangeWatchedFiles,
	}
	return &h
}

func (a *Adapter) initialize(h *protocol.Handler) func(*glsp.Context, *protocol.InitializeParams) (any, error) {
	return func(context *glsp.Context, params *protocol.InitializeParams) (any, error) {
		a.setContext(context)
		a.captureFoldingOptions(params)

		changeKind := protocol.TextDocumentSyncKindIncremental
		capabilities := h.CreateServerCapabilities()
		capabilities.TextDocumentSync = protocol.TextDocumentSyncOptions{
			OpenClose: boolPtr(true),
			Change:    &changeKind,
			WillSave:  boolPtr(true),
		}
		capabilities.CompletionProvider = &protocol.CompletionOptions{
			TriggerCharacters: []string{"."},
		}
		capabilities.ImplementationProvider = boolPtr(true)
		capabilities.SemanticTokensProvider = &protocol.SemanticTokensOptions{
			Legend: protocol.SemanticTokensLegend{
				TokenTypes:     translate.TokenTypes,
				TokenModifiers: []string{},
			},
			Full: boolPtr(true),
		}
		capabilities.CodeActionProvider = &protocol.CodeActionOptions{
			CodeActionKinds: []protocol.CodeActionKind{
				protocol.CodeActionKindQuickFix,
				protocol.CodeActionKindRefactor,
			},
		}
		capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
			Commands: []string{semanticRefactorCommand},
		}

		return protocol.InitializeResult{
			Capabilities: capabilities,
			ServerInfo: &protocol.InitializeResultServerInfo{
				Name:    serverName,
				Version: &serverVersion,
			},
		}, nil
	}
}

// captureFoldingOptions records the client's foldingRange capabilities so
// later foldingRange requests can honor rangeLimit/lineFoldingOnly
// without the per-request params carrying them.
func (a *Adapter) captureFoldingOptions(params *protocol.InitializeParams) {
	fr := params.Capabilities.TextDocument.FoldingRange
	if fr == nil {
		return
	}
	opts := translate.FoldingOptions{}
	if fr.LineFoldingOnly != nil {
		opts.LineFoldingOnly = *fr.LineFoldingOnly
	}
	if fr.RangeLimit != nil {
		opts.RangeLimit = int(*fr.RangeLimit)
	}
	a.mu.Lock()
	a.foldingOpts = opts
	a.mu.Unlock()
}

func (a *Adapter) initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	a.setContext(context)
	return nil
}

func (a *Adapter) shutdown(context *glsp.Context) error {
	a.w.Shutdown()
	return nil
}
