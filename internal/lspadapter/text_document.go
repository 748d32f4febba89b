package lspadapter

import (
	"context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swift-server/sourcekit-lsp-go/internal/docmanager"
	"github.com/swift-server/sourcekit-lsp-go/internal/worker"
)

func (a *Adapter) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	a.setContext(ctx)
	a.docs.Open(docmanager.ParseURI(params.TextDocument.URI), params.TextDocument.Version, params.TextDocument.Text)
	if err := a.w.OpenDocument(context.Background(), params.TextDocument.URI, params.TextDocument.Version, params.TextDocument.Text); err != nil {
		a.logger.Warn("openDocument failed", "uri", params.TextDocument.URI, "error", err)
	}
	return nil
}

func (a *Adapter) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	a.setContext(ctx)
	a.docs.Close(docmanager.ParseURI(params.TextDocument.URI))
	if err := a.w.CloseDocument(context.Background(), params.TextDocument.URI); err != nil {
		a.logger.Warn("closeDocument failed", "uri", params.TextDocument.URI, "error", err)
	}
	return nil
}

func (a *Adapter) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	a.setContext(ctx)
	changes := toDocChanges(params.ContentChanges)
	a.docs.Edit(docmanager.ParseURI(params.TextDocument.URI), params.TextDocument.Version, changes, nil)
	if err := a.w.ChangeDocument(context.Background(), params.TextDocument.URI, params.TextDocument.Version, changes); err != nil {
		a.logger.Warn("changeDocument failed", "uri", params.TextDocument.URI, "error", err)
	}
	return nil
}

func (a *Adapter) willSave(ctx *glsp.Context, params *protocol.WillSaveTextDocumentParams) error {
	a.setContext(ctx)
	return nil
}

func (a *Adapter) didSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	a.setContext(ctx)
	return nil
}

// didChangeWatchedFiles treats every changed/created/deleted file as a
// dependency-update signal for whichever open document shares its URI.
// It does not attempt to map a changed dependency to the documents that
// import it — that mapping belongs to the build-settings provider this
// worker depends on but does not own — so this only re-elaborates a
// document when the changed file *is* an open document.
func (a *Adapter) didChangeWatchedFiles(ctx *glsp.Context, params *protocol.DidChangeWatchedFilesParams) error {
	a.setContext(ctx)
	for _, change := range params.Changes {
		uri := string(change.URI)
		if err := a.w.DocumentDependenciesUpdated(context.Background(), uri); err != nil {
			a.logger.Debug("documentDependenciesUpdated skipped", "uri", uri, "error", err)
		}
	}
	return nil
}

var _ worker.Coordinator = (*Adapter)(nil)
