package worker

import (
	"context"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swift-server/sourcekit-lsp-go/internal/buildsettings"
	"github.com/swift-server/sourcekit-lsp-go/internal/diagnostics"
	"github.com/swift-server/sourcekit-lsp-go/internal/docmanager"
	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
	"github.com/swift-server/sourcekit-lsp-go/internal/translate"
)

// bothStages is the stage set a full (non-syntactic-only) request can
// produce diagnostics for, replacing whatever the cache held for either
// stage even when the new batch is empty (spec.md §4.3 "a request that
// could have produced a stage's diagnostics but didn't still clears it").
var bothStages = []diagnostics.Stage{diagnostics.StageParse, diagnostics.StageSema}

// OpenDocument handles textDocument/didOpen. It is a no-op, from the
// daemon's point of view, if the scheme is excluded — the document is
// still tracked locally so edits and closes stay consistent, but no
// editor_open request is issued and no diagnostics are ever published for
// it (spec.md §8 law 6).
func (w *Worker) OpenDocument(ctx context.Context, rawURI string, version int64, text string) *RequestError {
	return call(w.lane, func() *RequestError {
		uri := docmanager.ParseURI(rawURI)
		w.docs.Open(uri, version, text)

		if w.isExcluded(uri) {
			return nil
		}

		name := pseudoPath(uri)
		w.pseudoPaths[name] = uri

		cmd := w.resolveCompileCommand(rawURI)
		w.compileCommands[rawURI] = cmd

		req := w.editorOpenRequest(name, text, cmd, false, true)
		resp, reqErr := w.sendSync(ctx, req)
		if reqErr != nil {
			return reqErr
		}

		w.publishFromResponse(uri, resp, cmd.IsFallback)
		return nil
	})
}

// CloseDocument handles textDocument/didClose.
func (w *Worker) CloseDocument(ctx context.Context, rawURI string) *RequestError {
	return call(w.lane, func() *RequestError {
		uri := docmanager.ParseURI(rawURI)

		if !w.isExcluded(uri) {
			name := pseudoPath(uri)
			if _, reqErr := w.sendSync(ctx, w.editorCloseRequest(name)); reqErr != nil && reqErr.Kind != ErrConnectionInterrupted {
				w.logger.Warn("editor close failed", "uri", rawURI, "error", reqErr)
			}
			delete(w.pseudoPaths, name)
		}

		w.docs.Close(uri)
		w.diags.Clear(rawURI)
		delete(w.compileCommands, rawURI)
		delete(w.lastTokens, rawURI)
		return nil
	})
}

// ChangeDocument handles textDocument/didChange. Each change is applied in
// order; a change with a malformed range is dropped, the rest are still
// applied, and the call then returns ErrInvalidRequest unless a
// compiler-service error is returned instead (spec.md §7 "production
// rewrite" decision on position robustness — see DESIGN.md).
func (w *Worker) ChangeDocument(ctx context.Context, rawURI string, version int64, changes []docmanager.Change) *RequestError {
	return call(w.lane, func() *RequestError {
		uri := docmanager.ParseURI(rawURI)

		var lastReqErr *RequestError
		_, malformed, ok := w.docs.Edit(uri, version, changes, func(ev docmanager.ReplaceTextEvent) {
			if w.isExcluded(uri) {
				return
			}
			name := pseudoPath(uri)
			req := w.editorReplaceTextRequest(name, ev.ByteOffset, ev.ByteLength, ev.Replacement)
			resp, reqErr := w.sendSync(ctx, req)
			if reqErr != nil {
				lastReqErr = reqErr
				return
			}
			w.publishFromResponse(uri, resp, w.compileCommands[rawURI].IsFallback)
		})
		if !ok {
			return newRequestError(ErrNotFound, "document not open: %s", rawURI)
		}
		for range malformed {
			w.logger.Warn("dropped change with invalid range", "uri", rawURI)
		}
		if lastReqErr == nil && len(malformed) > 0 {
			return newRequestError(ErrInvalidRequest, "%d change(s) with invalid range dropped", len(malformed))
		}
		return lastReqErr
	})
}

// DocumentUpdatedBuildSettings handles a build-settings provider push for
// an already-open document. Per the compile-command-idempotence invariant
// (spec.md §5.5), a change that resolves to the same command as the one
// already cached triggers no compiler-service traffic.
func (w *Worker) DocumentUpdatedBuildSettings(ctx context.Context, rawURI string, change buildsettings.Change) *RequestError {
	return call(w.lane, func() *RequestError {
		uri := docmanager.ParseURI(rawURI)
		snap, ok := w.docs.LatestSnapshot(uri)
		if !ok {
			return newRequestError(ErrNotFound, "document not open: %s", rawURI)
		}

		cmd, ok := buildsettings.NewCompileCommand(change, "")
		if !ok {
			// RemovedOrUnavailable: keep issuing requests with the last known
			// command rather than silently falling back to no compiler args.
			return nil
		}
		if cached, ok := w.compileCommands[rawURI]; ok && cached.Equal(cmd) {
			return nil
		}
		w.compileCommands[rawURI] = cmd

		if w.isExcluded(uri) {
			return nil
		}
		return w.reopenWithCurrentCommand(ctx, uri, snap.Text)
	})
}

// DocumentDependenciesUpdated handles a workspace/didChangeWatchedFiles-style
// signal that a dependency of an open document changed on disk. Unlike a
// build-settings push, this always re-opens unconditionally, since there is
// no cached command to compare against (spec.md §4.6).
func (w *Worker) DocumentDependenciesUpdated(ctx context.Context, rawURI string) *RequestError {
	return call(w.lane, func() *RequestError {
		uri := docmanager.ParseURI(rawURI)
		snap, ok := w.docs.LatestSnapshot(uri)
		if !ok {
			return newRequestError(ErrNotFound, "document not open: %s", rawURI)
		}
		if w.isExcluded(uri) {
			return nil
		}
		return w.reopenWithCurrentCommand(ctx, uri, snap.Text)
	})
}

// reopenWithCurrentCommand replays editor_close+editor_open against text,
// the only way to make the daemon pick up a new set of compiler arguments
// for an already-open document. Must run on the lane.
func (w *Worker) reopenWithCurrentCommand(ctx context.Context, uri docmanager.URI, text string) *RequestError {
	name := pseudoPath(uri)
	if _, reqErr := w.sendSync(ctx, w.editorCloseRequest(name)); reqErr != nil && reqErr.Kind != ErrConnectionInterrupted {
		w.logger.Warn("editor close failed during reopen", "uri", uri.Raw, "error", reqErr)
	}

	resp, reqErr := w.sendSync(ctx, w.editorOpenRequest(name, text, w.compileCommands[uri.Raw], false, true))
	if reqErr != nil {
		return reqErr
	}
	w.publishFromResponse(uri, resp, w.compileCommands[uri.Raw].IsFallback)
	return nil
}

// synchronousRefresh implements the documentupdate notification's
// synthetic-refresh flow: a zero-length replace at offset 0 forces the
// daemon to recompute diagnostics without any real text change. Must run
// on the lane.
func (w *Worker) synchronousRefresh(uri docmanager.URI, name string) {
	resp, reqErr := w.sendSync(context.Background(), w.editorReplaceTextRequest(name, 0, 0, ""))
	if reqErr != nil {
		w.logger.Warn("synthetic refresh failed", "uri", uri.Raw, "error", reqErr)
		return
	}
	w.publishFromResponse(uri, resp, w.compileCommands[uri.Raw].IsFallback)
}

// resolveCompileCommand asks the build-settings provider for rawURI's
// current command, defaulting to an empty fallback command when the
// provider is nil (unit tests that don't care about compiler args).
func (w *Worker) resolveCompileCommand(rawURI string) buildsettings.CompileCommand {
	if w.buildBy == nil {
		return buildsettings.CompileCommand{IsFallback: true}
	}
	change := w.buildBy.Settings(rawURI)
	cmd, ok := buildsettings.NewCompileCommand(change, "")
	if !ok {
		return buildsettings.CompileCommand{IsFallback: true}
	}
	return cmd
}

// publishFromResponse extracts, merges, and publishes the diagnostics
// carried by an editor_open/editor_replacetext response. Must run on the
// lane.
func (w *Worker) publishFromResponse(uri docmanager.URI, resp sourcekitd.Dict, isFallback bool) {
	snap, ok := w.docs.LatestSnapshot(uri)
	if !ok {
		return
	}

	var parsed []translate.ParsedDiagnostic
	if arr, ok := resp.GetArray(w.ns.Keys.CategorizedDiagnostics); ok {
		parsed = translate.CategorizedDiagnostics(w.ns, w.severity, w.stages, snap.Lines, arr)
	}

	w.mergeAndPublish(uri, bothStages, parsed, isFallback)
}

// mergeAndPublish applies the stage-scoped merge rule (spec.md §4.3) for
// every stage in stages — replacing that stage's cached diagnostics with
// whatever parsed carries for it, even when that is nothing — then
// publishes the resulting union. Must run on the lane.
func (w *Worker) mergeAndPublish(uri docmanager.URI, stages []diagnostics.Stage, parsed []translate.ParsedDiagnostic, isFallback bool) {
	byStage := make(map[diagnostics.Stage][]protocol.Diagnostic)
	for _, p := range parsed {
		byStage[p.Stage] = append(byStage[p.Stage], p.Diagnostic)
	}

	var merged []diagnostics.Cached
	for _, stage := range stages {
		merged = w.diags.Merge(uri.Raw, stage, isFallback, byStage[stage])
	}

	w.publish(uri, merged)
}
