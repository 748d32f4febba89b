package worker

import (
	"context"

	"github.com/swift-server/sourcekit-lsp-go/internal/buildsettings"
	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
)

// editorOpenRequest builds an editor_open request. syntacticOnly and
// enableSyntaxMap are only set on the wire when true, since the daemon
// treats an absent key as false.
func (w *Worker) editorOpenRequest(name, text string, cmd buildsettings.CompileCommand, syntacticOnly, enableSyntaxMap bool) sourcekitd.Dict {
	req := sourcekitd.Dict{
		w.ns.Keys.Request:    w.ns.Requests.EditorOpen,
		w.ns.Keys.Name:       name,
		w.ns.Keys.SourceText: text,
	}
	if len(cmd.Argv) > 0 {
		req[w.ns.Keys.CompilerArgs] = sourcekitd.Array(toValues(cmd.Argv))
	}
	if syntacticOnly {
		req[w.ns.Keys.SyntacticOnly] = true
	}
	if enableSyntaxMap {
		req[w.ns.Keys.EnableSyntaxMap] = true
	}
	return req
}

func (w *Worker) editorCloseRequest(name string) sourcekitd.Dict {
	return sourcekitd.Dict{
		w.ns.Keys.Request: w.ns.Requests.EditorClose,
		w.ns.Keys.Name:    name,
	}
}

func (w *Worker) editorReplaceTextRequest(name string, offset, length int, text string) sourcekitd.Dict {
	return sourcekitd.Dict{
		w.ns.Keys.Request:    w.ns.Requests.EditorReplaceText,
		w.ns.Keys.Name:       name,
		w.ns.Keys.Offset:     int64(offset),
		w.ns.Keys.Length:     int64(length),
		w.ns.Keys.SourceText: text,
	}
}

func (w *Worker) relatedIdentsRequest(name string, offset int, cmd buildsettings.CompileCommand) sourcekitd.Dict {
	req := sourcekitd.Dict{
		w.ns.Keys.Request: w.ns.Requests.RelatedIdents,
		w.ns.Keys.Name:    name,
		w.ns.Keys.Offset:  int64(offset),
	}
	if len(cmd.Argv) > 0 {
		req[w.ns.Keys.CompilerArgs] = sourcekitd.Array(toValues(cmd.Argv))
	}
	return req
}

func (w *Worker) cursorInfoRequest(name string, offset int, cmd buildsettings.CompileCommand, retrieveRefactorActions bool) sourcekitd.Dict {
	req := sourcekitd.Dict{
		w.ns.Keys.Request: w.ns.Requests.CursorInfo,
		w.ns.Keys.Name:    name,
		w.ns.Keys.Offset:  int64(offset),
		w.ns.Keys.Length:  int64(0),
	}
	if len(cmd.Argv) > 0 {
		req[w.ns.Keys.CompilerArgs] = sourcekitd.Array(toValues(cmd.Argv))
	}
	if retrieveRefactorActions {
		req[w.ns.Keys.RetrieveRefactorActions] = true
	}
	return req
}

func (w *Worker) semanticRefactoringRequest(name string, offset int, actionUID sourcekitd.ValueUID, cmd buildsettings.CompileCommand) sourcekitd.Dict {
	req := sourcekitd.Dict{
		w.ns.Keys.Request:    w.ns.Requests.SemanticRefactoring,
		w.ns.Keys.Name:       name,
		w.ns.Keys.Offset:     int64(offset),
		w.ns.Keys.ActionUID:  actionUID,
	}
	if len(cmd.Argv) > 0 {
		req[w.ns.Keys.CompilerArgs] = sourcekitd.Array(toValues(cmd.Argv))
	}
	return req
}

func (w *Worker) codeCompleteOpenRequest(name string, offset int, cmd buildsettings.CompileCommand) sourcekitd.Dict {
	req := sourcekitd.Dict{
		w.ns.Keys.Request: w.ns.Requests.CodeCompleteOpen,
		w.ns.Keys.Name:    name,
		w.ns.Keys.Offset:  int64(offset),
	}
	if len(cmd.Argv) > 0 {
		req[w.ns.Keys.CompilerArgs] = sourcekitd.Array(toValues(cmd.Argv))
	}
	return req
}

func (w *Worker) codeCompleteCloseRequest(name string, offset int) sourcekitd.Dict {
	return sourcekitd.Dict{
		w.ns.Keys.Request: w.ns.Requests.CodeCompleteClose,
		w.ns.Keys.Name:    name,
		w.ns.Keys.Offset:  int64(offset),
	}
}

func (w *Worker) crashExitRequest() sourcekitd.Dict {
	return sourcekitd.Dict{
		w.ns.Keys.Request: w.ns.Requests.CrashExit,
	}
}

func toValues(s []string) []sourcekitd.Value {
	out := make([]sourcekitd.Value, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

// sendSync issues req and maps a client error to the boundary's
// RequestError, driving the state machine on connection_interrupted as
// spec.md §7 requires. When w.requestTimeout is set, the ctx passed to
// the client carries that deadline; neither client consults ctx, so the
// request itself is not interrupted. Must be called from the lane.
func (w *Worker) sendSync(ctx context.Context, req sourcekitd.Dict) (sourcekitd.Dict, *RequestError) {
	if w.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.requestTimeout)
		defer cancel()
	}

	resp, err := w.client.SendSync(ctx, req)
	if err == nil {
		return resp, nil
	}
	reqErr := requestErrorFromClient(err)
	if reqErr.Kind == ErrConnectionInterrupted {
		w.handleConnectionInterrupted()
	}
	return nil, reqErr
}
