package worker

import (
	"context"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swift-server/sourcekit-lsp-go/internal/docmanager"
	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
	"github.com/swift-server/sourcekit-lsp-go/internal/translate"
)

// ExecuteCommand handles workspace/executeCommand. Only semantic-refactor
// is accepted (spec.md §4.6); everything else is an invalid request. The
// refactoring is invoked against the compiler service, the resulting
// workspace edit is sent to the client via Coordinator.ApplyEdit, and the
// failure reason (if any) is surfaced to the caller rather than swallowed.
func (w *Worker) ExecuteCommand(ctx context.Context, params protocol.ExecuteCommandParams) (*protocol.WorkspaceEdit, *RequestError) {
	if params.Command != semanticRefactorCommand {
		return nil, newRequestError(ErrInvalidRequest, "unsupported command: %s", params.Command)
	}

	rawURI, offset, actionUID, ok := parseSemanticRefactorArguments(params.Arguments)
	if !ok {
		return nil, newRequestError(ErrInvalidRequest, "malformed semantic-refactor arguments")
	}

	type result struct {
		edit protocol.WorkspaceEdit
		ok   bool
		err  *RequestError
	}

	r := call(w.lane, func() result {
		uri := docmanager.ParseURI(rawURI)
		snap, ok := w.docs.LatestSnapshot(uri)
		if !ok {
			return result{err: newRequestError(ErrNotFound, "document not open: %s", rawURI)}
		}

		name := pseudoPath(uri)
		cmd := w.compileCommands[rawURI]
		resp, reqErr := w.sendSync(ctx, w.semanticRefactoringRequest(name, offset, actionUID, cmd))
		if reqErr != nil {
			return result{err: reqErr}
		}

		editsArr, _ := resp.GetArray(w.ns.Keys.CategorizedEdits)
		edit, ok := translate.CategorizedEditsToWorkspaceEdit(w.ns, rawURI, snap.Lines, editsArr)
		return result{edit: edit, ok: ok}
	})
	if r.err != nil {
		return nil, r.err
	}
	if !r.ok {
		return nil, newRequestError(ErrNotFound, "semantic refactor produced no edits")
	}

	applied, failureReason, err := w.coordinator.ApplyEdit(ctx, semanticRefactorCommand, r.edit)
	if err != nil {
		return nil, newRequestError(ErrUnknown, "%v", err)
	}
	if !applied {
		return nil, newRequestError(ErrInvalidRequest, "client did not apply edit: %s", failureReason)
	}
	return &r.edit, nil
}

// parseSemanticRefactorArguments decodes the {uri, offset, actionUID}
// tuple a refactor CodeAction's command stashed in its Arguments, per
// code_action.go. Arguments round-trip through the client as JSON, so
// numeric values arrive as float64 regardless of how they were sent.
func parseSemanticRefactorArguments(args []any) (uri string, offset int, actionUID sourcekitd.ValueUID, ok bool) {
	if len(args) != 3 {
		return "", 0, 0, false
	}
	uri, ok = args[0].(string)
	if !ok {
		return "", 0, 0, false
	}
	switch v := args[1].(type) {
	case float64:
		offset = int(v)
	case int:
		offset = v
	default:
		return "", 0, 0, false
	}
	switch v := args[2].(type) {
	case float64:
		actionUID = sourcekitd.ValueUID(uint64(v))
	case uint64:
		actionUID = sourcekitd.ValueUID(v)
	default:
		return "", 0, 0, false
	}
	return uri, offset, actionUID, true
}
