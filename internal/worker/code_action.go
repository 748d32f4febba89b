package worker

import (
	"context"
	"fmt"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
	"golang.org/x/sync/errgroup"

	"github.com/swift-server/sourcekit-lsp-go/internal/diagnostics"
	"github.com/swift-server/sourcekit-lsp-go/internal/docmanager"
	"github.com/swift-server/sourcekit-lsp-go/internal/translate"
)

// semanticRefactorCommand is the only executeCommand the worker accepts
// (spec.md §4.6 "ExecuteCommand — only semantic-refactor is accepted").
const semanticRefactorCommand = "semantic-refactor"

// CodeAction handles textDocument/codeAction. The refactor and quick-fix
// providers run as independent lane tasks joined by a completion group,
// per spec.md §5 "Fan-out" — each issues its own compiler-service call (or
// cache read) concurrently with the other, and their results are merged
// once both finish.
func (w *Worker) CodeAction(ctx context.Context, rawURI string, rng protocol.Range, actx protocol.CodeActionContext) ([]protocol.CodeAction, *RequestError) {
	wantRefactor, wantQuickFix := codeActionFilters(actx.Only)

	uri := docmanager.ParseURI(rawURI)

	var refactorActions []protocol.CodeAction
	var refactorErr *RequestError
	var quickFixes []protocol.CodeAction

	g, gctx := errgroup.WithContext(ctx)
	if wantRefactor {
		g.Go(func() error {
			refactorActions, refactorErr = w.refactorCodeActions(gctx, rawURI, uri, rng)
			return nil
		})
	}
	if wantQuickFix {
		g.Go(func() error {
			quickFixes = w.quickFixCodeActions(uri, rng, actx.Diagnostics)
			return nil
		})
	}
	_ = g.Wait()

	if refactorErr != nil {
		return nil, refactorErr
	}
	return append(refactorActions, quickFixes...), nil
}

// codeActionFilters reports which of the two providers a client's `only`
// filter admits. A nil/empty filter admits both (spec.md §4.6).
func codeActionFilters(only []protocol.CodeActionKind) (wantRefactor, wantQuickFix bool) {
	if len(only) == 0 {
		return true, true
	}
	for _, k := range only {
		switch {
		case strings.HasPrefix(string(k), string(protocol.CodeActionKindRefactor)):
			wantRefactor = true
		case strings.HasPrefix(string(k), string(protocol.CodeActionKindQuickFix)):
			wantQuickFix = true
		}
	}
	return wantRefactor, wantQuickFix
}

// refactorCodeActions issues cursor-info with retrieve_refactor_actions=1
// at rng.Start and turns each compiler-service refactor action into a
// CodeAction whose command round-trips the action's identity through
// executeCommand's Arguments (spec.md §4.6).
func (w *Worker) refactorCodeActions(ctx context.Context, rawURI string, uri docmanager.URI, rng protocol.Range) ([]protocol.CodeAction, *RequestError) {
	type result struct {
		actions []translate.RefactorAction
		offset  int
		err     *RequestError
	}

	r := call(w.lane, func() result {
		snap, ok := w.docs.LatestSnapshot(uri)
		if !ok {
			return result{err: newRequestError(ErrNotFound, "document not open: %s", rawURI)}
		}
		offset, ok := snap.Lines.UTF8OffsetOf(int(rng.Start.Line), int(rng.Start.Character))
		if !ok {
			return result{err: newRequestError(ErrInvalidRequest, "position out of range")}
		}

		name := pseudoPath(uri)
		cmd := w.compileCommands[rawURI]
		resp, reqErr := w.sendSync(ctx, w.cursorInfoRequest(name, offset, cmd, true))
		if reqErr != nil {
			return result{err: reqErr}
		}

		return result{actions: translate.RefactorActions(w.ns, resp), offset: offset}
	})
	if r.err != nil {
		return nil, r.err
	}

	kind := protocol.CodeActionKindRefactor
	out := make([]protocol.CodeAction, 0, len(r.actions))
	for _, a := range r.actions {
		out = append(out, protocol.CodeAction{
			Title: a.Title,
			Kind:  &kind,
			Command: &protocol.Command{
				Title:     a.Title,
				Command:   semanticRefactorCommand,
				Arguments: []any{rawURI, r.offset, uint64(a.ActionUID)},
			},
		})
	}
	return out, nil
}

// quickFixCodeActions iterates the diagnostics cached for uri whose range
// overlaps rng (including zero-length ranges), emitting one CodeAction per
// fix-it and moving the diagnostic onto the action with its fix-its
// stripped, but only for diagnostics the client itself submitted — matched
// by structural equality on {range, severity, code, source, message}
// (spec.md §4.6, §8 law 5).
func (w *Worker) quickFixCodeActions(uri docmanager.URI, rng protocol.Range, clientDiagnostics []protocol.Diagnostic) []protocol.CodeAction {
	cached := call(w.lane, func() []diagnostics.Cached {
		return w.diags.Overlapping(uri.Raw, rng)
	})

	kind := protocol.CodeActionKindQuickFix
	var out []protocol.CodeAction
	for _, c := range cached {
		fixits, ok := c.Diagnostic.Data.([]protocol.TextEdit)
		if !ok || len(fixits) == 0 {
			continue
		}
		if !containsStructurallyEqual(clientDiagnostics, c.Diagnostic) {
			continue
		}

		stripped := c.Diagnostic
		stripped.Data = nil

		for _, edit := range fixits {
			out = append(out, protocol.CodeAction{
				Title:       fixitTitle(edit),
				Kind:        &kind,
				Diagnostics: []protocol.Diagnostic{stripped},
				Edit: &protocol.WorkspaceEdit{
					Changes: map[protocol.DocumentUri][]protocol.TextEdit{uri.Raw: {edit}},
				},
			})
		}
	}
	return out
}

func fixitTitle(edit protocol.TextEdit) string {
	if edit.NewText == "" {
		return "Remove"
	}
	return fmt.Sprintf("Replace with '%s'", edit.NewText)
}

// containsStructurallyEqual reports whether diags contains a diagnostic
// structurally equal to d on {range, severity, code, source, message}.
func containsStructurallyEqual(diags []protocol.Diagnostic, d protocol.Diagnostic) bool {
	for _, other := range diags {
		if diagnosticsStructurallyEqual(other, d) {
			return true
		}
	}
	return false
}

func diagnosticsStructurallyEqual(a, b protocol.Diagnostic) bool {
	if a.Range != b.Range {
		return false
	}
	if a.Message != b.Message {
		return false
	}
	if !severityEqual(a.Severity, b.Severity) {
		return false
	}
	if !stringPtrEqual(a.Source, b.Source) {
		return false
	}
	return codeEqual(a.Code, b.Code)
}

func severityEqual(a, b *protocol.DiagnosticSeverity) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func codeEqual(a, b *protocol.IntegerOrString) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Value == b.Value
}
