package translate

import (
	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
)

// RefactorAction is one entry of a cursor_info response's refactor_actions
// array: a title the editor shows and the opaque action UID that, round-
// tripped through executeCommand, tells the daemon which refactoring to
// perform (spec.md §4.6 "Code actions" — "each compiler-service refactor
// action becomes a CodeAction").
type RefactorAction struct {
	Title     string
	ActionUID sourcekitd.ValueUID
}

// RefactorActions extracts the refactor_actions array a cursor_info
// response carries when it was issued with retrieve_refactor_actions=1.
// An entry missing a name or action UID is dropped.
func RefactorActions(ns sourcekitd.Namespaces, cursorInfo sourcekitd.Dict) []RefactorAction {
	arr, ok := cursorInfo.GetArray(ns.Keys.RefactorActions)
	if !ok {
		return nil
	}

	var out []RefactorAction
	for _, v := range arr {
		d, ok := v.(sourcekitd.Dict)
		if !ok {
			continue
		}
		name, ok1 := d.GetString(ns.Keys.ActionName)
		uid, ok2 := d.GetUID(ns.Keys.ActionUID)
		if !ok1 || !ok2 {
			continue
		}
		out = append(out, RefactorAction{Title: name, ActionUID: uid})
	}
	return out
}
