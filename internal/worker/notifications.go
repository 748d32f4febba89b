package worker

import (
	"github.com/swift-server/sourcekit-lsp-go/internal/diagnostics"
	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
)

// onNotification is registered as the client's NotificationHandler. It runs
// on a goroutine the client owns, so it only ever posts onto the lane
// before touching worker state (spec.md §5).
func (w *Worker) onNotification(n sourcekitd.Dict) {
	w.lane.post(func() {
		w.dispatchNotification(n)
	})
}

// dispatchNotification runs on the lane.
func (w *Worker) dispatchNotification(n sourcekitd.Dict) {
	if name, ok := n.GetString(w.ns.Keys.Name); ok && name == sourcekitd.CrashNotificationName {
		w.handleConnectionInterrupted()
		return
	}

	kind, ok := n.GetUID(w.ns.Keys.Notification)
	if !ok {
		return
	}

	switch kind {
	case w.ns.Notifications.SemaEnabled:
		w.state.onSemaEnabled()
	case w.ns.Notifications.DocumentUpdate:
		if name, ok := n.GetString(w.ns.Keys.Name); ok {
			w.handleDocumentUpdate(name)
		}
	default:
		// Any other notification counts toward recovery progress once the
		// connection has already dropped (spec.md §4.5 second row).
		w.state.onAnyNotificationWhileInterrupted()
	}
}

// handleConnectionInterrupted implements the crash-recovery cascade
// (spec.md §4.5, adapted to the single connection-drop
// signal the real client actually sends). The first two transitions —
// Connected to ConnectionInterrupted, then straight on to
// SemanticFunctionalityDisabled — and the document/diagnostic reset happen
// synchronously, in this one notification-processing tick. The final
// transition back to Connected waits on Coordinator.ReopenDocuments, which
// the coordinator implements by calling back into OpenDocument for every
// document it still considers open — calls that need the lane themselves,
// so they cannot run from here without deadlocking it. That callback is
// therefore dispatched on its own goroutine; it settles the state machine
// once it returns. A drop observed while recovery is already under way is
// a no-op.
func (w *Worker) handleConnectionInterrupted() {
	if w.state.current != Connected {
		return
	}

	w.state.onConnectionInterrupted()
	w.resetDocumentState()
	w.state.onAnyNotificationWhileInterrupted()

	if w.coordinator == nil {
		w.state.onSemaEnabled()
		return
	}

	go func() {
		w.coordinator.ReopenDocuments()
		w.lane.post(func() {
			w.state.onSemaEnabled()
		})
	}()
}

// resetDocumentState discards everything scoped to the now-dead connection:
// the document manager's snapshots (the daemon no longer has any editor
// buffers open), cached diagnostics, delta-encoding state, and the
// pseudo-path index. Must run on the lane.
func (w *Worker) resetDocumentState() {
	w.docs.Reset()
	w.diags = diagnostics.New()
	clear(w.compileCommands)
	clear(w.lastTokens)
	clear(w.tokenResultSeq)
	clear(w.pseudoPaths)
	w.completion = nil
}

// handleDocumentUpdate implements the synthetic-refresh flow spec.md §4.7
// describes for an unsolicited documentupdate notification: replay a
// zero-length edit at the start of the document to force the daemon to
// recompute and push fresh diagnostics, without the client having typed
// anything.
func (w *Worker) handleDocumentUpdate(pseudoPath string) {
	uri, ok := w.pseudoPaths[pseudoPath]
	if !ok {
		return
	}
	if _, ok := w.docs.LatestSnapshot(uri); !ok {
		return
	}
	w.synchronousRefresh(uri, pseudoPath)
}
