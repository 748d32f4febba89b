package worker

import (
	"context"

	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
)

// Crash is a test-only operation alongside the worker's real LSP contract:
// it asks the compiler service to exit, letting tests drive the
// crash-recovery state machine end to end instead of waiting for a real
// daemon fault. The request is fired and forgotten — a crashing daemon has
// no reply to give — and a connection_interrupted notification is expected
// to arrive shortly after, same as a real crash.
func (w *Worker) Crash(ctx context.Context) {
	call(w.lane, func() bool {
		w.client.SendAsync(ctx, w.crashExitRequest(), func(sourcekitd.Dict, error) {})
		return true
	})
}
