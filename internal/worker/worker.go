// Package worker implements the Swift language service worker: the
// single-lane state machine that owns document state, serializes access to
// the out-of-process compiler service, drives crash recovery, and
// translates compiler-service responses into LSP results.
package worker

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swift-server/sourcekit-lsp-go/internal/buildsettings"
	"github.com/swift-server/sourcekit-lsp-go/internal/diagnostics"
	"github.com/swift-server/sourcekit-lsp-go/internal/docmanager"
	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
	"github.com/swift-server/sourcekit-lsp-go/internal/translate"
)

// Coordinator is the upstream capability the worker calls back into: the
// LSP transport adapter that owns the wire connection to the editor.
type Coordinator interface {
	// PublishDiagnostics sends textDocument/publishDiagnostics for uri.
	// Never called for a URI whose scheme is excluded (spec.md §8 law 6).
	PublishDiagnostics(uri string, diagnostics []protocol.Diagnostic)

	// ApplyEdit sends workspace/applyEdit and reports whether the client
	// applied it; failureReason is set when applied is false.
	ApplyEdit(ctx context.Context, label string, edit protocol.WorkspaceEdit) (applied bool, failureReason string, err error)

	// ReopenDocuments is invoked once the worker has transitioned into
	// SemanticFunctionalityDisabled, per spec.md §4.5. The coordinator is
	// expected to call back into Worker.OpenDocument for every document it
	// still considers open (the worker's own record was discarded on
	// interruption).
	ReopenDocuments()
}

// ExcludedSchemes lists the default URI schemes diagnostics are never
// published for (spec.md §3), overridable via config.
var ExcludedSchemes = []string{"git", "hg"}

// Worker is the language service worker. All exported methods are safe for
// concurrent use: each posts its work onto the single lane and blocks for
// the result, matching spec.md §5's serialization model.
type Worker struct {
	lane *lane

	client sourcekitd.Client
	ns     sourcekitd.Namespaces

	docs     *docmanager.Manager
	diags    *diagnostics.Cache
	kinds     *translate.KindTable
	severity  translate.SeverityUIDs
	stages    translate.StageUIDs
	commentUID sourcekitd.ValueUID
	buildBy   buildsettings.Provider

	state *stateMachine

	coordinator Coordinator
	logger      *slog.Logger

	excludedSchemes map[string]bool
	requestTimeout  time.Duration

	compileCommands map[string]buildsettings.CompileCommand
	lastTokens      map[string][]translate.Token
	tokenResultSeq  map[string]int64
	pseudoPaths     map[string]docmanager.URI
	notifHandlerID  sourcekitd.HandlerID

	completion *completionSession

	closeOnce sync.Once
}

// Options configures a new Worker.
type Options struct {
	Client          sourcekitd.Client
	BuildSettings   buildsettings.Provider
	Coordinator     Coordinator
	Logger          *slog.Logger
	ExcludedSchemes []string

	// RequestTimeout sets a deadline on the ctx passed to the client for
	// each compiler-service request. Neither the FFI client nor the fake
	// consults ctx, so it does not interrupt a request in progress. Zero
	// (the default) sets no deadline.
	RequestTimeout time.Duration
}

// New builds a Worker around client, wiring its notification handler onto
// the worker's own lane so every notification is processed serially with
// every other piece of worker state (spec.md §5 "Compiler-service
// synchronous calls block the lane... asynchronous calls... completion
// callbacks are re-posted to the lane").
func New(opts Options) *Worker {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	schemes := opts.ExcludedSchemes
	if schemes == nil {
		schemes = ExcludedSchemes
	}
	excluded := make(map[string]bool, len(schemes))
	for _, s := range schemes {
		excluded[s] = true
	}

	w := &Worker{
		lane:            newLane(64),
		client:          opts.Client,
		ns:              opts.Client.Namespaces(),
		docs:            docmanager.New(),
		diags:           diagnostics.New(),
		buildBy:         opts.BuildSettings,
		state:           newStateMachine(),
		coordinator:     opts.Coordinator,
		logger:          logger,
		excludedSchemes: excluded,
		requestTimeout:  opts.RequestTimeout,
		compileCommands: make(map[string]buildsettings.CompileCommand),
		lastTokens:      make(map[string][]translate.Token),
		tokenResultSeq:  make(map[string]int64),
		pseudoPaths:     make(map[string]docmanager.URI),
	}
	w.kinds = translate.NewKindTable(opts.Client)
	w.severity = translate.ResolveSeverityUIDs(opts.Client)
	w.stages = translate.ResolveStageUIDs(opts.Client)
	w.commentUID = opts.Client.ResolveValue("source.lang.swift.syntaxtype.comment")

	w.notifHandlerID = w.client.AddNotificationHandler(sourcekitd.NotificationHandlerFunc(w.onNotification))

	return w
}

// Shutdown releases the worker's hold on the compiler-service client and
// stops its lane. Safe to call more than once.
func (w *Worker) Shutdown() {
	w.closeOnce.Do(func() {
		call(w.lane, func() bool {
			w.client.RemoveNotificationHandler(w.notifHandlerID)
			return true
		})
		if err := w.client.Close(); err != nil {
			w.logger.Warn("error closing compiler-service client", "error", err)
		}
		w.lane.close()
	})
}

// AddStateChangeHandler registers h to be invoked synchronously, from the
// lane, on every future state transition.
func (w *Worker) AddStateChangeHandler(h StateChangeHandler) {
	call(w.lane, func() bool {
		w.state.addHandler(h)
		return true
	})
}

// State returns the worker's current connection state.
func (w *Worker) State() State {
	return call(w.lane, func() State { return w.state.current })
}

// isExcluded reports whether uri's scheme is in the excluded-schemes set
// (spec.md §3, §8 law 6). Must be called from the lane or treated as
// read-only map access (the set is fixed at construction, never mutated).
func (w *Worker) isExcluded(uri docmanager.URI) bool {
	return w.excludedSchemes[uri.Scheme]
}

// pseudoPath computes the daemon's stable file-handle string for uri: the
// filesystem path for file:// URIs, or the raw URI string itself as a
// synthesized tag for anything else (spec.md glossary "Pseudo-path").
func pseudoPath(uri docmanager.URI) string {
	if uri.Scheme == "file" {
		const prefix = "file://"
		if strings.HasPrefix(uri.Raw, prefix) {
			return uri.Raw[len(prefix):]
		}
	}
	return uri.Raw
}

// publish sends diagnostics for uri unless its scheme is excluded.
func (w *Worker) publish(uri docmanager.URI, cached []diagnostics.Cached) {
	if w.isExcluded(uri) {
		return
	}
	w.coordinator.PublishDiagnostics(uri.Raw, diagnostics.LSPDiagnostics(cached))
}
