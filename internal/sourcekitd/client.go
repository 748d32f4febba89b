package sourcekitd

import "context"

// NotificationHandler receives unsolicited messages pushed by the daemon
// (crash notices, sema_enabled, documentupdate). Handlers are invoked in
// registration order; a Client broadcasts to every registered handler.
type NotificationHandler interface {
	HandleNotification(n Dict)
}

// NotificationHandlerFunc adapts a plain function to NotificationHandler.
type NotificationHandlerFunc func(n Dict)

func (f NotificationHandlerFunc) HandleNotification(n Dict) { f(n) }

// HandlerID identifies a registered notification handler for removal.
type HandlerID uint64

// Handle identifies an in-flight asynchronous request. Cancel is
// best-effort: the FFI client forwards it to the daemon's cancel entry
// point, and the fake marks the handle and delivers ErrCancelled if Cancel
// lands before the reply. The worker issues every request through SendSync
// and holds no Handle.
type Handle interface {
	Cancel()
}

// Client is the capability the worker depends on; both the real FFI
// binding and the in-memory fake (package sourcekitd/fake) implement it,
// per the "trait-like capability" design note in spec §9.
type Client interface {
	// UIDResolver exposes the client's own UID-resolution table, so
	// callers building derived lookup tables (translate.KindTable) resolve
	// names through the same dylib instance this Client wraps, rather than
	// a second, disagreeing resolver.
	UIDResolver

	// SendSync blocks the calling lane until the daemon replies.
	SendSync(ctx context.Context, req Dict) (Dict, error)

	// SendAsync returns immediately; result is delivered by invoking
	// callback exactly once, from a goroutine the caller does not control
	// — the worker is responsible for re-posting that callback onto its
	// lane before touching any shared state.
	SendAsync(ctx context.Context, req Dict, callback func(Dict, error)) Handle

	AddNotificationHandler(h NotificationHandler) HandlerID
	RemoveNotificationHandler(id HandlerID)

	Namespaces() Namespaces

	// Close releases this client's reference to the underlying dylib
	// connection. See Registry for the shared, refcounted dylib handle
	// this typically delegates to.
	Close() error
}
