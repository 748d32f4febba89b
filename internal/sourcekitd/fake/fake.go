// Package fake provides an in-memory sourcekitd.Client for exercising
// internal/worker without a real compiler-service dylib. Responses are
// scripted per request UID; notifications and crashes are injected
// directly by tests.
package fake

import (
	"context"
	"slices"
	"sync"

	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
)

// Responder produces a response (or error) for a single request.
type Responder func(req sourcekitd.Dict) (sourcekitd.Dict, error)

// Client is a scriptable, in-process stand-in for the real FFI binding.
// All methods are safe for concurrent use.
type Client struct {
	mu sync.Mutex

	resolver   sourcekitd.UIDResolver
	namespaces sourcekitd.Namespaces

	// handlers mirrors the default responder for a request UID, looked up
	// via req[Keys.Request]. Missing entries fall back to defaultResponder.
	handlers         map[sourcekitd.ValueUID]Responder
	defaultResponder Responder

	notificationHandlers map[sourcekitd.HandlerID]sourcekitd.NotificationHandler
	nextHandlerID        sourcekitd.HandlerID

	// sent records every request this fake has received, for assertions.
	sent []sourcekitd.Dict

	closed bool
}

// New constructs a fake client resolving UIDs through resolver, a
// sequential in-memory resolver (see NewUIDResolver). namespaces must have
// been resolved through the same resolver, as NewClient does.
func New(resolver sourcekitd.UIDResolver, namespaces sourcekitd.Namespaces) *Client {
	return &Client{
		resolver:             resolver,
		namespaces:           namespaces,
		handlers:             make(map[sourcekitd.ValueUID]Responder),
		notificationHandlers: make(map[sourcekitd.HandlerID]sourcekitd.NotificationHandler),
		defaultResponder: func(req sourcekitd.Dict) (sourcekitd.Dict, error) {
			return sourcekitd.Dict{}, nil
		},
	}
}

// OnRequest scripts the response for every request whose key.request value
// equals uid. Call again with the same uid to replace the script.
func (c *Client) OnRequest(uid sourcekitd.ValueUID, r Responder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[uid] = r
}

// SetDefaultResponder scripts the response used when no per-UID responder
// has been registered.
func (c *Client) SetDefaultResponder(r Responder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultResponder = r
}

// Sent returns every request received so far, in order.
func (c *Client) Sent() []sourcekitd.Dict {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]sourcekitd.Dict, len(c.sent))
	copy(out, c.sent)
	return out
}

func (c *Client) record(req sourcekitd.Dict) Responder {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sent = append(c.sent, req)

	if uid, ok := req.GetUID(c.namespaces.Keys.Request); ok {
		if r, ok := c.handlers[uid]; ok {
			return r
		}
	}
	return c.defaultResponder
}

func (c *Client) SendSync(ctx context.Context, req sourcekitd.Dict) (sourcekitd.Dict, error) {
	r := c.record(req)
	return r(req)
}

type fakeHandle struct {
	cancelled bool
	mu        *sync.Mutex
}

func (h *fakeHandle) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cancelled = true
}

// SendAsync runs the script synchronously but delivers the callback on a
// fresh goroutine, matching the real client's contract that the callback
// arrives from a goroutine the worker does not control.
func (c *Client) SendAsync(ctx context.Context, req sourcekitd.Dict, callback func(sourcekitd.Dict, error)) sourcekitd.Handle {
	r := c.record(req)
	h := &fakeHandle{mu: &sync.Mutex{}}

	go func() {
		resp, err := r(req)

		h.mu.Lock()
		cancelled := h.cancelled
		h.mu.Unlock()
		if cancelled {
			callback(nil, sourcekitd.NewError(sourcekitd.ErrCancelled, "request cancelled"))
			return
		}

		callback(resp, err)
	}()

	return h
}

func (c *Client) AddNotificationHandler(h sourcekitd.NotificationHandler) sourcekitd.HandlerID {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextHandlerID++
	id := c.nextHandlerID
	c.notificationHandlers[id] = h
	return id
}

func (c *Client) RemoveNotificationHandler(id sourcekitd.HandlerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.notificationHandlers, id)
}

func (c *Client) Namespaces() sourcekitd.Namespaces {
	return c.namespaces
}

// Resolve and ResolveValue implement sourcekitd.UIDResolver by delegating
// to the resolver namespaces was built from, so kind tables built on top
// of this client agree with it about every UID.
func (c *Client) Resolve(name string) sourcekitd.Key { return c.resolver.Resolve(name) }

func (c *Client) ResolveValue(name string) sourcekitd.ValueUID { return c.resolver.ResolveValue(name) }

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Closed reports whether Close has been called, for test assertions.
func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// PushNotification delivers n to every currently registered handler, in
// registration order, synchronously on the calling goroutine — tests
// choose whether to call this from a separate goroutine to simulate the
// daemon's own out-of-band delivery.
func (c *Client) PushNotification(n sourcekitd.Dict) {
	c.mu.Lock()
	ids := make([]sourcekitd.HandlerID, 0, len(c.notificationHandlers))
	for id := range c.notificationHandlers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	handlers := make([]sourcekitd.NotificationHandler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, c.notificationHandlers[id])
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h.HandleNotification(n)
	}
}

// Crash simulates a daemon crash: every handler observes a
// sourcekitd.CrashNotificationName-shaped Dict, matching what the real
// client synthesizes when its connection drops (spec §4.4/§8 scenario 1).
func (c *Client) Crash() {
	c.PushNotification(sourcekitd.Dict{
		c.namespaces.Keys.Name: sourcekitd.CrashNotificationName,
	})
}

// PushSemaEnabled simulates the daemon's semantic-warm-up-complete
// notification.
func (c *Client) PushSemaEnabled() {
	c.PushNotification(sourcekitd.Dict{
		c.namespaces.Keys.Notification: c.namespaces.Notifications.SemaEnabled,
	})
}

// PushDocumentUpdate simulates the daemon's documentupdate notification for
// the editor document named name (its pseudo-path).
func (c *Client) PushDocumentUpdate(name string) {
	c.PushNotification(sourcekitd.Dict{
		c.namespaces.Keys.Notification: c.namespaces.Notifications.DocumentUpdate,
		c.namespaces.Keys.Name:         name,
	})
}
