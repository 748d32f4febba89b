//go:build linux || darwin

package sourcekitd

/*
#cgo LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>
#include <stdint.h>

static void* sk_dlopen(const char* path) {
	return dlopen(path, RTLD_NOW | RTLD_LOCAL);
}
static const char* sk_dlerror(void) {
	return dlerror();
}
static void* sk_dlsym_clear(void* h, const char* name, char** err) {
	dlerror();
	void* p = dlsym(h, name);
	char* e = dlerror();
	if (e) { if (err) *err = e; return NULL; }
	if (err) *err = NULL;
	return p;
}
static int sk_dlclose(void* h) {
	return dlclose(h);
}

// sourcekitd's real C API shape: requests/responses are opaque objects the
// daemon builds and frees; uid_t is the daemon's interned-string handle.
typedef void* sourcekitd_object_t;
typedef void* sourcekitd_uid_t;
typedef void* sourcekitd_response_t;
typedef void* sourcekitd_request_handle_t;

typedef void (*sk_initialize_fn)(void);
typedef void (*sk_shutdown_fn)(void);
typedef sourcekitd_uid_t (*sk_uid_get_from_cstr_fn)(const char*);
typedef sourcekitd_response_t (*sk_send_request_sync_fn)(sourcekitd_object_t);
typedef void (*sk_send_request_response_fn)(sourcekitd_response_t, void*);
typedef void (*sk_send_request_fn)(sourcekitd_object_t, sourcekitd_request_handle_t*, sk_send_request_response_fn, void*);
typedef void (*sk_cancel_request_fn)(sourcekitd_request_handle_t);
typedef void (*sk_notification_handler_fn)(sourcekitd_response_t, void*);
typedef void (*sk_set_notification_handler_fn)(sk_notification_handler_fn, void*);
typedef int (*sk_response_is_error_fn)(sourcekitd_response_t);
typedef void (*sk_response_dispose_fn)(sourcekitd_response_t);

// Forward decl of the Go-exported thunks used as C function pointers.
extern void skAsyncReplyThunk(sourcekitd_response_t, void* ctx);
extern void skNotificationThunk(sourcekitd_response_t, void* ctx);

// Thin call-through wrappers: cgo cannot invoke a C function-pointer
// value directly from Go, so every dlsym'd entry point is called through
// one of these, mirroring the call-through pattern used for libffi calls
// elsewhere in this corpus.
static void sk_call_initialize(sk_initialize_fn fn) {
	fn();
}
static void sk_call_shutdown(sk_shutdown_fn fn) {
	fn();
}
static sourcekitd_uid_t sk_call_uid_get_from_cstr(sk_uid_get_from_cstr_fn fn, const char* name) {
	return fn(name);
}
static sourcekitd_response_t sk_call_send_request_sync(sk_send_request_sync_fn fn, sourcekitd_object_t req) {
	return fn(req);
}
static void sk_call_send_request(sk_send_request_fn fn, sourcekitd_object_t req, sourcekitd_request_handle_t* handle_out, void* ctx) {
	fn(req, handle_out, skAsyncReplyThunk, ctx);
}
static void sk_call_cancel_request(sk_cancel_request_fn fn, sourcekitd_request_handle_t handle) {
	fn(handle);
}
static void sk_call_set_notification_handler(sk_set_notification_handler_fn fn, void* ctx) {
	fn(skNotificationThunk, ctx);
}
static int sk_call_response_is_error(sk_response_is_error_fn fn, sourcekitd_response_t resp) {
	return fn(resp);
}
static void sk_call_response_dispose(sk_response_dispose_fn fn, sourcekitd_response_t resp) {
	fn(resp);
}
*/
import "C"

import (
	"context"
	"fmt"
	"runtime/cgo"
	"slices"
	"sync"
	"unsafe"
)

// dylibHandle owns one dlopen'd sourcekitd dylib and the resolved function
// pointers this package calls through. Decoding the daemon's native
// request/response object format is deliberately out of scope for this
// sketch: the worker communicates through the Dict/Value model, and every
// wire access funnels through toWireObject/fromWireResponse below so that
// boundary has exactly one implementation to extend.
type dylibHandle struct {
	handle unsafe.Pointer

	initialize             C.sk_initialize_fn
	shutdown               C.sk_shutdown_fn
	uidGetFromCStr         C.sk_uid_get_from_cstr_fn
	sendRequestSync        C.sk_send_request_sync_fn
	sendRequest            C.sk_send_request_fn
	cancelRequest          C.sk_cancel_request_fn
	setNotificationHandler C.sk_set_notification_handler_fn
	responseIsError        C.sk_response_is_error_fn
	responseDispose        C.sk_response_dispose_fn
}

func dlerr() string {
	if e := C.sk_dlerror(); e != nil {
		return C.GoString(e)
	}
	return "unknown dlerror"
}

func dlsym(h unsafe.Pointer, name string) (unsafe.Pointer, error) {
	cs := C.CString(name)
	defer C.free(unsafe.Pointer(cs))
	var cerr *C.char
	p := C.sk_dlsym_clear(h, cs, &cerr)
	if cerr != nil {
		return nil, fmt.Errorf("dlsym(%q): %s", name, C.GoString(cerr))
	}
	return p, nil
}

func openDylib(path string) (*dylibHandle, error) {
	cs := C.CString(path)
	defer C.free(unsafe.Pointer(cs))

	h := C.sk_dlopen(cs)
	if h == nil {
		return nil, NewError(ErrFailed, "dlopen(%q): %s", path, dlerr())
	}

	d := &dylibHandle{handle: h}
	syms := []struct {
		name string
		dst  *unsafe.Pointer
	}{
		{"sourcekitd_initialize", (*unsafe.Pointer)(unsafe.Pointer(&d.initialize))},
		{"sourcekitd_shutdown", (*unsafe.Pointer)(unsafe.Pointer(&d.shutdown))},
		{"sourcekitd_uid_get_from_cstr", (*unsafe.Pointer)(unsafe.Pointer(&d.uidGetFromCStr))},
		{"sourcekitd_send_request_sync", (*unsafe.Pointer)(unsafe.Pointer(&d.sendRequestSync))},
		{"sourcekitd_send_request", (*unsafe.Pointer)(unsafe.Pointer(&d.sendRequest))},
		{"sourcekitd_cancel_request", (*unsafe.Pointer)(unsafe.Pointer(&d.cancelRequest))},
		{"sourcekitd_set_notification_handler", (*unsafe.Pointer)(unsafe.Pointer(&d.setNotificationHandler))},
		{"sourcekitd_response_is_error", (*unsafe.Pointer)(unsafe.Pointer(&d.responseIsError))},
		{"sourcekitd_response_dispose", (*unsafe.Pointer)(unsafe.Pointer(&d.responseDispose))},
	}
	for _, s := range syms {
		p, err := dlsym(h, s.name)
		if err != nil {
			C.sk_dlclose(h)
			return nil, NewError(ErrMissingRequiredSymbol, "%s: %v", s.name, err)
		}
		*s.dst = p
	}

	if d.initialize != nil {
		C.sk_call_initialize(d.initialize)
	}
	return d, nil
}

func (d *dylibHandle) close() error {
	if d.shutdown != nil {
		C.sk_call_shutdown(d.shutdown)
	}
	if int(C.sk_dlclose(d.handle)) != 0 {
		return fmt.Errorf("dlclose: %s", dlerr())
	}
	return nil
}

// FFIClient is the real Client implementation, bound to one dlopen'd
// sourcekitd dylib. Construct one per Registry.Acquire call, not directly.
type FFIClient struct {
	dylib *dylibHandle
	ns    Namespaces

	mu              sync.Mutex
	notifHandlers   map[HandlerID]NotificationHandler
	nextHandlerID   HandlerID
	notifSelfHandle cgo.Handle
}

// OpenFFIClient dlopens path and resolves sourcekitd's exported entry
// points. It is an Opener suitable for Registry.
func OpenFFIClient(path string) (Client, error) {
	dylib, err := openDylib(path)
	if err != nil {
		return nil, err
	}

	c := &FFIClient{
		dylib:         dylib,
		notifHandlers: make(map[HandlerID]NotificationHandler),
	}
	c.ns = ResolveNamespaces(c)

	c.notifSelfHandle = cgo.NewHandle(c)
	if dylib.setNotificationHandler != nil {
		C.sk_call_set_notification_handler(dylib.setNotificationHandler, unsafe.Pointer(uintptr(c.notifSelfHandle)))
	}

	return c, nil
}

// Resolve implements UIDResolver by calling into the dylib's interning
// table; this package never hard-codes a numeric UID.
func (c *FFIClient) Resolve(name string) Key {
	cs := C.CString(name)
	defer C.free(unsafe.Pointer(cs))
	uid := C.sk_call_uid_get_from_cstr(c.dylib.uidGetFromCStr, cs)
	return Key(uintptr(uid))
}

func (c *FFIClient) ResolveValue(name string) ValueUID {
	cs := C.CString(name)
	defer C.free(unsafe.Pointer(cs))
	uid := C.sk_call_uid_get_from_cstr(c.dylib.uidGetFromCStr, cs)
	return ValueUID(uintptr(uid))
}

func (c *FFIClient) Namespaces() Namespaces { return c.ns }

// toWireObject and fromWireResponse mark the boundary where this package
// would serialize Dict into the daemon's native request-object API
// (sourcekitd_request_dictionary_create/_set_value/...) and decode its
// response the same way.
func (c *FFIClient) toWireObject(req Dict) C.sourcekitd_object_t {
	return C.sourcekitd_object_t(unsafe.Pointer(uintptr(0)))
}

func (c *FFIClient) fromWireResponse(resp C.sourcekitd_response_t) (Dict, error) {
	if c.dylib.responseIsError != nil {
		if int(C.sk_call_response_is_error(c.dylib.responseIsError, resp)) != 0 {
			return nil, NewError(ErrFailed, "sourcekitd response error")
		}
	}
	return Dict{}, nil
}

func (c *FFIClient) SendSync(ctx context.Context, req Dict) (Dict, error) {
	wireReq := c.toWireObject(req)
	resp := C.sk_call_send_request_sync(c.dylib.sendRequestSync, wireReq)
	defer func() {
		if c.dylib.responseDispose != nil {
			C.sk_call_response_dispose(c.dylib.responseDispose, resp)
		}
	}()
	return c.fromWireResponse(resp)
}

type ffiHandle struct {
	client *FFIClient
	wire   C.sourcekitd_request_handle_t
}

func (h *ffiHandle) Cancel() {
	if h.client.dylib.cancelRequest != nil {
		C.sk_call_cancel_request(h.client.dylib.cancelRequest, h.wire)
	}
}

// asyncCallback carries the user callback through a cgo.Handle across the
// C boundary; skAsyncReplyThunk rebuilds it and deletes the handle exactly
// once the reply has arrived, since each request completes at most once.
type asyncCallback struct {
	client   *FFIClient
	callback func(Dict, error)
}

func (c *FFIClient) SendAsync(ctx context.Context, req Dict, callback func(Dict, error)) Handle {
	wireReq := c.toWireObject(req)

	h := cgo.NewHandle(&asyncCallback{client: c, callback: callback})

	var outHandle C.sourcekitd_request_handle_t
	C.sk_call_send_request(c.dylib.sendRequest, wireReq, &outHandle, unsafe.Pointer(uintptr(h)))

	return &ffiHandle{client: c, wire: outHandle}
}

//export skAsyncReplyThunk
func skAsyncReplyThunk(resp C.sourcekitd_response_t, ctx unsafe.Pointer) {
	h := cgo.Handle(uintptr(ctx))
	v := h.Value()
	h.Delete()

	ac, ok := v.(*asyncCallback)
	if !ok {
		return
	}

	dict, err := ac.client.fromWireResponse(resp)
	if ac.client.dylib.responseDispose != nil {
		C.sk_call_response_dispose(ac.client.dylib.responseDispose, resp)
	}
	ac.callback(dict, err)
}

//export skNotificationThunk
func skNotificationThunk(resp C.sourcekitd_response_t, ctx unsafe.Pointer) {
	h := cgo.Handle(uintptr(ctx))
	v := h.Value()
	c, ok := v.(*FFIClient)
	if !ok {
		return
	}

	n, err := c.fromWireResponse(resp)
	if err != nil {
		return
	}

	c.mu.Lock()
	ids := make([]HandlerID, 0, len(c.notifHandlers))
	for id := range c.notifHandlers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	handlers := make([]NotificationHandler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, c.notifHandlers[id])
	}
	c.mu.Unlock()

	for _, nh := range handlers {
		nh.HandleNotification(n)
	}
}

func (c *FFIClient) AddNotificationHandler(h NotificationHandler) HandlerID {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextHandlerID++
	id := c.nextHandlerID
	c.notifHandlers[id] = h
	return id
}

func (c *FFIClient) RemoveNotificationHandler(id HandlerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.notifHandlers, id)
}

func (c *FFIClient) Close() error {
	c.notifSelfHandle.Delete()
	return c.dylib.close()
}
