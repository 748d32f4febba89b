package fake

import (
	"sync"

	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
)

// UIDResolver assigns sequential, stable UIDs to names on first sight,
// standing in for a real dylib's uid-interning table. Two resolvers never
// agree on numeric values, so tests must resolve namespaces once and reuse
// them rather than comparing UIDs minted from separate resolvers.
type UIDResolver struct {
	mu   sync.Mutex
	next uint64
	keys map[string]sourcekitd.Key
	vals map[string]sourcekitd.ValueUID
}

// NewUIDResolver constructs an empty resolver.
func NewUIDResolver() *UIDResolver {
	return &UIDResolver{
		keys: make(map[string]sourcekitd.Key),
		vals: make(map[string]sourcekitd.ValueUID),
	}
}

func (r *UIDResolver) Resolve(name string) sourcekitd.Key {
	r.mu.Lock()
	defer r.mu.Unlock()
	if k, ok := r.keys[name]; ok {
		return k
	}
	r.next++
	k := sourcekitd.Key(r.next)
	r.keys[name] = k
	return k
}

func (r *UIDResolver) ResolveValue(name string) sourcekitd.ValueUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.vals[name]; ok {
		return v
	}
	r.next++
	v := sourcekitd.ValueUID(r.next)
	r.vals[name] = v
	return v
}

// NewClient builds a ready-to-use fake client with freshly resolved
// namespaces, the common case for worker tests.
func NewClient() (*Client, sourcekitd.Namespaces) {
	r := NewUIDResolver()
	ns := sourcekitd.ResolveNamespaces(r)
	return New(r, ns), ns
}
