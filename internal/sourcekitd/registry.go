package sourcekitd

import (
	"fmt"
	"path/filepath"
	"sync"
)

// Opener constructs the underlying dylib connection for a canonical path.
// The real implementation (ffi_unix.go) dlopens the path; tests substitute
// a constructor that returns a fake.Client wrapped to satisfy this shape.
type Opener func(canonicalPath string) (Client, error)

// Registry deduplicates dylib connections by canonical path so multiple
// workers in the same process share one connection (spec §4.4/§5: "A
// process-wide registry deduplicates by canonical dylib path").
type Registry struct {
	mu    sync.Mutex
	open  Opener
	conns map[string]*refCounted
}

type refCounted struct {
	client Client
	refs   int
}

// NewRegistry creates a Registry that uses open to construct new
// connections on first acquisition of a path.
func NewRegistry(open Opener) *Registry {
	return &Registry{open: open, conns: make(map[string]*refCounted)}
}

// Acquire returns the shared Client for path (opening it if this is the
// first acquisition) and a release function the caller must invoke exactly
// once when done. The last releaser closes the underlying connection.
func (r *Registry) Acquire(path string) (Client, func() error, error) {
	canonical, err := canonicalize(path)
	if err != nil {
		return nil, nil, fmt.Errorf("canonicalize dylib path %q: %w", path, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if rc, ok := r.conns[canonical]; ok {
		rc.refs++
		return rc.client, r.releaseFunc(canonical), nil
	}

	client, err := r.open(canonical)
	if err != nil {
		return nil, nil, err
	}

	r.conns[canonical] = &refCounted{client: client, refs: 1}
	return client, r.releaseFunc(canonical), nil
}

func (r *Registry) releaseFunc(canonical string) func() error {
	return func() error {
		r.mu.Lock()
		defer r.mu.Unlock()

		rc, ok := r.conns[canonical]
		if !ok {
			return nil
		}

		rc.refs--
		if rc.refs > 0 {
			return nil
		}

		delete(r.conns, canonical)
		return rc.client.Close()
	}
}

// canonicalize resolves path to a stable key for dedup purposes. Symlink
// resolution is best-effort: if the path does not exist on disk yet (as in
// tests that use a synthetic path), fall back to the cleaned absolute form.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return filepath.Clean(abs), nil
}
