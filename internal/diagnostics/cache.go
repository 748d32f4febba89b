// Package diagnostics implements the per-document, per-stage diagnostic
// cache and its merge rule (spec §4.3).
package diagnostics

import (
	"sort"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Stage identifies which compiler-service pass produced a diagnostic.
type Stage int

const (
	StageParse Stage = iota
	StageSema
)

func (s Stage) String() string {
	if s == StageSema {
		return "sema"
	}
	return "parse"
}

// Cached is one diagnostic together with the metadata the merge rule and
// quick-fix matching need.
type Cached struct {
	Diagnostic protocol.Diagnostic
	Stage      Stage
	IsFallback bool
}

// Cache holds, per URI, the last successfully merged ordered diagnostic
// list. It is exclusively owned by the worker and mutated only on its
// lane, but the lock remains so reads (publication, quick-fix lookup) never
// race a concurrent merge.
type Cache struct {
	mu    sync.RWMutex
	byURI map[string][]Cached
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{byURI: make(map[string][]Cached)}
}

// Merge applies the spec §4.3 rule for uri against incoming diagnostics of
// the given stage and fallback flag:
//
//  1. Drop old diagnostics with this stage (they are being replaced).
//  2. If fallback is true, additionally drop incoming diagnostics with
//     stage == sema (withhold semantic results produced under fallback args).
//  3. Union old (remaining) with incoming, preserving per-origin order.
//
// The merged list is cached and returned for the caller to publish.
func (c *Cache) Merge(uri string, stage Stage, isFallback bool, incoming []protocol.Diagnostic) []Cached {
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.byURI[uri]

	kept := make([]Cached, 0, len(old))
	for _, d := range old {
		if d.Stage != stage {
			kept = append(kept, d)
		}
	}

	for _, d := range incoming {
		if isFallback && stage == StageSema {
			continue
		}
		kept = append(kept, Cached{Diagnostic: d, Stage: stage, IsFallback: isFallback})
	}

	merged := make([]Cached, len(kept))
	copy(merged, kept)
	c.byURI[uri] = merged

	result := make([]Cached, len(merged))
	copy(result, merged)
	return result
}

// Get returns a copy of the cached diagnostics for uri (empty if none).
func (c *Cache) Get(uri string) []Cached {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached := c.byURI[uri]
	result := make([]Cached, len(cached))
	copy(result, cached)
	return result
}

// Clear removes the cache entry for uri. Used on document close.
func (c *Cache) Clear(uri string) {
	c.mu.Lock()
	delete(c.byURI, uri)
	c.mu.Unlock()
}

// Overlapping returns the cached diagnostics for uri whose range overlaps
// rng, using overlap-including-empty semantics (spec §8 law 3).
func (c *Cache) Overlapping(uri string, rng protocol.Range) []Cached {
	c.mu.RLock()
	cached := c.byURI[uri]
	c.mu.RUnlock()

	var out []Cached
	for _, d := range cached {
		if OverlapsIncludingEmpty(d.Diagnostic.Range, rng) {
			out = append(out, d)
		}
	}
	return out
}

// LSPDiagnostics extracts the plain protocol.Diagnostic values from a
// Cached slice, sorted by position, ready for publication.
func LSPDiagnostics(cached []Cached) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, len(cached))
	for i, d := range cached {
		out[i] = d.Diagnostic
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Range.Start.Line != out[j].Range.Start.Line {
			return out[i].Range.Start.Line < out[j].Range.Start.Line
		}
		return out[i].Range.Start.Character < out[j].Range.Start.Character
	})

	return out
}

// OverlapsIncludingEmpty reports whether ranges a and b overlap, treating a
// zero-length range [p, p) as overlapping a non-empty [l, h) iff l <= p < h,
// and two empty ranges as overlapping iff their points coincide (spec §8
// law 3). This is symmetric in a and b by construction.
func OverlapsIncludingEmpty(a, b protocol.Range) bool {
	aEmpty := rangeIsEmpty(a)
	bEmpty := rangeIsEmpty(b)

	switch {
	case aEmpty && bEmpty:
		return positionEqual(a.Start, b.Start)
	case aEmpty && !bEmpty:
		return pointInRange(a.Start, b)
	case !aEmpty && bEmpty:
		return pointInRange(b.Start, a)
	default:
		return rangesOverlapNonEmpty(a, b)
	}
}

func rangeIsEmpty(r protocol.Range) bool {
	return positionEqual(r.Start, r.End)
}

func positionEqual(a, b protocol.Position) bool {
	return a.Line == b.Line && a.Character == b.Character
}

func positionLess(a, b protocol.Position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Character < b.Character
}

// pointInRange reports whether p falls within [r.Start, r.End).
func pointInRange(p protocol.Position, r protocol.Range) bool {
	return !positionLess(p, r.Start) && positionLess(p, r.End)
}

func rangesOverlapNonEmpty(a, b protocol.Range) bool {
	return positionLess(a.Start, b.End) && positionLess(b.Start, a.End)
}
