// Package docmanager implements the in-memory, versioned document store.
// It owns no compiler-service state; it only turns LSP open/change/close
// traffic into immutable text snapshots and reports the UTF-8 byte deltas
// the worker needs to replay against the compiler service.
package docmanager

import (
	"sort"
	"strings"
	"sync"

	"github.com/swift-server/sourcekit-lsp-go/internal/textmodel"
)

// URI is a document location, computed once so scheme checks never
// re-parse the raw string.
type URI struct {
	Raw    string
	Scheme string
}

// ParseURI splits raw into its scheme and the raw string itself. A URI with
// no "://" has an empty scheme (e.g. a synthesized pseudo-path).
func ParseURI(raw string) URI {
	if idx := strings.Index(raw, "://"); idx >= 0 {
		return URI{Raw: raw, Scheme: raw[:idx]}
	}
	return URI{Raw: raw, Scheme: ""}
}

// Position is an LSP (line, UTF-16 column) coordinate.
type Position struct {
	Line int
	Char int
}

// Range is an LSP [Start, End) coordinate span.
type Range struct {
	Start Position
	End   Position
}

// Change is one content-change event: a ranged replacement, or — when
// Range is nil — a full-text replacement.
type Change struct {
	Range *Range
	Text  string
}

// Snapshot is an immutable {uri, version, text} triple plus its derived
// line table. Consumers hold references to a specific version; the
// manager never mutates a Snapshot in place.
type Snapshot struct {
	URI     URI
	Version int64
	Text    string
	Lines   *textmodel.LineTable
}

func newSnapshot(uri URI, version int64, text string) *Snapshot {
	return &Snapshot{URI: uri, Version: version, Text: text, Lines: textmodel.New(text)}
}

// ReplaceTextEvent is what the manager reports to a Manager.Edit observer
// for each successfully converted change, against the pre-edit snapshot.
type ReplaceTextEvent struct {
	Before      *Snapshot
	ByteOffset  int
	ByteLength  int
	Replacement string
}

// Manager holds the mapping uri -> latest snapshot. It is safe for
// concurrent reads (LatestSnapshot) from outside the worker's lane;
// mutations are expected to originate only from the lane but are still
// guarded, matching the teacher's DocumentStore locking discipline.
type Manager struct {
	mu   sync.RWMutex
	docs map[string]*Snapshot
}

// New creates an empty Manager.
func New() *Manager {
	return &Manager{docs: make(map[string]*Snapshot)}
}

// Open inserts (or replaces) the snapshot for uri.
func (m *Manager) Open(uri URI, version int64, text string) *Snapshot {
	snap := newSnapshot(uri, version, text)

	m.mu.Lock()
	m.docs[uri.Raw] = snap
	m.mu.Unlock()

	return snap
}

// Close removes the mapping for uri. Idempotent.
func (m *Manager) Close(uri URI) {
	m.mu.Lock()
	delete(m.docs, uri.Raw)
	m.mu.Unlock()
}

// LatestSnapshot returns the current snapshot for uri, if open.
func (m *Manager) LatestSnapshot(uri URI) (*Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, ok := m.docs[uri.Raw]
	return snap, ok
}

// Edit applies each change in order, reporting a ReplaceTextEvent for each
// one to observe (in order) before updating the stored snapshot, and
// returns the final snapshot. Returns (nil, false) if uri is not open.
//
// A malformed range in one change is skipped (that change has no effect
// and is not reported to observe) and processing continues with the
// remaining changes; skipped indices are returned in malformed.
func (m *Manager) Edit(uri URI, version int64, changes []Change, observe func(ReplaceTextEvent)) (snap *Snapshot, malformed []int, ok bool) {
	m.mu.Lock()
	current, exists := m.docs[uri.Raw]
	m.mu.Unlock()

	if !exists {
		return nil, nil, false
	}

	text := current.Text
	before := current

	for i, change := range changes {
		if change.Range == nil {
			event := ReplaceTextEvent{
				Before:      before,
				ByteOffset:  0,
				ByteLength:  len(before.Text),
				Replacement: change.Text,
			}
			text = change.Text
			if observe != nil {
				observe(event)
			}
			before = newSnapshot(uri, version, text)
			continue
		}

		startOff, okStart := before.Lines.UTF8OffsetOf(change.Range.Start.Line, change.Range.Start.Char)
		endOff, okEnd := before.Lines.UTF8OffsetOf(change.Range.End.Line, change.Range.End.Char)
		if !okStart || !okEnd || endOff < startOff {
			malformed = append(malformed, i)
			continue
		}

		newText := before.Text[:startOff] + change.Text + before.Text[endOff:]

		event := ReplaceTextEvent{
			Before:      before,
			ByteOffset:  startOff,
			ByteLength:  endOff - startOff,
			Replacement: change.Text,
		}
		if observe != nil {
			observe(event)
		}

		text = newText
		before = newSnapshot(uri, version, text)
	}

	final := newSnapshot(uri, version, text)

	m.mu.Lock()
	m.docs[uri.Raw] = final
	m.mu.Unlock()

	return final, malformed, true
}

// Reset replaces the entire manager's contents with an empty store,
// discarding all open documents. Used by the worker on compiler-service
// crash (spec §4.2 "Reset").
func (m *Manager) Reset() {
	m.mu.Lock()
	m.docs = make(map[string]*Snapshot)
	m.mu.Unlock()
}

// OpenURIs returns every currently open URI, sorted for deterministic
// iteration (used by reopen-after-crash flows and tests).
func (m *Manager) OpenURIs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	uris := make([]string, 0, len(m.docs))
	for uri := range m.docs {
		uris = append(uris, uri)
	}
	sort.Strings(uris)

	return uris
}
