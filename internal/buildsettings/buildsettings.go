// Package buildsettings models the per-document compiler-argument state
// the worker needs to drive the compiler service, and the provider
// contract the worker depends on without owning. Real build-system
// integration (SwiftPM, Xcode project parsing) is out of scope here per
// spec.md §1 — StaticProvider is the only implementation this repository
// ships.
package buildsettings

import "slices"

// ChangeKind tags which variant a Change carries.
type ChangeKind int

const (
	Fallback ChangeKind = iota
	Modified
	RemovedOrUnavailable
)

func (k ChangeKind) String() string {
	switch k {
	case Fallback:
		return "fallback"
	case Modified:
		return "modified"
	case RemovedOrUnavailable:
		return "removed_or_unavailable"
	default:
		return "unknown"
	}
}

// Change is the sum type a build-settings provider reports to the worker
// (spec.md §6). Exactly one field group is meaningful per Kind:
//   - Fallback:              Argv holds inferred compiler arguments.
//   - Modified:               Argv holds provider-resolved compiler arguments.
//   - RemovedOrUnavailable:   neither field is meaningful.
type Change struct {
	Kind ChangeKind
	Argv []string
}

// CompileCommand is the worker's normalized view of a Change, ready to
// send as the compiler-service's compilerargs value.
type CompileCommand struct {
	Argv       []string
	IsFallback bool
}

// Equal reports whether two compile commands would produce identical
// compiler-service traffic, used by the worker to implement the
// compile-command-idempotence invariant (spec.md §5.5): a build-settings
// change whose resulting command equals the cached one triggers no
// traffic.
func (c CompileCommand) Equal(other CompileCommand) bool {
	return c.IsFallback == other.IsFallback && slices.Equal(c.Argv, other.Argv)
}

// NewCompileCommand builds a CompileCommand from a Change, appending
// "-working-directory <dir>" when the provider's argv doesn't already
// specify one (spec.md §6 "Compile command").
func NewCompileCommand(change Change, workingDirectory string) (CompileCommand, bool) {
	if change.Kind == RemovedOrUnavailable {
		return CompileCommand{}, false
	}

	argv := slices.Clone(change.Argv)
	if !hasWorkingDirectoryFlag(argv) && workingDirectory != "" {
		argv = append(argv, "-working-directory", workingDirectory)
	}

	return CompileCommand{
		Argv:       argv,
		IsFallback: change.Kind == Fallback,
	}, true
}

func hasWorkingDirectoryFlag(argv []string) bool {
	for _, a := range argv {
		if a == "-working-directory" {
			return true
		}
	}
	return false
}

// Provider resolves build settings for a document. The worker holds onto
// a Provider but never owns its resolution logic (spec.md §1 "Out of
// scope: the build-settings provider").
type Provider interface {
	// Settings returns the current Change for uri. Implementations may
	// return Fallback before any real resolution has completed.
	Settings(uri string) Change
}

// StaticProvider serves a fixed, caller-supplied table of argv per URI.
// It exists for tests and for editors with no external build-system
// integration; it is intentionally the only Provider this repository
// ships (spec.md §1).
type StaticProvider struct {
	byURI map[string]Change
}

// NewStaticProvider constructs a provider over byURI. Callers retain
// ownership of the map and may call Set to update it.
func NewStaticProvider(byURI map[string]Change) *StaticProvider {
	if byURI == nil {
		byURI = make(map[string]Change)
	}
	return &StaticProvider{byURI: byURI}
}

func (p *StaticProvider) Settings(uri string) Change {
	if c, ok := p.byURI[uri]; ok {
		return c
	}
	return Change{Kind: Fallback}
}

// Set updates the Change reported for uri, as a build-settings change
// would arrive from an external provider in a real editor integration.
func (p *StaticProvider) Set(uri string, change Change) {
	p.byURI[uri] = change
}

// Remove marks uri as RemovedOrUnavailable.
func (p *StaticProvider) Remove(uri string) {
	p.byURI[uri] = Change{Kind: RemovedOrUnavailable}
}
