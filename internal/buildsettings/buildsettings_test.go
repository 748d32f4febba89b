package buildsettings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompileCommandAppendsWorkingDirectoryWhenAbsent(t *testing.T) {
	cmd, ok := NewCompileCommand(Change{Kind: Modified, Argv: []string{"-swift-version", "5"}}, "/repo")
	require.True(t, ok)
	assert.Equal(t, []string{"-swift-version", "5", "-working-directory", "/repo"}, cmd.Argv)
	assert.False(t, cmd.IsFallback)
}

func TestNewCompileCommandKeepsExplicitWorkingDirectory(t *testing.T) {
	cmd, ok := NewCompileCommand(Change{Kind: Modified, Argv: []string{"-working-directory", "/explicit"}}, "/repo")
	require.True(t, ok)
	assert.Equal(t, []string{"-working-directory", "/explicit"}, cmd.Argv)
}

func TestNewCompileCommandFallbackIsTagged(t *testing.T) {
	cmd, ok := NewCompileCommand(Change{Kind: Fallback, Argv: []string{"-sdk", "/sdk"}}, "")
	require.True(t, ok)
	assert.True(t, cmd.IsFallback)
}

func TestNewCompileCommandRemovedIsNotOK(t *testing.T) {
	_, ok := NewCompileCommand(Change{Kind: RemovedOrUnavailable}, "/repo")
	assert.False(t, ok)
}

func TestCompileCommandEqualIgnoresOrderingDifferencesNot(t *testing.T) {
	a := CompileCommand{Argv: []string{"-a", "-b"}, IsFallback: false}
	b := CompileCommand{Argv: []string{"-a", "-b"}, IsFallback: false}
	c := CompileCommand{Argv: []string{"-b", "-a"}, IsFallback: false}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestCompileCommandEqualConsidersFallbackFlag(t *testing.T) {
	a := CompileCommand{Argv: []string{"-a"}, IsFallback: true}
	b := CompileCommand{Argv: []string{"-a"}, IsFallback: false}
	assert.False(t, a.Equal(b))
}

func TestStaticProviderDefaultsToFallback(t *testing.T) {
	p := NewStaticProvider(nil)
	change := p.Settings("file:///unknown.swift")
	assert.Equal(t, Fallback, change.Kind)
}

func TestStaticProviderSetAndRemove(t *testing.T) {
	p := NewStaticProvider(nil)
	p.Set("file:///a.swift", Change{Kind: Modified, Argv: []string{"-x"}})
	assert.Equal(t, Modified, p.Settings("file:///a.swift").Kind)

	p.Remove("file:///a.swift")
	assert.Equal(t, RemovedOrUnavailable, p.Settings("file:///a.swift").Kind)
}
