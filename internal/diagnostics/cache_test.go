package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func diagAt(line uint32, msg string) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: 0},
			End:   protocol.Position{Line: line, Character: 1},
		},
		Message: msg,
	}
}

func TestMergeReplacesSameStageOnly(t *testing.T) {
	c := New()

	c.Merge("a.swift", StageParse, false, []protocol.Diagnostic{diagAt(1, "parse-old")})
	merged := c.Merge("a.swift", StageSema, false, []protocol.Diagnostic{diagAt(2, "sema-new")})

	require.Len(t, merged, 2)

	byMsg := map[string]Stage{}
	for _, d := range merged {
		byMsg[d.Diagnostic.Message] = d.Stage
	}
	assert.Equal(t, StageParse, byMsg["parse-old"])
	assert.Equal(t, StageSema, byMsg["sema-new"])

	// Replacing stage=parse again must not touch the sema entry.
	merged = c.Merge("a.swift", StageParse, false, []protocol.Diagnostic{diagAt(3, "parse-replacement")})
	require.Len(t, merged, 2)
	for _, d := range merged {
		assert.NotEqual(t, "parse-old", d.Diagnostic.Message)
	}
}

func TestMergeFallbackWithholdsSema(t *testing.T) {
	c := New()

	merged := c.Merge("b.swift", StageSema, true, []protocol.Diagnostic{diagAt(1, "sema-under-fallback")})
	assert.Empty(t, merged)

	merged = c.Merge("b.swift", StageParse, true, []protocol.Diagnostic{diagAt(1, "parse-under-fallback")})
	require.Len(t, merged, 1)
	assert.Equal(t, "parse-under-fallback", merged[0].Diagnostic.Message)
}

func TestMergeNoResultHasStageExceptNewOnes(t *testing.T) {
	c := New()
	c.Merge("c.swift", StageParse, false, []protocol.Diagnostic{diagAt(1, "p1")})
	c.Merge("c.swift", StageSema, false, []protocol.Diagnostic{diagAt(2, "s1")})

	merged := c.Merge("c.swift", StageParse, false, []protocol.Diagnostic{diagAt(3, "p2")})
	for _, d := range merged {
		if d.Stage == StageParse {
			assert.Equal(t, "p2", d.Diagnostic.Message)
		}
	}
}

func TestClearEmptiesCache(t *testing.T) {
	c := New()
	c.Merge("d.swift", StageParse, false, []protocol.Diagnostic{diagAt(1, "x")})
	c.Clear("d.swift")
	assert.Empty(t, c.Get("d.swift"))
}

func TestOverlapsIncludingEmptySymmetric(t *testing.T) {
	nonEmpty := protocol.Range{
		Start: protocol.Position{Line: 0, Character: 5},
		End:   protocol.Position{Line: 0, Character: 10},
	}
	insidePoint := protocol.Range{
		Start: protocol.Position{Line: 0, Character: 7},
		End:   protocol.Position{Line: 0, Character: 7},
	}
	outsidePoint := protocol.Range{
		Start: protocol.Position{Line: 0, Character: 10},
		End:   protocol.Position{Line: 0, Character: 10},
	}

	assert.True(t, OverlapsIncludingEmpty(nonEmpty, insidePoint))
	assert.True(t, OverlapsIncludingEmpty(insidePoint, nonEmpty))
	assert.False(t, OverlapsIncludingEmpty(nonEmpty, outsidePoint))
	assert.False(t, OverlapsIncludingEmpty(outsidePoint, nonEmpty))
}

func TestOverlapsIncludingEmptyTwoEmptyRanges(t *testing.T) {
	p1 := protocol.Range{Start: protocol.Position{Line: 0, Character: 3}, End: protocol.Position{Line: 0, Character: 3}}
	p2 := protocol.Range{Start: protocol.Position{Line: 0, Character: 3}, End: protocol.Position{Line: 0, Character: 3}}
	p3 := protocol.Range{Start: protocol.Position{Line: 0, Character: 4}, End: protocol.Position{Line: 0, Character: 4}}

	assert.True(t, OverlapsIncludingEmpty(p1, p2))
	assert.False(t, OverlapsIncludingEmpty(p1, p3))
}

func TestOverlappingFiltersCache(t *testing.T) {
	c := New()
	c.Merge("e.swift", StageParse, false, []protocol.Diagnostic{diagAt(5, "line5")})

	hits := c.Overlapping("e.swift", protocol.Range{
		Start: protocol.Position{Line: 5, Character: 0},
		End:   protocol.Position{Line: 5, Character: 1},
	})
	require.Len(t, hits, 1)

	miss := c.Overlapping("e.swift", protocol.Range{
		Start: protocol.Position{Line: 9, Character: 0},
		End:   protocol.Position{Line: 9, Character: 1},
	})
	assert.Empty(t, miss)
}

func TestLSPDiagnosticsSortsByPosition(t *testing.T) {
	cached := []Cached{
		{Diagnostic: diagAt(3, "third")},
		{Diagnostic: diagAt(1, "first")},
		{Diagnostic: diagAt(2, "second")},
	}

	sorted := LSPDiagnostics(cached)
	require.Len(t, sorted, 3)
	assert.Equal(t, "first", sorted[0].Message)
	assert.Equal(t, "second", sorted[1].Message)
	assert.Equal(t, "third", sorted[2].Message)
}
