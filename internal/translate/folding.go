package translate

import (
	"sort"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
	"github.com/swift-server/sourcekit-lsp-go/internal/textmodel"
)

// SyntaxToken is one entry of a syntactic-mode editor_open response's
// syntax map, used for comment-range folding.
type SyntaxToken struct {
	Offset int64
	Length int64
	Kind   sourcekitd.ValueUID
}

// FoldingOptions mirrors the client capabilities that bound folding
// behavior at initialize time (spec.md §4.6 "Folding range").
type FoldingOptions struct {
	RangeLimit      int // 0 means unlimited
	LineFoldingOnly bool
}

// FoldingRanges builds folding ranges from two sources: comment runs in
// the syntax map (adjacent tokens coalesced into one range) and a DFS
// over the substructure for nodes with a positive body length. Results
// are sorted by (startLine, endLine) and capped at opts.RangeLimit.
func FoldingRanges(ns sourcekitd.Namespaces, commentUID sourcekitd.ValueUID, lines *textmodel.LineTable, syntaxMap []SyntaxToken, substructure sourcekitd.Array, opts FoldingOptions) []protocol.FoldingRange {
	var ranges []protocol.FoldingRange

	ranges = append(ranges, commentFoldingRanges(commentUID, lines, syntaxMap)...)
	ranges = append(ranges, substructureFoldingRanges(ns, lines, substructure)...)

	sort.SliceStable(ranges, func(i, j int) bool {
		if ranges[i].StartLine != ranges[j].StartLine {
			return ranges[i].StartLine < ranges[j].StartLine
		}
		return ranges[i].EndLine < ranges[j].EndLine
	})

	ranges = applyFoldingOptions(ranges, opts)

	if opts.RangeLimit > 0 && len(ranges) > opts.RangeLimit {
		ranges = ranges[:opts.RangeLimit]
	}

	return ranges
}

func commentFoldingRanges(commentUID sourcekitd.ValueUID, lines *textmodel.LineTable, syntaxMap []SyntaxToken) []protocol.FoldingRange {
	var out []protocol.FoldingRange

	i := 0
	for i < len(syntaxMap) {
		tok := syntaxMap[i]
		if tok.Kind != commentUID {
			i++
			continue
		}

		runStart := tok
		runEnd := tok
		j := i + 1
		for j < len(syntaxMap) && syntaxMap[j].Kind == commentUID && syntaxMap[j].Offset == runEnd.Offset+runEnd.Length {
			runEnd = syntaxMap[j]
			j++
		}

		if r, ok := byteRangeToLSP(lines, runStart.Offset, (runEnd.Offset+runEnd.Length)-runStart.Offset); ok {
			kind := string(protocol.FoldingRangeKindComment)
			out = append(out, protocol.FoldingRange{
				StartLine:      r.Start.Line,
				StartCharacter: &r.Start.Character,
				EndLine:        r.End.Line,
				EndCharacter:   &r.End.Character,
				Kind:           &kind,
			})
		}

		i = j
	}

	return out
}

func substructureFoldingRanges(ns sourcekitd.Namespaces, lines *textmodel.LineTable, nodes sourcekitd.Array) []protocol.FoldingRange {
	var out []protocol.FoldingRange
	var walk func(sourcekitd.Array)
	walk = func(level sourcekitd.Array) {
		for _, v := range level {
			node, ok := v.(sourcekitd.Dict)
			if !ok {
				continue
			}

			bodyOffset, ok1 := node.GetInt64(ns.Keys.BodyOffset)
			bodyLength, ok2 := node.GetInt64(ns.Keys.BodyLength)
			if ok1 && ok2 && bodyLength > 0 {
				if r, ok := byteRangeToLSP(lines, bodyOffset, bodyLength); ok {
					out = append(out, protocol.FoldingRange{
						StartLine:      r.Start.Line,
						StartCharacter: &r.Start.Character,
						EndLine:        r.End.Line,
						EndCharacter:   &r.End.Character,
					})
				}
			}

			if children, ok := node.GetArray(ns.Keys.SubStructure); ok {
				walk(children)
			}
		}
	}
	walk(nodes)
	return out
}

// applyFoldingOptions implements the lineFoldingOnly behavior: drop the
// last line (LSP clients that fold by line keep the end line visible),
// emit line-only ranges (character fields cleared), and skip any range
// that would then collapse to a single line (spec.md §4.6, end-to-end
// scenario 3).
func applyFoldingOptions(ranges []protocol.FoldingRange, opts FoldingOptions) []protocol.FoldingRange {
	if !opts.LineFoldingOnly {
		return ranges
	}

	out := make([]protocol.FoldingRange, 0, len(ranges))
	for _, r := range ranges {
		endLine := r.EndLine
		if endLine > r.StartLine {
			endLine--
		}
		if endLine <= r.StartLine {
			continue
		}
		out = append(out, protocol.FoldingRange{
			StartLine: r.StartLine,
			EndLine:   endLine,
			Kind:      r.Kind,
		})
	}
	return out
}
