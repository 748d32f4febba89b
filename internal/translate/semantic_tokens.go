package translate

import (
	"sort"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
	"github.com/swift-server/sourcekit-lsp-go/internal/textmodel"
)

// Token is one classified semantic token, positioned in LSP (line,
// UTF-16 column) coordinates.
type Token struct {
	Line      uint32
	StartChar uint32
	Length    uint32
	TypeIndex uint32
	Modifiers uint32
}

// ClassifySyntaxMap converts syntax-map entries (keywords, comments,
// strings, numbers, literal types) into Tokens, dropping unknown kinds
// (spec.md §4.6 "Unknown token types are dropped before encoding").
func ClassifySyntaxMap(kinds *KindTable, lines *textmodel.LineTable, syntaxMap []SyntaxToken) []Token {
	var out []Token
	for _, tok := range syntaxMap {
		typeIdx, ok := kinds.TokenTypeIndex(tok.Kind)
		if !ok {
			continue
		}
		t, ok := tokenFromByteRange(lines, tok.Offset, tok.Length, typeIdx, 0)
		if !ok {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ClassifySubstructure walks a substructure tree and converts every
// decl/ref node whose kind UID resolves to a semantic token type into a
// Token — the source for class/function/variable/property highlighting
// that a syntax map alone (keywords, comments, literals) cannot produce
// (spec.md §4.6 "classify each token by its kind UID; merge with
// syntax-map keyword/type tokens"). A declaration node is classified at
// its name span (NameOffset/NameLength) when present, since BodyOffset
// covers the whole declaration including its body; a reference node has
// no name span of its own and is classified at its occurrence
// (Offset/Length) instead.
func ClassifySubstructure(ns sourcekitd.Namespaces, kinds *KindTable, lines *textmodel.LineTable, substructure sourcekitd.Array) []Token {
	var out []Token
	var walk func(sourcekitd.Array)
	walk = func(nodes sourcekitd.Array) {
		for _, v := range nodes {
			node, ok := v.(sourcekitd.Dict)
			if !ok {
				continue
			}

			kindUID, ok := node.GetUID(ns.Keys.Kind)
			if ok {
				if typeIdx, ok := kinds.TokenTypeIndex(kindUID); ok {
					offset, length, ok := nameOrOccurrenceSpan(ns, node)
					if ok {
						if t, ok := tokenFromByteRange(lines, offset, length, typeIdx, 0); ok {
							out = append(out, t)
						}
					}
				}
			}

			if children, ok := node.GetArray(ns.Keys.SubStructure); ok {
				walk(children)
			}
		}
	}
	walk(substructure)
	return out
}

// nameOrOccurrenceSpan prefers a decl node's name span over its full body
// span, falling back to the node's own offset/length for a reference node
// that carries no name span at all.
func nameOrOccurrenceSpan(ns sourcekitd.Namespaces, node sourcekitd.Dict) (offset, length int64, ok bool) {
	if offset, ok1 := node.GetInt64(ns.Keys.NameOffset); ok1 {
		length, _ := node.GetInt64(ns.Keys.NameLength)
		return offset, length, true
	}
	offset, ok1 := node.GetInt64(ns.Keys.Offset)
	length, ok2 := node.GetInt64(ns.Keys.Length)
	return offset, length, ok1 && ok2
}

// MergeTokens concatenates token sets from independent classification
// passes (syntax map, substructure) into one stream ready for SortTokens.
func MergeTokens(sets ...[]Token) []Token {
	var out []Token
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}

func tokenFromByteRange(lines *textmodel.LineTable, offset, length int64, typeIdx, modifiers uint32) (Token, bool) {
	line, col, ok := lines.PositionOfUTF8Offset(int(offset))
	if !ok {
		return Token{}, false
	}
	endLine, endCol, ok := lines.PositionOfUTF8Offset(int(offset + length))
	if !ok || endLine != line {
		return Token{}, false
	}
	return Token{
		Line:      uint32(line),
		StartChar: uint32(col),
		Length:    uint32(endCol - col),
		TypeIndex: typeIdx,
		Modifiers: modifiers,
	}, true
}

// SortTokens orders tokens by (line, start-char), the order the LSP
// delta encoding requires (spec.md §4.6).
func SortTokens(tokens []Token) {
	sort.SliceStable(tokens, func(i, j int) bool {
		if tokens[i].Line != tokens[j].Line {
			return tokens[i].Line < tokens[j].Line
		}
		return tokens[i].StartChar < tokens[j].StartChar
	})
}

// EncodeTokens produces the LSP delta-coded 5-tuple stream
// [Δline, Δchar, length, typeIndex, modifiers]; Δchar resets to absolute
// when Δline is nonzero. Grounded on the teacher's
// internal/analysis/semantic_tokens.go EncodeSemanticTokens.
func EncodeTokens(tokens []Token) []uint32 {
	if len(tokens) == 0 {
		return []uint32{}
	}

	encoded := make([]uint32, 0, len(tokens)*5)
	var prevLine, prevChar uint32

	for _, tok := range tokens {
		deltaLine := tok.Line - prevLine
		deltaChar := tok.StartChar
		if deltaLine == 0 {
			deltaChar = tok.StartChar - prevChar
		}

		encoded = append(encoded, deltaLine, deltaChar, tok.Length, tok.TypeIndex, tok.Modifiers)

		prevLine = tok.Line
		prevChar = tok.StartChar
	}

	return encoded
}

// DeltaThreshold bounds how large a delta may be, relative to the full
// encoding, before a full response is returned instead (teacher's
// internal/analysis/semantic_tokens_delta.go).
const DeltaThreshold = 0.7

// DeltaResult wraps either a delta or a full semantic-tokens response.
type DeltaResult struct {
	IsDelta bool
	Delta   *protocol.SemanticTokensDelta
	Full    *protocol.SemanticTokens
}

// ComputeDelta computes the edit set transforming oldTokens into
// newTokens, falling back to a full response when there is no prior
// token set or the delta would be larger than DeltaThreshold of the full
// encoding. An empty new set yields a delta that deletes every old token.
func ComputeDelta(oldTokens, newTokens []Token, newResultID string) *DeltaResult {
	if len(oldTokens) == 0 {
		return &DeltaResult{
			IsDelta: false,
			Full:    &protocol.SemanticTokens{ResultID: &newResultID, Data: EncodeTokens(newTokens)},
		}
	}

	if len(newTokens) == 0 {
		return &DeltaResult{
			IsDelta: true,
			Delta: &protocol.SemanticTokensDelta{
				ResultId: &newResultID,
				Edits: []protocol.SemanticTokensEdit{
					{Start: 0, DeleteCount: uint32(len(oldTokens) * 5), Data: []uint32{}},
				},
			},
		}
	}

	oldEncoded := EncodeTokens(oldTokens)
	newEncoded := EncodeTokens(newTokens)
	edits := computeTokenEdits(oldEncoded, newEncoded)

	deltaSize := 0
	for _, e := range edits {
		deltaSize += 2 + len(e.Data)
	}
	fullSize := len(newEncoded)

	if float64(deltaSize) > float64(fullSize)*DeltaThreshold {
		return &DeltaResult{
			IsDelta: false,
			Full:    &protocol.SemanticTokens{ResultID: &newResultID, Data: newEncoded},
		}
	}

	return &DeltaResult{
		IsDelta: true,
		Delta:   &protocol.SemanticTokensDelta{ResultId: &newResultID, Edits: edits},
	}
}

func computeTokenEdits(oldEncoded, newEncoded []uint32) []protocol.SemanticTokensEdit {
	commonPrefixLen := 0
	maxPrefix := min(len(oldEncoded), len(newEncoded))
	for commonPrefixLen < maxPrefix && oldEncoded[commonPrefixLen] == newEncoded[commonPrefixLen] {
		commonPrefixLen++
	}

	commonSuffixLen := 0
	oldSuffixStart := len(oldEncoded)
	newSuffixStart := len(newEncoded)
	for commonSuffixLen < len(oldEncoded)-commonPrefixLen &&
		commonSuffixLen < len(newEncoded)-commonPrefixLen &&
		oldEncoded[oldSuffixStart-1-commonSuffixLen] == newEncoded[newSuffixStart-1-commonSuffixLen] {
		commonSuffixLen++
	}

	if commonPrefixLen+commonSuffixLen >= max(len(oldEncoded), len(newEncoded)) {
		return nil
	}

	oldChangedStart := commonPrefixLen
	oldChangedEnd := len(oldEncoded) - commonSuffixLen
	newChangedStart := commonPrefixLen
	newChangedEnd := len(newEncoded) - commonSuffixLen

	return []protocol.SemanticTokensEdit{{
		Start:       uint32(oldChangedStart),
		DeleteCount: uint32(oldChangedEnd - oldChangedStart),
		Data:        newEncoded[newChangedStart:newChangedEnd],
	}}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
