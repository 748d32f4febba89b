package worker

import (
	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
	"github.com/swift-server/sourcekit-lsp-go/internal/translate"
)

// decodeSyntaxMap reads a response's key.syntaxmap array into
// translate.SyntaxTokens, dropping malformed entries (spec.md §7).
func decodeSyntaxMap(ns sourcekitd.Namespaces, arr sourcekitd.Array) []translate.SyntaxToken {
	out := make([]translate.SyntaxToken, 0, len(arr))
	for _, v := range arr {
		d, ok := v.(sourcekitd.Dict)
		if !ok {
			continue
		}
		offset, ok1 := d.GetInt64(ns.Keys.Offset)
		length, ok2 := d.GetInt64(ns.Keys.Length)
		kind, ok3 := d.GetUID(ns.Keys.TokenKind)
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		out = append(out, translate.SyntaxToken{Offset: offset, Length: length, Kind: kind})
	}
	return out
}
