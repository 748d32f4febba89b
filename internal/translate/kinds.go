// Package translate converts compiler-service responses (dictionaries
// keyed by opaque UIDs) into LSP result shapes: symbol kinds, semantic
// token streams, folding ranges, color literals, and hover markdown.
package translate

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
)

// symbolKindNames maps compiler-service kind-UID names to LSP SymbolKind,
// per the glossary's "Kind UID → LSP SymbolKind" table.
var symbolKindNames = map[string]protocol.SymbolKind{
	"source.lang.swift.decl.class":                protocol.SymbolKindClass,
	"source.lang.swift.decl.struct":               protocol.SymbolKindStruct,
	"source.lang.swift.decl.enum":                 protocol.SymbolKindEnum,
	"source.lang.swift.decl.enumelement":          protocol.SymbolKindEnumMember,
	"source.lang.swift.decl.protocol":             protocol.SymbolKindInterface,
	"source.lang.swift.decl.function.free":        protocol.SymbolKindFunction,
	"source.lang.swift.decl.function.method.instance": protocol.SymbolKindMethod,
	"source.lang.swift.decl.function.method.static":   protocol.SymbolKindMethod,
	"source.lang.swift.decl.function.method.class":    protocol.SymbolKindMethod,
	"source.lang.swift.decl.var.instance":         protocol.SymbolKindProperty,
	"source.lang.swift.decl.var.static":           protocol.SymbolKindProperty,
	"source.lang.swift.decl.var.class":            protocol.SymbolKindProperty,
	"source.lang.swift.decl.var.global":           protocol.SymbolKindVariable,
	"source.lang.swift.decl.var.local":            protocol.SymbolKindVariable,
	"source.lang.swift.decl.generic_type_param":   protocol.SymbolKindTypeParameter,
	"source.lang.swift.decl.extension":            protocol.SymbolKindNamespace,
}

// semanticTokenTypeNames maps compiler-service kind-UID names to the
// semantic token type names this package's legend exposes, per the
// glossary's "Kind UID → Semantic token type" table.
var semanticTokenTypeNames = map[string]string{
	"source.lang.swift.syntaxtype.keyword":             "keyword",
	"source.lang.swift.decl.module":                    "namespace",
	"source.lang.swift.decl.class":                     "class",
	"source.lang.swift.decl.struct":                    "struct",
	"source.lang.swift.decl.enum":                       "enum",
	"source.lang.swift.decl.protocol":                   "interface",
	"source.lang.swift.decl.associatedtype":             "typeParameter",
	"source.lang.swift.decl.typealias":                  "typeParameter",
	"source.lang.swift.decl.generic_type_param":          "typeParameter",
	"source.lang.swift.decl.function.method.instance":    "function",
	"source.lang.swift.decl.function.method.static":      "function",
	"source.lang.swift.decl.function.method.class":       "function",
	"source.lang.swift.decl.function.free":               "function",
	"source.lang.swift.decl.function.operator.prefix":    "operator",
	"source.lang.swift.decl.function.operator.postfix":   "operator",
	"source.lang.swift.decl.function.operator.infix":     "operator",
	"source.lang.swift.decl.var.static":                  "property",
	"source.lang.swift.decl.var.class":                   "property",
	"source.lang.swift.decl.var.instance":                "property",
	"source.lang.swift.decl.var.local":                   "variable",
	"source.lang.swift.decl.var.global":                  "variable",
	"source.lang.swift.decl.var.parameter":               "parameter",
	"source.lang.swift.ref.class":                        "variable",
	"source.lang.swift.ref.struct":                       "variable",
	"source.lang.swift.ref.function":                     "variable",
	"source.lang.swift.syntaxtype.identifier.type":       "type",
	"source.lang.swift.syntaxtype.comment":               "comment",
	"source.lang.swift.syntaxtype.comment.mark":          "comment",
	"source.lang.swift.syntaxtype.string":                "string",
	"source.lang.swift.syntaxtype.number":                "number",
}

// completionItemKindNames maps compiler-service completion-result kind-UID
// names to LSP CompletionItemKind, per the glossary's kind table extended
// to the completion-result taxonomy.
var completionItemKindNames = map[string]protocol.CompletionItemKind{
	"source.lang.swift.decl.class":                     protocol.CompletionItemKindClass,
	"source.lang.swift.decl.struct":                     protocol.CompletionItemKindStruct,
	"source.lang.swift.decl.enum":                       protocol.CompletionItemKindEnum,
	"source.lang.swift.decl.enumelement":                protocol.CompletionItemKindEnumMember,
	"source.lang.swift.decl.protocol":                   protocol.CompletionItemKindInterface,
	"source.lang.swift.decl.function.free":               protocol.CompletionItemKindFunction,
	"source.lang.swift.decl.function.method.instance":    protocol.CompletionItemKindMethod,
	"source.lang.swift.decl.function.method.static":      protocol.CompletionItemKindMethod,
	"source.lang.swift.decl.function.method.class":       protocol.CompletionItemKindMethod,
	"source.lang.swift.decl.function.constructor":        protocol.CompletionItemKindConstructor,
	"source.lang.swift.decl.var.instance":                protocol.CompletionItemKindProperty,
	"source.lang.swift.decl.var.static":                  protocol.CompletionItemKindProperty,
	"source.lang.swift.decl.var.class":                   protocol.CompletionItemKindProperty,
	"source.lang.swift.decl.var.global":                  protocol.CompletionItemKindVariable,
	"source.lang.swift.decl.var.local":                   protocol.CompletionItemKindVariable,
	"source.lang.swift.decl.var.parameter":               protocol.CompletionItemKindVariable,
	"source.lang.swift.decl.generic_type_param":          protocol.CompletionItemKindTypeParameter,
	"source.lang.swift.decl.typealias":                   protocol.CompletionItemKindTypeParameter,
	"source.lang.swift.decl.module":                      protocol.CompletionItemKindModule,
	"source.lang.swift.keyword":                          protocol.CompletionItemKindKeyword,
}

// TokenTypes is the fixed legend this package encodes semantic tokens
// against; order determines the index sent to the client at initialize.
var TokenTypes = []string{
	"namespace", "class", "enum", "interface", "struct", "typeParameter",
	"type", "parameter", "variable", "property", "function", "method",
	"keyword", "comment", "string", "number", "operator",
}

var tokenTypeIndex = func() map[string]uint32 {
	m := make(map[string]uint32, len(TokenTypes))
	for i, t := range TokenTypes {
		m[t] = uint32(i)
	}
	return m
}()

// KindTable resolves compiler-service kind UIDs to LSP shapes, built once
// per daemon connection (UIDs are only meaningful relative to the dylib
// that minted them).
type KindTable struct {
	symbolKindByUID     map[sourcekitd.ValueUID]protocol.SymbolKind
	tokenTypeByUID      map[sourcekitd.ValueUID]uint32
	completionKindByUID map[sourcekitd.ValueUID]protocol.CompletionItemKind
	colorLiteralUID     sourcekitd.ValueUID
}

// NewKindTable resolves every name this package needs through r.
func NewKindTable(r sourcekitd.UIDResolver) *KindTable {
	t := &KindTable{
		symbolKindByUID:     make(map[sourcekitd.ValueUID]protocol.SymbolKind, len(symbolKindNames)),
		tokenTypeByUID:      make(map[sourcekitd.ValueUID]uint32, len(semanticTokenTypeNames)),
		completionKindByUID: make(map[sourcekitd.ValueUID]protocol.CompletionItemKind, len(completionItemKindNames)),
	}
	for name, kind := range symbolKindNames {
		t.symbolKindByUID[r.ResolveValue(name)] = kind
	}
	for name, typeName := range semanticTokenTypeNames {
		if idx, ok := tokenTypeIndex[typeName]; ok {
			t.tokenTypeByUID[r.ResolveValue(name)] = idx
		}
	}
	for name, kind := range completionItemKindNames {
		t.completionKindByUID[r.ResolveValue(name)] = kind
	}
	t.colorLiteralUID = r.ResolveValue("source.lang.swift.expr.object_literal.color")
	return t
}

// SymbolKind maps a compiler-service kind UID to an LSP SymbolKind.
func (t *KindTable) SymbolKind(uid sourcekitd.ValueUID) (protocol.SymbolKind, bool) {
	k, ok := t.symbolKindByUID[uid]
	return k, ok
}

// TokenTypeIndex maps a compiler-service kind UID to this package's
// semantic-token-type legend index. Unknown kinds are not present, per
// spec.md §4.6 "Unknown token types are dropped before encoding."
func (t *KindTable) TokenTypeIndex(uid sourcekitd.ValueUID) (uint32, bool) {
	idx, ok := t.tokenTypeByUID[uid]
	return idx, ok
}

// CompletionItemKind maps a compiler-service completion-result kind UID to
// an LSP CompletionItemKind, falling back to CompletionItemKindText for an
// unrecognized kind rather than dropping the item (spec.md §7 "drop that
// item and continue" only applies to malformed entries, not unknown
// kinds — completion should stay permissive so results are never
// silently thinned).
func (t *KindTable) CompletionItemKind(uid sourcekitd.ValueUID) protocol.CompletionItemKind {
	if k, ok := t.completionKindByUID[uid]; ok {
		return k
	}
	return protocol.CompletionItemKindText
}

// IsColorLiteral reports whether uid names a color-literal expression
// node, the kind document-color walks the substructure looking for.
func (t *KindTable) IsColorLiteral(uid sourcekitd.ValueUID) bool {
	return uid == t.colorLiteralUID
}
