package translate

import (
	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
)

// SymbolDetail is the result of a symbolInfo request, mirroring the nested
// key.symbol_info dictionary a cursor_info response carries.
type SymbolDetail struct {
	Name       string
	USR        string
	Kind       sourcekitd.ValueUID
	TypeName   string
	ModuleName string
}

// SymbolInfo implements spec.md §4.6 "SymbolInfo — [cursor_info.symbolInfo]
// or []": it pulls the nested symbol-info dictionary out of a cursor_info
// response and returns it as a single-element slice, or an empty slice if
// the cursor has no symbol at that position.
func SymbolInfo(ns sourcekitd.Namespaces, cursorInfo sourcekitd.Dict) []SymbolDetail {
	info, ok := cursorInfo.GetDict(ns.Keys.SymbolInfo)
	if !ok {
		return nil
	}

	detail := SymbolDetail{}
	detail.Name, _ = info.GetString(ns.Keys.Name_)
	detail.USR, _ = info.GetString(ns.Keys.USR)
	detail.Kind, _ = info.GetUID(ns.Keys.Kind)
	detail.TypeName, _ = info.GetString(ns.Keys.TypeName)
	detail.ModuleName, _ = info.GetString(ns.Keys.ModuleName)

	if detail.Name == "" && detail.USR == "" {
		return nil
	}
	return []SymbolDetail{detail}
}
