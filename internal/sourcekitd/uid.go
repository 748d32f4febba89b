package sourcekitd

// CrashNotificationName is the notification the worker treats as a
// connection-drop signal. Unlike every other notification kind, this is
// not resolved through a dylib's uid-interning table: the real binding
// synthesizes it itself when the underlying connection drops (there is no
// daemon-side UID for "I crashed", since the daemon is, by definition, no
// longer there to send one), so it is a plain string constant rather than
// a ValueUID pulled from Namespaces.
const CrashNotificationName = "source.notification.crash"

// UIDResolver resolves a string name to its opaque UID within a loaded
// dylib. A real dylib binding implements this by calling the daemon's
// uid-interning entry point; the fake implementation simply assigns
// sequential integers. Either way, callers never hard-code a UID literal
// (spec §9 "opaque UID namespaces").
type UIDResolver interface {
	Resolve(name string) Key
	ResolveValue(name string) ValueUID
}

// KeyNames are the request/response dictionary keys this module sends or
// reads, resolved once per dylib (spec §6 "Request keys used").
type KeyNames struct {
	Request               Key
	Notification          Key
	Name                  Key
	SourceText            Key
	Offset                Key
	Length                Key
	CompilerArgs          Key
	SourceFile            Key
	SyntacticOnly         Key
	SyntaxMap             Key
	EnableSyntaxMap        Key
	RetrieveRefactorActions Key
	Line                  Key
	Column                Key
	Kind                  Key
	SubStructure          Key
	Name_                 Key // substructure node name
	BodyOffset            Key
	BodyLength            Key
	NameOffset            Key
	NameLength            Key
	SymbolInfo            Key
	AnnotatedDecl         Key
	DocFullAsXML          Key
	RefactorActions       Key
	ActionName            Key
	ActionUID             Key
	Results               Key
	SourceRanges          Key
	CategorizedDiagnostics Key
	Description           Key
	Severity              Key
	DiagnosticStage       Key
	Ranges                Key
	Fixits                Key
	TokenKind             Key
	SyntaxType            Key
	CategorizedEdits      Key
	USR                   Key
	TypeName              Key
	ModuleName            Key
}

// RequestNames are the request UIDs this module issues (spec §6). The
// UID list spec.md §6 enumerates is explicitly non-exhaustive ("Value
// UIDs consumed include the kind taxonomy enumerated in the glossary");
// CodeCompleteOpen/CodeCompleteClose back the completion-session
// abstraction spec.md §3 requires but §4.6 never spells the wire request
// out for, so they follow the real daemon's actual completion protocol.
type RequestNames struct {
	EditorOpen          ValueUID
	EditorClose         ValueUID
	EditorReplaceText   ValueUID
	RelatedIdents       ValueUID
	CrashExit           ValueUID
	CursorInfo          ValueUID
	SemanticRefactoring ValueUID
	CodeCompleteOpen    ValueUID
	CodeCompleteClose   ValueUID
}

// NotificationKinds are the notification-kind UIDs the daemon may push
// unsolicited (spec §4.7).
type NotificationKinds struct {
	SemaEnabled    ValueUID
	DocumentUpdate ValueUID
}

// Namespaces bundles every resolved UID table a Client exposes, matching
// the "keys, requests, values" accessors of spec §4.4.
type Namespaces struct {
	Keys          KeyNames
	Requests      RequestNames
	Notifications NotificationKinds
}

// ResolveNamespaces resolves every UID this module needs through r. It
// cannot fail: a resolver returns a UID for any name. A dylib missing an
// entry point this package calls is reported as ErrMissingRequiredSymbol
// earlier, by openDylib.
func ResolveNamespaces(r UIDResolver) Namespaces {
	k := func(name string) Key { return r.Resolve(name) }
	v := func(name string) ValueUID { return r.ResolveValue(name) }

	return Namespaces{
		Keys: KeyNames{
			Request:                 k("key.request"),
			Notification:            k("key.notification"),
			Name:                    k("key.name"),
			SourceText:              k("key.sourcetext"),
			Offset:                  k("key.offset"),
			Length:                  k("key.length"),
			CompilerArgs:            k("key.compilerargs"),
			SourceFile:              k("key.sourcefile"),
			SyntacticOnly:           k("key.syntactic_only"),
			SyntaxMap:               k("key.syntaxmap"),
			EnableSyntaxMap:         k("key.enablesyntaxmap"),
			RetrieveRefactorActions: k("key.retrieve_refactor_actions"),
			Line:                    k("key.line"),
			Column:                  k("key.column"),
			Kind:                    k("key.kind"),
			SubStructure:            k("key.substructure"),
			Name_:                   k("key.name"),
			BodyOffset:              k("key.bodyoffset"),
			BodyLength:              k("key.bodylength"),
			NameOffset:              k("key.nameoffset"),
			NameLength:              k("key.namelength"),
			SymbolInfo:              k("key.symbol_info"),
			AnnotatedDecl:           k("key.annotated_decl"),
			DocFullAsXML:            k("key.doc_full_as_xml"),
			RefactorActions:         k("key.refactor_actions"),
			ActionName:              k("key.actionname"),
			ActionUID:               k("key.actionuid"),
			Results:                 k("key.results"),
			SourceRanges:            k("key.ranges"),
			CategorizedDiagnostics:  k("key.diagnostics"),
			Description:             k("key.description"),
			Severity:                k("key.severity"),
			DiagnosticStage:         k("key.diagnostic_stage"),
			Ranges:                  k("key.ranges"),
			Fixits:                  k("key.fixits"),
			TokenKind:               k("key.kind"),
			SyntaxType:              k("key.syntaxtype"),
			CategorizedEdits:        k("key.edits"),
			USR:                     k("key.usr"),
			TypeName:                k("key.typename"),
			ModuleName:              k("key.modulename"),
		},
		Requests: RequestNames{
			EditorOpen:          v("source.request.editor.open"),
			EditorClose:         v("source.request.editor.close"),
			EditorReplaceText:   v("source.request.editor.replacetext"),
			RelatedIdents:       v("source.request.relatedidents"),
			CrashExit:           v("source.request.crash_exit"),
			CursorInfo:          v("source.request.cursorinfo"),
			SemanticRefactoring: v("source.request.semantic_refactoring"),
			CodeCompleteOpen:    v("source.request.codecomplete.open"),
			CodeCompleteClose:   v("source.request.codecomplete.close"),
		},
		Notifications: NotificationKinds{
			SemaEnabled:    v("source.notification.sema_enabled"),
			DocumentUpdate: v("source.notification.documentupdate"),
		},
	}
}
