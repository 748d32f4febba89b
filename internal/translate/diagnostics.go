package translate

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swift-server/sourcekit-lsp-go/internal/diagnostics"
	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
	"github.com/swift-server/sourcekit-lsp-go/internal/textmodel"
)

// SeverityUIDs resolves the compiler-service's diagnostic-severity
// taxonomy once per dylib.
type SeverityUIDs struct {
	Error   sourcekitd.ValueUID
	Warning sourcekitd.ValueUID
	Note    sourcekitd.ValueUID
}

// StageUIDs resolves the compiler-service's diagnostic-stage taxonomy
// (glossary "Diagnostic stage") once per dylib.
type StageUIDs struct {
	Parse sourcekitd.ValueUID
	Sema  sourcekitd.ValueUID
}

// ResolveSeverityUIDs resolves the severity taxonomy through r.
func ResolveSeverityUIDs(r sourcekitd.UIDResolver) SeverityUIDs {
	return SeverityUIDs{
		Error:   r.ResolveValue("source.diagnostic.severity.error"),
		Warning: r.ResolveValue("source.diagnostic.severity.warning"),
		Note:    r.ResolveValue("source.diagnostic.severity.note"),
	}
}

// ResolveStageUIDs resolves the stage taxonomy through r.
func ResolveStageUIDs(r sourcekitd.UIDResolver) StageUIDs {
	return StageUIDs{
		Parse: r.ResolveValue("source.diagnostic.stage.parse"),
		Sema:  r.ResolveValue("source.diagnostic.stage.sema"),
	}
}

// ParsedDiagnostic is one compiler-service diagnostic translated to its LSP
// shape, tagged with the stage it was scoped to for the merge rule
// (spec.md §4.3).
type ParsedDiagnostic struct {
	Diagnostic protocol.Diagnostic
	Stage      diagnostics.Stage
}

// CategorizedDiagnostics translates a categorized_diagnostics response
// array into ParsedDiagnostics. Entries missing a description, offset, or
// an unrecognized severity/stage are dropped (spec.md §7 "drop that item
// and continue").
func CategorizedDiagnostics(ns sourcekitd.Namespaces, sev SeverityUIDs, stages StageUIDs, lines *textmodel.LineTable, arr sourcekitd.Array) []ParsedDiagnostic {
	var out []ParsedDiagnostic
	for _, v := range arr {
		d, ok := v.(sourcekitd.Dict)
		if !ok {
			continue
		}
		parsed, ok := parseDiagnostic(ns, sev, stages, lines, d)
		if !ok {
			continue
		}
		out = append(out, parsed)
	}
	return out
}

func parseDiagnostic(ns sourcekitd.Namespaces, sev SeverityUIDs, stages StageUIDs, lines *textmodel.LineTable, d sourcekitd.Dict) (ParsedDiagnostic, bool) {
	description, ok := d.GetString(ns.Keys.Description)
	if !ok {
		return ParsedDiagnostic{}, false
	}

	offset, ok1 := d.GetInt64(ns.Keys.Offset)
	length, _ := d.GetInt64(ns.Keys.Length)
	if !ok1 {
		return ParsedDiagnostic{}, false
	}
	rng, ok := byteRangeToLSP(lines, offset, length)
	if !ok {
		return ParsedDiagnostic{}, false
	}

	severityUID, ok := d.GetUID(ns.Keys.Severity)
	if !ok {
		return ParsedDiagnostic{}, false
	}
	severity, ok := lspSeverity(sev, severityUID)
	if !ok {
		return ParsedDiagnostic{}, false
	}

	stageUID, ok := d.GetUID(ns.Keys.DiagnosticStage)
	if !ok {
		return ParsedDiagnostic{}, false
	}
	stage, ok := mergeStage(stages, stageUID)
	if !ok {
		return ParsedDiagnostic{}, false
	}

	diag := protocol.Diagnostic{
		Range:    rng,
		Severity: &severity,
		Source:   strPtr("sourcekitd"),
		Message:  description,
	}

	if fixits, ok := d.GetArray(ns.Keys.Fixits); ok {
		diag.Data = fixitsToTextEdits(ns, lines, fixits)
	}

	return ParsedDiagnostic{Diagnostic: diag, Stage: stage}, true
}

func lspSeverity(sev SeverityUIDs, uid sourcekitd.ValueUID) (protocol.DiagnosticSeverity, bool) {
	switch uid {
	case sev.Error:
		return protocol.DiagnosticSeverityError, true
	case sev.Warning:
		return protocol.DiagnosticSeverityWarning, true
	case sev.Note:
		return protocol.DiagnosticSeverityHint, true
	default:
		return 0, false
	}
}

func mergeStage(stages StageUIDs, uid sourcekitd.ValueUID) (diagnostics.Stage, bool) {
	switch uid {
	case stages.Parse:
		return diagnostics.StageParse, true
	case stages.Sema:
		return diagnostics.StageSema, true
	default:
		return 0, false
	}
}

// fixitsToTextEdits converts a diagnostic's fixit array into text edits,
// stashed on Diagnostic.Data so a quick-fix code action can recover them
// without re-querying the daemon (spec.md §4.6 "Code actions").
func fixitsToTextEdits(ns sourcekitd.Namespaces, lines *textmodel.LineTable, fixits sourcekitd.Array) []protocol.TextEdit {
	var out []protocol.TextEdit
	for _, v := range fixits {
		f, ok := v.(sourcekitd.Dict)
		if !ok {
			continue
		}
		offset, ok1 := f.GetInt64(ns.Keys.Offset)
		length, ok2 := f.GetInt64(ns.Keys.Length)
		text, ok3 := f.GetString(ns.Keys.SourceText)
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		rng, ok := byteRangeToLSP(lines, offset, length)
		if !ok {
			continue
		}
		out = append(out, protocol.TextEdit{Range: rng, NewText: text})
	}
	return out
}

func strPtr(s string) *string { return &s }
