package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"combo/internal/diagnostics"
)

// toProtocolDiagnostics converts internal/diagnostics.Diagnostic values
// (parse errors, unopt_cf findings, pass-invariant failures) into the LSP
// wire format, the same conversion shape the teacher's ConvertParseErrors/
// ConvertScanErrors used for Kanso source errors.
func toProtocolDiagnostics(diags []diagnostics.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		line := d.Line - 1
		col := d.Column - 1
		if line < 0 {
			line = 0
		}
		if col < 0 {
			col = 0
		}

		out = append(out, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: uint32(line), Character: uint32(col)},
				End:   protocol.Position{Line: uint32(line), Character: uint32(col + 1)},
			},
			Severity: ptrSeverity(toProtocolSeverity(d.Severity)),
			Source:   ptrString("combo-" + d.Source),
			Message:  d.Message,
		})
	}
	return out
}

func toProtocolSeverity(s diagnostics.Severity) protocol.DiagnosticSeverity {
	if s == diagnostics.SeverityWarning {
		return protocol.DiagnosticSeverityWarning
	}
	return protocol.DiagnosticSeverityError
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}
