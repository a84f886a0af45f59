package main

import (
	"go.lsp.dev/protocol"

	"github.com/yamlkit/yls/ir"
	"github.com/yamlkit/yls/token"
)

func lspRange(pos *token.PosDoc, r token.Range) protocol.Range {
	sl, sc := pos.LineCol(r.Start)
	el, ec := pos.LineCol(r.End)
	return protocol.Range{
		Start: protocol.Position{Line: uint32(sl), Character: uint32(sc)},
		End:   protocol.Position{Line: uint32(el), Character: uint32(ec)},
	}
}

func docOffset(pos *token.PosDoc, p protocol.Position) int {
	return pos.Offset(int(p.Line), int(p.Character))
}

func lspSeverity(s ir.Severity) protocol.DiagnosticSeverity {
	switch s {
	case ir.SeverityError:
		return protocol.DiagnosticSeverityError
	case ir.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityInformation
	}
}

func lspSymbolKind(k ir.Kind) protocol.SymbolKind {
	switch k {
	case ir.MappingKind:
		return protocol.SymbolKindObject
	case ir.SequenceKind:
		return protocol.SymbolKindArray
	case ir.StringKind:
		return protocol.SymbolKindString
	case ir.NumberKind:
		return protocol.SymbolKindNumber
	case ir.BoolKind:
		return protocol.SymbolKindBoolean
	case ir.NullKind:
		return protocol.SymbolKindNull
	default:
		return protocol.SymbolKindVariable
	}
}
