// Package lspserver wires the analysis engine to an editor over LSP:
// go.lsp.dev/jsonrpc2 supplies the stdio JSON-RPC framing, go.lsp.dev/
// protocol the wire types, and a hand-rolled method switch dispatches
// requests to the engine. Read-only requests run on worker goroutines
// against immutable snapshots; mutations are serialised through the
// server's lock.
package lspserver

import (
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"texlab-go/internal/diagnostics"
	"texlab-go/internal/query"
	"texlab-go/internal/syntax"
	"texlab-go/internal/workspace"
)

// toProtocolRange converts a byte-offset range into an LSP UTF-16
// line/character range using the document's line index.
func toProtocolRange(doc *workspace.Document, r syntax.Range) protocol.Range {
	start := doc.Lines.ToLineCol(r.Start)
	end := doc.Lines.ToLineCol(r.End)
	return protocol.Range{
		Start: protocol.Position{Line: start.Line, Character: start.Character},
		End:   protocol.Position{Line: end.Line, Character: end.Character},
	}
}

// toOffset converts an LSP position into a byte offset.
func toOffset(doc *workspace.Document, pos protocol.Position) int {
	return doc.Lines.ToOffset(workspace.Position{Line: pos.Line, Character: pos.Character})
}

func toProtocolSeverity(s diagnostics.Severity) protocol.DiagnosticSeverity {
	switch s {
	case diagnostics.SeverityError:
		return protocol.DiagnosticSeverity(1)
	case diagnostics.SeverityWarning:
		return protocol.DiagnosticSeverity(2)
	case diagnostics.SeverityInfo:
		return protocol.DiagnosticSeverity(3)
	default:
		return protocol.DiagnosticSeverity(4)
	}
}

func toProtocolDiagnostic(doc *workspace.Document, d diagnostics.Diagnostic) protocol.Diagnostic {
	out := protocol.Diagnostic{
		Range:    toProtocolRange(doc, d.Range),
		Severity: toProtocolSeverity(d.Severity),
		Source:   string(d.Source),
		Message:  d.Message,
	}
	if d.Code != "" {
		out.Code = d.Code
	} else {
		out.Code = string(d.Kind)
	}
	return out
}

// completionItemKind maps the engine's completion families onto LSP
// CompletionItemKind codes (Function, EnumMember, Constant, Reference,
// File, Class; Text otherwise).
func completionItemKind(kind query.CompletionKind) protocol.CompletionItemKind {
	switch kind {
	case query.CompleteCommand:
		return protocol.CompletionItemKind(3) // Function
	case query.CompleteEnvironment:
		return protocol.CompletionItemKind(20) // EnumMember
	case query.CompleteLabel:
		return protocol.CompletionItemKind(21) // Constant
	case query.CompleteCitation:
		return protocol.CompletionItemKind(18) // Reference
	case query.CompleteIncludePath:
		return protocol.CompletionItemKind(17) // File
	case query.CompleteEntryType:
		return protocol.CompletionItemKind(7) // Class
	default:
		return protocol.CompletionItemKind(1) // Text
	}
}

// symbolKind maps the engine's symbol taxonomy onto LSP SymbolKind codes
// (Module, Method, Number, Function, EnumMember, Interface, String,
// Field).
func symbolKind(kind query.SymbolKind) protocol.SymbolKind {
	switch kind {
	case query.SymbolSection:
		return protocol.SymbolKind(2) // Module
	case query.SymbolFloat:
		return protocol.SymbolKind(6) // Method
	case query.SymbolEquation:
		return protocol.SymbolKind(16) // Number
	case query.SymbolTheorem:
		return protocol.SymbolKind(11) // Interface
	case query.SymbolEnumItem:
		return protocol.SymbolKind(22) // EnumMember
	case query.SymbolEntry:
		return protocol.SymbolKind(12) // Function
	case query.SymbolString:
		return protocol.SymbolKind(15) // String
	case query.SymbolField:
		return protocol.SymbolKind(8) // Field
	default:
		return protocol.SymbolKind(19) // Object
	}
}

func foldingKind(kind query.FoldingKind) protocol.FoldingRangeKind {
	switch kind {
	case query.FoldSection:
		return protocol.FoldingRangeKind("region")
	case query.FoldEnvironment:
		return protocol.FoldingRangeKind("region")
	default:
		return protocol.FoldingRangeKind("region")
	}
}

func toDocumentSymbol(doc *workspace.Document, s *query.Symbol) protocol.DocumentSymbol {
	out := protocol.DocumentSymbol{
		Name:           s.Name,
		Detail:         s.Detail,
		Kind:           symbolKind(s.Kind),
		Range:          toProtocolRange(doc, s.Range),
		SelectionRange: toProtocolRange(doc, s.SelectionRange),
	}
	for _, c := range s.Children {
		out.Children = append(out.Children, toDocumentSymbol(doc, c))
	}
	return out
}

func docURI(u string) uri.URI { return uri.URI(u) }
