// Package diagnostics implements the diagnostic engine (C7): per-document
// syntax diagnostics for TeX and BibTeX, cross-project semantic
// diagnostics (citations, labels, duplicates), build-log mapping, and
// ChkTeX ingestion, merged and filtered on publication.
package diagnostics

import (
	"fmt"

	"texlab-go/internal/syntax"
)

// Severity mirrors the LSP DiagnosticSeverity levels the publisher maps
// onto.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityHint
)

// Kind is the closed set of diagnostic kinds the engine ever produces.
// Tex/Bib share one name (ExpectingRCurly)
// because both grammars can be missing a closing brace; both also carry
// the same Source, so only the document's language tells them apart.
type Kind string

const (
	KindMismatchedEnvironment Kind = "MismatchedEnvironment"
	KindUnclosedGroup         Kind = "ExpectingRCurly" // unclosed curly group, any flavour
	KindUnexpectedRCurly      Kind = "UnexpectedRCurly"

	KindExpectingLCurly      Kind = "ExpectingLCurly"
	KindExpectingKey         Kind = "ExpectingKey"
	KindExpectingFieldRCurly Kind = "ExpectingRCurly"
	KindExpectingEq          Kind = "ExpectingEq"
	KindExpectingFieldValue  Kind = "ExpectingFieldValue"

	KindUndefinedCitation Kind = "UndefinedCitation"
	KindUnusedEntry       Kind = "UnusedEntry"
	KindDuplicateEntry    Kind = "DuplicateEntry"
	KindUndefinedLabel    Kind = "UndefinedLabel"
	KindUnusedLabel       Kind = "UnusedLabel"
	KindDuplicateLabel    Kind = "DuplicateLabel"

	KindBuildError   Kind = "BuildError"
	KindBuildWarning Kind = "BuildWarning"
	KindChktex       Kind = "Chktex"
)

// Source names the producer of a Diagnostic as shown to the client. Syntax
// and semantic diagnostics share the "texlab" source.
type Source string

const (
	SourceSyntax   Source = "texlab"
	SourceSemantic Source = "texlab"
	SourceBuildLog Source = "build"
	SourceChktex   Source = "chktex"
)

// Diagnostic is one reported issue.
type Diagnostic struct {
	Range    syntax.Range
	Severity Severity
	Kind     Kind
	Message  string
	Source   Source
	Code     string // ChkTeX's numeric code, empty otherwise
}

func emptyRangeAt(offset int) syntax.Range { return syntax.Range{Start: offset, End: offset} }

func mismatchedEnvironment() string { return "Mismatched environment" }
func unclosedGroup() string         { return "Expecting }" }
func unexpectedRCurly() string      { return "Unexpected }" }
func expectingLCurly() string       { return "Expecting {" }
func expectingKey() string          { return "Expecting key" }
func expectingEq() string           { return "Expecting =" }
func expectingFieldValue() string   { return "Expecting field value" }
func undefinedCitation(key string) string {
	return fmt.Sprintf("Undefined reference: %s", key)
}
func unusedEntry(key string) string {
	return fmt.Sprintf("Unused entry: %s", key)
}
func duplicateEntry(key string) string {
	return fmt.Sprintf("Duplicate entry: %s", key)
}
func undefinedLabel(name string) string {
	return fmt.Sprintf("Undefined reference: %s", name)
}
func unusedLabel(name string) string {
	return fmt.Sprintf("Unused label: %s", name)
}
func duplicateLabel(name string) string {
	return fmt.Sprintf("Duplicate label: %s", name)
}
