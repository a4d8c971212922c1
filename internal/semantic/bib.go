package semantic

import (
	"strings"

	"texlab-go/internal/syntax"
)

// BibField is one `name = value` pair inside a BibTeX entry.
type BibField struct {
	Name       string
	NameRange  syntax.Range
	ValueRange syntax.Range
}

// BibEntry is one `@type{key, ...}` entry.
type BibEntry struct {
	Type      string
	Key       Span
	FullRange syntax.Range
	Fields    []BibField
}

// BibStringDef is one `@string{name = value}` macro definition.
type BibStringDef struct {
	Name      string
	NameRange syntax.Range
	FullRange syntax.Range
}

// BibIndex is the Semantic Index for one BibTeX document.
type BibIndex struct {
	Entries    []BibEntry
	StringDefs []BibStringDef
}

// ExtractBib walks a BibTeX green tree once, collecting entries and string
// macro definitions. It never descends into malformed entries beyond what
// the parser already recovered.
func ExtractBib(green *syntax.GreenNode) BibIndex {
	root := syntax.NewRoot(green)
	var idx BibIndex

	for _, child := range root.Children() {
		switch child.Kind() {
		case syntax.KindEntry:
			idx.Entries = append(idx.Entries, extractEntry(child))
		case syntax.KindStringDef:
			if def, ok := extractStringDef(child); ok {
				idx.StringDefs = append(idx.StringDefs, def)
			}
		}
	}
	return idx
}

func entryTypeText(n *syntax.SyntaxNode) string {
	t := syntax.FirstChildOfKind(n, syntax.KindEntryType)
	if t == nil {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(t.Text(), "@"))
}

func extractEntry(n *syntax.SyntaxNode) BibEntry {
	e := BibEntry{Type: entryTypeText(n), FullRange: n.Range()}
	if key := syntax.FirstChildOfKind(n, syntax.KindEntryKey); key != nil {
		e.Key = Span{Text: key.Text(), Range: key.Range()}
	}
	for _, field := range syntax.ChildrenOfKind(n, syntax.KindField) {
		name := syntax.FirstChildOfKind(field, syntax.KindFieldName)
		if name == nil {
			continue
		}
		bf := BibField{Name: name.Text(), NameRange: name.Range()}
		if val := fieldValueNode(field); val != nil {
			bf.ValueRange = val.Range()
		}
		e.Fields = append(e.Fields, bf)
	}
	return e
}

// fieldValueNode returns the value node of a Field (one of QuotedValue,
// BracedValue, NumberValue, NameValue, or Concat — the bibtex parser never
// wraps these in a common "Value" kind).
func fieldValueNode(field *syntax.SyntaxNode) *syntax.SyntaxNode {
	for _, c := range field.Children() {
		switch c.Kind() {
		case syntax.KindQuotedValue, syntax.KindBracedValue, syntax.KindNumberValue,
			syntax.KindNameValue, syntax.KindConcat:
			return c
		}
	}
	return nil
}

func extractStringDef(n *syntax.SyntaxNode) (BibStringDef, bool) {
	key := syntax.FirstChildOfKind(n, syntax.KindEntryKey)
	if key == nil {
		return BibStringDef{}, false
	}
	return BibStringDef{Name: key.Text(), NameRange: key.Range(), FullRange: n.Range()}, true
}
