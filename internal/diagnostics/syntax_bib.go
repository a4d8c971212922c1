package diagnostics

import "texlab-go/internal/syntax"

// SyntaxBib walks a BibTeX green tree and reports the five grammar errors
// the parser represents structurally rather than aborting on: missing
// left delimiters, entry keys, right delimiters, equals signs, and
// field values.
func SyntaxBib(green *syntax.GreenNode) []Diagnostic {
	if green == nil {
		return nil
	}
	root := syntax.NewRoot(green)
	var diags []Diagnostic
	for _, n := range syntax.Descendants(root) {
		switch n.Kind() {
		case syntax.KindEntry:
			diags = append(diags, checkBibEntry(n)...)
		case syntax.KindField:
			if d, ok := checkBibField(n); ok {
				diags = append(diags, d)
			}
		}
	}
	return diags
}

func checkBibEntry(n *syntax.SyntaxNode) []Diagnostic {
	children := n.Children()
	typeNode := syntax.FirstChildOfKind(n, syntax.KindEntryType)

	var open *syntax.SyntaxNode
	for _, c := range children {
		if c.Kind() == syntax.KindLCurly || c.Kind() == syntax.KindLParen {
			open = c
			break
		}
	}
	if open == nil {
		if typeNode == nil {
			return nil
		}
		return []Diagnostic{{
			Range:    emptyRangeAt(typeNode.Range().End),
			Severity: SeverityError,
			Kind:     KindExpectingLCurly,
			Message:  expectingLCurly(),
			Source:   SourceSyntax,
		}}
	}

	key := syntax.FirstChildOfKind(n, syntax.KindEntryKey)
	if key == nil {
		return []Diagnostic{{
			Range:    emptyRangeAt(open.Range().End),
			Severity: SeverityError,
			Kind:     KindExpectingKey,
			Message:  expectingKey(),
			Source:   SourceSyntax,
		}}
	}

	var close *syntax.SyntaxNode
	for _, c := range children {
		if c.Kind() == syntax.KindRCurly || c.Kind() == syntax.KindRParen {
			close = c
		}
	}
	if close == nil {
		return []Diagnostic{{
			Range:    emptyRangeAt(n.Range().End),
			Severity: SeverityError,
			Kind:     KindExpectingFieldRCurly,
			Message:  unclosedGroup(),
			Source:   SourceSyntax,
		}}
	}
	return nil
}

var bibValueKinds = map[syntax.Kind]bool{
	syntax.KindQuotedValue: true,
	syntax.KindBracedValue: true,
	syntax.KindNumberValue: true,
	syntax.KindNameValue:   true,
	syntax.KindConcat:      true,
}

func checkBibField(n *syntax.SyntaxNode) (Diagnostic, bool) {
	nameNode := syntax.FirstChildOfKind(n, syntax.KindFieldName)
	if nameNode == nil {
		return Diagnostic{}, false
	}

	var eq *syntax.SyntaxNode
	for _, c := range n.Children() {
		if c.Kind() == syntax.KindEquals {
			eq = c
		}
	}
	if eq == nil {
		return Diagnostic{
			Range:    emptyRangeAt(nameNode.Range().End),
			Severity: SeverityError,
			Kind:     KindExpectingEq,
			Message:  expectingEq(),
			Source:   SourceSyntax,
		}, true
	}

	for _, c := range n.Children() {
		if bibValueKinds[c.Kind()] {
			return Diagnostic{}, false
		}
	}
	return Diagnostic{
		Range:    emptyRangeAt(eq.Range().End),
		Severity: SeverityError,
		Kind:     KindExpectingFieldValue,
		Message:  expectingFieldValue(),
		Source:   SourceSyntax,
	}, true
}
