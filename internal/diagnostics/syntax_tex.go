package diagnostics

import (
	"texlab-go/internal/syntax"
)

var curlyGroupKinds = map[syntax.Kind]bool{
	syntax.KindCurlyGroup:          true,
	syntax.KindCurlyGroupCommand:   true,
	syntax.KindCurlyGroupKeyValue:  true,
	syntax.KindCurlyGroupWord:      true,
	syntax.KindCurlyGroupWordList:  true,
}

// SyntaxTex walks a TeX green tree and reports mismatched environment
// names, unclosed curly groups, and stray closing braces.
//
// Verbatim environment bodies need no special-casing here: the parser
// already lexes them as a single opaque token (internal/syntax/latex),
// so they never contain the curly-group/error nodes this walk looks for.
func SyntaxTex(green *syntax.GreenNode) []Diagnostic {
	if green == nil {
		return nil
	}
	root := syntax.NewRoot(green)
	var diags []Diagnostic
	_ = syntax.Walk(root, func(n *syntax.SyntaxNode, ev syntax.WalkEvent) error {
		if ev != syntax.EventEnter {
			return nil
		}
		switch {
		case n.Kind() == syntax.KindEnvironment:
			if d, ok := checkMismatchedEnvironment(n); ok {
				diags = append(diags, d)
			}
		case curlyGroupKinds[n.Kind()]:
			if d, ok := checkUnclosedGroup(n); ok {
				diags = append(diags, d)
			}
		case n.Kind() == syntax.KindError:
			if d, ok := checkStrayRCurly(n); ok {
				diags = append(diags, d)
			}
		}
		return nil
	})
	return diags
}

func checkMismatchedEnvironment(n *syntax.SyntaxNode) (Diagnostic, bool) {
	begin := syntax.FirstChildOfKind(n, syntax.KindBeginEnvironment)
	end := syntax.FirstChildOfKind(n, syntax.KindEndEnvironment)
	if begin == nil || end == nil {
		return Diagnostic{}, false
	}
	beginName, beginWord := environmentName(begin)
	endName, _ := environmentName(end)
	if beginWord == nil || endName == "" || beginName == endName {
		return Diagnostic{}, false
	}
	return Diagnostic{
		Range:    beginWord.Range(),
		Severity: SeverityError,
		Kind:     KindMismatchedEnvironment,
		Message:  mismatchedEnvironment(),
		Source:   SourceSyntax,
	}, true
}

func environmentName(beginOrEnd *syntax.SyntaxNode) (string, *syntax.SyntaxNode) {
	nameGroup := syntax.FirstChildOfKind(beginOrEnd, syntax.KindCurlyGroupWord)
	if nameGroup == nil {
		return "", nil
	}
	word := syntax.FirstChildOfKind(nameGroup, syntax.KindWord)
	if word == nil {
		return "", nil
	}
	return word.Text(), word
}

// checkUnclosedGroup flags a curly group whose last child is not its
// closing brace, reporting an empty range at the group's end —
// the position where the missing `}` would be inserted.
func checkUnclosedGroup(n *syntax.SyntaxNode) (Diagnostic, bool) {
	children := n.Children()
	if len(children) == 0 {
		return Diagnostic{}, false
	}
	last := children[len(children)-1]
	if last.Kind() == syntax.KindRCurly {
		return Diagnostic{}, false
	}
	return Diagnostic{
		Range:    emptyRangeAt(n.Range().End),
		Severity: SeverityError,
		Kind:     KindUnclosedGroup,
		Message:  unclosedGroup(),
		Source:   SourceSyntax,
	}, true
}

// checkStrayRCurly flags an ERROR node wrapping an unexpected `}` token
//, emitted by the parser whenever it finds a
// closing brace with nothing open to match.
func checkStrayRCurly(n *syntax.SyntaxNode) (Diagnostic, bool) {
	children := n.Children()
	if len(children) != 1 || children[0].Kind() != syntax.KindRCurly {
		return Diagnostic{}, false
	}
	return Diagnostic{
		Range:    n.Range(),
		Severity: SeverityError,
		Kind:     KindUnexpectedRCurly,
		Message:  unexpectedRCurly(),
		Source:   SourceSyntax,
	}, true
}
