package query

import (
	"texlab-go/internal/syntax"
	"texlab-go/internal/syntax/latex"
)

// BibFieldPosition classifies where inside a BibTeX entry an offset falls.
type BibFieldPosition int

const (
	BibPositionNone BibFieldPosition = iota
	BibPositionEntryType
	BibPositionEntryKey
	BibPositionFieldName
	BibPositionFieldValue
)

// Context is the cursor-sensitive information every position-dependent
// query starts from.
type Context struct {
	Offset int

	// Token is the syntax token at Offset, resolved with BiasLeft (the
	// token immediately before the cursor when it sits on a boundary,
	// matching where a user's completion prefix lives).
	Token *syntax.SyntaxNode

	// Command is the nearest enclosing \name command, if any.
	Command *syntax.SyntaxNode
	// Environment is the nearest enclosing environment, if any.
	Environment *syntax.SyntaxNode

	// GroupFlavour is the curly-group flavour the cursor sits inside, for
	// Tex documents.
	GroupFlavour latex.ArgFlavour
	InGroup      bool

	BibPosition BibFieldPosition
}

var curlyFlavourKinds = map[syntax.Kind]latex.ArgFlavour{
	syntax.KindCurlyGroup:         latex.FlavourPlain,
	syntax.KindCurlyGroupWord:     latex.FlavourWord,
	syntax.KindCurlyGroupWordList: latex.FlavourWordList,
	syntax.KindCurlyGroupKeyValue: latex.FlavourKeyValue,
	syntax.KindCurlyGroupCommand:  latex.FlavourCommandOnly,
}

// TexContext computes the cursor context for a Tex document's green tree
// at a byte offset.
func TexContext(green *syntax.GreenNode, offset int) Context {
	root := syntax.NewRoot(green)
	ctx := Context{Offset: offset}
	ctx.Token = syntax.TokenAtOffset(root, offset, syntax.BiasLeft)
	if ctx.Token == nil {
		return ctx
	}
	ctx.Command = syntax.FindAncestor(ctx.Token, syntax.KindCommand)
	ctx.Environment = syntax.FindAncestor(ctx.Token, syntax.KindEnvironment)
	for n := ctx.Token; n != nil; n = n.Parent() {
		if flavour, ok := curlyFlavourKinds[n.Kind()]; ok {
			ctx.GroupFlavour = flavour
			ctx.InGroup = true
			break
		}
	}
	return ctx
}

// BibContext computes the cursor context for a BibTeX document's green
// tree at a byte offset.
func BibContext(green *syntax.GreenNode, offset int) Context {
	root := syntax.NewRoot(green)
	ctx := Context{Offset: offset}
	ctx.Token = syntax.TokenAtOffset(root, offset, syntax.BiasLeft)
	if ctx.Token == nil {
		return ctx
	}
	entry := syntax.FindAncestor(ctx.Token, syntax.KindEntry)
	if entry == nil {
		return ctx
	}
	switch {
	case within(ctx.Token, syntax.FirstChildOfKind(entry, syntax.KindEntryType)):
		ctx.BibPosition = BibPositionEntryType
	case within(ctx.Token, syntax.FirstChildOfKind(entry, syntax.KindEntryKey)):
		ctx.BibPosition = BibPositionEntryKey
	default:
		if field := syntax.FindAncestor(ctx.Token, syntax.KindField); field != nil {
			switch {
			case within(ctx.Token, syntax.FirstChildOfKind(field, syntax.KindFieldName)):
				ctx.BibPosition = BibPositionFieldName
			default:
				ctx.BibPosition = BibPositionFieldValue
			}
		}
	}
	return ctx
}

func within(token, target *syntax.SyntaxNode) bool {
	if token == nil || target == nil {
		return false
	}
	return target.Range().Contains(token.Range().Start)
}

// CommandName returns the bare name (no leading backslash) of the command
// a red Command node represents, or "" if it has no name token.
func CommandName(cmd *syntax.SyntaxNode) string {
	if cmd == nil {
		return ""
	}
	children := cmd.Children()
	if len(children) == 0 {
		return ""
	}
	tok, ok := children[0].Token()
	if !ok {
		return ""
	}
	if len(tok.Text) > 0 && tok.Text[0] == '\\' {
		return tok.Text[1:]
	}
	return tok.Text
}
