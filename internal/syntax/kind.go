// Package syntax implements the lossless, error-tolerant concrete syntax
// tree shared by the TeX and BibTeX parsers. No third-party library in the
// reference pack offers this — tree-sitter
// bindings require a compiled grammar that does not exist for TeX/BibTeX —
// so the tree is hand-rolled against the standard library only; see
// DESIGN.md for the justification.
package syntax

// Kind tags every node and token in a green tree. It is a single closed
// enum shared across TeX, BibTeX and build-log trees so that a single
// Kind-keyed switch can dispatch across all three grammars when useful
// (e.g. generic "is this an ERROR node" checks).
type Kind uint16

const (
	KindInvalid Kind = iota

	// --- shared tokens ---
	KindWhitespace
	KindComment
	KindWord
	KindEOF
	KindError

	// --- TeX tokens ---
	KindCommandName   // \foo
	KindLCurly        // {
	KindRCurly        // }
	KindLBracket      // [
	KindRBracket      // ]
	KindLParen        // (
	KindRParen        // )
	KindEquals        // =
	KindComma         // ,
	KindMathShift     // $
	KindDollarDollar  // $$
	KindBeginMath     // \[
	KindEndMath       // \]
	KindCaret         // ^
	KindUnderscore    // _
	KindAmpersand     // &
	KindHash          // #
	KindPipe          // |
	KindViperne       // reserved
	KindTextSymbol    // ~, other single-char specials

	// --- TeX nodes ---
	KindRoot
	KindCommand
	KindText
	KindCurlyGroup
	KindCurlyGroupWordList
	KindCurlyGroupWord
	KindCurlyGroupKeyValue
	KindCurlyGroupCommand
	KindBrackGroup
	KindBrackGroupWord
	KindBrackGroupKeyValue
	KindMixedGroup
	KindKeyValuePair
	KindKeyValueBody
	KindEnvironment
	KindBeginEnvironment
	KindEndEnvironment
	KindVerbatimEnvironmentBody
	KindMath
	KindEquationEnvironment
	KindFormula
	KindGroup

	// --- BibTeX tokens ---
	KindAt            // @
	KindBibCommand    // @article etc token
	KindQuote         // "
	KindHashConcat    // #
	KindPreambleKw
	KindStringKw
	KindCommentKw

	// --- BibTeX nodes ---
	KindBibRoot
	KindEntry
	KindStringDef
	KindPreamble
	KindBibComment
	KindEntryType
	KindEntryKey
	KindField
	KindFieldName
	KindValue
	KindQuotedValue
	KindBracedValue
	KindConcat
	KindNumberValue
	KindNameValue

	// --- build log nodes (not a real tree, but reuse the node abstraction) ---
	KindLogRoot
	KindLogLine
)

func (k Kind) IsTrivia() bool {
	return k == KindWhitespace || k == KindComment
}

func (k Kind) IsError() bool {
	return k == KindError
}

var kindNames = map[Kind]string{
	KindInvalid: "INVALID", KindWhitespace: "WHITESPACE", KindComment: "COMMENT",
	KindWord: "WORD", KindEOF: "EOF", KindError: "ERROR",
	KindCommandName: "COMMAND_NAME", KindLCurly: "L_CURLY", KindRCurly: "R_CURLY",
	KindLBracket: "L_BRACKET", KindRBracket: "R_BRACKET", KindLParen: "L_PAREN",
	KindRParen: "R_PAREN", KindEquals: "EQUALS", KindComma: "COMMA",
	KindMathShift: "MATH_SHIFT", KindDollarDollar: "DOLLAR_DOLLAR",
	KindBeginMath: "BEGIN_MATH", KindEndMath: "END_MATH", KindCaret: "CARET",
	KindUnderscore: "UNDERSCORE", KindAmpersand: "AMPERSAND", KindHash: "HASH",
	KindRoot: "ROOT", KindCommand: "COMMAND", KindText: "TEXT",
	KindCurlyGroup: "CURLY_GROUP", KindCurlyGroupWordList: "CURLY_GROUP_WORD_LIST",
	KindCurlyGroupWord: "CURLY_GROUP_WORD", KindCurlyGroupKeyValue: "CURLY_GROUP_KEY_VALUE",
	KindCurlyGroupCommand: "CURLY_GROUP_COMMAND", KindBrackGroup: "BRACK_GROUP",
	KindBrackGroupWord: "BRACK_GROUP_WORD", KindBrackGroupKeyValue: "BRACK_GROUP_KEY_VALUE",
	KindMixedGroup: "MIXED_GROUP", KindKeyValuePair: "KEY_VALUE_PAIR",
	KindKeyValueBody: "KEY_VALUE_BODY", KindEnvironment: "ENVIRONMENT",
	KindBeginEnvironment: "BEGIN_ENVIRONMENT", KindEndEnvironment: "END_ENVIRONMENT",
	KindVerbatimEnvironmentBody: "VERBATIM_BODY", KindMath: "MATH",
	KindEquationEnvironment: "EQUATION_ENVIRONMENT", KindFormula: "FORMULA",
	KindAt: "AT", KindBibCommand: "BIB_COMMAND", KindQuote: "QUOTE",
	KindBibRoot: "BIB_ROOT", KindEntry: "ENTRY", KindStringDef: "STRING_DEF",
	KindPreamble: "PREAMBLE", KindBibComment: "BIB_COMMENT", KindEntryType: "ENTRY_TYPE",
	KindEntryKey: "ENTRY_KEY", KindField: "FIELD", KindFieldName: "FIELD_NAME",
	KindValue: "VALUE", KindQuotedValue: "QUOTED_VALUE", KindBracedValue: "BRACED_VALUE",
	KindConcat: "CONCAT", KindNumberValue: "NUMBER_VALUE", KindNameValue: "NAME_VALUE",
	KindLogRoot: "LOG_ROOT", KindLogLine: "LOG_LINE",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}
