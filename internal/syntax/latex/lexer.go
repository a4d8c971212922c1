// Package latex implements the TeX lexer and parser producing a lossless
// green tree. It is hand-rolled against the standard library only: no
// grammar for TeX exists among the tree-sitter bindings retrieved for this
// module, and a token-preserving concrete tree is required here, which a
// conventional AST library would not give us anyway.
package latex

import (
	"strings"
	"unicode/utf8"

	"texlab-go/internal/syntax"
)

type rawToken struct {
	kind syntax.Kind
	text string
}

// lex tokenizes TeX source into a flat, position-ordered list of tokens
// whose concatenated text reproduces the input exactly.
func lex(text string) []rawToken {
	var tokens []rawToken
	i := 0
	n := len(text)

	isSpecial := func(r rune) bool {
		switch r {
		case '\\', '%', '{', '}', '[', ']', '$', ',', '=':
			return true
		}
		return false
	}

	for i < n {
		r, size := utf8.DecodeRuneInString(text[i:])

		switch {
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			start := i
			for i < n {
				r2, s2 := utf8.DecodeRuneInString(text[i:])
				if r2 != ' ' && r2 != '\t' && r2 != '\r' && r2 != '\n' {
					break
				}
				i += s2
			}
			tokens = append(tokens, rawToken{syntax.KindWhitespace, text[start:i]})

		case r == '%':
			start := i
			for i < n {
				r2, s2 := utf8.DecodeRuneInString(text[i:])
				if r2 == '\n' {
					break
				}
				i += s2
			}
			tokens = append(tokens, rawToken{syntax.KindComment, text[start:i]})

		case r == '\\':
			start := i
			i += size
			if i < n {
				r2, s2 := utf8.DecodeRuneInString(text[i:])
				if isLetter(r2) {
					for i < n {
						r3, s3 := utf8.DecodeRuneInString(text[i:])
						if !isLetter(r3) {
							break
						}
						i += s3
					}
				} else {
					i += s2
				}
			}
			tokens = append(tokens, rawToken{syntax.KindCommandName, text[start:i]})

		case r == '{':
			tokens = append(tokens, rawToken{syntax.KindLCurly, "{"})
			i += size
		case r == '}':
			tokens = append(tokens, rawToken{syntax.KindRCurly, "}"})
			i += size
		case r == '[':
			tokens = append(tokens, rawToken{syntax.KindLBracket, "["})
			i += size
		case r == ']':
			tokens = append(tokens, rawToken{syntax.KindRBracket, "]"})
			i += size
		case r == ',':
			tokens = append(tokens, rawToken{syntax.KindComma, ","})
			i += size
		case r == '=':
			tokens = append(tokens, rawToken{syntax.KindEquals, "="})
			i += size
		case r == '$':
			start := i
			i += size
			if i < n {
				if r2, s2 := utf8.DecodeRuneInString(text[i:]); r2 == '$' {
					i += s2
					tokens = append(tokens, rawToken{syntax.KindDollarDollar, text[start:i]})
					continue
				}
			}
			tokens = append(tokens, rawToken{syntax.KindMathShift, "$"})

		default:
			start := i
			for i < n {
				r2, s2 := utf8.DecodeRuneInString(text[i:])
				if r2 == ' ' || r2 == '\t' || r2 == '\r' || r2 == '\n' || isSpecial(r2) {
					break
				}
				i += s2
			}
			if i == start {
				// Shouldn't happen, but never loop forever on an
				// unexpected byte sequence.
				i += size
			}
			tokens = append(tokens, rawToken{syntax.KindWord, text[start:i]})
		}
	}

	tokens = append(tokens, rawToken{syntax.KindEOF, ""})
	return tokens
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// commandNameWithoutSlash strips the leading backslash from a command-name
// token's text for command-table lookups.
func commandNameWithoutSlash(text string) string {
	return strings.TrimPrefix(text, `\`)
}
