package latex

import (
	"texlab-go/internal/syntax"
)

// Parser builds a lossless green tree from a flat token stream. It is
// total: every input produces a tree, and malformed input becomes ERROR
// nodes/tokens that preserve the offending bytes rather than aborting.
type Parser struct {
	tokens  []rawToken
	pos     int
	table   map[string]Signature
	verbatim map[string]bool
}

// Options configures a parse: the verbatim environment name set is
// normally sourced from the syntax section of the loaded configuration.
type Options struct {
	VerbatimEnvironments []string
}

// Parse runs the full TeX grammar over text and returns the root green
// node.
func Parse(text string, opts Options) *syntax.GreenNode {
	verbatim := map[string]bool{}
	for _, v := range opts.VerbatimEnvironments {
		verbatim[v] = true
	}
	p := &Parser{tokens: lex(text), table: DefaultCommandTable(), verbatim: verbatim}
	children := p.parseContent(func(k syntax.Kind) bool { return k == syntax.KindEOF })
	return syntax.NewNode(syntax.KindRoot, children...)
}

func (p *Parser) peek() rawToken {
	if p.pos >= len(p.tokens) {
		return rawToken{kind: syntax.KindEOF}
	}
	return p.tokens[p.pos]
}

// peekNonTrivia looks ahead past whitespace/comment tokens without
// consuming anything, returning its index and the token found.
func (p *Parser) peekNonTrivia() (int, rawToken) {
	i := p.pos
	for i < len(p.tokens) && p.tokens[i].kind.IsTrivia() {
		i++
	}
	if i >= len(p.tokens) {
		return i, rawToken{kind: syntax.KindEOF}
	}
	return i, p.tokens[i]
}

func (p *Parser) advance() rawToken {
	t := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *Parser) atEOF() bool { return p.peek().kind == syntax.KindEOF }

// parseContent consumes tokens until stop(kind) is true or EOF, producing
// a flat ordered list of green elements (commands, groups, math, loose
// tokens). This is the workhorse shared by the root, curly groups, bracket
// groups, and environment bodies.
func (p *Parser) parseContent(stop func(syntax.Kind) bool) []syntax.GreenElement {
	var out []syntax.GreenElement
	for {
		tok := p.peek()
		if tok.kind == syntax.KindEOF || stop(tok.kind) {
			break
		}

		switch tok.kind {
		case syntax.KindWhitespace, syntax.KindComment, syntax.KindWord:
			p.advance()
			out = append(out, syntax.NewToken(tok.kind, tok.text))

		case syntax.KindCommandName:
			out = append(out, p.parseCommandOrEnvironment())

		case syntax.KindLCurly:
			out = append(out, p.parseCurlyGroup(ArgSpec{Flavour: FlavourPlain}))

		case syntax.KindLBracket:
			out = append(out, p.parseBracketGroup(ArgSpec{Flavour: FlavourPlain}))

		case syntax.KindMathShift, syntax.KindDollarDollar:
			out = append(out, p.parseMath(tok.kind))

		case syntax.KindRCurly, syntax.KindRBracket:
			// Stray closer not expected by the caller: preserve the byte
			// but flag it as an error.
			p.advance()
			out = append(out, syntax.NewNode(syntax.KindError, syntax.NewToken(tok.kind, tok.text)))

		default:
			p.advance()
			out = append(out, syntax.NewToken(tok.kind, tok.text))
		}
	}
	return out
}

func (p *Parser) parseMath(openKind syntax.Kind) syntax.GreenElement {
	open := p.advance()
	body := p.parseContent(func(k syntax.Kind) bool { return k == openKind })
	children := append([]syntax.GreenElement{syntax.NewToken(open.kind, open.text)}, body...)
	if p.peek().kind == openKind {
		close := p.advance()
		children = append(children, syntax.NewToken(close.kind, close.text))
	}
	return syntax.NewNode(syntax.KindMath, children...)
}

// parseCommandOrEnvironment consumes a CommandName token and, for \begin,
// delegates to environment parsing; otherwise it absorbs the configured
// number of option/argument groups and wraps everything in a Command node.
func (p *Parser) parseCommandOrEnvironment() syntax.GreenElement {
	name := p.advance()
	base := commandNameWithoutSlash(name.text)

	if base == "begin" {
		return p.parseEnvironment(name)
	}

	cmdChildren := []syntax.GreenElement{syntax.NewToken(name.kind, name.text)}

	sig, known := p.table[base]
	if !known {
		return syntax.NewNode(syntax.KindCommand, cmdChildren...)
	}

	for _, arg := range sig.Args {
		idx, next := p.peekNonTrivia()
		if arg.Bracket {
			if next.kind != syntax.KindLBracket {
				if arg.Optional {
					continue
				}
				continue
			}
			cmdChildren = append(cmdChildren, p.consumeTriviaUpTo(idx)...)
			cmdChildren = append(cmdChildren, p.parseBracketGroup(arg))
			continue
		}
		if next.kind != syntax.KindLCurly {
			// Required group missing: stop absorbing further args,
			// matching the "total parser" contract without inventing
			// bytes that were never in the source.
			break
		}
		cmdChildren = append(cmdChildren, p.consumeTriviaUpTo(idx)...)
		cmdChildren = append(cmdChildren, p.parseCurlyGroup(arg))
	}

	return syntax.NewNode(syntax.KindCommand, cmdChildren...)
}

// consumeTriviaUpTo advances the cursor to idx, returning the whitespace/
// comment tokens skipped over so the caller can keep them attached to the
// command node instead of silently dropping bytes (required for the
// lossless round-trip invariant when a command's argument group is preceded
// by whitespace, e.g. `\label {foo}`).
func (p *Parser) consumeTriviaUpTo(idx int) []syntax.GreenElement {
	var trivia []syntax.GreenElement
	for p.pos < idx {
		tok := p.advance()
		trivia = append(trivia, syntax.NewToken(tok.kind, tok.text))
	}
	return trivia
}

func argKindForGroup(flavour ArgFlavour) syntax.Kind {
	switch flavour {
	case FlavourWord:
		return syntax.KindCurlyGroupWord
	case FlavourWordList:
		return syntax.KindCurlyGroupWordList
	case FlavourKeyValue:
		return syntax.KindCurlyGroupKeyValue
	case FlavourCommandOnly:
		return syntax.KindCurlyGroupCommand
	default:
		return syntax.KindCurlyGroup
	}
}

func (p *Parser) parseCurlyGroup(arg ArgSpec) syntax.GreenElement {
	open := p.advance() // LCurly
	kind := argKindForGroup(arg.Flavour)

	var body []syntax.GreenElement
	if arg.Flavour == FlavourKeyValue {
		body = p.parseKeyValueBody()
	} else {
		body = p.parseContent(func(k syntax.Kind) bool { return k == syntax.KindRCurly })
	}

	children := append([]syntax.GreenElement{syntax.NewToken(open.kind, open.text)}, body...)
	if p.peek().kind == syntax.KindRCurly {
		close := p.advance()
		children = append(children, syntax.NewToken(close.kind, close.text))
	}
	// Unclosed group: no RCurly child present, detectable by diagnostics
	// scanning for groups whose last child isn't a closer.
	return syntax.NewNode(kind, children...)
}

func (p *Parser) parseBracketGroup(arg ArgSpec) syntax.GreenElement {
	open := p.advance() // LBracket
	kind := syntax.KindBrackGroup
	if arg.Flavour == FlavourKeyValue {
		kind = syntax.KindBrackGroupKeyValue
	} else if arg.Flavour == FlavourWord {
		kind = syntax.KindBrackGroupWord
	}

	var body []syntax.GreenElement
	if arg.Flavour == FlavourKeyValue {
		body = p.parseKeyValueBody()
	} else {
		body = p.parseContent(func(k syntax.Kind) bool { return k == syntax.KindRBracket })
	}

	children := append([]syntax.GreenElement{syntax.NewToken(open.kind, open.text)}, body...)
	if p.peek().kind == syntax.KindRBracket {
		close := p.advance()
		children = append(children, syntax.NewToken(close.kind, close.text))
	}
	return syntax.NewNode(kind, children...)
}

// parseKeyValueBody parses `key = value, key2 = value2, ...` inside a
// curly or bracket group already opened by the caller.
func (p *Parser) parseKeyValueBody() []syntax.GreenElement {
	var pairs []syntax.GreenElement
	for {
		tok := p.peek()
		if tok.kind == syntax.KindRCurly || tok.kind == syntax.KindRBracket || tok.kind == syntax.KindEOF {
			break
		}
		if tok.kind == syntax.KindComma {
			p.advance()
			pairs = append(pairs, syntax.NewToken(tok.kind, tok.text))
			continue
		}
		pairs = append(pairs, p.parseKeyValuePair())
	}
	return []syntax.GreenElement{syntax.NewNode(syntax.KindKeyValueBody, pairs...)}
}

func (p *Parser) parseKeyValuePair() syntax.GreenElement {
	keyParts := p.parseContent(func(k syntax.Kind) bool {
		return k == syntax.KindComma || k == syntax.KindRCurly || k == syntax.KindRBracket
	})
	// parseContent above also handles '=' as a generic token if we don't
	// stop on it; split it out so key/value are distinguishable.
	var key, value []syntax.GreenElement
	seenEquals := false
	for _, e := range keyParts {
		if tok, ok := e.(*syntax.GreenToken); ok && tok.Kind == syntax.KindEquals {
			seenEquals = true
			value = append(value, e)
			continue
		}
		if seenEquals {
			value = append(value, e)
		} else {
			key = append(key, e)
		}
	}
	children := append([]syntax.GreenElement{}, key...)
	children = append(children, value...)
	return syntax.NewNode(syntax.KindKeyValuePair, children...)
}

// parseEnvironment handles \begin{name} ... \end{name}, including the
// verbatim-environment special case.
func (p *Parser) parseEnvironment(beginTok rawToken) syntax.GreenElement {
	children := []syntax.GreenElement{syntax.NewToken(beginTok.kind, beginTok.text)}

	_, next := p.peekNonTrivia()
	if next.kind != syntax.KindLCurly {
		return syntax.NewNode(syntax.KindBeginEnvironment, children...)
	}
	p.skipTriviaInto(&children)
	nameGroup := p.parseCurlyGroup(ArgSpec{Flavour: FlavourWord})
	envName := firstWordText(nameGroup)
	children = append(children, nameGroup)
	beginNode := syntax.NewNode(syntax.KindBeginEnvironment, children...)

	var body []syntax.GreenElement
	if p.verbatim[envName] {
		body = []syntax.GreenElement{p.parseVerbatimBody(envName)}
	} else {
		body = p.parseEnvironmentBody(envName)
	}

	envChildren := append([]syntax.GreenElement{beginNode}, body...)

	if endNode, ok := p.tryParseEnd(); ok {
		envChildren = append(envChildren, endNode)
	}
	return syntax.NewNode(syntax.KindEnvironment, envChildren...)
}

// parseEnvironmentBody parses content until an \end command is seen
// (regardless of its argument), leaving the \end token unconsumed.
func (p *Parser) parseEnvironmentBody(envName string) []syntax.GreenElement {
	var out []syntax.GreenElement
	for {
		tok := p.peek()
		if tok.kind == syntax.KindEOF {
			break
		}
		if tok.kind == syntax.KindCommandName && commandNameWithoutSlash(tok.text) == "end" {
			break
		}
		switch tok.kind {
		case syntax.KindWhitespace, syntax.KindComment, syntax.KindWord:
			p.advance()
			out = append(out, syntax.NewToken(tok.kind, tok.text))
		case syntax.KindCommandName:
			out = append(out, p.parseCommandOrEnvironment())
		case syntax.KindLCurly:
			out = append(out, p.parseCurlyGroup(ArgSpec{Flavour: FlavourPlain}))
		case syntax.KindLBracket:
			out = append(out, p.parseBracketGroup(ArgSpec{Flavour: FlavourPlain}))
		case syntax.KindMathShift, syntax.KindDollarDollar:
			out = append(out, p.parseMath(tok.kind))
		case syntax.KindRCurly, syntax.KindRBracket:
			p.advance()
			out = append(out, syntax.NewNode(syntax.KindError, syntax.NewToken(tok.kind, tok.text)))
		default:
			p.advance()
			out = append(out, syntax.NewToken(tok.kind, tok.text))
		}
	}
	return out
}

func (p *Parser) tryParseEnd() (syntax.GreenElement, bool) {
	if p.peek().kind != syntax.KindCommandName || commandNameWithoutSlash(p.peek().text) != "end" {
		return nil, false
	}
	endTok := p.advance()
	children := []syntax.GreenElement{syntax.NewToken(endTok.kind, endTok.text)}
	_, next := p.peekNonTrivia()
	if next.kind == syntax.KindLCurly {
		p.skipTriviaInto(&children)
		children = append(children, p.parseCurlyGroup(ArgSpec{Flavour: FlavourWord}))
	}
	return syntax.NewNode(syntax.KindEndEnvironment, children...), true
}

// parseVerbatimBody lexes raw bytes opaquely until the literal text
// `\end{name}` is found, with no command recognition in between.
func (p *Parser) parseVerbatimBody(envName string) syntax.GreenElement {
	start := p.pos
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		if tok.kind == syntax.KindCommandName && commandNameWithoutSlash(tok.text) == "end" {
			save := p.pos
			p.pos++
			_, next := p.peekNonTrivia()
			if next.kind == syntax.KindLCurly {
				idx := p.pos
				for idx < len(p.tokens) && p.tokens[idx].kind.IsTrivia() {
					idx++
				}
				// idx now at LCurly
				if name, ok := peekGroupWord(p.tokens, idx); ok && name == envName {
					p.pos = save
					break
				}
			}
			p.pos = save + 1
			continue
		}
		if tok.kind == syntax.KindEOF {
			break
		}
		p.pos++
	}
	var sb []byte
	for _, tok := range p.tokens[start:p.pos] {
		sb = append(sb, tok.text...)
	}
	return syntax.NewToken(syntax.KindVerbatimEnvironmentBody, string(sb))
}

func peekGroupWord(tokens []rawToken, lcurlyIdx int) (string, bool) {
	if lcurlyIdx >= len(tokens) || tokens[lcurlyIdx].kind != syntax.KindLCurly {
		return "", false
	}
	i := lcurlyIdx + 1
	for i < len(tokens) && tokens[i].kind.IsTrivia() {
		i++
	}
	if i < len(tokens) && tokens[i].kind == syntax.KindWord {
		return tokens[i].text, true
	}
	return "", false
}

func (p *Parser) skipTriviaInto(children *[]syntax.GreenElement) {
	for p.peek().kind.IsTrivia() {
		tok := p.advance()
		*children = append(*children, syntax.NewToken(tok.kind, tok.text))
	}
}

func firstWordText(e syntax.GreenElement) string {
	node, ok := e.(*syntax.GreenNode)
	if !ok {
		return ""
	}
	for _, c := range node.Children {
		if tok, ok := c.(*syntax.GreenToken); ok && tok.Kind == syntax.KindWord {
			return tok.Text
		}
	}
	return ""
}
