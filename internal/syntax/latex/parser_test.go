package latex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texlab-go/internal/syntax"
)

func TestParseIsLossless(t *testing.T) {
	samples := []string{
		`\documentclass{article}`,
		`\begin{document}\section{Intro}Hello \cite{foo,bar}\end{document}`,
		`\label{sec:foo} unmatched } brace`,
		`$x^2 + y_1$ and \[ E=mc^2 \]`,
		`\begin{verbatim}\foo{unclosed`,
		`100% not a comment? % actual comment`,
		`\label {sec:foo}`, // whitespace between a command and its argument group
	}
	for _, s := range samples {
		green := Parse(s, Options{VerbatimEnvironments: []string{"verbatim"}})
		assert.Equal(t, s, syntax.Text(green), "lossless mismatch for %q", s)
	}
}

func TestParseCommandArguments(t *testing.T) {
	green := Parse(`\label{sec:foo}`, Options{})
	root := syntax.NewRoot(green)
	cmd := root.Children()[0]
	require.Equal(t, syntax.KindCommand, cmd.Kind())
	group := cmd.Children()[1]
	assert.Equal(t, syntax.KindCurlyGroupWord, group.Kind())
}

func TestParseEnvironmentMatchedNames(t *testing.T) {
	green := Parse(`\begin{itemize}\item a\end{itemize}`, Options{})
	root := syntax.NewRoot(green)
	env := root.Children()[0]
	require.Equal(t, syntax.KindEnvironment, env.Kind())

	var begin, end *syntax.SyntaxNode
	for _, c := range env.Children() {
		switch c.Kind() {
		case syntax.KindBeginEnvironment:
			begin = c
		case syntax.KindEndEnvironment:
			end = c
		}
	}
	require.NotNil(t, begin)
	require.NotNil(t, end)
}

func TestParseUnterminatedEnvironmentHasNoEnd(t *testing.T) {
	green := Parse(`\begin{itemize}\item a`, Options{})
	root := syntax.NewRoot(green)
	env := root.Children()[0]
	require.Equal(t, syntax.KindEnvironment, env.Kind())
	for _, c := range env.Children() {
		assert.NotEqual(t, syntax.KindEndEnvironment, c.Kind())
	}
}

func TestParseVerbatimBodyOpaque(t *testing.T) {
	green := Parse(`\begin{verbatim}\foo{bar}\end{verbatim}`, Options{VerbatimEnvironments: []string{"verbatim"}})
	root := syntax.NewRoot(green)
	env := root.Children()[0]
	var sawCommand bool
	_ = syntax.Walk(env, func(n *syntax.SyntaxNode, ev syntax.WalkEvent) error {
		if ev == syntax.EventEnter && n.Kind() == syntax.KindCommand {
			sawCommand = true
		}
		return nil
	})
	assert.False(t, sawCommand, "verbatim body must not be parsed as commands")
}

func TestDeclareMathOperatorCommandOnlyArg(t *testing.T) {
	green := Parse(`\DeclareMathOperator{\foo}{foo}`, Options{})
	root := syntax.NewRoot(green)
	cmd := root.Children()[0]
	require.Equal(t, syntax.KindCommand, cmd.Kind())
	children := cmd.Children()
	require.GreaterOrEqual(t, len(children), 2)
	assert.Equal(t, syntax.KindCurlyGroupCommand, children[1].Kind())
}

func TestStrayClosingBraceBecomesError(t *testing.T) {
	green := Parse(`hello } world`, Options{})
	root := syntax.NewRoot(green)
	var sawError bool
	for _, c := range root.Children() {
		if c.Kind() == syntax.KindError {
			sawError = true
		}
	}
	assert.True(t, sawError)
}
