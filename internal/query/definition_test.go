package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mirrors the label-definition-goto scenario: \DeclareMathOperator
// defines \foo, and goto-definition on a later \foo use lands on the
// declaration with the inner \foo as the selection range.
func TestDefinitionOfDeclaredMathOperator(t *testing.T) {
	text := "\\DeclareMathOperator{\\foo}{foo}\n\\foo"
	f := newFixture(t, map[string]string{"/proj/main.tex": text})
	doc := f.doc(t, "/proj/main.tex")
	offset := strings.LastIndex(doc.Text, `\foo`) + 2

	links := Definition(f.project(t, "/proj/main.tex"), doc, offset, f.graph)
	require.Len(t, links, 1)
	l := links[0]
	assert.Equal(t, uriOf("/proj/main.tex"), l.TargetURI)
	assert.Equal(t, "\\DeclareMathOperator{\\foo}{foo}", doc.Text[l.TargetRange.Start:l.TargetRange.End])
	assert.Equal(t, `\foo`, doc.Text[l.TargetSelectionRange.Start:l.TargetSelectionRange.End])
}

// Mirrors the cross-file citation scenario: \cite{foo} resolves to the
// @article entry in the linked bibliography.
func TestDefinitionOfCrossFileCitation(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/proj/foo.tex": "\\addbibresource{baz.bib}\n\\cite{foo}",
		"/proj/baz.bib": "@article{foo, bar = {baz}}",
	})
	doc := f.doc(t, "/proj/foo.tex")
	offset := offsetOf(t, doc, "{foo}", 1)

	links := Definition(f.project(t, "/proj/foo.tex"), doc, offset, f.graph)
	require.Len(t, links, 1)
	l := links[0]
	assert.Equal(t, uriOf("/proj/baz.bib"), l.TargetURI)
	bib := f.doc(t, "/proj/baz.bib")
	assert.Equal(t, "foo", bib.Text[l.TargetSelectionRange.Start:l.TargetSelectionRange.End])
	assert.Equal(t, "@article{foo, bar = {baz}}", bib.Text[l.TargetRange.Start:l.TargetRange.End])
}

func TestDefinitionOfLabelReference(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/proj/main.tex":    "\\documentclass{article}\\input{chapter}\\ref{sec:intro}",
		"/proj/chapter.tex": "\\section{Intro}\\label{sec:intro}",
	})
	doc := f.doc(t, "/proj/main.tex")
	offset := offsetOf(t, doc, "\\ref{sec:intro}", len("\\ref{"))

	links := Definition(f.project(t, "/proj/main.tex"), doc, offset, f.graph)
	require.Len(t, links, 1)
	assert.Equal(t, uriOf("/proj/chapter.tex"), links[0].TargetURI)
}

func TestDefinitionOfIncludeStemIsWholeDocument(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/proj/main.tex":    "\\input{chapter}",
		"/proj/chapter.tex": "contents here",
	})
	doc := f.doc(t, "/proj/main.tex")
	offset := offsetOf(t, doc, "chapter", 3)

	links := Definition(f.project(t, "/proj/main.tex"), doc, offset, f.graph)
	require.Len(t, links, 1)
	l := links[0]
	assert.Equal(t, uriOf("/proj/chapter.tex"), l.TargetURI)
	assert.Equal(t, 0, l.TargetRange.Start)
	assert.Equal(t, len("contents here"), l.TargetRange.End)
}

func TestReferencesOfLabelDefinition(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/proj/main.tex": "\\label{foo}\\ref{foo}\\cref{foo}",
	})
	doc := f.doc(t, "/proj/main.tex")
	offset := offsetOf(t, doc, "{foo}", 1)

	refs := References(f.project(t, "/proj/main.tex"), doc, offset, false)
	assert.Len(t, refs, 2)

	withDef := References(f.project(t, "/proj/main.tex"), doc, offset, true)
	assert.Len(t, withDef, 3)
}

func TestReferencesOnUnknownPositionIsEmpty(t *testing.T) {
	f := newFixture(t, map[string]string{"/proj/main.tex": "nothing here"})
	doc := f.doc(t, "/proj/main.tex")
	assert.Empty(t, References(f.project(t, "/proj/main.tex"), doc, 3, true))
}
