package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteCitationAcrossFiles(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/proj/main.tex": "\\addbibresource{refs.bib}\n\\cite{}",
		"/proj/refs.bib": "@article{knuth1984, author = {Knuth}, title = {Literate Programming}, year = {1984}}",
	})
	doc := f.doc(t, "/proj/main.tex")
	offset := offsetOf(t, doc, `\cite{`, len(`\cite{`))

	items := Complete(f.project(t, "/proj/main.tex"), doc, offset, nil, nil, f.cfg)
	require.Len(t, items, 1)
	assert.Equal(t, "knuth1984", items[0].Label)
	assert.Equal(t, CompleteCitation, items[0].Kind)
	assert.Contains(t, items[0].Detail, "Knuth")
}

func TestCompleteLabelWithPrefixFilters(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/proj/main.tex": "\\label{sec:intro}\\label{fig:setup}\n\\ref{se}",
	})
	doc := f.doc(t, "/proj/main.tex")
	offset := offsetOf(t, doc, `\ref{se`, len(`\ref{se`))

	items := Complete(f.project(t, "/proj/main.tex"), doc, offset, nil, nil, f.cfg)
	require.NotEmpty(t, items)
	assert.Equal(t, "sec:intro", items[0].Label)
	// The replacement range covers the typed prefix.
	assert.Equal(t, "se", doc.Text[items[0].Range.Start:items[0].Range.End])
}

func TestCompleteCommandFromUserDefinitions(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/proj/main.tex": "\\newcommand{\\mycmd}{x}\n\\myc",
	})
	doc := f.doc(t, "/proj/main.tex")
	offset := offsetOf(t, doc, "\n\\myc", len("\n\\myc"))

	items := Complete(f.project(t, "/proj/main.tex"), doc, offset, nil, nil, f.cfg)
	require.NotEmpty(t, items)
	labels := map[string]bool{}
	for _, it := range items {
		assert.Equal(t, CompleteCommand, it.Kind)
		labels[it.Label] = true
	}
	assert.True(t, labels["mycmd"])
}

func TestCompleteEnvironmentNames(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/proj/main.tex": "\\newtheorem{lemma}{Lemma}\n\\begin{lem}",
	})
	doc := f.doc(t, "/proj/main.tex")
	offset := offsetOf(t, doc, `\begin{lem`, len(`\begin{lem`))

	items := Complete(f.project(t, "/proj/main.tex"), doc, offset, nil, nil, f.cfg)
	require.NotEmpty(t, items)
	labels := map[string]bool{}
	for _, it := range items {
		assert.Equal(t, CompleteEnvironment, it.Kind)
		labels[it.Label] = true
	}
	assert.True(t, labels["lemma"])
}

func TestCompleteAtStartOfEmptyDocumentIsEmpty(t *testing.T) {
	f := newFixture(t, map[string]string{"/proj/empty.tex": ""})
	doc := f.doc(t, "/proj/empty.tex")

	items := Complete(f.project(t, "/proj/empty.tex"), doc, 0, nil, nil, f.cfg)
	assert.Empty(t, items)
}

func TestCompleteIncludePathOffersWorkspaceStems(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/proj/main.tex":    "\\documentclass{article}\\input{}",
		"/proj/chapter.tex": "hello",
	})
	doc := f.doc(t, "/proj/main.tex")
	offset := offsetOf(t, doc, `\input{`, len(`\input{`))

	items := Complete(f.project(t, "/proj/main.tex"), doc, offset, nil, nil, f.cfg)
	labels := map[string]bool{}
	for _, it := range items {
		labels[it.Label] = true
	}
	assert.True(t, labels["chapter"])
}

func TestCompleteResultsAreSortedAndStable(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/proj/main.tex": "\\label{b}\\label{a}\n\\ref{}",
	})
	doc := f.doc(t, "/proj/main.tex")
	offset := offsetOf(t, doc, `\ref{`, len(`\ref{`))

	items := Complete(f.project(t, "/proj/main.tex"), doc, offset, nil, nil, f.cfg)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].Label)
	assert.Equal(t, "b", items[1].Label)
}

func TestCompleteUnknownPositionIsEmptyNotError(t *testing.T) {
	f := newFixture(t, map[string]string{"/proj/main.tex": "plain words only"})
	doc := f.doc(t, "/proj/main.tex")
	items := Complete(f.project(t, "/proj/main.tex"), doc, 5, nil, nil, f.cfg)
	assert.Empty(t, items)
}
