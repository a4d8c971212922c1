package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texlab-go/internal/syntax"
)

func fullRange(text string) syntax.Range { return syntax.Range{Start: 0, End: len(text)} }

func TestSemanticTokensEncodeLabelsWithModifiers(t *testing.T) {
	text := "\\label{used}\\ref{used}\n\\label{unused}\\ref{ghost}\n"
	f := newFixture(t, map[string]string{"/proj/main.tex": text})
	doc := f.doc(t, "/proj/main.tex")

	data := SemanticTokens(f.project(t, "/proj/main.tex"), doc, fullRange(text))
	// Four label occurrences, five uints each.
	require.Len(t, data, 20)

	// First token: \label{used} on line 0, starting at the name.
	assert.Equal(t, uint32(0), data[0])               // delta line
	assert.Equal(t, uint32(len(`\label{`)), data[1])  // delta start
	assert.Equal(t, uint32(len("used")), data[2])     // length
	assert.Equal(t, TokenTypeLabel, data[3])
	assert.Equal(t, uint32(0), data[4]) // defined and referenced

	// Third token: \label{unused} on line 1 — delta line resets start.
	assert.Equal(t, uint32(1), data[10])
	assert.Equal(t, ModifierUnused, data[14])

	// Fourth token: \ref{ghost} has no definition but is itself a
	// reference, so only the undefined modifier applies.
	assert.Equal(t, ModifierUndefined, data[19])
}

func TestSemanticTokensRespectViewport(t *testing.T) {
	text := "\\label{a}\n\\label{b}\n"
	f := newFixture(t, map[string]string{"/proj/main.tex": text})
	doc := f.doc(t, "/proj/main.tex")

	viewport := syntax.Range{Start: 0, End: len("\\label{a}\n")}
	data := SemanticTokens(f.project(t, "/proj/main.tex"), doc, viewport)
	require.Len(t, data, 5)
}

func TestSemanticTokensOnBibDocumentIsEmpty(t *testing.T) {
	f := newFixture(t, map[string]string{"/proj/refs.bib": "@article{a, b = {c}}"})
	doc := f.doc(t, "/proj/refs.bib")
	assert.Empty(t, SemanticTokens(f.project(t, "/proj/refs.bib"), doc, fullRange(doc.Text)))
}
