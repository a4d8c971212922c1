package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texlab-go/internal/syntax/latex"
)

func defaultCfg() Config {
	return NewConfig(
		[]string{"label"},
		[]string{"ref", "eqref", "cref", "autoref"},
		[]string{"crefrange"},
		[]string{"cite", "citet", "citep", "nocite"},
	)
}

func TestExtractLabelsDefinitionAndReference(t *testing.T) {
	green := latex.Parse(`\label{sec:intro} see \ref{sec:intro}`, latex.Options{})
	s := ExtractTex(green, defaultCfg(), "main")
	require.Len(t, s.Labels, 2)
	assert.Equal(t, LabelDefinition, s.Labels[0].Kind)
	assert.Equal(t, "sec:intro", s.Labels[0].Name.Text)
	assert.Equal(t, LabelReference, s.Labels[1].Kind)
}

func TestExtractCitationsSplitsOnComma(t *testing.T) {
	green := latex.Parse(`\cite{foo,bar, baz}`, latex.Options{})
	s := ExtractTex(green, defaultCfg(), "main")
	require.Len(t, s.Citations, 3)
	assert.Equal(t, "foo", s.Citations[0].Name.Text)
	assert.Equal(t, "bar", s.Citations[1].Name.Text)
	assert.Equal(t, "baz", s.Citations[2].Name.Text)
}

func TestExtractNociteStar(t *testing.T) {
	green := latex.Parse(`\nocite{*}`, latex.Options{})
	s := ExtractTex(green, defaultCfg(), "main")
	require.Len(t, s.Citations, 1)
	assert.Equal(t, "*", s.Citations[0].Name.Text)
}

func TestDeclareMathOperatorDefinesNotUses(t *testing.T) {
	green := latex.Parse(`\DeclareMathOperator{\argmax}{arg\,max}`, latex.Options{})
	s := ExtractTex(green, defaultCfg(), "main")
	assert.True(t, s.CommandDefinitions["argmax"])
	assert.False(t, s.CommandUses["argmax"])
	assert.True(t, s.CommandUses["DeclareMathOperator"])
}

func TestDocumentClassMarksRootAndBuildable(t *testing.T) {
	green := latex.Parse(`\documentclass{article}`, latex.Options{})
	s := ExtractTex(green, defaultCfg(), "main")
	assert.True(t, s.CanBeRoot)
	assert.True(t, s.CanBeBuilt)
}

func TestDocumentClassInsideEnvironmentIsNotRoot(t *testing.T) {
	green := latex.Parse(`\begin{x}\documentclass{article}\end{x}`, latex.Options{})
	s := ExtractTex(green, defaultCfg(), "main")
	assert.False(t, s.CanBeRoot)
}

func TestBeginDocumentMarksBuildable(t *testing.T) {
	green := latex.Parse(`\begin{document}\end{document}`, latex.Options{})
	s := ExtractTex(green, defaultCfg(), "main")
	assert.True(t, s.CanBeBuilt)
	assert.True(t, s.HasDocumentEnvironment)
}

func TestExplicitLinksAndSubfilesFlag(t *testing.T) {
	green := latex.Parse(`\usepackage{subfiles}\input{chapters/intro}`, latex.Options{})
	s := ExtractTex(green, defaultCfg(), "main")
	require.Len(t, s.Links, 2)
	assert.Equal(t, LinkPackage, s.Links[0].Kind)
	assert.Equal(t, "subfiles", s.Links[0].Stem)
	assert.True(t, s.HasSubfilesPackage)
	assert.Equal(t, LinkLatex, s.Links[1].Kind)
	assert.Equal(t, "chapters/intro", s.Links[1].Stem)
}

func TestNewTheoremExtractsNameAndDescription(t *testing.T) {
	green := latex.Parse(`\newtheorem{lemma}{Lemma}`, latex.Options{})
	s := ExtractTex(green, defaultCfg(), "main")
	require.Len(t, s.TheoremEnvironments, 1)
	assert.Equal(t, "lemma", s.TheoremEnvironments[0].Name)
	assert.Equal(t, "Lemma", s.TheoremEnvironments[0].Description)
}

func TestVerbatimBodyNotScannedForLabels(t *testing.T) {
	green := latex.Parse(`\begin{verbatim}\label{ignored}\end{verbatim}`, latex.Options{VerbatimEnvironments: []string{"verbatim"}})
	s := ExtractTex(green, defaultCfg(), "main")
	assert.Empty(t, s.Labels)
}

func TestImplicitLinkStemIsPropagatedVerbatim(t *testing.T) {
	green := latex.Parse(`\relax`, latex.Options{})
	s := ExtractTex(green, defaultCfg(), "chapter1")
	assert.Equal(t, "chapter1", s.ImplicitLinkStem)
}
