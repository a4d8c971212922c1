package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderLabelInSection(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/proj/main.tex": "\\section{Introduction}\\label{sec:intro}",
	})
	r, ok := RenderLabel(f.project(t, "/proj/main.tex"), "sec:intro", f.cfg)
	require.True(t, ok)
	assert.Equal(t, LabelTargetSection, r.Kind)
	assert.Equal(t, "Introduction", r.Detail)
}

func TestRenderLabelInFigureUsesCaption(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/proj/main.tex": "\\begin{figure}\\caption{Setup}\\label{fig:setup}\\end{figure}",
	})
	r, ok := RenderLabel(f.project(t, "/proj/main.tex"), "fig:setup", f.cfg)
	require.True(t, ok)
	assert.Equal(t, LabelTargetFloat, r.Kind)
	assert.Equal(t, "Figure: Setup", r.Detail)
}

func TestRenderLabelInTheoremUsesDescription(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/proj/main.tex": "\\newtheorem{lem}{Lemma}\\begin{lem}\\label{lem:main}\\end{lem}",
	})
	r, ok := RenderLabel(f.project(t, "/proj/main.tex"), "lem:main", f.cfg)
	require.True(t, ok)
	assert.Equal(t, LabelTargetTheorem, r.Kind)
	assert.Equal(t, "Lemma", r.Detail)
}

func TestRenderLabelInEquationEnvironment(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/proj/main.tex": "\\begin{equation}\\label{eq:main}\\end{equation}",
	})
	r, ok := RenderLabel(f.project(t, "/proj/main.tex"), "eq:main", f.cfg)
	require.True(t, ok)
	assert.Equal(t, LabelTargetEquation, r.Kind)
}

func TestRenderLabelAttachesAuxNumber(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/proj/main.tex": "\\section{Intro}\\label{sec:intro}",
	})
	doc := f.doc(t, "/proj/main.tex")
	doc.Tex.Summary.LabelNumbers["sec:intro"] = "1.2"

	r, ok := RenderLabel(f.project(t, "/proj/main.tex"), "sec:intro", f.cfg)
	require.True(t, ok)
	assert.Equal(t, "1.2", r.Number)
	assert.Equal(t, "Section 1.2 (Intro)", r.String())
}

func TestRenderUnknownLabelFails(t *testing.T) {
	f := newFixture(t, map[string]string{"/proj/main.tex": "\\ref{ghost}"})
	_, ok := RenderLabel(f.project(t, "/proj/main.tex"), "ghost", f.cfg)
	assert.False(t, ok)
}
