package semantic

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"texlab-go/internal/syntax/latex"
)

// The extractor's contract is determinism: identical tree + config always
// yields an identical summary. These compare full summaries structurally
// rather than asserting individual fields.
func TestExtractTexIsDeterministic(t *testing.T) {
	text := `\documentclass{article}
\usepackage{amsmath}
\newtheorem{lemma}{Lemma}
\begin{document}
\section{Intro}\label{sec:intro}
\ref{sec:intro} \cite{knuth,lamport}
\input{chapter}
\end{document}
`
	cfg := NewConfig(
		[]string{"label"},
		[]string{"ref", "eqref", "cref"},
		[]string{"crefrange"},
		[]string{"cite", "nocite"},
	)

	first := ExtractTex(latex.Parse(text, latex.Options{}), cfg, "main")
	second := ExtractTex(latex.Parse(text, latex.Options{}), cfg, "main")

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("summaries differ between runs (-first +second):\n%s", diff)
	}
}

func TestExtractTexFullSummaryShape(t *testing.T) {
	text := `\documentclass{article}\label{sec:a}\ref{sec:a}`
	cfg := NewConfig([]string{"label"}, []string{"ref"}, nil, nil)
	got := ExtractTex(latex.Parse(text, latex.Options{}), cfg, "main")

	want := Summary{
		CommandDefinitions: map[string]bool{},
		CommandUses:        map[string]bool{"documentclass": true, "label": true, "ref": true},
		Environments:       map[string]bool{},
		GraphicsPaths:      map[string]bool{},
		LabelNumbers:       map[string]string{},
		ImplicitLinkStem:   "main",
		CanBeRoot:          true,
		CanBeBuilt:         true,
	}

	// Ranges vary with exact token positions; compare everything except
	// the positional fields, then spot-check the label names.
	opts := []cmp.Option{
		cmpopts.IgnoreFields(Summary{}, "Labels", "Links"),
	}
	if diff := cmp.Diff(want, got, opts...); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
	if len(got.Labels) != 2 || got.Labels[0].Name.Text != "sec:a" {
		t.Fatalf("unexpected labels: %+v", got.Labels)
	}
	if len(got.Links) != 1 || got.Links[0].Kind != LinkClass {
		t.Fatalf("unexpected links: %+v", got.Links)
	}
}
