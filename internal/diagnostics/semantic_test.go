package diagnostics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texlab-go/internal/config"
	"texlab-go/internal/graph"
	"texlab-go/internal/workspace"
)

func buildWorkspace(t *testing.T, files map[string]string) (*workspace.Store, *graph.Graph) {
	t.Helper()
	s := workspace.NewStore(config.DefaultConfig())
	for path, text := range files {
		lang, ok := workspace.LanguageFromPath(path)
		require.True(t, ok, "unrecognised fixture path %q", path)
		s.Open(workspace.URIFromPath(path), text, lang, workspace.OwnerClient)
	}
	snap := s.Snapshot()
	inStore := func(uri string) bool {
		_, ok := snap.Lookup(uri)
		return ok
	}
	g := graph.Build(snap, func(d *workspace.Document) string { return d.Directory }, nil, nil, inStore)
	return s, g
}

func textRange(t *testing.T, text, needle string, d Diagnostic) {
	t.Helper()
	assert.Equal(t, needle, text[d.Range.Start:d.Range.End])
}

// Mirrors the undefined-citation scenario: a \cite with no matching
// entry anywhere in the project.
func TestUndefinedCitationDiagnostic(t *testing.T) {
	text := "\\cite{foo}"
	s, g := buildWorkspace(t, map[string]string{"/proj/main.tex": text})

	diags := CitationDiagnostics(s.Snapshot(), g)
	uri := workspace.URIFromPath("/proj/main.tex")
	require.Len(t, diags[uri], 1)
	assert.Equal(t, KindUndefinedCitation, diags[uri][0].Kind)
	textRange(t, text, "foo", diags[uri][0])
}

func TestCitationDefinedInLinkedBibIsNotFlagged(t *testing.T) {
	s, g := buildWorkspace(t, map[string]string{
		"/proj/main.tex": "\\addbibresource{refs.bib}\\cite{foo}",
		"/proj/refs.bib": "@article{foo, bar = {baz}}",
	})
	diags := CitationDiagnostics(s.Snapshot(), g)
	assert.Empty(t, diags[workspace.URIFromPath("/proj/main.tex")])
	assert.Empty(t, diags[workspace.URIFromPath("/proj/refs.bib")])
}

func TestUnusedEntryDiagnostic(t *testing.T) {
	s, g := buildWorkspace(t, map[string]string{
		"/proj/main.tex": "\\addbibresource{refs.bib}",
		"/proj/refs.bib": "@article{ghost, bar = {baz}}",
	})
	uri := workspace.URIFromPath("/proj/refs.bib")
	diags := CitationDiagnostics(s.Snapshot(), g)
	require.Len(t, diags[uri], 1)
	assert.Equal(t, KindUnusedEntry, diags[uri][0].Kind)
}

func TestNociteStarSuppressesUnusedEntries(t *testing.T) {
	s, g := buildWorkspace(t, map[string]string{
		"/proj/main.tex": "\\addbibresource{refs.bib}\\nocite{*}",
		"/proj/refs.bib": "@article{ghost, bar = {baz}}",
	})
	diags := CitationDiagnostics(s.Snapshot(), g)
	assert.Empty(t, diags[workspace.URIFromPath("/proj/refs.bib")])
}

// Mirrors the unused-label scenario: foo is defined but never
// referenced, bar is both defined and referenced.
func TestUnusedLabelDiagnostic(t *testing.T) {
	text := "\\label{foo}\n\\label{bar}\\ref{bar}"
	s, g := buildWorkspace(t, map[string]string{"/proj/main.tex": text})

	uri := workspace.URIFromPath("/proj/main.tex")
	diags := LabelDiagnostics(s.Snapshot(), g)
	require.Len(t, diags[uri], 1)
	assert.Equal(t, KindUnusedLabel, diags[uri][0].Kind)
	textRange(t, text, "foo", diags[uri][0])
}

func TestUndefinedLabelDiagnostic(t *testing.T) {
	text := "\\ref{ghost}"
	s, g := buildWorkspace(t, map[string]string{"/proj/main.tex": text})

	uri := workspace.URIFromPath("/proj/main.tex")
	diags := LabelDiagnostics(s.Snapshot(), g)
	require.Len(t, diags[uri], 1)
	assert.Equal(t, KindUndefinedLabel, diags[uri][0].Kind)
	textRange(t, text, "ghost", diags[uri][0])
}

func TestDuplicateLabelFlagsSecondDefinitionOnly(t *testing.T) {
	text := "\\label{dup}\\ref{dup}\n\\label{dup}"
	s, _ := buildWorkspace(t, map[string]string{"/proj/main.tex": text})

	uri := workspace.URIFromPath("/proj/main.tex")
	diags := DuplicateLabelDiagnostics(s.Snapshot())
	require.Len(t, diags[uri], 1)
	d := diags[uri][0]
	assert.Equal(t, KindDuplicateLabel, d.Kind)
	// The offender is the second occurrence.
	assert.Greater(t, d.Range.Start, strings.Index(text, "\n"))
}

func TestDuplicateEntryFlagsSecondDefinitionOnly(t *testing.T) {
	s, _ := buildWorkspace(t, map[string]string{
		"/proj/refs.bib": "@article{dup, a = {x}}\n@book{dup, b = {y}}",
	})
	uri := workspace.URIFromPath("/proj/refs.bib")
	diags := DuplicateEntryDiagnostics(s.Snapshot())
	require.Len(t, diags[uri], 1)
	assert.Equal(t, KindDuplicateEntry, diags[uri][0].Kind)
}

func TestManagerGetDropsDistroOwnedDocuments(t *testing.T) {
	s := workspace.NewStore(config.DefaultConfig())
	uri := workspace.URIFromPath("/distro/pkg.sty")
	s.Open(uri, "\\ref{ghost}", workspace.LanguageTex, workspace.OwnerDistro)
	snap := s.Snapshot()
	g := graph.Build(snap, func(d *workspace.Document) string { return d.Directory }, nil, nil, func(string) bool { return false })

	m := NewManager()
	for _, doc := range snap.Iter() {
		m.UpdateSyntax(doc)
	}
	results := m.Get(snap, g, s.GetConfig())
	assert.Empty(t, results[uri])
}

func TestManagerFiltersByIgnoredPatterns(t *testing.T) {
	s, g := buildWorkspace(t, map[string]string{"/proj/main.tex": "\\ref{ghost}"})
	cfg := s.GetConfig().Clone()
	cfg.Diagnostics.IgnoredPatterns = []string{"Undefined reference"}
	s.SetConfig(cfg)

	m := NewManager()
	results := m.Get(s.Snapshot(), g, cfg)
	assert.Empty(t, results[workspace.URIFromPath("/proj/main.tex")])
}

func TestManagerCleanupDropsStaleURIs(t *testing.T) {
	s, _ := buildWorkspace(t, map[string]string{"/proj/main.tex": "x}"})
	m := NewManager()
	doc, _ := s.Lookup(workspace.URIFromPath("/proj/main.tex"))
	m.UpdateSyntax(doc)

	s.Delete(doc.URI)
	m.Cleanup(s.Snapshot())

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Empty(t, m.grammar)
}
