package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texlab-go/internal/config"
)

func TestStoreOpenAndLookup(t *testing.T) {
	s := NewStore(config.DefaultConfig())
	uri := URIFromPath("/proj/main.tex")
	doc := s.Open(uri, `\documentclass{article}`, LanguageTex, OwnerClient)
	require.NotNil(t, doc.Tex)
	assert.True(t, doc.Tex.Summary.CanBeRoot)

	got, ok := s.Lookup(uri)
	require.True(t, ok)
	assert.Same(t, doc, got)
}

func TestStoreReplaceIsAtomicAndVersioned(t *testing.T) {
	s := NewStore(config.DefaultConfig())
	uri := URIFromPath("/proj/main.tex")
	first := s.Open(uri, `\label{a}`, LanguageTex, OwnerClient)
	snap1 := s.Snapshot()
	second := s.Open(uri, `\label{b}`, LanguageTex, OwnerClient)

	// The earlier snapshot is untouched (copy-on-write).
	got1, _ := snap1.Lookup(uri)
	assert.Same(t, first, got1)
	assert.Equal(t, 1, first.Version)
	assert.Equal(t, 2, second.Version)

	got2, _ := s.Lookup(uri)
	assert.Same(t, second, got2)
}

func TestStoreLoadMissingFileFails(t *testing.T) {
	s := NewStore(config.DefaultConfig())
	_, err := s.Load("/does/not/exist.tex", LanguageTex, OwnerServer)
	assert.Error(t, err)
	assert.Equal(t, 0, s.Snapshot().Len())
}

func TestStoreLoadReadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.tex")
	require.NoError(t, os.WriteFile(path, []byte(`\label{x}`), 0o644))

	s := NewStore(config.DefaultConfig())
	doc, err := s.Load(path, LanguageTex, OwnerServer)
	require.NoError(t, err)
	assert.Equal(t, OwnerServer, doc.Owner)
	assert.Len(t, doc.Tex.Summary.Labels, 1)
}

func TestStoreDowngradeKeepsServerCopy(t *testing.T) {
	s := NewStore(config.DefaultConfig())
	uri := URIFromPath("/proj/main.tex")
	s.Open(uri, "hello", LanguageTex, OwnerClient)
	s.Downgrade(uri)
	doc, ok := s.Lookup(uri)
	require.True(t, ok)
	assert.Equal(t, OwnerServer, doc.Owner)
	assert.Equal(t, "hello", doc.Text)
}

func TestStoreDelete(t *testing.T) {
	s := NewStore(config.DefaultConfig())
	uri := URIFromPath("/proj/main.tex")
	s.Open(uri, "hello", LanguageTex, OwnerClient)
	s.Delete(uri)
	_, ok := s.Lookup(uri)
	assert.False(t, ok)
}

func TestLanguageFromPath(t *testing.T) {
	cases := map[string]Language{
		"main.tex":     LanguageTex,
		"refs.bib":     LanguageBib,
		"build.log":    LanguageLog,
		"latexmkrc":    LanguageLatexmkrc,
		".latexmkrc":   LanguageLatexmkrc,
		"texlabroot":   LanguageRoot,
		".texlabroot":  LanguageRoot,
		"Tectonic.toml": LanguageTectonic,
	}
	for path, want := range cases {
		got, ok := LanguageFromPath(path)
		assert.True(t, ok, path)
		assert.Equal(t, want, got, path)
	}
	_, ok := LanguageFromPath("README.md")
	assert.False(t, ok)
}
