package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texlab-go/internal/config"
	"texlab-go/internal/graph"
	"texlab-go/internal/workspace"
)

func buildStore(t *testing.T) *workspace.Store {
	t.Helper()
	s := workspace.NewStore(config.DefaultConfig())
	s.Open(workspace.URIFromPath("/proj/main.tex"), `\documentclass{article}\input{chapter}`, workspace.LanguageTex, workspace.OwnerClient)
	s.Open(workspace.URIFromPath("/proj/chapter.tex"), `\section{Intro}\label{sec:intro}`, workspace.LanguageTex, workspace.OwnerClient)
	s.Open(workspace.URIFromPath("/proj/unrelated.tex"), `hello`, workspace.LanguageTex, workspace.OwnerClient)
	return s
}

func TestParentsOfChapterIsMain(t *testing.T) {
	s := buildStore(t)
	g := graph.Build(s.Snapshot(), func(d *workspace.Document) string { return d.Directory }, nil, nil, nil)
	chapter, _ := s.Lookup(workspace.URIFromPath("/proj/chapter.tex"))

	parents := Parents(g, s.Snapshot(), chapter)
	require.Len(t, parents, 1)
	assert.Equal(t, workspace.URIFromPath("/proj/main.tex"), parents[0].URI)
}

func TestParentsOfRootIsEmpty(t *testing.T) {
	s := buildStore(t)
	g := graph.Build(s.Snapshot(), func(d *workspace.Document) string { return d.Directory }, nil, nil, nil)
	main, _ := s.Lookup(workspace.URIFromPath("/proj/main.tex"))

	assert.Empty(t, Parents(g, s.Snapshot(), main))
}

func TestForDocumentIsConnectedAndExcludesUnrelated(t *testing.T) {
	s := buildStore(t)
	g := graph.Build(s.Snapshot(), func(d *workspace.Document) string { return d.Directory }, nil, nil, nil)
	chapter, _ := s.Lookup(workspace.URIFromPath("/proj/chapter.tex"))

	p := ForDocument(g, s.Snapshot(), chapter)
	assert.True(t, p.Contains(workspace.URIFromPath("/proj/main.tex")))
	assert.True(t, p.Contains(workspace.URIFromPath("/proj/chapter.tex")))
	assert.False(t, p.Contains(workspace.URIFromPath("/proj/unrelated.tex")))
}

func TestForDocumentWithNoParentsIsJustItself(t *testing.T) {
	s := buildStore(t)
	g := graph.Build(s.Snapshot(), func(d *workspace.Document) string { return d.Directory }, nil, nil, nil)
	unrelated, _ := s.Lookup(workspace.URIFromPath("/proj/unrelated.tex"))

	p := ForDocument(g, s.Snapshot(), unrelated)
	assert.Len(t, p.Documents, 1)
	assert.Equal(t, unrelated.URI, p.Documents[0].URI)
}

func TestWalkAndFindUsesMarkerDirectory(t *testing.T) {
	fs := &fakeStatDir{
		dirs: map[string]bool{"/proj": true, "/proj/src": true},
		markers: map[string]bool{"/proj": true},
	}
	cfg := config.DefaultConfig()
	dirs := walkAndFind("/proj", "/proj/src", cfg, fs)
	assert.Equal(t, "/proj", dirs.SrcDir)
	assert.Equal(t, "/proj", dirs.AuxDir)
}

func TestWalkAndFindFallsBackToStartDir(t *testing.T) {
	fs := &fakeStatDir{dirs: map[string]bool{"/proj": true, "/proj/src": true}}
	cfg := config.DefaultConfig()
	dirs := walkAndFind("/proj", "/proj/src", cfg, fs)
	assert.Equal(t, "/proj/src", dirs.SrcDir)
}

func TestWalkAndFindUsesOutputDirectoryOverride(t *testing.T) {
	fs := &fakeStatDir{dirs: map[string]bool{"/proj": true}}
	cfg := config.DefaultConfig()
	cfg.Build.OutputDirectory = "build"
	dirs := walkAndFind("/proj", "/proj", cfg, fs)
	assert.Equal(t, "/proj/build", dirs.AuxDir)
	assert.Equal(t, "/proj/build", dirs.PdfDir)
}

func TestWalkAndFindAuxOverrideTakesPriority(t *testing.T) {
	fs := &fakeStatDir{dirs: map[string]bool{"/proj": true}}
	cfg := config.DefaultConfig()
	cfg.Build.OutputDirectory = "build"
	cfg.AuxDirectory = "auxout"
	dirs := walkAndFind("/proj", "/proj", cfg, fs)
	assert.Equal(t, "/proj/auxout", dirs.AuxDir)
	assert.Equal(t, "/proj/build", dirs.PdfDir)
}

type fakeStatDir struct {
	dirs    map[string]bool
	markers map[string]bool
}

func (f *fakeStatDir) HasFile(dir string, names ...string) bool {
	return f.markers[dir]
}
