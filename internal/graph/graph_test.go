package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texlab-go/internal/config"
	"texlab-go/internal/distro"
	"texlab-go/internal/workspace"
)

func sameDir(doc *workspace.Document) string { return doc.Directory }

func TestBuildResolvesInputToExistingDocument(t *testing.T) {
	s := workspace.NewStore(config.DefaultConfig())
	main := s.Open(workspace.URIFromPath("/proj/main.tex"), `\input{chapter}`, workspace.LanguageTex, workspace.OwnerClient)
	s.Open(workspace.URIFromPath("/proj/chapter.tex"), `hello`, workspace.LanguageTex, workspace.OwnerClient)

	g := Build(s.Snapshot(), sameDir, nil, nil, nil)
	edges := g.Outgoing[main.URI]
	require.Len(t, edges, 1)
	assert.Equal(t, workspace.URIFromPath("/proj/chapter.tex"), edges[0].TargetURI)
	assert.Equal(t, 0, edges[0].ViaLinkIndex)
}

func TestBuildReportsMissingLink(t *testing.T) {
	s := workspace.NewStore(config.DefaultConfig())
	main := s.Open(workspace.URIFromPath("/proj/main.tex"), `\input{ghost}`, workspace.LanguageTex, workspace.OwnerClient)

	exists := func(string) bool { return false }
	g := Build(s.Snapshot(), sameDir, nil, nil, exists)
	require.Empty(t, g.Outgoing[main.URI])
	require.Len(t, g.Missing[main.URI], 1)
}

func TestBuildSkipsMissingForKnownComponent(t *testing.T) {
	s := workspace.NewStore(config.DefaultConfig())
	main := s.Open(workspace.URIFromPath("/proj/main.tex"), `\usepackage{amsmath}`, workspace.LanguageTex, workspace.OwnerClient)

	exists := func(string) bool { return false }
	dist := fakeDistro{components: map[string]bool{"amsmath": true}}
	g := Build(s.Snapshot(), sameDir, nil, dist, exists)
	assert.Empty(t, g.Outgoing[main.URI])
	assert.Empty(t, g.Missing[main.URI])
}

type fakeDistro struct {
	components map[string]bool
}

func (f fakeDistro) Resolve(string) (string, bool) { return "", false }
func (f fakeDistro) HasComponent(name string) bool { return f.components[name] }

func TestResolveLinkTriesWorkingDirFirst(t *testing.T) {
	s := workspace.NewStore(config.DefaultConfig())
	main := s.Open(workspace.URIFromPath("/proj/main.tex"), `\import{sub/}{chapter}`, workspace.LanguageTex, workspace.OwnerClient)
	s.Open(workspace.URIFromPath("/proj/sub/chapter.tex"), `hello`, workspace.LanguageTex, workspace.OwnerClient)

	g := Build(s.Snapshot(), sameDir, nil, nil, nil)
	edges := g.Outgoing[main.URI]
	require.Len(t, edges, 1)
	assert.Equal(t, workspace.URIFromPath("/proj/sub/chapter.tex"), edges[0].TargetURI)
}

func TestResolveImplicitPrefersSameDirThenAux(t *testing.T) {
	exists := func(u string) bool {
		return u == workspace.URIFromPath("/proj/build/main.aux")
	}
	links := ResolveImplicit("main", workspace.URIFromPath("/proj"), workspace.URIFromPath("/proj/build"), "", "", "", exists)
	assert.Equal(t, workspace.URIFromPath("/proj/build/main.aux"), links.Aux)
	assert.Empty(t, links.Log)
	assert.Empty(t, links.Pdf)
}

func TestNullResolverAlwaysMisses(t *testing.T) {
	var r distro.Resolver = distro.NullResolver{}
	_, ok := r.Resolve("amsmath.sty")
	assert.False(t, ok)
	assert.False(t, r.HasComponent("amsmath"))
}
