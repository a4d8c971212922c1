package query

import (
	"strings"
	"testing"

	"texlab-go/internal/config"
	"texlab-go/internal/graph"
	"texlab-go/internal/project"
	"texlab-go/internal/workspace"
)

// fixture bundles the store, graph and config a query test needs, built
// from a map of path -> text.
type fixture struct {
	store *workspace.Store
	graph *graph.Graph
	cfg   *config.Config
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()
	cfg := config.DefaultConfig()
	s := workspace.NewStore(cfg)
	for path, text := range files {
		lang, ok := workspace.LanguageFromPath(path)
		if !ok {
			t.Fatalf("unrecognised fixture path %q", path)
		}
		s.Open(workspace.URIFromPath(path), text, lang, workspace.OwnerClient)
	}
	snap := s.Snapshot()
	inStore := func(uri string) bool {
		_, ok := snap.Lookup(uri)
		return ok
	}
	g := graph.Build(snap, func(d *workspace.Document) string { return workspace.PathFromURI(d.Directory) }, nil, nil, inStore)
	return &fixture{store: s, graph: g, cfg: cfg}
}

func (f *fixture) doc(t *testing.T, path string) *workspace.Document {
	t.Helper()
	d, ok := f.store.Lookup(workspace.URIFromPath(path))
	if !ok {
		t.Fatalf("fixture has no document %q", path)
	}
	return d
}

func (f *fixture) project(t *testing.T, path string) *project.Project {
	t.Helper()
	return project.ForDocument(f.graph, f.store.Snapshot(), f.doc(t, path))
}

// offsetOf returns the byte offset of the first occurrence of needle in
// the fixture document's text, plus delta.
func offsetOf(t *testing.T, doc *workspace.Document, needle string, delta int) int {
	t.Helper()
	i := strings.Index(doc.Text, needle)
	if i < 0 {
		t.Fatalf("needle %q not found in %s", needle, doc.URI)
	}
	return i + delta
}

func uriOf(path string) string { return workspace.URIFromPath(path) }
