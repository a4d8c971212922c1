package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texlab-go/internal/config"
	"texlab-go/internal/graph"
	"texlab-go/internal/workspace"
)

func TestDiscoverParentsLoadsSiblingTexFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chapter.tex"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.tex"), []byte(`\input{chapter}`), 0o644))

	s := workspace.NewStore(config.DefaultConfig())
	s.Load(filepath.Join(dir, "main.tex"), workspace.LanguageTex, workspace.OwnerClient)

	added := discoverParents(s, dir)
	assert.True(t, added)
	_, ok := s.LookupPath(filepath.Join(dir, "chapter.tex"))
	assert.True(t, ok)
}

func TestDiscoverChildrenLoadsMissingTargets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chapter.tex"), []byte("hello"), 0o644))

	s := workspace.NewStore(config.DefaultConfig())
	main := s.Open(workspace.URIFromPath(filepath.Join(dir, "main.tex")), `\input{chapter}`, workspace.LanguageTex, workspace.OwnerClient)

	exists := func(string) bool { return false } // force a "missing" entry even though the file exists on disk
	g := graph.Build(s.Snapshot(), func(d *workspace.Document) string { return d.Directory }, nil, nil, exists)
	require.NotEmpty(t, g.Missing[main.URI])

	added := discoverChildren(s, g)
	assert.True(t, added)
	_, ok := s.LookupPath(filepath.Join(dir, "chapter.tex"))
	assert.True(t, ok)
}

func TestDiscoverFixedPointStopsWhenStable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.tex"), []byte("hello"), 0o644))

	s := workspace.NewStore(config.DefaultConfig())
	s.Load(filepath.Join(dir, "main.tex"), workspace.LanguageTex, workspace.OwnerClient)

	calls := 0
	DiscoverFixedPoint(s, dir, func(snap *workspace.Snapshot) *graph.Graph {
		calls++
		if calls > 10 {
			t.Fatal("fixed point did not converge")
		}
		return graph.Build(snap, func(d *workspace.Document) string { return d.Directory }, nil, nil, nil)
	})
	assert.GreaterOrEqual(t, calls, 1)
}

func TestWatcherDebouncesBurstsIntoOneReload(t *testing.T) {
	dir := t.TempDir()
	reloads := make(chan []string, 4)
	w, err := New(30*time.Millisecond, func(paths []string) { reloads <- paths })
	require.NoError(t, err)
	defer w.Close()

	w.Sync([]string{dir})

	path := filepath.Join(dir, "a.tex")
	require.NoError(t, os.WriteFile(path, []byte("1"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("2"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("3"), 0o644))

	select {
	case paths := <-reloads:
		assert.NotEmpty(t, paths)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced reload")
	}

	select {
	case extra := <-reloads:
		t.Fatalf("expected a single coalesced reload, got a second one: %v", extra)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestReloadExternalChangeUpdatesTextOnDifference(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.tex")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	s := workspace.NewStore(config.DefaultConfig())
	s.Load(path, workspace.LanguageTex, workspace.OwnerServer)

	require.NoError(t, os.WriteFile(path, []byte("new"), 0o644))
	ReloadExternalChange(s, path)

	doc, ok := s.LookupPath(path)
	require.True(t, ok)
	assert.Equal(t, "new", doc.Text)
}

func TestReloadExternalChangeDeletesOnRemoval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.tex")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	s := workspace.NewStore(config.DefaultConfig())
	s.Load(path, workspace.LanguageTex, workspace.OwnerServer)
	require.NoError(t, os.Remove(path))

	ReloadExternalChange(s, path)
	_, ok := s.LookupPath(path)
	assert.False(t, ok)
}
