// Package watcher implements filesystem discovery and change watching
// (C6): the fixed-point parent/children discovery loop and the debounced
// fsnotify-based directory watcher that reloads documents when files
// change on disk.
package watcher

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"texlab-go/internal/graph"
	"texlab-go/internal/logging"
	"texlab-go/internal/workspace"
)

// DiscoverOnce runs one pass of the two discovery steps:
// parents (walk ancestor directories, bounded by workspaceRoot, for
// .tex/.latexmkrc/texlabroot siblings) and children (load graph.Missing
// targets with a file:// URI). It reports whether any document was added.
func DiscoverOnce(store *workspace.Store, g *graph.Graph, workspaceRoot string) bool {
	added := false
	if discoverParents(store, workspaceRoot) {
		added = true
	}
	if discoverChildren(store, g) {
		added = true
	}
	return added
}

// DiscoverFixedPoint repeats DiscoverOnce (rebuilding the graph between
// passes) until neither step adds a document. rebuild lets the caller
// plug in graph.Build with its own
// CurrentDir/component/distro wiring.
func DiscoverFixedPoint(store *workspace.Store, workspaceRoot string, rebuild func(*workspace.Snapshot) *graph.Graph) {
	for {
		g := rebuild(store.Snapshot())
		if !DiscoverOnce(store, g, workspaceRoot) {
			return
		}
	}
}

// discoverParents walks each document's ancestor directories, stopping at
// workspaceRoot: the editor's opened folder bounds the climb.
func discoverParents(store *workspace.Store, workspaceRoot string) bool {
	added := false
	snap := store.Snapshot()
	seenDirs := map[string]bool{}
	for _, doc := range snap.Iter() {
		dir := workspace.PathFromURI(doc.Directory)
		for d := dir; ; {
			if seenDirs[d] {
				break
			}
			seenDirs[d] = true
			if workspaceRoot != "" && !workspace.IsAncestorDir(workspaceRoot, d) {
				break
			}
			if hasEstablishedRootAncestor(snap, d) {
				break
			}
			if loadSiblings(store, d) {
				added = true
			}
			if d == workspaceRoot {
				break
			}
			parent := filepath.Dir(d)
			if parent == d {
				break
			}
			d = parent
		}
	}
	return added
}

// hasEstablishedRootAncestor reports whether the directory of a known
// can_be_root document is a strict ancestor of candidateDir, in which case
// the climb skips candidateDir.
func hasEstablishedRootAncestor(snap *workspace.Snapshot, candidateDir string) bool {
	for _, d := range snap.Iter() {
		if d.Tex == nil || !d.Tex.Summary.CanBeRoot {
			continue
		}
		rootDir := workspace.PathFromURI(d.Directory)
		if rootDir == candidateDir {
			continue
		}
		if isStrictAncestor(rootDir, candidateDir) {
			return true
		}
	}
	return false
}

func isStrictAncestor(ancestor, dir string) bool {
	if ancestor == dir {
		return false
	}
	rel, err := filepath.Rel(ancestor, dir)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func loadSiblings(store *workspace.Store, dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	added := false
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		lang, ok := workspace.LanguageFromPath(name)
		if !ok || (lang != workspace.LanguageTex && !lang.IsMarker()) {
			continue
		}
		path := filepath.Join(dir, name)
		if _, alreadyLoaded := store.LookupPath(path); alreadyLoaded {
			continue
		}
		if _, err := store.Load(path, lang, workspace.OwnerServer); err == nil {
			added = true
		}
	}
	return added
}

func discoverChildren(store *workspace.Store, g *graph.Graph) bool {
	if g == nil {
		return false
	}
	added := false
	var uris []string
	for _, missing := range g.Missing {
		uris = append(uris, missing...)
	}
	sort.Strings(uris)
	for _, uri := range uris {
		if strings.HasPrefix(uri, "untitled:") {
			continue
		}
		path := workspace.PathFromURI(uri)
		if _, ok := store.LookupPath(path); ok {
			continue
		}
		lang, ok := workspace.LanguageFromPath(path)
		if !ok {
			lang = workspace.LanguageTex
		}
		if _, err := store.Load(path, lang, workspace.OwnerServer); err == nil {
			added = true
		}
	}
	return added
}

// ReloadCallback is invoked after a debounced batch of filesystem events
// with the set of affected paths.
type ReloadCallback func(paths []string)

// Watcher owns the fsnotify watcher thread: it watches every directory
// passed to Sync (non-recursively) and debounces bursts of events before
// invoking the reload callback.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	onReload ReloadCallback

	mu      sync.Mutex
	watched map[string]bool

	pendingMu sync.Mutex
	pending   map[string]bool
	timer     *time.Timer

	done chan struct{}
}

// New creates a Watcher with the given debounce window and reload callback.
func New(debounce time.Duration, onReload ReloadCallback) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	w := &Watcher{
		fsw:      fsw,
		debounce: debounce,
		onReload: onReload,
		watched:  map[string]bool{},
		pending:  map[string]bool{},
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Sync registers every directory in dirs with the watcher (idempotent);
// directories already watched are left alone. This only ever adds
// watches, on the assumption a workspace's directory set only grows
// during a session.
func (w *Watcher) Sync(dirs []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, dir := range dirs {
		if w.watched[dir] {
			continue
		}
		if err := w.fsw.Add(dir); err == nil {
			w.watched[dir] = true
			logging.Get(logging.CategoryWatcher).Info("watching %s", dir)
		}
	}
}

func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.schedule(ev.Name)
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) schedule(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	w.pending[path] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = map[string]bool{}
	w.pendingMu.Unlock()

	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)
	if w.onReload != nil {
		w.onReload(paths)
	}
}

// Close stops the watcher thread and releases the underlying fsnotify
// watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

// DirectoriesFor collects the set of directories worth watching for a
// snapshot: every document's own directory plus its project's
// aux/log/pdf directories.
func DirectoriesFor(snap *workspace.Snapshot, dirsFor func(*workspace.Document) []string) []string {
	set := map[string]bool{}
	for _, doc := range snap.Iter() {
		set[workspace.PathFromURI(doc.Directory)] = true
		if dirsFor == nil {
			continue
		}
		for _, d := range dirsFor(doc) {
			if d != "" {
				set[d] = true
			}
		}
	}
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// ReloadExternalChange applies an externally-observed change: reread the
// file and treat it like an editor change whose text came from disk,
// only if the content actually differs from the store's copy.
func ReloadExternalChange(store *workspace.Store, path string) {
	lang, ok := workspace.LanguageFromPath(path)
	if !ok {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		// File removed or unreadable: treat as delete.
		if doc, ok := store.LookupPath(path); ok {
			store.Delete(doc.URI)
		}
		return
	}
	uri := workspace.URIFromPath(path)
	if doc, ok := store.Lookup(uri); ok && doc.Text == string(data) {
		return
	}
	store.Open(uri, string(data), lang, owningFor(store, uri))
}

func owningFor(store *workspace.Store, uri string) workspace.Owner {
	if doc, ok := store.Lookup(uri); ok && doc.Owner == workspace.OwnerClient {
		return workspace.OwnerClient
	}
	return workspace.OwnerServer
}
