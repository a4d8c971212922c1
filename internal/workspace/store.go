package workspace

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"texlab-go/internal/config"
)

// Snapshot is a read-only, point-in-time view of the document store.
// It is safe to share across goroutines
// without locking: once published it is never mutated.
type Snapshot struct {
	docs map[string]*Document
}

// Lookup returns the document for uri, if present.
func (s *Snapshot) Lookup(uri string) (*Document, bool) {
	d, ok := s.docs[uri]
	return d, ok
}

// LookupPath looks up a document by filesystem path rather than raw URI.
func (s *Snapshot) LookupPath(path string) (*Document, bool) {
	return s.Lookup(URIFromPath(path))
}

// Iter returns every document currently in the snapshot, in unspecified
// order (callers that need a stable order apply their own sort, e.g. the
// project ordering in internal/project).
func (s *Snapshot) Iter() []*Document {
	out := make([]*Document, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d)
	}
	return out
}

// Len reports how many documents the snapshot holds.
func (s *Snapshot) Len() int { return len(s.docs) }

// Store is the single source of truth for document existence. All
// mutations are expected to be serialised through one owner (the main
// thread); Snapshot() may be called concurrently
// from any number of readers.
type Store struct {
	mu      sync.Mutex // serialises writers only
	current atomic.Pointer[Snapshot]
	cfg     atomic.Pointer[config.Config]
}

// NewStore creates an empty store with the given initial configuration.
func NewStore(cfg *config.Config) *Store {
	s := &Store{}
	s.current.Store(&Snapshot{docs: map[string]*Document{}})
	s.cfg.Store(cfg)
	return s
}

// Snapshot returns the current read-only view. Cheap: it is just an
// atomic pointer load.
func (s *Store) Snapshot() *Snapshot { return s.current.Load() }

// GetConfig returns the process-wide configuration.
func (s *Store) GetConfig() *config.Config { return s.cfg.Load() }

// SetConfig installs a new configuration. Invalidating stored
// diagnostics is the diagnostic engine's responsibility; this just
// swaps the pointer.
func (s *Store) SetConfig(cfg *config.Config) { s.cfg.Store(cfg) }

func (s *Store) parseOptions() ParseOptions {
	cfg := s.GetConfig()
	return ParseOptions{
		VerbatimEnvironments: cfg.Syntax.VerbatimEnvironments,
		Semantic: semanticConfigFrom(cfg),
	}
}

// replace installs doc into a fresh copy-on-write snapshot.
func (s *Store) replace(doc *Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.current.Load()
	next := make(map[string]*Document, len(old.docs)+1)
	for k, v := range old.docs {
		next[k] = v
	}
	next[doc.URI] = doc
	s.current.Store(&Snapshot{docs: next})
}

// Open inserts or replaces a Document from editor-supplied text.
func (s *Store) Open(uri, text string, lang Language, owner Owner) *Document {
	doc := NewDocument(uri, text, lang, owner, s.nextVersion(uri), s.parseOptions())
	s.replace(doc)
	return doc
}

func (s *Store) nextVersion(uri string) int {
	if d, ok := s.Snapshot().Lookup(uri); ok {
		return d.Version + 1
	}
	return 1
}

// Load reads a file from disk and installs it with the given owner. A
// missing/unreadable file returns an error and
// leaves the store unchanged.
func (s *Store) Load(path string, lang Language, owner Owner) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("workspace: load %s: %w", path, err)
	}
	uri := URIFromPath(path)
	return s.Open(uri, string(data), lang, owner), nil
}

// Downgrade covers the close lifecycle: the caller (the
// dependency-graph-aware layer above this package) decides whether the
// document is still referenced; if so it calls Downgrade to flip ownership
// to Server while keeping the last known text, otherwise it calls Delete.
func (s *Store) Downgrade(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.current.Load()
	doc, ok := old.docs[uri]
	if !ok || doc.Owner != OwnerClient {
		return
	}
	next := make(map[string]*Document, len(old.docs))
	for k, v := range old.docs {
		next[k] = v
	}
	cp := *doc
	cp.Owner = OwnerServer
	next[uri] = &cp
	s.current.Store(&Snapshot{docs: next})
}

// Delete removes a document and its diagnostics are expected to be
// cleared by the diagnostic engine's cleanup pass.
func (s *Store) Delete(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.current.Load()
	if _, ok := old.docs[uri]; !ok {
		return
	}
	next := make(map[string]*Document, len(old.docs))
	for k, v := range old.docs {
		if k != uri {
			next[k] = v
		}
	}
	s.current.Store(&Snapshot{docs: next})
}

// Lookup is a convenience wrapper around Snapshot().Lookup for callers
// that don't need to hold a snapshot across multiple calls.
func (s *Store) Lookup(uri string) (*Document, bool) { return s.Snapshot().Lookup(uri) }

// LookupPath is the path-keyed counterpart of Lookup.
func (s *Store) LookupPath(path string) (*Document, bool) { return s.Snapshot().LookupPath(path) }

// Iter returns every document currently in the store.
func (s *Store) Iter() []*Document { return s.Snapshot().Iter() }
