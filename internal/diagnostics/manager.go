package diagnostics

import (
	"regexp"
	"sort"
	"sync"

	"texlab-go/internal/config"
	"texlab-go/internal/graph"
	"texlab-go/internal/workspace"
)

// Manager owns every diagnostic partition for a workspace and merges them
// on publication. Cross-project semantic
// diagnostics (citations, labels, duplicates) are not cached between
// calls: they are recomputed fresh from the
// current snapshot and graph on every Get, since they are cheap tree
// walks over already-parsed summaries rather than external-process output.
type Manager struct {
	mu sync.Mutex

	grammar  map[string][]Diagnostic            // per Tex/Bib document URI
	chktex   map[string][]Diagnostic            // per document URI, Client-owned only at publish time
	buildLog map[string]map[string][]Diagnostic // log URI -> target URI -> diagnostics
}

// NewManager constructs an empty Manager.
func NewManager() *Manager {
	return &Manager{
		grammar:  map[string][]Diagnostic{},
		chktex:   map[string][]Diagnostic{},
		buildLog: map[string]map[string][]Diagnostic{},
	}
}

// UpdateSyntax recomputes the grammar (syntax) diagnostics for a single
// document, replacing any it previously held.
// Distro-owned documents contribute nothing.
func (m *Manager) UpdateSyntax(doc *workspace.Document) {
	if doc.Owner == workspace.OwnerDistro {
		return
	}
	var diags []Diagnostic
	if doc.Tex != nil {
		diags = append(diags, SyntaxTex(doc.Tex.Green)...)
	}
	if doc.Bib != nil {
		diags = append(diags, SyntaxBib(doc.Bib.Green)...)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(diags) == 0 {
		delete(m.grammar, doc.URI)
		return
	}
	m.grammar[doc.URI] = diags
}

// UpdateBuildLog recomputes the build-log diagnostics contributed by one
// log document. It is its own entry point since recomputing it requires
// the whole snapshot, not just the one document.
func (m *Manager) UpdateBuildLog(snap *workspace.Snapshot, logDoc *workspace.Document) {
	perTarget := map[string][]Diagnostic{}
	for logURI, targets := range BuildLogDiagnostics(snap) {
		if logURI == logDoc.URI {
			perTarget = targets
			break
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(perTarget) == 0 {
		delete(m.buildLog, logDoc.URI)
		return
	}
	m.buildLog[logDoc.URI] = perTarget
}

// UpdateChktex stores the ChkTeX diagnostics for one document.
func (m *Manager) UpdateChktex(uri string, diags []Diagnostic) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(diags) == 0 {
		delete(m.chktex, uri)
		return
	}
	m.chktex[uri] = diags
}

// Cleanup removes entries for URIs no longer in the store.
func (m *Manager) Cleanup(snap *workspace.Snapshot) {
	live := map[string]bool{}
	for _, d := range snap.Iter() {
		live[d.URI] = true
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for uri := range m.grammar {
		if !live[uri] {
			delete(m.grammar, uri)
		}
	}
	for uri := range m.chktex {
		if !live[uri] {
			delete(m.chktex, uri)
		}
	}
	for logURI := range m.buildLog {
		if !live[logURI] {
			delete(m.buildLog, logURI)
		}
	}
}

// Reset drops every stored diagnostic.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grammar = map[string][]Diagnostic{}
	m.chktex = map[string][]Diagnostic{}
	m.buildLog = map[string]map[string][]Diagnostic{}
}

// Get returns the filtered, merged diagnostics for every relevant
// document in the workspace.
func (m *Manager) Get(snap *workspace.Snapshot, g *graph.Graph, cfg *config.Config) map[string][]Diagnostic {
	m.mu.Lock()
	results := map[string][]Diagnostic{}
	for uri, diags := range m.grammar {
		results[uri] = append(results[uri], diags...)
	}
	for _, targets := range m.buildLog {
		for uri, diags := range targets {
			results[uri] = append(results[uri], diags...)
		}
	}
	for uri, diags := range m.chktex {
		if doc, ok := snap.Lookup(uri); ok && doc.Owner == workspace.OwnerClient {
			results[uri] = append(results[uri], diags...)
		}
	}
	m.mu.Unlock()

	for uri, diags := range CitationDiagnostics(snap, g) {
		results[uri] = append(results[uri], diags...)
	}
	for uri, diags := range LabelDiagnostics(snap, g) {
		results[uri] = append(results[uri], diags...)
	}
	for uri, diags := range DuplicateEntryDiagnostics(snap) {
		results[uri] = append(results[uri], diags...)
	}
	for uri, diags := range DuplicateLabelDiagnostics(snap) {
		results[uri] = append(results[uri], diags...)
	}

	allowed, ignored := cfg.Diagnostics.CompiledPatterns()
	final := map[string][]Diagnostic{}
	for uri, diags := range results {
		doc, ok := snap.Lookup(uri)
		if !ok || doc.Owner == workspace.OwnerDistro {
			continue
		}
		kept := filterDiagnostics(diags, allowed, ignored)
		sort.SliceStable(kept, func(i, j int) bool { return kept[i].Range.Start < kept[j].Range.Start })
		final[uri] = kept
	}
	return final
}

// filterDiagnostics applies the two-list regex filter: a message is kept
// iff (allowed is empty or some allowed pattern matches) and no ignored
// pattern matches.
func filterDiagnostics(diags []Diagnostic, allowed, ignored []*regexp.Regexp) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if matchesPattern(d.Message, ignored) {
			continue
		}
		if len(allowed) > 0 && !matchesPattern(d.Message, allowed) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func matchesPattern(message string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(message) {
			return true
		}
	}
	return false
}
