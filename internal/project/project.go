package project

import (
	"sort"

	"texlab-go/internal/graph"
	"texlab-go/internal/workspace"
)

// Project is the connected set of documents a query is evaluated against.
type Project struct {
	Documents []*workspace.Document
}

// Contains reports whether uri is one of the project's documents.
func (p *Project) Contains(uri string) bool {
	for _, d := range p.Documents {
		if d.URI == uri {
			return true
		}
	}
	return false
}

func undirectedNeighbors(g *graph.Graph, uri string) []string {
	var out []string
	for _, e := range g.Outgoing[uri] {
		out = append(out, e.TargetURI)
	}
	for src, edges := range g.Outgoing {
		for _, e := range edges {
			if e.TargetURI == uri {
				out = append(out, src)
			}
		}
	}
	return out
}

// Parents returns D's root-document parents: Tex documents P such that P
// transitively reaches D in the dependency graph, P.CanBeRoot, and D
// itself is not CanBeRoot. The result is
// ordered by the deterministic project ordering (Order), leaves last.
func Parents(g *graph.Graph, snap *workspace.Snapshot, doc *workspace.Document) []*workspace.Document {
	if doc.Tex != nil && doc.Tex.Summary.CanBeRoot {
		return nil
	}
	reachingSet := reverseReachable(g, doc.URI)
	var parents []*workspace.Document
	for uri := range reachingSet {
		if uri == doc.URI {
			continue
		}
		other, ok := snap.Lookup(uri)
		if !ok || other.Tex == nil || !other.Tex.Summary.CanBeRoot {
			continue
		}
		parents = append(parents, other)
	}
	Order(parents)
	return parents
}

// reverseReachable returns every URI with a directed path to target
// (target included), via reverse BFS over explicit outgoing edges.
func reverseReachable(g *graph.Graph, target string) map[string]bool {
	incoming := map[string][]string{}
	for src, edges := range g.Outgoing {
		for _, e := range edges {
			incoming[e.TargetURI] = append(incoming[e.TargetURI], src)
		}
	}
	seen := map[string]bool{target: true}
	queue := []string{target}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, src := range incoming[cur] {
			if !seen[src] {
				seen[src] = true
				queue = append(queue, src)
			}
		}
	}
	return seen
}

// ForDocument computes the Project for doc: the set reachable
// (in either direction) from parents(doc).first(), or from doc itself if
// it has no parents.
func ForDocument(g *graph.Graph, snap *workspace.Snapshot, doc *workspace.Document) *Project {
	parents := Parents(g, snap, doc)
	root := doc.URI
	if len(parents) > 0 {
		root = parents[0].URI
	}
	reachable := undirectedReachable(g, root)
	var docs []*workspace.Document
	for uri := range reachable {
		if d, ok := snap.Lookup(uri); ok {
			docs = append(docs, d)
		}
	}
	Order(docs)
	return &Project{Documents: docs}
}

func undirectedReachable(g *graph.Graph, start string) map[string]bool {
	seen := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range undirectedNeighbors(g, cur) {
			if !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	return seen
}

// Order sorts documents by the stable "project ordering": documents that
// can be a root come first, and URIs order the documents within each of
// the two groups. Dependency edges are not consulted, so the result is not
// a depth-first traversal from the roots; it is a total order that is
// stable across calls for the same document set.
func Order(docs []*workspace.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		ri := docs[i].Tex != nil && docs[i].Tex.Summary.CanBeRoot
		rj := docs[j].Tex != nil && docs[j].Tex.Summary.CanBeRoot
		if ri != rj {
			return ri // roots sort first
		}
		return docs[i].URI < docs[j].URI
	})
}
