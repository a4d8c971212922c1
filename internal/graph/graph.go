// Package graph implements the dependency graph (C5): resolving each TeX
// document's outgoing explicit links (\input, \include, \usepackage, ...)
// to URIs of other documents, and reporting links that resolve to
// nothing.
package graph

import (
	"os"
	"path/filepath"

	"texlab-go/internal/components"
	"texlab-go/internal/distro"
	"texlab-go/internal/semantic"
	"texlab-go/internal/workspace"
)

// Edge is one resolved outgoing link.
type Edge struct {
	TargetURI    string
	ViaLinkIndex int
}

// Graph is the resolved dependency graph for an entire snapshot.
type Graph struct {
	Outgoing map[string][]Edge
	Missing  map[string][]string
}

// Exists reports whether a candidate URI denotes a file the engine should
// treat as resolvable — either already loaded in the store or present on
// disk (the watcher loop, C6, is responsible for eventually loading it).
type Exists func(uri string) bool

// CurrentDir resolves the "current directory" for a document,
// used as one of the three roots a link is tried against. Callers pass in
// project.CurrentDirectory (injected rather than imported directly, so
// this package has no dependency on internal/project and internal/project
// can depend on this one without a cycle).
type CurrentDir func(doc *workspace.Document) string

func suffixesFor(kind semantic.LinkKind) []string {
	switch kind {
	case semantic.LinkPackage:
		return []string{".sty"}
	case semantic.LinkClass:
		return []string{".cls"}
	case semantic.LinkLatex:
		return []string{"", ".tex"}
	case semantic.LinkBibtex:
		return []string{"", ".bib"}
	default:
		return []string{""}
	}
}

// Build computes the dependency graph over every TeX document in snap.
func Build(snap *workspace.Snapshot, currentDir CurrentDir, comp *components.Database, dist distro.Resolver, exists Exists) *Graph {
	if exists == nil {
		exists = DefaultExists(snap)
	}
	if comp == nil {
		comp = components.Empty()
	}
	if dist == nil {
		dist = distro.NullResolver{}
	}

	g := &Graph{Outgoing: map[string][]Edge{}, Missing: map[string][]string{}}

	for _, doc := range snap.Iter() {
		if doc.Tex == nil {
			continue
		}
		curDir := currentDir(doc)
		for i, link := range doc.Tex.Summary.Links {
			target, ok := resolveLink(link, curDir, comp, dist, exists)
			if ok {
				g.Outgoing[doc.URI] = append(g.Outgoing[doc.URI], Edge{TargetURI: target, ViaLinkIndex: i})
				continue
			}
			if isKnownComponent(link, comp, dist) {
				continue
			}
			g.Missing[doc.URI] = append(g.Missing[doc.URI], wouldBeTarget(link, curDir))
		}
	}
	return g
}

// DefaultExists checks the snapshot first, then falls back to a real
// filesystem stat — tests can supply an alternative Exists to stay
// hermetic.
func DefaultExists(snap *workspace.Snapshot) Exists {
	return func(uri string) bool {
		if _, ok := snap.Lookup(uri); ok {
			return true
		}
		_, err := os.Stat(workspace.PathFromURI(uri))
		return err == nil
	}
}

func resolveLink(link semantic.Link, curDir string, comp *components.Database, dist distro.Resolver, exists Exists) (string, bool) {
	roots := candidateRoots(link, curDir)
	for _, suffix := range suffixesFor(link.Kind) {
		name := link.Stem + suffix
		for _, root := range roots {
			candidate := workspace.JoinURI(root, name)
			if exists(candidate) {
				return candidate, true
			}
		}
		if path, ok := dist.Resolve(name); ok {
			return workspace.URIFromPath(path), true
		}
	}
	return "", false
}

func candidateRoots(link semantic.Link, curDir string) []string {
	roots := make([]string, 0, 2)
	if link.WorkingDir != "" {
		roots = append(roots, workspace.JoinURI(curDir, link.WorkingDir))
	}
	roots = append(roots, curDir)
	return roots
}

func wouldBeTarget(link semantic.Link, curDir string) string {
	suffixes := suffixesFor(link.Kind)
	name := link.Stem + suffixes[len(suffixes)-1]
	roots := candidateRoots(link, curDir)
	return workspace.JoinURI(roots[len(roots)-1], name)
}

func isKnownComponent(link semantic.Link, comp *components.Database, dist distro.Resolver) bool {
	if link.Kind != semantic.LinkPackage && link.Kind != semantic.LinkClass {
		return false
	}
	suffix := ".sty"
	if link.Kind == semantic.LinkClass {
		suffix = ".cls"
	}
	name := link.Stem + suffix
	return comp.HasFile(name) || dist.HasComponent(link.Stem)
}

// ImplicitLinks is the resolved {aux, log, pdf} candidate set for one
// document. Only the first existing candidate
// per kind is kept; if none exist the field stays empty.
type ImplicitLinks struct {
	Aux string
	Log string
	Pdf string
}

// ResolveImplicit computes implicit aux/log/pdf URIs for a document stem,
// trying directories in order: same directory; aux
// directory; pdf directory; log directory; configured root directory.
func ResolveImplicit(stem string, sameDir, auxDir, pdfDir, logDir, rootDir string, exists Exists) ImplicitLinks {
	dirs := []string{sameDir}
	for _, d := range []string{auxDir, pdfDir, logDir, rootDir} {
		if d != "" {
			dirs = append(dirs, d)
		}
	}
	find := func(ext string) string {
		for _, dir := range dirs {
			candidate := workspace.JoinURI(dir, stem+ext)
			if exists(candidate) {
				return candidate
			}
		}
		return ""
	}
	return ImplicitLinks{
		Aux: find(".aux"),
		Log: find(".log"),
		Pdf: find(".pdf"),
	}
}

// NormalizePath canonicalises a filesystem path via Clean, so two
// relative spellings of the same file land on the same URI before graph
// insertion.
func NormalizePath(path string) string {
	return filepath.Clean(path)
}
