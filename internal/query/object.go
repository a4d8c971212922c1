// Package query implements the cursor-sensitive query layer (C8): cursor
// context, the Object abstraction unifying labels/citations/bib entries,
// completion, rename, folding, semantic tokens, symbols, and
// definition/references, each evaluated against a document's project.
package query

import (
	"texlab-go/internal/graph"
	"texlab-go/internal/project"
	"texlab-go/internal/semantic"
	"texlab-go/internal/syntax"
	"texlab-go/internal/workspace"
)

// ObjectKind distinguishes a defining occurrence from a referencing one.
type ObjectKind int

const (
	ObjectDefinition ObjectKind = iota
	ObjectReference
)

// ObjectCategory names the three families the Object abstraction unifies.
type ObjectCategory int

const (
	ObjectLabel ObjectCategory = iota
	ObjectCitation
	ObjectBibEntry
)

// Object is the unified view of a Label, Citation, or BibEntry occurrence
// that every cursor-sensitive query (completion, rename, definition,
// references) operates on, so those queries don't each special-case the
// three source types.
type Object struct {
	Category  ObjectCategory
	Kind      ObjectKind
	Name      string
	NameRange syntax.Range
	FullRange syntax.Range
	DocURI    string
}

// CollectObjects gathers every Label/Citation/BibEntry occurrence across a
// project's documents, in project order then document order.
func CollectObjects(proj *project.Project) []Object {
	var out []Object
	for _, doc := range proj.Documents {
		if doc.Tex != nil {
			for _, l := range doc.Tex.Summary.Labels {
				kind := ObjectReference
				if l.Kind == semantic.LabelDefinition {
					kind = ObjectDefinition
				}
				out = append(out, Object{
					Category: ObjectLabel, Kind: kind,
					Name: l.Name.Text, NameRange: l.Name.Range, FullRange: l.FullRange,
					DocURI: doc.URI,
				})
			}
			for _, c := range doc.Tex.Summary.Citations {
				out = append(out, Object{
					Category: ObjectCitation, Kind: ObjectReference,
					Name: c.Name.Text, NameRange: c.Name.Range, FullRange: c.FullRange,
					DocURI: doc.URI,
				})
			}
		}
		if doc.Bib != nil {
			for _, e := range doc.Bib.Index.Entries {
				out = append(out, Object{
					Category: ObjectBibEntry, Kind: ObjectDefinition,
					Name: e.Key.Text, NameRange: e.Key.Range, FullRange: e.FullRange,
					DocURI: doc.URI,
				})
			}
		}
	}
	return out
}

// Mode selects whether ObjectAtCursor matches against an object's name
// range only, or falls back to its full range.
type Mode int

const (
	ModeName Mode = iota
	ModeFull
)

// ObjectAtCursor returns the first object whose NameRange contains offset;
// in ModeFull it falls back to FullRange when no NameRange matches.
func ObjectAtCursor(objects []Object, offset int, mode Mode) (Object, bool) {
	for _, o := range objects {
		if o.NameRange.Contains(offset) {
			return o, true
		}
	}
	if mode == ModeFull {
		for _, o := range objects {
			if o.FullRange.Contains(offset) {
				return o, true
			}
		}
	}
	return Object{}, false
}

// ProjectFor is a convenience wrapper around project.ForDocument kept here
// so callers in this package don't need to import internal/graph directly
// for the common case.
func ProjectFor(g *graph.Graph, snap *workspace.Snapshot, doc *workspace.Document) *project.Project {
	return project.ForDocument(g, snap, doc)
}
