package query

import (
	"texlab-go/internal/graph"
	"texlab-go/internal/semantic"
	"texlab-go/internal/syntax"
	"texlab-go/internal/workspace"
)

// DocumentLink is one clickable link inside a document: the stem's range
// and the resolved target URI.
type DocumentLink struct {
	Range     syntax.Range
	TargetURI string
}

// DocumentLinks resolves every explicit link of a Tex document through
// the dependency graph, yielding one clickable range per resolved edge.
func DocumentLinks(doc *workspace.Document, g *graph.Graph) []DocumentLink {
	if doc.Tex == nil || g == nil {
		return nil
	}
	var out []DocumentLink
	for _, edge := range g.Outgoing[doc.URI] {
		if edge.ViaLinkIndex >= len(doc.Tex.Summary.Links) {
			continue
		}
		link := doc.Tex.Summary.Links[edge.ViaLinkIndex]
		out = append(out, DocumentLink{Range: link.StemRange, TargetURI: edge.TargetURI})
	}
	return out
}

// HighlightKind distinguishes write (definition) from read (reference)
// highlights, mirroring LSP's DocumentHighlightKind.
type HighlightKind int

const (
	HighlightRead HighlightKind = iota
	HighlightWrite
)

// Highlight is one occurrence of the name under the cursor inside the
// same document.
type Highlight struct {
	Range syntax.Range
	Kind  HighlightKind
}

// Highlights returns every same-document occurrence of the label or
// citation under the cursor.
func Highlights(doc *workspace.Document, offset int) []Highlight {
	objects := documentObjects(doc)
	obj, ok := ObjectAtCursor(objects, offset, ModeName)
	if !ok {
		return nil
	}
	var out []Highlight
	for _, o := range objects {
		if o.Name != obj.Name || !sameFamily(obj.Category, o.Category) {
			continue
		}
		kind := HighlightRead
		if o.Kind == ObjectDefinition {
			kind = HighlightWrite
		}
		out = append(out, Highlight{Range: o.NameRange, Kind: kind})
	}
	return out
}

// documentObjects collects the objects of a single document without
// needing a project (highlights are same-document by definition).
func documentObjects(doc *workspace.Document) []Object {
	var out []Object
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
	return out
}
