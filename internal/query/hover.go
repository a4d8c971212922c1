package query

import (
	"texlab-go/internal/components"
	"texlab-go/internal/config"
	"texlab-go/internal/project"
	"texlab-go/internal/semantic"
	"texlab-go/internal/syntax"
	"texlab-go/internal/workspace"
)

// Hover is one hover result: markdown-ish text plus the range it applies
// to.
type Hover struct {
	Text  string
	Range syntax.Range
}

// HoverAt computes hover information for the object under the cursor: a
// rendered label target, a citation preview from its BibTeX entry, a
// package/class description from the component database, or an
// environment's theorem description.
func HoverAt(proj *project.Project, doc *workspace.Document, offset int, comp *components.Database, cfg *config.Config) (Hover, bool) {
	objects := CollectObjects(proj)
	var docObjects []Object
	for _, o := range objects {
		if o.DocURI == doc.URI {
			docObjects = append(docObjects, o)
		}
	}

	if obj, ok := ObjectAtCursor(docObjects, offset, ModeName); ok {
		switch obj.Category {
		case ObjectLabel:
			if r, ok := RenderLabel(proj, obj.Name, cfg); ok {
				return Hover{Text: r.String(), Range: obj.NameRange}, true
			}
			return Hover{Text: obj.Name, Range: obj.NameRange}, true
		case ObjectCitation, ObjectBibEntry:
			if text, ok := citationPreview(proj, obj.Name); ok {
				return Hover{Text: text, Range: obj.NameRange}, true
			}
		}
	}

	if comp != nil && doc.Tex != nil {
		if h, ok := packageHover(doc, offset, comp); ok {
			return h, true
		}
	}

	if word, _, ok := environmentNameAt(doc, offset); ok {
		if desc, ok := theoremDescription(proj, word.Text()); ok {
			return Hover{Text: desc, Range: word.Range()}, true
		}
	}
	return Hover{}, false
}

func citationPreview(proj *project.Project, key string) (string, bool) {
	for _, d := range proj.Documents {
		if d.Bib == nil {
			continue
		}
		for _, e := range d.Bib.Index.Entries {
			if e.Key.Text != key {
				continue
			}
			if preview := BibEntryPreview(e, d.Text); preview != "" {
				return preview, true
			}
			return "@" + e.Type + "{" + key + "}", true
		}
	}
	return "", false
}

// packageHover surfaces component metadata when the cursor sits on a
// package/class stem inside \usepackage/\documentclass.
func packageHover(doc *workspace.Document, offset int, comp *components.Database) (Hover, bool) {
	for _, link := range doc.Tex.Summary.Links {
		if link.Kind != semantic.LinkPackage && link.Kind != semantic.LinkClass {
			continue
		}
		if !link.StemRange.Contains(offset) {
			continue
		}
		meta, ok := comp.ByMetadataName(link.Stem)
		if !ok {
			return Hover{}, false
		}
		text := meta.Caption
		if meta.Description != "" {
			text = meta.Description
		}
		if text == "" {
			text = meta.Name
		}
		return Hover{Text: text, Range: link.StemRange}, true
	}
	return Hover{}, false
}
