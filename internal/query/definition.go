package query

import (
	"strings"

	"texlab-go/internal/graph"
	"texlab-go/internal/project"
	"texlab-go/internal/syntax"
	"texlab-go/internal/workspace"
)

// Location is one result of a definition/reference query, in byte
// offsets.
type Location struct {
	URI   string
	Range syntax.Range
}

// DefinitionLink is one goto-definition result: the origin selection
// span, the target document, the full target range, and the narrower
// selection range inside it.
type DefinitionLink struct {
	OriginRange          syntax.Range
	TargetURI            string
	TargetRange          syntax.Range
	TargetSelectionRange syntax.Range
}

// Definition resolves the cursor to all matching definitions in the
// project: label references to label definitions, citations to BibTeX
// entries, command uses to their defining command, and include stems to
// the whole target document.
func Definition(proj *project.Project, doc *workspace.Document, offset int, g *graph.Graph) []DefinitionLink {
	objects := CollectObjects(proj)
	var docObjects []Object
	for _, o := range objects {
		if o.DocURI == doc.URI {
			docObjects = append(docObjects, o)
		}
	}

	if obj, ok := ObjectAtCursor(docObjects, offset, ModeName); ok {
		var out []DefinitionLink
		for _, def := range objects {
			if def.Kind != ObjectDefinition || def.Name != obj.Name {
				continue
			}
			if !sameFamily(obj.Category, def.Category) {
				continue
			}
			out = append(out, DefinitionLink{
				OriginRange:          obj.NameRange,
				TargetURI:            def.DocURI,
				TargetRange:          def.FullRange,
				TargetSelectionRange: def.NameRange,
			})
		}
		return out
	}

	if link := commandDefinitionAt(proj, doc, offset); link != nil {
		return []DefinitionLink{*link}
	}

	return includeDefinitionAt(proj, doc, offset, g)
}

// sameFamily treats citations and BibTeX entries as one name family: a
// \cite reference's definition is the @entry.
func sameFamily(a, b ObjectCategory) bool {
	if a == b {
		return true
	}
	cite := func(c ObjectCategory) bool { return c == ObjectCitation || c == ObjectBibEntry }
	return cite(a) && cite(b)
}

// commandDefinitionAt resolves a command use under the cursor to its
// defining \newcommand/\DeclareMathOperator across the project.
func commandDefinitionAt(proj *project.Project, doc *workspace.Document, offset int) *DefinitionLink {
	tok, ok := commandTokenAt(doc, offset)
	if !ok {
		return nil
	}
	name := tok.Text()
	for _, other := range proj.Documents {
		if other.Tex == nil {
			continue
		}
		if def := findCommandDefinition(other, name); def != nil {
			def.OriginRange = tok.Range()
			return def
		}
	}
	return nil
}

// findCommandDefinition scans one document for a defining command whose
// CommandOnly argument introduces name (e.g. \DeclareMathOperator{\foo}{foo}).
// TargetRange covers the whole defining command; TargetSelectionRange the
// inner \name.
func findCommandDefinition(doc *workspace.Document, name string) *DefinitionLink {
	root := syntax.NewRoot(doc.Tex.Green)
	var found *DefinitionLink
	_ = syntax.Walk(root, func(n *syntax.SyntaxNode, ev syntax.WalkEvent) error {
		if ev != syntax.EventEnter || found != nil {
			return nil
		}
		if n.Kind() != syntax.KindCurlyGroupCommand {
			return nil
		}
		defining := n.Parent()
		if defining == nil || defining.Kind() != syntax.KindCommand {
			return nil
		}
		inner := firstCommandIn(n)
		if inner == nil || inner.Text() != name {
			return nil
		}
		sel := inner.Range()
		if nameTok := firstTokenOf(inner); nameTok != nil {
			sel = nameTok.Range()
		}
		found = &DefinitionLink{
			TargetURI:            doc.URI,
			TargetRange:          defining.Range(),
			TargetSelectionRange: sel,
		}
		return nil
	})
	return found
}

// firstCommandIn returns the first Command node or CommandName token
// inside a CommandOnly group, as a node whose Text() is `\name`.
func firstCommandIn(group *syntax.SyntaxNode) *syntax.SyntaxNode {
	for _, c := range group.Children() {
		switch c.Kind() {
		case syntax.KindCommand:
			return c
		case syntax.KindCommandName:
			return c
		}
	}
	return nil
}

func firstTokenOf(n *syntax.SyntaxNode) *syntax.SyntaxNode {
	if n.IsToken() {
		return n
	}
	children := n.Children()
	if len(children) == 0 {
		return nil
	}
	return firstTokenOf(children[0])
}

// includeDefinitionAt resolves a cursor over an \include/\input stem to
// the whole target document, via the dependency graph.
func includeDefinitionAt(proj *project.Project, doc *workspace.Document, offset int, g *graph.Graph) []DefinitionLink {
	if doc.Tex == nil || g == nil {
		return nil
	}
	for i, link := range doc.Tex.Summary.Links {
		if !link.StemRange.Contains(offset) {
			continue
		}
		for _, edge := range g.Outgoing[doc.URI] {
			if edge.ViaLinkIndex != i {
				continue
			}
			target, ok := lookupInProject(proj, edge.TargetURI)
			if !ok {
				continue
			}
			full := syntax.Range{Start: 0, End: len(target.Text)}
			return []DefinitionLink{{
				OriginRange:          link.StemRange,
				TargetURI:            target.URI,
				TargetRange:          full,
				TargetSelectionRange: syntax.Range{Start: 0, End: 0},
			}}
		}
	}
	return nil
}

func lookupInProject(proj *project.Project, uri string) (*workspace.Document, bool) {
	for _, d := range proj.Documents {
		if d.URI == uri {
			return d, true
		}
	}
	return nil, false
}

// References returns every occurrence of the name under the cursor across
// the project: for a cursor over a reference, all definitions' references
// are listed; over a definition, all references (plus the definition
// itself when includeDefinition is set).
func References(proj *project.Project, doc *workspace.Document, offset int, includeDefinition bool) []Location {
	objects := CollectObjects(proj)
	var docObjects []Object
	for _, o := range objects {
		if o.DocURI == doc.URI {
			docObjects = append(docObjects, o)
		}
	}
	obj, ok := ObjectAtCursor(docObjects, offset, ModeName)
	if ok {
		var out []Location
		for _, o := range objects {
			if o.Name != obj.Name || !sameFamily(obj.Category, o.Category) {
				continue
			}
			if o.Kind == ObjectDefinition && !includeDefinition {
				continue
			}
			out = append(out, Location{URI: o.DocURI, Range: o.NameRange})
		}
		return out
	}

	if tok, isCmd := commandTokenAt(doc, offset); isCmd {
		return commandReferences(proj, strings.TrimPrefix(tok.Text(), `\`))
	}
	return nil
}

func commandReferences(proj *project.Project, name string) []Location {
	target := `\` + name
	var out []Location
	for _, d := range proj.Documents {
		if d.Tex == nil {
			continue
		}
		root := syntax.NewRoot(d.Tex.Green)
		_ = syntax.Walk(root, func(n *syntax.SyntaxNode, ev syntax.WalkEvent) error {
			if ev != syntax.EventEnter || n.Kind() != syntax.KindCommandName {
				return nil
			}
			if n.Text() == target {
				out = append(out, Location{URI: d.URI, Range: n.Range()})
			}
			return nil
		})
	}
	return out
}
