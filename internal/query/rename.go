package query

import (
	"strings"

	"texlab-go/internal/config"
	"texlab-go/internal/project"
	"texlab-go/internal/semantic"
	"texlab-go/internal/syntax"
	"texlab-go/internal/workspace"
)

// TextEdit is one replacement inside a document, expressed in byte
// offsets; the transport converts to LSP positions on the way out.
type TextEdit struct {
	Range   syntax.Range
	NewText string
}

// PrepareRename returns the name range of the renameable object under the
// cursor: a label, citation key, BibTeX entry key, command, or
// environment name. The boolean is false when
// nothing renameable is there.
func PrepareRename(proj *project.Project, doc *workspace.Document, offset int) (syntax.Range, bool) {
	if obj, ok := objectInDocAt(proj, doc, offset); ok {
		return obj.NameRange, true
	}
	if tok, ok := commandTokenAt(doc, offset); ok {
		r := tok.Range()
		return syntax.Range{Start: r.Start + 1, End: r.End}, true
	}
	if word, _, ok := environmentNameAt(doc, offset); ok {
		return word.Range(), true
	}
	return syntax.Range{}, false
}

// Rename plans the edit set for renaming the object under the cursor to
// newName, across every document of the project. The result maps
// document URI to its edits.
func Rename(proj *project.Project, doc *workspace.Document, offset int, newName string, cfg *config.Config) (map[string][]TextEdit, bool) {
	if obj, ok := objectInDocAt(proj, doc, offset); ok {
		switch obj.Category {
		case ObjectLabel:
			return renameLabel(proj, obj.Name, newName, cfg), true
		case ObjectCitation, ObjectBibEntry:
			return renameCitation(proj, obj.Name, newName), true
		}
	}
	if tok, ok := commandTokenAt(doc, offset); ok {
		name := strings.TrimPrefix(tok.Text(), `\`)
		return renameCommand(proj, name, newName), true
	}
	if word, env, ok := environmentNameAt(doc, offset); ok {
		return renameEnvironmentPair(doc, word.Text(), env, newName), true
	}
	return nil, false
}

// objectInDocAt finds the label/citation/entry object under the cursor in
// the given document.
func objectInDocAt(proj *project.Project, doc *workspace.Document, offset int) (Object, bool) {
	var docObjects []Object
	for _, o := range CollectObjects(proj) {
		if o.DocURI == doc.URI {
			docObjects = append(docObjects, o)
		}
	}
	return ObjectAtCursor(docObjects, offset, ModeName)
}

// commandTokenAt returns the CommandName token under the cursor in a Tex
// document, excluding \begin and \end (those rename the environment, not
// the command).
func commandTokenAt(doc *workspace.Document, offset int) (*syntax.SyntaxNode, bool) {
	if doc.Tex == nil {
		return nil, false
	}
	root := syntax.NewRoot(doc.Tex.Green)
	tok := syntax.TokenAtOffset(root, offset, syntax.BiasLeft)
	if tok == nil || tok.Kind() != syntax.KindCommandName {
		return nil, false
	}
	switch tok.Text() {
	case `\begin`, `\end`:
		return nil, false
	}
	return tok, true
}

// environmentNameAt returns the environment-name word token under the
// cursor inside a \begin{...} or \end{...} group, plus the enclosing
// Environment node.
func environmentNameAt(doc *workspace.Document, offset int) (*syntax.SyntaxNode, *syntax.SyntaxNode, bool) {
	if doc.Tex == nil {
		return nil, nil, false
	}
	root := syntax.NewRoot(doc.Tex.Green)
	tok := syntax.TokenAtOffset(root, offset, syntax.BiasLeft)
	if tok == nil || (tok.Kind() != syntax.KindWord && tok.Kind() != syntax.KindCommandName) {
		// At a token boundary the left token is used only when it is a word
		// or a command name; otherwise the token starting at offset is.
		tok = syntax.TokenAtOffset(root, offset, syntax.BiasRight)
	}
	if tok == nil || tok.Kind() != syntax.KindWord {
		return nil, nil, false
	}
	delim :=syntax.FindAncestor(tok, syntax.KindBeginEnvironment, syntax.KindEndEnvironment)
	if delim == nil {
		return nil, nil, false
	}
	env := syntax.FindAncestor(delim, syntax.KindEnvironment)
	if env == nil {
		return nil, nil, false
	}
	return tok, env, true
}

// renameLabel plans edits covering every definition and reference of the
// label across the project. Prefix conventions (sec:, eq:, ...) are
// preserved only when the existing label carries one: the defining
// command's configured prefix takes priority over any reference command's
// prefix, and no prefix is ever invented for an unprefixed label.
func renameLabel(proj *project.Project, oldName, newName string, cfg *config.Config) map[string][]TextEdit {
	replacement := newName
	if prefix := existingLabelPrefix(proj, oldName, cfg); prefix != "" && !strings.HasPrefix(newName, prefix) {
		replacement = prefix + newName
	}
	edits := map[string][]TextEdit{}
	for _, doc := range proj.Documents {
		if doc.Tex == nil {
			continue
		}
		for _, l := range doc.Tex.Summary.Labels {
			if l.Name.Text == oldName {
				edits[doc.URI] = append(edits[doc.URI], TextEdit{Range: l.Name.Range, NewText: replacement})
			}
		}
	}
	return edits
}

// existingLabelPrefix returns the configured prefix oldName actually
// starts with, if any: the definition command's prefix first, then any
// reference command's.
func existingLabelPrefix(proj *project.Project, oldName string, cfg *config.Config) string {
	tryPrefix := func(table map[string]string, command string) (string, bool) {
		p, ok := table[command]
		if ok && p != "" && strings.HasPrefix(oldName, p) {
			return p, true
		}
		return "", false
	}
	var refPrefix string
	for _, doc := range proj.Documents {
		if doc.Tex == nil {
			continue
		}
		for _, l := range doc.Tex.Summary.Labels {
			if l.Name.Text != oldName {
				continue
			}
			if l.Kind == semantic.LabelDefinition {
				if p, ok := tryPrefix(cfg.Syntax.LabelDefinitionPrefixes, l.OwningCommand); ok {
					return p
				}
			} else if refPrefix == "" {
				if p, ok := tryPrefix(cfg.Syntax.LabelReferencePrefixes, l.OwningCommand); ok {
					refPrefix = p
				}
			}
		}
	}
	return refPrefix
}

// renameCitation plans edits for a citation key: every \cite-family
// reference plus the BibTeX entry key itself.
func renameCitation(proj *project.Project, oldKey, newKey string) map[string][]TextEdit {
	edits := map[string][]TextEdit{}
	for _, doc := range proj.Documents {
		if doc.Tex != nil {
			for _, c := range doc.Tex.Summary.Citations {
				if c.Name.Text == oldKey {
					edits[doc.URI] = append(edits[doc.URI], TextEdit{Range: c.Name.Range, NewText: newKey})
				}
			}
		}
		if doc.Bib != nil {
			for _, e := range doc.Bib.Index.Entries {
				if e.Key.Text == oldKey {
					edits[doc.URI] = append(edits[doc.URI], TextEdit{Range: e.Key.Range, NewText: newKey})
				}
			}
		}
	}
	return edits
}

// renameCommand plans edits for every `\name` occurrence across the
// project; the leading backslash stays in place.
func renameCommand(proj *project.Project, oldName, newName string) map[string][]TextEdit {
	target := `\` + oldName
	edits := map[string][]TextEdit{}
	for _, doc := range proj.Documents {
		if doc.Tex == nil {
			continue
		}
		root := syntax.NewRoot(doc.Tex.Green)
		_ = syntax.Walk(root, func(n *syntax.SyntaxNode, ev syntax.WalkEvent) error {
			if ev != syntax.EventEnter || n.Kind() != syntax.KindCommandName {
				return nil
			}
			if n.Text() == target {
				r := n.Range()
				edits[doc.URI] = append(edits[doc.URI], TextEdit{
					Range:   syntax.Range{Start: r.Start + 1, End: r.End},
					NewText: newName,
				})
			}
			return nil
		})
	}
	return edits
}

// renameEnvironmentPair renames the \begin{...}/\end{...} names of the
// environment pair under the cursor only, leaving other environments of
// the same name untouched.
func renameEnvironmentPair(doc *workspace.Document, oldName string, env *syntax.SyntaxNode, newName string) map[string][]TextEdit {
	var edits []TextEdit
	for _, delimKind := range []syntax.Kind{syntax.KindBeginEnvironment, syntax.KindEndEnvironment} {
		delim := syntax.FirstChildOfKind(env, delimKind)
		if delim == nil {
			continue
		}
		group := syntax.FirstChildOfKind(delim, syntax.KindCurlyGroupWord)
		if group == nil {
			continue
		}
		for _, c := range group.Children() {
			if c.Kind() == syntax.KindWord && c.Text() == oldName {
				edits = append(edits, TextEdit{Range: c.Range(), NewText: newName})
				break
			}
		}
	}
	if len(edits) == 0 {
		return map[string][]TextEdit{}
	}
	return map[string][]TextEdit{doc.URI: edits}
}
