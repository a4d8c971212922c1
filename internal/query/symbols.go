package query

import (
	"sort"
	"strings"

	"texlab-go/internal/config"
	"texlab-go/internal/project"
	"texlab-go/internal/syntax"
	"texlab-go/internal/syntax/latex"
	"texlab-go/internal/workspace"
)

// SymbolKind is the closed symbol taxonomy the scanner produces.
type SymbolKind int

const (
	SymbolSection SymbolKind = iota
	SymbolFloat
	SymbolEquation
	SymbolTheorem
	SymbolEnumItem
	SymbolEntry
	SymbolString
	SymbolField
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolSection:
		return "section"
	case SymbolFloat:
		return "float"
	case SymbolEquation:
		return "equation"
	case SymbolTheorem:
		return "theorem"
	case SymbolEnumItem:
		return "item"
	case SymbolEntry:
		return "entry"
	case SymbolString:
		return "string"
	case SymbolField:
		return "field"
	default:
		return "symbol"
	}
}

// Symbol is one document symbol, hierarchical for document queries and
// flattened for workspace queries.
type Symbol struct {
	Name           string
	Detail         string
	Kind           SymbolKind
	Range          syntax.Range
	SelectionRange syntax.Range
	Children       []*Symbol
}

// DocumentSymbols builds the hierarchical symbol tree for one document:
// sections nested by level, floats, equations, theorems, enum items, and
// BibTeX entries/strings/fields.
func DocumentSymbols(proj *project.Project, doc *workspace.Document, cfg *config.Config) []*Symbol {
	switch {
	case doc.Tex != nil:
		return texSymbols(proj, doc, cfg)
	case doc.Bib != nil:
		return bibSymbols(doc)
	default:
		return nil
	}
}

type symbolBuilder struct {
	roots []*Symbol
	// stack holds the currently open sections, outermost first.
	stack []*openSection
}

type openSection struct {
	symbol *Symbol
	level  int
}

func (b *symbolBuilder) add(s *Symbol) {
	if len(b.stack) > 0 {
		top := b.stack[len(b.stack)-1].symbol
		top.Children = append(top.Children, s)
		return
	}
	b.roots = append(b.roots, s)
}

// openSectionAt closes every open section of the same or higher level at
// offset, then pushes the new one.
func (b *symbolBuilder) openSectionAt(s *Symbol, level, offset int) {
	b.closeSections(level, offset)
	b.add(s)
	b.stack = append(b.stack, &openSection{symbol: s, level: level})
}

func (b *symbolBuilder) closeSections(level, offset int) {
	for len(b.stack) > 0 {
		top := b.stack[len(b.stack)-1]
		if top.level < level {
			return
		}
		top.symbol.Range.End = offset
		b.stack = b.stack[:len(b.stack)-1]
	}
}

func (b *symbolBuilder) closeAll(offset int) {
	b.closeSections(-1<<30, offset)
}

func texSymbols(proj *project.Project, doc *workspace.Document, cfg *config.Config) []*Symbol {
	root := syntax.NewRoot(doc.Tex.Green)
	mathEnvs := toStringSet(cfg.Syntax.MathEnvironments)
	enumEnvs := toStringSet(cfg.Syntax.EnumEnvironments)
	b := &symbolBuilder{}

	_ = syntax.Walk(root, func(n *syntax.SyntaxNode, ev syntax.WalkEvent) error {
		if ev != syntax.EventEnter {
			return nil
		}
		switch n.Kind() {
		case syntax.KindCommand:
			name := commandNameOf(n)
			if level, ok := latex.SectionLevels[name]; ok {
				heading := ""
				sel := n.Range()
				if groups := curlyGroupsOf(n); len(groups) > 0 {
					heading = groupInnerText(groups[len(groups)-1])
					sel = groups[len(groups)-1].Range()
				}
				if heading == "" {
					heading = name
				}
				b.openSectionAt(&Symbol{
					Name:           heading,
					Kind:           SymbolSection,
					Range:          syntax.Range{Start: n.Range().Start, End: len(doc.Text)},
					SelectionRange: sel,
				}, level, n.Range().Start)
			}
		case syntax.KindEnvironment:
			envName := environmentName(n)
			switch {
			case floatEnvironments[envName] != "":
				b.add(&Symbol{
					Name:           floatEnvironments[envName],
					Detail:         captionText(n),
					Kind:           SymbolFloat,
					Range:          n.Range(),
					SelectionRange: n.Range(),
				})
				return syntax.ErrSkipSubtree
			case mathEnvs[envName]:
				b.add(&Symbol{
					Name:           "Equation",
					Kind:           SymbolEquation,
					Range:          n.Range(),
					SelectionRange: n.Range(),
				})
				return syntax.ErrSkipSubtree
			case enumEnvs[envName]:
				b.add(enumSymbol(n, envName))
				return syntax.ErrSkipSubtree
			default:
				if desc, ok := theoremDescription(proj, envName); ok {
					b.add(&Symbol{
						Name:           desc,
						Kind:           SymbolTheorem,
						Range:          n.Range(),
						SelectionRange: n.Range(),
					})
					return syntax.ErrSkipSubtree
				}
			}
		case syntax.KindVerbatimEnvironmentBody:
			return syntax.ErrSkipSubtree
		}
		return nil
	})

	b.closeAll(len(doc.Text))
	return b.roots
}

// enumSymbol represents an enumerate-family environment with one child
// per \item.
func enumSymbol(env *syntax.SyntaxNode, name string) *Symbol {
	s := &Symbol{
		Name:           name,
		Kind:           SymbolEnumItem,
		Range:          env.Range(),
		SelectionRange: env.Range(),
	}
	for _, f := range enumItemFoldings(env) {
		s.Children = append(s.Children, &Symbol{
			Name:           "Item",
			Kind:           SymbolEnumItem,
			Range:          f.Range,
			SelectionRange: syntax.Range{Start: f.Range.Start, End: f.Range.Start},
		})
	}
	return s
}

func bibSymbols(doc *workspace.Document) []*Symbol {
	var out []*Symbol
	for _, e := range doc.Bib.Index.Entries {
		s := &Symbol{
			Name:           e.Key.Text,
			Detail:         e.Type,
			Kind:           SymbolEntry,
			Range:          e.FullRange,
			SelectionRange: e.Key.Range,
		}
		for _, f := range e.Fields {
			s.Children = append(s.Children, &Symbol{
				Name:           f.Name,
				Kind:           SymbolField,
				Range:          f.NameRange,
				SelectionRange: f.NameRange,
			})
		}
		out = append(out, s)
	}
	for _, d := range doc.Bib.Index.StringDefs {
		out = append(out, &Symbol{
			Name:           d.Name,
			Kind:           SymbolString,
			Range:          d.FullRange,
			SelectionRange: d.NameRange,
		})
	}
	return out
}

// FlatSymbol is one workspace-symbol result: a Symbol pinned to its
// document.
type FlatSymbol struct {
	Symbol
	URI string

	docOrder int
}

// WorkspaceSymbols flattens every document's symbols across the
// workspace and filters them by a case-insensitive substring match on a
// search text that includes the kind name (e.g. "latex section foo"),
// sorted by project ordering, start offset, then reverse end offset —
// outer before inner.
func WorkspaceSymbols(docs []*workspace.Document, proj *project.Project, cfg *config.Config, search string) []FlatSymbol {
	search = strings.ToLower(search)
	var out []FlatSymbol
	for order, doc := range docs {
		for _, s := range DocumentSymbols(proj, doc, cfg) {
			flatten(s, doc.URI, order, search, &out)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].docOrder != out[j].docOrder {
			return out[i].docOrder < out[j].docOrder
		}
		if out[i].Range.Start != out[j].Range.Start {
			return out[i].Range.Start < out[j].Range.Start
		}
		return out[i].Range.End > out[j].Range.End
	})
	return out
}

func flatten(s *Symbol, uri string, docOrder int, search string, out *[]FlatSymbol) {
	language := "latex"
	if s.Kind == SymbolEntry || s.Kind == SymbolString || s.Kind == SymbolField {
		language = "bibtex"
	}
	searchText := strings.ToLower(language + " " + s.Kind.String() + " " + s.Name)
	if search == "" || strings.Contains(searchText, search) {
		*out = append(*out, FlatSymbol{Symbol: *s, URI: uri, docOrder: docOrder})
	}
	for _, c := range s.Children {
		flatten(c, uri, docOrder, search, out)
	}
}
