package query

import (
	"sort"

	"texlab-go/internal/config"
	"texlab-go/internal/syntax"
	"texlab-go/internal/syntax/latex"
	"texlab-go/internal/workspace"
)

// FoldingKind is the semantic kind attached to a folding range.
type FoldingKind int

const (
	FoldSection FoldingKind = iota
	FoldEnvironment
	FoldEntry
)

// FoldingRange is one foldable span in byte offsets.
type FoldingRange struct {
	Range syntax.Range
	Kind  FoldingKind
}

// Foldings produces the folding ranges for one document: sections (to
// just before the next same-or-higher-level section or document end),
// non-verbatim environment bodies, enumerate items, and BibTeX
// entry/string bodies.
func Foldings(doc *workspace.Document, cfg *config.Config) []FoldingRange {
	switch {
	case doc.Tex != nil:
		return texFoldings(doc, cfg)
	case doc.Bib != nil:
		return bibFoldings(doc)
	default:
		return nil
	}
}

type sectionSite struct {
	level int
	start int
}

func texFoldings(doc *workspace.Document, cfg *config.Config) []FoldingRange {
	root := syntax.NewRoot(doc.Tex.Green)
	verbatim := toStringSet(cfg.Syntax.VerbatimEnvironments)
	enums := toStringSet(cfg.Syntax.EnumEnvironments)

	var out []FoldingRange
	var sections []sectionSite

	_ = syntax.Walk(root, func(n *syntax.SyntaxNode, ev syntax.WalkEvent) error {
		if ev != syntax.EventEnter {
			return nil
		}
		switch n.Kind() {
		case syntax.KindEnvironment:
			name := environmentName(n)
			if !verbatim[name] {
				out = append(out, FoldingRange{Range: n.Range(), Kind: FoldEnvironment})
			}
			if enums[name] {
				out = append(out, enumItemFoldings(n)...)
			}
		case syntax.KindCommand:
			if level, ok := latex.SectionLevels[commandNameOf(n)]; ok {
				sections = append(sections, sectionSite{level: level, start: n.Range().Start})
			}
		}
		return nil
	})

	docEnd := len(doc.Text)
	for i, s := range sections {
		end := docEnd
		for _, later := range sections[i+1:] {
			if later.level <= s.level {
				end = later.start
				break
			}
		}
		out = append(out, FoldingRange{Range: syntax.Range{Start: s.start, End: end}, Kind: FoldSection})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Range.Start < out[j].Range.Start })
	return out
}

// enumItemFoldings folds each \item of an enumerate-family environment
// from the item to just before the next item or the environment's \end.
func enumItemFoldings(env *syntax.SyntaxNode) []FoldingRange {
	bodyEnd := env.Range().End
	if end := syntax.FirstChildOfKind(env, syntax.KindEndEnvironment); end != nil {
		bodyEnd = end.Range().Start
	}
	var starts []int
	for _, c := range env.Children() {
		if c.Kind() == syntax.KindCommand && commandNameOf(c) == "item" {
			starts = append(starts, c.Range().Start)
		}
	}
	var out []FoldingRange
	for i, start := range starts {
		end := bodyEnd
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		out = append(out, FoldingRange{Range: syntax.Range{Start: start, End: end}, Kind: FoldSection})
	}
	return out
}

func bibFoldings(doc *workspace.Document) []FoldingRange {
	var out []FoldingRange
	for _, e := range doc.Bib.Index.Entries {
		out = append(out, FoldingRange{Range: e.FullRange, Kind: FoldEntry})
	}
	for _, s := range doc.Bib.Index.StringDefs {
		out = append(out, FoldingRange{Range: s.FullRange, Kind: FoldEntry})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Range.Start < out[j].Range.Start })
	return out
}
