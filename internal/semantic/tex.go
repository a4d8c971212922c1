// Package semantic implements the per-document semantic layer: a single
// preorder walk over a green tree that distills labels, citations,
// commands, environments, links, and theorem definitions.
package semantic

import (
	"strings"

	"texlab-go/internal/syntax"
	"texlab-go/internal/syntax/latex"
)

// Span pairs a text value with the source range it came from.
type Span struct {
	Text  string
	Range syntax.Range
}

// LabelKind distinguishes a label definition from the two reference forms.
type LabelKind int

const (
	LabelDefinition LabelKind = iota
	LabelReference
	LabelReferenceRange
)

// Label is one `\label`/`\ref`-family occurrence.
type Label struct {
	Name          Span
	FullRange     syntax.Range
	Kind          LabelKind
	OwningCommand string
}

// Citation is a `\cite`-family reference. Definitions live in the
// BibTeX semantic index, not here.
type Citation struct {
	Name      Span
	FullRange syntax.Range
}

// LinkKind classifies an explicit cross-file reference.
type LinkKind int

const (
	LinkPackage LinkKind = iota
	LinkClass
	LinkLatex
	LinkBibtex
)

// Link is one explicit `\input`/`\usepackage`/... reference.
type Link struct {
	Kind       LinkKind
	Stem       string
	StemRange  syntax.Range
	WorkingDir string
}

// TheoremEnvironment is introduced by `\newtheorem`/`\declaretheorem`.
type TheoremEnvironment struct {
	Name        string
	Description string
}

// Summary is the immutable Semantic Summary for one TeX document.
// ImplicitLinkStem is the document's basename with no extension; the
// candidate aux/log/pdf URIs themselves are resolved by the dependency
// graph package, which has the directory/config context this pure
// tree-walk does not.
type Summary struct {
	Labels                 []Label
	Citations              []Citation
	CommandDefinitions     map[string]bool
	CommandUses            map[string]bool
	Environments           map[string]bool
	HasDocumentEnvironment bool
	CanBeRoot              bool
	CanBeBuilt             bool
	HasSubfilesPackage     bool
	Links                  []Link
	TheoremEnvironments    []TheoremEnvironment
	GraphicsPaths          map[string]bool
	ImplicitLinkStem       string
	LabelNumbers           map[string]string
}

// Config is the subset of syntax configuration the extractor consults.
type Config struct {
	LabelDefinitionCommands     map[string]bool
	LabelReferenceCommands      map[string]bool
	LabelReferenceRangeCommands map[string]bool
	CitationCommands            map[string]bool
}

func toSet(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// NewConfig builds an extractor Config from the plain string lists held by
// internal/config.SyntaxConfig.
func NewConfig(labelDef, labelRef, labelRefRange, citation []string) Config {
	return Config{
		LabelDefinitionCommands:     toSet(labelDef),
		LabelReferenceCommands:      toSet(labelRef),
		LabelReferenceRangeCommands: toSet(labelRefRange),
		CitationCommands:            toSet(citation),
	}
}

// ExtractTex walks a fresh green tree once and produces an immutable
// Summary. Identical tree + config always yields an
// identical summary (used for snapshot testing).
func ExtractTex(green *syntax.GreenNode, cfg Config, stem string) Summary {
	root := syntax.NewRoot(green)
	s := Summary{
		CommandDefinitions: map[string]bool{},
		CommandUses:        map[string]bool{},
		Environments:       map[string]bool{},
		GraphicsPaths:      map[string]bool{},
		LabelNumbers:       map[string]string{},
		ImplicitLinkStem:   stem,
	}

	_ = syntax.Walk(root, func(n *syntax.SyntaxNode, ev syntax.WalkEvent) error {
		if ev != syntax.EventEnter {
			return nil
		}
		switch n.Kind() {
		case syntax.KindEnvironment:
			handleEnvironment(n, &s)
		case syntax.KindCommand:
			handleCommand(n, &s, cfg)
		case syntax.KindVerbatimEnvironmentBody:
			return syntax.ErrSkipSubtree
		}
		return nil
	})

	return s
}

func commandBaseName(n *syntax.SyntaxNode) string {
	children := n.Children()
	if len(children) == 0 {
		return ""
	}
	tok, ok := children[0].Token()
	if !ok {
		return ""
	}
	return strings.TrimPrefix(tok.Text, `\`)
}

func handleEnvironment(n *syntax.SyntaxNode, s *Summary) {
	begin := syntax.FirstChildOfKind(n, syntax.KindBeginEnvironment)
	if begin == nil {
		return
	}
	nameGroup := syntax.FirstChildOfKind(begin, syntax.KindCurlyGroupWord)
	if nameGroup == nil {
		return
	}
	name := firstWord(nameGroup)
	if name == "" {
		return
	}
	s.Environments[name] = true
	if name == "document" {
		s.HasDocumentEnvironment = true
		s.CanBeBuilt = true
	}
}

func firstWord(n *syntax.SyntaxNode) string {
	for _, c := range n.Children() {
		if c.Kind() == syntax.KindWord {
			return c.Text()
		}
	}
	return ""
}

// isTopLevel reports whether n sits outside every Environment node; only
// a top-level \documentclass makes a document a root candidate.
func isTopLevel(n *syntax.SyntaxNode) bool {
	return syntax.FindAncestor(n.Parent(), syntax.KindEnvironment) == nil
}

func handleCommand(n *syntax.SyntaxNode, s *Summary, cfg Config) {
	name := commandBaseName(n)
	if name == "" {
		return
	}

	if isDefinitionArgument(n) {
		s.CommandDefinitions[name] = true
	} else {
		s.CommandUses[name] = true
	}

	groups := argumentGroups(n)

	switch {
	case name == "documentclass":
		s.CanBeBuilt = true
		if isTopLevel(n) {
			s.CanBeRoot = true
		}
		extractWordListLinks(groups, LinkClass, s)
	case name == "LoadClass":
		extractWordListLinks(groups, LinkClass, s)
	case name == "usepackage" || name == "RequirePackage":
		extractWordListLinks(groups, LinkPackage, s)
	case cfg.LabelDefinitionCommands[name]:
		extractLabel(n, groups, name, LabelDefinition, s)
	case cfg.LabelReferenceRangeCommands[name]:
		extractLabelRange(n, groups, name, s)
	case cfg.LabelReferenceCommands[name]:
		extractLabel(n, groups, name, LabelReference, s)
	case cfg.CitationCommands[name]:
		extractCitations(n, groups, s)
	case name == "include" || name == "input" || name == "subfile":
		extractPlainLink(n, groups, LinkLatex, "", s)
	case name == "import" || name == "subimport":
		extractImportLink(groups, s)
	case name == "addbibresource" || name == "bibliography":
		extractWordListLinks(groups, LinkBibtex, s)
	case name == "newtheorem":
		extractNewTheorem(groups, s)
	case name == "declaretheorem":
		extractDeclareTheorem(groups, s)
	case name == "graphicspath":
		extractGraphicsPaths(groups, s)
	}
}

// isDefinitionArgument reports whether n is the CommandOnly argument of a
// command-defining command.
func isDefinitionArgument(n *syntax.SyntaxNode) bool {
	parent := n.Parent()
	if parent == nil || parent.Kind() != syntax.KindCurlyGroupCommand {
		return false
	}
	grandparent := parent.Parent()
	if grandparent == nil || grandparent.Kind() != syntax.KindCommand {
		return false
	}
	return latex.CommandDefinitionCommands[commandBaseName(grandparent)]
}

func argumentGroups(n *syntax.SyntaxNode) []*syntax.SyntaxNode {
	children := n.Children()
	if len(children) <= 1 {
		return nil
	}
	return children[1:]
}

func extractLabel(n *syntax.SyntaxNode, groups []*syntax.SyntaxNode, owning string, kind LabelKind, s *Summary) {
	if len(groups) == 0 {
		return
	}
	g := groups[0]
	word := wordToken(g)
	if word == nil {
		return
	}
	s.Labels = append(s.Labels, Label{
		Name:          Span{Text: word.Text(), Range: word.Range()},
		FullRange:     n.Range(),
		Kind:          kind,
		OwningCommand: owning,
	})
}

func extractLabelRange(n *syntax.SyntaxNode, groups []*syntax.SyntaxNode, owning string, s *Summary) {
	for _, g := range groups {
		word := wordToken(g)
		if word == nil {
			continue
		}
		s.Labels = append(s.Labels, Label{
			Name:          Span{Text: word.Text(), Range: word.Range()},
			FullRange:     n.Range(),
			Kind:          LabelReferenceRange,
			OwningCommand: owning,
		})
	}
}

func wordToken(group *syntax.SyntaxNode) *syntax.SyntaxNode {
	for _, c := range group.Children() {
		if c.Kind() == syntax.KindWord {
			return c
		}
	}
	return nil
}

// extractCitations splits a WordList group on commas, recognising
// `\nocite{*}` as a single
// synthetic "all entries" reference.
func extractCitations(n *syntax.SyntaxNode, groups []*syntax.SyntaxNode, s *Summary) {
	if len(groups) == 0 {
		return
	}
	for _, seg := range splitWordListSegments(groups[0]) {
		s.Citations = append(s.Citations, Citation{
			Name:      Span{Text: seg.text, Range: seg.rng},
			FullRange: n.Range(),
		})
	}
}

type segment struct {
	text string
	rng  syntax.Range
}

// splitWordListSegments splits a CurlyGroupWordList's inner word tokens on
// comma tokens, returning one segment per comma-separated entry. A `*`
// entry (from `\nocite{*}`) is preserved verbatim as its own segment.
func splitWordListSegments(group *syntax.SyntaxNode) []segment {
	var segs []segment
	var cur []*syntax.SyntaxNode
	flush := func() {
		if len(cur) == 0 {
			return
		}
		var sb strings.Builder
		start := cur[0].Range().Start
		end := cur[len(cur)-1].Range().End
		for _, t := range cur {
			sb.WriteString(t.Text())
		}
		segs = append(segs, segment{text: strings.TrimSpace(sb.String()), rng: syntax.Range{Start: start, End: end}})
		cur = nil
	}
	for _, c := range group.Children() {
		switch c.Kind() {
		case syntax.KindLCurly, syntax.KindRCurly, syntax.KindLBracket, syntax.KindRBracket:
			continue
		case syntax.KindComma:
			flush()
		case syntax.KindWhitespace:
			if len(cur) > 0 {
				cur = append(cur, c)
			}
		default:
			cur = append(cur, c)
		}
	}
	flush()
	return segs
}

func groupPlainText(group *syntax.SyntaxNode) (string, syntax.Range) {
	var sb strings.Builder
	var start, end int
	first := true
	for _, c := range group.Children() {
		if c.Kind() == syntax.KindLCurly || c.Kind() == syntax.KindRCurly ||
			c.Kind() == syntax.KindLBracket || c.Kind() == syntax.KindRBracket {
			continue
		}
		if first {
			start = c.Range().Start
			first = false
		}
		end = c.Range().End
		sb.WriteString(c.Text())
	}
	return strings.TrimSpace(sb.String()), syntax.Range{Start: start, End: end}
}

func extractPlainLink(n *syntax.SyntaxNode, groups []*syntax.SyntaxNode, kind LinkKind, workingDir string, s *Summary) {
	if len(groups) == 0 {
		return
	}
	text, rng := groupPlainText(groups[0])
	if text == "" {
		return
	}
	s.Links = append(s.Links, Link{Kind: kind, Stem: text, StemRange: rng, WorkingDir: workingDir})
}

func extractImportLink(groups []*syntax.SyntaxNode, s *Summary) {
	if len(groups) < 2 {
		return
	}
	workingDir, _ := groupPlainText(groups[0])
	text, rng := groupPlainText(groups[1])
	if text == "" {
		return
	}
	s.Links = append(s.Links, Link{Kind: LinkLatex, Stem: text, StemRange: rng, WorkingDir: workingDir})
}

func extractWordListLinks(groups []*syntax.SyntaxNode, kind LinkKind, s *Summary) {
	if len(groups) == 0 {
		return
	}
	group := groups[len(groups)-1] // last group holds the names; any leading bracket option is skipped
	for _, seg := range splitWordListSegments(group) {
		if seg.text == "" {
			continue
		}
		s.Links = append(s.Links, Link{Kind: kind, Stem: seg.text, StemRange: seg.rng})
		if kind == LinkPackage && seg.text == "subfiles" {
			s.HasSubfilesPackage = true
		}
	}
}

func extractNewTheorem(groups []*syntax.SyntaxNode, s *Summary) {
	if len(groups) < 2 {
		return
	}
	name := firstWord(groups[0])
	desc, _ := groupPlainText(groups[1])
	if name == "" {
		return
	}
	s.TheoremEnvironments = append(s.TheoremEnvironments, TheoremEnvironment{Name: name, Description: desc})
}

func extractDeclareTheorem(groups []*syntax.SyntaxNode, s *Summary) {
	for _, g := range groups {
		if g.Kind() == syntax.KindCurlyGroupWord {
			name := firstWord(g)
			if name != "" {
				s.TheoremEnvironments = append(s.TheoremEnvironments, TheoremEnvironment{Name: name})
			}
		}
	}
}

func extractGraphicsPaths(groups []*syntax.SyntaxNode, s *Summary) {
	if len(groups) == 0 {
		return
	}
	for _, seg := range splitWordListSegments(groups[0]) {
		for _, part := range strings.Fields(seg.text) {
			if part != "" {
				s.GraphicsPaths[part] = true
			}
		}
	}
}
