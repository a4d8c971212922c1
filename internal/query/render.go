package query

import (
	"strings"

	"texlab-go/internal/config"
	"texlab-go/internal/project"
	"texlab-go/internal/semantic"
	"texlab-go/internal/syntax"
	"texlab-go/internal/syntax/latex"
	"texlab-go/internal/workspace"
)

// LabelTargetKind classifies what a label definition is attached to.
type LabelTargetKind int

const (
	LabelTargetSection LabelTargetKind = iota
	LabelTargetFloat
	LabelTargetTheorem
	LabelTargetEquation
	LabelTargetEnumItem
)

func (k LabelTargetKind) String() string {
	switch k {
	case LabelTargetSection:
		return "Section"
	case LabelTargetFloat:
		return "Float"
	case LabelTargetTheorem:
		return "Theorem"
	case LabelTargetEquation:
		return "Equation"
	case LabelTargetEnumItem:
		return "Item"
	default:
		return "Label"
	}
}

// RenderedLabel is the human-readable classification of one label's
// target, shared by hover, completion details, inlay hints and symbol
// details.
type RenderedLabel struct {
	Kind   LabelTargetKind
	Detail string // heading text, caption, or theorem description
	Number string // typeset number from companion aux files, if known
}

// String renders the label the way hover and inlay hints display it, e.g.
// "Section 1.2 (Introduction)" or "Figure 3".
func (r RenderedLabel) String() string {
	var sb strings.Builder
	switch r.Kind {
	case LabelTargetFloat, LabelTargetTheorem:
		if r.Detail != "" {
			sb.WriteString(r.Detail)
		} else {
			sb.WriteString(r.Kind.String())
		}
	default:
		sb.WriteString(r.Kind.String())
	}
	if r.Number != "" {
		sb.WriteString(" ")
		sb.WriteString(r.Number)
	}
	if r.Kind != LabelTargetFloat && r.Kind != LabelTargetTheorem && r.Detail != "" {
		sb.WriteString(" (")
		sb.WriteString(r.Detail)
		sb.WriteString(")")
	}
	return sb.String()
}

// floatEnvironments is the fixed float family the renderer and symbol
// scanner recognise.
var floatEnvironments = map[string]string{
	"figure":    "Figure",
	"figure*":   "Figure",
	"table":     "Table",
	"table*":    "Table",
	"listing":   "Listing",
	"algorithm": "Algorithm",
}

// RenderLabel locates the definition of name inside proj and classifies
// its enclosing structure. The second
// return value is false when the project has no definition for name.
func RenderLabel(proj *project.Project, name string, cfg *config.Config) (RenderedLabel, bool) {
	defDoc, defLabel, ok := findLabelDefinition(proj, name)
	if !ok {
		return RenderedLabel{}, false
	}
	r := classifyLabel(defDoc, defLabel, proj, cfg)
	r.Number = labelNumber(proj, name)
	return r, true
}

func findLabelDefinition(proj *project.Project, name string) (*workspace.Document, semantic.Label, bool) {
	for _, doc := range proj.Documents {
		if doc.Tex == nil {
			continue
		}
		for _, l := range doc.Tex.Summary.Labels {
			if l.Kind == semantic.LabelDefinition && l.Name.Text == name {
				return doc, l, true
			}
		}
	}
	return nil, semantic.Label{}, false
}

func labelNumber(proj *project.Project, name string) string {
	for _, doc := range proj.Documents {
		if doc.Tex == nil {
			continue
		}
		if n, ok := doc.Tex.Summary.LabelNumbers[name]; ok {
			return n
		}
	}
	return ""
}

func classifyLabel(doc *workspace.Document, label semantic.Label, proj *project.Project, cfg *config.Config) RenderedLabel {
	root := syntax.NewRoot(doc.Tex.Green)
	tok := syntax.TokenAtOffset(root, label.FullRange.Start, syntax.BiasRight)
	if tok == nil {
		return RenderedLabel{Kind: LabelTargetSection}
	}

	mathEnvs := toStringSet(cfg.Syntax.MathEnvironments)
	enumEnvs := toStringSet(cfg.Syntax.EnumEnvironments)

	for n := tok.Parent(); n != nil; n = n.Parent() {
		switch n.Kind() {
		case syntax.KindMath:
			return RenderedLabel{Kind: LabelTargetEquation}
		case syntax.KindEnvironment:
			envName := environmentName(n)
			if envName == "" {
				continue
			}
			if caption, ok := floatEnvironments[envName]; ok {
				return RenderedLabel{Kind: LabelTargetFloat, Detail: floatDetail(n, caption)}
			}
			if desc, ok := theoremDescription(proj, envName); ok {
				return RenderedLabel{Kind: LabelTargetTheorem, Detail: desc}
			}
			if mathEnvs[envName] {
				return RenderedLabel{Kind: LabelTargetEquation}
			}
			if enumEnvs[envName] {
				return RenderedLabel{Kind: LabelTargetEnumItem}
			}
		}
	}

	return RenderedLabel{Kind: LabelTargetSection, Detail: precedingSectionHeading(root, label.FullRange.Start)}
}

func toStringSet(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// environmentName returns the word inside \begin{...} of an Environment
// node, or "".
func environmentName(env *syntax.SyntaxNode) string {
	begin := syntax.FirstChildOfKind(env, syntax.KindBeginEnvironment)
	if begin == nil {
		return ""
	}
	group := syntax.FirstChildOfKind(begin, syntax.KindCurlyGroupWord)
	if group == nil {
		return ""
	}
	for _, c := range group.Children() {
		if c.Kind() == syntax.KindWord {
			return c.Text()
		}
	}
	return ""
}

func theoremDescription(proj *project.Project, envName string) (string, bool) {
	for _, doc := range proj.Documents {
		if doc.Tex == nil {
			continue
		}
		for _, th := range doc.Tex.Summary.TheoremEnvironments {
			if th.Name == envName {
				if th.Description != "" {
					return th.Description, true
				}
				return envName, true
			}
		}
	}
	return "", false
}

// floatDetail combines the float family name with the env's caption text,
// e.g. "Figure: Overview of the pipeline".
func floatDetail(env *syntax.SyntaxNode, family string) string {
	caption := captionText(env)
	if caption == "" {
		return family
	}
	return family + ": " + caption
}

// captionText finds the first \caption command inside env and returns its
// required argument's text.
func captionText(env *syntax.SyntaxNode) string {
	var caption string
	_ = syntax.Walk(env, func(n *syntax.SyntaxNode, ev syntax.WalkEvent) error {
		if ev != syntax.EventEnter || caption != "" {
			return nil
		}
		if n.Kind() != syntax.KindCommand || commandNameOf(n) != "caption" {
			return nil
		}
		groups := curlyGroupsOf(n)
		if len(groups) > 0 {
			caption = groupInnerText(groups[len(groups)-1])
		}
		return nil
	})
	return caption
}

func commandNameOf(cmd *syntax.SyntaxNode) string {
	children := cmd.Children()
	if len(children) == 0 {
		return ""
	}
	tok, ok := children[0].Token()
	if !ok {
		return ""
	}
	return strings.TrimPrefix(tok.Text, `\`)
}

func curlyGroupsOf(cmd *syntax.SyntaxNode) []*syntax.SyntaxNode {
	var out []*syntax.SyntaxNode
	for _, c := range cmd.Children() {
		switch c.Kind() {
		case syntax.KindCurlyGroup, syntax.KindCurlyGroupWord, syntax.KindCurlyGroupWordList,
			syntax.KindCurlyGroupKeyValue, syntax.KindCurlyGroupCommand:
			out = append(out, c)
		}
	}
	return out
}

// groupInnerText returns a group's covered text with the outer braces and
// surrounding whitespace stripped.
func groupInnerText(group *syntax.SyntaxNode) string {
	var sb strings.Builder
	for _, c := range group.Children() {
		switch c.Kind() {
		case syntax.KindLCurly, syntax.KindRCurly, syntax.KindLBracket, syntax.KindRBracket:
			continue
		}
		sb.WriteString(c.Text())
	}
	return strings.TrimSpace(sb.String())
}

// precedingSectionHeading scans the document's commands in order and
// returns the heading text of the last sectioning command that starts
// before offset.
func precedingSectionHeading(root *syntax.SyntaxNode, offset int) string {
	var heading string
	_ = syntax.Walk(root, func(n *syntax.SyntaxNode, ev syntax.WalkEvent) error {
		if ev != syntax.EventEnter {
			return nil
		}
		if n.Range().Start > offset {
			return syntax.ErrSkipSubtree
		}
		if n.Kind() != syntax.KindCommand {
			return nil
		}
		if _, ok := latex.SectionLevels[commandNameOf(n)]; !ok {
			return nil
		}
		if groups := curlyGroupsOf(n); len(groups) > 0 {
			heading = groupInnerText(groups[len(groups)-1])
		}
		return nil
	})
	return heading
}
