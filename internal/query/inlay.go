package query

import (
	"texlab-go/internal/config"
	"texlab-go/internal/project"
	"texlab-go/internal/semantic"
	"texlab-go/internal/syntax"
	"texlab-go/internal/workspace"
)

// InlayHint is one rendered hint: the byte offset it attaches to (the end
// of a label definition) and its display text.
type InlayHint struct {
	Offset int
	Text   string
}

// InlayHints renders a hint after every label definition inside viewport,
// showing the label's classification and typeset number.
func InlayHints(proj *project.Project, doc *workspace.Document, viewport syntax.Range, cfg *config.Config) []InlayHint {
	if doc.Tex == nil {
		return nil
	}
	var out []InlayHint
	for _, l := range doc.Tex.Summary.Labels {
		if l.Kind != semantic.LabelDefinition {
			continue
		}
		if l.FullRange.Start < viewport.Start || l.FullRange.End > viewport.End {
			continue
		}
		r, ok := RenderLabel(proj, l.Name.Text, cfg)
		if !ok {
			continue
		}
		out = append(out, InlayHint{Offset: l.FullRange.End, Text: r.String()})
	}
	return out
}
