package diagnostics

import (
	"texlab-go/internal/graph"
	"texlab-go/internal/project"
	"texlab-go/internal/semantic"
	"texlab-go/internal/workspace"
)

// LabelDiagnostics reports undefined references and unused definitions,
// each scoped to the document's own project.
func LabelDiagnostics(snap *workspace.Snapshot, g *graph.Graph) map[string][]Diagnostic {
	out := map[string][]Diagnostic{}
	for _, doc := range snap.Iter() {
		if doc.Tex == nil {
			continue
		}
		proj := project.ForDocument(g, snap, doc)
		defs := map[string]bool{}
		refs := map[string]bool{}
		for _, other := range proj.Documents {
			if other.Tex == nil {
				continue
			}
			for _, l := range other.Tex.Summary.Labels {
				if l.Kind == semantic.LabelDefinition {
					defs[l.Name.Text] = true
				} else {
					refs[l.Name.Text] = true
				}
			}
		}
		for _, l := range doc.Tex.Summary.Labels {
			if l.Kind != semantic.LabelDefinition && !defs[l.Name.Text] {
				out[doc.URI] = append(out[doc.URI], Diagnostic{
					Range:    l.Name.Range,
					Severity: SeverityWarning,
					Kind:     KindUndefinedLabel,
					Message:  undefinedLabel(l.Name.Text),
					Source:   SourceSemantic,
				})
			}
			if l.Kind == semantic.LabelDefinition && !refs[l.Name.Text] {
				out[doc.URI] = append(out[doc.URI], Diagnostic{
					Range:    l.Name.Range,
					Severity: SeverityHint,
					Kind:     KindUnusedLabel,
					Message:  unusedLabel(l.Name.Text),
					Source:   SourceSemantic,
				})
			}
		}
	}
	return out
}
