package diagnostics

import (
	"texlab-go/internal/graph"
	"texlab-go/internal/project"
	"texlab-go/internal/workspace"
)

// CitationDiagnostics reports undefined citations on Tex documents and
// unused BibTeX entries on Bib documents, each scoped to the document's
// own project.
func CitationDiagnostics(snap *workspace.Snapshot, g *graph.Graph) map[string][]Diagnostic {
	out := map[string][]Diagnostic{}
	for _, doc := range snap.Iter() {
		switch {
		case doc.Tex != nil:
			proj := project.ForDocument(g, snap, doc)
			entries := map[string]bool{}
			for _, other := range proj.Documents {
				if other.Bib == nil {
					continue
				}
				for _, e := range other.Bib.Index.Entries {
					entries[e.Key.Text] = true
				}
			}
			for _, c := range doc.Tex.Summary.Citations {
				if c.Name.Text == "*" || entries[c.Name.Text] {
					continue
				}
				out[doc.URI] = append(out[doc.URI], Diagnostic{
					Range:    c.Name.Range,
					Severity: SeverityWarning,
					Kind:     KindUndefinedCitation,
					Message:  undefinedCitation(c.Name.Text),
					Source:   SourceSemantic,
				})
			}

		case doc.Bib != nil:
			proj := project.ForDocument(g, snap, doc)
			cited := map[string]bool{}
			nociteAll := false
			for _, other := range proj.Documents {
				if other.Tex == nil {
					continue
				}
				for _, c := range other.Tex.Summary.Citations {
					if c.Name.Text == "*" {
						nociteAll = true
						continue
					}
					cited[c.Name.Text] = true
				}
			}
			if nociteAll {
				continue
			}
			for _, e := range doc.Bib.Index.Entries {
				if cited[e.Key.Text] {
					continue
				}
				out[doc.URI] = append(out[doc.URI], Diagnostic{
					Range:    e.Key.Range,
					Severity: SeverityHint,
					Kind:     KindUnusedEntry,
					Message:  unusedEntry(e.Key.Text),
					Source:   SourceSemantic,
				})
			}
		}
	}
	return out
}
