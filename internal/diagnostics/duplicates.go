package diagnostics

import (
	"texlab-go/internal/project"
	"texlab-go/internal/semantic"
	"texlab-go/internal/workspace"
)

// DuplicateEntryDiagnostics reports every BibTeX entry key occurrence
// after its first across the entire workspace, not just one project.
func DuplicateEntryDiagnostics(snap *workspace.Snapshot) map[string][]Diagnostic {
	out := map[string][]Diagnostic{}
	docs := snap.Iter()
	project.Order(docs)
	seen := map[string]bool{}
	for _, doc := range docs {
		if doc.Bib == nil {
			continue
		}
		for _, e := range doc.Bib.Index.Entries {
			if e.Key.Text == "" {
				continue
			}
			if seen[e.Key.Text] {
				out[doc.URI] = append(out[doc.URI], Diagnostic{
					Range:    e.Key.Range,
					Severity: SeverityWarning,
					Kind:     KindDuplicateEntry,
					Message:  duplicateEntry(e.Key.Text),
					Source:   SourceSemantic,
				})
				continue
			}
			seen[e.Key.Text] = true
		}
	}
	return out
}

// DuplicateLabelDiagnostics reports every label definition occurrence
// after its first across the entire workspace, applying the same
// second-definition-is-the-offender rule
// as DuplicateEntryDiagnostics for consistency.
func DuplicateLabelDiagnostics(snap *workspace.Snapshot) map[string][]Diagnostic {
	out := map[string][]Diagnostic{}
	docs := snap.Iter()
	project.Order(docs)
	seen := map[string]bool{}
	for _, doc := range docs {
		if doc.Tex == nil {
			continue
		}
		for _, l := range doc.Tex.Summary.Labels {
			if l.Kind != semantic.LabelDefinition {
				continue
			}
			if seen[l.Name.Text] {
				out[doc.URI] = append(out[doc.URI], Diagnostic{
					Range:    l.Name.Range,
					Severity: SeverityWarning,
					Kind:     KindDuplicateLabel,
					Message:  duplicateLabel(l.Name.Text),
					Source:   SourceSemantic,
				})
				continue
			}
			seen[l.Name.Text] = true
		}
	}
	return out
}
