package diagnostics

import (
	"path/filepath"
	"strings"

	"texlab-go/internal/syntax"
	"texlab-go/internal/syntax/buildlog"
	"texlab-go/internal/workspace"
)

// BuildLogDiagnostics maps each build-log document's parsed messages onto
// the TeX document they were reported against. The result is keyed by
// log document URI, then by the target TeX document URI, so a later log
// document replacement only replaces its own contribution.
//
// Log documents do not appear in the dependency graph (nothing ever
// \inputs a .log file), so the root document is found by matching the
// log's basename stem against a Tex document's implicit link stem,
// preferring one that can_be_root, rather than by graph reachability.
func BuildLogDiagnostics(snap *workspace.Snapshot) map[string]map[string][]Diagnostic {
	out := map[string]map[string][]Diagnostic{}
	for _, logDoc := range snap.Iter() {
		if logDoc.Log == nil {
			continue
		}
		root := findLogRoot(snap, logDoc)
		if root == nil {
			continue
		}
		baseDir := workspace.PathFromURI(root.Directory)

		perTarget := map[string][]Diagnostic{}
		for _, msg := range logDoc.Log.Messages {
			target := root
			if msg.RelativePath != "" {
				if d, ok := snap.LookupPath(filepath.Join(baseDir, msg.RelativePath)); ok {
					target = d
				}
			}

			severity := SeverityError
			kind := KindBuildError
			if msg.Level == buildlog.LevelWarning {
				severity = SeverityWarning
				kind = KindBuildWarning
			}

			perTarget[target.URI] = append(perTarget[target.URI], Diagnostic{
				Range:    findHintRange(target, msg),
				Severity: severity,
				Kind:     kind,
				Message:  msg.Message,
				Source:   SourceBuildLog,
			})
		}
		out[logDoc.URI] = perTarget
	}
	return out
}

func findLogRoot(snap *workspace.Snapshot, logDoc *workspace.Document) *workspace.Document {
	stem := workspace.StemOfURI(logDoc.URI)
	var fallback *workspace.Document
	for _, d := range snap.Iter() {
		if d.Tex == nil || d.Tex.Summary.ImplicitLinkStem != stem {
			continue
		}
		if d.Tex.Summary.CanBeRoot {
			return d
		}
		if fallback == nil {
			fallback = d
		}
	}
	return fallback
}

// findHintRange locates the byte range of the first occurrence of a
// message's hint text on its indicated line, or an empty range at the
// start of that line if there is no hint.
func findHintRange(doc *workspace.Document, msg buildlog.Message) syntax.Range {
	if msg.Line == nil || *msg.Line < 1 {
		return emptyRangeAt(0)
	}
	// Log line hints (l.<n>) are one-based; the line index is zero-based.
	line := uint32(*msg.Line - 1)
	lineStart := doc.Lines.ToOffset(workspace.Position{Line: line, Character: 0})
	if msg.Hint == "" {
		return emptyRangeAt(lineStart)
	}
	lineEnd := doc.Lines.ToOffset(workspace.Position{Line: line + 1, Character: 0})
	if lineEnd <= lineStart || lineEnd > len(doc.Text) {
		lineEnd = len(doc.Text)
	}
	lineText := doc.Text[lineStart:lineEnd]
	idx := strings.Index(lineText, msg.Hint)
	if idx < 0 {
		return emptyRangeAt(lineStart)
	}
	start := lineStart + idx
	return syntax.Range{Start: start, End: start + len(msg.Hint)}
}
