package diagnostics

import (
	"regexp"
	"strconv"
	"strings"

	"texlab-go/internal/syntax"
	"texlab-go/internal/workspace"
)

var chktexLineRe = regexp.MustCompile(`^(\d+):(\d+):(\d+):(\w+):(\w+):(.*)$`)

// ParseChktex parses ChkTeX's `-f'%l:%c:%d:%k:%n:%m'` output for one
// document into diagnostics, converting its 1-based line/column/width
// triples to byte ranges via lines. Message maps to Info, Warning to
// Warning, anything else to Error. The output is decoded as UTF-8 with a
// leading BOM stripped before matching, since ChkTeX's stdout is read
// that way.
func ParseChktex(output string, lines *workspace.LineIndex) []Diagnostic {
	output = strings.TrimPrefix(output, "\ufeff")

	var diags []Diagnostic
	for _, line := range strings.Split(strings.TrimRight(output, "\n"), "\n") {
		m := chktexLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lineNo, err1 := strconv.Atoi(m[1])
		col, err2 := strconv.Atoi(m[2])
		width, err3 := strconv.Atoi(m[3])
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		kind, code, message := m[4], m[5], m[6]

		start := workspace.Position{Line: uint32(lineNo - 1), Character: uint32(col - 1)}
		end := workspace.Position{Line: uint32(lineNo - 1), Character: uint32(col - 1 + width)}

		severity := SeverityError
		switch kind {
		case "Message":
			severity = SeverityInfo
		case "Warning":
			severity = SeverityWarning
		}

		diags = append(diags, Diagnostic{
			Range:    syntax.Range{Start: lines.ToOffset(start), End: lines.ToOffset(end)},
			Severity: severity,
			Kind:     KindChktex,
			Message:  message,
			Source:   SourceChktex,
			Code:     code,
		})
	}
	return diags
}
