package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texlab-go/internal/workspace"
)

func TestBuildLogDiagnosticsMapHintToSourceRange(t *testing.T) {
	texText := "\\documentclass{article}\n\\foo bar\n"
	logText := "(./main.tex\n! Undefined control sequence.\nl.2 \\foo\n?\n)"
	s, _ := buildWorkspace(t, map[string]string{
		"/proj/main.tex": texText,
		"/proj/main.log": logText,
	})

	results := BuildLogDiagnostics(s.Snapshot())
	logURI := workspace.URIFromPath("/proj/main.log")
	texURI := workspace.URIFromPath("/proj/main.tex")
	require.Contains(t, results, logURI)
	diags := results[logURI][texURI]
	require.Len(t, diags, 1)

	d := diags[0]
	assert.Equal(t, KindBuildError, d.Kind)
	assert.Equal(t, "Undefined control sequence.", d.Message)
	// The range covers the first occurrence of the hint on line 2.
	assert.Equal(t, `\foo`, texText[d.Range.Start:d.Range.End])
}

func TestBuildLogDiagnosticsWithoutHintUseEmptyRangeAtLineStart(t *testing.T) {
	texText := "line one\nline two\n"
	logText := "(./main.tex\n! Something broke.\nl.2\n?\n)"
	s, _ := buildWorkspace(t, map[string]string{
		"/proj/main.tex": texText,
		"/proj/main.log": logText,
	})

	results := BuildLogDiagnostics(s.Snapshot())
	logURI := workspace.URIFromPath("/proj/main.log")
	texURI := workspace.URIFromPath("/proj/main.tex")
	diags := results[logURI][texURI]
	require.Len(t, diags, 1)
	assert.True(t, diags[0].Range.IsEmpty())
	assert.Equal(t, len("line one\n"), diags[0].Range.Start)
}
