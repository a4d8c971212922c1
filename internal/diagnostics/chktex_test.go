package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texlab-go/internal/workspace"
)

func TestParseChktexMapsLinesToRanges(t *testing.T) {
	text := "\\foo  bar\nbaz\n"
	lines := workspace.NewLineIndex(text)
	output := "1:5:2:Warning:13:Intersentence spacing\n2:1:3:Message:44:Use of baz\ngarbage line\n"

	diags := ParseChktex(output, lines)
	require.Len(t, diags, 2)

	first := diags[0]
	assert.Equal(t, SeverityWarning, first.Severity)
	assert.Equal(t, KindChktex, first.Kind)
	assert.Equal(t, "13", first.Code)
	assert.Equal(t, "Intersentence spacing", first.Message)
	assert.Equal(t, 4, first.Range.Start)
	assert.Equal(t, 6, first.Range.End)

	second := diags[1]
	assert.Equal(t, SeverityInfo, second.Severity)
	assert.Equal(t, len("\\foo  bar\n"), second.Range.Start)
}

func TestParseChktexSeverityFallbackIsError(t *testing.T) {
	lines := workspace.NewLineIndex("x\n")
	diags := ParseChktex("1:1:1:Banner:1:Something odd\n", lines)
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityError, diags[0].Severity)
}

func TestParseChktexStripsLeadingBOM(t *testing.T) {
	lines := workspace.NewLineIndex("x\n")
	diags := ParseChktex("\ufeff1:1:1:Warning:1:Leading BOM\n", lines)
	require.Len(t, diags, 1)
	assert.Equal(t, "Leading BOM", diags[0].Message)
}
