package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texlab-go/internal/syntax/bibtex"
)

func TestMissingRightBraceIsEmptyRangeAtEnd(t *testing.T) {
	text := "@article{foo,\n"
	green := bibtex.Parse(text)
	diags := SyntaxBib(green)

	require.Len(t, diags, 1)
	assert.Equal(t, KindExpectingFieldRCurly, diags[0].Kind)
	assert.True(t, diags[0].Range.IsEmpty())
	assert.Equal(t, len(text), diags[0].Range.Start)
}

func TestMissingLeftDelimiterIsFlagged(t *testing.T) {
	text := "@article foo, bar = {baz}}"
	green := bibtex.Parse(text)
	diags := SyntaxBib(green)

	require.Len(t, diags, 1)
	assert.Equal(t, KindExpectingLCurly, diags[0].Kind)
}

func TestMissingEntryKeyIsFlagged(t *testing.T) {
	text := "@article{, bar = {baz}}"
	green := bibtex.Parse(text)
	diags := SyntaxBib(green)

	require.Len(t, diags, 1)
	assert.Equal(t, KindExpectingKey, diags[0].Kind)
}

func TestMissingEqualsIsFlagged(t *testing.T) {
	text := "@article{foo, bar}"
	green := bibtex.Parse(text)
	diags := SyntaxBib(green)

	require.Len(t, diags, 1)
	assert.Equal(t, KindExpectingEq, diags[0].Kind)
}

func TestMissingFieldValueIsFlagged(t *testing.T) {
	text := "@article{foo, bar = }"
	green := bibtex.Parse(text)
	diags := SyntaxBib(green)

	require.Len(t, diags, 1)
	assert.Equal(t, KindExpectingFieldValue, diags[0].Kind)
}

func TestWellFormedEntryProducesNoDiagnostic(t *testing.T) {
	text := "@article{foo, bar = {baz}}"
	green := bibtex.Parse(text)
	assert.Empty(t, SyntaxBib(green))
}
