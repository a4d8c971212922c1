package buildlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseErrorWithLineHint(t *testing.T) {
	log := `(./main.tex
! Undefined control sequence.
l.12 \foo
         bar
?
)`
	data := Parse(log)
	require.Len(t, data.Messages, 1)
	msg := data.Messages[0]
	assert.Equal(t, LevelError, msg.Level)
	assert.Equal(t, "Undefined control sequence.", msg.Message)
	require.NotNil(t, msg.Line)
	assert.Equal(t, 12, *msg.Line)
	assert.Equal(t, `\foo`, msg.Hint)
	assert.Equal(t, "./main.tex", msg.RelativePath)
}

func TestParseWarningLines(t *testing.T) {
	log := `(./main.tex
LaTeX Warning: Citation 'foo' undefined on page 1.
Package hyperref Warning: Token not allowed in a PDF string.
)`
	data := Parse(log)
	require.Len(t, data.Messages, 2)
	assert.Equal(t, LevelWarning, data.Messages[0].Level)
	assert.Contains(t, data.Messages[0].Message, "Citation 'foo' undefined")
	assert.Equal(t, LevelWarning, data.Messages[1].Level)
}

func TestParseEmptyLogYieldsNoMessages(t *testing.T) {
	data := Parse("")
	assert.Empty(t, data.Messages)
}
