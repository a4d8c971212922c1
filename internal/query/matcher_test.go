package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchEmptyPatternAlwaysMatches(t *testing.T) {
	score, ok := Match("", "anything")
	assert.True(t, ok)
	assert.Zero(t, score)
}

func TestMatchRequiresSubsequence(t *testing.T) {
	_, ok := Match("xyz", "label")
	assert.False(t, ok)
}

func TestMatchPrefixBeatsScattered(t *testing.T) {
	prefix, ok1 := Match("sec", "section")
	scattered, ok2 := Match("sec", "subsective")
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Greater(t, prefix, scattered)
}

func TestMatchIsCaseInsensitiveWithCaseBonus(t *testing.T) {
	exact, ok1 := Match("Cref", "Crefrange")
	folded, ok2 := Match("cref", "Crefrange")
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Greater(t, exact, folded)
}

func TestMatchBoundaryBonus(t *testing.T) {
	boundary, _ := Match("intro", "sec:intro")
	buried, _ := Match("intro", "secintro")
	assert.Greater(t, boundary, buried)
}
