package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texlab-go/internal/syntax/bibtex"
)

func TestExtractBibEntryFields(t *testing.T) {
	green := bibtex.Parse(`@article{knuth1984, title = {The Art}, year = 1984}`)
	idx := ExtractBib(green)
	require.Len(t, idx.Entries, 1)
	e := idx.Entries[0]
	assert.Equal(t, "article", e.Type)
	assert.Equal(t, "knuth1984", e.Key.Text)
	require.Len(t, e.Fields, 2)
	assert.Equal(t, "title", e.Fields[0].Name)
	assert.Equal(t, "year", e.Fields[1].Name)
}

func TestExtractBibStringDef(t *testing.T) {
	green := bibtex.Parse(`@string{short = "long form"}`)
	idx := ExtractBib(green)
	require.Len(t, idx.StringDefs, 1)
	assert.Equal(t, "short", idx.StringDefs[0].Name)
	assert.Empty(t, idx.Entries)
}

func TestExtractBibMultipleEntries(t *testing.T) {
	green := bibtex.Parse(`@article{a, title = {A}}
@book{b, title = {B}}`)
	idx := ExtractBib(green)
	require.Len(t, idx.Entries, 2)
	assert.Equal(t, "a", idx.Entries[0].Key.Text)
	assert.Equal(t, "b", idx.Entries[1].Key.Text)
}
