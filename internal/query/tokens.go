package query

import (
	"sort"

	"texlab-go/internal/project"
	"texlab-go/internal/semantic"
	"texlab-go/internal/syntax"
	"texlab-go/internal/workspace"
)

// The engine exposes a single semantic token type (label) with two
// modifiers. The legend is published by the
// transport during initialize.
const (
	TokenTypeLabel uint32 = 0

	ModifierUndefined uint32 = 1 << 0
	ModifierUnused    uint32 = 1 << 1
)

// TokenTypes and TokenModifiers are the legend, index-aligned with the
// ids above.
var (
	TokenTypes     = []string{"label"}
	TokenModifiers = []string{"undefined", "unused"}
)

// SemanticTokens produces the delta-encoded token list covering every
// label occurrence inside viewport, sorted by start offset and encoded as
// (delta_line, delta_start, length, type_id, modifier_bitset) per the LSP
// delta format.
func SemanticTokens(proj *project.Project, doc *workspace.Document, viewport syntax.Range) []uint32 {
	if doc.Tex == nil {
		return nil
	}

	defined := map[string]bool{}
	referenced := map[string]bool{}
	for _, d := range proj.Documents {
		if d.Tex == nil {
			continue
		}
		for _, l := range d.Tex.Summary.Labels {
			if l.Kind == semantic.LabelDefinition {
				defined[l.Name.Text] = true
			} else {
				referenced[l.Name.Text] = true
			}
		}
	}

	type tok struct {
		rng       syntax.Range
		modifiers uint32
	}
	var toks []tok
	for _, l := range doc.Tex.Summary.Labels {
		if l.Name.Range.Start < viewport.Start || l.Name.Range.End > viewport.End {
			continue
		}
		var mods uint32
		if !defined[l.Name.Text] {
			mods |= ModifierUndefined
		}
		if !referenced[l.Name.Text] {
			mods |= ModifierUnused
		}
		toks = append(toks, tok{rng: l.Name.Range, modifiers: mods})
	}
	sort.SliceStable(toks, func(i, j int) bool { return toks[i].rng.Start < toks[j].rng.Start })

	data := make([]uint32, 0, len(toks)*5)
	prevLine, prevStart := uint32(0), uint32(0)
	for _, t := range toks {
		pos := doc.Lines.ToLineCol(t.rng.Start)
		end := doc.Lines.ToLineCol(t.rng.End)
		length := end.Character - pos.Character
		deltaLine := pos.Line - prevLine
		deltaStart := pos.Character
		if deltaLine == 0 {
			deltaStart = pos.Character - prevStart
		}
		data = append(data, deltaLine, deltaStart, length, TokenTypeLabel, t.modifiers)
		prevLine, prevStart = pos.Line, pos.Character
	}
	return data
}
