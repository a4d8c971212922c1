package workspace

import "sort"

// Position is a zero-based LSP text position: Line is a line number,
// Character is a UTF-16 code-unit offset within that line.
type Position struct {
	Line      uint32
	Character uint32
}

// LineIndex converts between byte offsets, UTF-16 LSP positions, and
// line/column, built once per Document text (immutable, like the text
// itself).
type LineIndex struct {
	text       string
	lineStarts []int // byte offset of the first byte of each line
}

// NewLineIndex scans text once for line-start offsets.
func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{text: text, lineStarts: starts}
}

// LineCount returns the number of lines (including a trailing empty line
// after a final newline).
func (li *LineIndex) LineCount() int { return len(li.lineStarts) }

func (li *LineIndex) lineOf(offset int) int {
	// Largest index i such that lineStarts[i] <= offset.
	i := sort.Search(len(li.lineStarts), func(i int) bool { return li.lineStarts[i] > offset })
	return i - 1
}

// ToLineCol converts a byte offset into a zero-based line + UTF-16
// character position.
func (li *LineIndex) ToLineCol(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(li.text) {
		offset = len(li.text)
	}
	line := li.lineOf(offset)
	start := li.lineStarts[line]
	col := utf16Len(li.text[start:offset])
	return Position{Line: uint32(line), Character: uint32(col)}
}

// ToOffset converts a line/UTF-16-character position back into a byte
// offset, clamping out-of-range lines/characters to the nearest valid
// value.
func (li *LineIndex) ToOffset(pos Position) int {
	line := int(pos.Line)
	if line >= len(li.lineStarts) {
		return len(li.text)
	}
	if line < 0 {
		line = 0
	}
	start := li.lineStarts[line]
	end := len(li.text)
	if line+1 < len(li.lineStarts) {
		end = li.lineStarts[line+1]
	}
	return start + utf16ByteOffset(li.text[start:end], int(pos.Character))
}

// utf16Len returns the number of UTF-16 code units needed to represent s.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// utf16ByteOffset finds the byte offset within s corresponding to `units`
// UTF-16 code units, clamping to len(s) if units overruns the string.
func utf16ByteOffset(s string, units int) int {
	if units <= 0 {
		return 0
	}
	consumed := 0
	for i, r := range s {
		w := 1
		if r > 0xFFFF {
			w = 2
		}
		if consumed+w > units {
			return i
		}
		consumed += w
		if consumed == units {
			// advance past this rune
			return i + runeByteLen(r)
		}
	}
	return len(s)
}

func runeByteLen(r rune) int {
	switch {
	case r < 0x80:
		return 1
	case r < 0x800:
		return 2
	case r < 0x10000:
		return 3
	default:
		return 4
	}
}
