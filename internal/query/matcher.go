package query

import "unicode"

// Match scores candidate text against a typed pattern with a
// subsequence-based fuzzy matcher in the SkimV2 style: every
// pattern rune must appear in order in text; consecutive runs, a match at
// the very start, and matches on word boundaries score bonuses, while gaps
// between matched runes are penalised. The boolean result is false when
// the pattern is not a subsequence of text at all.
//
// An empty pattern matches everything with a zero score, so the candidate
// sort order degrades to plain label order when the user has typed
// nothing yet.
func Match(pattern, text string) (int, bool) {
	if pattern == "" {
		return 0, true
	}
	pat := []rune(pattern)
	src := []rune(text)
	if len(pat) > len(src) {
		return 0, false
	}

	score := 0
	pi := 0
	lastMatch := -1
	for si := 0; si < len(src) && pi < len(pat); si++ {
		if !runesEqualFold(src[si], pat[pi]) {
			continue
		}
		bonus := 0
		switch {
		case si == 0:
			bonus += bonusPrefix
		case lastMatch == si-1:
			bonus += bonusConsecutive
		case isWordBoundary(src, si):
			bonus += bonusBoundary
		}
		if src[si] == pat[pi] {
			bonus += bonusCaseMatch
		}
		if lastMatch >= 0 {
			gap := si - lastMatch - 1
			if gap > maxGapPenalty {
				gap = maxGapPenalty
			}
			score -= gap * penaltyGap
		}
		score += bonusBase + bonus
		lastMatch = si
		pi++
	}
	if pi < len(pat) {
		return 0, false
	}
	return score, true
}

const (
	bonusBase        = 16
	bonusPrefix      = 8
	bonusConsecutive = 8
	bonusBoundary    = 4
	bonusCaseMatch   = 1
	penaltyGap       = 1
	maxGapPenalty    = 8
)

func runesEqualFold(a, b rune) bool {
	return unicode.ToLower(a) == unicode.ToLower(b)
}

// isWordBoundary reports whether the rune at index i starts a new word:
// it follows a separator (:, -, _, ., /) or is an upper-case rune after a
// lower-case one (camelCase).
func isWordBoundary(src []rune, i int) bool {
	if i == 0 {
		return true
	}
	prev := src[i-1]
	switch prev {
	case ':', '-', '_', '.', '/', ' ':
		return true
	}
	return unicode.IsUpper(src[i]) && unicode.IsLower(prev)
}
