package catalog

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Normalize canonicalizes a name or free-text snippet for comparison:
// lowercase, runs of whitespace collapsed to a single space, trimmed.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// cleanText strips every character that is not a letter, digit, underscore
// or whitespace. Matching always runs over cleaned text so punctuation
// differences between sources never break a match.
func cleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isWordRune(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// containsWord reports whether phrase occurs in text bounded by non-word
// characters (or the ends of the text) on both sides.
func containsWord(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	for i := 0; ; {
		j := strings.Index(text[i:], phrase)
		if j < 0 {
			return false
		}
		start := i + j
		end := start + len(phrase)

		boundedLeft := start == 0
		if !boundedLeft {
			before, _ := utf8.DecodeLastRuneInString(text[:start])
			boundedLeft = !isWordRune(before)
		}
		boundedRight := end == len(text)
		if !boundedRight {
			after, _ := utf8.DecodeRuneInString(text[end:])
			boundedRight = !isWordRune(after)
		}
		if boundedLeft && boundedRight {
			return true
		}
		i = start + 1
	}
}

// runePositions returns the rune offsets of every occurrence of sub in text.
// Offsets are counted in runes so distance thresholds behave the same for
// Cyrillic and Latin text.
func runePositions(text, sub string) []int {
	if sub == "" {
		return nil
	}
	var positions []int
	for i := 0; ; {
		j := strings.Index(text[i:], sub)
		if j < 0 {
			break
		}
		byteOff := i + j
		positions = append(positions, utf8.RuneCountInString(text[:byteOff]))
		i = byteOff + len(sub)
	}
	return positions
}
