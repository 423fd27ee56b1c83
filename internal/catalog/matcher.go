package catalog

import (
	"strings"
	"unicode/utf8"
)

// stopWords are tokens that carry no identity when they appear inside an
// artist name: prepositions and conjunctions in both source languages, plus
// generic event-type nouns that show up in almost every listing title.
var stopWords = map[string]struct{}{
	"в": {}, "на": {}, "и": {}, "с": {}, "для": {}, "от": {}, "из": {},
	"по": {}, "к": {}, "о": {}, "а": {}, "но": {}, "или": {},
	"the": {}, "and": {}, "in": {}, "on": {}, "at": {}, "for": {},
	"of": {}, "to": {}, "with": {}, "by": {},
	"концерт": {}, "концерты": {}, "шоу": {}, "стендап": {},
	"stand": {}, "up": {}, "standup": {},
}

// MatcherConfig tunes the fuzzy matching thresholds. The defaults preserve
// the production tuning; they are exposed as parameters rather than
// re-derived because their exact values are load-bearing for recall.
type MatcherConfig struct {
	// MinArtistRunes rejects artist names shorter than this, counted in
	// runes with spaces removed.
	MinArtistRunes int
	// MinPhraseRunes is the minimum cleaned-name length for the
	// exact-phrase rule.
	MinPhraseRunes int
	// MinWordRunes is the minimum length of a word considered significant.
	MinWordRunes int
	// MinSingleWordRunes is the minimum word length for the single-word
	// fallback rule.
	MinSingleWordRunes int
	// ProximityWindow is the maximum distance in runes between the two
	// words of a two-word name.
	ProximityWindow int
	// MultiWordMinHits is how many words of a 3+ word name must appear.
	MultiWordMinHits int
}

// DefaultMatcherConfig returns the production thresholds.
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		MinArtistRunes:     3,
		MinPhraseRunes:     4,
		MinWordRunes:       3,
		MinSingleWordRunes: 4,
		ProximityWindow:    100,
		MultiWordMinHits:   2,
	}
}

// Matcher decides whether an artist name is present in a block of free text
// (titles, descriptions) using an escalating set of heuristics: exact
// whole-phrase match first, then word proximity for reordered or decorated
// names, then a single-word fallback. Length floors suppress false
// positives on short tokens.
type Matcher struct {
	cfg MatcherConfig
}

// NewMatcher creates a Matcher with the given thresholds.
func NewMatcher(cfg MatcherConfig) *Matcher {
	return &Matcher{cfg: cfg}
}

// Matches reports whether artistName is present in text.
func (m *Matcher) Matches(artistName, text string) bool {
	if text == "" || artistName == "" {
		return false
	}

	normArtist := Normalize(artistName)
	if utf8.RuneCountInString(strings.ReplaceAll(normArtist, " ", "")) < m.cfg.MinArtistRunes {
		return false
	}

	artistClean := cleanText(normArtist)
	textClean := cleanText(strings.ToLower(text))

	if utf8.RuneCountInString(artistClean) >= m.cfg.MinPhraseRunes &&
		containsWord(textClean, artistClean) {
		return true
	}

	words := m.significantWords(artistClean)
	switch {
	case len(words) == 2:
		if strings.Contains(textClean, words[0]) && strings.Contains(textClean, words[1]) &&
			m.withinWindow(textClean, words[0], words[1]) {
			return true
		}
	case len(words) >= 3:
		found := 0
		for _, w := range words {
			if strings.Contains(textClean, w) {
				found++
			}
		}
		if found >= m.cfg.MultiWordMinHits {
			return true
		}
	case len(words) == 1:
		w := words[0]
		if utf8.RuneCountInString(w) >= m.cfg.MinSingleWordRunes && containsWord(textClean, w) {
			return true
		}
	}

	return false
}

// MatchesPhrase applies only the exact whole-phrase rule. Used for
// low-trust text such as descriptions, where the looser word rules would
// produce too many false positives.
func (m *Matcher) MatchesPhrase(artistName, text string) bool {
	if text == "" || artistName == "" {
		return false
	}
	artistClean := cleanText(Normalize(artistName))
	if utf8.RuneCountInString(artistClean) < m.cfg.MinPhraseRunes {
		return false
	}
	return containsWord(cleanText(strings.ToLower(text)), artistClean)
}

// significantWords splits a cleaned artist name into the words that carry
// identity: long enough and not stop-words.
func (m *Matcher) significantWords(artistClean string) []string {
	var words []string
	for _, w := range strings.Fields(artistClean) {
		if utf8.RuneCountInString(w) < m.cfg.MinWordRunes {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		words = append(words, w)
	}
	return words
}

// withinWindow reports whether any occurrence of a sits within the
// proximity window of any occurrence of b.
func (m *Matcher) withinWindow(text, a, b string) bool {
	for _, x := range runePositions(text, a) {
		for _, y := range runePositions(text, b) {
			d := x - y
			if d < 0 {
				d = -d
			}
			if d <= m.cfg.ProximityWindow {
				return true
			}
		}
	}
	return false
}
