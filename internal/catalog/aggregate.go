package catalog

import (
	"strings"
	"unicode/utf8"

	"gigradar/shared/go/models"
)

// minDescriptionRunes gates matching against descriptions: very short
// blurbs produce too many accidental hits.
const minDescriptionRunes = 20

// Aggregator merges candidate records from multiple ingestion sources into
// a single attributed catalog for a list of artists.
type Aggregator struct {
	matcher *Matcher
}

// NewAggregator creates an Aggregator using the given matcher.
func NewAggregator(matcher *Matcher) *Aggregator {
	return &Aggregator{matcher: matcher}
}

// Aggregate scans every candidate record from every source against every
// artist name. Record fields are tried in priority order: title, full
// title, then description (exact-phrase rule only, and only when the
// description is long enough). Each matched record is emitted once, stamped
// with the comma-joined list of artist names that matched it, and the
// result is passed through Dedupe.
func (a *Aggregator) Aggregate(artistNames []string, sources ...[]models.EventRecord) []models.EventRecord {
	var candidates []models.EventRecord
	for _, src := range sources {
		candidates = append(candidates, src...)
	}

	matched := make([][]models.EventRecord, len(artistNames))
	for i, artist := range artistNames {
		for _, rec := range candidates {
			if a.matchRecord(artist, rec) {
				matched[i] = append(matched[i], rec)
			}
		}
	}

	// Attribution: canonical URL -> ordered set of artist names.
	attribution := make(map[string][]string)
	for i, artist := range artistNames {
		for _, rec := range matched[i] {
			url := Field(rec.URL)
			if url == "" {
				continue
			}
			key := CanonicalURL(url)
			if !containsString(attribution[key], artist) {
				attribution[key] = append(attribution[key], artist)
			}
		}
	}

	seen := make(map[string]struct{})
	var out []models.EventRecord
	for i := range artistNames {
		for _, rec := range matched[i] {
			url := Field(rec.URL)
			if url == "" {
				continue
			}
			key := CanonicalURL(url)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			rec.MatchedArtist = strings.Join(attribution[key], ", ")
			out = append(out, rec)
		}
	}

	return Dedupe(out)
}

// matchRecord tries the record's text fields in priority order.
func (a *Aggregator) matchRecord(artist string, rec models.EventRecord) bool {
	if title := Field(rec.Title); title != "" && a.matcher.Matches(artist, title) {
		return true
	}
	if full := Field(rec.FullTitle); full != "" && a.matcher.Matches(artist, full) {
		return true
	}
	if desc := Field(rec.Description); utf8.RuneCountInString(desc) > minDescriptionRunes {
		return a.matcher.MatchesPhrase(artist, desc)
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
