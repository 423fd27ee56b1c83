package catalog

import (
	"sort"
	"strings"

	"gigradar/shared/go/models"
)

// City is one gazetteer entry: a canonical display label plus the signals
// that identify the city in scraped data.
type City struct {
	Label     string   // canonical label, native spelling
	Slug      string   // URL path segment used by the listings site
	Native    []string // native-language variants, lowercase
	Romanized []string // romanized variants, lowercase
}

// Cities is the fixed gazetteer of cities the listings sources cover.
var Cities = []City{
	{
		Label:     "Москва",
		Slug:      "moscow",
		Native:    []string{"москва"},
		Romanized: []string{"moscow"},
	},
	{
		Label:     "Санкт-Петербург",
		Slug:      "saint-petersburg",
		Native:    []string{"санкт-петербург", "спб", "питер"},
		Romanized: []string{"saint petersburg", "st. petersburg", "st petersburg", "saint-petersburg"},
	},
	{
		Label:     "Екатеринбург",
		Slug:      "yekaterinburg",
		Native:    []string{"екатеринбург"},
		Romanized: []string{"yekaterinburg"},
	},
	{
		Label:     "Новосибирск",
		Slug:      "novosibirsk",
		Native:    []string{"новосибирск"},
		Romanized: []string{"novosibirsk"},
	},
	{
		Label:     "Казань",
		Slug:      "kazan",
		Native:    []string{"казань"},
		Romanized: []string{"kazan"},
	},
	{
		Label:     "Нижний Новгород",
		Slug:      "nizhny-novgorod",
		Native:    []string{"нижний новгород"},
		Romanized: []string{"nizhny novgorod", "nizhny-novgorod"},
	},
	{
		Label:     "Челябинск",
		Slug:      "chelyabinsk",
		Native:    []string{"челябинск"},
		Romanized: []string{"chelyabinsk"},
	},
	{
		Label:     "Самара",
		Slug:      "samara",
		Native:    []string{"самара"},
		Romanized: []string{"samara"},
	},
	{
		Label:     "Оренбург",
		Slug:      "orenburg",
		Native:    []string{"оренбург"},
		Romanized: []string{"orenburg"},
	},
}

// CityByLabel looks up a gazetteer entry by its canonical label.
func CityByLabel(label string) (City, bool) {
	for _, c := range Cities {
		if c.Label == label {
			return c, true
		}
	}
	return City{}, false
}

// variants returns every known spelling of the city, native first.
func (c City) variants() []string {
	return append(append([]string{}, c.Native...), c.Romanized...)
}

// Classify infers the canonical city label for a record from a waterfall of
// signals, first hit wins: URL path slug, explicit city field, description
// text, venue text. Returns "" when no signal matches; such records stay
// visible under the unfiltered view.
func Classify(rec models.EventRecord) string {
	if url := Field(rec.URL); url != "" {
		for _, c := range Cities {
			if strings.Contains(url, "/"+c.Slug+"/") {
				return c.Label
			}
		}
	}

	if cityField := Field(rec.City); cityField != "" {
		lower := strings.ToLower(cityField)
		for _, c := range Cities {
			for _, v := range c.variants() {
				// The field may hold extra text ("Москва, Россия") or an
				// abbreviation shorter than the variant, so match both ways.
				if strings.Contains(lower, v) || strings.Contains(v, lower) {
					return c.Label
				}
			}
		}
	}

	if desc := Field(rec.Description); desc != "" {
		if label := nativeMatch(desc); label != "" {
			return label
		}
	}

	if venue := Field(rec.Venue); venue != "" {
		if label := nativeMatch(venue); label != "" {
			return label
		}
	}

	return ""
}

// nativeMatch scans free text against native-language variants only:
// romanized names embedded in free text are too noisy to trust.
func nativeMatch(text string) string {
	lower := strings.ToLower(text)
	for _, c := range Cities {
		for _, v := range c.Native {
			if strings.Contains(lower, v) {
				return c.Label
			}
		}
	}
	return ""
}

// AvailableCities classifies every record and returns the sorted set of
// distinct city labels, for presentation as filter facets.
func AvailableCities(records []models.EventRecord) []string {
	set := make(map[string]struct{})
	for _, rec := range records {
		if label := Classify(rec); label != "" {
			set[label] = struct{}{}
		}
	}
	labels := make([]string, 0, len(set))
	for label := range set {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// MatchesCity reports whether a record belongs to the given city label.
// It is the filter-side mirror of Classify, slightly wider: it also checks
// romanized variants in free text and the title, so that a user-selected
// facet catches every record Classify would have assigned to it.
func MatchesCity(rec models.EventRecord, label string) bool {
	city, known := CityByLabel(label)
	terms := city.variants()
	slug := city.Slug
	if !known {
		lower := strings.ToLower(label)
		terms = []string{lower}
		slug = lower
	}

	if cityField := Field(rec.City); cityField != "" {
		lower := strings.ToLower(cityField)
		for _, term := range terms {
			if strings.Contains(lower, term) || strings.Contains(term, lower) {
				return true
			}
		}
	}

	if url := Field(rec.URL); url != "" && strings.Contains(url, "/"+slug+"/") {
		return true
	}

	for _, text := range []string{Field(rec.Description), Field(rec.Venue), Field(rec.Title)} {
		if text == "" {
			continue
		}
		lower := strings.ToLower(text)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				return true
			}
		}
	}

	return false
}

// FilterByCity keeps the records matching a city label and dedupes the
// result, preserving input order.
func FilterByCity(records []models.EventRecord, label string) []models.EventRecord {
	filtered := make([]models.EventRecord, 0, len(records))
	for _, rec := range records {
		if MatchesCity(rec, label) {
			filtered = append(filtered, rec)
		}
	}
	return Dedupe(filtered)
}
