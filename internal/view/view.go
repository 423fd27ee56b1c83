package view

import (
	"sort"

	"gigradar/internal/catalog"
	"gigradar/shared/go/models"
)

// SortMode selects the ordering of the catalog.
type SortMode string

const (
	SortByDate   SortMode = "date"
	SortByArtist SortMode = "artist"
)

// AllCities is the filter value that clears the city filter.
const AllCities = "all"

// DefaultPageSize is the number of records shown per page.
const DefaultPageSize = 10

const unknownArtistLabel = "Неизвестный исполнитель"

// ParseSortMode validates a raw sort-mode string from the transport layer.
func ParseSortMode(s string) (SortMode, bool) {
	switch SortMode(s) {
	case SortByDate:
		return SortByDate, true
	case SortByArtist:
		return SortByArtist, true
	}
	return "", false
}

// View is one user's working state over a fixed catalog: the active city
// filter, sort mode and page. The original catalog is immutable after
// construction; the visible catalog is always a filtered and sorted
// projection of it.
type View struct {
	catalog  []models.EventRecord
	original []models.EventRecord

	cityFilter string // "" means no filter
	sortMode   SortMode
	page       int
	pageSize   int
	cities     []string
}

// New builds a view over the given records. The input is deduplicated once,
// facets are computed from the deduplicated snapshot, and the initial order
// is by date.
func New(records []models.EventRecord) *View {
	deduped := catalog.Dedupe(records)
	v := &View{
		original: deduped,
		catalog:  append([]models.EventRecord(nil), deduped...),
		sortMode: SortByDate,
		pageSize: DefaultPageSize,
		cities:   catalog.AvailableCities(deduped),
	}
	v.applySort()
	return v
}

// All returns the unfiltered catalog snapshot.
func (v *View) All() []models.EventRecord {
	return append([]models.EventRecord(nil), v.original...)
}

// Cities returns the facet list computed at construction.
func (v *View) Cities() []string {
	return append([]string(nil), v.cities...)
}

// SelectCity filters the catalog to one city label, or clears the filter
// when label is empty or AllCities. The current sort mode is re-applied and
// the page resets to the start.
func (v *View) SelectCity(label string) {
	if label == "" || label == AllCities {
		v.cityFilter = ""
		v.catalog = append([]models.EventRecord(nil), v.original...)
	} else {
		v.cityFilter = label
		v.catalog = catalog.FilterByCity(v.original, label)
	}
	v.applySort()
	v.page = 0
}

// SetSortMode re-sorts the visible catalog and resets the page.
func (v *View) SetSortMode(mode SortMode) {
	v.sortMode = mode
	v.applySort()
	v.page = 0
}

// SetPage moves to page n, clamped into the valid range. Out-of-range
// requests after a catalog shrink clamp rather than fail.
func (v *View) SetPage(n int) {
	last := v.totalPages() - 1
	if last < 0 {
		last = 0
	}
	if n < 0 {
		n = 0
	}
	if n > last {
		n = last
	}
	v.page = n
}

// Page returns the current zero-based page index.
func (v *View) Page() int {
	return v.page
}

func (v *View) totalPages() int {
	if len(v.catalog) == 0 {
		return 0
	}
	return (len(v.catalog) + v.pageSize - 1) / v.pageSize
}

// applySort orders the visible catalog for the active sort mode and re-runs
// dedup afterwards as a safety net against reintroduced repeats.
func (v *View) applySort() {
	switch v.sortMode {
	case SortByArtist:
		v.sortByArtist()
	default:
		v.sortByDate()
	}
	v.catalog = catalog.Dedupe(v.catalog)
}

func (v *View) sortByDate() {
	sort.SliceStable(v.catalog, func(i, j int) bool {
		ki := catalog.SortKey(catalog.EventDate(v.catalog[i]))
		kj := catalog.SortKey(catalog.EventDate(v.catalog[j]))
		return ki.Less(kj)
	})
}

// sortByArtist groups records by their attributed artist, orders the groups
// alphabetically by label, and concatenates the groups keeping each group's
// internal order.
func (v *View) sortByArtist() {
	groups := make(map[string][]models.EventRecord)
	for _, rec := range v.catalog {
		groups[artistLabel(rec)] = append(groups[artistLabel(rec)], rec)
	}
	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	out := make([]models.EventRecord, 0, len(v.catalog))
	for _, label := range labels {
		out = append(out, groups[label]...)
	}
	v.catalog = out
}

func artistLabel(rec models.EventRecord) string {
	if a := catalog.Field(rec.MatchedArtist); a != "" {
		return a
	}
	return unknownArtistLabel
}
