package view

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gigradar/internal/catalog"
	"gigradar/shared/go/models"
)

// Render is one displayable page of the view: a header, pre-formatted
// display lines, the city facets, and the raw page records for transports
// that build their own markup.
type Render struct {
	Header     string               `json:"header"`
	Lines      []string             `json:"lines"`
	Records    []models.EventRecord `json:"records"`
	Cities     []string             `json:"cities"`
	CityFilter string               `json:"city_filter,omitempty"`
	SortMode   SortMode             `json:"sort_mode"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"total_pages"`
	Total      int                  `json:"total"`
}

var isoDisplayRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)

// monthGenitive renders a month number the way listings write dates.
var monthGenitive = [...]string{
	"", "января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// Render produces the current page. An empty catalog yields the explicit
// not-found state instead of a blank page.
func (v *View) Render() Render {
	total := len(v.catalog)
	r := Render{
		Lines:      []string{},
		Records:    []models.EventRecord{},
		Cities:     v.Cities(),
		CityFilter: v.cityFilter,
		SortMode:   v.sortMode,
		Page:       v.page,
		TotalPages: v.totalPages(),
		Total:      total,
	}

	if total == 0 {
		r.Header = "Концерты не найдены"
		return r
	}

	start := v.page * v.pageSize
	end := start + v.pageSize
	if end > total {
		end = total
	}
	page := v.catalog[start:end]
	r.Records = append(r.Records, page...)

	r.Header = fmt.Sprintf("Найдено концертов: %d. Показаны %d–%d", total, start+1, end)
	if v.cityFilter != "" {
		r.Header += fmt.Sprintf(" (город: %s)", v.cityFilter)
	}

	if v.sortMode == SortByArtist {
		r.Lines = renderGrouped(page, start)
	} else {
		r.Lines = renderFlat(page, start)
	}
	return r
}

// renderFlat numbers the page records straight through, continuing the
// numbering across pages.
func renderFlat(page []models.EventRecord, offset int) []string {
	lines := make([]string, 0, len(page))
	for i, rec := range page {
		lines = append(lines, formatRecord(offset+i+1, rec))
	}
	return lines
}

// renderGrouped emits an artist header line before each run of records
// attributed to the same artist.
func renderGrouped(page []models.EventRecord, offset int) []string {
	var lines []string
	prev := ""
	for i, rec := range page {
		label := artistLabel(rec)
		if label != prev {
			lines = append(lines, "🎤 "+label)
			prev = label
		}
		lines = append(lines, formatRecord(offset+i+1, rec))
	}
	return lines
}

func formatRecord(n int, rec models.EventRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s", n, recordTitle(rec))
	b.WriteString("\n   📅 " + displayDate(rec))
	if t := catalog.EventTime(rec); t != "" {
		b.WriteString(", " + t)
	}
	if venue := catalog.EventVenue(rec); venue != "" {
		b.WriteString("\n   📍 " + venue)
	}
	if price := catalog.Field(rec.Price); price != "" {
		b.WriteString("\n   💰 " + price)
	}
	if url := catalog.Field(rec.URL); url != "" {
		b.WriteString("\n   🔗 " + url)
	}
	return b.String()
}

func recordTitle(rec models.EventRecord) string {
	if t := catalog.Field(rec.Title); t != "" {
		return t
	}
	if t := catalog.Field(rec.FullTitle); t != "" {
		return t
	}
	return "Без названия"
}

// displayDate renders the record's raw date for humans: ISO dates are
// rewritten as "<day> <month>", everything else is shown as the source
// wrote it.
func displayDate(rec models.EventRecord) string {
	raw := catalog.EventDate(rec)
	if raw == "" {
		return "Дата не указана"
	}
	if m := isoDisplayRe.FindStringSubmatch(raw); m != nil {
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if month >= 1 && month <= 12 {
			return fmt.Sprintf("%d %s %s", day, monthGenitive[month], m[1])
		}
	}
	return raw
}
