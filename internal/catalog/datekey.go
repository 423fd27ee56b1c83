package catalog

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateKey is a comparable (year, month, day) triple extracted from a raw
// date string. It is used purely as a sort key, never for display.
type DateKey struct {
	Year  int
	Month int
	Day   int
}

// UnknownDate is the sentinel for unparseable dates; it sorts after every
// real date.
var UnknownDate = DateKey{Year: 9999, Month: 12, Day: 31}

// Less orders keys chronologically.
func (k DateKey) Less(other DateKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	if k.Month != other.Month {
		return k.Month < other.Month
	}
	return k.Day < other.Day
}

var (
	isoDateRe     = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
	dottedDateRe  = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{4})`)
	slashedDateRe = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)
	namedDateRe   = regexp.MustCompile(`(\d{1,2})\s+(\p{L}+)\s+(\d{4})`)
	namedNoYearRe = regexp.MustCompile(`(\d{1,2})\s+(\p{L}+)`)
	dayDotMonthRe = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})`)
)

// monthNames resolves month names in the two languages the sources use,
// both long and abbreviated forms.
var monthNames = map[string]int{
	"января": 1, "янв": 1, "февраля": 2, "фев": 2,
	"марта": 3, "мар": 3, "апреля": 4, "апр": 4,
	"мая": 5, "май": 5, "июня": 6, "июн": 6,
	"июля": 7, "июл": 7, "августа": 8, "авг": 8,
	"сентября": 9, "сен": 9, "октября": 10, "окт": 10,
	"ноября": 11, "ноя": 11, "декабря": 12, "дек": 12,

	"january": 1, "jan": 1, "february": 2, "feb": 2,
	"march": 3, "mar": 3, "april": 4, "apr": 4,
	"may": 5, "june": 6, "jun": 6,
	"july": 7, "jul": 7, "august": 8, "aug": 8,
	"september": 9, "sep": 9, "sept": 9, "october": 10, "oct": 10,
	"november": 11, "nov": 11, "december": 12, "dec": 12,
}

// SortKey parses a heterogeneous raw date string into a DateKey. Patterns
// are tried in priority order, first match wins; formats without a year
// assume the current calendar year. The function is total: empty input or
// no pattern match yields UnknownDate.
func SortKey(dateStr string) DateKey {
	s := strings.TrimSpace(dateStr)
	if s == "" {
		return UnknownDate
	}

	if m := isoDateRe.FindStringSubmatch(s); m != nil {
		return DateKey{Year: atoi(m[1]), Month: atoi(m[2]), Day: atoi(m[3])}
	}
	if m := dottedDateRe.FindStringSubmatch(s); m != nil {
		return DateKey{Year: atoi(m[3]), Month: atoi(m[2]), Day: atoi(m[1])}
	}
	if m := slashedDateRe.FindStringSubmatch(s); m != nil {
		return DateKey{Year: atoi(m[3]), Month: atoi(m[2]), Day: atoi(m[1])}
	}

	lower := strings.ToLower(s)
	if m := namedDateRe.FindStringSubmatch(lower); m != nil {
		month, ok := monthNames[m[2]]
		if !ok {
			month = 1
		}
		return DateKey{Year: atoi(m[3]), Month: month, Day: atoi(m[1])}
	}
	if m := namedNoYearRe.FindStringSubmatch(lower); m != nil {
		if month, ok := monthNames[m[2]]; ok {
			return DateKey{Year: time.Now().Year(), Month: month, Day: atoi(m[1])}
		}
	}

	// Bare DD.MM, but only when the digits are not the head of a
	// DD.MM.YYYY-like string (that form was already tried above). A
	// rejected candidate resumes the scan one byte further, so a later
	// standalone DD.MM still wins.
	for start := 0; start < len(s); {
		loc := dayDotMonthRe.FindStringSubmatchIndex(s[start:])
		if loc == nil {
			break
		}
		if rest := s[start+loc[1]:]; !startsDottedDigit(rest) {
			return DateKey{
				Year:  time.Now().Year(),
				Month: atoi(s[start+loc[4] : start+loc[5]]),
				Day:   atoi(s[start+loc[2] : start+loc[3]]),
			}
		}
		start += loc[0] + 1
	}

	return UnknownDate
}

func startsDottedDigit(s string) bool {
	return len(s) >= 2 && s[0] == '.' && s[1] >= '0' && s[1] <= '9'
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
