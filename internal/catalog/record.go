package catalog

import (
	"regexp"
	"strings"

	"gigradar/shared/go/models"
)

// Scraped sources separate the date/time block from the venue with a bullet.
const descriptionSeparator = "•"

var (
	timeInDateRe   = regexp.MustCompile(`,\s*\d{1,2}:\d{2}`)
	relativeDayRe  = regexp.MustCompile(`(?i)^(завтра|сегодня|послезавтра)\s+`)
	clockRe        = regexp.MustCompile(`\d{1,2}:\d{2}`)
	maxJoinedDates = 3
)

// Field reads a record field with the scraper placeholder treated as
// absent: both "" and "-" mean the source did not supply the value.
func Field(s string) string {
	s = strings.TrimSpace(s)
	if s == "-" {
		return ""
	}
	return s
}

// EventDate returns the best-known raw date string for a record: the
// explicit dates list first, then the date field, then the date segment of
// the description. Empty when no source field carries a date.
func EventDate(rec models.EventRecord) string {
	if len(rec.Dates) > 0 {
		dates := rec.Dates
		if len(dates) > maxJoinedDates {
			dates = dates[:maxJoinedDates]
		}
		var kept []string
		for _, d := range dates {
			if d := Field(d); d != "" {
				kept = append(kept, d)
			}
		}
		if len(kept) > 0 {
			return strings.Join(kept, ", ")
		}
	}
	if d := Field(rec.Date); d != "" {
		return d
	}
	return dateFromDescription(Field(rec.Description))
}

// EventTime returns the time-of-day embedded in the description, if any.
func EventTime(rec models.EventRecord) string {
	desc := Field(rec.Description)
	if desc == "" {
		return ""
	}
	head := strings.TrimSpace(strings.SplitN(desc, descriptionSeparator, 2)[0])
	return clockRe.FindString(head)
}

// EventVenue returns the record's venue, falling back to the venue segment
// of the description.
func EventVenue(rec models.EventRecord) string {
	if v := Field(rec.Venue); v != "" {
		return v
	}
	desc := Field(rec.Description)
	if desc == "" {
		return ""
	}
	parts := strings.SplitN(desc, descriptionSeparator, 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// dateFromDescription extracts the date portion of a scraped description:
// the text before the separator, with the time-of-day and relative-day
// words ("today", "tomorrow") stripped.
func dateFromDescription(desc string) string {
	if desc == "" {
		return ""
	}
	head := strings.TrimSpace(strings.SplitN(desc, descriptionSeparator, 2)[0])
	head = timeInDateRe.ReplaceAllString(head, "")
	head = relativeDayRe.ReplaceAllString(head, "")
	return strings.TrimSpace(head)
}
