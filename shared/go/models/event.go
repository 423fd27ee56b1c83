package models

// EventRecord is a single concert/event listing in canonical shape,
// regardless of which source produced it.
//
// Scraped sources are loose about optional fields: a field may be empty or
// hold the "-" placeholder instead of being omitted. Readers must treat both
// forms as absent (see catalog.Field).
type EventRecord struct {
	URL           string   `json:"url,omitempty"` // dedup identity (canonicalized)
	Title         string   `json:"title,omitempty"`
	FullTitle     string   `json:"full_title,omitempty"`
	Description   string   `json:"description,omitempty"`
	Venue         string   `json:"venue,omitempty"`
	City          string   `json:"city,omitempty"`
	Date          string   `json:"date,omitempty"`  // raw date string as scraped
	Dates         []string `json:"dates,omitempty"` // ordered raw date strings, if the source lists several
	Price         string   `json:"price,omitempty"`
	Category      string   `json:"category,omitempty"`
	Source        string   `json:"source,omitempty"`         // origin system tag, e.g. "afisha", "ticketmaster"
	MatchedArtist string   `json:"matched_artist,omitempty"` // comma-joined artist names, set during aggregation
	Recommended   bool     `json:"is_recommended,omitempty"`
}

// EventFilter narrows event listings loaded from storage.
type EventFilter struct {
	Category string
	Source   string
	City     string
}
