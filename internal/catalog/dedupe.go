package catalog

import (
	"strings"

	"gigradar/shared/go/models"
)

// CanonicalURL strips the query string and any trailing slashes from a URL,
// producing the identity key used for deduplication. Two listings are the
// same event iff their canonical URLs are equal.
func CanonicalURL(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		u = u[:i]
	}
	return strings.TrimRight(u, "/")
}

// Dedupe removes repeated listings, keyed by canonical URL. The first
// occurrence (in input order) of each key wins. Records without a URL are
// never considered duplicates of anything and are always retained.
// Dedupe is idempotent.
func Dedupe(records []models.EventRecord) []models.EventRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]models.EventRecord, 0, len(records))
	for _, rec := range records {
		url := Field(rec.URL)
		if url == "" {
			out = append(out, rec)
			continue
		}
		key := CanonicalURL(url)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}
