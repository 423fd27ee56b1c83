package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"gigradar/internal/catalog"
	"gigradar/shared/go/models"
)

// ErrInvalidEvent indicates validation failure for event data.
var ErrInvalidEvent = errors.New("invalid event")

// UpsertEvent inserts or refreshes a listing, keyed by its canonical URL.
// Listings without a URL have no stable identity and are rejected.
func (s *Store) UpsertEvent(rec models.EventRecord) error {
	url := catalog.CanonicalURL(catalog.Field(rec.URL))
	if url == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidEvent)
	}

	ctx := context.Background()

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO events (url, title, full_title, description, venue, city, event_date, dates, price, category, source, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (url)
		DO UPDATE SET
			title = EXCLUDED.title,
			full_title = EXCLUDED.full_title,
			description = EXCLUDED.description,
			venue = EXCLUDED.venue,
			city = EXCLUDED.city,
			event_date = EXCLUDED.event_date,
			dates = EXCLUDED.dates,
			price = EXCLUDED.price,
			category = EXCLUDED.category,
			source = EXCLUDED.source,
			updated_at = NOW()
	`, url, rec.Title, rec.FullTitle, rec.Description, rec.Venue, rec.City,
		rec.Date, pq.Array(rec.Dates), rec.Price, rec.Category, rec.Source); err != nil {
		return fmt.Errorf("upsert event: %w", err)
	}

	return nil
}

// ListEvents returns stored listings matching the filter, newest first.
func (s *Store) ListEvents(filter models.EventFilter) ([]models.EventRecord, error) {
	ctx := context.Background()

	query := `
		SELECT url, title, full_title, description, venue, city, event_date, dates, price, category, source
		FROM events
	`

	var (
		clauses []string
		args    []any
	)

	if category := strings.TrimSpace(filter.Category); category != "" {
		args = append(args, category)
		clauses = append(clauses, fmt.Sprintf("category = $%d", len(args)))
	}
	if source := strings.TrimSpace(filter.Source); source != "" {
		args = append(args, source)
		clauses = append(clauses, fmt.Sprintf("source = $%d", len(args)))
	}
	if city := strings.TrimSpace(filter.City); city != "" {
		args = append(args, "%"+city+"%")
		clauses = append(clauses, fmt.Sprintf("city ILIKE $%d", len(args)))
	}

	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY updated_at DESC, url ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select events: %w", err)
	}
	defer rows.Close()

	var events []models.EventRecord
	for rows.Next() {
		rec, err := scanEventRow(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}

// scanEventRow maps one events row to the canonical record shape, with NULL
// columns read as absent.
func scanEventRow(rows *sql.Rows) (models.EventRecord, error) {
	var (
		rec models.EventRecord

		title       sql.NullString
		fullTitle   sql.NullString
		description sql.NullString
		venue       sql.NullString
		city        sql.NullString
		eventDate   sql.NullString
		dates       pq.StringArray
		price       sql.NullString
		category    sql.NullString
		source      sql.NullString
	)

	if err := rows.Scan(
		&rec.URL,
		&title,
		&fullTitle,
		&description,
		&venue,
		&city,
		&eventDate,
		&dates,
		&price,
		&category,
		&source,
	); err != nil {
		return models.EventRecord{}, fmt.Errorf("scan event: %w", err)
	}

	rec.Title = title.String
	rec.FullTitle = fullTitle.String
	rec.Description = description.String
	rec.Venue = venue.String
	rec.City = city.String
	rec.Date = eventDate.String
	rec.Dates = []string(dates)
	rec.Price = price.String
	rec.Category = category.String
	rec.Source = source.String

	return rec, nil
}
