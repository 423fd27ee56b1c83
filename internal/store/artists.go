package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArtist indicates validation failure for an artist name.
var ErrInvalidArtist = errors.New("invalid artist")

// TrackedArtistsByToken lists the artist names the authenticated user
// follows, in their stored order.
func (s *Store) TrackedArtistsByToken(token string) ([]string, error) {
	ctx := context.Background()

	userID, err := s.userIDForToken(ctx, token)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name
		FROM tracked_artists
		WHERE user_id = $1
		ORDER BY position ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select tracked artists: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan tracked artist: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracked artists: %w", err)
	}

	return names, nil
}

// ReplaceTrackedArtists swaps the user's tracked list for the given names,
// preserving their order. Used after a playlist scan so the next batch
// import covers the freshly scanned artists.
func (s *Store) ReplaceTrackedArtists(token string, names []string) error {
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: empty name", ErrInvalidArtist)
		}
	}

	ctx := context.Background()

	userID, err := s.userIDForToken(ctx, token)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM tracked_artists
		WHERE user_id = $1
	`, userID); err != nil {
		return fmt.Errorf("delete tracked artists: %w", err)
	}

	for i, name := range names {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tracked_artists (user_id, position, name)
			VALUES ($1, $2, $3)
		`, userID, i, name); err != nil {
			return fmt.Errorf("insert tracked artist: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return nil
}

// ListTrackedArtists returns the distinct artist names tracked by any user,
// capped at limit. The batch importer uses this as its work list.
func (s *Store) ListTrackedArtists(limit int) ([]string, error) {
	ctx := context.Background()

	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT name
		FROM tracked_artists
		ORDER BY name ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("select tracked artists: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan tracked artist: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracked artists: %w", err)
	}

	return names, nil
}
