package store

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestTrackedArtistsByToken(t *testing.T) {
	s, mock, tokens := newTestStore(t)

	token, err := tokens.GenerateToken(42)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT user_id
		FROM sessions
		WHERE token = $1 AND expires_at > NOW()
	`)).
		WithArgs(token).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(int64(42)))

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT name
		FROM tracked_artists
		WHERE user_id = $1
		ORDER BY position ASC
	`)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).
			AddRow("Сплин").
			AddRow("Monetochka"))

	names, err := s.TrackedArtistsByToken(token)
	if err != nil {
		t.Fatalf("TrackedArtistsByToken: %v", err)
	}
	if len(names) != 2 || names[0] != "Сплин" || names[1] != "Monetochka" {
		t.Fatalf("unexpected names: %v", names)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReplaceTrackedArtists(t *testing.T) {
	s, mock, tokens := newTestStore(t)

	token, err := tokens.GenerateToken(42)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT user_id
		FROM sessions
		WHERE token = $1 AND expires_at > NOW()
	`)).
		WithArgs(token).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(int64(42)))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`
		DELETE FROM tracked_artists
		WHERE user_id = $1
	`)).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO tracked_artists (user_id, position, name)
		VALUES ($1, $2, $3)
	`)).
		WithArgs(int64(42), 0, "Aigel").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := s.ReplaceTrackedArtists(token, []string{"Aigel"}); err != nil {
		t.Fatalf("ReplaceTrackedArtists: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReplaceTrackedArtistsEmptyName(t *testing.T) {
	s, _, tokens := newTestStore(t)

	token, err := tokens.GenerateToken(42)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if err := s.ReplaceTrackedArtists(token, []string{"  "}); err == nil {
		t.Fatalf("expected error for blank artist name")
	}
}

func TestListTrackedArtists(t *testing.T) {
	s, mock, _ := newTestStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT DISTINCT name
		FROM tracked_artists
		ORDER BY name ASC
		LIMIT $1
	`)).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).
			AddRow("Aigel").
			AddRow("Сплин"))

	names, err := s.ListTrackedArtists(50)
	if err != nil {
		t.Fatalf("ListTrackedArtists: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 names, got %d", len(names))
	}
}
