package store

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"gigradar/shared/go/auth"
)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock, *auth.TokenManager) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens := auth.NewTokenManager("test-secret")
	return New(db, tokens), mock, tokens
}

func TestCreateUserSuccess(t *testing.T) {
	s, mock, _ := newTestStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id
	`)).
		WithArgs("alice", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO tracked_artists (user_id, position, name)
		VALUES ($1, $2, $3)
	`)).
		WithArgs(int64(7), 0, "Сплин").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := s.CreateUser(" alice ", "secret", []string{"Сплин"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	s, mock, _ := newTestStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id
	`)).
		WithArgs("alice", sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	if err := s.CreateUser("alice", "secret", nil); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateUserMissingFields(t *testing.T) {
	s, _, _ := newTestStore(t)

	if err := s.CreateUser("", "secret", nil); err == nil {
		t.Fatalf("expected error for empty username")
	}
	if err := s.CreateUser("alice", "", nil); err == nil {
		t.Fatalf("expected error for empty password")
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	s, mock, _ := newTestStore(t)

	hash, err := auth.HashPassword("secret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, password_hash
		FROM users
		WHERE username = $1
	`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}).AddRow(int64(7), hash))
	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO sessions (token, user_id, expires_at)
		VALUES ($1, $2, $3)
	`)).
		WithArgs(sqlmock.AnyArg(), int64(7), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	token, err := s.Authenticate("alice", "secret")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a token")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	s, mock, _ := newTestStore(t)

	hash, err := auth.HashPassword("secret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, password_hash
		FROM users
		WHERE username = $1
	`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}).AddRow(int64(7), hash))

	if _, err := s.Authenticate("alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateUnknownUser(t *testing.T) {
	s, mock, _ := newTestStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, password_hash
		FROM users
		WHERE username = $1
	`)).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	if _, err := s.Authenticate("ghost", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUserIDByToken(t *testing.T) {
	s, mock, tokens := newTestStore(t)

	token, err := tokens.GenerateToken(7)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT user_id
		FROM sessions
		WHERE token = $1 AND expires_at > NOW()
	`)).
		WithArgs(token).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(int64(7)))

	userID, err := s.UserIDByToken(token)
	if err != nil {
		t.Fatalf("UserIDByToken: %v", err)
	}
	if userID != 7 {
		t.Fatalf("userID = %d, want 7", userID)
	}
}

func TestUserIDByTokenMalformed(t *testing.T) {
	s, _, _ := newTestStore(t)

	if _, err := s.UserIDByToken("not-a-token"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestUserIDByTokenRevoked(t *testing.T) {
	s, mock, tokens := newTestStore(t)

	token, err := tokens.GenerateToken(7)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT user_id
		FROM sessions
		WHERE token = $1 AND expires_at > NOW()
	`)).
		WithArgs(token).
		WillReturnError(sql.ErrNoRows)

	if _, err := s.UserIDByToken(token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
