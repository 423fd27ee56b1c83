package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"gigradar/shared/go/auth"
)

var (
	// ErrUserExists signals the username is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials indicates a login failure.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnauthorized indicates an invalid or missing session.
	ErrUnauthorized = errors.New("unauthorized")

	dummyPasswordHash = []byte("$2a$10$CwTycUXWue0Thq9StjUM0uJ8n4VWeNseyX2fA9DE.D7su7J6iYGTC")
)

// Store provides persistence backed by Postgres.
type Store struct {
	db     *sql.DB
	tokens *auth.TokenManager
}

// New sets up a Store using the provided database handle and token manager.
func New(db *sql.DB, tokens *auth.TokenManager) *Store {
	return &Store{db: db, tokens: tokens}
}

// CreateUser registers a new user with an optional starter list of tracked
// artists.
func (s *Store) CreateUser(username, password string, artists []string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return fmt.Errorf("username and password are required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var userID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id
	`, username, hash).Scan(&userID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	for i, name := range artists {
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

// Authenticate validates credentials and returns a signed session token.
func (s *Store) Authenticate(username, password string) (string, error) {
	ctx := context.Background()

	var (
		userID int64
		hash   string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, password_hash
		FROM users
		WHERE username = $1
	`, username).Scan(&userID, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if err := auth.VerifyPassword(password, hash); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(userID)
	if err != nil {
		return "", fmt.Errorf("create token: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, expires_at)
		VALUES ($1, $2, $3)
	`, token, userID, auth.TokenExpiry()); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	return token, nil
}

// UserIDByToken resolves a session token to its owner.
func (s *Store) UserIDByToken(token string) (int64, error) {
	return s.userIDForToken(context.Background(), token)
}

// userIDForToken checks the token signature first, then confirms the
// session row still exists and has not expired, so a token can be revoked
// server-side before its own expiry.
func (s *Store) userIDForToken(ctx context.Context, token string) (int64, error) {
	if _, err := s.tokens.ParseToken(token); err != nil {
		return 0, ErrUnauthorized
	}

	var userID int64
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id
		FROM sessions
		WHERE token = $1 AND expires_at > NOW()
	`, token).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUnauthorized
		}
		return 0, fmt.Errorf("lookup session: %w", err)
	}
	return userID, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
