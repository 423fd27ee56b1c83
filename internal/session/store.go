package session

import (
	"errors"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"gigradar/internal/view"
)

// ErrNotFound is returned when a user has no live session.
var ErrNotFound = errors.New("session not found")

// DefaultTTL bounds how long an idle session survives.
const DefaultTTL = 30 * time.Minute

// Session is one user's scan result and working view. The mutex serializes
// mutations so that rapid repeated actions from the same user (a double tap
// on a pagination button) cannot race on read-modify-write.
type Session struct {
	mu sync.Mutex

	PlaylistURL string
	Artists     []string
	View        *view.View
	CreatedAt   time.Time
}

// Store holds per-user sessions with TTL eviction. The TTL slides: every
// access refreshes the expiry, so only idle sessions are dropped.
type Store struct {
	cache *gocache.Cache
}

// NewStore creates a session store. A non-positive ttl falls back to
// DefaultTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{cache: gocache.New(ttl, 2*ttl)}
}

// Put replaces the user's session.
func (s *Store) Put(userID int64, sess *Session) {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}
	s.cache.SetDefault(key(userID), sess)
}

// Update runs fn against the user's session while holding the session
// mutex, then refreshes the TTL. Returns ErrNotFound when no session exists.
func (s *Store) Update(userID int64, fn func(*Session) error) error {
	v, ok := s.cache.Get(key(userID))
	if !ok {
		return ErrNotFound
	}
	sess := v.(*Session)

	sess.mu.Lock()
	err := fn(sess)
	sess.mu.Unlock()
	if err != nil {
		return err
	}

	s.cache.SetDefault(key(userID), sess)
	return nil
}

// Delete drops the user's session, if any.
func (s *Store) Delete(userID int64) {
	s.cache.Delete(key(userID))
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
