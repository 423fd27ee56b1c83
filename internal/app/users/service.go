package users

import "context"

// Store describes the persistence operations required by the user service.
type Store interface {
	CreateUser(username, password string, artists []string) error
	Authenticate(username, password string) (string, error)
	UserIDByToken(token string) (int64, error)
	TrackedArtistsByToken(token string) ([]string, error)
	ReplaceTrackedArtists(token string, names []string) error
}

// Service exposes user-related workflows in an extensible manner.
type Service interface {
	Signup(ctx context.Context, username, password string, artists []string) error
	Authenticate(ctx context.Context, username, password string) (string, error)
	UserID(ctx context.Context, token string) (int64, error)
	TrackedArtists(ctx context.Context, token string) ([]string, error)
	ReplaceTrackedArtists(ctx context.Context, token string, names []string) error
}

type service struct {
	store Store
}

// New wires a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Signup(ctx context.Context, username, password string, artists []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.CreateUser(username, password, artists)
}

func (s *service) Authenticate(ctx context.Context, username, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.store.Authenticate(username, password)
}

func (s *service) UserID(ctx context.Context, token string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.store.UserIDByToken(token)
}

func (s *service) TrackedArtists(ctx context.Context, token string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.TrackedArtistsByToken(token)
}

func (s *service) ReplaceTrackedArtists(ctx context.Context, token string, names []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.ReplaceTrackedArtists(token, names)
}
