package discovery

import (
	"context"
	"errors"
	"fmt"

	"gigradar/internal/catalog"
	"gigradar/internal/ingest"
	"gigradar/internal/recommend"
	"gigradar/internal/session"
	"gigradar/internal/view"
	"gigradar/shared/go/logging"
	"gigradar/shared/go/models"
)

var (
	// ErrNoArtists means the playlist produced no usable artist names.
	ErrNoArtists = errors.New("playlist has no artists")
	// ErrInvalidSortMode rejects unknown sort modes from the transport layer.
	ErrInvalidSortMode = errors.New("invalid sort mode")
)

// EventStore supplies the persisted listings feed.
type EventStore interface {
	ListEvents(filter models.EventFilter) ([]models.EventRecord, error)
}

// ArtistSource reads artist names out of a playlist.
type ArtistSource interface {
	Artists(ctx context.Context, ref ingest.PlaylistRef) ([]string, error)
}

// TicketFeed supplies live listings per artist from the ticketing API.
type TicketFeed interface {
	ArtistEvents(ctx context.Context, artist string) ([]models.EventRecord, error)
}

// Recommender proposes a subset of candidate concerts for a taste profile.
type Recommender interface {
	Enabled() bool
	Recommend(ctx context.Context, artistNames []string, records []models.EventRecord, citySlug string, max int) ([]models.EventRecord, error)
}

// ticketFeedArtists caps how many playlist artists get a live API lookup
// during one scan; the stored feed still covers the rest.
const ticketFeedArtists = 20

// Service orchestrates the discovery flow: playlist scan, per-user session
// state, and recommendations.
type Service struct {
	events      EventStore
	playlists   ArtistSource
	tickets     TicketFeed
	recommender Recommender
	sessions    *session.Store
	aggregator  *catalog.Aggregator
	citySlug    string
}

// New wires a Service. tickets and recommender may be nil when the
// corresponding integration is not configured.
func New(events EventStore, playlists ArtistSource, tickets TicketFeed, recommender Recommender, sessions *session.Store, citySlug string) *Service {
	return &Service{
		events:      events,
		playlists:   playlists,
		tickets:     tickets,
		recommender: recommender,
		sessions:    sessions,
		aggregator:  catalog.NewAggregator(catalog.NewMatcher(catalog.DefaultMatcherConfig())),
		citySlug:    citySlug,
	}
}

// Scan resolves a playlist into artist names, matches them against every
// feed, and replaces the user's session with a fresh view over the result.
func (s *Service) Scan(ctx context.Context, userID int64, playlistURL string) (view.Render, []string, error) {
	ref, err := ingest.ParsePlaylistURL(playlistURL)
	if err != nil {
		return view.Render{}, nil, err
	}

	artists, err := s.playlists.Artists(ctx, ref)
	if err != nil {
		return view.Render{}, nil, fmt.Errorf("read playlist: %w", err)
	}
	if len(artists) == 0 {
		return view.Render{}, nil, ErrNoArtists
	}

	stored, err := s.events.ListEvents(models.EventFilter{Category: "concert"})
	if err != nil {
		return view.Render{}, nil, fmt.Errorf("load stored events: %w", err)
	}

	ticketed := s.fetchTicketed(ctx, artists)

	merged := s.aggregator.Aggregate(artists, stored, ticketed)
	v := view.New(merged)

	s.sessions.Put(userID, &session.Session{
		PlaylistURL: playlistURL,
		Artists:     artists,
		View:        v,
	})

	return v.Render(), artists, nil
}

// fetchTicketed queries the ticketing API for the head of the artist list.
// Per-artist failures degrade to a smaller feed instead of failing the scan.
func (s *Service) fetchTicketed(ctx context.Context, artists []string) []models.EventRecord {
	if s.tickets == nil {
		return nil
	}

	head := artists
	if len(head) > ticketFeedArtists {
		head = head[:ticketFeedArtists]
	}

	var out []models.EventRecord
	for _, artist := range head {
		events, err := s.tickets.ArtistEvents(ctx, artist)
		if err != nil {
			logging.Error(err, "ticketing lookup failed for "+artist)
			continue
		}
		out = append(out, events...)
	}
	return out
}

// SelectCity filters the user's view to one city ("all" clears the filter)
// and returns the re-rendered page.
func (s *Service) SelectCity(ctx context.Context, userID int64, label string) (view.Render, error) {
	return s.updateView(ctx, userID, func(v *view.View) error {
		v.SelectCity(label)
		return nil
	})
}

// SetSortMode re-sorts the user's view.
func (s *Service) SetSortMode(ctx context.Context, userID int64, mode string) (view.Render, error) {
	parsed, ok := view.ParseSortMode(mode)
	if !ok {
		return view.Render{}, fmt.Errorf("%w: %q", ErrInvalidSortMode, mode)
	}
	return s.updateView(ctx, userID, func(v *view.View) error {
		v.SetSortMode(parsed)
		return nil
	})
}

// SetPage moves the user's view to the requested page, clamped into range.
func (s *Service) SetPage(ctx context.Context, userID int64, page int) (view.Render, error) {
	return s.updateView(ctx, userID, func(v *view.View) error {
		v.SetPage(page)
		return nil
	})
}

// CurrentView renders the user's view without mutating it.
func (s *Service) CurrentView(ctx context.Context, userID int64) (view.Render, error) {
	return s.updateView(ctx, userID, func(*view.View) error { return nil })
}

func (s *Service) updateView(ctx context.Context, userID int64, fn func(*view.View) error) (view.Render, error) {
	if err := ctx.Err(); err != nil {
		return view.Render{}, err
	}

	var r view.Render
	err := s.sessions.Update(userID, func(sess *session.Session) error {
		if err := fn(sess.View); err != nil {
			return err
		}
		r = sess.View.Render()
		return nil
	})
	if err != nil {
		return view.Render{}, err
	}
	return r, nil
}

// Recommendations asks the model for a pick from the user's full scanned
// catalog.
func (s *Service) Recommendations(ctx context.Context, userID int64) ([]models.EventRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.recommender == nil || !s.recommender.Enabled() {
		return nil, recommend.ErrDisabled
	}

	var (
		artists []string
		records []models.EventRecord
	)
	err := s.sessions.Update(userID, func(sess *session.Session) error {
		artists = sess.Artists
		records = sess.View.All()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.recommender.Recommend(ctx, artists, records, s.citySlug, recommend.DefaultMaxRecommendations)
}
