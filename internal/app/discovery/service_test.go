package discovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"gigradar/internal/ingest"
	"gigradar/internal/recommend"
	"gigradar/internal/session"
	"gigradar/shared/go/models"
)

type stubEvents struct {
	records []models.EventRecord
	err     error
}

func (s *stubEvents) ListEvents(models.EventFilter) ([]models.EventRecord, error) {
	return s.records, s.err
}

type stubPlaylists struct {
	artists []string
	err     error
	gotRef  ingest.PlaylistRef
}

func (s *stubPlaylists) Artists(_ context.Context, ref ingest.PlaylistRef) ([]string, error) {
	s.gotRef = ref
	return s.artists, s.err
}

type stubTickets struct {
	byArtist map[string][]models.EventRecord
	calls    []string
}

func (s *stubTickets) ArtistEvents(_ context.Context, artist string) ([]models.EventRecord, error) {
	s.calls = append(s.calls, artist)
	if s.byArtist == nil {
		return nil, errors.New("unavailable")
	}
	return s.byArtist[artist], nil
}

type stubRecommender struct {
	enabled bool
	result  []models.EventRecord
}

func (s *stubRecommender) Enabled() bool { return s.enabled }

func (s *stubRecommender) Recommend(_ context.Context, _ []string, _ []models.EventRecord, _ string, _ int) ([]models.EventRecord, error) {
	return s.result, nil
}

func newTestService(events *stubEvents, playlists *stubPlaylists, tickets TicketFeed, rec Recommender) *Service {
	return New(events, playlists, tickets, rec, session.NewStore(time.Minute), "moscow")
}

func TestScan(t *testing.T) {
	events := &stubEvents{records: []models.EventRecord{
		{URL: "https://a.ru/moscow/e/1", Title: "Сплин в Москве", Date: "2024-06-10"},
		{URL: "https://a.ru/moscow/e/2", Title: "Другое событие"},
	}}
	playlists := &stubPlaylists{artists: []string{"Сплин"}}
	tickets := &stubTickets{byArtist: map[string][]models.EventRecord{
		"Сплин": {{URL: "https://tm.example/sp/1", Title: "Сплин live", Source: "ticketmaster"}},
	}}

	svc := newTestService(events, playlists, tickets, nil)

	r, artists, err := svc.Scan(context.Background(), 7, "https://music.example/users/alice/playlists/1042")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if playlists.gotRef != (ingest.PlaylistRef{Owner: "alice", Kind: "1042"}) {
		t.Fatalf("ref = %+v", playlists.gotRef)
	}
	if len(artists) != 1 || artists[0] != "Сплин" {
		t.Fatalf("artists = %v", artists)
	}
	if r.Total != 2 {
		t.Fatalf("total = %d, want 2 matched records", r.Total)
	}
	for _, rec := range r.Records {
		if rec.MatchedArtist != "Сплин" {
			t.Errorf("record %s attributed to %q", rec.URL, rec.MatchedArtist)
		}
	}

	// Scan must leave a live session behind.
	if _, err := svc.CurrentView(context.Background(), 7); err != nil {
		t.Fatalf("CurrentView after scan: %v", err)
	}
}

func TestScanInvalidURL(t *testing.T) {
	svc := newTestService(&stubEvents{}, &stubPlaylists{}, nil, nil)

	_, _, err := svc.Scan(context.Background(), 7, "не ссылка")
	if !errors.Is(err, ingest.ErrInvalidPlaylistURL) {
		t.Fatalf("err = %v, want ErrInvalidPlaylistURL", err)
	}
}

func TestScanEmptyPlaylist(t *testing.T) {
	svc := newTestService(&stubEvents{}, &stubPlaylists{artists: nil}, nil, nil)

	_, _, err := svc.Scan(context.Background(), 7, "https://music.example/users/alice/playlists/1")
	if !errors.Is(err, ErrNoArtists) {
		t.Fatalf("err = %v, want ErrNoArtists", err)
	}
}

func TestScanTicketFeedFailureDegrades(t *testing.T) {
	events := &stubEvents{records: []models.EventRecord{
		{URL: "https://a.ru/moscow/e/1", Title: "Сплин в Москве"},
	}}
	playlists := &stubPlaylists{artists: []string{"Сплин"}}
	tickets := &stubTickets{byArtist: nil} // every lookup errors

	svc := newTestService(events, playlists, tickets, nil)

	r, _, err := svc.Scan(context.Background(), 7, "https://music.example/users/alice/playlists/1")
	if err != nil {
		t.Fatalf("Scan must survive ticket feed failures: %v", err)
	}
	if r.Total != 1 {
		t.Fatalf("total = %d, want the stored feed alone", r.Total)
	}
}

func TestViewMutations(t *testing.T) {
	events := &stubEvents{records: []models.EventRecord{
		{URL: "https://a.ru/moscow/e/1", Title: "Сплин в Москве", Date: "2024-06-10"},
		{URL: "https://a.ru/kazan/e/2", Title: "Сплин в Казани", Date: "2024-05-01"},
	}}
	playlists := &stubPlaylists{artists: []string{"Сплин"}}

	svc := newTestService(events, playlists, nil, nil)
	if _, _, err := svc.Scan(context.Background(), 7, "https://music.example/users/alice/playlists/1"); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	r, err := svc.SelectCity(context.Background(), 7, "Казань")
	if err != nil {
		t.Fatalf("SelectCity: %v", err)
	}
	if r.Total != 1 || r.CityFilter != "Казань" {
		t.Fatalf("filtered render: %+v", r)
	}

	if _, err := svc.SetSortMode(context.Background(), 7, "nonsense"); !errors.Is(err, ErrInvalidSortMode) {
		t.Fatalf("expected ErrInvalidSortMode, got %v", err)
	}

	r, err = svc.SetSortMode(context.Background(), 7, "artist")
	if err != nil {
		t.Fatalf("SetSortMode: %v", err)
	}
	if r.SortMode != "artist" {
		t.Fatalf("sort mode = %q", r.SortMode)
	}

	r, err = svc.SetPage(context.Background(), 7, 99)
	if err != nil {
		t.Fatalf("SetPage: %v", err)
	}
	if r.Page != 0 {
		t.Fatalf("page = %d, want clamp to 0", r.Page)
	}
}

func TestViewWithoutSession(t *testing.T) {
	svc := newTestService(&stubEvents{}, &stubPlaylists{}, nil, nil)

	if _, err := svc.CurrentView(context.Background(), 1); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("err = %v, want session.ErrNotFound", err)
	}
}

func TestRecommendationsDisabled(t *testing.T) {
	svc := newTestService(&stubEvents{}, &stubPlaylists{}, nil, nil)

	if _, err := svc.Recommendations(context.Background(), 1); !errors.Is(err, recommend.ErrDisabled) {
		t.Fatalf("err = %v, want ErrDisabled", err)
	}

	svc = newTestService(&stubEvents{}, &stubPlaylists{}, nil, &stubRecommender{enabled: false})
	if _, err := svc.Recommendations(context.Background(), 1); !errors.Is(err, recommend.ErrDisabled) {
		t.Fatalf("err = %v, want ErrDisabled", err)
	}
}

func TestRecommendations(t *testing.T) {
	events := &stubEvents{records: []models.EventRecord{
		{URL: "https://a.ru/moscow/e/1", Title: "Сплин в Москве"},
	}}
	playlists := &stubPlaylists{artists: []string{"Сплин"}}
	rec := &stubRecommender{
		enabled: true,
		result:  []models.EventRecord{{URL: "https://a.ru/moscow/e/1", Recommended: true}},
	}

	svc := newTestService(events, playlists, nil, rec)
	if _, _, err := svc.Scan(context.Background(), 7, "https://music.example/users/alice/playlists/1"); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	got, err := svc.Recommendations(context.Background(), 7)
	if err != nil {
		t.Fatalf("Recommendations: %v", err)
	}
	if len(got) != 1 || !got[0].Recommended {
		t.Fatalf("unexpected recommendations: %+v", got)
	}
}
