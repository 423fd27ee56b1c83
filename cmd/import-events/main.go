package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gigradar/internal/ingest"
	"gigradar/internal/store"
	"gigradar/shared/go/auth"
	"gigradar/shared/go/config"
	"gigradar/shared/go/logging"
)

// The importer refreshes the stored ticketing feed: it walks every tracked
// artist, pulls their upcoming events from the ticketing API, and upserts
// them keyed by canonical URL. With -interval it keeps running on a timer.
func main() {
	limit := flag.Int("limit", 100, "maximum number of tracked artists to refresh")
	interval := flag.Duration("interval", 0, "refresh period; run once when zero")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal(err, "load configuration")
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logging.SetGlobalLogger(logger)

	if cfg.Ticketing.APIKey == "" {
		logging.Fatal(nil, "TICKETMASTER_API_TOKEN is required")
	}

	db, err := openDatabase(context.Background(), cfg.Database.URL)
	if err != nil {
		logging.Fatal(err, "connect to database")
	}
	defer db.Close()

	dataStore := store.New(db, auth.NewTokenManager(cfg.Security.JWTSecret))
	client := ingest.NewTicketmasterClient(cfg.Ticketing.APIKey, cfg.Ticketing.BaseURL, cfg.Ticketing.PageSize)

	if err := refresh(context.Background(), dataStore, client, *limit); err != nil {
		logging.Fatal(err, "refresh events")
	}

	if *interval <= 0 {
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for range ticker.C {
		if err := refresh(context.Background(), dataStore, client, *limit); err != nil {
			logging.Error(err, "refresh events")
		}
	}
}

func refresh(ctx context.Context, dataStore *store.Store, client *ingest.TicketmasterClient, limit int) error {
	artists, err := dataStore.ListTrackedArtists(limit)
	if err != nil {
		return fmt.Errorf("list tracked artists: %w", err)
	}
	if len(artists) == 0 {
		logging.Info("no tracked artists to refresh")
		return nil
	}

	var stored, failed int
	for _, artist := range artists {
		events, err := client.ArtistEvents(ctx, artist)
		if err != nil {
			logging.Error(err, "fetch events for "+artist)
			failed++
			continue
		}
		for _, rec := range events {
			if err := dataStore.UpsertEvent(rec); err != nil {
				logging.Error(err, "store event "+rec.URL)
				continue
			}
			stored++
		}
	}

	logging.Info("refresh complete: " + strconv.Itoa(stored) + " events stored across " +
		strconv.Itoa(len(artists)-failed) + " of " + strconv.Itoa(len(artists)) + " artists")
	return nil
}

func openDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
