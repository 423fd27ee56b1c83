package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gigradar/internal/app/discovery"
	"gigradar/internal/app/users"
	corsmw "gigradar/internal/http/middleware"
	"gigradar/internal/httpapi"
	"gigradar/internal/ingest"
	"gigradar/internal/recommend"
	"gigradar/internal/session"
	"gigradar/internal/store"
	"gigradar/shared/go/auth"
	"gigradar/shared/go/config"
	"gigradar/shared/go/logging"
	"gigradar/shared/go/middleware"
)

func main() {
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

	if err := run(cfg); err != nil {
		logging.Fatal(err, "server exited")
	}
}

func run(cfg *config.Config) error {
	db, err := openDatabase(context.Background(), cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	tokens := auth.NewTokenManager(cfg.Security.JWTSecret)
	dataStore := store.New(db, tokens)
	userService := users.New(dataStore)

	playlists := ingest.NewPlaylistClient(cfg.Playlist.BaseURL)

	var tickets discovery.TicketFeed
	if cfg.Ticketing.APIKey != "" {
		tickets = ingest.NewTicketmasterClient(cfg.Ticketing.APIKey, cfg.Ticketing.BaseURL, cfg.Ticketing.PageSize)
	} else {
		logging.Warn("ticketing API key missing, live listings disabled")
	}

	var recommender discovery.Recommender
	if cfg.Recommend.APIKey != "" {
		recommender = recommend.NewService(cfg.Recommend.APIKey, cfg.Recommend.BaseURL, cfg.Recommend.Model)
	} else {
		logging.Warn("recommendation API key missing, recommendations disabled")
	}

	sessions := session.NewStore(cfg.Session.TTL)

	discoveryService := discovery.New(dataStore, playlists, tickets, recommender, sessions, cfg.Discovery.CitySlug)

	api := httpapi.New(userService, discoveryService)

	var origin string
	if len(cfg.CORS.AllowedOrigins) > 0 {
		origin = cfg.CORS.AllowedOrigins[0]
	}

	handler := middleware.Recovery()(
		middleware.RequestLogging()(
			corsmw.CORS(origin)(api.Routes()),
		),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logging.Info("API listening on " + server.Addr)
	return server.ListenAndServe()
}

func openDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
