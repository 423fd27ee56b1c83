package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"gigradar/internal/app/discovery"
	"gigradar/internal/ingest"
	"gigradar/internal/recommend"
	"gigradar/internal/session"
	"gigradar/internal/store"
	"gigradar/internal/view"
	"gigradar/shared/go/models"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Signup(ctx context.Context, username, password string, artists []string) error
	Authenticate(ctx context.Context, username, password string) (string, error)
	UserID(ctx context.Context, token string) (int64, error)
	TrackedArtists(ctx context.Context, token string) ([]string, error)
	ReplaceTrackedArtists(ctx context.Context, token string, names []string) error
}

// DiscoveryService drives the playlist scan and per-user concert view.
type DiscoveryService interface {
	Scan(ctx context.Context, userID int64, playlistURL string) (view.Render, []string, error)
	SelectCity(ctx context.Context, userID int64, label string) (view.Render, error)
	SetSortMode(ctx context.Context, userID int64, mode string) (view.Render, error)
	SetPage(ctx context.Context, userID int64, page int) (view.Render, error)
	CurrentView(ctx context.Context, userID int64) (view.Render, error)
	Recommendations(ctx context.Context, userID int64) ([]models.EventRecord, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users     UserService
	discovery DiscoveryService
}

// New configures a Server with the given services.
func New(users UserService, discovery DiscoveryService) *Server {
	return &Server{users: users, discovery: discovery}
}

// Routes exposes the HTTP handlers for accounts and concert discovery.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("POST /api/v1/signup", s.handleSignup)
	mux.HandleFunc("POST /api/v1/login", s.handleLogin)

	mux.HandleFunc("GET /api/v1/me/artists", s.handleTrackedArtists)
	mux.HandleFunc("PUT /api/v1/me/artists", s.handleReplaceTrackedArtists)

	mux.HandleFunc("POST /api/v1/playlists/scan", s.handleScan)
	mux.HandleFunc("GET /api/v1/view", s.handleView)
	mux.HandleFunc("POST /api/v1/view/city", s.handleSelectCity)
	mux.HandleFunc("POST /api/v1/view/sort", s.handleSetSortMode)
	mux.HandleFunc("POST /api/v1/view/page", s.handleSetPage)
	mux.HandleFunc("GET /api/v1/recommendations", s.handleRecommendations)

	return mux
}

type signupRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Artists  []string `json:"artists"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type scanRequest struct {
	PlaylistURL string `json:"playlist_url"`
}

type scanResponse struct {
	Artists []string    `json:"artists"`
	View    view.Render `json:"view"`
}

type cityRequest struct {
	City string `json:"city"`
}

type sortRequest struct {
	Sort string `json:"sort"`
}

type pageRequest struct {
	Page int `json:"page"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	if err := s.users.Signup(r.Context(), req.Username, req.Password, req.Artists); err != nil {
		switch {
		case errors.Is(err, store.ErrUserExists):
			writeJSON(w, http.StatusConflict, errorResponse{Error: "username already taken"})
		default:
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	token, err := s.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, store.ErrInvalidCredentials) {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) handleTrackedArtists(w http.ResponseWriter, r *http.Request) {
	token := parseBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	artists, err := s.users.TrackedArtists(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Artists []string `json:"artists"`
	}{Artists: artists})
}

func (s *Server) handleReplaceTrackedArtists(w http.ResponseWriter, r *http.Request) {
	token := parseBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	var body struct {
		Artists []string `json:"artists"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	if err := s.users.ReplaceTrackedArtists(r.Context(), token, body.Artists); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authorize(w, r)
	if !ok {
		return
	}

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	render, artists, err := s.discovery.Scan(r.Context(), userID, req.PlaylistURL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scanResponse{Artists: artists, View: render})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authorize(w, r)
	if !ok {
		return
	}

	render, err := s.discovery.CurrentView(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, render)
}

func (s *Server) handleSelectCity(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authorize(w, r)
	if !ok {
		return
	}

	var req cityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	render, err := s.discovery.SelectCity(r.Context(), userID, req.City)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, render)
}

func (s *Server) handleSetSortMode(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authorize(w, r)
	if !ok {
		return
	}

	var req sortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	render, err := s.discovery.SetSortMode(r.Context(), userID, req.Sort)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, render)
}

func (s *Server) handleSetPage(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authorize(w, r)
	if !ok {
		return
	}

	var req pageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	render, err := s.discovery.SetPage(r.Context(), userID, req.Page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, render)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authorize(w, r)
	if !ok {
		return
	}

	records, err := s.discovery.Recommendations(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Recommendations []models.EventRecord `json:"recommendations"`
	}{Recommendations: records})
}

// authorize resolves the bearer token to a user id, writing the error
// response itself when the request cannot proceed.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) (int64, bool) {
	token := parseBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return 0, false
	}

	userID, err := s.users.UserID(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return 0, false
	}
	return userID, true
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ingest.ErrInvalidPlaylistURL),
		errors.Is(err, discovery.ErrNoArtists),
		errors.Is(err, discovery.ErrInvalidSortMode):
		status = http.StatusBadRequest
	case errors.Is(err, recommend.ErrDisabled):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
