// Package api serves the leaderboard as read-only JSON.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tomz197/climber/internal/score"
)

const (
	defaultTopN = 10
	maxTopN     = 100
)

// Server handles leaderboard requests.
type Server struct {
	scores  score.Provider
	started time.Time
}

// NewServer creates a server reading from p.
func NewServer(p score.Provider) *Server {
	return &Server{scores: p, started: time.Now()}
}

// EntryResponse is one leaderboard row.
type EntryResponse struct {
	Rank      int       `json:"rank,omitempty"`
	Player    string    `json:"player"`
	Score     int       `json:"score"`
	Height    int       `json:"height"`
	Fish      int       `json:"fish"`
	Display   string    `json:"display"`
	CreatedAt time.Time `json:"created_at"`
	Ago       string    `json:"ago"`
}

// TopResponse is the body of /scores/top.
type TopResponse struct {
	Entries []EntryResponse `json:"entries"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Routes sets up the HTTP routes.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))
	r.Use(middleware.Heartbeat("/health"))

	r.Route("/api/v1/scores", func(r chi.Router) {
		r.Get("/top", s.handleTop)
		r.Get("/best/{player}", s.handleBest)
	})
	return r
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	n := defaultTopN
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "n must be a positive integer")
			return
		}
		n = min(v, maxTopN)
	}

	entries, err := s.scores.GetTopN(r.Context(), n)
	if err != nil {
		log.Error("leaderboard query failed", "err", err)
		writeError(w, http.StatusInternalServerError, "leaderboard unavailable")
		return
	}

	resp := TopResponse{Entries: make([]EntryResponse, 0, len(entries))}
	for i, e := range entries {
		row := toResponse(e)
		row.Rank = i + 1
		resp.Entries = append(resp.Entries, row)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBest(w http.ResponseWriter, r *http.Request) {
	player := strings.TrimSpace(chi.URLParam(r, "player"))
	if player == "" {
		writeError(w, http.StatusBadRequest, "player is required")
		return
	}

	e, err := s.scores.GetBest(r.Context(), player)
	switch {
	case errors.Is(err, score.ErrNotFound):
		writeError(w, http.StatusNotFound, "no runs for "+player)
		return
	case err != nil:
		log.Error("best score query failed", "player", player, "err", err)
		writeError(w, http.StatusInternalServerError, "leaderboard unavailable")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(e))
}

func toResponse(e score.Entry) EntryResponse {
	return EntryResponse{
		Player:    e.Player,
		Score:     e.Score,
		Height:    e.Height,
		Fish:      e.Fish,
		Display:   humanize.Comma(int64(e.Score)),
		CreatedAt: e.CreatedAt.UTC(),
		Ago:       humanize.Time(e.CreatedAt),
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn("encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
