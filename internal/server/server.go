// Package server serves the archive API over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/thinkwright/convo/internal/archive"
	"github.com/thinkwright/convo/internal/metrics"
	"github.com/thinkwright/convo/internal/store"
)

// Backend answers the API queries. *store.Store implements it.
type Backend interface {
	Conversations() ([]archive.Conversation, error)
	Thread(id string) (archive.Thread, error)
	Search(query string, limit int) ([]archive.SearchResult, error)
	Statistics() (archive.Statistics, error)
	Activity() ([]archive.ActivityPoint, error)
}

type Config struct {
	Addr        string
	SearchLimit int
}

type Server struct {
	backend     Backend
	metrics     *metrics.Metrics
	log         zerolog.Logger
	searchLimit int
	http        *http.Server
}

func New(b Backend, m *metrics.Metrics, log zerolog.Logger, cfg Config) *Server {
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 100
	}
	s := &Server{
		backend:     b,
		metrics:     m,
		log:         log.With().Str("component", "http").Logger(),
		searchLimit: cfg.SearchLimit,
	}
	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the routed, instrumented API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.route(mux, "GET /api/conversations", s.handleConversations)
	s.route(mux, "GET /api/conversations/{id}/messages", s.handleMessages)
	s.route(mux, "GET /api/search", s.handleSearch)
	s.route(mux, "GET /api/statistics", s.handleStatistics)
	s.route(mux, "GET /api/activity", s.handleActivity)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "convo"})
	})
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "no such endpoint")
	})
	return mux
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.log.Info().Str("addr", ln.Addr().String()).Msg("archive server listening")
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("archive server failed: %w", err)
	}
	return nil
}

// ListenAndServe listens on the configured address.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}
	return s.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("archive server shutting down")
	return s.http.Shutdown(ctx)
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) error {
	convs, err := s.backend.Conversations()
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, convs)
	return nil
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) error {
	th, err := s.backend.Thread(r.PathValue("id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, th)
	return nil
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) error {
	results, err := s.backend.Search(r.URL.Query().Get("query"), s.searchLimit)
	if err != nil {
		return err
	}
	if results == nil {
		results = []archive.SearchResult{}
	}
	s.metrics.RecordSearch(len(results))
	writeJSON(w, http.StatusOK, results)
	return nil
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) error {
	st, err := s.backend.Statistics()
	if err != nil {
		return err
	}
	if st == nil {
		st = archive.Statistics{}
	}
	writeJSON(w, http.StatusOK, st)
	return nil
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) error {
	points, err := s.backend.Activity()
	if err != nil {
		return err
	}
	if points == nil {
		points = []archive.ActivityPoint{}
	}
	writeJSON(w, http.StatusOK, points)
	return nil
}

func statusFor(err error) int {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
