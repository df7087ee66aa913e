// Package api serves stored listings and crawler counters as JSON.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/baxromumarov/gig-crawler/internal/project"
	"github.com/baxromumarov/gig-crawler/internal/store"
)

// ProjectStore is the read side of the store plus the ignore flag.
type ProjectStore interface {
	ListProjects(ctx context.Context, f store.Filter) ([]store.Record, int, error)
	GetProject(ctx context.Context, key project.Key) (store.Record, error)
	MarkIgnored(ctx context.Context, key project.Key, ignored bool) error
	Ping(ctx context.Context) error
}

type Server struct {
	router *chi.Mux
	store  ProjectStore
	logger *slog.Logger
}

func NewServer(s ProjectStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{
		router: chi.NewRouter(),
		store:  s,
		logger: logger,
	}

	srv.setupRoutes()
	return srv
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/stats", s.handleStats)
	s.router.Get("/projects", s.handleListProjects)
	s.router.Get("/projects/{platform}/{id}", s.handleGetProject)
	s.router.Post("/projects/{platform}/{id}/ignore", s.handleIgnoreProject)
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", "error", err)
		respondError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
