package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/baxromumarov/gig-crawler/internal/observability"
	"github.com/baxromumarov/gig-crawler/internal/project"
	"github.com/baxromumarov/gig-crawler/internal/store"
)

const maxPageSize = 200

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, observability.Snapshot())
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, 20)
	q := r.URL.Query()

	filter := store.Filter{
		IncludeHidden:  parseBool(q.Get("include_hidden")),
		IncludeIgnored: parseBool(q.Get("include_ignored")),
		Limit:          limit,
		Offset:         offset,
	}
	if raw := q.Get("platform"); raw != "" {
		p, err := project.ParsePlatform(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Platform = p
	}

	records, total, err := s.store.ListProjects(r.Context(), filter)
	if err != nil {
		s.logger.Error("list projects failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch projects: "+err.Error())
		return
	}
	if records == nil {
		records = []store.Record{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"items":  records,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	key, ok := projectKey(w, r)
	if !ok {
		return
	}

	rec, err := s.store.GetProject(r.Context(), key)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		s.logger.Error("get project failed", "platform", string(key.Platform), "external_id", key.ExternalID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch project: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

type IgnoreRequest struct {
	Ignored *bool `json:"ignored"`
}

// handleIgnoreProject sets the ignore flag. An empty body ignores the listing.
func (s *Server) handleIgnoreProject(w http.ResponseWriter, r *http.Request) {
	key, ok := projectKey(w, r)
	if !ok {
		return
	}

	var req IgnoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	ignored := true
	if req.Ignored != nil {
		ignored = *req.Ignored
	}

	err := s.store.MarkIgnored(r.Context(), key, ignored)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update project: "+err.Error())
		return
	}

	s.logger.Info("project ignore flag set", "platform", string(key.Platform), "external_id", key.ExternalID, "ignored", ignored)
	respondJSON(w, http.StatusOK, map[string]bool{"ignored": ignored})
}

func projectKey(w http.ResponseWriter, r *http.Request) (project.Key, bool) {
	p, err := project.ParsePlatform(chi.URLParam(r, "platform"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return project.Key{}, false
	}
	id := chi.URLParam(r, "id")
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return project.Key{}, false
	}
	return project.Key{Platform: p, ExternalID: id}, true
}

func parsePagination(r *http.Request, defaultLimit int) (int, int) {
	q := r.URL.Query()
	limit := defaultLimit
	offset := 0

	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	if v := q.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func parseBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}
