package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mindwell/portal-gateway/internal/catalog"
	"github.com/mindwell/portal-gateway/internal/models"
)

type filtersResponse struct {
	Available models.FilterValues   `json:"available"`
	Defaults  models.FilterCriteria `json:"defaults"`
}

func (s *Server) handleListTests(w http.ResponseWriter, r *http.Request) {
	criteria, err := catalog.ParseCriteria(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, catalog.Apply(s.deps.Catalog.Tests(r.Context()), criteria))
}

func (s *Server) handleGetTest(w http.ResponseWriter, r *http.Request) {
	test, ok := s.deps.Catalog.Test(r.Context(), chi.URLParam(r, "slug"))
	if !ok {
		respondError(w, http.StatusNotFound, "test_not_found", "test not found")
		return
	}

	respondJSON(w, http.StatusOK, test)
}

func (s *Server) handleBookTest(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !s.deps.Catalog.IsActive(r.Context(), slug) {
		respondError(w, http.StatusForbidden, "test_inactive", "test is not active")
		return
	}

	booked := s.deps.Backend.BookTest(r.Context(), models.BookTestRequest{
		UserID:   userID(r),
		TestSlug: slug,
	})

	respondJSON(w, http.StatusOK, map[string]bool{"booked": booked})
}

func (s *Server) handleListExperts(w http.ResponseWriter, r *http.Request) {
	criteria, err := catalog.ParseCriteria(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, catalog.Apply(s.deps.Catalog.Counsellors(r.Context()), criteria))
}

func (s *Server) handleGetExpert(w http.ResponseWriter, r *http.Request) {
	details := s.deps.Backend.GetCounsellorDetails(r.Context(), chi.URLParam(r, "id"))
	if details == nil {
		respondError(w, http.StatusNotFound, "expert_not_found", "expert not found")
		return
	}

	respondJSON(w, http.StatusOK, details)
}

func (s *Server) handleGetExpertSchedule(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.deps.Backend.GetCounsellorSchedule(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) handleGetFilters(w http.ResponseWriter, r *http.Request) {
	fv := s.deps.Catalog.Filters(r.Context())
	respondJSON(w, http.StatusOK, filtersResponse{
		Available: fv,
		Defaults:  catalog.DefaultCriteria(fv),
	})
}

func (s *Server) handleRefreshCatalog(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Catalog.Refresh(r.Context()); err != nil {
		slog.Error("catalog refresh failed", "error", err)
		respondError(w, http.StatusBadGateway, "backend_unavailable", "failed to refresh catalog")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"loadedAt":    s.deps.Catalog.LoadedAt(),
		"tests":       len(s.deps.Catalog.Tests(r.Context())),
		"counsellors": len(s.deps.Catalog.Counsellors(r.Context())),
	})
}
