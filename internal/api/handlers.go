package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mindwell/portal-gateway/internal/models"
	"github.com/mindwell/portal-gateway/internal/services"
	"github.com/mindwell/portal-gateway/internal/storage"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondErrorData(w, status, code, message, nil)
}

// respondErrorData writes an error envelope that also carries data the
// client needs to recover (for example the first unanswered question)
func respondErrorData(w http.ResponseWriter, status int, code, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Data:    data,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// userID returns the authenticated user of the request
func userID(r *http.Request) string {
	if p := PrincipalFromContext(r.Context()); p != nil {
		return p.UserID
	}
	return ""
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Registry == nil {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}

	results := s.deps.Registry.HealthCheckAll(r.Context())
	checks := make(map[string]string, len(results))
	for name, err := range results {
		if err != nil {
			slog.Warn("dependency unhealthy", "dependency", name, "error", err)
			checks[name] = err.Error()
			continue
		}
		checks[name] = "ok"
	}

	if !services.Healthy(results) {
		respondErrorData(w, http.StatusServiceUnavailable, "not_ready", "service not ready", checks)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ready",
		"checks": checks,
	})
}

// Submission log handlers

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	if s.deps.Submissions == nil {
		respondJSON(w, http.StatusOK, []*models.Submission{})
		return
	}

	filters := models.SubmissionFilters{
		UserID:   userID(r),
		TestSlug: r.URL.Query().Get("test_slug"),
		Status:   models.SubmissionStatus(r.URL.Query().Get("status")),
		Limit:    50,
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 200 {
			filters.Limit = limit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filters.Offset = offset
		}
	}

	subs, err := s.deps.Submissions.ListSubmissions(r.Context(), filters)
	if err != nil {
		slog.Error("failed to list submissions", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list submissions")
		return
	}
	if subs == nil {
		subs = []*models.Submission{}
	}

	respondJSON(w, http.StatusOK, subs)
}

func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	if s.deps.Submissions == nil {
		respondError(w, http.StatusNotFound, "not_found", "submission not found")
		return
	}

	sub, err := s.deps.Submissions.GetSubmission(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrNotFound) || (err == nil && sub.UserID != userID(r)) {
		respondError(w, http.StatusNotFound, "not_found", "submission not found")
		return
	}
	if err != nil {
		slog.Error("failed to get submission", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get submission")
		return
	}

	respondJSON(w, http.StatusOK, sub)
}
