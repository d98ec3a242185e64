package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mindwell/portal-gateway/internal/assessment"
)

type startAttemptRequest struct {
	TestSlug string `json:"test_slug"`
}

type selectOptionRequest struct {
	Value string `json:"value"`
}

type submitResponse struct {
	Next    string          `json:"next"`
	Attempt assessment.View `json:"attempt"`
}

type incompleteDetails struct {
	FirstUnanswered int    `json:"firstUnanswered"`
	QuestionNumber  string `json:"questionNumber"`
}

func (s *Server) handleGetQuestions(w http.ResponseWriter, r *http.Request) {
	set := s.deps.Questions.GetQuestions(r.Context(), chi.URLParam(r, "slug"))
	respondJSON(w, http.StatusOK, set)
}

func (s *Server) handleStartAttempt(w http.ResponseWriter, r *http.Request) {
	var req startAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	a, err := s.deps.Attempts.Start(r.Context(), userID(r), req.TestSlug)
	if err != nil {
		s.respondAttemptError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, a.Snapshot())
}

func (s *Server) handleGetAttempt(w http.ResponseWriter, r *http.Request) {
	a, err := s.deps.Attempts.Get(chi.URLParam(r, "id"), userID(r))
	if err != nil {
		s.respondAttemptError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, a.Snapshot())
}

func (s *Server) handleSelectOption(w http.ResponseWriter, r *http.Request) {
	var req selectOptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Value == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "value is required")
		return
	}

	a, err := s.deps.Attempts.Select(chi.URLParam(r, "id"), userID(r), chi.URLParam(r, "questionNumber"), req.Value)
	if err != nil {
		s.respondAttemptError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, a.Snapshot())
}

func (s *Server) handleSubmitAttempt(w http.ResponseWriter, r *http.Request) {
	a, err := s.deps.Attempts.Submit(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		s.respondAttemptError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, submitResponse{
		Next:    "completion",
		Attempt: a.Snapshot(),
	})
}

// respondAttemptError maps assessment errors to HTTP responses
func (s *Server) respondAttemptError(w http.ResponseWriter, err error) {
	var (
		unknown    *assessment.UnknownTestError
		incomplete *assessment.IncompleteError
		submitErr  *assessment.SubmitError
	)

	switch {
	case errors.Is(err, assessment.ErrMissingSlug):
		respondError(w, http.StatusBadRequest, "validation_error", "test_slug is required")
	case errors.As(err, &unknown):
		respondError(w, http.StatusNotFound, "unknown_test", err.Error())
	case errors.Is(err, assessment.ErrTestInactive):
		respondError(w, http.StatusForbidden, "test_inactive", "test is not active")
	case errors.Is(err, assessment.ErrNoQuestions):
		respondError(w, http.StatusNotFound, "no_questions", "no questions available for this test")
	case errors.Is(err, assessment.ErrAttemptNotFound), errors.Is(err, assessment.ErrNotOwner):
		respondError(w, http.StatusNotFound, "attempt_not_found", "attempt not found")
	case errors.Is(err, assessment.ErrAttemptExpired):
		respondError(w, http.StatusGone, "attempt_expired", "attempt has expired")
	case errors.As(err, &incomplete):
		respondErrorData(w, http.StatusUnprocessableEntity, "incomplete", "please answer all questions before submitting",
			incompleteDetails{FirstUnanswered: incomplete.Index, QuestionNumber: incomplete.QuestionNumber})
	case errors.Is(err, assessment.ErrSubmitInFlight):
		respondError(w, http.StatusConflict, "submit_in_flight", "submission already in progress")
	case errors.Is(err, assessment.ErrAlreadySubmitted):
		respondError(w, http.StatusConflict, "already_submitted", "attempt already submitted")
	case errors.As(err, &submitErr):
		respondErrorData(w, http.StatusBadGateway, "backend_unavailable", "failed to submit answers, please retry",
			map[string]bool{"retryable": submitErr.Retryable()})
	default:
		slog.Error("attempt operation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
