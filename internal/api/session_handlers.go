package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mindwell/portal-gateway/internal/chat"
	"github.com/mindwell/portal-gateway/internal/models"
)

type sendMessageRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.History.History(r.Context(), userID(r))
	if err != nil {
		slog.Error("failed to load session history", "error", err)
		respondError(w, http.StatusBadGateway, "backend_unavailable", "failed to load session history")
		return
	}

	respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.deps.History.Upcoming(r.Context(), userID(r), s.now())
	if err != nil {
		slog.Error("failed to load upcoming sessions", "error", err)
		respondError(w, http.StatusBadGateway, "backend_unavailable", "failed to load upcoming sessions")
		return
	}

	respondJSON(w, http.StatusOK, sessions)
}

// sessionRef decodes the composite chat id of the request, writing a 400 on failure
func sessionRef(w http.ResponseWriter, r *http.Request) (models.SessionRef, bool) {
	ref, err := chat.Decode(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_session_id", err.Error())
		return models.SessionRef{}, false
	}
	return ref, true
}

// ownedSessionRef decodes the composite chat id and checks that the chat
// is one of the caller's sessions. Unknown, foreign and unverifiable chats
// all answer 404.
func (s *Server) ownedSessionRef(w http.ResponseWriter, r *http.Request) (models.SessionRef, bool) {
	ref, ok := sessionRef(w, r)
	if !ok {
		return models.SessionRef{}, false
	}

	for _, cs := range s.deps.Backend.GetChatSessions(r.Context(), userID(r)) {
		if cs.ID.String() == ref.ChatID {
			return ref, true
		}
	}

	slog.Warn("chat session not owned by caller", "chat_id", ref.ChatID, "user", PrincipalFromContext(r.Context()).MaskedUserID())
	respondError(w, http.StatusNotFound, "chat_not_found", "chat session not found")
	return models.SessionRef{}, false
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.ownedSessionRef(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, chat.Status(ref, s.now()))
}

func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.ownedSessionRef(w, r)
	if !ok {
		return
	}

	limit := s.config.Chat.PageSize
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 {
			respondError(w, http.StatusBadRequest, "validation_error", "limit must be a positive integer")
			return
		}
		limit = l
	}

	respondJSON(w, http.StatusOK, s.deps.Backend.GetMessages(r.Context(), ref.ChatID, limit))
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.ownedSessionRef(w, r)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	err := s.deps.Sender.Send(r.Context(), ref, userID(r), req.Message)
	switch {
	case err == nil:
		respondJSON(w, http.StatusCreated, map[string]bool{"sent": true})
	case errors.Is(err, chat.ErrEmptyMessage):
		respondError(w, http.StatusBadRequest, "validation_error", "message is required")
	case errors.Is(err, chat.ErrSessionEnded):
		respondError(w, http.StatusConflict, "session_ended", "chat session has ended")
	default:
		slog.Error("failed to send message", "chat_id", ref.ChatID, "error", err)
		respondError(w, http.StatusBadGateway, "backend_unavailable", "failed to send message")
	}
}
