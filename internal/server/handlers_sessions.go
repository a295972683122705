package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/marketctx/internal/models"
)

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		history := s.app.SessionCache.History(id)
		if history == nil {
			history = []models.ChatMessage{}
		}
		WriteJSON(w, http.StatusOK, map[string]any{
			"session_id": id,
			"messages":   history,
		})
	case http.MethodDelete:
		s.app.SessionCache.Reset(id)
		w.WriteHeader(http.StatusNoContent)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodDelete)
	}
}

type sessionMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (s *Server) handleSessionMessages(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req sessionMessageRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		WriteError(w, http.StatusBadRequest, "content is required")
		return
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = "user"
	}

	s.app.SessionCache.Append(id, role, req.Content)
	WriteJSON(w, http.StatusOK, map[string]any{
		"session_id": id,
		"messages":   s.app.SessionCache.History(id),
	})
}
