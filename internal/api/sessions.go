// internal/api/sessions.go
package api

import (
	"net/http"
	"strings"

	"wms-dispatch/internal/models"
	"wms-dispatch/internal/session"

	"github.com/go-chi/chi/v5"
)

type loginRequest struct {
	UserID   string            `json:"userId"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type activityRequest struct {
	Type string `json:"type"`
}

type sessionView struct {
	models.Session
	RemainingMs int64 `json:"remainingMs"`
}

func (s *Server) view(sess *models.Session) sessionView {
	return sessionView{Session: *sess, RemainingMs: sess.Remaining(s.now()).Milliseconds()}
}

func (s *Server) sessionConfig(w http.ResponseWriter, _ *http.Request) {
	cfg := s.sessions.Config()
	writeJSON(w, http.StatusOK, map[string]int64{
		"timeoutMs": cfg.Total.Milliseconds(),
		"warningMs": cfg.WarningLead.Milliseconds(),
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		badRequest(w, "userId is required")
		return
	}

	sess, err := s.sessions.Login(r.Context(), req.UserID, req.Metadata)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.view(sess))
}

func (s *Server) sessionStatus(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(sess))
}

func (s *Server) activity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	sess, err := s.sessions.Activity(r.Context(), chi.URLParam(r, "id"), session.ActivityKind(req.Type))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(sess))
}

func (s *Server) extend(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Extend(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(sess))
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	reason := r.URL.Query().Get("reason")
	if reason == "" {
		reason = session.LogoutReasonUser
	}

	if err := s.sessions.Logout(r.Context(), chi.URLParam(r, "id"), reason); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
