package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"buddyx/internal/auth"
	"buddyx/internal/storage"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "username required and password must be at least 8 characters")
		return
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	user, err := s.service.Storage().CreateUser(r.Context(), req.Username, hash)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.issueSession(w, r, user.ID, user.Username, http.StatusCreated)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	user, err := s.service.Storage().GetUserByUsername(r.Context(), strings.TrimSpace(req.Username))
	if errors.Is(err, storage.ErrNotFound) {
		// Same response as a wrong password.
		writeDomainError(w, auth.ErrInvalidCredentials)
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := s.auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		writeDomainError(w, err)
		return
	}

	s.issueSession(w, r, user.ID, user.Username, http.StatusOK)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) issueSession(w http.ResponseWriter, r *http.Request, userID int64, username string, status int) {
	token, err := s.auth.GenerateToken(userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.auth.TokenExpiry().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	slog.InfoContext(r.Context(), "Session issued", "user_id", userID, "username", username)
	writeJSON(w, status, sessionResponse{Token: token, Username: username})
}
