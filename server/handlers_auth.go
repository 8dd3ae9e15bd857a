package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler processes the JSON login submission. The response error is
// the same whichever credential check failed.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "Invalid JSON body", http.StatusBadRequest)
			return
		}

		user, sessionID, err := s.auth.Login(req.Email, req.Password)
		if err != nil {
			s.metrics.IncrementLogin("failure")
			writeJSONError(w, "Invalid email or password", http.StatusUnauthorized)
			return
		}

		if err := s.cookies.Set(w, sessionID); err != nil {
			log.Err(err).Msg("failed to issue session cookie")
			_ = s.auth.Logout(sessionID)
			writeJSONError(w, "Failed to create session", http.StatusInternalServerError)
			return
		}

		s.metrics.IncrementLogin("success")
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"user":    user, // password field never serializes
		})
	}
}

// LogoutHandler destroys the current session. Always succeeds, with or
// without a session.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessionID, err := s.cookies.Read(r); err == nil {
			_ = s.auth.Logout(sessionID)
		}
		s.cookies.Clear(w)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// CurrentUserHandler returns the authenticated user. RequireSession has
// already resolved and validated it.
func (s *Server) CurrentUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			writeJSONError(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}
