package server

import (
	"net/http"
	"time"
)

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// ConfigCheckHandler reports which workspace settings are present. Values
// that are secrets are reported as booleans only.
func (s *Server) ConfigCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"INSTANCE_URL":        valueOrNotSet(s.config.GetWorkspaceURL()),
			"WORKSPACE_ID":        valueOrNotSet(s.config.GetWorkspaceID()),
			"DASHBOARD_ID":        valueOrNotSet(s.config.GetDashboardID()),
			"OAUTH_CLIENT_ID_set": s.config.GetOAuthClientID() != "",
			"OAUTH_SECRET_set":    s.config.GetOAuthClientSecret() != "",
		})
	}
}

func valueOrNotSet(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}
