package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// embedConfigResponse is everything the frontend needs to hand the embed
// SDK: the workspace coordinates plus a freshly minted user-scoped token.
type embedConfigResponse struct {
	WorkspaceURL   string `json:"workspace_url"`
	WorkspaceID    string `json:"workspace_id"`
	DashboardID    string `json:"dashboard_id"`
	WarehouseID    string `json:"warehouse_id"`
	EmbedToken     string `json:"embed_token"`
	TokenExpiresIn int    `json:"token_expires_in"`
	UserContext    any    `json:"user_context"`
}

// EmbedConfigHandler mints a token scoped to the session's user and returns
// it with the dashboard coordinates. The email bound to the token always
// comes from the server-side session, never from the request.
func (s *Server) EmbedConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			writeJSONError(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		minted, err := s.minter.Mint(r.Context(), user.Email)
		if err != nil {
			log.Err(err).Msg("token minting failed")
			writeJSONError(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, embedConfigResponse{
			WorkspaceURL:   s.config.GetWorkspaceURL(),
			WorkspaceID:    s.config.GetWorkspaceID(),
			DashboardID:    s.config.GetDashboardID(),
			WarehouseID:    s.config.GetWarehouseID(),
			EmbedToken:     minted.AccessToken,
			TokenExpiresIn: minted.ExpiresIn,
			UserContext:    user,
		})
	}
}
