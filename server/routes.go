package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	// AUTH
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthCurrentUser, ChainMiddleware(s.CurrentUserHandler(), append(s.APIMiddleware(), s.RequireSession())...))

	// DASHBOARD (session-gated; the minter only ever sees the session's user)
	s.RegisterRouteHandler("GET "+RouteDashboardEmbedConfig, ChainMiddleware(s.EmbedConfigHandler(), append(s.APIMiddleware(), s.RequireSession())...))

	// SYSTEM
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteConfigCheck, ChainMiddleware(s.ConfigCheckHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.Handler())

	// CORS preflight for the API surface; CorsMiddleware answers OPTIONS
	// before the inner handler runs.
	s.RegisterRouteHandler("OPTIONS /api/", ChainMiddleware(s.preflightHandler(), s.APIMiddleware()...))
}

func (s *Server) preflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}
