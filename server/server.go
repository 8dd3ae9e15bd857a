package server

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"strings"

	"dashembed/auth"
	"dashembed/internal/config"
	"dashembed/internal/metrics"
	"dashembed/token"
)

// TokenMinter is the slice of the minting layer the HTTP surface needs.
type TokenMinter interface {
	Mint(ctx context.Context, userEmail string) (*token.MintedToken, error)
}

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	auth    *auth.Service
	minter  TokenMinter
	cookies *SessionCookies
	metrics *metrics.Metrics
}

func New(config config.Config, authService *auth.Service, minter TokenMinter, m *metrics.Metrics) (*Server, error) {
	if authService == nil {
		return nil, fmt.Errorf("[Server New] auth service is required")
	}
	if minter == nil {
		return nil, fmt.Errorf("[Server New] token minter is required")
	}

	s := &Server{
		mux:     http.NewServeMux(),
		config:  config,
		auth:    authService,
		minter:  minter,
		metrics: m,
	}
	s.env = config.GetEnv()
	s.cookies = NewSessionCookies(
		[]byte(config.GetSessionSecret()),
		config.GetSessionMaxAge(),
		config.GetCrossOriginEmbed(),
	)

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	stdlog.Printf("[%-19s] %s\n", displayMethod, path)
}
