package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/rideon-session/internal/config"
	"github.com/jrsteele09/rideon-session/internal/metrics"
	"github.com/jrsteele09/rideon-session/token"
	"github.com/jrsteele09/rideon-session/users"
	"github.com/rs/zerolog/log"
)

// Server is a local stand-in for the RideOn backend. It serves the login,
// token refresh, logout and profile endpoints the session manager talks to.
type Server struct {
	env            string // Environment (e.g., "DEV", "PROD")
	mux            *http.ServeMux
	routes         []string
	config         config.Config
	users          users.UserRepo
	issuer         *token.Issuer
	metrics        *metrics.Metrics
	csrfCookieName string
}

func New(config config.Config, userRepo users.UserRepo, issuer *token.Issuer) (*Server, error) {
	if userRepo == nil || issuer == nil {
		return nil, fmt.Errorf("[Server New] user repo and issuer are required")
	}

	s := &Server{
		mux:            http.NewServeMux(),
		config:         config,
		users:          userRepo,
		issuer:         issuer,
		metrics:        metrics.New(config.GetAppName() + "-devserver"),
		csrfCookieName: config.GetCSRFCookieName(),
	}
	s.env = config.GetEnv()

	if _, err := s.InitialiseSystem(); err != nil {
		return nil, fmt.Errorf("[Server New] Failed to initialise the system: %w", err)
	}

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
		return
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
	log.Info().Msgf("[%-19s] %s", colouredMethod(method), path)
}

func logError(method, path, error string) {
	log.Error().Msgf("[%-19s] %s %s", colouredMethod(method), path, Red+error+ResetColor)
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
