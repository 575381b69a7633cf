// Package server exposes the query facade as a JSON HTTP API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/bbl-multi-builder/internal/health"
	"github.com/yourusername/bbl-multi-builder/internal/metrics"
	"github.com/yourusername/bbl-multi-builder/internal/service"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port                 int
	Version              string
	CORSOrigins          []string
	CORSAllowCredentials bool
	RateLimitPerSecond   float64 // zero disables rate limiting
	RateLimitBurst       int
	ReadTimeout          time.Duration
	WriteTimeout         time.Duration
	MetricsEnabled       bool
	MetricsPath          string
}

// Server is the JSON API server.
type Server struct {
	httpServer *http.Server
	logger     *logrus.Entry
}

// NewServer registers every route and wraps the router in the middleware chain.
func NewServer(cfg Config, facade *service.QueryFacade, healthHandler *health.Handler, log *logrus.Logger) *Server {
	entry := log.WithField("component", "server")
	h := &handlers{facade: facade, version: cfg.Version}

	router := mux.NewRouter()
	router.Use(logging(entry))

	router.HandleFunc("/", h.root).Methods(http.MethodGet)
	healthHandler.Register(router)
	router.HandleFunc("/teams", h.listTeams).Methods(http.MethodGet)
	router.HandleFunc("/matches", h.listMatches).Methods(http.MethodGet)
	router.HandleFunc("/players/{team}", h.listPlayers).Methods(http.MethodGet)
	router.HandleFunc("/teams/{team}/recommendations", h.teamRecommendations).Methods(http.MethodGet)
	router.HandleFunc("/recommendations", h.matchRecommendations).Methods(http.MethodPost)
	router.HandleFunc("/build-multi", h.buildMulti).Methods(http.MethodPost)

	if cfg.MetricsEnabled {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, metrics.Handler()).Methods(http.MethodGet)
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Outer middleware sees unmatched routes and preflight requests too
	var handler http.Handler = router
	if cfg.RateLimitPerSecond > 0 {
		handler = newClientLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst).middleware(handler)
	}
	handler = cors(cfg.CORSOrigins, cfg.CORSAllowCredentials)(handler)

	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 15 * time.Second
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  60 * time.Second,
		},
		logger: entry,
	}
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("Server starting")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Server shutting down")
	return s.httpServer.Shutdown(ctx)
}
