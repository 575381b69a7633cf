// Package health provides the liveness and readiness endpoints.
package health

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/bbl-multi-builder/internal/service"
)

// Reporter reports whether statistics are loaded
type Reporter interface {
	Health() service.HealthStatus
}

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status     string `json:"status"`
	Service    string `json:"service"`
	DataLoaded bool   `json:"data_loaded"`
	Teams      int    `json:"teams,omitempty"`
	Players    int    `json:"players,omitempty"`
	Timestamp  string `json:"timestamp,omitempty"`
	Version    string `json:"version,omitempty"`
}

// ReadyResponse represents the JSON response for readiness check endpoints.
type ReadyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Checks   map[string]string `json:"checks,omitempty"`
	Duration string            `json:"duration,omitempty"`
}

// Handler serves /health, /live and /ready.
type Handler struct {
	serviceName string
	version     string
	reporter    Reporter
	logger      *logrus.Logger
	mu          sync.RWMutex
	ready       bool
}

// Config holds the configuration for the health handler.
type Config struct {
	ServiceName string
	Version     string
	Reporter    Reporter
	Logger      *logrus.Logger
}

// NewHandler creates a new health handler. It starts not ready.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		serviceName: cfg.ServiceName,
		version:     cfg.Version,
		reporter:    cfg.Reporter,
		logger:      cfg.Logger,
	}
}

// Register mounts the endpoints on router
func (h *Handler) Register(router *mux.Router) {
	router.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/live", h.handleLive).Methods(http.MethodGet)
	router.HandleFunc("/ready", h.handleReady).Methods(http.MethodGet)
}

// SetReady marks the service as ready to accept traffic.
func (h *Handler) SetReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = ready
	if h.logger != nil {
		h.logger.WithField("ready", ready).Info("Readiness changed")
	}
}

// IsReady returns whether the service is ready.
func (h *Handler) IsReady() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ready
}

// handleHealth reports data status alongside liveness.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Service:   h.serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
	}
	if h.reporter != nil {
		status := h.reporter.Health()
		response.Status = status.Status
		response.DataLoaded = status.DataLoaded
		response.Teams = status.Teams
		response.Players = status.Players
	}

	writeJSON(w, http.StatusOK, response)
}

// handleLive handles the /live endpoint - kubernetes liveness check.
func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Service: h.serviceName})
}

// handleReady handles the /ready endpoint - checks that statistics are loaded.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks := make(map[string]string)
	allHealthy := true

	// Check if manually marked as not ready
	if !h.IsReady() {
		allHealthy = false
		checks["service"] = "not_ready"
	} else {
		checks["service"] = "ok"
	}

	if h.reporter == nil || !h.reporter.Health().DataLoaded {
		allHealthy = false
		checks["statistics"] = "not_loaded"
	} else {
		checks["statistics"] = "ok"
	}

	response := ReadyResponse{
		Service:  h.serviceName,
		Checks:   checks,
		Duration: time.Since(start).String(),
	}

	status := http.StatusOK
	if allHealthy {
		response.Status = "ok"
	} else {
		response.Status = "not_ready"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, response)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
