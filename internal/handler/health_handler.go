package handler

import (
	"net/http"
	"time"

	"lunchvote/internal/service"
	"lunchvote/pkg/logger"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	health *service.HealthService
	logger *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(health *service.HealthService, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		health: health,
		logger: logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks"`
}

// Check handles GET /health. An unreachable poll store answers 503.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := h.health.Check(r.Context())

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   "lunchvote",
		Checks:    status.Checks,
	}

	code := http.StatusOK
	if !status.Healthy {
		response.Status = "unhealthy"
		code = http.StatusServiceUnavailable
		h.logger.WithField("checks", status.Checks).Warn("Health check failed")
	}

	respondJSON(w, code, response)
}
