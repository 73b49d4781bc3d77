package service

import (
	"context"
	"time"

	"lunchvote/internal/repository"
)

// HealthStatus reports the state of each dependency
type HealthStatus struct {
	Healthy bool              `json:"healthy"`
	Checks  map[string]string `json:"checks"`
}

// HealthService checks the poll store and the cache
type HealthService struct {
	store repository.PollStore
	cache *CacheService
}

// NewHealthService creates a new health service
func NewHealthService(store repository.PollStore, cache *CacheService) *HealthService {
	return &HealthService{store: store, cache: cache}
}

// Check pings the store and Redis. Redis is optional, so its failure
// degrades the report without making it unhealthy.
func (h *HealthService) Check(ctx context.Context) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := HealthStatus{Healthy: true, Checks: map[string]string{}}

	if err := h.store.Health(ctx); err != nil {
		status.Healthy = false
		status.Checks["store"] = "unhealthy: " + err.Error()
	} else {
		status.Checks["store"] = "ok"
	}

	switch {
	case !h.cache.Enabled():
		status.Checks["redis"] = "disabled"
	case h.cache.HealthCheck(ctx) != nil:
		status.Checks["redis"] = "degraded"
	default:
		status.Checks["redis"] = "ok"
	}
	return status
}
