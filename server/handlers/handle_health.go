package handlers

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Check probes one dependency. A nil error means healthy.
type Check func(ctx context.Context) error

// HealthCheckHandler provides health and readiness checks
type HealthCheckHandler struct {
	backend string
	checks  map[string]Check
}

// NewHealthCheckHandler creates a health handler for the given storage
// backend name and dependency checks
func NewHealthCheckHandler(backend string, checks map[string]Check) *HealthCheckHandler {
	if checks == nil {
		checks = make(map[string]Check)
	}
	return &HealthCheckHandler{
		backend: backend,
		checks:  checks,
	}
}

// HealthCheckResponse represents the health status
type HealthCheckResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Version   string                 `json:"version"`
	Backend   string                 `json:"storage_backend"`
	Uptime    float64                `json:"uptime_seconds"`
	Checks    map[string]CheckStatus `json:"checks,omitempty"`
}

// CheckStatus represents individual component status
type CheckStatus struct {
	Status      string  `json:"status"`
	Message     string  `json:"message,omitempty"`
	Latency     float64 `json:"latency_ms"`
	LastChecked string  `json:"last_checked"`
}

const version = "1.0.0"

var startTime = time.Now()

func (h *HealthCheckHandler) baseResponse(status string) HealthCheckResponse {
	return HealthCheckResponse{
		Status:    status,
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   version,
		Backend:   h.backend,
		Uptime:    time.Since(startTime).Seconds(),
	}
}

// HandleHealthCheck reports that the process is up
func (h *HealthCheckHandler) HandleHealthCheck() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(h.baseResponse("healthy"))
	}
}

// HandleStatus runs every dependency check and reports 503 when any fails
func (h *HealthCheckHandler) HandleStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()

		response := h.baseResponse("ready")
		response.Checks = make(map[string]CheckStatus, len(h.checks))

		names := make([]string, 0, len(h.checks))
		for name := range h.checks {
			names = append(names, name)
		}
		sort.Strings(names)

		healthy := true
		for _, name := range names {
			status := runCheck(ctx, h.checks[name])
			response.Checks[name] = status
			if status.Status != "healthy" {
				healthy = false
			}
		}

		if !healthy {
			response.Status = "degraded"
			return c.Status(fiber.StatusServiceUnavailable).JSON(response)
		}
		return c.JSON(response)
	}
}

func runCheck(ctx context.Context, check Check) CheckStatus {
	start := time.Now()
	err := check(ctx)
	latency := time.Since(start)

	status := CheckStatus{
		Status:      "healthy",
		Latency:     float64(latency.Milliseconds()),
		LastChecked: time.Now().Format(time.RFC3339),
	}
	if err != nil {
		status.Status = "unhealthy"
		status.Message = err.Error()
	}
	return status
}
