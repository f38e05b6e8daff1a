package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HTTPMetricsMiddleware tracks HTTP request metrics
func HTTPMetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Increment in-flight requests
		HTTPRequestsInFlight.Inc()
		defer HTTPRequestsInFlight.Dec()

		// Process request
		err := c.Next()

		// Calculate duration
		duration := time.Since(start).Seconds()

		// Get status code
		status := c.Response().StatusCode()
		statusStr := strconv.Itoa(status)

		// Get method and path
		method := c.Method()
		path := sanitizePath(c.Path())

		// Record metrics
		HTTPRequestDuration.WithLabelValues(method, path, statusStr).Observe(duration)
		HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()

		return err
	}
}

// sanitizePath replaces numeric ids with a placeholder to avoid high cardinality
// Example: /api/v1/activities/12 -> /api/v1/activities/:id
func sanitizePath(path string) string {
	if !strings.HasPrefix(path, "/api/v1/") {
		switch path {
		case "/", "/health", "/metrics":
			return path
		default:
			return "/other"
		}
	}

	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if _, err := strconv.Atoi(seg); err == nil {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}
