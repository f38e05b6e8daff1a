package routes

import (
	"campusconnect/server/handlers"
	"campusconnect/services/portal"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the operational endpoints and the versioned API
func RegisterRoutes(app *fiber.App, p *portal.Service, health *handlers.HealthCheckHandler) {
	app.Get("/health", health.HandleHealthCheck())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	NewAPIRoutes(p, health).Register(app)
}
