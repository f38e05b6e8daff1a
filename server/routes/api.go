package routes

import (
	"campusconnect/db"
	"campusconnect/server/handlers"
	"campusconnect/server/middleware/auth"
	"campusconnect/services/portal"

	"github.com/gofiber/fiber/v2"
)

// APIRoutes handles versioned API endpoints
type APIRoutes struct {
	portal *portal.Service
	health *handlers.HealthCheckHandler
}

// NewAPIRoutes creates a new API routes handler
func NewAPIRoutes(p *portal.Service, health *handlers.HealthCheckHandler) *APIRoutes {
	return &APIRoutes{portal: p, health: health}
}

// Register sets up all API routes with versioning
func (ar *APIRoutes) Register(app *fiber.App) {
	// API base group
	api := app.Group("/api")

	// Version 1 endpoints
	ar.registerV1Routes(api)
}

// registerV1Routes sets up API v1 endpoints
func (ar *APIRoutes) registerV1Routes(api fiber.Router) {
	v1 := api.Group("/v1")

	v1.Get("/status", ar.health.HandleStatus())

	authH := handlers.NewAuthHandler(ar.portal)
	usersH := handlers.NewUsersHandler(ar.portal)
	activitiesH := handlers.NewActivitiesHandler(ar.portal)
	registrationsH := handlers.NewRegistrationsHandler(ar.portal)

	// Public: the login screen lists demo identities
	v1.Get("/users", usersH.HandleList())

	authGroup := v1.Group("/auth")
	authGroup.Post("/signup", authH.HandleSignup())
	authGroup.Post("/login", authH.HandleLogin())
	authGroup.Post("/login/:id", authH.HandleLoginByID())
	authGroup.Post("/logout", authH.HandleLogout())
	authGroup.Get("/me", authH.HandleMe())

	requireUser := auth.New(auth.Config{Resolver: ar.portal})
	requireAdmin := auth.RequireRole(db.RoleAdmin)

	v1.Get("/me/overview", requireUser, usersH.HandleOverview())

	activities := v1.Group("/activities", requireUser)
	activities.Get("/", activitiesH.HandleList())
	activities.Get("/upcoming", activitiesH.HandleUpcoming())
	activities.Post("/", requireAdmin, activitiesH.HandleCreate())
	activities.Patch("/:id", requireAdmin, activitiesH.HandleUpdate())
	activities.Delete("/:id", requireAdmin, activitiesH.HandleDelete())
	activities.Get("/:id/attendees", requireAdmin, activitiesH.HandleAttendees())

	registrations := v1.Group("/registrations", requireUser)
	registrations.Get("/", registrationsH.HandleList())
	registrations.Post("/", registrationsH.HandleCreate())
	registrations.Patch("/:id/status", requireAdmin, registrationsH.HandleUpdateStatus())
	registrations.Delete("/:id", registrationsH.HandleDelete())
}
