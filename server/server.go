package server

import (
	"context"
	"fmt"
	"strconv"

	"campusconnect/apperrors"
	"campusconnect/config"
	"campusconnect/pkg/logger"
	"campusconnect/pkg/metrics"
	"campusconnect/server/handlers"
	"campusconnect/server/middleware/limiter"
	"campusconnect/server/routes"
	"campusconnect/services/portal"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

type Server struct {
	App    *fiber.App
	portal *portal.Service
	cfg    *config.Config
	log    *logger.Logger
}

// Options carries the optional collaborators of a Server.
type Options struct {
	// Logger receives access and error logs. Defaults to the global logger.
	Logger *logger.Logger

	// LimiterStorage holds rate limit buckets. Defaults to in-memory.
	LimiterStorage limiter.Storage

	// Checks are the dependency probes reported by /api/v1/status.
	Checks map[string]handlers.Check
}

func NewServer(cfg *config.Config, p *portal.Service, opts Options) (*Server, error) {
	if cfg == nil || p == nil {
		return nil, fmt.Errorf("server: config and portal service are required")
	}

	log := opts.Logger
	if log == nil {
		log = logger.GetDefault()
	}

	errorConfig := apperrors.HandlerConfig{
		Logger:             setupErrorLogging(log.Writer()),
		ShowInternalErrors: cfg.IsDevelopment(),
		OnError: func(c *fiber.Ctx, err *apperrors.AppError) {
			metrics.RecordError(string(err.Code), strconv.Itoa(err.StatusCode))
		},
	}

	// Create Fiber app with custom error handler
	app := fiber.New(fiber.Config{
		AppName:      "CampusConnect",
		ServerHeader: "CampusConnect",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: apperrors.Handler(errorConfig),
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.IsDevelopment()}))
	app.Use(requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: "request_id",
	}))

	setupLogging(app, log.Writer())

	app.Use(metrics.HTTPMetricsMiddleware())

	// Setup rate limiting
	app.Use(limiter.New(limiter.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
		Capacity:     cfg.RateLimit.Capacity,
		RefillRate:   cfg.RateLimit.RefillRate,
		RefillPeriod: cfg.RateLimit.RefillPeriod,
		Storage:      opts.LimiterStorage,
		LimitReachedHandler: func(c *fiber.Ctx) error {
			return apperrors.NewRateLimitError()
		},
	}))

	health := handlers.NewHealthCheckHandler(cfg.Storage.Backend, opts.Checks)
	routes.RegisterRoutes(app, p, health)

	return &Server{
		App:    app,
		portal: p,
		cfg:    cfg,
		log:    log,
	}, nil
}

func (s *Server) Start() error {
	addr := s.cfg.ServerAddress()
	s.log.Info("Starting server on %s", addr)
	return s.App.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down server...")
	return s.App.ShutdownWithContext(ctx)
}
