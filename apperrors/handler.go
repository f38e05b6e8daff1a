package apperrors

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// HandlerConfig configures the error handler
type HandlerConfig struct {
	// Logger for error logging
	Logger *log.Logger

	// ShowInternalErrors shows internal error details in responses (dev only)
	ShowInternalErrors bool

	// OnError is called for each error (useful for metrics/monitoring)
	OnError func(c *fiber.Ctx, err *AppError)
}

// DefaultHandlerConfig returns sensible defaults
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		Logger:             log.Default(),
		ShowInternalErrors: false,
		OnError:            nil,
	}
}

// Handler creates a Fiber error handler that renders every error as JSON
func Handler(config HandlerConfig) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		appErr := FromError(err)

		if config.Logger != nil {
			logError(config.Logger, c, appErr)
		}

		if config.OnError != nil {
			config.OnError(c, appErr)
		}

		return renderJSON(c, appErr, config.ShowInternalErrors)
	}
}

func renderJSON(c *fiber.Ctx, err *AppError, showInternal bool) error {
	body := fiber.Map{
		"code":    err.Code,
		"message": err.Message,
	}

	if len(err.Details) > 0 {
		body["details"] = err.Details
	}

	if showInternal && err.Internal != nil {
		body["internal"] = err.Internal.Error()
	}

	return c.Status(err.StatusCode).JSON(fiber.Map{"error": body})
}

// logError logs the error with request context
func logError(logger *log.Logger, c *fiber.Ctx, err *AppError) {
	// Don't log expected errors at error level
	if err.StatusCode < 500 {
		logger.Printf("[WARN] %s %s | %s | Status: %d | RequestID: %v",
			c.Method(), c.Path(), err.Error(), err.StatusCode, c.Locals("request_id"))
		return
	}

	logger.Printf("[ERROR] %s %s | %s | Status: %d | IP: %s | RequestID: %v",
		c.Method(), c.Path(), err.Error(), err.StatusCode, c.IP(), c.Locals("request_id"))

	if err.Internal != nil {
		logger.Printf("[ERROR] Internal error: %+v", err.Internal)
	}
}

// WrapHandler wraps a handler function with automatic error conversion
func WrapHandler(h func(*fiber.Ctx) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := h(c)
		if err == nil {
			return nil
		}
		return FromError(err)
	}
}
