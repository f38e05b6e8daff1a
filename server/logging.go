package server

import (
	"io"
	"log"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
)

// setupLogging configures the HTTP access log middleware
func setupLogging(app *fiber.App, out io.Writer) {
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip} | ${locals:request_id}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
		Output:     out,
	}))
}

// setupErrorLogging creates the logger the error handler writes to
func setupErrorLogging(out io.Writer) *log.Logger {
	return log.New(out, "", log.LstdFlags)
}
