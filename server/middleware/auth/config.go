package auth

import (
	"context"

	"campusconnect/apperrors"
	"campusconnect/db"

	"github.com/gofiber/fiber/v2"
)

// Resolver looks up the logged-in user. It returns nil when nobody is.
type Resolver interface {
	CurrentUser(ctx context.Context) (*db.User, error)
}

type Config struct {
	// Next defines a function to skip middleware.
	//
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool

	// Resolver provides the current session user.
	//
	// Required. Default: nil
	Resolver Resolver

	// Unauthorized is called when no user is logged in.
	//
	// Optional. Default: returns an UNAUTHORIZED AppError
	Unauthorized fiber.Handler
}

var ConfigDefault = Config{
	Next:     nil,
	Resolver: nil,
	Unauthorized: func(c *fiber.Ctx) error {
		return apperrors.NewUnauthorized("Please log in to continue")
	},
}

func configDefault(config ...Config) Config {
	// Return default config if nothing provided
	if len(config) < 1 {
		return ConfigDefault
	}

	// Override default config
	cfg := config[0]

	if cfg.Unauthorized == nil {
		cfg.Unauthorized = ConfigDefault.Unauthorized
	}

	return cfg
}
