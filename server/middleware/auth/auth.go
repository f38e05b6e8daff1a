package auth

import (
	"campusconnect/apperrors"
	"campusconnect/db"

	"github.com/gofiber/fiber/v2"
)

// userKey is the Locals key the session user is stored under.
const userKey = "user"

// New resolves the session user and stores it in Locals. Requests with no
// logged-in user are rejected.
func New(config Config) fiber.Handler {
	cfg := configDefault(config)
	if cfg.Resolver == nil {
		panic("auth: Resolver is required")
	}

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		user, err := cfg.Resolver.CurrentUser(c.UserContext())
		if err != nil {
			return err
		}
		if user == nil {
			return cfg.Unauthorized(c)
		}

		c.Locals(userKey, user)
		c.Locals("user_id", user.ID)

		return c.Next()
	}
}

// RequireRole rejects requests whose user, set by New, lacks role.
func RequireRole(role db.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("")
		}
		if user.Role != role {
			return apperrors.NewForbidden(string(role), c.Method()+" "+c.Path())
		}
		return c.Next()
	}
}

// UserFromContext returns the user stored by New.
func UserFromContext(c *fiber.Ctx) (*db.User, bool) {
	user, ok := c.Locals(userKey).(*db.User)
	return user, ok && user != nil
}
