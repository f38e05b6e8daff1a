package handlers

import (
	"campusconnect/apperrors"
	"campusconnect/db"
	"campusconnect/server/middleware/auth"
	"campusconnect/utils"

	"github.com/gofiber/fiber/v2"
)

// parseBody decodes the JSON request body into v
func parseBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return apperrors.NewBadRequest("Invalid request body").WithInternal(err)
	}
	return nil
}

// pathID reads the positive integer route parameter name
func pathID(c *fiber.Ctx, name string) (int, error) {
	id, err := utils.ParseID(name, c.Params(name))
	if err != nil {
		return 0, err
	}
	return id, nil
}

// queryID reads an optional positive integer query parameter; 0 means absent
func queryID(c *fiber.Ctx, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	id, err := utils.ParseID(name, raw)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// currentUser returns the session user set by the auth middleware
func currentUser(c *fiber.Ctx) (*db.User, error) {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("")
	}
	return user, nil
}
