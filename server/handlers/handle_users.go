package handlers

import (
	"campusconnect/services/portal"

	"github.com/gofiber/fiber/v2"
)

type UsersHandler struct {
	portal *portal.Service
}

func NewUsersHandler(p *portal.Service) *UsersHandler {
	return &UsersHandler{portal: p}
}

// HandleList returns every user without passwords
func (h *UsersHandler) HandleList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := h.portal.Users(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(toUserResponses(users))
	}
}

// HandleOverview returns the student dashboard of the logged-in user
func (h *UsersHandler) HandleOverview() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := currentUser(c)
		if err != nil {
			return err
		}

		overview, err := h.portal.StudentOverview(c.UserContext(), user.ID)
		if err != nil {
			return err
		}
		return c.JSON(overview)
	}
}
