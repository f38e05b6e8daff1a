package handlers

import (
	"campusconnect/db"
	"campusconnect/pkg/logger"
	"campusconnect/services/portal"
	"campusconnect/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	portal *portal.Service
}

func NewAuthHandler(p *portal.Service) *AuthHandler {
	return &AuthHandler{portal: p}
}

// HandleSignup creates an account and logs it in
func (h *AuthHandler) HandleSignup() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req SignupRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}

		if verr := utils.ValidateSignup(req.Name, req.Username, req.Password); verr != nil {
			return verr
		}

		user, err := h.portal.Signup(c.UserContext(), db.NewUser{
			Username: req.Username,
			Password: req.Password,
			Name:     req.Name,
			Role:     req.Role,
		})
		if err != nil {
			return err
		}

		logger.WithFields(map[string]any{
			"user_id":    user.ID,
			"username":   user.Username,
			"role":       user.Role,
			"request_id": c.Locals("request_id"),
		}).Info("User signed up")

		return c.Status(fiber.StatusCreated).JSON(toUserResponse(user))
	}
}

// HandleLogin logs in with username and password
func (h *AuthHandler) HandleLogin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}

		if verr := utils.ValidateLogin(req.Username, req.Password); verr != nil {
			return verr
		}

		user, err := h.portal.Login(c.UserContext(), req.Username, req.Password)
		if err != nil {
			return err
		}

		return c.JSON(toUserResponse(user))
	}
}

// HandleLoginByID switches the session to a demo identity
func (h *AuthHandler) HandleLoginByID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}

		user, err := h.portal.LoginByID(c.UserContext(), id)
		if err != nil {
			return err
		}

		return c.JSON(toUserResponse(user))
	}
}

func (h *AuthHandler) HandleLogout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := h.portal.Logout(c.UserContext()); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// HandleMe returns the logged-in user, or null when nobody is
func (h *AuthHandler) HandleMe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := h.portal.CurrentUser(c.UserContext())
		if err != nil {
			return err
		}
		if user == nil {
			return c.JSON(nil)
		}
		return c.JSON(toUserResponse(*user))
	}
}
