package handlers

import (
	"campusconnect/apperrors"
	"campusconnect/db"
	"campusconnect/services/portal"

	"github.com/gofiber/fiber/v2"
)

type RegistrationsHandler struct {
	portal *portal.Service
}

func NewRegistrationsHandler(p *portal.Service) *RegistrationsHandler {
	return &RegistrationsHandler{portal: p}
}

// HandleList returns registrations, optionally filtered by userId or activityId
func (h *RegistrationsHandler) HandleList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := queryID(c, "userId")
		if err != nil {
			return err
		}
		activityID, err := queryID(c, "activityId")
		if err != nil {
			return err
		}

		var regs []db.Registration
		switch {
		case userID != 0:
			regs, err = h.portal.RegistrationsForUser(c.UserContext(), userID)
		case activityID != 0:
			regs, err = h.portal.RegistrationsForActivity(c.UserContext(), activityID)
		default:
			regs, err = h.portal.Registrations(c.UserContext())
		}
		if err != nil {
			return err
		}

		if userID != 0 && activityID != 0 {
			filtered := make([]db.Registration, 0, len(regs))
			for _, r := range regs {
				if r.ActivityID == activityID {
					filtered = append(filtered, r)
				}
			}
			regs = filtered
		}
		return c.JSON(regs)
	}
}

// HandleCreate registers the logged-in user for an activity. Admins may
// register another user by passing userId, and only admins may set a
// status other than registered.
func (h *RegistrationsHandler) HandleCreate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := currentUser(c)
		if err != nil {
			return err
		}

		var req RegistrationRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		if req.ActivityID <= 0 {
			return apperrors.NewValidationError("activityId is required")
		}

		if req.UserID == 0 {
			req.UserID = user.ID
		}
		if user.Role != db.RoleAdmin {
			if req.UserID != user.ID {
				return apperrors.NewForbidden(string(db.RoleAdmin), "register another user")
			}
			// students only sign up; attendance and cancellation go through the status route
			if req.Status != "" && req.Status != db.StatusRegistered {
				return apperrors.NewForbidden(string(db.RoleAdmin), "set registration status")
			}
		}

		reg, err := h.portal.CreateRegistration(c.UserContext(), db.NewRegistration{
			UserID:     req.UserID,
			ActivityID: req.ActivityID,
			Status:     req.Status,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(reg)
	}
}

// HandleUpdateStatus marks attendance or cancellation
func (h *RegistrationsHandler) HandleUpdateStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}

		var req StatusRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}

		reg, err := h.portal.UpdateRegistrationStatus(c.UserContext(), id, req.Status)
		if err != nil {
			return err
		}
		return c.JSON(reg)
	}
}

// HandleDelete removes a registration. Students may only remove their own.
func (h *RegistrationsHandler) HandleDelete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := currentUser(c)
		if err != nil {
			return err
		}

		id, err := pathID(c, "id")
		if err != nil {
			return err
		}

		if user.Role != db.RoleAdmin {
			mine, err := h.portal.RegistrationsForUser(c.UserContext(), user.ID)
			if err != nil {
				return err
			}
			if !containsRegistration(mine, id) {
				all, err := h.portal.Registrations(c.UserContext())
				if err != nil {
					return err
				}
				if containsRegistration(all, id) {
					return apperrors.NewForbidden(string(db.RoleAdmin), "delete another user's registration")
				}
			}
		}

		if err := h.portal.DeleteRegistration(c.UserContext(), id); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

func containsRegistration(regs []db.Registration, id int) bool {
	for _, r := range regs {
		if r.ID == id {
			return true
		}
	}
	return false
}
