package handlers

import (
	"campusconnect/db"
	"campusconnect/services/portal"
	"campusconnect/utils"

	"github.com/gofiber/fiber/v2"
)

type ActivitiesHandler struct {
	portal *portal.Service
}

func NewActivitiesHandler(p *portal.Service) *ActivitiesHandler {
	return &ActivitiesHandler{portal: p}
}

func (h *ActivitiesHandler) HandleList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		activities, err := h.portal.Activities(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(activities)
	}
}

// HandleUpcoming lists activities that have not happened yet, soonest first
func (h *ActivitiesHandler) HandleUpcoming() fiber.Handler {
	return func(c *fiber.Ctx) error {
		activities, err := h.portal.UpcomingActivities(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(activities)
	}
}

func (h *ActivitiesHandler) HandleCreate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req ActivityRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}

		if verr := utils.ValidateActivityName(req.Name); verr != nil {
			return verr
		}
		if verr := utils.ValidateDescription(req.Description); verr != nil {
			return verr
		}

		activity, err := h.portal.CreateActivity(c.UserContext(), db.NewActivity{
			Name:        req.Name,
			Description: req.Description,
			Date:        req.Date,
			Category:    req.Category,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(activity)
	}
}

// HandleUpdate applies a partial update; fields missing from the body are kept
func (h *ActivitiesHandler) HandleUpdate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}

		var patch db.ActivityPatch
		if err := parseBody(c, &patch); err != nil {
			return err
		}

		if patch.Name != nil {
			if verr := utils.ValidateActivityName(*patch.Name); verr != nil {
				return verr
			}
		}
		if patch.Description != nil {
			if verr := utils.ValidateDescription(*patch.Description); verr != nil {
				return verr
			}
		}

		activity, err := h.portal.UpdateActivity(c.UserContext(), id, patch)
		if err != nil {
			return err
		}
		return c.JSON(activity)
	}
}

func (h *ActivitiesHandler) HandleDelete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}

		if err := h.portal.DeleteActivity(c.UserContext(), id); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// HandleAttendees lists the registrations for an activity with their users
func (h *ActivitiesHandler) HandleAttendees() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}

		attendees, err := h.portal.Attendees(c.UserContext(), id)
		if err != nil {
			return err
		}

		out := make([]fiber.Map, len(attendees))
		for i, a := range attendees {
			var user any
			if a.User != nil {
				user = toUserResponse(*a.User)
			}
			out[i] = fiber.Map{
				"id":         a.ID,
				"userId":     a.UserID,
				"activityId": a.ActivityID,
				"status":     a.Status,
				"user":       user,
			}
		}
		return c.JSON(out)
	}
}
