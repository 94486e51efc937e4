package onboarding

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Get("/:userID/tutorial", func(c *fiber.Ctx) error {
		seen, err := svc.HasSeenTutorial(c.Context(), c.Params("userID"))
		if err != nil {
			return storeError(err)
		}
		return c.JSON(fiber.Map{"user_id": c.Params("userID"), "has_seen_tutorial": seen})
	})

	r.Put("/:userID/tutorial", func(c *fiber.Ctx) error {
		body := struct {
			Seen *bool `json:"has_seen_tutorial"`
		}{}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		seen := true
		if body.Seen != nil {
			seen = *body.Seen
		}
		if err := svc.SetTutorialSeen(c.Context(), c.Params("userID"), seen); err != nil {
			return storeError(err)
		}
		return c.JSON(fiber.Map{"user_id": c.Params("userID"), "has_seen_tutorial": seen})
	})
}

func storeError(err error) error {
	if errors.Is(err, ErrNoStore) {
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
