package activity

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Post("/", func(c *fiber.Ctx) error {
		var req CreateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.UserID == "" || req.DistanceKm <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "user_id and distance_km required")
		}
		a, err := svc.CreateActivity(c.Context(), req.UserID, req.FinalizedActivity)
		if err != nil {
			return storeError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(a)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		userID := c.Query("user_id")
		if userID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		activities, err := svc.ListActivities(c.Context(), userID, c.QueryInt("limit", defaultListLimit))
		if err != nil {
			return storeError(err)
		}
		return c.JSON(activities)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		a, err := svc.GetActivity(c.Context(), c.Params("id"))
		if err != nil {
			return storeError(err)
		}
		return c.JSON(a)
	})
}

func storeError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrNoStore):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
