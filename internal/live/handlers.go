package live

import (
	"errors"
	"log"

	"github.com/chgenberg/runmate-sub002/internal/tracking"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type stopResponse struct {
	View
	Activity tracking.FinalizedActivity `json:"activity"`
}

type sourceErrorRequest struct {
	Code string `json:"code"`
}

// ingestMessage is one frame on the ingest websocket: a sample or a device error code.
type ingestMessage struct {
	Sample *tracking.LocationSample `json:"sample,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

type ingestReply struct {
	View  *View  `json:"session,omitempty"`
	Error string `json:"error,omitempty"`
}

func RegisterRoutes(r fiber.Router, m *Manager) {
	r.Post("/sessions", func(c *fiber.Ctx) error {
		var req StartRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		view, err := m.Start(req)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(view)
	})

	r.Get("/sessions/:id", func(c *fiber.Ctx) error {
		view, err := m.Get(c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(view)
	})

	r.Post("/sessions/:id/samples", func(c *fiber.Ctx) error {
		var sample tracking.LocationSample
		if err := c.BodyParser(&sample); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		view, err := m.PushSample(c.Params("id"), sample)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusAccepted).JSON(view)
	})

	r.Post("/sessions/:id/errors", func(c *fiber.Ctx) error {
		var req sourceErrorRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		view, err := m.ReportSourceError(c.Params("id"), req.Code)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusAccepted).JSON(view)
	})

	r.Post("/sessions/:id/pause", transitionHandler(m.Pause))
	r.Post("/sessions/:id/resume", transitionHandler(m.Resume))
	r.Post("/sessions/:id/cancel", transitionHandler(m.Cancel))

	r.Post("/sessions/:id/stop", func(c *fiber.Ctx) error {
		view, activity, err := m.Stop(c.UserContext(), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(stopResponse{View: view, Activity: activity})
	})

	r.Post("/sessions/:id/retry", func(c *fiber.Ctx) error {
		view, activity, err := m.Retry(c.UserContext(), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(stopResponse{View: view, Activity: activity})
	})

	r.Get("/sessions/:id/export", func(c *fiber.Ctx) error {
		activity, err := m.Export(c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(activity)
	})

	r.Get("/ingest/:id", websocket.New(func(c *websocket.Conn) {
		id := c.Params("id")
		for {
			var msg ingestMessage
			if err := c.ReadJSON(&msg); err != nil {
				return
			}
			reply := ingest(m, id, msg)
			if err := c.WriteJSON(reply); err != nil {
				log.Printf("live ingest %s write error: %v", id, err)
				return
			}
		}
	}))
}

func ingest(m *Manager, id string, msg ingestMessage) ingestReply {
	var (
		view View
		err  error
	)
	switch {
	case msg.Sample != nil:
		view, err = m.PushSample(id, *msg.Sample)
	case msg.Error != "":
		view, err = m.ReportSourceError(id, msg.Error)
	default:
		view, err = m.Get(id)
	}
	if err != nil {
		return ingestReply{Error: err.Error()}
	}
	return ingestReply{View: &view}
}

func transitionHandler(fn func(string) (View, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := fn(c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(view)
	}
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrMissingUser), errors.Is(err, ErrUnknownSourceError):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, tracking.ErrInsufficientDistance):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, tracking.ErrInvalidTransition),
		errors.Is(err, tracking.ErrNothingToRetry),
		errors.Is(err, tracking.ErrSaveInProgress),
		errors.Is(err, ErrNotTracking),
		errors.Is(err, ErrNothingToExport):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, tracking.ErrPersistence):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
