package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/forecast"
	"github.com/i474232898/weather-dashboard/internal/revalidate"
)

var validate = validator.New()

// SeriesReader is the cached series lookup behind /series.
type SeriesReader interface {
	Get(ctx context.Context, sel forecast.Selection) (revalidate.Result, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, series SeriesReader, sessions *dashboard.Manager) {
	v1 := app.Group("/api/v1")

	v1.Get("/options", func(c *fiber.Ctx) error {
		return c.JSON(dashboard.Options())
	})

	v1.Get("/series", func(c *fiber.Ctx) error {
		sel, err := parseSelectionQuery(c)
		if err != nil {
			return err
		}

		res, err := series.Get(c.UserContext(), sel)
		if err != nil {
			return toHTTPError(err)
		}

		return c.JSON(seriesResponse{
			Key:       sel.Key(),
			Selection: sel,
			Points:    res.Points,
			FetchedAt: res.FetchedAt,
			Cached:    res.Cached,
		})
	})

	v1.Get("/chart", func(c *fiber.Ctx) error {
		sel, err := parseSelectionQuery(c)
		if err != nil {
			return err
		}
		return c.JSON(sessions.Chart(c.UserContext(), sel))
	})

	v1.Post("/sessions", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusCreated).JSON(sessions.Create())
	})

	v1.Get("/sessions/:id", func(c *fiber.Ctx) error {
		id, err := sessionID(c)
		if err != nil {
			return err
		}
		snap, err := sessions.Get(id)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(snap)
	})

	v1.Put("/sessions/:id/selection", func(c *fiber.Ctx) error {
		id, err := sessionID(c)
		if err != nil {
			return err
		}

		var patch dashboard.SelectionPatch
		if err := c.BodyParser(&patch); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid selection body")
		}
		if err := validate.Struct(selectionBody(patch)); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snap, err := sessions.Select(id, patch)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(snap)
	})

	v1.Post("/sessions/:id/events", func(c *fiber.Ctx) error {
		id, err := sessionID(c)
		if err != nil {
			return err
		}

		var req eventRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid event body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		triggered, err := sessions.Event(c.UserContext(), id, req.Event)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(fiber.Map{
			"event":       req.Event,
			"revalidated": triggered,
		})
	})

	v1.Delete("/sessions/:id", func(c *fiber.Ctx) error {
		id, err := sessionID(c)
		if err != nil {
			return err
		}
		if err := sessions.Delete(id); err != nil {
			return toHTTPError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// toHTTPError maps domain errors onto status codes. Upstream failures share
// one message; the detail is logged where it happened.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, forecast.ErrUnknownCity), errors.Is(err, forecast.ErrInvalidSelection):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, dashboard.ErrUnknownEvent):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, dashboard.ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case forecast.IsUnavailable(err):
		return fiber.NewError(fiber.StatusBadGateway, dashboard.UnavailableMessage)
	}
	return fiber.NewError(fiber.StatusInternalServerError, "internal error")
}

type seriesResponse struct {
	Key       string             `json:"key"`
	Selection forecast.Selection `json:"selection"`
	Points    []forecast.Point   `json:"points"`
	FetchedAt time.Time          `json:"fetchedAt"`
	Cached    bool               `json:"cached"`
}

// selectionQuery holds the raw selector values. Empty values mean the default.
type selectionQuery struct {
	City   string `validate:"max=32"`
	Metric string `validate:"max=32"`
	Period string `validate:"max=16"`
	Unit   string `validate:"max=16"`
}

type selectionBody struct {
	City   string `json:"city" validate:"max=32"`
	Metric string `json:"metric" validate:"max=32"`
	Period string `json:"period" validate:"max=16"`
	Unit   string `json:"unit" validate:"max=16"`
}

type eventRequest struct {
	Event string `json:"event" validate:"required,oneof=focus reconnect"`
}

func parseSelectionQuery(c *fiber.Ctx) (forecast.Selection, error) {
	q := selectionQuery{
		City:   c.Query("city"),
		Metric: c.Query("metric"),
		Period: c.Query("period"),
		Unit:   c.Query("unit"),
	}
	if err := validate.Struct(q); err != nil {
		return forecast.Selection{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	sel, err := forecast.ParseSelection(q.City, q.Metric, q.Period, q.Unit)
	if err != nil {
		return forecast.Selection{}, toHTTPError(err)
	}
	return sel, nil
}

func sessionID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if err := validate.Var(id, "required,uuid"); err != nil {
		return "", fiber.NewError(fiber.StatusNotFound, dashboard.ErrSessionNotFound.Error())
	}
	return id, nil
}
