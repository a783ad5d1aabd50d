package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func registerHistoryRoutes(app *fiber.App, history HistoryStore, log *zap.Logger) {
	h := app.Group("/history")

	h.Post("/", func(c *fiber.Ctx) error {
		var req createHistoryRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}

		rec, err := history.Create(c.UserContext(), req.toRecord())
		if err != nil {
			return toHTTPError(log, err)
		}
		return c.JSON(rec)
	})

	h.Get("/", func(c *fiber.Ctx) error {
		q, err := parsePageQuery(c)
		if err != nil {
			return err
		}

		records, err := history.List(c.UserContext(), q.Skip, q.Limit)
		if err != nil {
			return toHTTPError(log, err)
		}
		return c.JSON(records)
	})

	h.Get("/:id", func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		rec, err := history.Get(c.UserContext(), id)
		if err != nil {
			return toHTTPError(log, err)
		}
		return c.JSON(rec)
	})

	h.Put("/:id", func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		var req updateHistoryRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}

		rec, err := history.Update(c.UserContext(), id, req.toUpdate())
		if err != nil {
			return toHTTPError(log, err)
		}
		return c.JSON(rec)
	})

	h.Delete("/:id", func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		if err := history.Delete(c.UserContext(), id); err != nil {
			return toHTTPError(log, err)
		}
		return c.JSON(fiber.Map{"message": "Deleted successfully"})
	})
}
