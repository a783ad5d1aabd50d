package httpapi

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// WeatherService is the lookup side of the API.
type WeatherService interface {
	Lookup(ctx context.Context, req weather.LookupRequest) (weather.Report, error)
	LookupCoordinates(ctx context.Context, lat, lon float64, unit string) (weather.Report, error)
}

// HistoryStore is the persistence side of the API.
type HistoryStore interface {
	Create(ctx context.Context, in store.NewRecord) (store.WeatherHistoryRecord, error)
	List(ctx context.Context, skip, limit int) ([]store.WeatherHistoryRecord, error)
	Get(ctx context.Context, id uint) (store.WeatherHistoryRecord, error)
	Update(ctx context.Context, id uint, upd store.RecordUpdate) (store.WeatherHistoryRecord, error)
	Delete(ctx context.Context, id uint) error
	Ping(ctx context.Context) error
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service WeatherService, history HistoryStore, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Weather AI Backend API"})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		db := "up"
		if err := history.Ping(c.UserContext()); err != nil {
			log.Warn("health: database ping failed", zap.Error(err))
			db = "down"
		}
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "weather-lookup",
			"database": db,
		})
	})

	app.Get("/weather", func(c *fiber.Ctx) error {
		q, err := parseWeatherQuery(c)
		if err != nil {
			return err
		}

		report, err := service.Lookup(c.UserContext(), q.toLookup())
		if err != nil {
			return toHTTPError(log, err)
		}
		return c.JSON(report)
	})

	app.Get("/weather/coordinates", func(c *fiber.Ctx) error {
		q, err := parseCoordinatesQuery(c)
		if err != nil {
			return err
		}

		report, err := service.LookupCoordinates(c.UserContext(), q.Lat, q.Lon, q.Unit)
		if err != nil {
			return toHTTPError(log, err)
		}
		return c.JSON(report)
	})

	registerHistoryRoutes(app, history, log)
}

// ErrorHandler renders every error as {"error": true, "detail": "..."}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":  true,
		"detail": err.Error(),
	})
}

// toHTTPError maps service and store errors onto HTTP statuses.
func toHTTPError(log *zap.Logger, err error) error {
	var werr *weather.Error
	switch {
	case errors.As(err, &werr) && errors.Is(err, weather.ErrServiceUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, werr.Detail)
	case errors.As(err, &werr) && errors.Is(err, weather.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, werr.Detail)
	case errors.As(err, &werr) && errors.Is(err, weather.ErrUpstreamData):
		return fiber.NewError(fiber.StatusInternalServerError, werr.Detail)
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Item not found")
	default:
		log.Error("request failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
	}
}
