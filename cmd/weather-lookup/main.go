package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-lookup/internal/api/http"
	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/database"
	"github.com/i474232898/weather-lookup/internal/logging"
	"github.com/i474232898/weather-lookup/internal/scheduler"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/i474232898/weather-lookup/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	db, err := database.Connect(database.Options{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        logging.GormLevel(cfg.LogLevel),
	})
	if err != nil {
		zlog.Fatal("failed to open database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer database.Close(db) //nolint:errcheck

	history := store.NewHistoryStore(db)
	// The legacy rebuild must precede AutoMigrate.
	if cfg.Database.MigrateLegacy {
		if _, err := history.MigrateLegacyDateRange(context.Background(), zlog); err != nil {
			zlog.Fatal("failed to migrate legacy date ranges", zap.Error(err))
		}
	}
	if err := history.AutoMigrate(context.Background()); err != nil {
		zlog.Fatal("failed to migrate schema", zap.Error(err))
	}

	// Shared HTTP client for outbound provider calls; zero timeout keeps the transport default.
	httpCfg := providers.HTTPClientConfig{
		Client:    &http.Client{Timeout: cfg.Upstream.Timeout},
		UserAgent: cfg.Upstream.UserAgent,
		Backoff:   providers.DefaultBackoff,
		Breaker: providers.BreakerConfig{
			Threshold: uint32(cfg.Upstream.BreakerThreshold),
			Cooldown:  cfg.Upstream.BreakerCooldown,
		},
	}
	httpCfg.Backoff.MaxRetries = cfg.Upstream.MaxRetries

	geocoder := providers.NewPhotonGeocoder(httpCfg, cfg.Upstream.GeocoderURL, zlog.Named("photon"))
	forecaster := providers.NewOpenMeteoForecaster(httpCfg, cfg.Upstream.ForecastURL, zlog.Named("openmeteo"))
	service := weather.NewService(geocoder, forecaster, zlog.Named("weather"))

	sched := scheduler.New(history, cfg.HistoryRetention, cfg.RetentionInterval, zlog.Named("scheduler"))
	if err := sched.Start(); err != nil {
		zlog.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-lookup",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New())
	app.Use(recover.New())
	origins := strings.Join(cfg.CORSAllowOrigins, ",")
	// fiber refuses credentials together with a wildcard origin.
	allowCredentials := !strings.Contains(origins, "*")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "*",
		AllowCredentials: allowCredentials,
	}))

	httpapi.RegisterRoutes(app, service, history, zlog.Named("api"))

	go func() {
		zlog.Info("listening", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
}
