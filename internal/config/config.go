package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppConfig struct {
	Port string

	Database DatabaseConfig
	Upstream UpstreamConfig

	// CORSAllowOrigins lists the web client origins allowed to call the API.
	CORSAllowOrigins []string

	// HistoryRetention prunes history older than this age (0 = keep forever).
	HistoryRetention  time.Duration
	RetentionInterval time.Duration

	LogLevel  string
	LogFormat string
}

type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	// MigrateLegacy runs the one-time date_range -> start_date/end_date transform on startup.
	MigrateLegacy bool
}

type UpstreamConfig struct {
	GeocoderURL string
	ForecastURL string
	UserAgent   string
	// Timeout of 0 keeps the transport default.
	Timeout    time.Duration
	MaxRetries int
	// BreakerThreshold consecutive failures open a provider's circuit (0 = no breaker).
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

var defaults = map[string]interface{}{
	"PORT": "8000",

	"DB_DRIVER":            "sqlite",
	"DB_DSN":               "weather.db",
	"DB_MAX_IDLE_CONNS":    10,
	"DB_MAX_OPEN_CONNS":    100,
	"DB_CONN_MAX_LIFETIME": "1h",
	"DB_MIGRATE_LEGACY":    true,

	"GEOCODER_URL":         "https://photon.komoot.io/api/",
	"FORECAST_URL":         "https://api.open-meteo.com/v1/forecast",
	"UPSTREAM_USER_AGENT":  "WeatherAppAssessment/1.0",
	"UPSTREAM_TIMEOUT":     "0s",
	"UPSTREAM_MAX_RETRIES": 0,

	"UPSTREAM_BREAKER_THRESHOLD": 10,
	"UPSTREAM_BREAKER_COOLDOWN":  "10s",

	"CORS_ALLOW_ORIGINS": "http://localhost:5173,http://localhost:5174",

	"HISTORY_RETENTION":  "0s",
	"RETENTION_INTERVAL": "1h",

	"LOG_LEVEL":  "info",
	"LOG_FORMAT": "json",
}

// Load reads configuration from the environment (and .env, if present) with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	return v
}

func fromViper(v *viper.Viper) (*AppConfig, error) {
	cfg := &AppConfig{
		Port: v.GetString("PORT"),
		Database: DatabaseConfig{
			Driver:        strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:           v.GetString("DB_DSN"),
			MaxIdleConns:  v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns:  v.GetInt("DB_MAX_OPEN_CONNS"),
			MigrateLegacy: v.GetBool("DB_MIGRATE_LEGACY"),
		},
		Upstream: UpstreamConfig{
			GeocoderURL: v.GetString("GEOCODER_URL"),
			ForecastURL: v.GetString("FORECAST_URL"),
			UserAgent:   v.GetString("UPSTREAM_USER_AGENT"),
			MaxRetries:  v.GetInt("UPSTREAM_MAX_RETRIES"),

			BreakerThreshold: v.GetInt("UPSTREAM_BREAKER_THRESHOLD"),
		},
		CORSAllowOrigins: splitList(v.GetString("CORS_ALLOW_ORIGINS")),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogFormat:        v.GetString("LOG_FORMAT"),
	}

	var err error
	if cfg.Database.ConnMaxLifetime, err = duration(v, "DB_CONN_MAX_LIFETIME"); err != nil {
		return nil, err
	}
	if cfg.Upstream.Timeout, err = duration(v, "UPSTREAM_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.Upstream.BreakerCooldown, err = duration(v, "UPSTREAM_BREAKER_COOLDOWN"); err != nil {
		return nil, err
	}
	if cfg.HistoryRetention, err = duration(v, "HISTORY_RETENTION"); err != nil {
		return nil, err
	}
	if cfg.RetentionInterval, err = duration(v, "RETENTION_INTERVAL"); err != nil {
		return nil, err
	}

	if cfg.Upstream.MaxRetries < 0 {
		return nil, fmt.Errorf("invalid UPSTREAM_MAX_RETRIES: must not be negative")
	}
	if cfg.Upstream.BreakerThreshold < 0 {
		return nil, fmt.Errorf("invalid UPSTREAM_BREAKER_THRESHOLD: must not be negative")
	}
	switch cfg.Database.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER %q: use sqlite, postgres or mysql", cfg.Database.Driver)
	}

	return cfg, nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
