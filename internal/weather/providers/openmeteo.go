package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// DefaultOpenMeteoURL is the public Open-Meteo forecast endpoint.
const DefaultOpenMeteoURL = "https://api.open-meteo.com/v1/forecast"

const (
	openMeteoCurrentFields = "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code"
	openMeteoDailyFields   = "temperature_2m_max,temperature_2m_min,weather_code,precipitation_probability_max"
	openMeteoForecastDays  = 8
)

// OpenMeteoForecaster implements the weather.Forecaster interface for Open-Meteo.
type OpenMeteoForecaster struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	log     *zap.Logger
}

func NewOpenMeteoForecaster(cfg HTTPClientConfig, baseURL string, log *zap.Logger) *OpenMeteoForecaster {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoURL
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &OpenMeteoForecaster{
		name:    "openmeteo",
		baseURL: baseURL,
		httpCfg: cfg,
		circuit: newCircuitBreaker("openmeteo", cfg.Breaker),
		log:     log,
	}
}

func (p *OpenMeteoForecaster) Name() string {
	return p.name
}

// Forecast requests current conditions plus an 8-day daily forecast. When a
// complete date range is given it is forwarded as well; Open-Meteo then
// usually leaves out the current section.
func (p *OpenMeteoForecaster) Forecast(ctx context.Context, req weather.ForecastRequest) (weather.ForecastPayload, error) {
	unit := req.Unit
	if unit == "" {
		unit = weather.UnitCelsius
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(req.Latitude, 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(req.Longitude, 'f', -1, 64))
		values.Set("current", openMeteoCurrentFields)
		values.Set("daily", openMeteoDailyFields)
		values.Set("timezone", "auto")
		values.Set("temperature_unit", unit)
		values.Set("forecast_days", strconv.Itoa(openMeteoForecastDays))
		if req.Dates.IsSet() {
			values.Set("start_date", req.Dates.Start)
			values.Set("end_date", req.Dates.End)
		}

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		p.log.Error("forecast request failed",
			zap.Float64("latitude", req.Latitude),
			zap.Float64("longitude", req.Longitude),
			zap.Error(err))
		return weather.ForecastPayload{}, weather.Unavailable(err, "Weather service unavailable")
	}
	defer resp.Body.Close()

	var sections map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&sections); err != nil {
		p.log.Error("forecast response could not be decoded", zap.Int("status", resp.StatusCode), zap.Error(err))
		return weather.ForecastPayload{}, weather.Unavailable(err, "Weather service unavailable")
	}

	if reason, ok := sections["reason"]; ok {
		p.log.Warn("forecast provider rejected request",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("reason", reason))
	}

	return weather.ForecastPayload{
		Current:      sections["current"],
		CurrentUnits: sections["current_units"],
		Daily:        sections["daily"],
	}, nil
}
