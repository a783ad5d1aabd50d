package weather

import (
	"context"
)

// Geocoder resolves a free-text place description (e.g. Photon).
type Geocoder interface {
	Name() string
	Geocode(ctx context.Context, query string) (Place, error)
}

// Forecaster fetches current conditions and a daily forecast (e.g. Open-Meteo).
type Forecaster interface {
	Name() string
	Forecast(ctx context.Context, req ForecastRequest) (ForecastPayload, error)
}
