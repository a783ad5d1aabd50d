package weather

import (
	"context"

	"go.uber.org/zap"
)

// Service orchestrates location resolution, the forecast call and response composition.
type Service struct {
	geocoder   Geocoder
	forecaster Forecaster
	log        *zap.Logger
}

// NewService creates a new Service.
func NewService(geocoder Geocoder, forecaster Forecaster, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		geocoder:   geocoder,
		forecaster: forecaster,
		log:        log,
	}
}

// Lookup resolves req.Location, unless it is already a "lat,lon" pair, and
// returns the composed forecast for it.
func (s *Service) Lookup(ctx context.Context, req LookupRequest) (Report, error) {
	unit := req.Unit
	if unit == "" {
		unit = UnitCelsius
	}

	place, ok := ParseCoordinates(req.Location)
	if ok {
		s.log.Debug("location is a coordinate pair; skipping geocoding",
			zap.Float64("latitude", place.Latitude),
			zap.Float64("longitude", place.Longitude))
	} else {
		var err error
		place, err = s.geocoder.Geocode(ctx, req.Location)
		if err != nil {
			return Report{}, err
		}
	}

	// Only a complete range is forwarded and echoed back.
	var dates DateRange
	if req.Dates.IsSet() {
		dates = req.Dates
	}

	payload, err := s.forecaster.Forecast(ctx, ForecastRequest{
		Latitude:  place.Latitude,
		Longitude: place.Longitude,
		Unit:      unit,
		Dates:     dates,
	})
	if err != nil {
		return Report{}, err
	}

	report, err := Compose(place, payload, dates)
	if err != nil {
		s.log.Warn("forecast reply has neither current nor daily section",
			zap.String("provider", s.forecaster.Name()),
			zap.String("location", place.DisplayName))
		return Report{}, err
	}
	return report, nil
}

// LookupCoordinates returns the forecast for raw coordinates without geocoding.
func (s *Service) LookupCoordinates(ctx context.Context, lat, lon float64, unit string) (Report, error) {
	if unit == "" {
		unit = UnitCelsius
	}

	payload, err := s.forecaster.Forecast(ctx, ForecastRequest{
		Latitude:  lat,
		Longitude: lon,
		Unit:      unit,
	})
	if err != nil {
		return Report{}, err
	}

	report, err := ComposeCoordinates(lat, lon, payload)
	if err != nil {
		s.log.Warn("forecast reply has no current section",
			zap.String("provider", s.forecaster.Name()),
			zap.Float64("latitude", lat),
			zap.Float64("longitude", lon))
		return Report{}, err
	}
	return report, nil
}
