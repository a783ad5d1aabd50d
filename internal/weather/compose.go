package weather

import "encoding/json"

var emptyObject = json.RawMessage(`{}`)

// Compose merges a resolved place with a forecast reply into one Report.
// The reply must carry at least one of the current or daily sections.
// Current conditions are only included when the provider sent them, which it
// usually does not for date-ranged queries.
func Compose(place Place, payload ForecastPayload, dates DateRange) (Report, error) {
	if !payload.HasCurrent() && !payload.HasDaily() {
		return Report{}, UpstreamData(nil, "Failed to fetch weather data")
	}

	report := Report{
		Location:     place.DisplayName,
		Latitude:     place.Latitude,
		Longitude:    place.Longitude,
		Daily:        orEmpty(payload.Daily),
		CurrentUnits: orEmpty(payload.CurrentUnits),
	}
	if payload.HasCurrent() {
		report.Current = payload.Current
	}
	if dates.IsSet() {
		report.StartDate = dates.Start
		report.EndDate = dates.End
	}
	return report, nil
}

// ComposeCoordinates builds the coordinates-only Report. Current conditions are required.
func ComposeCoordinates(lat, lon float64, payload ForecastPayload) (Report, error) {
	if !payload.HasCurrent() {
		return Report{}, UpstreamData(nil, "Failed to fetch weather data for coordinates")
	}

	return Report{
		Location:     CoordinatesLabel,
		Latitude:     lat,
		Longitude:    lon,
		Current:      orEmpty(payload.Current),
		Daily:        orEmpty(payload.Daily),
		CurrentUnits: orEmpty(payload.CurrentUnits),
	}, nil
}

func orEmpty(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return emptyObject
	}
	return raw
}
