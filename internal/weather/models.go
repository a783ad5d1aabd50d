package weather

import (
	"encoding/json"
)

// Temperature units accepted by the forecast provider.
const (
	UnitCelsius    = "celsius"
	UnitFahrenheit = "fahrenheit"
)

// CoordinatesLabel is the fixed location label of the coordinates-only lookup.
const CoordinatesLabel = "Your Location"

// Place is a resolved location: coordinates plus a human-readable display name.
type Place struct {
	DisplayName string
	Latitude    float64
	Longitude   float64
}

// DateRange is an optional start/end pair in YYYY-MM-DD form.
// It only takes effect when both ends are set.
type DateRange struct {
	Start string
	End   string
}

// IsSet reports whether both ends of the range were supplied.
func (d DateRange) IsSet() bool {
	return d.Start != "" && d.End != ""
}

// ForecastRequest is the input of a single forecast provider call.
type ForecastRequest struct {
	Latitude  float64
	Longitude float64
	Unit      string
	Dates     DateRange
}

// ForecastPayload keeps the raw sections of a provider reply.
// A nil section means the key was absent from the reply.
type ForecastPayload struct {
	Current      json.RawMessage
	CurrentUnits json.RawMessage
	Daily        json.RawMessage
}

// HasCurrent reports whether the reply carried current conditions.
func (p ForecastPayload) HasCurrent() bool { return p.Current != nil }

// HasDaily reports whether the reply carried a daily forecast.
func (p ForecastPayload) HasDaily() bool { return p.Daily != nil }

// Report is the composed weather response returned to clients.
type Report struct {
	Location     string          `json:"location"`
	Latitude     float64         `json:"latitude"`
	Longitude    float64         `json:"longitude"`
	Current      json.RawMessage `json:"current,omitempty"`
	Daily        json.RawMessage `json:"daily"`
	CurrentUnits json.RawMessage `json:"current_units"`
	StartDate    string          `json:"start_date,omitempty"`
	EndDate      string          `json:"end_date,omitempty"`
}

// LookupRequest is a weather lookup by free-text location or "lat,lon" string.
type LookupRequest struct {
	Location string
	Unit     string
	Dates    DateRange
}
