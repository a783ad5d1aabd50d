package weather

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paris = Place{DisplayName: "Paris, France", Latitude: 48.85, Longitude: 2.35}

func TestComposeIncludesCurrentWhenPresent(t *testing.T) {
	payload := ForecastPayload{
		Current:      json.RawMessage(`{"temperature_2m":12.5}`),
		CurrentUnits: json.RawMessage(`{"temperature_2m":"°C"}`),
		Daily:        json.RawMessage(`{"time":["2024-01-01"]}`),
	}

	report, err := Compose(paris, payload, DateRange{})
	require.NoError(t, err)

	assert.Equal(t, "Paris, France", report.Location)
	assert.Equal(t, 48.85, report.Latitude)
	assert.Equal(t, 2.35, report.Longitude)
	assert.JSONEq(t, `{"temperature_2m":12.5}`, string(report.Current))
	assert.Empty(t, report.StartDate)
	assert.Empty(t, report.EndDate)

	body, err := json.Marshal(report)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"location": "Paris, France",
		"latitude": 48.85,
		"longitude": 2.35,
		"current": {"temperature_2m": 12.5},
		"current_units": {"temperature_2m": "°C"},
		"daily": {"time": ["2024-01-01"]}
	}`, string(body))
}

func TestComposeDateRangeWithoutCurrent(t *testing.T) {
	payload := ForecastPayload{Daily: json.RawMessage(`{"time":["2024-01-01","2024-01-02"]}`)}
	dates := DateRange{Start: "2024-01-01", End: "2024-01-02"}

	report, err := Compose(paris, payload, dates)
	require.NoError(t, err)

	body, err := json.Marshal(report)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.NotContains(t, out, "current")
	assert.Equal(t, map[string]interface{}{}, out["current_units"])
	assert.Equal(t, "2024-01-01", out["start_date"])
	assert.Equal(t, "2024-01-02", out["end_date"])
}

func TestComposeHalfRangeIsNotEchoed(t *testing.T) {
	payload := ForecastPayload{Current: json.RawMessage(`{}`)}

	report, err := Compose(paris, payload, DateRange{Start: "2024-01-01"})
	require.NoError(t, err)
	assert.Empty(t, report.StartDate)
	assert.JSONEq(t, `{}`, string(report.Daily))
}

func TestComposeRequiresCurrentOrDaily(t *testing.T) {
	_, err := Compose(paris, ForecastPayload{CurrentUnits: json.RawMessage(`{}`)}, DateRange{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstreamData))
	assert.Equal(t, "Failed to fetch weather data", err.Error())
}

func TestComposeCoordinates(t *testing.T) {
	payload := ForecastPayload{Current: json.RawMessage(`{"weather_code":3}`)}

	report, err := ComposeCoordinates(1.5, -2.5, payload)
	require.NoError(t, err)
	assert.Equal(t, CoordinatesLabel, report.Location)
	assert.Equal(t, 1.5, report.Latitude)
	assert.Equal(t, -2.5, report.Longitude)
	assert.JSONEq(t, `{"weather_code":3}`, string(report.Current))
	assert.JSONEq(t, `{}`, string(report.Daily))
	assert.JSONEq(t, `{}`, string(report.CurrentUnits))
}

func TestComposeCoordinatesRequiresCurrent(t *testing.T) {
	_, err := ComposeCoordinates(1, 2, ForecastPayload{Daily: json.RawMessage(`{}`)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstreamData))
	assert.Equal(t, "Failed to fetch weather data for coordinates", err.Error())
}
