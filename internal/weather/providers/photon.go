package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/common"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// DefaultPhotonURL is the public Photon search endpoint.
const DefaultPhotonURL = "https://photon.komoot.io/api/"

// PhotonGeocoder implements weather.Geocoder on top of the Photon API,
// which resolves cities, landmarks and postal codes alike.
type PhotonGeocoder struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	log     *zap.Logger
}

func NewPhotonGeocoder(cfg HTTPClientConfig, baseURL string, log *zap.Logger) *PhotonGeocoder {
	if baseURL == "" {
		baseURL = DefaultPhotonURL
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &PhotonGeocoder{
		name:    "photon",
		baseURL: baseURL,
		httpCfg: cfg,
		circuit: newCircuitBreaker("photon", cfg.Breaker),
		log:     log,
	}
}

func (g *PhotonGeocoder) Name() string {
	return g.name
}

type photonResponse struct {
	Features []photonFeature `json:"features"`
}

type photonFeature struct {
	Geometry struct {
		Coordinates []float64 `json:"coordinates"` // [lon, lat]
	} `json:"geometry"`
	Properties struct {
		Name    string `json:"name"`
		City    string `json:"city"`
		State   string `json:"state"`
		Country string `json:"country"`
	} `json:"properties"`
}

// Geocode resolves query to the single best match.
func (g *PhotonGeocoder) Geocode(ctx context.Context, query string) (weather.Place, error) {
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("q", query)
		values.Set("limit", "1")

		u := fmt.Sprintf("%s?%s", g.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, g.httpCfg, g.circuit, buildRequest)
	if err != nil {
		g.log.Error("geocoding request failed", zap.String("query", query), zap.Error(err))
		return weather.Place{}, weather.Unavailable(err, "Geocoding service error: %v", err)
	}
	defer resp.Body.Close()

	var payload photonResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		g.log.Error("geocoding response could not be decoded",
			zap.String("query", query),
			zap.Int("status", resp.StatusCode),
			zap.Error(err))
		return weather.Place{}, weather.Unavailable(err, "Geocoding service error: %v", err)
	}

	if len(payload.Features) == 0 {
		return weather.Place{}, weather.NotFound("Location '%s' not found. Try 'City, Country' or 'Zip Code'.", query)
	}

	feature := payload.Features[0]
	if len(feature.Geometry.Coordinates) < 2 {
		return weather.Place{}, weather.UpstreamData(nil, "Geocoding service returned no coordinates for '%s'", query)
	}

	return weather.Place{
		DisplayName: displayName(feature),
		Longitude:   feature.Geometry.Coordinates[0],
		Latitude:    feature.Geometry.Coordinates[1],
	}, nil
}

// displayName joins name, city, state and country, dropping blanks and repeats.
func displayName(f photonFeature) string {
	p := f.Properties
	parts := common.AppendUnique(nil, p.Name, p.City, p.State, p.Country)
	return strings.Join(parts, ", ")
}
