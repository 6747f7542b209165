package routesource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	iso8601 "github.com/senseyeio/duration"

	"github.com/windowseat/windowseat/pkg/retry"
	"github.com/windowseat/windowseat/pkg/skydf"
)

// HTTPSource fetches routes from a flight-data API.
type HTTPSource struct {
	BaseURL string
	APIKey  string
	Client  *http.Client

	retryOpts retry.Options
}

func NewHTTPSource(baseURL, apiKey string) *HTTPSource {
	return &HTTPSource{
		BaseURL:   strings.TrimSuffix(baseURL, "/"),
		APIKey:    apiKey,
		Client:    &http.Client{Timeout: 30 * time.Second},
		retryOpts: retry.DefaultOptions(),
	}
}

type routeResponse struct {
	Airline     string `json:"airline"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Route       []struct {
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		Altitude    float64 `json:"altitude"`
		GroundSpeed float64 `json:"groundspeed"`
	} `json:"route"`
	EstimatedDuration string `json:"estimated_duration"` // ISO 8601, eg PT7H30M
}

func (s *HTTPSource) GetFlightRoute(ctx context.Context, flightNumber string) (*FlightRoute, error) {
	requestURL := fmt.Sprintf("%s/flights/%s/route", s.BaseURL, skydf.NormaliseFlightID(flightNumber))

	body, err := retry.Do(ctx, s.retryOpts, func() ([]byte, error) {
		return s.fetch(ctx, requestURL)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch route for %s: %w", flightNumber, err)
	}

	var decoded routeResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode route for %s: %w", flightNumber, err)
	}

	flightRoute := &FlightRoute{
		Airline:     decoded.Airline,
		Origin:      decoded.Origin,
		Destination: decoded.Destination,
	}

	for _, point := range decoded.Route {
		flightRoute.Route = append(flightRoute.Route, skydf.RoutePoint{
			Latitude:    point.Latitude,
			Longitude:   point.Longitude,
			Altitude:    point.Altitude,
			GroundSpeed: point.GroundSpeed,
		})
	}

	if decoded.EstimatedDuration != "" {
		if parsed, err := iso8601.ParseISO8601(decoded.EstimatedDuration); err == nil {
			reference := time.Unix(0, 0).UTC()
			flightRoute.EstimatedDuration = parsed.Shift(reference).Sub(reference)
		}
	}

	return flightRoute, nil
}

func (s *HTTPSource) fetch(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, err
	}
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, URL: requestURL}
	}

	return io.ReadAll(resp.Body)
}
