package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/windowseat/windowseat/pkg/retry"
)

// GeocodeResult is the subset of a Nominatim-style reverse geocode response
// the enricher cares about.
type GeocodeResult struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Country     string `json:"country"`
		CountryCode string `json:"country_code"`
		State       string `json:"state"`
		County      string `json:"county"`
		City        string `json:"city"`
	} `json:"address"`
}

// OverLand reports whether the geocode hit named land. Open ocean gives an
// empty address, which skips the POI lookup entirely.
func (g *GeocodeResult) OverLand() bool {
	if g == nil {
		return false
	}
	a := g.Address
	return a.Country != "" || a.State != "" || a.County != "" || a.City != ""
}

// POIElement is one Overpass-style element with its tag map.
type POIElement struct {
	Type string            `json:"type"`
	Tags map[string]string `json:"tags"`
}

type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (*GeocodeResult, error)
}

type POIClient interface {
	QueryPOIs(ctx context.Context, lat, lon, radiusMetres float64) ([]POIElement, error)
}

// NominatimGeocoder talks to a Nominatim-compatible reverse geocoding
// endpoint. Rate limiting is the enricher's job, not this client's.
type NominatimGeocoder struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

func NewNominatimGeocoder(baseURL string) *NominatimGeocoder {
	return &NominatimGeocoder{
		BaseURL:   strings.TrimSuffix(baseURL, "/"),
		UserAgent: "windowseat/1.0",
		Client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (n *NominatimGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (*GeocodeResult, error) {
	requestURL := fmt.Sprintf("%s/reverse?format=jsonv2&lat=%f&lon=%f&zoom=10", n.BaseURL, lat, lon)

	body, err := n.fetch(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	var result GeocodeResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}

	return &result, nil
}

func (n *NominatimGeocoder) fetch(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", n.UserAgent)

	resp, err := n.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, URL: requestURL}
	}

	return io.ReadAll(resp.Body)
}

// OverpassPOIClient queries an Overpass-compatible endpoint for named
// features within a radius.
type OverpassPOIClient struct {
	BaseURL string
	Client  *http.Client
}

func NewOverpassPOIClient(baseURL string) *OverpassPOIClient {
	return &OverpassPOIClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client:  &http.Client{Timeout: 25 * time.Second},
	}
}

func (o *OverpassPOIClient) QueryPOIs(ctx context.Context, lat, lon, radiusMetres float64) ([]POIElement, error) {
	query := fmt.Sprintf(`[out:json][timeout:20];
(
  node["name"]["boundary"="national_park"](around:%.0f,%f,%f);
  way["name"]["boundary"="national_park"](around:%.0f,%f,%f);
  node["name"]["natural"](around:%.0f,%f,%f);
  way["name"]["natural"](around:%.0f,%f,%f);
  node["name"]["tourism"="attraction"](around:%.0f,%f,%f);
);
out tags center 40;`,
		radiusMetres, lat, lon,
		radiusMetres, lat, lon,
		radiusMetres, lat, lon,
		radiusMetres, lat, lon,
		radiusMetres, lat, lon)

	req, err := http.NewRequestWithContext(ctx, "POST", o.BaseURL+"/api/interpreter",
		strings.NewReader(url.Values{"data": []string{query}}.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, URL: o.BaseURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Elements []POIElement `json:"elements"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}

	return decoded.Elements, nil
}
