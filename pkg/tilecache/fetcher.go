package tilecache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/windowseat/windowseat/pkg/retry"
)

// TileFetcher downloads one XYZ tile.
type TileFetcher interface {
	FetchTile(ctx context.Context, z, x, y int) ([]byte, error)
}

// StaticMapFetcher downloads a single pre-rendered map image centred on a
// coordinate. The fallback path for environments with no tile server.
type StaticMapFetcher interface {
	FetchStaticMap(ctx context.Context, lat, lon float64, zoom int) ([]byte, error)
}

// HTTPTileFetcher fetches from an XYZ tile server via a URL template with
// {z}/{x}/{y} placeholders.
type HTTPTileFetcher struct {
	URLTemplate string
	UserAgent   string
	Client      *http.Client
}

func NewHTTPTileFetcher(urlTemplate string) *HTTPTileFetcher {
	return &HTTPTileFetcher{
		URLTemplate: urlTemplate,
		UserAgent:   "windowseat/1.0",
		Client:      &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *HTTPTileFetcher) FetchTile(ctx context.Context, z, x, y int) ([]byte, error) {
	requestURL := strings.NewReplacer(
		"{z}", fmt.Sprint(z),
		"{x}", fmt.Sprint(x),
		"{y}", fmt.Sprint(y),
	).Replace(f.URLTemplate)

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, URL: requestURL}
	}

	return io.ReadAll(resp.Body)
}

// HTTPStaticMapFetcher fetches from a static map endpoint via a URL template
// with {lat}/{lon}/{zoom} placeholders.
type HTTPStaticMapFetcher struct {
	URLTemplate string
	Client      *http.Client
}

func NewHTTPStaticMapFetcher(urlTemplate string) *HTTPStaticMapFetcher {
	return &HTTPStaticMapFetcher{
		URLTemplate: urlTemplate,
		Client:      &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *HTTPStaticMapFetcher) FetchStaticMap(ctx context.Context, lat, lon float64, zoom int) ([]byte, error) {
	requestURL := strings.NewReplacer(
		"{lat}", fmt.Sprintf("%f", lat),
		"{lon}", fmt.Sprintf("%f", lon),
		"{zoom}", fmt.Sprint(zoom),
	).Replace(f.URLTemplate)

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, URL: requestURL}
	}

	return io.ReadAll(resp.Body)
}
